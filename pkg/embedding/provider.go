package embedding

import "context"

// TaskType hints let providers that distinguish query vs document
// embeddings pick the right head. Ollama/Nomic ignores it.
const (
	TaskRetrievalQuery    = "RETRIEVAL_QUERY"
	TaskRetrievalDocument = "RETRIEVAL_DOCUMENT"
)

// EmbeddingResponse wraps the raw vector.
type EmbeddingResponse struct {
	Embedding EmbeddingValues
}

type EmbeddingValues struct {
	Values []float32
}

// EmbeddingProvider generates text embeddings for corpus indexing and
// query-time retrieval.
type EmbeddingProvider interface {
	Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error)
}
