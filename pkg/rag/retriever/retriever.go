package retriever

import (
	"context"

	"sysassist-be/internal/pkg/logger"
	"sysassist-be/internal/repository/unitofwork"
	"sysassist-be/pkg/embedding"
	"sysassist-be/pkg/store"
)

// Config encapsulates retrieval parameters.
type Config struct {
	TopK          int
	MinSimilarity float64
}

// DefaultConfig mirrors the corpus index settings: six chunks per
// query, no hard similarity floor (ordering does the work).
func DefaultConfig() Config {
	return Config{
		TopK:          6,
		MinSimilarity: 0.0,
	}
}

// Retriever wraps the vector index behind a query-string interface.
// Every failure degrades to an empty result so the answer pipeline can
// proceed with "no context found".
type Retriever struct {
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	config            Config
	log               logger.ILogger
}

func NewRetriever(
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	config Config,
	log logger.ILogger,
) *Retriever {
	return &Retriever{
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		config:            config,
		log:               log,
	}
}

// Retrieve returns up to k scored chunks for the query, best first.
// k <= 0 falls back to the configured TopK.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) []store.ScoredChunk {
	if k <= 0 {
		k = r.config.TopK
	}

	embeddingRes, err := r.embeddingProvider.Generate(ctx, query, embedding.TaskRetrievalQuery)
	if err != nil {
		r.log.Warn("RAG", "query embedding failed, returning empty context", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}

	uow := r.uowFactory.NewUnitOfWork(ctx)
	scored, err := uow.CorpusChunkRepository().SearchSimilarWithScore(
		ctx,
		embeddingRes.Embedding.Values,
		k,
		r.config.MinSimilarity,
	)
	if err != nil {
		r.log.Warn("RAG", "vector search failed, returning empty context", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}

	chunks := make([]store.ScoredChunk, 0, len(scored))
	seen := make(map[string]bool)
	for _, res := range scored {
		id := res.Chunk.Id.String()
		if seen[id] {
			continue
		}
		seen[id] = true
		chunks = append(chunks, store.ScoredChunk{
			ID:      id,
			Content: res.Chunk.Content,
			Domain:  res.Chunk.Domain,
			Topic:   res.Chunk.Topic,
			Source:  res.Chunk.Source,
			Score:   float32(res.Similarity),
		})
	}

	r.log.Debug("RAG", "corpus retrieval complete", map[string]interface{}{
		"query_len": len(query),
		"hits":      len(chunks),
	})

	return chunks
}
