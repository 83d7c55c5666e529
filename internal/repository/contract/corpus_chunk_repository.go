package contract

import (
	"context"

	"sysassist-be/internal/entity"
	"sysassist-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredCorpusChunk pairs a chunk with its cosine similarity to a query.
type ScoredCorpusChunk struct {
	Chunk      *entity.CorpusChunk
	Similarity float64
}

type CorpusChunkRepository interface {
	Create(ctx context.Context, chunk *entity.CorpusChunk) error
	CreateBulk(ctx context.Context, chunks []*entity.CorpusChunk) error
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteBySource removes every chunk ingested from one source path,
	// so a document can be re-ingested without duplicates.
	DeleteBySource(ctx context.Context, source string) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CorpusChunk, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CorpusChunk, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SearchSimilarWithScore runs a cosine-distance search over the
	// corpus and returns up to limit chunks at or above minSimilarity.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, minSimilarity float64) ([]*ScoredCorpusChunk, error)
}
