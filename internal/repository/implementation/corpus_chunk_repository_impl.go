package implementation

import (
	"context"
	"errors"

	"sysassist-be/internal/entity"
	"sysassist-be/internal/mapper"
	"sysassist-be/internal/model"
	"sysassist-be/internal/repository/contract"
	"sysassist-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type CorpusChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CorpusMapper
}

func NewCorpusChunkRepository(db *gorm.DB) contract.CorpusChunkRepository {
	return &CorpusChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewCorpusMapper(),
	}
}

func (r *CorpusChunkRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *CorpusChunkRepositoryImpl) Create(ctx context.Context, chunk *entity.CorpusChunk) error {
	m := r.mapper.ToModel(chunk)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*chunk = *r.mapper.ToEntity(m)
	return nil
}

func (r *CorpusChunkRepositoryImpl) CreateBulk(ctx context.Context, chunks []*entity.CorpusChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	models := make([]*model.CorpusChunk, len(chunks))
	for i, c := range chunks {
		models[i] = r.mapper.ToModel(c)
	}
	if err := r.db.WithContext(ctx).CreateInBatches(models, 100).Error; err != nil {
		return err
	}
	for i, m := range models {
		*chunks[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *CorpusChunkRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.CorpusChunk{}, id).Error
}

func (r *CorpusChunkRepositoryImpl) DeleteBySource(ctx context.Context, source string) error {
	return r.db.WithContext(ctx).Where("source = ?", source).Delete(&model.CorpusChunk{}).Error
}

func (r *CorpusChunkRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CorpusChunk, error) {
	var m model.CorpusChunk
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *CorpusChunkRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CorpusChunk, error) {
	var models []*model.CorpusChunk
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.CorpusChunk, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *CorpusChunkRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.CorpusChunk{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// scoredChunkRow captures the similarity expression alongside the model
// columns for a single scan.
type scoredChunkRow struct {
	model.CorpusChunk
	Similarity float64
}

func (r *CorpusChunkRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, minSimilarity float64) ([]*contract.ScoredCorpusChunk, error) {
	if limit <= 0 {
		limit = 6
	}

	var rows []scoredChunkRow
	vec := pgvector.NewVector(embedding)

	// Cosine similarity = 1 - cosine distance (embedding <=> query)
	err := r.db.WithContext(ctx).
		Model(&model.CorpusChunk{}).
		Select("corpus_chunks.*, 1 - (embedding <=> ?) AS similarity", vec).
		Where("corpus_chunks.deleted_at IS NULL").
		Where("1 - (embedding <=> ?) >= ?", vec, minSimilarity).
		Order(gorm.Expr("embedding <=> ?", vec)).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	results := make([]*contract.ScoredCorpusChunk, len(rows))
	for i := range rows {
		results[i] = &contract.ScoredCorpusChunk{
			Chunk:      r.mapper.ToEntity(&rows[i].CorpusChunk),
			Similarity: rows[i].Similarity,
		}
	}
	return results, nil
}
