package mapper

import (
	"time"

	"sysassist-be/internal/entity"
	"sysassist-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type CorpusMapper struct{}

func NewCorpusMapper() *CorpusMapper {
	return &CorpusMapper{}
}

func (m *CorpusMapper) ToEntity(c *model.CorpusChunk) *entity.CorpusChunk {
	if c == nil {
		return nil
	}

	var deletedAt *time.Time
	if c.DeletedAt.Valid {
		t := c.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	return &entity.CorpusChunk{
		Id:        c.Id,
		Content:   c.Content,
		Domain:    c.Domain,
		Topic:     c.Topic,
		Source:    c.Source,
		Embedding: c.Embedding.Slice(),
		CreatedAt: c.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
		IsDeleted: c.DeletedAt.Valid,
	}
}

func (m *CorpusMapper) ToModel(c *entity.CorpusChunk) *model.CorpusChunk {
	if c == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if c.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *c.DeletedAt, Valid: true}
	} else if c.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if c.UpdatedAt != nil {
		updatedAt = *c.UpdatedAt
	}

	return &model.CorpusChunk{
		Id:        c.Id,
		Content:   c.Content,
		Domain:    c.Domain,
		Topic:     c.Topic,
		Source:    c.Source,
		Embedding: pgvector.NewVector(c.Embedding),
		CreatedAt: c.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
	}
}
