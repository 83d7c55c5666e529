package entity

import (
	"time"

	"github.com/google/uuid"
)

type CorpusChunk struct {
	Id        uuid.UUID
	Content   string
	Domain    string
	Topic     string
	Source    string
	Embedding []float32
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
