package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// CorpusChunk is one indexed fragment of the troubleshooting corpus
// together with its embedding and provenance metadata.
type CorpusChunk struct {
	Id        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Content   string          `gorm:"type:text;not null"`
	Domain    string          `gorm:"type:varchar(100);index"`
	Topic     string          `gorm:"type:varchar(255);index"`
	Source    string          `gorm:"type:text"`
	Embedding pgvector.Vector `gorm:"type:vector(768)"`
	CreatedAt time.Time       `gorm:"autoCreateTime"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt  `gorm:"index"`
}

func (CorpusChunk) TableName() string {
	return "corpus_chunks"
}
