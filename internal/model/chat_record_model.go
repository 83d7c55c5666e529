package model

import (
	"time"

	"gorm.io/datatypes"
)

// ChatRecord is the durable representation of one chat, keyed by
// (email, chat_id). Chat ids form a per-user sequence starting at 1.
type ChatRecord struct {
	Email        string                      `gorm:"primaryKey;type:varchar(255)"`
	ChatId       int64                       `gorm:"primaryKey;autoIncrement:false"`
	Title        string                      `gorm:"type:text;not null"`
	UserMessages datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	LlmResponses datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	Summary      string                      `gorm:"type:text"`
	Metadata     datatypes.JSONMap           `gorm:"type:jsonb"`
	CreatedAt    time.Time                   `gorm:"autoCreateTime"`
	UpdatedAt    time.Time                   `gorm:"autoUpdateTime"`
}

func (ChatRecord) TableName() string {
	return "all_chats"
}
