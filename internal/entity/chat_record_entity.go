package entity

import "time"

type ChatRecord struct {
	Email        string
	ChatId       int64
	Title        string
	UserMessages []string
	LlmResponses []string
	Summary      string
	Metadata     map[string]interface{}
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

type ChatIndex struct {
	Email     string
	ChatId    int64
	CreatedAt time.Time
}
