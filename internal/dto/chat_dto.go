package dto

import "time"

type SendMessageRequest struct {
	Message string `json:"message" validate:"required"`
}

type SendMessageResponse struct {
	ChatID  int64  `json:"chat_id"`
	Answer  string `json:"answer"`
	Persist string `json:"persist_status"`
}

// PersistResult reports the outcome of a best-effort persistence pass.
// Status is one of "ok", "warning" or "error"; Detail carries the
// human-readable reason for non-ok outcomes.
type PersistResult struct {
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type SessionSummary struct {
	ChatID    int64  `json:"chat_id"`
	Title     string `json:"title"`
	TurnCount int    `json:"turn_count"`
	IsCurrent bool   `json:"is_current"`
}

type SessionDetail struct {
	ChatID    int64      `json:"chat_id"`
	Title     string     `json:"title"`
	Summary   string     `json:"summary,omitempty"`
	Turns     []ChatTurn `json:"turns"`
	IsCurrent bool       `json:"is_current"`
}

type ChatTurn struct {
	User string `json:"user"`
	AI   string `json:"ai"`
}

type ListSessionsResponse struct {
	Email    string           `json:"email"`
	Sessions []SessionSummary `json:"sessions"`
}

type ClearSessionResponse struct {
	ChatID int64 `json:"chat_id"`
}

type SaveChatRequest struct {
	Email        string   `json:"email" validate:"required,email"`
	UserMessages []string `json:"user_messages" validate:"required"`
	LlmResponses []string `json:"llm_responses" validate:"required"`
	Title        string   `json:"title"`
}

type SaveChatResponse struct {
	ChatID    int64     `json:"chat_id"`
	Title     string    `json:"title"`
	Saved     bool      `json:"saved"`
	SavedAt   time.Time `json:"saved_at"`
	Duplicate bool      `json:"duplicate"`
}
