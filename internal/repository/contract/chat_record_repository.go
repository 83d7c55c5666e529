package contract

import (
	"context"

	"sysassist-be/internal/entity"
	"sysassist-be/internal/repository/specification"
)

type ChatRecordRepository interface {
	// Insert creates a fresh row; it fails on a duplicate (email, chat_id).
	Insert(ctx context.Context, record *entity.ChatRecord) error
	// Upsert replaces the row keyed by (email, chat_id), creating it if absent.
	Upsert(ctx context.Context, record *entity.ChatRecord) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatRecord, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatRecord, error)
	// LatestByEmail returns the most recently inserted row for the user,
	// or nil when none exists.
	LatestByEmail(ctx context.Context, email string) (*entity.ChatRecord, error)
	// MaxChatIdByEmail returns 0 when the user has no rows yet.
	MaxChatIdByEmail(ctx context.Context, email string) (int64, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

type ChatIndexRepository interface {
	Create(ctx context.Context, index *entity.ChatIndex) error
	// ListChatIds enumerates the user's chat ids in ascending order.
	ListChatIds(ctx context.Context, email string) ([]int64, error)
}
