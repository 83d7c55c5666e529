package implementation

import (
	"context"

	"sysassist-be/internal/entity"
	"sysassist-be/internal/mapper"
	"sysassist-be/internal/model"
	"sysassist-be/internal/repository/contract"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ChatIndexRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewChatIndexRepository(db *gorm.DB) contract.ChatIndexRepository {
	return &ChatIndexRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *ChatIndexRepositoryImpl) Create(ctx context.Context, index *entity.ChatIndex) error {
	m := r.mapper.ChatIndexToModel(index)
	// Re-persisting the same chat must not fail on the composite key
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}, {Name: "chat_id"}},
		DoNothing: true,
	}).Create(m).Error
	if err != nil {
		return err
	}
	*index = *r.mapper.ChatIndexToEntity(m)
	return nil
}

func (r *ChatIndexRepositoryImpl) ListChatIds(ctx context.Context, email string) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&model.ChatIndex{}).
		Where("email = ?", email).
		Order("chat_id ASC").
		Pluck("chat_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
