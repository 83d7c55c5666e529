package implementation

import (
	"context"
	"errors"

	"sysassist-be/internal/entity"
	"sysassist-be/internal/mapper"
	"sysassist-be/internal/model"
	"sysassist-be/internal/repository/contract"
	"sysassist-be/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ChatRecordRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewChatRecordRepository(db *gorm.DB) contract.ChatRecordRepository {
	return &ChatRecordRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *ChatRecordRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ChatRecordRepositoryImpl) Insert(ctx context.Context, record *entity.ChatRecord) error {
	m := r.mapper.ChatRecordToModel(record)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*record = *r.mapper.ChatRecordToEntity(m)
	return nil
}

func (r *ChatRecordRepositoryImpl) Upsert(ctx context.Context, record *entity.ChatRecord) error {
	m := r.mapper.ChatRecordToModel(record)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "email"}, {Name: "chat_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "user_messages", "llm_responses", "summary", "metadata", "updated_at",
		}),
	}).Create(m).Error
	if err != nil {
		return err
	}
	*record = *r.mapper.ChatRecordToEntity(m)
	return nil
}

func (r *ChatRecordRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatRecord, error) {
	var m model.ChatRecord
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ChatRecordToEntity(&m), nil
}

func (r *ChatRecordRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatRecord, error) {
	var models []*model.ChatRecord
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.ChatRecord, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ChatRecordToEntity(m)
	}
	return entities, nil
}

func (r *ChatRecordRepositoryImpl) LatestByEmail(ctx context.Context, email string) (*entity.ChatRecord, error) {
	var m model.ChatRecord
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		Order("created_at DESC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ChatRecordToEntity(&m), nil
}

func (r *ChatRecordRepositoryImpl) MaxChatIdByEmail(ctx context.Context, email string) (int64, error) {
	var max int64
	err := r.db.WithContext(ctx).
		Model(&model.ChatRecord{}).
		Where("email = ?", email).
		Select("COALESCE(MAX(chat_id), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max, nil
}

func (r *ChatRecordRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ChatRecord{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
