package mapper

import (
	"time"

	"sysassist-be/internal/entity"
	"sysassist-be/internal/model"

	"gorm.io/datatypes"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

func (m *ChatMapper) ChatRecordToEntity(r *model.ChatRecord) *entity.ChatRecord {
	if r == nil {
		return nil
	}

	var updatedAt *time.Time
	if !r.UpdatedAt.IsZero() {
		t := r.UpdatedAt
		updatedAt = &t
	}

	return &entity.ChatRecord{
		Email:        r.Email,
		ChatId:       r.ChatId,
		Title:        r.Title,
		UserMessages: []string(r.UserMessages),
		LlmResponses: []string(r.LlmResponses),
		Summary:      r.Summary,
		Metadata:     map[string]interface{}(r.Metadata),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    updatedAt,
	}
}

func (m *ChatMapper) ChatRecordToModel(r *entity.ChatRecord) *model.ChatRecord {
	if r == nil {
		return nil
	}

	var updatedAt time.Time
	if r.UpdatedAt != nil {
		updatedAt = *r.UpdatedAt
	}

	return &model.ChatRecord{
		Email:        r.Email,
		ChatId:       r.ChatId,
		Title:        r.Title,
		UserMessages: datatypes.NewJSONSlice(r.UserMessages),
		LlmResponses: datatypes.NewJSONSlice(r.LlmResponses),
		Summary:      r.Summary,
		Metadata:     datatypes.JSONMap(r.Metadata),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    updatedAt,
	}
}

func (m *ChatMapper) ChatIndexToEntity(i *model.ChatIndex) *entity.ChatIndex {
	if i == nil {
		return nil
	}
	return &entity.ChatIndex{
		Email:     i.Email,
		ChatId:    i.ChatId,
		CreatedAt: i.CreatedAt,
	}
}

func (m *ChatMapper) ChatIndexToModel(i *entity.ChatIndex) *model.ChatIndex {
	if i == nil {
		return nil
	}
	return &model.ChatIndex{
		Email:     i.Email,
		ChatId:    i.ChatId,
		CreatedAt: i.CreatedAt,
	}
}
