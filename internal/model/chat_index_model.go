package model

import "time"

// ChatIndex enumerates the chat ids owned by an email, so a registry
// can be rehydrated without scanning all_chats.
type ChatIndex struct {
	Email     string    `gorm:"primaryKey;type:varchar(255)"`
	ChatId    int64     `gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (ChatIndex) TableName() string {
	return "user_chat_nums"
}
