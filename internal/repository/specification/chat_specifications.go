package specification

import "gorm.io/gorm"

// ByEmail scopes a query to one user's rows.
type ByEmail struct {
	Email string
}

func (s ByEmail) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("email = ?", s.Email)
}

// ByChatID filters by the per-user chat sequence number.
type ByChatID struct {
	ChatID int64
}

func (s ByChatID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chat_id = ?", s.ChatID)
}

// ByDomain scopes corpus queries to one knowledge domain.
type ByDomain struct {
	Domain string
}

func (s ByDomain) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("domain = ?", s.Domain)
}
