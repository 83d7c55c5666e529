package unitofwork

import (
	"context"
	"fmt"

	"sysassist-be/internal/repository/contract"
	"sysassist-be/internal/repository/implementation"

	"gorm.io/gorm"
)

type UnitOfWorkImpl struct {
	db *gorm.DB
	tx *gorm.DB // nil outside a transaction
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &UnitOfWorkImpl{
		db: db,
	}
}

func (u *UnitOfWorkImpl) getDB() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UnitOfWorkImpl) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}
	u.tx = u.db.WithContext(ctx).Begin()
	return u.tx.Error
}

func (u *UnitOfWorkImpl) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}
	err := u.tx.Commit().Error
	u.tx = nil
	return err
}

func (u *UnitOfWorkImpl) Rollback() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to rollback")
	}
	err := u.tx.Rollback().Error
	u.tx = nil
	return err
}

// Repository Accessors

func (u *UnitOfWorkImpl) ChatRecordRepository() contract.ChatRecordRepository {
	return implementation.NewChatRecordRepository(u.getDB())
}

func (u *UnitOfWorkImpl) ChatIndexRepository() contract.ChatIndexRepository {
	return implementation.NewChatIndexRepository(u.getDB())
}

func (u *UnitOfWorkImpl) CorpusChunkRepository() contract.CorpusChunkRepository {
	return implementation.NewCorpusChunkRepository(u.getDB())
}
