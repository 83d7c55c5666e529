package unitofwork

import (
	"context"

	"sysassist-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ChatRecordRepository() contract.ChatRecordRepository
	ChatIndexRepository() contract.ChatIndexRepository
	CorpusChunkRepository() contract.CorpusChunkRepository
}
