package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"sysassist-be/internal/entity"
	"sysassist-be/internal/repository/unitofwork"
	"sysassist-be/pkg/database"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.ChatRecordRepository())
	assert.NotNil(t, uow.ChatIndexRepository())
	assert.NotNil(t, uow.CorpusChunkRepository())

	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)

	t.Run("Check Chat Record Repository", func(t *testing.T) {
		count, err := uow.ChatRecordRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("Chat record count: %d", count)
	})

	t.Run("Check Corpus Chunk Repository", func(t *testing.T) {
		count, err := uow.CorpusChunkRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("Corpus chunk count: %d", count)
	})
}

func TestChatRecordUpsertRoundTrip(t *testing.T) {
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	ctx := context.Background()
	uow := unitofwork.NewRepositoryFactory(gormDB).NewUnitOfWork(ctx)
	repo := uow.ChatRecordRepository()

	email := "integration-test@example.com"
	record := &entity.ChatRecord{
		Email:        email,
		ChatId:       999999,
		Title:        "integration round trip",
		UserMessages: []string{"q1"},
		LlmResponses: []string{"a1"},
		CreatedAt:    time.Now(),
	}

	err = repo.Upsert(ctx, record)
	assert.NoError(t, err)

	// Second upsert with more turns must replace, not duplicate
	record.UserMessages = append(record.UserMessages, "q2")
	record.LlmResponses = append(record.LlmResponses, "a2")
	err = repo.Upsert(ctx, record)
	assert.NoError(t, err)

	max, err := repo.MaxChatIdByEmail(ctx, email)
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, max, int64(999999))

	// Cleanup
	gormDB.Exec("DELETE FROM all_chats WHERE email = ?", email)
}
