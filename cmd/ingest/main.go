package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"sysassist-be/internal/entity"
	"sysassist-be/internal/repository/unitofwork"
	"sysassist-be/pkg/database"
	"sysassist-be/pkg/embedding"
	"sysassist-be/pkg/utils"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

const (
	chunkSize    = 900
	chunkOverlap = 150
)

// Walks a corpus directory laid out as <root>/<domain>/<topic>/<file>
// and indexes every document into the vector store. Re-running replaces
// the chunks of each file it touches.
func main() {
	root := flag.String("dir", "./corpus", "corpus root directory")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		color.Red("Error: DB_CONNECTION_STRING is not set")
		os.Exit(1)
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		color.Red("Error: Failed to connect to database: %v", err)
		os.Exit(1)
	}

	baseURL := getEnv("EMBEDDING_BASE_URL", getEnv("OLLAMA_BASE_URL", "http://localhost:11434"))
	modelName := getEnv("EMBEDDING_MODEL", "nomic-embed-text")
	provider := embedding.NewOllamaProvider(baseURL, modelName)

	uowFactory := unitofwork.NewRepositoryFactory(db)
	ctx := context.Background()

	color.Cyan("Ingesting corpus from %s (model: %s)", *root, modelName)

	var files, totalChunks int
	err = filepath.Walk(*root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !isTextFile(path) {
			return nil
		}

		rel, err := filepath.Rel(*root, path)
		if err != nil {
			return err
		}
		domain, topic := classify(rel)

		n, err := ingestFile(ctx, uowFactory, provider, path, rel, domain, topic)
		if err != nil {
			color.Red("  ✗ %s: %v", rel, err)
			return nil // Keep going, one bad file should not stop the run
		}

		color.Green("  ✓ %s (%s/%s): %d chunks", rel, domain, topic, n)
		files++
		totalChunks += n
		return nil
	})
	if err != nil {
		color.Red("Error: walk failed: %v", err)
		os.Exit(1)
	}

	color.Cyan("Done: %d files, %d chunks indexed", files, totalChunks)
}

func ingestFile(
	ctx context.Context,
	uowFactory unitofwork.RepositoryFactory,
	provider embedding.EmbeddingProvider,
	path, source, domain, topic string,
) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	chunks := utils.SplitText(string(data), chunkSize, chunkOverlap)

	var newChunks []*entity.CorpusChunk
	for _, chunk := range chunks {
		res, err := provider.Generate(ctx, chunk, embedding.TaskRetrievalDocument)
		if err != nil {
			return 0, err
		}
		newChunks = append(newChunks, &entity.CorpusChunk{
			Id:        uuid.New(),
			Content:   chunk,
			Domain:    domain,
			Topic:     topic,
			Source:    source,
			Embedding: res.Embedding.Values,
			CreatedAt: time.Now(),
		})
	}

	uow := uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}
	defer uow.Rollback()

	if err := uow.CorpusChunkRepository().DeleteBySource(ctx, source); err != nil {
		return 0, err
	}
	if len(newChunks) > 0 {
		if err := uow.CorpusChunkRepository().CreateBulk(ctx, newChunks); err != nil {
			return 0, err
		}
	}
	if err := uow.Commit(); err != nil {
		return 0, err
	}

	return len(newChunks), nil
}

// classify maps a relative path onto (domain, topic). Files above the
// two-level layout fall back to "general".
func classify(rel string) (string, string) {
	parts := strings.Split(filepath.ToSlash(rel), "/")
	switch {
	case len(parts) >= 3:
		return parts[0], parts[1]
	case len(parts) == 2:
		return parts[0], "general"
	default:
		return "general", "general"
	}
}

func isTextFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".txt", ".rst":
		return true
	}
	return false
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}
