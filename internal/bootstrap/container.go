package bootstrap

import (
	"log"

	"sysassist-be/internal/config"
	"sysassist-be/internal/controller"
	"sysassist-be/internal/pkg/logger"
	"sysassist-be/internal/repository/memory"
	"sysassist-be/internal/repository/unitofwork"
	"sysassist-be/internal/service"
	"sysassist-be/pkg/embedding"
	"sysassist-be/pkg/llm/factory"
	"sysassist-be/pkg/rag/answer"
	"sysassist-be/pkg/rag/contextfuse"
	"sysassist-be/pkg/rag/retriever"
	"sysassist-be/pkg/rag/summary"

	pktNats "sysassist-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController   controller.IChatController
	CorpusController controller.ICorpusController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// Held for graceful shutdown
	NatsPublisher *pktNats.Publisher
	Logger        logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	embeddingProvider := embedding.NewOllamaProvider(
		cfg.Ai.EmbeddingBaseURL,
		cfg.Ai.EmbeddingModel,
	)
	log.Printf("[INFO] Using Embedding Model: %s", cfg.Ai.EmbeddingModel)

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.OpenRouter,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// In-memory session registries
	registryRepo := memory.NewRegistryRepository()

	// NATS is optional: without it events are simply not published
	var natsPub *pktNats.Publisher
	if cfg.App.NatsURL != "" {
		natsPub, err = pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
			natsPub = nil
		}
	}

	// 4. RAG Pipeline
	chunkRetriever := retriever.NewRetriever(
		uowFactory,
		embeddingProvider,
		retriever.Config{TopK: cfg.Ai.RetrievalTopK, MinSimilarity: 0},
		sysLogger,
	)
	assembler := contextfuse.NewAssembler(chunkRetriever, cfg.Ai.RetrievalTopK)
	answerEngine := answer.NewEngine(llmProvider, assembler, sysLogger)
	summarizer := summary.NewSummarizer(llmProvider, cfg.Ai.SummaryModel, sysLogger)

	// 5. Services
	publisherService := service.NewPublisherService(cfg.Keys.IngestTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.IngestTopic,
		uowFactory,
		embeddingProvider,
		natsPub,
	)

	chatService := service.NewChatService(
		uowFactory,
		registryRepo,
		answerEngine,
		summarizer,
		natsPub,
		sysLogger,
	)
	ingestService := service.NewIngestService(
		publisherService,
		uowFactory,
		embeddingProvider,
	)

	// 6. Controllers
	return &Container{
		ChatController:   controller.NewChatController(chatService),
		CorpusController: controller.NewCorpusController(ingestService),

		ConsumerService: consumerService,
		NatsPublisher:   natsPub,
		Logger:          sysLogger,
	}
}
