package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"sysassist-be/internal/dto"
	"sysassist-be/internal/entity"
	"sysassist-be/internal/repository/unitofwork"
	"sysassist-be/pkg/embedding"
	"sysassist-be/pkg/events"
	pktNats "sysassist-be/pkg/nats"
	"sysassist-be/pkg/utils"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

const (
	// IngestChunkSize is the character budget per corpus chunk.
	IngestChunkSize = 900
	// IngestChunkOverlap carries boundary context between neighbors.
	IngestChunkOverlap = 150
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the ingestion queue: each message is one
// source document to split, embed and index.
type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	eventPublisher    *pktNats.Publisher
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	eventPublisher *pktNats.Publisher,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		eventPublisher:    eventPublisher,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishIngestMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal ingest message: %v", err)
		msg.Ack() // Malformed messages would retry forever; drop them
		return
	}

	log.Printf("[INFO] Ingesting source %q (domain=%s, topic=%s, %d chars)",
		payload.Source, payload.Domain, payload.Topic, len(payload.Content))

	chunks := utils.SplitText(payload.Content, IngestChunkSize, IngestChunkOverlap)
	log.Printf("[INFO] Source %q split into %d chunks", payload.Source, len(chunks))

	var newChunks []*entity.CorpusChunk
	for i, chunk := range chunks {
		res, err := cs.embeddingProvider.Generate(ctx, chunk, embedding.TaskRetrievalDocument)
		if err != nil {
			log.Printf("[ERROR] Failed to embed chunk %d of %q: %v", i, payload.Source, err)
			msg.Nack() // Retriable: the embedding backend may recover
			return
		}

		newChunks = append(newChunks, &entity.CorpusChunk{
			Id:        uuid.New(),
			Content:   chunk,
			Domain:    payload.Domain,
			Topic:     payload.Topic,
			Source:    payload.Source,
			Embedding: res.Embedding.Values,
			CreatedAt: time.Now(),
		})
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		log.Printf("[ERROR] Failed to begin transaction: %v", err)
		msg.Nack()
		return
	}
	defer uow.Rollback()

	// Re-ingesting a source replaces its old chunks atomically
	if err := uow.CorpusChunkRepository().DeleteBySource(ctx, payload.Source); err != nil {
		log.Printf("[ERROR] Failed to delete old chunks for %q: %v", payload.Source, err)
		msg.Nack()
		return
	}

	if len(newChunks) > 0 {
		if err := uow.CorpusChunkRepository().CreateBulk(ctx, newChunks); err != nil {
			log.Printf("[ERROR] Failed to create chunks for %q: %v", payload.Source, err)
			msg.Nack()
			return
		}
	}

	if err := uow.Commit(); err != nil {
		log.Printf("[ERROR] Failed to commit ingestion for %q: %v", payload.Source, err)
		msg.Nack()
		return
	}

	if cs.eventPublisher != nil {
		evt := events.NewCorpusIngested(payload.Source, payload.Domain, len(newChunks))
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			fmt.Printf("[WARN] Failed to publish CORPUS_INGESTED event: %v\n", err)
		}
	}

	log.Printf("[SUCCESS] Source %q indexed: %d chunks", payload.Source, len(newChunks))
	msg.Ack()
}
