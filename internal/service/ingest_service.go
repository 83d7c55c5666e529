package service

import (
	"context"
	"encoding/json"
	"strings"

	"sysassist-be/internal/dto"
	"sysassist-be/internal/repository/unitofwork"
	"sysassist-be/pkg/embedding"
)

const defaultSearchTopK = 6

type IIngestService interface {
	Ingest(ctx context.Context, req *dto.IngestRequest) (*dto.IngestResponse, error)
	Search(ctx context.Context, req *dto.SearchRequest) (*dto.SearchResponse, error)
}

// ingestService accepts corpus documents and hands them to the
// background consumer; chunking and embedding happen off the request
// path.
type ingestService struct {
	publisherService  IPublisherService
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
}

func NewIngestService(
	publisherService IPublisherService,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
) IIngestService {
	return &ingestService{
		publisherService:  publisherService,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
	}
}

func (s *ingestService) Ingest(ctx context.Context, req *dto.IngestRequest) (*dto.IngestResponse, error) {
	payload := dto.PublishIngestMessage{
		Source:  req.Source,
		Domain:  req.Domain,
		Topic:   req.Topic,
		Content: req.Content,
	}
	msgJson, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	if err := s.publisherService.Publish(ctx, msgJson); err != nil {
		return nil, err
	}

	return &dto.IngestResponse{
		Source:   req.Source,
		Accepted: true,
	}, nil
}

// Search runs an ad hoc similarity query against the corpus, the same
// lookup the answer pipeline performs internally.
func (s *ingestService) Search(ctx context.Context, req *dto.SearchRequest) (*dto.SearchResponse, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return &dto.SearchResponse{Query: req.Query, Results: []dto.SearchResultItem{}}, nil
	}

	topK := req.TopK
	if topK <= 0 {
		topK = defaultSearchTopK
	}

	res, err := s.embeddingProvider.Generate(ctx, query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	scored, err := uow.CorpusChunkRepository().SearchSimilarWithScore(ctx, res.Embedding.Values, topK, 0)
	if err != nil {
		return nil, err
	}

	results := make([]dto.SearchResultItem, 0, len(scored))
	for _, sc := range scored {
		results = append(results, dto.SearchResultItem{
			ID:         sc.Chunk.Id.String(),
			Domain:     sc.Chunk.Domain,
			Topic:      sc.Chunk.Topic,
			Source:     sc.Chunk.Source,
			Content:    sc.Chunk.Content,
			Similarity: sc.Similarity,
		})
	}

	return &dto.SearchResponse{
		Query:   query,
		Results: results,
	}, nil
}
