package dto

type IngestRequest struct {
	Source  string `json:"source" validate:"required"`
	Domain  string `json:"domain" validate:"required"`
	Topic   string `json:"topic" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// PublishIngestMessage is the queue payload handed from the ingest
// endpoint to the background consumer.
type PublishIngestMessage struct {
	Source  string `json:"source"`
	Domain  string `json:"domain"`
	Topic   string `json:"topic"`
	Content string `json:"content"`
}

type IngestResponse struct {
	Source   string `json:"source"`
	Accepted bool   `json:"accepted"`
}

type SearchRequest struct {
	Query string `json:"query" validate:"required"`
	TopK  int    `json:"top_k"`
}

type SearchResultItem struct {
	ID         string  `json:"id"`
	Domain     string  `json:"domain"`
	Topic      string  `json:"topic"`
	Source     string  `json:"source"`
	Content    string  `json:"content"`
	Similarity float64 `json:"similarity"`
}

type SearchResponse struct {
	Query   string             `json:"query"`
	Results []SearchResultItem `json:"results"`
}
