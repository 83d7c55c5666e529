package store

// ScoredChunk is one retrieved corpus fragment with its provenance
// metadata, ready for prompt assembly.
type ScoredChunk struct {
	ID      string  `json:"id"`
	Content string  `json:"content"`
	Domain  string  `json:"domain"`
	Topic   string  `json:"topic"`
	Source  string  `json:"source"`
	Score   float32 `json:"score"`
}

// PromptPayload is the fully assembled input for one answer generation.
// Context carries the formatted corpus chunks, Summary the rolling
// conversation summary, RecentMessages the last few raw exchanges.
// Summary and RecentMessages are empty strings on a first turn.
type PromptPayload struct {
	Context        string `json:"context"`
	Summary        string `json:"summary"`
	RecentMessages string `json:"recent_messages"`
	Question       string `json:"question"`
}
