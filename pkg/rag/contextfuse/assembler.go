package contextfuse

import (
	"context"
	"fmt"
	"strings"

	"sysassist-be/pkg/store"
)

// RecentTurnWindow is how many trailing message/response pairs are
// replayed into the prompt.
const RecentTurnWindow = 5

// ChunkRetriever is the slice of the retriever the assembler needs.
type ChunkRetriever interface {
	Retrieve(ctx context.Context, query string, k int) []store.ScoredChunk
}

// Assembler fuses corpus retrieval, the rolling session summary and a
// recency window of raw turns into one prompt payload. Assembly never
// fails: missing session state degrades to empty strings.
type Assembler struct {
	retriever ChunkRetriever
	topK      int
}

func NewAssembler(retriever ChunkRetriever, topK int) *Assembler {
	if topK <= 0 {
		topK = 6
	}
	return &Assembler{
		retriever: retriever,
		topK:      topK,
	}
}

// Assemble builds the payload for one query against the current session.
// session may be nil (no prior state); the first turn of a session gets
// no self-referential context.
func (a *Assembler) Assemble(ctx context.Context, session *store.ChatSession, query string) store.PromptPayload {
	payload := store.PromptPayload{
		Question: query,
	}

	chunks := a.retriever.Retrieve(ctx, query, a.topK)
	payload.Context = FormatChunks(chunks)

	if session == nil || session.IsEmpty() {
		return payload
	}

	payload.Summary = session.Summary
	payload.RecentMessages = formatRecentTurns(session, RecentTurnWindow)

	return payload
}

// FormatChunks renders retrieved chunks as labeled blocks carrying
// their domain/topic provenance, so the model can cite the source
// category.
func FormatChunks(chunks []store.ScoredChunk) string {
	if len(chunks) == 0 {
		return ""
	}
	blocks := make([]string, len(chunks))
	for i, c := range chunks {
		blocks[i] = fmt.Sprintf("[%s/%s]\n%s", c.Domain, c.Topic, c.Content)
	}
	return strings.Join(blocks, "\n\n")
}

func formatRecentTurns(session *store.ChatSession, window int) string {
	turns := session.Turns()
	start := turns - window
	if start < 0 {
		start = 0
	}

	var b strings.Builder
	for i := start; i < turns; i++ {
		b.WriteString("User: ")
		b.WriteString(session.UserMessages[i])
		b.WriteString("\n")
		if i < len(session.LlmResponses) {
			b.WriteString("AI: ")
			b.WriteString(session.LlmResponses[i])
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
