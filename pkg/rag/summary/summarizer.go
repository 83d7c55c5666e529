package summary

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"sysassist-be/internal/pkg/logger"
	"sysassist-be/pkg/llm"
)

const (
	// SummarizeTimeout bounds one summarization-model call.
	SummarizeTimeout = 60 * time.Second

	// FallbackTitleLimit caps the title derived from the first message.
	FallbackTitleLimit = 120

	// FallbackSummaryLimit caps the transcript excerpt used as summary
	// when the model call fails outright.
	FallbackSummaryLimit = 400

	summaryWordCap = 400
)

// Result is the derived projection over a conversation. Empty or
// mismatched input yields the zero Result with empty metadata.
type Result struct {
	Title    string
	Summary  string
	Metadata map[string]interface{}
}

// Empty reports whether summarization was skipped for invalid input.
func (r Result) Empty() bool {
	return r.Title == "" && r.Summary == "" && len(r.Metadata) == 0
}

// Summarizer derives (title, summary, tags) from a conversation via a
// secondary model call with strict-JSON output and staged fallbacks.
// Summarize never returns an error: every failure branch produces a
// usable Result.
type Summarizer struct {
	llmProvider llm.LLMProvider
	modelName   string
	log         logger.ILogger
	now         func() time.Time
}

func NewSummarizer(llmProvider llm.LLMProvider, modelName string, log logger.ILogger) *Summarizer {
	return &Summarizer{
		llmProvider: llmProvider,
		modelName:   modelName,
		log:         log,
		now:         time.Now,
	}
}

func (s *Summarizer) Summarize(ctx context.Context, messages, responses []string) Result {
	if len(messages) == 0 || len(messages) != len(responses) {
		return Result{Metadata: map[string]interface{}{}}
	}

	transcript := BuildTranscript(messages, responses)
	prompt := s.buildPrompt(transcript)

	callCtx, cancel := context.WithTimeout(ctx, SummarizeTimeout)
	defer cancel()

	opts := []llm.Option{llm.WithTemperature(0.0)}
	if s.modelName != "" {
		opts = append(opts, llm.WithModel(s.modelName))
	}

	raw, err := s.llmProvider.Generate(callCtx, prompt, opts...)
	if err != nil {
		s.log.Warn("SUMMARY", "summarization call failed, using transcript fallback", map[string]interface{}{
			"error": err.Error(),
		})
		return s.invocationFallback(messages, transcript)
	}

	return s.parse(raw, messages)
}

// BuildTranscript interleaves the exchange as User:/AI: lines.
func BuildTranscript(messages, responses []string) string {
	var b strings.Builder
	for i := range messages {
		b.WriteString("User: ")
		b.WriteString(messages[i])
		b.WriteString("\n")
		if i < len(responses) {
			b.WriteString("AI: ")
			b.WriteString(responses[i])
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (s *Summarizer) buildPrompt(transcript string) string {
	// Summary budget scales with the conversation but never past the cap
	wordTarget := len(strings.Fields(transcript)) / 2
	if wordTarget > summaryWordCap {
		wordTarget = summaryWordCap
	}
	if wordTarget < 20 {
		wordTarget = 20
	}

	var b strings.Builder
	b.WriteString("You are a concise summarizer. Given the conversation below, produce a JSON object with keys:\n")
	b.WriteString("  title -> a title of at most 10 words\n")
	b.WriteString(fmt.Sprintf("  summary -> a summary of roughly %d words or fewer\n", wordTarget))
	b.WriteString("  tags -> between 2 and 30 short topic tags, as relevance demands\n\n")
	b.WriteString("Conversation:\n")
	b.WriteString(transcript)
	b.WriteString("\nRespond ONLY with valid JSON.")
	return b.String()
}

type summaryJSON struct {
	Title   string   `json:"title"`
	Summary string   `json:"summary"`
	Tags    []string `json:"tags"`
}

// parse applies the ordered fallback chain: strip fences, try JSON,
// then degrade to raw-output-as-summary.
func (s *Summarizer) parse(raw string, messages []string) Result {
	cleaned := StripCodeFences(raw)

	var parsed summaryJSON
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		s.log.Warn("SUMMARY", "model output was not valid JSON", map[string]interface{}{
			"output_len": len(raw),
		})
		return Result{
			Title:   s.fallbackTitle(messages),
			Summary: strings.TrimSpace(raw),
			Metadata: map[string]interface{}{
				"tags":         []string{},
				"generated_by": s.modelName,
				"parse_error":  "json_parse_fail",
			},
		}
	}

	title := strings.TrimSpace(parsed.Title)
	if title == "" {
		title = s.fallbackTitle(messages)
	}

	tags := parsed.Tags
	if tags == nil {
		tags = []string{}
	}

	return Result{
		Title:   title,
		Summary: strings.TrimSpace(parsed.Summary),
		Metadata: map[string]interface{}{
			"tags":         tags,
			"generated_by": s.modelName,
		},
	}
}

// invocationFallback covers total model failure: title from the first
// message, summary from a bounded transcript excerpt.
func (s *Summarizer) invocationFallback(messages []string, transcript string) Result {
	excerpt := strings.TrimSpace(transcript)
	if utf8.RuneCountInString(excerpt) > FallbackSummaryLimit {
		excerpt = truncateRunes(excerpt, FallbackSummaryLimit) + "…"
	}
	return Result{
		Title:   s.fallbackTitle(messages),
		Summary: excerpt,
		Metadata: map[string]interface{}{
			"tags":          []string{},
			"generated_by":  "fallback",
			"message_count": len(messages),
		},
	}
}

func (s *Summarizer) fallbackTitle(messages []string) string {
	if len(messages) > 0 {
		first := strings.TrimSpace(messages[0])
		if first != "" {
			return truncateRunes(first, FallbackTitleLimit)
		}
	}
	return "chat-" + s.now().UTC().Format(time.RFC3339)
}

// truncateRunes cuts s to at most limit runes. Byte slicing would split
// a multibyte rune at the boundary and yield invalid UTF-8.
func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// StripCodeFences removes markdown fence wrappers (```json ... ```)
// some models insist on emitting around JSON.
func StripCodeFences(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	// Drop a language hint like "json" on the opening fence
	trimmed = strings.TrimPrefix(trimmed, "json")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
