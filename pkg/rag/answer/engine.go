package answer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sysassist-be/internal/pkg/logger"
	"sysassist-be/pkg/llm"
	"sysassist-be/pkg/store"
)

// GenerationTimeout bounds one answer-model call.
const GenerationTimeout = 120 * time.Second

// Engine orchestrates one query→answer cycle: context assembly, the
// instruction template, and the model call. Failures come back as an
// inline "RAG error: ..." string so they land in the chat history like
// any other turn instead of vanishing.
type Engine struct {
	llmProvider llm.LLMProvider
	assembler   Assembler
	log         logger.ILogger
}

// Assembler is the context-assembly dependency of the engine.
type Assembler interface {
	Assemble(ctx context.Context, session *store.ChatSession, query string) store.PromptPayload
}

func NewEngine(llmProvider llm.LLMProvider, assembler Assembler, log logger.ILogger) *Engine {
	return &Engine{
		llmProvider: llmProvider,
		assembler:   assembler,
		log:         log,
	}
}

// Answer resolves one user query against the corpus and session state.
// The returned string is always usable as the assistant's turn.
func (e *Engine) Answer(ctx context.Context, session *store.ChatSession, query string) string {
	payload := e.assembler.Assemble(ctx, session, query)
	prompt := BuildPrompt(payload)

	genCtx, cancel := context.WithTimeout(ctx, GenerationTimeout)
	defer cancel()

	reply, err := e.llmProvider.Generate(genCtx, prompt, llm.WithTemperature(0.2))
	if err != nil {
		e.log.Error("RAG", "answer generation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return fmt.Sprintf("RAG error: %v", err)
	}

	return strings.TrimSpace(reply)
}

// BuildPrompt renders the fixed troubleshooting-assistant template
// around the assembled payload.
func BuildPrompt(p store.PromptPayload) string {
	var b strings.Builder

	b.WriteString("You are a Linux system troubleshooting assistant.\n")
	b.WriteString("Answer using the provided documentation context.\n")
	b.WriteString("Be precise and practical.\n")
	b.WriteString("If the answer is unknown, say so.\n\n")

	b.WriteString("Context:\n")
	b.WriteString(p.Context)
	b.WriteString("\n\n")

	if p.Summary != "" {
		b.WriteString("Conversation summary:\n")
		b.WriteString(p.Summary)
		b.WriteString("\n\n")
	}

	if p.RecentMessages != "" {
		b.WriteString("Recent messages:\n")
		b.WriteString(p.RecentMessages)
		b.WriteString("\n\n")
	}

	b.WriteString("Question:\n")
	b.WriteString(p.Question)

	return b.String()
}
