package answer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"sysassist-be/internal/pkg/logger"
	"sysassist-be/pkg/llm"
	"sysassist-be/pkg/store"
)

type fakeLLM struct {
	reply string
	err   error
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return f.reply, f.err
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return f.reply, f.err
}

type fakeAssembler struct {
	payload store.PromptPayload
}

func (f *fakeAssembler) Assemble(ctx context.Context, session *store.ChatSession, query string) store.PromptPayload {
	f.payload.Question = query
	return f.payload
}

func TestAnswerTrimsModelReply(t *testing.T) {
	e := NewEngine(&fakeLLM{reply: "  run df -h  \n"}, &fakeAssembler{}, logger.NewNop())

	got := e.Answer(context.Background(), nil, "how to check disk?")

	if got != "run df -h" {
		t.Errorf("answer = %q", got)
	}
}

func TestAnswerFailureReturnsInlineError(t *testing.T) {
	e := NewEngine(&fakeLLM{err: errors.New("model unavailable")}, &fakeAssembler{}, logger.NewNop())

	got := e.Answer(context.Background(), nil, "q")

	if !strings.HasPrefix(got, "RAG error: ") {
		t.Errorf("failure must surface as inline error string, got %q", got)
	}
	if !strings.Contains(got, "model unavailable") {
		t.Errorf("error detail lost: %q", got)
	}
}

func TestBuildPromptSections(t *testing.T) {
	p := store.PromptPayload{
		Context:        "[storage/lvm]\nlvextend grows a volume",
		Summary:        "user is resizing disks",
		RecentMessages: "User: how big is it?\nAI: 50G",
		Question:       "can I shrink it?",
	}

	prompt := BuildPrompt(p)

	for _, want := range []string{
		"Linux system troubleshooting assistant",
		"If the answer is unknown, say so.",
		"Context:\n[storage/lvm]",
		"Conversation summary:\nuser is resizing disks",
		"Recent messages:\nUser: how big is it?",
		"Question:\ncan I shrink it?",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildPromptOmitsEmptySections(t *testing.T) {
	prompt := BuildPrompt(store.PromptPayload{Question: "q"})

	if strings.Contains(prompt, "Conversation summary:") {
		t.Error("empty summary section should be omitted")
	}
	if strings.Contains(prompt, "Recent messages:") {
		t.Error("empty recent messages section should be omitted")
	}
}
