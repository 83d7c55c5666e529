package store

import (
	"fmt"
	"sort"
)

// ChatSession holds one conversation as parallel message slices.
// UserMessages[i] always pairs with LlmResponses[i]; AppendTurn is the
// only way to grow both slices so the pairing cannot drift.
type ChatSession struct {
	ChatID       int64    `json:"chat_id"`
	UserMessages []string `json:"user_messages"`
	LlmResponses []string `json:"llm_responses"`
	Title        string   `json:"title"`
	Summary      string   `json:"summary"`
}

// NewChatSession builds a session and validates the pairing invariant.
func NewChatSession(chatID int64, userMessages, llmResponses []string) (*ChatSession, error) {
	if len(userMessages) != len(llmResponses) {
		return nil, fmt.Errorf("session %d: %d user messages vs %d responses", chatID, len(userMessages), len(llmResponses))
	}
	return &ChatSession{
		ChatID:       chatID,
		UserMessages: userMessages,
		LlmResponses: llmResponses,
	}, nil
}

// NewDraftSession returns an empty session ready to receive the first turn.
func NewDraftSession(chatID int64) *ChatSession {
	return &ChatSession{
		ChatID:       chatID,
		UserMessages: []string{},
		LlmResponses: []string{},
	}
}

// AppendTurn records one completed user/assistant exchange.
func (s *ChatSession) AppendTurn(userMessage, llmResponse string) {
	s.UserMessages = append(s.UserMessages, userMessage)
	s.LlmResponses = append(s.LlmResponses, llmResponse)
}

// Turns returns the number of completed exchanges.
func (s *ChatSession) Turns() int {
	return len(s.UserMessages)
}

// IsEmpty reports whether the session has no recorded user messages.
func (s *ChatSession) IsEmpty() bool {
	return len(s.UserMessages) == 0
}

// Balanced reports whether every user message has a paired response.
func (s *ChatSession) Balanced() bool {
	return len(s.UserMessages) == len(s.LlmResponses)
}

// Registry is the in-memory view of one user's chats. It always holds
// at least one session, and the highest-numbered entry is either the
// current empty draft or the most recent completed chat.
type Registry struct {
	Email         string
	Sessions      map[int64]*ChatSession
	CurrentChatID int64
}

// NewRegistry initializes a registry with a single empty draft session.
func NewRegistry(email string) *Registry {
	r := &Registry{
		Email:    email,
		Sessions: make(map[int64]*ChatSession),
	}
	r.Sessions[1] = NewDraftSession(1)
	r.CurrentChatID = 1
	return r
}

// Current returns the active session. The registry invariant guarantees
// CurrentChatID always points at an existing entry.
func (r *Registry) Current() *ChatSession {
	return r.Sessions[r.CurrentChatID]
}

// MaxID returns the highest chat id in the registry.
func (r *Registry) MaxID() int64 {
	var max int64
	for id := range r.Sessions {
		if id > max {
			max = id
		}
	}
	return max
}

// Put installs a session under its own chat id.
func (r *Registry) Put(s *ChatSession) {
	r.Sessions[s.ChatID] = s
}

// OpenDraft retires the current session and selects an empty draft. If
// the highest-numbered session is already empty it is simply re-selected,
// so repeated calls never pile up blank drafts. Returns the id of the
// now-current session.
func (r *Registry) OpenDraft() int64 {
	maxID := r.MaxID()
	if latest, ok := r.Sessions[maxID]; ok && latest.IsEmpty() {
		r.CurrentChatID = maxID
		return maxID
	}
	next := maxID + 1
	r.Sessions[next] = NewDraftSession(next)
	r.CurrentChatID = next
	return next
}

// OrderedIDs returns chat ids ascending, for stable enumeration.
func (r *Registry) OrderedIDs() []int64 {
	ids := make([]int64, 0, len(r.Sessions))
	for id := range r.Sessions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
