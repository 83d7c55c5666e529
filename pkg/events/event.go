package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "CHAT_PERSISTED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the common implementation used by the constructors below.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewChatPersisted fires after a chat row is upserted to the durable
// store, so external consumers (dashboards, exports) can react.
func NewChatPersisted(email string, chatID int64, title string, turns int) Event {
	return BaseEvent{
		Type: "CHAT_PERSISTED",
		Data: map[string]interface{}{
			"email":   email,
			"chat_id": chatID,
			"title":   title,
			"turns":   turns,
		},
		OccurredAt: time.Now(),
	}
}

// NewCorpusIngested fires after a source document finishes chunk
// ingestion into the vector index.
func NewCorpusIngested(source string, domain string, chunks int) Event {
	return BaseEvent{
		Type: "CORPUS_INGESTED",
		Data: map[string]interface{}{
			"source": source,
			"domain": domain,
			"chunks": chunks,
		},
		OccurredAt: time.Now(),
	}
}
