package service

import "errors"

var (
	// ErrUnbalancedTranscript rejects a save whose message and response
	// slices differ in length.
	ErrUnbalancedTranscript = errors.New("user messages and responses must pair up")

	// ErrChatNotFound reports a lookup for a chat id the user does not have.
	ErrChatNotFound = errors.New("chat not found")
)
