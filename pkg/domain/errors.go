package domain

import "errors"

// ErrConversationNotFound is returned when a conversation ID cannot be found in the store.
var ErrConversationNotFound = errors.New("conversation not found")

// ErrGeneratorUnavailable is returned by text generators when credentials are
// absent or the backend cannot be reached. Steps treat it like any other
// generator failure and degrade to their fallbacks.
var ErrGeneratorUnavailable = errors.New("text generator unavailable")
