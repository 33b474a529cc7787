package ports

import (
	"context"

	"github.com/barfet/wellbeing-check-in-agent/pkg/domain"
)

// StateStore defines the interface for persisting conversation state between
// turns. The stateless turn endpoint does not need one; the session API uses
// it so clients can hold only a conversation ID.
type StateStore interface {
	// Save persists the state for a given conversation ID.
	Save(ctx context.Context, conversationID string, state *domain.ConversationState) error

	// Load retrieves the state for a given conversation ID.
	// Returns domain.ErrConversationNotFound if the conversation does not exist.
	Load(ctx context.Context, conversationID string) (*domain.ConversationState, error)

	// Delete removes the state for a given conversation ID.
	Delete(ctx context.Context, conversationID string) error

	// List returns the IDs of stored conversations.
	List(ctx context.Context) ([]string, error)
}
