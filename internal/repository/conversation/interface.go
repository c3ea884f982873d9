package conversation

import (
	"context"

	"github.com/minichat/minichat/internal/domain"
)

// ConversationRepository handles conversation data operations.
type ConversationRepository interface {
	// Create inserts the conversation and returns the stored row with
	// its generated ID.
	Create(ctx context.Context, conv *domain.Conversation) (*domain.Conversation, error)
	FindByID(ctx context.Context, id string) (*domain.Conversation, error)
	// FindAll returns every conversation ordered by last update,
	// newest first.
	FindAll(ctx context.Context) ([]domain.Conversation, error)
	UpdateTitle(ctx context.Context, id, title string) error
	TouchUpdatedAt(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}
