package message

import (
	"context"

	"github.com/minichat/minichat/internal/domain"
)

// MessageRepository handles message data operations.
type MessageRepository interface {
	// Upsert writes the whole message row keyed by its ID. Redelivering
	// the same ID overwrites the existing row instead of duplicating it.
	Upsert(ctx context.Context, msg *domain.Message) (*domain.Message, error)
	// FindByConversationID returns the conversation's messages in turn
	// order, oldest first.
	FindByConversationID(ctx context.Context, conversationID string) ([]domain.Message, error)
	DeleteByConversationID(ctx context.Context, conversationID string) error
}
