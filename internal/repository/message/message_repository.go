package message

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/minichat/minichat/internal/domain"
)

var ErrMessageNotFound = errors.New("message not found")

type gormMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &gormMessageRepository{db: db}
}

// Upsert rewrites the full row on conflict. Messages are immutable
// once persisted except for being replaced whole; there are no partial
// field updates.
func (r *gormMessageRepository) Upsert(ctx context.Context, msg *domain.Message) (*domain.Message, error) {
	if err := r.validateMessageInput(msg); err != nil {
		log.Printf("[MessageRepository] Validation failed: %v", err)
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(msg).Error
	if err != nil {
		log.Printf("[MessageRepository] Database error during message upsert for conversation %s: %v", msg.ConversationID, err)
		return nil, errors.New("database error saving message")
	}

	return msg, nil
}

func (r *gormMessageRepository) FindByConversationID(ctx context.Context, conversationID string) ([]domain.Message, error) {
	if conversationID == "" {
		return nil, errors.New("invalid conversation ID")
	}

	var messages []domain.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at asc").
		Find(&messages).Error
	if err != nil {
		log.Printf("[MessageRepository] Database error finding messages for conversation %s: %v", conversationID, err)
		return nil, errors.New("database error fetching messages")
	}

	return messages, nil
}

func (r *gormMessageRepository) DeleteByConversationID(ctx context.Context, conversationID string) error {
	if conversationID == "" {
		return errors.New("invalid conversation ID")
	}

	result := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Delete(&domain.Message{})
	if result.Error != nil {
		log.Printf("[MessageRepository] Database error deleting messages for conversation %s: %v", conversationID, result.Error)
		return errors.New("database error deleting messages")
	}

	log.Printf("[MessageRepository] Deleted %d messages for conversation %s", result.RowsAffected, conversationID)
	return nil
}

func (r *gormMessageRepository) validateMessageInput(msg *domain.Message) error {
	if msg == nil {
		return errors.New("message cannot be nil")
	}
	if msg.ID == "" {
		return errors.New("message ID is required")
	}
	if msg.ConversationID == "" {
		return errors.New("conversation ID is required")
	}
	if msg.Role != domain.RoleUser && msg.Role != domain.RoleAssistant {
		return fmt.Errorf("invalid message role: %q", msg.Role)
	}
	return nil
}
