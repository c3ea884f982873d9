package conversation

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minichat/minichat/internal/domain"
)

var ErrConversationNotFound = errors.New("conversation not found")

const maxTitleLength = 100

type gormConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &gormConversationRepository{db: db}
}

// Create inserts a new conversation row. An ID is generated here when
// the caller did not supply one, which is how the generated identifier
// gets back to the caller on the same call.
func (r *gormConversationRepository) Create(ctx context.Context, conv *domain.Conversation) (*domain.Conversation, error) {
	if err := r.validateConversationInput(conv); err != nil {
		log.Printf("[ConversationRepository] Validation failed: %v", err)
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if conv.ID == "" {
		conv.ID = uuid.NewString()
	}

	if err := r.db.WithContext(ctx).Create(conv).Error; err != nil {
		log.Printf("[ConversationRepository] Database error during conversation creation: %v", err)
		return nil, errors.New("database error creating conversation")
	}

	log.Printf("[ConversationRepository] Conversation created with ID: %s", conv.ID)
	return conv, nil
}

func (r *gormConversationRepository) FindByID(ctx context.Context, id string) (*domain.Conversation, error) {
	if id == "" {
		return nil, errors.New("invalid conversation ID")
	}

	var conv domain.Conversation
	err := r.db.WithContext(ctx).First(&conv, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		log.Printf("[ConversationRepository] FindByID database error: %v", err)
		return nil, errors.New("database query failed")
	}
	return &conv, nil
}

func (r *gormConversationRepository) FindAll(ctx context.Context) ([]domain.Conversation, error) {
	var convs []domain.Conversation
	err := r.db.WithContext(ctx).
		Order("updated_at DESC, id DESC").
		Find(&convs).Error
	if err != nil {
		log.Printf("[ConversationRepository] Database error fetching conversations: %v", err)
		return nil, errors.New("database error fetching conversations")
	}
	return convs, nil
}

func (r *gormConversationRepository) UpdateTitle(ctx context.Context, id, title string) error {
	if id == "" {
		return errors.New("invalid conversation ID")
	}
	if err := r.validateTitle(title); err != nil {
		return fmt.Errorf("title validation: %w", err)
	}

	result := r.db.WithContext(ctx).
		Model(&domain.Conversation{}).
		Where("id = ?", id).
		Update("title", title)

	if result.Error != nil {
		log.Printf("[ConversationRepository] Database error updating title for conversation %s: %v", id, result.Error)
		return errors.New("database error updating conversation title")
	}
	if result.RowsAffected == 0 {
		return ErrConversationNotFound
	}
	return nil
}

func (r *gormConversationRepository) TouchUpdatedAt(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("invalid conversation ID")
	}

	result := r.db.WithContext(ctx).
		Model(&domain.Conversation{}).
		Where("id = ?", id).
		Update("updated_at", gorm.Expr("CURRENT_TIMESTAMP"))

	if result.Error != nil {
		log.Printf("[ConversationRepository] Database error updating timestamp for conversation %s: %v", id, result.Error)
		return errors.New("database error updating conversation timestamp")
	}
	if result.RowsAffected == 0 {
		return ErrConversationNotFound
	}
	return nil
}

// Delete removes the conversation row. Deletion is terminal; there is
// no soft-delete.
func (r *gormConversationRepository) Delete(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("invalid conversation ID")
	}

	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&domain.Conversation{})

	if result.Error != nil {
		log.Printf("[ConversationRepository] Database error deleting conversation %s: %v", id, result.Error)
		return errors.New("database error deleting conversation")
	}
	if result.RowsAffected == 0 {
		return ErrConversationNotFound
	}

	log.Printf("[ConversationRepository] Conversation deleted: %s", id)
	return nil
}

func (r *gormConversationRepository) validateConversationInput(conv *domain.Conversation) error {
	if conv == nil {
		return errors.New("conversation cannot be nil")
	}
	return r.validateTitle(conv.Title)
}

func (r *gormConversationRepository) validateTitle(title string) error {
	if title == "" {
		return errors.New("title is required")
	}
	if len([]rune(title)) > maxTitleLength {
		return fmt.Errorf("title must be %d characters or less", maxTitleLength)
	}
	return nil
}
