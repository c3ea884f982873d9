package services

import (
	"context"
	"errors"

	"github.com/minichat/minichat/internal/domain"
	"github.com/minichat/minichat/internal/repository/conversation"
	"github.com/minichat/minichat/internal/repository/message"
	chatservice "github.com/minichat/minichat/internal/services/chat"
	"github.com/minichat/minichat/internal/services/ai"
)

var ErrConversationNotFound = conversation.ErrConversationNotFound

// ChatService is the handler-facing facade over the store and the
// streaming components.
type ChatService struct {
	config           *chatservice.Config
	conversationRepo conversation.ConversationRepository
	messageRepo      message.MessageRepository
	provider         ai.Provider
	logger           Logger
}

func NewChatService(
	conversationRepo conversation.ConversationRepository,
	messageRepo message.MessageRepository,
	provider ai.Provider,
	config *chatservice.Config,
	logger Logger,
) (*ChatService, error) {
	if conversationRepo == nil {
		return nil, chatservice.NewValidationError("constructor", "conversation repository is required")
	}
	if messageRepo == nil {
		return nil, chatservice.NewValidationError("constructor", "message repository is required")
	}
	if provider == nil {
		return nil, chatservice.NewValidationError("constructor", "AI provider is required")
	}
	if config == nil {
		config = chatservice.DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, chatservice.NewValidationError("config", err.Error())
	}
	if logger == nil {
		logger = &NoOpLogger{}
	}

	return &ChatService{
		config:           config,
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		provider:         provider,
		logger:           logger,
	}, nil
}

// ListConversations returns the sidebar list ordered by last update,
// newest first. A store failure degrades to an empty list instead of
// propagating; an unavailable store yields an empty sidebar, not a
// broken page.
func (s *ChatService) ListConversations(ctx context.Context) []domain.Conversation {
	convs, err := s.conversationRepo.FindAll(ctx)
	if err != nil {
		s.logger.Error("could not list conversations", "error", err)
		return []domain.Conversation{}
	}
	if convs == nil {
		convs = []domain.Conversation{}
	}
	return convs
}

// GetConversationMessages loads the full history of a conversation in
// turn order. Loading triggers no writes.
func (s *ChatService) GetConversationMessages(ctx context.Context, conversationID string) ([]domain.Message, error) {
	if _, err := s.conversationRepo.FindByID(ctx, conversationID); err != nil {
		if errors.Is(err, conversation.ErrConversationNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, chatservice.NewPersistenceError("get_messages", "could not load conversation", err)
	}

	messages, err := s.messageRepo.FindByConversationID(ctx, conversationID)
	if err != nil {
		return nil, chatservice.NewPersistenceError("get_messages", "could not load messages", err)
	}
	return messages, nil
}

// DeleteConversation removes the conversation and its messages.
// Deletion is terminal.
func (s *ChatService) DeleteConversation(ctx context.Context, conversationID string) error {
	if err := s.messageRepo.DeleteByConversationID(ctx, conversationID); err != nil {
		return chatservice.NewPersistenceError("delete_conversation", "could not delete messages", err)
	}
	if err := s.conversationRepo.Delete(ctx, conversationID); err != nil {
		if errors.Is(err, conversation.ErrConversationNotFound) {
			return ErrConversationNotFound
		}
		return chatservice.NewPersistenceError("delete_conversation", "could not delete conversation", err)
	}
	return nil
}

// NewSession builds a streaming session scoped to the given
// conversation id (empty for a new chat) seeded with its history.
// onCreated fires when a first submit lazily creates the conversation;
// the caller uses it as the sidebar refresh signal.
func (s *ChatService) NewSession(
	conversationID string,
	history []domain.Message,
	onCreated func(conv *domain.Conversation),
) *chatservice.Session {
	lifecycle := chatservice.NewLifecycle(
		s.conversationRepo, s.logger, s.config.TitleMaxLength, conversationID, onCreated,
	)
	synchronizer := chatservice.NewSynchronizer(
		s.messageRepo, s.conversationRepo, s.logger, len(history),
	)
	return chatservice.NewSession(s.config, lifecycle, synchronizer, s.provider, s.logger, history)
}
