package chat

import (
	"context"

	"github.com/minichat/minichat/internal/domain"
	"github.com/minichat/minichat/internal/repository/conversation"
	"github.com/minichat/minichat/internal/repository/message"
)

// Synchronizer persists the in-memory message sequence of a streaming
// turn. User messages are detected by comparing the sequence length to
// the last observed length; the assistant message is persisted only
// through Finish, driven by the stream's completion callback, never by
// sequence diffing. All writes are upserts keyed by message id, so a
// duplicate trigger overwrites instead of duplicating.
type Synchronizer struct {
	messages      message.MessageRepository
	conversations conversation.ConversationRepository
	logger        Logger

	observed int
}

func NewSynchronizer(
	messages message.MessageRepository,
	conversations conversation.ConversationRepository,
	logger Logger,
	initialLength int,
) *Synchronizer {
	return &Synchronizer{
		messages:      messages,
		conversations: conversations,
		logger:        logger,
		observed:      initialLength,
	}
}

// Observe inspects the sequence after a change and persists every
// newly appeared user message exactly once. Without an active
// conversation nothing is persisted and the observation mark does not
// advance, so the messages are picked up once the conversation exists.
func (s *Synchronizer) Observe(ctx context.Context, conversationID string, sequence []domain.Message) error {
	if conversationID == "" {
		return nil
	}
	if len(sequence) <= s.observed {
		s.observed = len(sequence)
		return nil
	}

	appeared := sequence[s.observed:]
	s.observed = len(sequence)

	for i := range appeared {
		if appeared[i].Role != domain.RoleUser {
			continue
		}
		if err := s.save(ctx, conversationID, &appeared[i]); err != nil {
			return err
		}
	}
	return nil
}

// Finish persists the completed assistant message. Completion before
// any conversation exists persists nothing; the caller prevents that
// by sequencing conversation creation ahead of the model request.
func (s *Synchronizer) Finish(ctx context.Context, conversationID string, msg domain.Message) error {
	if conversationID == "" {
		s.logger.Debug("assistant completion without active conversation; skipping persistence")
		return nil
	}
	return s.save(ctx, conversationID, &msg)
}

// save writes the message row and then touches the conversation's
// updated_at as a second, non-atomic write. The touch is best-effort:
// its failure leaves the timestamp stale but is not surfaced.
func (s *Synchronizer) save(ctx context.Context, conversationID string, msg *domain.Message) error {
	msg.ConversationID = conversationID
	if _, err := s.messages.Upsert(ctx, msg); err != nil {
		return NewPersistenceError("save_message", "could not save message", err)
	}
	if err := s.conversations.TouchUpdatedAt(ctx, conversationID); err != nil {
		s.logger.Warn("could not touch conversation timestamp",
			"conversation_id", conversationID, "error", err)
	}
	return nil
}
