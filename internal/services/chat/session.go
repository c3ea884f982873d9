package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/minichat/minichat/internal/domain"
	"github.com/minichat/minichat/internal/services/ai"
)

// Callbacks receive the observable events of a streaming turn.
type Callbacks struct {
	OnStatus func(status Status)
	OnDelta  func(delta string) error
	OnDone   func(msg domain.Message)
}

// Session owns the in-memory message sequence of one UI session and
// orchestrates streaming turns against it. The sequence is the source
// of truth while a turn is in flight; the store is the durable sink,
// fed through the lifecycle controller and the synchronizer.
type Session struct {
	config    *Config
	lifecycle *Lifecycle
	sync      *Synchronizer
	provider  ai.Provider
	logger    Logger

	messages []domain.Message

	mu     sync.Mutex
	status Status
	cancel context.CancelFunc
}

func NewSession(
	config *Config,
	lifecycle *Lifecycle,
	synchronizer *Synchronizer,
	provider ai.Provider,
	logger Logger,
	history []domain.Message,
) *Session {
	return &Session{
		config:    config,
		lifecycle: lifecycle,
		sync:      synchronizer,
		provider:  provider,
		logger:    logger,
		messages:  append([]domain.Message(nil), history...),
		status:    StatusIdle,
	}
}

// Messages returns the current in-memory sequence, including any
// partially streamed assistant message.
func (s *Session) Messages() []domain.Message {
	return s.messages
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Stop cancels the in-flight stream. The cancellation is cooperative:
// the session stops applying tokens, whatever the upstream call keeps
// producing. Partial assistant content stays visible but is never
// persisted.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// Submit runs one full streaming turn: reject blank input, make sure
// the conversation row exists before anything belonging to it can be
// saved, append and persist the user message, stream the assistant
// reply, and persist it once complete.
func (s *Session) Submit(ctx context.Context, text string, cb Callbacks) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}

	s.setStatus(StatusSubmitted, cb)

	conversationID, err := s.lifecycle.EnsureConversation(ctx, text)
	if err != nil {
		s.setStatus(StatusError, cb)
		return err
	}

	userMessage := domain.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Role:           domain.RoleUser,
		Parts:          domain.Parts{domain.TextPart(text)},
		CreatedAt:      time.Now(),
	}
	s.messages = append(s.messages, userMessage)

	if err := s.sync.Observe(ctx, conversationID, s.messages); err != nil {
		s.setStatus(StatusError, cb)
		return err
	}

	streamCtx, cancel := context.WithTimeout(ctx, s.config.StreamTimeout)
	defer cancel()
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	history := s.toModelMessages()
	assistantIndex := len(s.messages)
	s.messages = append(s.messages, domain.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Role:           domain.RoleAssistant,
		Parts:          domain.Parts{domain.TextPart("")},
		CreatedAt:      time.Now(),
	})

	streamErr := s.provider.StreamCompletion(streamCtx, s.config.SystemPrompt, history, func(delta string) error {
		if s.Status() != StatusStreaming {
			s.setStatus(StatusStreaming, cb)
		}
		s.messages[assistantIndex].Parts[0].Text += delta
		if cb.OnDelta != nil {
			return cb.OnDelta(delta)
		}
		return nil
	})

	s.mu.Lock()
	s.cancel = nil
	s.mu.Unlock()

	if streamErr != nil {
		if errors.Is(streamErr, context.Canceled) {
			// Stopped mid-stream: the partial reply stays in the
			// sequence, only a completed message is ever persisted.
			s.logger.Info("stream cancelled", "conversation_id", conversationID)
			s.setStatus(StatusIdle, cb)
			return nil
		}
		s.setStatus(StatusError, cb)
		return NewStreamError("submit", "AI streaming failed", streamErr)
	}

	saveCtx, saveCancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.SaveTimeout)
	defer saveCancel()
	if err := s.sync.Finish(saveCtx, conversationID, s.messages[assistantIndex]); err != nil {
		s.setStatus(StatusError, cb)
		return err
	}

	s.setStatus(StatusIdle, cb)
	if cb.OnDone != nil {
		cb.OnDone(s.messages[assistantIndex])
	}
	return nil
}

func (s *Session) setStatus(status Status, cb Callbacks) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
	if cb.OnStatus != nil {
		cb.OnStatus(status)
	}
}

func (s *Session) toModelMessages() []ai.ChatMessage {
	out := make([]ai.ChatMessage, 0, len(s.messages))
	for i := range s.messages {
		out = append(out, ai.ChatMessage{
			Role:    s.messages[i].Role,
			Content: s.messages[i].Text(),
		})
	}
	return out
}
