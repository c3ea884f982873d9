package chat

import (
	"context"
	"strings"

	"github.com/minichat/minichat/internal/domain"
	"github.com/minichat/minichat/internal/repository/conversation"
)

// Lifecycle tracks the active conversation identity for one UI session
// and creates the conversation row lazily on the first outgoing
// message. Once active it stays active for the session; switching
// conversations means building a fresh Lifecycle scoped to the new id.
type Lifecycle struct {
	conversations conversation.ConversationRepository
	logger        Logger
	titleMax      int
	onCreated     func(conv *domain.Conversation)

	activeID string
}

func NewLifecycle(
	conversations conversation.ConversationRepository,
	logger Logger,
	titleMax int,
	activeID string,
	onCreated func(conv *domain.Conversation),
) *Lifecycle {
	return &Lifecycle{
		conversations: conversations,
		logger:        logger,
		titleMax:      titleMax,
		onCreated:     onCreated,
		activeID:      activeID,
	}
}

// ActiveID returns the active conversation id, empty while no
// conversation exists yet.
func (l *Lifecycle) ActiveID() string {
	return l.activeID
}

// EnsureConversation creates the conversation row on first call, using
// the first message text truncated to the title limit as title, and
// caches the generated id. Subsequent calls are no-ops returning the
// cached id. A store failure surfaces as a persistence error and
// leaves the lifecycle empty so the caller may retry by resubmitting.
func (l *Lifecycle) EnsureConversation(ctx context.Context, firstMessageText string) (string, error) {
	if l.activeID != "" {
		return l.activeID, nil
	}

	created, err := l.conversations.Create(ctx, &domain.Conversation{
		Title: DeriveTitle(firstMessageText, l.titleMax),
	})
	if err != nil {
		return "", NewPersistenceError("ensure_conversation", "could not create conversation", err)
	}

	l.activeID = created.ID
	l.logger.Info("conversation created", "conversation_id", created.ID)
	if l.onCreated != nil {
		l.onCreated(created)
	}
	return l.activeID, nil
}

// DeriveTitle truncates the first message to at most max characters.
// A message of exactly max characters is kept intact. Blank input
// falls back to the default title.
func DeriveTitle(firstMessageText string, max int) string {
	text := strings.TrimSpace(firstMessageText)
	if text == "" {
		return DefaultTitle
	}
	runes := []rune(text)
	if len(runes) > max {
		return string(runes[:max])
	}
	return text
}
