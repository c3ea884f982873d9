package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minichat/minichat/internal/domain"
)

func seqMessage(id, role, text string) domain.Message {
	return domain.Message{
		ID:        id,
		Role:      role,
		Parts:     domain.Parts{domain.TextPart(text)},
		CreatedAt: time.Now(),
	}
}

func TestObserve_PersistsNewUserMessagesOnce(t *testing.T) {
	msgs := newFakeMessageRepo()
	convs := &fakeConversationRepo{}
	s := NewSynchronizer(msgs, convs, noopLogger{}, 0)
	ctx := context.Background()

	seq := []domain.Message{seqMessage("u1", domain.RoleUser, "Hi")}
	require.NoError(t, s.Observe(ctx, "conv-1", seq))
	assert.Equal(t, 1, msgs.upsertCounts["u1"])

	// Assistant growth during streaming is not a new user message.
	seq = append(seq, seqMessage("a1", domain.RoleAssistant, "partial"))
	require.NoError(t, s.Observe(ctx, "conv-1", seq))
	assert.Zero(t, msgs.upsertCounts["a1"])
	assert.Equal(t, 1, msgs.upsertCounts["u1"])

	// Next turn's user message is picked up from the delta alone.
	seq = append(seq, seqMessage("u2", domain.RoleUser, "More"))
	require.NoError(t, s.Observe(ctx, "conv-1", seq))
	assert.Equal(t, 1, msgs.upsertCounts["u2"])
	assert.Equal(t, 1, msgs.upsertCounts["u1"])
}

func TestObserve_WithoutConversationDoesNotAdvance(t *testing.T) {
	msgs := newFakeMessageRepo()
	convs := &fakeConversationRepo{}
	s := NewSynchronizer(msgs, convs, noopLogger{}, 0)
	ctx := context.Background()

	seq := []domain.Message{seqMessage("u1", domain.RoleUser, "Hi")}
	require.NoError(t, s.Observe(ctx, "", seq))
	assert.Empty(t, msgs.rows)

	// Once the conversation exists the message is still picked up.
	require.NoError(t, s.Observe(ctx, "conv-1", seq))
	assert.Equal(t, 1, msgs.upsertCounts["u1"])
}

func TestObserve_UpsertFailureSurfaces(t *testing.T) {
	msgs := newFakeMessageRepo()
	msgs.upsertErr = errors.New("store down")
	s := NewSynchronizer(msgs, &fakeConversationRepo{}, noopLogger{}, 0)

	err := s.Observe(context.Background(), "conv-1", []domain.Message{seqMessage("u1", domain.RoleUser, "Hi")})
	require.Error(t, err)
	assert.True(t, IsPersistenceError(err))
}

func TestFinish_PersistsAssistantOnce(t *testing.T) {
	msgs := newFakeMessageRepo()
	convs := &fakeConversationRepo{}
	s := NewSynchronizer(msgs, convs, noopLogger{}, 0)

	done := seqMessage("a1", domain.RoleAssistant, "Hello!")
	require.NoError(t, s.Finish(context.Background(), "conv-1", done))
	assert.Equal(t, 1, msgs.upsertCounts["a1"])
	assert.Equal(t, []string{"conv-1"}, convs.touchCalls)

	// A duplicate trigger overwrites the same row.
	require.NoError(t, s.Finish(context.Background(), "conv-1", done))
	assert.Equal(t, 2, msgs.upsertCounts["a1"])
	assert.Len(t, msgs.rows, 1)
}

func TestFinish_WithoutConversationSkipsPersistence(t *testing.T) {
	msgs := newFakeMessageRepo()
	s := NewSynchronizer(msgs, &fakeConversationRepo{}, noopLogger{}, 0)

	require.NoError(t, s.Finish(context.Background(), "", seqMessage("a1", domain.RoleAssistant, "orphan")))
	assert.Empty(t, msgs.rows)
}

func TestSave_TouchFailureIsBestEffort(t *testing.T) {
	msgs := newFakeMessageRepo()
	convs := &fakeConversationRepo{touchErr: errors.New("timestamp write failed")}
	s := NewSynchronizer(msgs, convs, noopLogger{}, 0)

	// The message write succeeded; a stale updated_at is not an error.
	err := s.Finish(context.Background(), "conv-1", seqMessage("a1", domain.RoleAssistant, "Hello!"))
	require.NoError(t, err)
	assert.Equal(t, 1, msgs.upsertCounts["a1"])
}

func TestSave_TouchesConversationPerWrite(t *testing.T) {
	msgs := newFakeMessageRepo()
	convs := &fakeConversationRepo{}
	s := NewSynchronizer(msgs, convs, noopLogger{}, 0)
	ctx := context.Background()

	require.NoError(t, s.Observe(ctx, "conv-1", []domain.Message{seqMessage("u1", domain.RoleUser, "Hi")}))
	require.NoError(t, s.Finish(ctx, "conv-1", seqMessage("a1", domain.RoleAssistant, "Hello!")))
	assert.Equal(t, []string{"conv-1", "conv-1"}, convs.touchCalls)
}
