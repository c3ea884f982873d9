package chat

import (
	"context"
	"fmt"

	"github.com/minichat/minichat/internal/domain"
	"github.com/minichat/minichat/internal/services/ai"
)

type noopLogger struct{}

func (noopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (noopLogger) Error(msg string, keysAndValues ...interface{}) {}
func (noopLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (noopLogger) Warn(msg string, keysAndValues ...interface{})  {}

// fakeConversationRepo records calls; failures are scripted per method.
type fakeConversationRepo struct {
	createCalls int
	createErr   error
	created     []*domain.Conversation

	touchCalls []string
	touchErr   error
}

func (f *fakeConversationRepo) Create(ctx context.Context, conv *domain.Conversation) (*domain.Conversation, error) {
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	conv.ID = fmt.Sprintf("conv-%d", f.createCalls)
	f.created = append(f.created, conv)
	return conv, nil
}

func (f *fakeConversationRepo) FindByID(ctx context.Context, id string) (*domain.Conversation, error) {
	for _, c := range f.created {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, fmt.Errorf("conversation not found")
}

func (f *fakeConversationRepo) FindAll(ctx context.Context) ([]domain.Conversation, error) {
	out := make([]domain.Conversation, 0, len(f.created))
	for _, c := range f.created {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeConversationRepo) UpdateTitle(ctx context.Context, id, title string) error {
	return nil
}

func (f *fakeConversationRepo) TouchUpdatedAt(ctx context.Context, id string) error {
	f.touchCalls = append(f.touchCalls, id)
	return f.touchErr
}

func (f *fakeConversationRepo) Delete(ctx context.Context, id string) error {
	return nil
}

// fakeMessageRepo keeps rows by id so redelivery overwrites.
type fakeMessageRepo struct {
	upsertErr    error
	upsertCounts map[string]int
	rows         map[string]domain.Message
	order        []string
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{
		upsertCounts: map[string]int{},
		rows:         map[string]domain.Message{},
	}
}

func (f *fakeMessageRepo) Upsert(ctx context.Context, msg *domain.Message) (*domain.Message, error) {
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	if _, seen := f.rows[msg.ID]; !seen {
		f.order = append(f.order, msg.ID)
	}
	f.upsertCounts[msg.ID]++
	f.rows[msg.ID] = *msg
	return msg, nil
}

func (f *fakeMessageRepo) FindByConversationID(ctx context.Context, conversationID string) ([]domain.Message, error) {
	var out []domain.Message
	for _, id := range f.order {
		if f.rows[id].ConversationID == conversationID {
			out = append(out, f.rows[id])
		}
	}
	return out, nil
}

func (f *fakeMessageRepo) DeleteByConversationID(ctx context.Context, conversationID string) error {
	return nil
}

func (f *fakeMessageRepo) countByRole(role string) int {
	n := 0
	for _, m := range f.rows {
		if m.Role == role {
			n++
		}
	}
	return n
}

// fakeProvider streams scripted deltas.
type fakeProvider struct {
	calls  int
	fn     func(ctx context.Context, system string, messages []ai.ChatMessage, onDelta func(string) error) error
	system string
	seen   []ai.ChatMessage
}

func scriptedProvider(deltas ...string) *fakeProvider {
	p := &fakeProvider{}
	p.fn = func(ctx context.Context, system string, messages []ai.ChatMessage, onDelta func(string) error) error {
		for _, d := range deltas {
			if err := onDelta(d); err != nil {
				return err
			}
		}
		return nil
	}
	return p
}

func (f *fakeProvider) StreamCompletion(ctx context.Context, system string, messages []ai.ChatMessage, onDelta func(string) error) error {
	f.calls++
	f.system = system
	f.seen = append([]ai.ChatMessage(nil), messages...)
	return f.fn(ctx, system, messages, onDelta)
}
