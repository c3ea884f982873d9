package conversation

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/minichat/minichat/internal/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Conversation{}, &domain.Message{}))
	return db
}

func TestCreate_AssignsID(t *testing.T) {
	repo := NewConversationRepository(newTestDB(t))

	created, err := repo.Create(context.Background(), &domain.Conversation{Title: "Hello"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Hello", created.Title)
	assert.False(t, created.CreatedAt.IsZero())

	found, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
}

func TestCreate_RejectsInvalidTitle(t *testing.T) {
	repo := NewConversationRepository(newTestDB(t))

	_, err := repo.Create(context.Background(), &domain.Conversation{Title: ""})
	assert.Error(t, err)

	tooLong := make([]rune, 101)
	for i := range tooLong {
		tooLong[i] = 'x'
	}
	_, err = repo.Create(context.Background(), &domain.Conversation{Title: string(tooLong)})
	assert.Error(t, err)
}

func TestFindAll_OrderedByUpdatedAtDesc(t *testing.T) {
	db := newTestDB(t)
	repo := NewConversationRepository(db)
	ctx := context.Background()

	older, err := repo.Create(ctx, &domain.Conversation{Title: "older"})
	require.NoError(t, err)
	newer, err := repo.Create(ctx, &domain.Conversation{Title: "newer"})
	require.NoError(t, err)

	// Push the timestamps apart explicitly; sub-millisecond inserts can
	// otherwise tie.
	require.NoError(t, db.Model(&domain.Conversation{}).Where("id = ?", older.ID).
		Update("updated_at", time.Now().Add(-time.Hour)).Error)
	require.NoError(t, db.Model(&domain.Conversation{}).Where("id = ?", newer.ID).
		Update("updated_at", time.Now()).Error)

	convs, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, convs, 2)
	assert.Equal(t, newer.ID, convs[0].ID)
	assert.Equal(t, older.ID, convs[1].ID)
}

func TestTouchUpdatedAt(t *testing.T) {
	db := newTestDB(t)
	repo := NewConversationRepository(db)
	ctx := context.Background()

	conv, err := repo.Create(ctx, &domain.Conversation{Title: "touch me"})
	require.NoError(t, err)
	require.NoError(t, db.Model(&domain.Conversation{}).Where("id = ?", conv.ID).
		Update("updated_at", time.Now().Add(-time.Hour)).Error)

	before, err := repo.FindByID(ctx, conv.ID)
	require.NoError(t, err)

	require.NoError(t, repo.TouchUpdatedAt(ctx, conv.ID))

	after, err := repo.FindByID(ctx, conv.ID)
	require.NoError(t, err)
	assert.True(t, after.UpdatedAt.After(before.UpdatedAt))
}

func TestUpdateTitle(t *testing.T) {
	repo := NewConversationRepository(newTestDB(t))
	ctx := context.Background()

	conv, err := repo.Create(ctx, &domain.Conversation{Title: "old"})
	require.NoError(t, err)

	require.NoError(t, repo.UpdateTitle(ctx, conv.ID, "renamed"))

	found, err := repo.FindByID(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", found.Title)

	assert.ErrorIs(t, repo.UpdateTitle(ctx, "no-such-id", "x"), ErrConversationNotFound)
}

func TestTouchUpdatedAt_NotFound(t *testing.T) {
	repo := NewConversationRepository(newTestDB(t))
	err := repo.TouchUpdatedAt(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestDelete(t *testing.T) {
	repo := NewConversationRepository(newTestDB(t))
	ctx := context.Background()

	conv, err := repo.Create(ctx, &domain.Conversation{Title: "doomed"})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, conv.ID))

	_, err = repo.FindByID(ctx, conv.ID)
	assert.ErrorIs(t, err, ErrConversationNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, conv.ID), ErrConversationNotFound)
}
