package archive

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okazdal/mailtm/internal/parser"
	"github.com/okazdal/mailtm/pkg/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func testMessage(id string) models.Message {
	return models.Message{
		ID:        id,
		AccountID: "acc-1",
		From:      &models.Address{Name: "Alice", Address: "alice@example.com"},
		Subject:   "Your code",
		Intro:     "Your code is 4821",
		Text:      "Your code is 4821. It expires in 10 minutes.",
		Size:      512,
		CreatedAt: time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC),
	}
}

func TestSaveAndGetRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	codes := []parser.DetectedCode{{Type: "otp", Value: "4821"}}
	require.NoError(t, store.Save(ctx, testMessage("msg-1"), codes))

	rec, err := store.Get(ctx, "msg-1")
	require.NoError(t, err)

	assert.Equal(t, "acc-1", rec.AccountID)
	assert.Equal(t, "alice@example.com", rec.FromAddr)
	assert.Equal(t, "Alice", rec.FromName)
	assert.Equal(t, "Your code", rec.Subject)
	assert.Contains(t, rec.BodyText, "expires in 10 minutes")
	assert.False(t, rec.ArchivedAt.IsZero())

	decoded := rec.Codes()
	require.Len(t, decoded, 1)
	assert.Equal(t, "otp", decoded[0].Type)
	assert.Equal(t, "4821", decoded[0].Value)
}

func TestSaveSameMessageTwice(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testMessage("msg-1"), nil))
	err := store.Save(ctx, testMessage("msg-1"), nil)

	assert.ErrorIs(t, err, ErrAlreadyArchived)
}

func TestListNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	older := testMessage("msg-old")
	older.CreatedAt = time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)
	newer := testMessage("msg-new")
	newer.CreatedAt = time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, older, nil))
	require.NoError(t, store.Save(ctx, newer, nil))

	records, err := store.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "msg-new", records[0].ID)
	assert.Equal(t, "msg-old", records[1].ID)
}

func TestGetMissingRecord(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "nope")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCodesOnEmptyColumn(t *testing.T) {
	rec := &Record{}
	assert.Nil(t, rec.Codes())
}
