package server

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okazdal/mailtm/pkg/models"
)

func TestCacheRecordPreservesOrder(t *testing.T) {
	c := newCache()
	c.Reset()

	c.Record(CategoryNewMessages, models.Message{ID: "A"})
	c.Record(CategoryNewMessages, models.Message{ID: "B"})
	c.Record(CategoryNewMessages, models.Message{ID: "C"})

	got := c.NewMessages()
	require.Len(t, got, 3)
	assert.Equal(t, "A", got[0].ID)
	assert.Equal(t, "B", got[1].ID)
	assert.Equal(t, "C", got[2].ID)
	assert.Equal(t, 3, c.Len(CategoryNewMessages))
}

func TestCacheBucketsAreIndependent(t *testing.T) {
	c := newCache()
	c.Reset()

	c.Record(CategoryNewMessages, models.Message{ID: "A"})
	c.Record(CategoryOldMessages, models.Message{ID: "B"})
	c.Record(CategoryNewAccounts, models.Account{ID: "acc-1"})
	c.Record(CategoryDomains, models.Domain{ID: "dom-1"})

	assert.Len(t, c.NewMessages(), 1)
	assert.Len(t, c.OldMessages(), 1)
	assert.Len(t, c.NewAccounts(), 1)
	assert.Len(t, c.Domains(), 1)
}

func TestCacheUnknownCategoryIsEmptyNotError(t *testing.T) {
	c := newCache()
	c.Reset()

	assert.Zero(t, c.Len(Category("no_such_bucket")))
	assert.Empty(t, c.messages(Category("no_such_bucket")))
}

func TestCacheResetDropsExistingEntries(t *testing.T) {
	c := newCache()
	c.Reset()
	c.Record(CategoryNewMessages, models.Message{ID: "A"})

	c.Reset()

	assert.Empty(t, c.NewMessages())
	assert.Zero(t, c.Len(CategoryNewMessages))
}

func TestCacheClear(t *testing.T) {
	c := newCache()
	c.Reset()
	c.Record(CategoryDomains, models.Domain{ID: "dom-1"})

	c.Clear()

	assert.Empty(t, c.Domains())
	assert.Zero(t, c.Len(CategoryDomains))
}

func TestRegistryTracksSubscriptions(t *testing.T) {
	r := newRegistry()
	assert.Zero(t, r.size())
	assert.False(t, r.registered(KindNewMessage))

	called := false
	h := r.subscribe(KindNewMessage, func(ctx context.Context, ev Event) error {
		called = true
		return nil
	})
	require.NotNil(t, h)
	h(context.Background(), nil)

	assert.True(t, called)
	assert.True(t, r.registered(KindNewMessage))
	assert.False(t, r.registered(KindDomainChange))
	assert.Equal(t, 1, r.size())
	assert.Len(t, r.snapshot(KindNewMessage), 1)
	assert.Empty(t, r.snapshot(KindDomainChange))
}
