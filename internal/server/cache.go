package server

import (
	"sync"

	"github.com/okazdal/mailtm/pkg/models"
)

// Category names one of the cache buckets.
type Category string

const (
	CategoryNewAccounts Category = "new_accounts"
	CategoryNewMessages Category = "new_messages"
	CategoryOldMessages Category = "old_messages"
	CategoryDomains     Category = "domains"
)

// Cache is an append-only observational log of everything the watcher has
// seen since it started. It is unbounded on purpose: entries accumulate for
// the lifetime of the process and are dropped at shutdown. Long-running
// high-volume deployments should treat memory growth here as a known cost.
type Cache struct {
	mu      sync.Mutex
	buckets map[Category][]any
}

func newCache() *Cache {
	return &Cache{}
}

// Reset recreates the four empty buckets. Called once at loop start.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buckets = map[Category][]any{
		CategoryNewAccounts: {},
		CategoryNewMessages: {},
		CategoryOldMessages: {},
		CategoryDomains:     {},
	}
}

// Record appends item to the category's bucket, preserving insertion order.
func (c *Cache) Record(category Category, item any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.buckets == nil {
		c.buckets = make(map[Category][]any)
	}
	c.buckets[category] = append(c.buckets[category], item)
}

// Clear drops every bucket. Used at shutdown.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.buckets = nil
	c.mu.Unlock()
}

// Len reports how many entries category holds.
func (c *Cache) Len(category Category) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.buckets[category])
}

// messages returns the messages recorded under category in insertion order.
// Unknown or empty categories yield an empty slice, never an error.
func (c *Cache) messages(category Category) []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := []models.Message{}
	for _, item := range c.buckets[category] {
		if m, ok := item.(models.Message); ok {
			out = append(out, m)
		}
	}
	return out
}

// NewMessages returns a snapshot of the messages the poll loop has turned
// into NewMessage events.
func (c *Cache) NewMessages() []models.Message {
	return c.messages(CategoryNewMessages)
}

// OldMessages returns a snapshot of the messages deleted through the watcher.
func (c *Cache) OldMessages() []models.Message {
	return c.messages(CategoryOldMessages)
}

// NewAccounts returns a snapshot of accounts created through the watcher.
func (c *Cache) NewAccounts() []models.Account {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := []models.Account{}
	for _, item := range c.buckets[CategoryNewAccounts] {
		if a, ok := item.(models.Account); ok {
			out = append(out, a)
		}
	}
	return out
}

// Domains returns a snapshot of the domain changes observed so far.
func (c *Cache) Domains() []models.Domain {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := []models.Domain{}
	for _, item := range c.buckets[CategoryDomains] {
		if d, ok := item.(models.Domain); ok {
			out = append(out, d)
		}
	}
	return out
}
