// Package server polls a mail.tm mailbox and dispatches typed events to
// subscribed handlers when its state changes.
package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okazdal/mailtm/pkg/models"
)

// MailClient is the slice of the API client the watcher depends on. The
// concrete implementation lives in internal/mailtm.
type MailClient interface {
	GetMessages(ctx context.Context, page int) (*models.MessagePage, error)
	GetMessage(ctx context.Context, id string) (*models.Message, error)
	DeleteMessage(ctx context.Context, id string) error
	MarkAsSeen(ctx context.Context, id string) error
	GetDomains(ctx context.Context) (*models.DomainPage, error)
	CreateAccount(ctx context.Context, address, password string) (*models.Account, error)
	DeleteAccount(ctx context.Context, id string) error
	GetToken(ctx context.Context, address, password string) (*models.Token, error)
	SetToken(token models.Token)
	Close() error
}

// State of the poll loop. Transitions are strictly
// Stopped -> Starting -> Running -> Stopping -> Stopped.
type State int32

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// ErrNoHandlers is returned by Run when no handler was subscribed before
// start. Polling with nobody listening is a configuration error.
var ErrNoHandlers = errors.New("no event handlers subscribed")

// ErrAlreadyStarted is returned by Run when the watcher is not in its
// stopped state. A watcher is single-use: once stopped it cannot be rerun.
var ErrAlreadyStarted = errors.New("watcher already started")

// Auth identifies the account the watcher polls. Token and AccountID are
// required; Address and Password are kept so the token can be re-derived.
type Auth struct {
	AccountID string
	Token     string
	Address   string
	Password  string
}

// Options configure the watcher.
type Options struct {
	Auth           Auth
	PollInterval   time.Duration // defaults to 1s
	Banner         bool          // render the startup banner
	Logger         *slog.Logger  // nil disables watcher logging
	SuppressErrors bool          // drop the watcher's own warn/error records
}

// Server watches an account's mailbox and domain set and dispatches events
// on change. The retained last-observed message and domain pointers and the
// cache are owned exclusively by the poll loop goroutine; handlers read event
// payloads and call back through the MailClient, they never mutate loop state
// directly.
type Server struct {
	client   MailClient
	auth     Auth
	interval time.Duration
	banner   bool
	suppress bool
	log      *slog.Logger

	registry *registry
	cache    *Cache

	state atomic.Int32

	// Retained state, touched only from the poll loop goroutine.
	lastMessage *models.Message
	lastDomain  *models.Domain

	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// New builds a watcher around client.
func New(client MailClient, opts Options) *Server {
	interval := opts.PollInterval
	if interval <= 0 {
		interval = time.Second
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{
		client:   client,
		auth:     opts.Auth,
		interval: interval,
		banner:   opts.Banner,
		suppress: opts.SuppressErrors,
		log:      log.With("component", "watcher"),
		registry: newRegistry(),
		cache:    newCache(),
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Client returns the API client the watcher polls with.
func (s *Server) Client() MailClient { return s.client }

// Cache returns the observational cache.
func (s *Server) Cache() *Cache { return s.cache }

// State returns the current loop state.
func (s *Server) State() State { return State(s.state.Load()) }

// Subscribe registers h under kind and returns it unchanged. Unknown kinds
// are rejected with a log record and no registration.
func (s *Server) Subscribe(kind Kind, h Handler) Handler {
	if !kind.valid() {
		s.logError("refusing to subscribe to unknown event kind", "kind", string(kind))
		return h
	}
	return s.registry.subscribe(kind, h)
}

// OnNewMessage registers a handler for NewMessage events.
func (s *Server) OnNewMessage(h func(ctx context.Context, ev *NewMessage) error) {
	s.registry.subscribe(KindNewMessage, func(ctx context.Context, ev Event) error {
		if m, ok := ev.(*NewMessage); ok {
			return h(ctx, m)
		}
		return nil
	})
}

// OnDomainChange registers a handler for DomainChange events. Registering one
// is what makes the loop poll the domain endpoint at all.
func (s *Server) OnDomainChange(h func(ctx context.Context, ev *DomainChange) error) {
	s.registry.subscribe(KindDomainChange, func(ctx context.Context, ev Event) error {
		if d, ok := ev.(*DomainChange); ok {
			return h(ctx, d)
		}
		return nil
	})
}

// Run starts the poll loop and blocks until ctx is cancelled or Stop is
// called. Starting with zero subscribed handlers is a configuration error:
// the client is closed and ErrNoHandlers returned without a single tick.
func (s *Server) Run(ctx context.Context) error {
	if !s.state.CompareAndSwap(int32(StateStopped), int32(StateStarting)) {
		return ErrAlreadyStarted
	}
	defer close(s.done)

	if s.registry.size() == 0 {
		s.state.Store(int32(StateStopped))
		if err := s.client.Close(); err != nil {
			s.logError("failed to close client", "error", err)
		}
		return ErrNoHandlers
	}

	s.cache.Reset()
	if s.banner {
		s.printBanner()
	}
	s.log.Info("watcher started",
		"poll_interval", s.interval,
		"handlers", s.registry.size(),
		"account_id", s.auth.AccountID,
	)

	s.state.Store(int32(StateRunning))
	s.dispatch(ctx, &ServerStarted{base: s.event(KindServerStarted)})

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.shutdown(context.WithoutCancel(ctx))
			return nil
		case <-s.stopCh:
			s.shutdown(context.WithoutCancel(ctx))
			return nil
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// Stop requests shutdown. Safe to call from a signal handler and from event
// handlers; the in-flight tick finishes before resources are released. Stop
// blocks until the loop has fully stopped or a grace period elapses.
func (s *Server) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	if s.State() == StateStopped {
		return
	}
	select {
	case <-s.done:
	case <-time.After(5 * time.Second):
		s.logWarn("watcher did not stop within grace period")
	}
}

// tick runs one poll iteration: fetch, compare against retained state, and
// dispatch at most one NewMessage and one DomainChange. Domain polling only
// happens while someone is subscribed to it.
func (s *Server) tick(ctx context.Context) {
	s.checkMessages(ctx)
	if s.registry.registered(KindDomainChange) {
		s.checkDomains(ctx)
	}
}

// checkMessages polls the first message page and fires NewMessage when the
// newest id differs from the retained one. A failed call abandons the tick
// without touching retained state; the next interval retries.
func (s *Server) checkMessages(ctx context.Context) {
	view, err := s.client.GetMessages(ctx, 1)
	if err != nil {
		s.logWarn("message poll failed", "error", err)
		return
	}
	if view == nil || len(view.Messages) == 0 {
		return
	}
	newest := view.Messages[0]
	if s.lastMessage != nil && s.lastMessage.ID == newest.ID {
		return
	}
	s.lastMessage = &newest
	s.dispatch(ctx, &NewMessage{base: s.event(KindNewMessage), Message: newest})
	s.cache.Record(CategoryNewMessages, newest)
	s.log.Info("received new message", "from", newest.FromAddress(), "subject", newest.Subject)
}

// checkDomains polls the domain list and fires DomainChange when the newest
// domain id differs from the retained one.
func (s *Server) checkDomains(ctx context.Context) {
	view, err := s.client.GetDomains(ctx)
	if err != nil {
		s.logWarn("domain poll failed", "error", err)
		return
	}
	if view == nil || len(view.Domains) == 0 {
		return
	}
	newest := view.Domains[0]
	if s.lastDomain != nil && s.lastDomain.ID == newest.ID {
		return
	}
	s.lastDomain = &newest
	s.dispatch(ctx, &DomainChange{base: s.event(KindDomainChange), NewDomain: newest})
	s.cache.Record(CategoryDomains, newest)
	s.logWarn("domain changed", "domain", newest.Domain)
}

// shutdown releases the client connection, announces ServerCalledOff and
// drops the cache. Runs on the loop goroutine, so no tick can be in flight.
func (s *Server) shutdown(ctx context.Context) {
	s.state.Store(int32(StateStopping))
	if err := s.client.Close(); err != nil {
		s.logError("failed to close client", "error", err)
	}
	s.dispatch(ctx, &ServerCalledOff{base: s.event(KindServerCalledOff)})
	s.cache.Clear()
	s.state.Store(int32(StateStopped))
	s.logWarn("watcher called off")
}

// dispatch invokes every handler subscribed to the event's kind in
// registration order, one at a time. A failing handler is logged and the
// remaining handlers still run; handler errors never take the loop down.
func (s *Server) dispatch(ctx context.Context, ev Event) {
	for _, h := range s.registry.snapshot(ev.Kind()) {
		if err := h(ctx, ev); err != nil {
			s.logError("event handler failed", "event", string(ev.Kind()), "error", err)
		}
	}
}

func (s *Server) event(kind Kind) base {
	return base{kind: kind, client: s.client, server: s}
}

func (s *Server) logWarn(msg string, args ...any) {
	if s.suppress {
		return
	}
	s.log.Warn(msg, args...)
}

func (s *Server) logError(msg string, args ...any) {
	if s.suppress {
		return
	}
	s.log.Error(msg, args...)
}
