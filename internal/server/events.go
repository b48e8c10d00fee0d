package server

import (
	"context"

	"github.com/okazdal/mailtm/pkg/models"
)

// Kind identifies one of the closed set of events the watcher dispatches.
type Kind string

const (
	KindServerStarted     Kind = "ServerStarted"
	KindServerCalledOff   Kind = "ServerCalledOff"
	KindNewMessage        Kind = "NewMessage"
	KindMessageDelete     Kind = "MessageDelete"
	KindDomainChange      Kind = "DomainChange"
	KindAccountSwitched   Kind = "AccountSwitched"
	KindNewAccountCreated Kind = "NewAccountCreated"
	KindAccountDeleted    Kind = "AccountDeleted"
)

func (k Kind) valid() bool {
	switch k {
	case KindServerStarted, KindServerCalledOff, KindNewMessage, KindMessageDelete,
		KindDomainChange, KindAccountSwitched, KindNewAccountCreated, KindAccountDeleted:
		return true
	}
	return false
}

// Event is implemented by every dispatched event type.
type Event interface {
	Kind() Kind
	// Client returns the API client attached to the watcher, for handlers
	// that need to call back into the remote service.
	Client() MailClient
	// Server returns the watcher that dispatched the event.
	Server() *Server
}

// base carries the references shared by all events.
type base struct {
	kind   Kind
	client MailClient
	server *Server
}

func (b base) Kind() Kind         { return b.kind }
func (b base) Client() MailClient { return b.client }
func (b base) Server() *Server    { return b.server }

// ServerStarted fires once when the poll loop enters its running state.
type ServerStarted struct{ base }

// ServerCalledOff fires once during shutdown, after the client connection has
// been released.
type ServerCalledOff struct{ base }

// NewMessage fires when the newest message id changes between polls.
type NewMessage struct {
	base
	Message models.Message
}

// Delete removes the message from the mailbox. A MessageDelete event is
// dispatched before the remote call; deletes performed directly on the client
// dispatch nothing.
func (e *NewMessage) Delete(ctx context.Context) error {
	if e.Message.ID == "" {
		return nil
	}
	e.server.dispatch(ctx, &MessageDelete{base: e.server.event(KindMessageDelete), Deleted: e.Message})
	return e.client.DeleteMessage(ctx, e.Message.ID)
}

// MarkSeen flags the message as seen.
func (e *NewMessage) MarkSeen(ctx context.Context) error {
	if e.Message.ID == "" {
		return nil
	}
	return e.client.MarkAsSeen(ctx, e.Message.ID)
}

// MessageDelete fires when a message is deleted through the watcher.
type MessageDelete struct {
	base
	Deleted models.Message
}

// DomainChange fires when the newest available domain differs from the
// retained one.
type DomainChange struct {
	base
	NewDomain models.Domain
}

// AccountSwitched fires after SwitchAccount has replaced the client
// credential. LastAuth identifies the account polled before the switch.
type AccountSwitched struct {
	base
	LastAuth Auth
}

// NewAccountCreated fires after CreateAccount succeeds. Auth carries the
// freshly derived token for the new account.
type NewAccountCreated struct {
	base
	Auth    Auth
	Account models.Account
}

// AccountDeleted fires after DeleteAccount succeeds.
type AccountDeleted struct {
	base
	AccountID string
}
