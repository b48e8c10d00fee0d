package server

import (
	"context"

	"github.com/okazdal/mailtm/pkg/models"
)

// CreateAccount registers a new remote account, derives its token, dispatches
// NewAccountCreated and records the account. Failures are logged and returned
// as error values; nothing panics and the poll loop is unaffected.
func (s *Server) CreateAccount(ctx context.Context, address, password string) (*models.Account, error) {
	account, err := s.client.CreateAccount(ctx, address, password)
	if err != nil {
		s.logError("could not create account", "address", address, "error", err)
		return nil, err
	}
	token, err := s.client.GetToken(ctx, address, password)
	if err != nil {
		s.logError("could not derive token for new account", "address", address, "error", err)
		return account, err
	}
	auth := Auth{
		AccountID: token.ID,
		Token:     token.Token,
		Address:   address,
		Password:  password,
	}
	s.dispatch(ctx, &NewAccountCreated{base: s.event(KindNewAccountCreated), Auth: auth, Account: *account})
	s.cache.Record(CategoryNewAccounts, *account)
	s.log.Info("created account", "account_id", account.ID, "address", account.Address)
	return account, nil
}

// DeleteMessage deletes the message with id through the client, dispatching
// MessageDelete and recording the message as old.
func (s *Server) DeleteMessage(ctx context.Context, id string) error {
	message, err := s.client.GetMessage(ctx, id)
	if err != nil {
		s.logError("could not load message before delete", "message_id", id, "error", err)
		return err
	}
	if err := s.client.DeleteMessage(ctx, id); err != nil {
		s.logError("could not delete message", "message_id", id, "error", err)
		return err
	}
	s.dispatch(ctx, &MessageDelete{base: s.event(KindMessageDelete), Deleted: *message})
	s.cache.Record(CategoryOldMessages, *message)
	return nil
}

// SwitchAccount points the watcher at a different account. The client
// credential is replaced in place and polling continues against the new
// mailbox on the next tick. Call it from an event handler or before Run; it
// is the only place the credential changes after construction.
func (s *Server) SwitchAccount(ctx context.Context, token models.Token) {
	last := s.auth
	s.client.SetToken(token)
	s.auth = Auth{AccountID: token.ID, Token: token.Token}
	s.dispatch(ctx, &AccountSwitched{base: s.event(KindAccountSwitched), LastAuth: last})
	s.logWarn("switched account", "account_id", token.ID)
}

// DeleteAccount deletes the account with id, or the authenticated account
// when id is empty, and dispatches AccountDeleted.
func (s *Server) DeleteAccount(ctx context.Context, id string) error {
	if err := s.client.DeleteAccount(ctx, id); err != nil {
		s.logError("could not delete account", "account_id", id, "error", err)
		return err
	}
	s.dispatch(ctx, &AccountDeleted{base: s.event(KindAccountDeleted), AccountID: id})
	s.log.Info("deleted account", "account_id", id)
	return nil
}
