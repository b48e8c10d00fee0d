// Package mailtm is an HTTP client for the mail.tm temporary-email API.
package mailtm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/okazdal/mailtm/pkg/models"
)

// DefaultBaseURL is the public mail.tm endpoint.
const DefaultBaseURL = "https://api.mail.tm"

// API paths. The service exposes a hydra-style REST surface.
const (
	pathAccounts = "/accounts"
	pathToken    = "/token"
	pathMe       = "/me"
	pathMessages = "/messages"
	pathDomains  = "/domains"
	pathSources  = "/sources"
)

// Client is a mail.tm API client. The bearer credential is a single-owner
// mutable cell: it is only ever replaced through SetToken, which is how an
// account switch takes effect for all subsequent requests.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu     sync.RWMutex
	token  models.Token
	closed bool
}

// Config for the API client.
type Config struct {
	BaseURL string        // defaults to DefaultBaseURL
	Token   models.Token  // optional; unauthenticated clients can still create accounts
	Timeout time.Duration // per-request timeout, defaults to 30s
}

// NewClient creates a new mail.tm API client.
func NewClient(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: base,
		token:   cfg.Token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Token returns the credential currently in use.
func (c *Client) Token() models.Token {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken replaces the bearer credential. Requests issued after the call use
// the new token.
func (c *Client) SetToken(token models.Token) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// do performs one API request and decodes the JSON response into out when out
// is non-nil. contentType overrides the request content type; empty means
// application/json.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, contentType string, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		if contentType == "" {
			contentType = "application/json"
		}
		req.Header.Set("Content-Type", contentType)
	}
	if tok := c.Token(); tok.Token != "" {
		req.Header.Set("Authorization", "Bearer "+tok.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return statusError(resp.StatusCode)
	}
	if out == nil {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// GetMe returns the account associated with the current token.
func (c *Client) GetMe(ctx context.Context) (*models.Account, error) {
	var account models.Account
	if err := c.do(ctx, http.MethodGet, pathMe, nil, nil, "", &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// GetAccount returns the account with the given id.
func (c *Client) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	var account models.Account
	if err := c.do(ctx, http.MethodGet, pathAccounts+"/"+id, nil, nil, "", &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// CreateAccount registers a new account. The address must use one of the
// domains returned by GetDomains.
func (c *Client) CreateAccount(ctx context.Context, address, password string) (*models.Account, error) {
	body := map[string]string{"address": address, "password": password}
	var account models.Account
	if err := c.do(ctx, http.MethodPost, pathAccounts, nil, body, "", &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// DeleteAccount deletes the account with the given id. When id is empty, the
// account the current token belongs to is deleted.
func (c *Client) DeleteAccount(ctx context.Context, id string) error {
	if id == "" {
		tok := c.Token()
		if tok.ID == "" {
			return &APIError{StatusCode: 401, err: ErrTokenInvalid}
		}
		id = tok.ID
	}
	return c.do(ctx, http.MethodDelete, pathAccounts+"/"+id, nil, nil, "", nil)
}

// GetToken derives a bearer token from account credentials.
func (c *Client) GetToken(ctx context.Context, address, password string) (*models.Token, error) {
	body := map[string]string{"address": address, "password": password}
	var token models.Token
	if err := c.do(ctx, http.MethodPost, pathToken, nil, body, "", &token); err != nil {
		return nil, err
	}
	return &token, nil
}

// GetMessages returns one page of the account's messages, newest first.
func (c *Client) GetMessages(ctx context.Context, page int) (*models.MessagePage, error) {
	if page < 1 {
		page = 1
	}
	query := url.Values{"page": []string{strconv.Itoa(page)}}
	var view models.MessagePage
	if err := c.do(ctx, http.MethodGet, pathMessages, query, nil, "", &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// GetMessage returns the full message with the given id, body included.
func (c *Client) GetMessage(ctx context.Context, id string) (*models.Message, error) {
	var message models.Message
	if err := c.do(ctx, http.MethodGet, pathMessages+"/"+id, nil, nil, "", &message); err != nil {
		return nil, err
	}
	return &message, nil
}

// DeleteMessage removes the message with the given id from the mailbox.
func (c *Client) DeleteMessage(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, pathMessages+"/"+id, nil, nil, "", nil)
}

// MarkAsSeen flags the message as seen. The API expects a merge-patch body.
func (c *Client) MarkAsSeen(ctx context.Context, id string) error {
	body := map[string]bool{"seen": true}
	return c.do(ctx, http.MethodPatch, pathMessages+"/"+id, nil, body, "application/merge-patch+json", nil)
}

// GetDomains returns the domains currently available for new addresses.
func (c *Client) GetDomains(ctx context.Context) (*models.DomainPage, error) {
	var view models.DomainPage
	if err := c.do(ctx, http.MethodGet, pathDomains, nil, nil, "", &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// GetDomain returns the domain with the given id.
func (c *Client) GetDomain(ctx context.Context, id string) (*models.Domain, error) {
	var domain models.Domain
	if err := c.do(ctx, http.MethodGet, pathDomains+"/"+id, nil, nil, "", &domain); err != nil {
		return nil, err
	}
	return &domain, nil
}

// GetSource returns the raw RFC 5322 source of a message.
func (c *Client) GetSource(ctx context.Context, id string) (*models.Source, error) {
	var source models.Source
	if err := c.do(ctx, http.MethodGet, pathSources+"/"+id, nil, nil, "", &source); err != nil {
		return nil, err
	}
	return &source, nil
}

// Close releases the underlying connection pool. Idempotent.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.httpClient.CloseIdleConnections()
	return nil
}
