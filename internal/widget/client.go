package widget

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Mo-nish/Invensis-Requiter/internal/chatapi"
	"github.com/Mo-nish/Invensis-Requiter/internal/domain"
)

const (
	defaultHTTPTimeout = 30 * time.Second
	maxResponseBytes   = 1 << 20
)

// API is the assistant backend as seen by the widget.
type API interface {
	CreateSession(ctx context.Context, req chatapi.CreateSessionRequest) (*chatapi.CreateSessionResponse, error)
	UpdatePage(ctx context.Context, sessionID, page string) error
	SendMessage(ctx context.Context, req chatapi.SendMessageRequest) (*chatapi.ExchangeResponse, error)
	QuickAction(ctx context.Context, req chatapi.QuickActionRequest) (*chatapi.ExchangeResponse, error)
	Reminders(ctx context.Context, req chatapi.RemindersRequest) ([]domain.Notification, error)
	Suggestions(ctx context.Context, req chatapi.SuggestionsRequest) ([]domain.Notification, error)
}

// Client talks to the assistant backend over HTTP. It sends the caller's
// identity in the headers the portal gateway would set.
type Client struct {
	baseURL  string
	http     *http.Client
	identity domain.Identity
}

var _ API = (*Client)(nil)

type ClientOption func(*Client)

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithIdentity(id domain.Identity) ClientOption {
	return func(c *Client) {
		c.identity = id
	}
}

func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: defaultHTTPTimeout},
		identity: domain.VisitorIdentity(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) CreateSession(ctx context.Context, req chatapi.CreateSessionRequest) (*chatapi.CreateSessionResponse, error) {
	var out chatapi.CreateSessionResponse
	if err := c.do(ctx, "create session", http.MethodPost, chatapi.PathSession, req, &out, &out.Envelope); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdatePage(ctx context.Context, sessionID, page string) error {
	path := strings.Replace(chatapi.PathSessionPage, "{sessionId}", url.PathEscape(sessionID), 1)

	var out chatapi.UpdatePageResponse
	return c.do(ctx, "update page", http.MethodPut, path, chatapi.UpdatePageRequest{Page: &page}, &out, &out.Envelope)
}

func (c *Client) SendMessage(ctx context.Context, req chatapi.SendMessageRequest) (*chatapi.ExchangeResponse, error) {
	var out chatapi.ExchangeResponse
	if err := c.do(ctx, "send message", http.MethodPost, chatapi.PathMessage, req, &out, &out.Envelope); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) QuickAction(ctx context.Context, req chatapi.QuickActionRequest) (*chatapi.ExchangeResponse, error) {
	var out chatapi.ExchangeResponse
	if err := c.do(ctx, "quick action", http.MethodPost, chatapi.PathQuickAction, req, &out, &out.Envelope); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Reminders(ctx context.Context, req chatapi.RemindersRequest) ([]domain.Notification, error) {
	var out chatapi.RemindersResponse
	if err := c.do(ctx, "reminders", http.MethodPost, chatapi.PathReminders, req, &out, &out.Envelope); err != nil {
		return nil, err
	}
	return out.Reminders, nil
}

func (c *Client) Suggestions(ctx context.Context, req chatapi.SuggestionsRequest) ([]domain.Notification, error) {
	var out chatapi.SuggestionsResponse
	if err := c.do(ctx, "suggestions", http.MethodPost, chatapi.PathSuggestions, req, &out, &out.Envelope); err != nil {
		return nil, err
	}
	return out.Suggestions, nil
}

// do sends one JSON request. A body that does not decode is a transport
// failure whatever the status; a decoded body with success:false is an
// application failure.
func (c *Client) do(ctx context.Context, op, method, path string, in, out any, env *chatapi.Envelope) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	c.setIdentity(req.Header)

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("status %d: decode response: %w", resp.StatusCode, err)}
	}

	if !env.Success {
		return &ApplicationError{Op: op, Status: resp.StatusCode, Message: env.Error}
	}
	return nil
}

func (c *Client) setIdentity(h http.Header) {
	id := c.identity
	if id.UserID != "" {
		h.Set(chatapi.HeaderUserID, string(id.UserID))
	}
	if id.Role != "" {
		h.Set(chatapi.HeaderUserRole, string(id.Role))
	}
	if id.Name != "" {
		h.Set(chatapi.HeaderUserName, id.Name)
	}
	if id.Email != "" {
		h.Set(chatapi.HeaderUserEmail, id.Email)
	}
}
