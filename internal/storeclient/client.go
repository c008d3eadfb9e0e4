// Package storeclient talks to the remote transaction store and its
// authentication endpoints over JSON/HTTP.
package storeclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"fintrack/internal/core"
)

const defaultTimeout = 30 * time.Second

// ErrNoToken is returned for store calls made before a token is set.
var ErrNoToken = errors.New("not logged in")

// Config represents the configuration for the store client.
type Config struct {
	// BaseURL includes the API prefix, e.g. http://localhost:8081/api/v1.
	BaseURL string
	Token   string
	Timeout time.Duration // Default: 30 seconds
	// Transport overrides http.DefaultTransport, mainly for tests.
	Transport http.RoundTripper
}

// Client is a transaction store client. It is safe for concurrent use.
type Client struct {
	baseURL string
	plain   *http.Client
	authed  *http.Client

	mu    sync.RWMutex
	token *oauth2.Token
}

func New(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid store url %q", cfg.BaseURL)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	transport := cfg.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	c := &Client{baseURL: base.String()}
	c.plain = &http.Client{Timeout: timeout, Transport: transport}
	c.authed = &http.Client{
		Timeout: timeout,
		Transport: &oauth2.Transport{
			Source: tokenSource{c},
			Base:   transport,
		},
	}
	if cfg.Token != "" {
		c.SetToken(&oauth2.Token{AccessToken: cfg.Token, TokenType: "Bearer"})
	}
	return c, nil
}

// SetToken replaces the bearer token used for store calls.
func (c *Client) SetToken(tok *oauth2.Token) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = tok
}

func (c *Client) Token() *oauth2.Token {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// tokenSource feeds the client's current token to oauth2.Transport.
type tokenSource struct{ c *Client }

func (s tokenSource) Token() (*oauth2.Token, error) {
	tok := s.c.Token()
	if tok == nil || tok.AccessToken == "" {
		return nil, ErrNoToken
	}
	return tok, nil
}

type credentials struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Signup registers a new account. It does not log in.
func (c *Client) Signup(ctx context.Context, name, email, password string) error {
	var out messageResponse
	return c.do(ctx, c.plain, "signup", http.MethodPost, "/signup",
		credentials{Name: name, Email: email, Password: password}, &out)
}

// Login exchanges credentials for a bearer token and installs it on the
// client.
func (c *Client) Login(ctx context.Context, email, password string) (*oauth2.Token, error) {
	var out loginResponse
	if err := c.do(ctx, c.plain, "login", http.MethodPost, "/login",
		credentials{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, &TransportError{Op: "login", StatusCode: http.StatusOK, Message: "empty token in response"}
	}
	tok := &oauth2.Token{AccessToken: out.Token, TokenType: "Bearer"}
	c.SetToken(tok)
	return tok, nil
}

// Logout ends the server session and forgets the local token. The token is
// dropped even when the call fails.
func (c *Client) Logout(ctx context.Context) error {
	defer c.SetToken(nil)
	var out messageResponse
	return c.do(ctx, c.authed, "logout", http.MethodPost, "/logout", nil, &out)
}

func (c *Client) ListTransactions(ctx context.Context, kind core.Kind) ([]core.Transaction, error) {
	if !kind.Valid() {
		return nil, core.ErrInvalidKind
	}
	var out []core.Transaction
	if err := c.do(ctx, c.authed, "list "+plural(kind), http.MethodGet, "/get-"+plural(kind), nil, &out); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].Kind == "" {
			out[i].Kind = kind
		}
	}
	if out == nil {
		out = []core.Transaction{}
	}
	return out, nil
}

// CreateTransaction posts t and returns the stored record with its id.
func (c *Client) CreateTransaction(ctx context.Context, kind core.Kind, t core.Transaction) (core.Transaction, error) {
	if !kind.Valid() {
		return core.Transaction{}, core.ErrInvalidKind
	}
	t.ID = ""
	t.Kind = kind
	var out core.Transaction
	if err := c.do(ctx, c.authed, "create "+string(kind), http.MethodPost, "/add-"+string(kind), t, &out); err != nil {
		return core.Transaction{}, err
	}
	if out.Kind == "" {
		out.Kind = kind
	}
	return out, nil
}

func (c *Client) DeleteTransaction(ctx context.Context, kind core.Kind, id string) error {
	if !kind.Valid() {
		return core.ErrInvalidKind
	}
	var out messageResponse
	return c.do(ctx, c.authed, "delete "+string(kind), http.MethodDelete,
		"/delete-"+string(kind)+"/"+url.PathEscape(id), nil, &out)
}

func plural(k core.Kind) string {
	return string(k) + "s"
}

func (c *Client) do(ctx context.Context, hc *http.Client, op, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &TransportError{Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		if errors.Is(err, ErrNoToken) {
			err = ErrNoToken
		}
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseError(op, resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return &TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
