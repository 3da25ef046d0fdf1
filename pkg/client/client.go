package client

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

	"github.com/google/uuid"

	"github.com/naveenspark/tutor/internal/logging"
	"github.com/naveenspark/tutor/pkg/domain"
)

// DefaultBaseURL is where the tutor API listens in a local setup.
const DefaultBaseURL = "http://localhost:8000"

// RequestIDHeader carries a per-request UUID for log correlation.
const RequestIDHeader = "X-Request-ID"

// TokenSource supplies the bearer token at request time.
type TokenSource interface {
	Token() (string, bool)
}

// StaticToken is a TokenSource that always returns the same token.
// The empty string means "no token".
type StaticToken string

func (t StaticToken) Token() (string, bool) {
	return string(t), t != ""
}

// RegisterRequest is the payload for creating an account.
type RegisterRequest struct {
	Username string      `json:"username"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

// LoginResponse is the reply to a successful /login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
	// Message holds any server text sent alongside (or instead of) a token.
	Message string `json:"-"`
}

// MessageResponse is a reply carrying a single human-readable message.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse is the reply of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// Client is the tutor API client.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	log        logging.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the HTTP client timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l logging.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a new API client. tokens may be nil for unauthenticated use.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	if tokens == nil {
		tokens = StaticToken("")
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		log: logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithTokens returns a copy of c that authenticates with tokens instead.
// The copy shares the HTTP client and logger.
func (c *Client) WithTokens(tokens TokenSource) *Client {
	cp := *c
	if tokens == nil {
		tokens = StaticToken("")
	}
	cp.tokens = tokens
	return &cp
}

// BaseURL returns the API origin the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Login exchanges credentials for a bearer token. The body is form-encoded.
// A 2xx reply without a token is returned as-is; callers decide how to
// surface LoginResponse.Message.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	var raw json.RawMessage
	err := c.send(ctx, http.MethodPost, "/login", "application/x-www-form-urlencoded",
		strings.NewReader(form.Encode()), false, &raw)
	if err != nil {
		return nil, fmt.Errorf("client.Login: %w", err)
	}
	var resp LoginResponse
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &resp); err != nil {
			return nil, fmt.Errorf("client.Login: %w", &MalformedError{Reason: err.Error()})
		}
		resp.Message = messageFrom(raw)
	}
	return &resp, nil
}

// Register creates a new account. It never authenticates.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*MessageResponse, error) {
	var resp MessageResponse
	if err := c.post(ctx, "/register", req, false, &resp); err != nil {
		return nil, fmt.Errorf("client.Register: %w", err)
	}
	return &resp, nil
}

// Logout tells the server to drop the current session.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.doRequest(ctx, http.MethodPost, "/logout", nil, true, nil); err != nil {
		return fmt.Errorf("client.Logout: %w", err)
	}
	return nil
}

// GetMe returns the authenticated user's profile as sent by the server.
// Fields missing from the body are left empty.
func (c *Client) GetMe(ctx context.Context) (*domain.Profile, error) {
	var p domain.Profile
	if err := c.get(ctx, "/me", true, &p); err != nil {
		return nil, fmt.Errorf("client.GetMe: %w", err)
	}
	return &p, nil
}

// Health probes the API liveness endpoint.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var h HealthResponse
	if err := c.get(ctx, "/health", false, &h); err != nil {
		return nil, fmt.Errorf("client.Health: %w", err)
	}
	return &h, nil
}

// Submit posts {p.RequestField: value} to p.Endpoint and returns the string
// found under p.ResponseField. found is false when the reply lacks the field
// or holds an empty string.
func (c *Client) Submit(ctx context.Context, p domain.Panel, value string) (text string, found bool, err error) {
	var raw map[string]json.RawMessage
	if err := c.post(ctx, p.Endpoint, map[string]string{p.RequestField: value}, true, &raw); err != nil {
		return "", false, fmt.Errorf("client.Submit %s: %w", p.Endpoint, err)
	}
	field, ok := raw[p.ResponseField]
	if !ok {
		return "", false, nil
	}
	if err := json.Unmarshal(field, &text); err != nil {
		// Non-string payloads (e.g. a structured quiz) are passed through as JSON text.
		text = string(field)
	}
	return text, text != "", nil
}

// Ask sends a question to the tutor.
func (c *Client) Ask(ctx context.Context, message string) (string, bool, error) {
	return c.Submit(ctx, domain.PanelFor(domain.PanelAsk), message)
}

// Quiz requests a quiz on topic.
func (c *Client) Quiz(ctx context.Context, topic string) (string, bool, error) {
	return c.Submit(ctx, domain.PanelFor(domain.PanelQuiz), topic)
}

// Review asks for a review of an HTML snippet.
func (c *Client) Review(ctx context.Context, code string) (string, bool, error) {
	return c.Submit(ctx, domain.PanelFor(domain.PanelReview), code)
}

func (c *Client) get(ctx context.Context, path string, auth bool, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, auth, out)
}

func (c *Client) post(ctx context.Context, path string, body any, auth bool, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, auth, out)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, auth bool, out any) error {
	var reqBody io.Reader
	contentType := ""
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.send(ctx, method, path, contentType, reqBody, auth, out)
}

func (c *Client) send(ctx context.Context, method, path, contentType string, body io.Reader, auth bool, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	reqID := uuid.NewString()
	req.Header.Set(RequestIDHeader, reqID)
	if auth {
		if tok, ok := c.tokens.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	log := c.log.With("request_id", reqID, "method", method, "path", path)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn(ctx, "request failed", "error", err, "elapsed", time.Since(start))
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close
	log.Debug(ctx, "request done", "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode >= 400 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max error body
		if readErr != nil {
			return &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
		}
		if msg := messageFrom(respBody); msg != "" {
			return &HTTPError{StatusCode: resp.StatusCode, Message: msg, ServerMessage: true}
		}
		return &HTTPError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			if err == io.EOF {
				return nil
			}
			return &MalformedError{Reason: err.Error()}
		}
	}
	return nil
}

// messageFrom extracts a human-readable message from an API body.
// FastAPI-style {"detail": "..."} wins, then "message", then "error".
// A validation detail list is flattened into its "msg" entries.
func messageFrom(body []byte) string {
	var env struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
		Error   string          `json:"error"`
	}
	if json.Unmarshal(body, &env) != nil {
		return ""
	}
	if len(env.Detail) > 0 {
		var s string
		if json.Unmarshal(env.Detail, &s) == nil && s != "" {
			return s
		}
		var items []struct {
			Msg string `json:"msg"`
		}
		if json.Unmarshal(env.Detail, &items) == nil {
			msgs := make([]string, 0, len(items))
			for _, it := range items {
				if it.Msg != "" {
					msgs = append(msgs, it.Msg)
				}
			}
			if len(msgs) > 0 {
				return strings.Join(msgs, "; ")
			}
		}
	}
	if env.Message != "" {
		return env.Message
	}
	return env.Error
}
