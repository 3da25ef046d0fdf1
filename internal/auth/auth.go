// Package auth turns login, registration, logout and profile calls into
// user-facing outcomes and keeps the Session in step with them.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/naveenspark/tutor/internal/logging"
	"github.com/naveenspark/tutor/internal/session"
	"github.com/naveenspark/tutor/pkg/client"
	"github.com/naveenspark/tutor/pkg/domain"
)

// Messages shown to the user.
const (
	MsgLoggingIn       = "Logging in..."
	MsgLoginOK         = "Login successful!"
	MsgLoginFailed     = "Login failed."
	MsgLoginError      = "Error logging in."
	MsgRegistering     = "Registering..."
	MsgRegisterOK      = "Registered!"
	MsgRegisterFailed  = "Registration failed."
	MsgRegisterError   = "Error registering."
	MsgLoggedOut       = "Logged out."
	MsgCredentialsReq  = "username and password are required"
	MsgInvalidRole     = "role must be student or admin"
	MsgSessionNotSaved = "Login succeeded but the session could not be saved."
)

var (
	// ErrValidation marks input rejected before any request was sent.
	ErrValidation = errors.New("validation error")
	// ErrNoProfile covers every way /me can fail to yield a profile.
	ErrNoProfile = errors.New("no profile available")
	// ErrNoToken is returned when the server accepted the login but sent no token.
	ErrNoToken = errors.New("no access token in response")
)

// Result is the outcome of an auth operation. Message is always set and
// is safe to show as-is.
type Result struct {
	OK      bool
	Message string
	Err     error
}

// Service implements the auth operations against the API.
type Service struct {
	client *client.Client
	sess   *session.Session
	log    logging.Logger
}

// NewService binds the API client and the session it authenticates.
// c should use sess as its token source.
func NewService(c *client.Client, sess *session.Session, log logging.Logger) *Service {
	if log == nil {
		log = logging.Nop()
	}
	return &Service{client: c, sess: sess, log: log.With("component", "auth")}
}

// Session returns the session this service mutates.
func (s *Service) Session() *session.Session {
	return s.sess
}

// Login sends credentials once. On success the token is persisted.
func (s *Service) Login(ctx context.Context, username, password string) Result {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return Result{Message: MsgCredentialsReq, Err: ErrValidation}
	}

	resp, err := s.client.Login(ctx, username, password)
	if err != nil {
		s.log.Warn(ctx, "login failed", "username", username, "error", err)
		return failure(err, MsgLoginFailed, MsgLoginError)
	}
	if resp.AccessToken == "" {
		msg := resp.Message
		if msg == "" {
			msg = MsgLoginFailed
		}
		return Result{Message: msg, Err: fmt.Errorf("auth.Login: %w", ErrNoToken)}
	}
	if err := s.sess.Begin(ctx, resp.AccessToken); err != nil {
		s.log.Error(ctx, "persist session", "error", err)
		return Result{Message: MsgSessionNotSaved, Err: fmt.Errorf("auth.Login: %w", err)}
	}
	s.log.Info(ctx, "logged in", "username", username)
	return Result{OK: true, Message: MsgLoginOK}
}

// Register creates an account. It never logs in.
func (s *Service) Register(ctx context.Context, username, password string, role domain.Role) Result {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return Result{Message: MsgCredentialsReq, Err: ErrValidation}
	}
	if role == "" {
		role = domain.RoleStudent
	}
	if !domain.ValidRole(role) {
		return Result{Message: MsgInvalidRole, Err: ErrValidation}
	}

	resp, err := s.client.Register(ctx, client.RegisterRequest{Username: username, Password: password, Role: role})
	if err != nil {
		s.log.Warn(ctx, "register failed", "username", username, "error", err)
		return failure(err, MsgRegisterFailed, MsgRegisterError)
	}
	msg := resp.Message
	if msg == "" {
		msg = MsgRegisterOK
	}
	s.log.Info(ctx, "registered", "username", username, "role", role)
	return Result{OK: true, Message: msg}
}

// logoutNotifyTimeout bounds the best-effort POST /logout.
var logoutNotifyTimeout = 5 * time.Second

// Logout clears the local session first, then notifies the server on a
// best-effort basis with the token it held. With no token nothing is sent.
func (s *Service) Logout(ctx context.Context) Result {
	tok, had := s.sess.Token()

	res := Result{OK: true, Message: MsgLoggedOut}
	if err := s.sess.End(ctx); err != nil {
		s.log.Error(ctx, "clear session", "error", err)
		res.Err = err
	}
	if !had {
		return res
	}

	nctx, cancel := context.WithTimeout(ctx, logoutNotifyTimeout)
	defer cancel()
	if err := s.client.WithTokens(client.StaticToken(tok)).Logout(nctx); err != nil {
		s.log.Warn(ctx, "server logout failed; local session already cleared", "error", err)
	}
	return res
}

// Profile fetches the current user's identity. Any failure, including a 2xx
// body without a username, is reported as ErrNoProfile; use Unauthorized to
// tell a rejected token apart.
func (s *Service) Profile(ctx context.Context) (*domain.Profile, error) {
	if !s.sess.LoggedIn() {
		return nil, fmt.Errorf("auth.Profile: %w", ErrNoProfile)
	}
	p, err := s.client.GetMe(ctx)
	if err != nil {
		return nil, fmt.Errorf("auth.Profile: %w: %w", ErrNoProfile, err)
	}
	if p.Username == "" {
		return nil, fmt.Errorf("auth.Profile: %w: response has no username", ErrNoProfile)
	}
	return p, nil
}

// Unauthorized reports whether err means the server rejected the token.
func Unauthorized(err error) bool {
	return client.IsStatus(err, http.StatusUnauthorized)
}

// failure maps a request error onto the user-facing message policy:
// server text if any, the connectivity message when no response arrived,
// and the generic fallback otherwise.
func failure(err error, fallback, connectivity string) Result {
	if msg := client.ServerMessage(err); msg != "" {
		return Result{Message: msg, Err: err}
	}
	if client.IsNetwork(err) {
		return Result{Message: connectivity, Err: err}
	}
	return Result{Message: fallback, Err: err}
}
