package session

import (
	"context"
	"fmt"
	"sync"
)

// Session is the in-memory view of the persisted token. It is created once
// at startup and passed to every component that talks to the API.
// It satisfies client.TokenSource.
type Session struct {
	store Store

	mu    sync.RWMutex
	token string
	// override is set while the token came from Load's override rather
	// than the store; ending such a session leaves the store untouched.
	override bool
}

// Load reads the store once. A non-empty override (e.g. from TUTOR_TOKEN)
// takes precedence over the stored value and is never written back.
func Load(ctx context.Context, store Store, override string) (*Session, error) {
	s := &Session{store: store}
	if override != "" {
		s.token = override
		s.override = true
		return s, nil
	}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Token returns the current token and whether one is held.
func (s *Session) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

// LoggedIn reports whether a token is held.
func (s *Session) LoggedIn() bool {
	_, ok := s.Token()
	return ok
}

// Begin persists token and makes it current.
func (s *Session) Begin(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("session.Begin: %w", ErrNoToken)
	}
	if err := s.store.Set(ctx, token); err != nil {
		return fmt.Errorf("session.Begin: %w", err)
	}
	s.mu.Lock()
	s.token = token
	s.override = false
	s.mu.Unlock()
	return nil
}

// End forgets the token in memory first, then removes it from storage.
// The in-memory token is dropped even if storage fails. An override token
// was never stored, so the store is left alone.
func (s *Session) End(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	wasOverride := s.override
	s.override = false
	s.mu.Unlock()
	if wasOverride {
		return nil
	}
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("session.End: %w", err)
	}
	return nil
}

// Reload re-reads the store, picking up changes made by other processes.
func (s *Session) Reload(ctx context.Context) error {
	tok, _, err := s.store.Get(ctx)
	if err != nil {
		return fmt.Errorf("session.Reload: %w", err)
	}
	s.mu.Lock()
	s.token = tok
	s.override = false
	s.mu.Unlock()
	return nil
}
