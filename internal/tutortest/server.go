// Package tutortest runs an in-process stand-in for the tutor API so the
// client, auth flows and shell can be exercised end to end in tests.
//
// It implements the same routes and reply shapes as the real service
// (FastAPI-style {"detail": ...} errors, bearer tokens from /login) but
// answers with canned text instead of generated content.
package tutortest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/naveenspark/tutor/pkg/domain"
)

type user struct {
	hash []byte
	role domain.Role
}

// Server is a fake tutor API.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	users     map[string]user
	tokens    map[string]string // token -> username
	overrides map[string]http.HandlerFunc
	calls     map[string]int
	lastBody  map[string]map[string]string
}

// New starts a server that is closed when t finishes.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		users:     make(map[string]user),
		tokens:    make(map[string]string),
		overrides: make(map[string]http.HandlerFunc),
		calls:     make(map[string]int),
		lastBody:  make(map[string]map[string]string),
	}
	s.Server = httptest.NewServer(s.router())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.track)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to the AI HTML Teaching Platform!"})
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Post("/login", s.handleLogin)
	r.Post("/register", s.handleRegister)

	r.Group(func(r chi.Router) {
		r.Use(s.requireToken)
		r.Post("/logout", s.handleLogout)
		r.Get("/me", s.handleMe)
		for _, p := range domain.Panels {
			r.Post(p.Endpoint, s.handlePanel(p))
		}
	})
	return r
}

// track counts calls and lets tests replace any route.
func (s *Server) track(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls[r.URL.Path]++
		h := s.overrides[r.URL.Path]
		s.mu.Unlock()
		if h != nil {
			h(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		s.mu.Lock()
		_, known := s.tokens[tok]
		s.mu.Unlock()
		if !ok || !known {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Not authenticated"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid form"})
		return
	}
	username, password := r.PostForm.Get("username"), r.PostForm.Get("password")

	s.mu.Lock()
	u, ok := s.users[username]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(u.hash, []byte(password)) != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Incorrect username or password"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access_token": s.IssueToken(username), "token_type": "bearer"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string      `json:"username"`
		Password string      `json:"password"`
		Role     domain.Role `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": []map[string]string{{"msg": "invalid body"}}})
		return
	}
	if req.Role == "" {
		req.Role = domain.RoleStudent
	}
	if !domain.ValidRole(req.Role) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid role"})
		return
	}
	s.mu.Lock()
	_, exists := s.users[req.Username]
	s.mu.Unlock()
	if exists {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "username taken"})
		return
	}
	s.AddUser(req.Username, req.Password, req.Role)
	writeJSON(w, http.StatusOK, map[string]string{"message": "User registered successfully"})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	tok := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	s.mu.Lock()
	delete(s.tokens, tok)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	tok := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	s.mu.Lock()
	name := s.tokens[tok]
	u := s.users[name]
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, domain.Profile{Username: name, Role: u.role})
}

func (s *Server) handlePanel(p domain.Panel) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": []map[string]string{{"msg": "invalid body"}}})
			return
		}
		s.mu.Lock()
		s.lastBody[p.Endpoint] = body
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]string{p.ResponseField: Reply(p, body[p.RequestField])})
	}
}

// Reply is the canned text the server returns for a panel submission.
func Reply(p domain.Panel, input string) string {
	return p.Title + ": " + input
}

// AddUser registers an account directly.
func (s *Server) AddUser(username, password string, role domain.Role) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	s.mu.Lock()
	s.users[username] = user{hash: hash, role: role}
	s.mu.Unlock()
}

// IssueToken mints a valid token for username.
func (s *Server) IssueToken(username string) string {
	tok := uuid.NewString()
	s.mu.Lock()
	s.tokens[tok] = username
	s.mu.Unlock()
	return tok
}

// TokenValid reports whether tok is still accepted.
func (s *Server) TokenValid(tok string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tokens[tok]
	return ok
}

// Override replaces the handler for path. Pass nil to restore the default.
func (s *Server) Override(path string, h http.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h == nil {
		delete(s.overrides, path)
		return
	}
	s.overrides[path] = h
}

// Calls returns how many requests hit path.
func (s *Server) Calls(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[path]
}

// LastBody returns the most recent JSON body posted to a panel endpoint.
func (s *Server) LastBody(path string) map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastBody[path]
}

// JSON returns a handler that always replies with status and body.
func JSON(status int, body any) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, status, body)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}
