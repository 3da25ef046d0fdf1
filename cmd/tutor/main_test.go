package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/naveenspark/tutor/internal/auth"
	"github.com/naveenspark/tutor/internal/config"
	"github.com/naveenspark/tutor/internal/logging"
	"github.com/naveenspark/tutor/internal/session"
	"github.com/naveenspark/tutor/internal/tutortest"
	"github.com/naveenspark/tutor/pkg/client"
	"github.com/naveenspark/tutor/pkg/domain"
)

type harness struct {
	*cli
	srv   *tutortest.Server
	store *session.MemoryStore
	out   *bytes.Buffer
	err   *bytes.Buffer
}

func newHarness(t *testing.T, token string) *harness {
	t.Helper()
	srv := tutortest.New(t)
	srv.AddUser("alice", "secret", domain.RoleStudent)

	store := session.NewMemoryStore(token)
	sess, err := session.Load(context.Background(), store, "")
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	c := client.New(srv.URL, sess)
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return &harness{
		cli: &cli{
			cfg:    &config.Config{APIURL: srv.URL},
			client: c,
			sess:   sess,
			svc:    auth.NewService(c, sess, logging.Nop()),
			log:    logging.Nop(),
			in:     bufio.NewReader(strings.NewReader("")),
			out:    out,
			errOut: errOut,
			readPassword: func(string) (string, error) {
				return "secret", nil
			},
		},
		srv:   srv,
		store: store,
		out:   out,
		err:   errOut,
	}
}

func loggedIn(t *testing.T) *harness {
	t.Helper()
	h := newHarness(t, "")
	if err := h.dispatch(context.Background(), "login", []string{"-u", "alice"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	h.out.Reset()
	return h
}

func TestLoginSavesToken(t *testing.T) {
	h := newHarness(t, "")
	if err := h.dispatch(context.Background(), "login", []string{"-u", "alice"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if !strings.Contains(h.out.String(), auth.MsgLoginOK) {
		t.Errorf("output = %q, want %q", h.out.String(), auth.MsgLoginOK)
	}
	tok, ok, _ := h.store.Get(context.Background())
	if !ok || !h.srv.TokenValid(tok) {
		t.Errorf("stored token %q not issued by server", tok)
	}
}

func TestLoginPromptsForUsername(t *testing.T) {
	h := newHarness(t, "")
	h.in = bufio.NewReader(strings.NewReader("alice\n"))
	if err := h.dispatch(context.Background(), "login", nil); err != nil {
		t.Fatalf("login: %v", err)
	}
	if !h.sess.LoggedIn() {
		t.Error("expected a session after login")
	}
	if !strings.Contains(h.err.String(), "Username: ") {
		t.Errorf("prompt missing from stderr: %q", h.err.String())
	}
}

func TestLoginFromPipe(t *testing.T) {
	h := newHarness(t, "")
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	if _, err := w.WriteString("alice\nsecret\n"); err != nil {
		t.Fatal(err)
	}
	w.Close()

	h.in = bufio.NewReader(r)
	h.readPassword = terminalPassword(r, h.in, h.err)
	if err := h.dispatch(context.Background(), "login", nil); err != nil {
		t.Fatalf("login: %v", err)
	}
	tok, ok, _ := h.store.Get(context.Background())
	if !ok || !h.srv.TokenValid(tok) {
		t.Errorf("stored token %q not issued by server", tok)
	}
}

func TestSubcommandHelp(t *testing.T) {
	for _, cmd := range []string{"login", "register"} {
		t.Run(cmd, func(t *testing.T) {
			h := newHarness(t, "")
			if err := h.dispatch(context.Background(), cmd, []string{"-h"}); err != nil {
				t.Fatalf("err = %v, want nil", err)
			}
			if !strings.Contains(h.err.String(), "-u") {
				t.Errorf("usage not printed: %q", h.err.String())
			}
		})
	}
}

func TestLoginWrongPassword(t *testing.T) {
	h := newHarness(t, "")
	h.readPassword = func(string) (string, error) { return "nope", nil }
	err := h.dispatch(context.Background(), "login", []string{"-u", "alice"})
	if err == nil || err.Error() != "Incorrect username or password" {
		t.Fatalf("err = %v, want server detail", err)
	}
	if h.sess.LoggedIn() {
		t.Error("failed login must not store a token")
	}
}

func TestRegister(t *testing.T) {
	h := newHarness(t, "")
	if err := h.dispatch(context.Background(), "register", []string{"-u", "bob", "-role", "admin"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if !strings.Contains(h.out.String(), "User registered successfully") {
		t.Errorf("output = %q", h.out.String())
	}
	if h.sess.LoggedIn() {
		t.Error("register must not log in")
	}

	err := h.dispatch(context.Background(), "register", []string{"-u", "bob"})
	if err == nil || err.Error() != "username taken" {
		t.Errorf("second register err = %v", err)
	}
}

func TestRegisterRejectsBadRole(t *testing.T) {
	h := newHarness(t, "")
	err := h.dispatch(context.Background(), "register", []string{"-u", "bob", "-role", "moderator"})
	if err == nil || err.Error() != auth.MsgInvalidRole {
		t.Fatalf("err = %v", err)
	}
	if n := h.srv.Calls("/register"); n != 0 {
		t.Errorf("register calls = %d, want 0", n)
	}
}

func TestRegisterNeedsUsername(t *testing.T) {
	h := newHarness(t, "")
	if err := h.dispatch(context.Background(), "register", nil); !errors.Is(err, errUsage) {
		t.Errorf("err = %v, want errUsage", err)
	}
}

func TestLogout(t *testing.T) {
	h := loggedIn(t)
	if err := h.dispatch(context.Background(), "logout", nil); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if h.sess.LoggedIn() {
		t.Error("session still active")
	}
	if _, ok, _ := h.store.Get(context.Background()); ok {
		t.Error("token still stored")
	}

	h.out.Reset()
	if err := h.dispatch(context.Background(), "logout", nil); err != nil {
		t.Fatalf("second logout: %v", err)
	}
	if got := h.out.String(); got != "Already logged out.\n" {
		t.Errorf("output = %q", got)
	}
	if n := h.srv.Calls("/logout"); n != 1 {
		t.Errorf("logout calls = %d, want 1", n)
	}
}

func TestWhoami(t *testing.T) {
	h := loggedIn(t)
	if err := h.dispatch(context.Background(), "whoami", nil); err != nil {
		t.Fatalf("whoami: %v", err)
	}
	if got := h.out.String(); got != "alice (student)\n" {
		t.Errorf("output = %q", got)
	}
}

func TestWhoamiExpiredToken(t *testing.T) {
	h := newHarness(t, "stale")
	err := h.dispatch(context.Background(), "whoami", nil)
	if err == nil || !strings.Contains(err.Error(), "session expired") {
		t.Fatalf("err = %v", err)
	}
	if h.sess.LoggedIn() {
		t.Error("rejected token should be cleared")
	}
}

type stuckStore struct {
	*session.MemoryStore
}

func (stuckStore) Clear(context.Context) error {
	return errors.New("disk full")
}

func TestWhoamiExpiredTokenClearFails(t *testing.T) {
	h := newHarness(t, "")
	store := stuckStore{session.NewMemoryStore("stale")}
	sess, err := session.Load(context.Background(), store, "")
	if err != nil {
		t.Fatal(err)
	}
	c := client.New(h.srv.URL, sess)
	h.sess, h.client = sess, c
	h.svc = auth.NewService(c, sess, logging.Nop())

	err = h.dispatch(context.Background(), "whoami", nil)
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("err = %v, want the clear failure", err)
	}
}

func TestWhoamiLoggedOut(t *testing.T) {
	h := newHarness(t, "")
	if err := h.dispatch(context.Background(), "whoami", nil); err == nil {
		t.Fatal("expected error when logged out")
	}
	if n := h.srv.Calls("/me"); n != 0 {
		t.Errorf("me calls = %d, want 0", n)
	}
}

func TestAsk(t *testing.T) {
	h := loggedIn(t)
	if err := h.dispatch(context.Background(), "ask", []string{"what", "is", "<p>?"}); err != nil {
		t.Fatalf("ask: %v", err)
	}
	want := tutortest.Reply(domain.PanelFor(domain.PanelAsk), "what is <p>?")
	if got := strings.TrimSpace(h.out.String()); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestAskBlank(t *testing.T) {
	h := loggedIn(t)
	err := h.dispatch(context.Background(), "ask", nil)
	if err == nil || err.Error() != "Please enter a message." {
		t.Fatalf("err = %v", err)
	}
	if n := h.srv.Calls("/ask"); n != 0 {
		t.Errorf("ask calls = %d, want 0", n)
	}
}

func TestAskServerError(t *testing.T) {
	h := loggedIn(t)
	h.srv.Override("/ask", tutortest.JSON(http.StatusInternalServerError, map[string]string{"detail": "model offline"}))
	err := h.dispatch(context.Background(), "ask", []string{"hi"})
	if err == nil || err.Error() != "model offline" {
		t.Fatalf("err = %v", err)
	}
}

func TestQuizDefaultTopic(t *testing.T) {
	h := loggedIn(t)
	if err := h.dispatch(context.Background(), "quiz", nil); err != nil {
		t.Fatalf("quiz: %v", err)
	}
	if got := h.srv.LastBody("/quiz")["topic"]; got != "HTML basics" {
		t.Errorf("topic sent = %q", got)
	}
}

func TestReviewFromFile(t *testing.T) {
	h := loggedIn(t)
	path := filepath.Join(t.TempDir(), "page.html")
	if err := os.WriteFile(path, []byte("<p>hi</p>"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := h.dispatch(context.Background(), "review", []string{path}); err != nil {
		t.Fatalf("review: %v", err)
	}
	if got := h.srv.LastBody("/review")["code"]; got != "<p>hi</p>" {
		t.Errorf("code sent = %q", got)
	}
}

func TestReviewFromStdin(t *testing.T) {
	h := loggedIn(t)
	h.in = bufio.NewReader(strings.NewReader("<div></div>\n"))
	if err := h.dispatch(context.Background(), "review", []string{"-"}); err != nil {
		t.Fatalf("review: %v", err)
	}
	if got := h.srv.LastBody("/review")["code"]; got != "<div></div>\n" {
		t.Errorf("code sent = %q", got)
	}
}

func TestReviewMissingFile(t *testing.T) {
	h := loggedIn(t)
	if err := h.dispatch(context.Background(), "review", []string{"/does/not/exist.html"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestPanelRequiresLogin(t *testing.T) {
	h := newHarness(t, "")
	if err := h.dispatch(context.Background(), "ask", []string{"hi"}); err == nil {
		t.Fatal("expected error when logged out")
	}
}

func TestHealth(t *testing.T) {
	h := newHarness(t, "")
	if err := h.dispatch(context.Background(), "health", nil); err != nil {
		t.Fatalf("health: %v", err)
	}
	if got := h.out.String(); got != h.srv.URL+" ok\n" {
		t.Errorf("output = %q", got)
	}

	h.srv.Close()
	err := h.dispatch(context.Background(), "health", nil)
	if err == nil || !strings.Contains(err.Error(), domain.ConnectivityError) {
		t.Errorf("err = %v", err)
	}
}

func TestUnknownCommand(t *testing.T) {
	h := newHarness(t, "")
	if err := h.dispatch(context.Background(), "forge", nil); !errors.Is(err, errUsage) {
		t.Fatalf("err = %v, want errUsage", err)
	}
	if !strings.Contains(h.err.String(), `unknown command "forge"`) {
		t.Errorf("stderr = %q", h.err.String())
	}
}

func TestOpenStore(t *testing.T) {
	for _, backend := range []config.Backend{config.BackendFile, config.BackendSQLite} {
		t.Run(string(backend), func(t *testing.T) {
			cfg := &config.Config{StateDir: t.TempDir(), Session: backend}
			ctx := context.Background()
			store, closer, err := openStore(ctx, cfg)
			if err != nil {
				t.Fatalf("openStore: %v", err)
			}
			if closer != nil {
				defer closer.Close()
			}
			if err := store.Set(ctx, "tok"); err != nil {
				t.Fatalf("set: %v", err)
			}
			got, ok, err := store.Get(ctx)
			if err != nil || !ok || got != "tok" {
				t.Errorf("get = %q %v %v", got, ok, err)
			}
		})
	}
}

func TestPrintHelpListsCommands(t *testing.T) {
	var buf bytes.Buffer
	printHelp(&buf)
	for _, want := range []string{"login", "register", "review", "-timeout"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("help missing %q", want)
		}
	}
}
