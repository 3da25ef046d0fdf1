package tui

import (
	"strings"
	"testing"

	"github.com/naveenspark/tutor/internal/lifecycle"
	"github.com/naveenspark/tutor/pkg/domain"
)

func TestRoleBadge(t *testing.T) {
	if got := RoleBadge(""); got != "" {
		t.Errorf("empty role badge = %q", got)
	}
	for _, r := range domain.Roles {
		if got := RoleBadge(r); !strings.Contains(got, "["+string(r)+"]") {
			t.Errorf("RoleBadge(%q) = %q", r, got)
		}
	}
	if got := RoleBadge("moderator"); !strings.Contains(got, "[moderator]") {
		t.Errorf("unknown role badge = %q", got)
	}
}

func TestHelpBar(t *testing.T) {
	got := helpBar("1-3", "panels", "q", "quit")
	for _, want := range []string{"1-3", "panels", "q", "quit"} {
		if !strings.Contains(got, want) {
			t.Errorf("helpBar missing %q: %q", want, got)
		}
	}
	if got := helpBar("dangling"); strings.TrimSpace(got) != "" {
		t.Errorf("odd pair count should drop the key, got %q", got)
	}
}

func TestHelpViewLinks(t *testing.T) {
	v := helpView("http://tutor.local:8000/", 1)
	for _, want := range []string{"http://tutor.local:8000/docs", "http://tutor.local:8000/health", "> "} {
		if !strings.Contains(v, want) {
			t.Errorf("help view missing %q", want)
		}
	}
}

func TestOutcomeStyleDistinguishesFailures(t *testing.T) {
	ok := outcomeStyle(lifecycle.KindNone).GetForeground()
	bad := outcomeStyle(lifecycle.KindConnectivity).GetForeground()
	soft := outcomeStyle(lifecycle.KindMalformed).GetForeground()
	if ok == bad || bad == soft {
		t.Error("expected distinct colors for success, hard and soft failures")
	}
}
