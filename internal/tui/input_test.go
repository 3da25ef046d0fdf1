package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/textinput"
)

func TestTextInputCharLimit(t *testing.T) {
	ti := newTextInput("")
	ti.Focus()
	ti.SetValue(strings.Repeat("a", maxInputLen+10))
	if got := len([]rune(ti.Value())); got != maxInputLen {
		t.Errorf("value length = %d, want %d", got, maxInputLen)
	}
}

func TestTextInputTyping(t *testing.T) {
	ti := newTextInput("placeholder")
	ti.Focus()
	for _, r := range "<p>" {
		ti, _ = ti.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	ti, _ = ti.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	if got := ti.Value(); got != "<p" {
		t.Errorf("Value() = %q, want %q", got, "<p")
	}
}

func TestPasswordInputMasks(t *testing.T) {
	ti := newPasswordInput("")
	if ti.EchoMode != textinput.EchoPassword {
		t.Fatalf("EchoMode = %v, want EchoPassword", ti.EchoMode)
	}
	ti.Focus()
	ti.SetValue("hunter2")
	if strings.Contains(ti.View(), "hunter2") {
		t.Error("password rendered in clear text")
	}
}

func TestCodeAreaKeepsNewlines(t *testing.T) {
	ta := newCodeArea("")
	ta.Focus()
	ta.SetValue("<ul>\n  <li>x</li>\n</ul>")
	if got := strings.Count(ta.Value(), "\n"); got != 2 {
		t.Errorf("newlines = %d, want 2", got)
	}
	if ta.Height() != 8 {
		t.Errorf("Height() = %d, want 8", ta.Height())
	}
}
