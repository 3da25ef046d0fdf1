package tui

import (
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
)

// maxInputLen is the maximum number of runes allowed in single-line inputs.
const maxInputLen = 2000

// maxCodeLen bounds the Code Review editor.
const maxCodeLen = 20000

// cursorMode applies to every input. Tests use a static cursor so no
// blink timers are pending.
var cursorMode = cursor.CursorBlink

// newTextInput builds the single-line input used by forms and panels.
func newTextInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = maxInputLen
	ti.Prompt = "> "
	ti.PromptStyle = inputPromptStyle
	ti.PlaceholderStyle = inputPlaceholderStyle
	ti.TextStyle = normalStyle
	ti.Cursor.SetMode(cursorMode)
	return ti
}

// newPasswordInput is a text input that masks what is typed.
func newPasswordInput(placeholder string) textinput.Model {
	ti := newTextInput(placeholder)
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'
	return ti
}

// newCodeArea builds the multi-line editor used by Code Review.
func newCodeArea(placeholder string) textarea.Model {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.CharLimit = maxCodeLen
	ta.ShowLineNumbers = true
	ta.SetHeight(8)
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Placeholder = inputPlaceholderStyle
	ta.BlurredStyle.Placeholder = inputPlaceholderStyle
	ta.Cursor.SetMode(cursorMode)
	return ta
}

func newSpinner() spinner.Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = accentStyle
	return s
}
