package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/naveenspark/tutor/internal/lifecycle"
	"github.com/naveenspark/tutor/pkg/domain"
)

// panelDoneMsg carries a finished panel request back to its panel.
type panelDoneMsg struct {
	kind    domain.PanelKind
	outcome lifecycle.Outcome
}

// copiedMsg reports a clipboard copy.
type copiedMsg struct {
	kind domain.PanelKind
	n    int
	err  error
}

// writeClipboard is swapped out in tests.
var writeClipboard = clipboard.WriteAll

// panelModel is one request form bound to one endpoint. Ask, Quiz and
// Code Review are all instances of it.
type panelModel struct {
	panel    domain.Panel
	api      lifecycle.Submitter
	tracker  *lifecycle.Tracker
	input    textinput.Model
	code     textarea.Model
	spinner  spinner.Model
	result   viewport.Model
	md       *glamour.TermRenderer
	focused  bool
	notice   string
	width    int
	height   int
	rendered string
}

func newPanelModel(p domain.Panel, api lifecycle.Submitter) panelModel {
	m := panelModel{
		panel:   p,
		api:     api,
		tracker: &lifecycle.Tracker{},
		spinner: newSpinner(),
		result:  viewport.New(0, 0),
	}
	if p.Multiline {
		m.code = newCodeArea(p.Placeholder)
	} else {
		m.input = newTextInput(p.Placeholder)
		m.input.SetValue(p.DefaultInput)
	}
	return m.focus()
}

// editing reports whether keystrokes go to the input.
func (m panelModel) editing() bool {
	return m.focused
}

func (m panelModel) value() string {
	if m.panel.Multiline {
		return m.code.Value()
	}
	return m.input.Value()
}

func (m panelModel) focus() panelModel {
	m.focused = true
	if m.panel.Multiline {
		m.code.Focus()
	} else {
		m.input.Focus()
	}
	return m
}

func (m panelModel) blur() panelModel {
	m.focused = false
	m.code.Blur()
	m.input.Blur()
	return m
}

// submitKey is enter for single-line panels; the code editor needs enter
// for newlines.
func (m panelModel) submitKey(key string) bool {
	if m.panel.Multiline {
		return key == "ctrl+s"
	}
	return key == "enter"
}

func (m panelModel) Update(ctx context.Context, msg tea.Msg) (panelModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.resize(msg.Width, msg.Height), nil

	case panelDoneMsg:
		if msg.kind != m.panel.Kind || !m.tracker.Finish(msg.outcome) {
			return m, nil
		}
		return m.render(), nil

	case copiedMsg:
		if msg.kind != m.panel.Kind {
			return m, nil
		}
		if msg.err != nil {
			m.notice = "Copy failed: " + msg.err.Error()
		} else {
			m.notice = fmt.Sprintf("Copied %d characters.", msg.n)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.tracker.Busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		key := msg.String()
		switch {
		case key == "esc":
			if m.tracker.Cancel() {
				return m.render(), nil
			}
			if m.focused {
				return m.blur(), nil
			}
			return m, nil
		case key == "ctrl+l":
			return m.clear(), nil
		case m.submitKey(key):
			return m.submit(ctx)
		case key == "pgup" || key == "pgdown":
			var cmd tea.Cmd
			m.result, cmd = m.result.Update(msg)
			return m, cmd
		}

		if !m.focused {
			switch key {
			case "i", "enter":
				return m.focus(), nil
			case "c":
				return m, m.copy()
			case "j", "down", "k", "up", "g", "G", "home", "end":
				var cmd tea.Cmd
				m.result, cmd = m.result.Update(msg)
				return m, cmd
			}
			return m, nil
		}
	}

	if !m.focused {
		return m, nil
	}
	var cmd tea.Cmd
	if m.panel.Multiline {
		m.code, cmd = m.code.Update(msg)
	} else {
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

// submit validates locally, then starts one request. It does nothing while
// a request is in flight.
func (m panelModel) submit(parent context.Context) (panelModel, tea.Cmd) {
	if m.tracker.Busy() {
		return m, nil
	}
	value := m.value()
	if o, blank := lifecycle.Blank(m.panel, value); blank {
		m.tracker.Reject(o)
		return m.render(), nil
	}
	ctx, seq, ok := m.tracker.Start(parent)
	if !ok {
		return m, nil
	}
	m.notice = ""

	api, p := m.api, m.panel
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		o := lifecycle.Invoke(ctx, api, p, value)
		o.Seq = seq
		return panelDoneMsg{kind: p.Kind, outcome: o}
	})
}

// clear resets the form and drops any result, cancelling a running request.
func (m panelModel) clear() panelModel {
	m.tracker.Reset()
	m.notice = ""
	if m.panel.Multiline {
		m.code.Reset()
	} else {
		m.input.SetValue(m.panel.DefaultInput)
		m.input.CursorEnd()
	}
	return m.render().focus()
}

// cancel aborts an in-flight request; used when the panel goes away.
func (m panelModel) cancel() {
	m.tracker.Reset()
}

func (m panelModel) copy() tea.Cmd {
	o := m.tracker.Last()
	if !o.OK() || o.Text == "" {
		return nil
	}
	kind, text := m.panel.Kind, o.Text
	return func() tea.Msg {
		return copiedMsg{kind: kind, n: len([]rune(text)), err: writeClipboard(text)}
	}
}

func (m panelModel) resize(width, height int) panelModel {
	m.width, m.height = width, height
	w := max(width-4, 20)
	if m.panel.Multiline {
		m.code.SetWidth(w)
	} else {
		m.input.Width = w - 2
	}
	m.result.Width = w
	m.result.Height = max(height-m.formHeight()-3, 3)
	if r, err := glamour.NewTermRenderer(glamour.WithStandardStyle("dark"), glamour.WithWordWrap(w-2)); err == nil {
		m.md = r
	}
	return m.render()
}

// formHeight is the number of lines above the result box.
func (m panelModel) formHeight() int {
	if m.panel.Multiline {
		return m.code.Height() + 3
	}
	return 3
}

// render refreshes the viewport from the tracker's last outcome.
func (m panelModel) render() panelModel {
	o := m.tracker.Last()
	switch {
	case o.Text == "":
		m.rendered = ""
	case o.OK():
		m.rendered = renderMarkdown(m.md, o.Text)
	default:
		m.rendered = outcomeStyle(o.Kind).Render(o.Text)
	}
	m.result.SetContent(m.rendered)
	m.result.GotoTop()
	return m
}

// renderMarkdown renders md for the terminal, falling back to the raw text.
func renderMarkdown(r *glamour.TermRenderer, md string) string {
	if r == nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}

func (m panelModel) View() string {
	var b strings.Builder
	fmt.Fprintf(&b, "  %s  %s\n", selectedStyle.Render(m.panel.Title), metaStyle.Render("POST "+m.panel.Endpoint))
	if m.panel.Multiline {
		b.WriteString(m.code.View() + "\n")
	} else {
		b.WriteString("  " + m.input.View() + "\n")
	}

	status := ""
	o := m.tracker.Last()
	switch {
	case m.tracker.Busy():
		status = m.spinner.View() + " " + dimStyle.Render("waiting for the tutor… (esc to cancel)")
	case m.notice != "":
		status = accentStyle.Render(m.notice)
	case o.OK():
		status = metaStyle.Render("answered " + answeredAt(o.At))
	}
	b.WriteString("  " + status + "\n")

	if m.rendered != "" {
		if m.result.Height > 0 {
			b.WriteString(resultBorderStyle.Render(m.result.View()))
		} else {
			b.WriteString(m.rendered)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// helpKeys describes the keys that apply right now.
func (m panelModel) helpKeys() string {
	submit := "enter"
	if m.panel.Multiline {
		submit = "ctrl+s"
	}
	switch {
	case m.tracker.Busy() && m.focused:
		return helpBar("esc", "cancel")
	case m.tracker.Busy():
		return helpBar("esc", "cancel", "1-3", "panels")
	case m.focused:
		return helpBar(submit, m.panel.SubmitLabel, "ctrl+l", "clear", "esc", "nav")
	default:
		return helpBar("1-3", "panels", "i", "type", "j/k", "scroll", "c", "copy", "L", "logout", "h", "help", "q", "quit")
	}
}
