package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/tutor/internal/auth"
	"github.com/naveenspark/tutor/pkg/domain"
)

// loginDoneMsg carries the result of a login attempt.
type loginDoneMsg struct {
	res      auth.Result
	username string
}

// registerDoneMsg carries the result of a registration attempt.
type registerDoneMsg struct {
	res      auth.Result
	username string
}

// credentials is the username/password pair shared by both forms.
type credentials struct {
	username textinput.Model
	password textinput.Model
}

func newCredentials() credentials {
	c := credentials{
		username: newTextInput("username"),
		password: newPasswordInput("password"),
	}
	c.username.Focus()
	return c
}

func (c credentials) values() (string, string) {
	return strings.TrimSpace(c.username.Value()), c.password.Value()
}

func (c credentials) complete() bool {
	u, p := c.values()
	return u != "" && p != ""
}

// ---------------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------------

const (
	loginFieldUsername = iota
	loginFieldPassword
	numLoginFields
)

type loginModel struct {
	svc     *auth.Service
	creds   credentials
	focus   int
	busy    bool
	spinner spinner.Model
	message string
	ok      bool
}

func newLoginModel(svc *auth.Service) loginModel {
	return loginModel{svc: svc, creds: newCredentials(), spinner: newSpinner()}
}

func (m loginModel) Update(ctx context.Context, msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case loginDoneMsg:
		m.busy = false
		m.message, m.ok = msg.res.Message, msg.res.OK
		if msg.res.OK {
			m.creds.password.Reset()
		}
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "down":
			return m.setFocus((m.focus + 1) % numLoginFields), nil
		case "shift+tab", "up":
			return m.setFocus((m.focus + numLoginFields - 1) % numLoginFields), nil
		case "enter":
			if m.focus == loginFieldUsername && m.creds.password.Value() == "" {
				return m.setFocus(loginFieldPassword), nil
			}
			return m.submit(ctx)
		}
	}

	if m.busy {
		return m, nil
	}
	var cmd tea.Cmd
	switch m.focus {
	case loginFieldUsername:
		m.creds.username, cmd = m.creds.username.Update(msg)
	case loginFieldPassword:
		m.creds.password, cmd = m.creds.password.Update(msg)
	}
	return m, cmd
}

func (m loginModel) setFocus(i int) loginModel {
	m.focus = i
	m.creds.username.Blur()
	m.creds.password.Blur()
	switch i {
	case loginFieldUsername:
		m.creds.username.Focus()
	case loginFieldPassword:
		m.creds.password.Focus()
	}
	return m
}

// submit sends one login request. A second submit while busy is ignored.
func (m loginModel) submit(ctx context.Context) (loginModel, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	if !m.creds.complete() {
		m.message, m.ok = auth.MsgCredentialsReq, false
		return m, nil
	}
	m.busy = true
	m.message, m.ok = auth.MsgLoggingIn, false

	svc := m.svc
	username, password := m.creds.values()
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		return loginDoneMsg{res: svc.Login(ctx, username, password), username: username}
	})
}

func (m loginModel) View() string {
	var b strings.Builder
	fmt.Fprintf(&b, "  %s\n\n", selectedStyle.Render("Log in"))
	fmt.Fprintf(&b, "  %s\n  %s\n\n", fieldLabel("Username", m.focus == loginFieldUsername), m.creds.username.View())
	fmt.Fprintf(&b, "  %s\n  %s\n\n", fieldLabel("Password", m.focus == loginFieldPassword), m.creds.password.View())
	b.WriteString("  " + formStatus(m.busy, m.spinner, m.message, m.ok) + "\n")
	return b.String()
}

// ---------------------------------------------------------------------------
// Register
// ---------------------------------------------------------------------------

const (
	registerFieldUsername = iota
	registerFieldPassword
	registerFieldRole
	numRegisterFields
)

type registerModel struct {
	svc     *auth.Service
	creds   credentials
	role    domain.Role
	focus   int
	busy    bool
	spinner spinner.Model
	message string
	ok      bool
}

func newRegisterModel(svc *auth.Service) registerModel {
	return registerModel{svc: svc, creds: newCredentials(), role: domain.RoleStudent, spinner: newSpinner()}
}

func (m registerModel) Update(ctx context.Context, msg tea.Msg) (registerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case registerDoneMsg:
		m.busy = false
		m.message, m.ok = msg.res.Message, msg.res.OK
		if msg.res.OK {
			m.creds.password.Reset()
		}
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "down":
			return m.setFocus((m.focus + 1) % numRegisterFields), nil
		case "shift+tab", "up":
			return m.setFocus((m.focus + numRegisterFields - 1) % numRegisterFields), nil
		case "enter":
			if m.focus < registerFieldRole && !m.creds.complete() {
				return m.setFocus(m.focus + 1), nil
			}
			return m.submit(ctx)
		}
		if m.focus == registerFieldRole && !m.busy {
			switch msg.String() {
			case "left", "h":
				m.role = domain.NextRole(m.role, -1)
			case "right", "l", " ":
				m.role = domain.NextRole(m.role, 1)
			}
			return m, nil
		}
	}

	if m.busy {
		return m, nil
	}
	var cmd tea.Cmd
	switch m.focus {
	case registerFieldUsername:
		m.creds.username, cmd = m.creds.username.Update(msg)
	case registerFieldPassword:
		m.creds.password, cmd = m.creds.password.Update(msg)
	}
	return m, cmd
}

func (m registerModel) setFocus(i int) registerModel {
	m.focus = i
	m.creds.username.Blur()
	m.creds.password.Blur()
	switch i {
	case registerFieldUsername:
		m.creds.username.Focus()
	case registerFieldPassword:
		m.creds.password.Focus()
	}
	return m
}

func (m registerModel) submit(ctx context.Context) (registerModel, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	if !m.creds.complete() {
		m.message, m.ok = auth.MsgCredentialsReq, false
		return m, nil
	}
	m.busy = true
	m.message, m.ok = auth.MsgRegistering, false

	svc := m.svc
	role := m.role
	username, password := m.creds.values()
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		return registerDoneMsg{res: svc.Register(ctx, username, password, role), username: username}
	})
}

func (m registerModel) View() string {
	var b strings.Builder
	fmt.Fprintf(&b, "  %s\n\n", selectedStyle.Render("Create an account"))
	fmt.Fprintf(&b, "  %s\n  %s\n\n", fieldLabel("Username", m.focus == registerFieldUsername), m.creds.username.View())
	fmt.Fprintf(&b, "  %s\n  %s\n\n", fieldLabel("Password", m.focus == registerFieldPassword), m.creds.password.View())

	role := dimStyle.Render("‹ ") + RoleStyle(m.role).Render(string(m.role)) + dimStyle.Render(" ›")
	fmt.Fprintf(&b, "  %s\n  %s\n\n", fieldLabel("Role", m.focus == registerFieldRole), role)
	b.WriteString("  " + formStatus(m.busy, m.spinner, m.message, m.ok) + "\n")
	return b.String()
}

func fieldLabel(label string, focused bool) string {
	if focused {
		return accentStyle.Render(label)
	}
	return sectionHeaderStyle.Render(label)
}

func formStatus(busy bool, s spinner.Model, message string, ok bool) string {
	if busy {
		return s.View() + " " + dimStyle.Render(message)
	}
	if message == "" {
		return ""
	}
	return messageStyle(ok).Render(message)
}
