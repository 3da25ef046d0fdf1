package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/tutor/internal/auth"
	"github.com/naveenspark/tutor/internal/browser"
	"github.com/naveenspark/tutor/internal/lifecycle"
	"github.com/naveenspark/tutor/internal/shell"
	"github.com/naveenspark/tutor/pkg/client"
	"github.com/naveenspark/tutor/pkg/domain"
)

// API is what the shell needs from the API client.
type API interface {
	lifecycle.Submitter
	Health(ctx context.Context) (*client.HealthResponse, error)
	BaseURL() string
}

var _ API = (*client.Client)(nil)

// Messages shown in the status line.
const (
	msgSessionExpired = "Session expired. Please log in again."
	msgLoggingOut     = "Logging out..."
	msgNoProfile      = "profile unavailable"
)

// profileLoadedMsg carries the result of GET /me for one mount of the
// authenticated view.
type profileLoadedMsg struct {
	mount   int
	profile *domain.Profile
	err     error
}

// healthMsg carries the result of the startup health probe.
type healthMsg struct {
	status string
	err    error
}

// logoutDoneMsg arrives once the session has been cleared.
type logoutDoneMsg struct {
	res    auth.Result
	reason string
}

// App is the root Bubbletea model. It owns the shell state machine and
// every view model.
type App struct {
	svc     *auth.Service
	api     API
	apiURL  string
	version string

	machine  shell.Machine
	login    loginModel
	register registerModel
	panels   [domain.NumPanels]panelModel
	active   domain.PanelKind

	profile    *domain.Profile
	profileErr string
	mount      int
	health     string
	status     string
	loggingOut bool

	helpOpen   bool
	helpCursor int

	// ctx scopes every request started by the authenticated view.
	ctx    context.Context
	cancel context.CancelFunc

	width  int
	height int
}

// NewApp creates the shell. It starts authenticated iff svc's session
// holds a token.
func NewApp(svc *auth.Service, api API, version string) App {
	loggedIn := svc != nil && svc.Session().LoggedIn()
	apiURL := client.DefaultBaseURL
	if api != nil {
		apiURL = api.BaseURL()
	}
	a := App{
		svc:      svc,
		api:      api,
		apiURL:   apiURL,
		version:  version,
		machine:  shell.New(loggedIn),
		login:    newLoginModel(svc),
		register: newRegisterModel(svc),
	}
	a.ctx, a.cancel = context.WithCancel(context.Background())
	a.panels = newPanels(api)
	return a
}

func newPanels(api API) [domain.NumPanels]panelModel {
	var sub lifecycle.Submitter
	if api != nil {
		sub = api
	}
	var ps [domain.NumPanels]panelModel
	for k := range ps {
		ps[k] = newPanelModel(domain.PanelFor(domain.PanelKind(k)), sub)
	}
	return ps
}

// Machine exposes the shell state, mainly for tests.
func (a App) Machine() shell.Machine {
	return a.machine
}

func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, a.checkHealth()}
	if a.machine.Authenticated() {
		cmds = append(cmds, a.loadProfile())
	}
	return tea.Batch(cmds...)
}

func (a App) checkHealth() tea.Cmd {
	if a.api == nil {
		return nil
	}
	api, ctx := a.api, a.ctx
	return func() tea.Msg {
		h, err := api.Health(ctx)
		if err != nil {
			return healthMsg{err: err}
		}
		return healthMsg{status: h.Status}
	}
}

func (a App) loadProfile() tea.Cmd {
	if a.svc == nil {
		return nil
	}
	svc, ctx, mount := a.svc, a.ctx, a.mount
	return func() tea.Msg {
		p, err := svc.Profile(ctx)
		return profileLoadedMsg{mount: mount, profile: p, err: err}
	}
}

// enterAuthenticated mounts the feature views with fresh state.
func (a App) enterAuthenticated() (App, tea.Cmd) {
	a.machine = a.machine.LoginSucceeded()
	a.mount++
	a.profile, a.profileErr = nil, ""
	a.panels = newPanels(a.api)
	a.active = domain.PanelAsk
	a = a.resizeBody()
	return a, a.loadProfile()
}

// cancelAll aborts every request started by the authenticated view.
func (a App) cancelAll() App {
	for _, p := range a.panels {
		p.cancel()
	}
	a.cancel()
	a.ctx, a.cancel = context.WithCancel(context.Background())
	return a
}

// logout cancels in-flight work, then clears the session in the background.
// The state change happens when logoutDoneMsg arrives.
func (a App) logout(reason string) (App, tea.Cmd) {
	if a.loggingOut {
		return a, nil
	}
	a = a.cancelAll()
	a.loggingOut = true
	a.status = msgLoggingOut
	svc := a.svc
	return a, func() tea.Msg {
		if svc == nil {
			return logoutDoneMsg{res: auth.Result{OK: true, Message: auth.MsgLoggedOut}, reason: reason}
		}
		return logoutDoneMsg{res: svc.Logout(context.Background()), reason: reason}
	}
}

func (a App) quit() (App, tea.Cmd) {
	a = a.cancelAll()
	return a, tea.Quit
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a.resizeBody(), nil

	case healthMsg:
		if msg.err != nil {
			a.health = "offline"
		} else {
			a.health = msg.status
		}
		return a, nil

	case profileLoadedMsg:
		if msg.mount != a.mount || !a.machine.Authenticated() {
			return a, nil
		}
		if msg.err != nil {
			if auth.Unauthorized(msg.err) {
				return a.logout(msgSessionExpired)
			}
			a.profileErr = msgNoProfile
			return a, nil
		}
		a.profile = msg.profile
		return a, nil

	case loginDoneMsg:
		var cmd tea.Cmd
		a.login, cmd = a.login.Update(a.ctx, msg)
		if !msg.res.OK || a.machine.Authenticated() {
			return a, cmd
		}
		a.status = msg.res.Message
		a.login = newLoginModel(a.svc)
		var load tea.Cmd
		a, load = a.enterAuthenticated()
		return a, tea.Batch(cmd, load)

	case registerDoneMsg:
		var cmd tea.Cmd
		a.register, cmd = a.register.Update(a.ctx, msg)
		if msg.res.OK {
			a.login.creds.username.SetValue(msg.username)
		}
		return a, cmd

	case logoutDoneMsg:
		a.loggingOut = false
		a.machine = a.machine.LoggedOut()
		a.profile, a.profileErr = nil, ""
		a.panels = newPanels(a.api)
		a.login = newLoginModel(a.svc)
		a.register = newRegisterModel(a.svc)
		a.status = ""
		a.login.message, a.login.ok = msg.res.Message, msg.res.OK
		if msg.reason != "" {
			a.login.message, a.login.ok = msg.reason, false
		}
		return a, nil

	case panelDoneMsg:
		var cmd tea.Cmd
		a.panels[msg.kind], cmd = a.panels[msg.kind].Update(a.ctx, msg)
		return a, cmd

	case copiedMsg:
		var cmd tea.Cmd
		a.panels[msg.kind], cmd = a.panels[msg.kind].Update(a.ctx, msg)
		return a, cmd

	case spinner.TickMsg:
		var cmds []tea.Cmd
		var cmd tea.Cmd
		a.login, cmd = a.login.Update(a.ctx, msg)
		cmds = append(cmds, cmd)
		a.register, cmd = a.register.Update(a.ctx, msg)
		cmds = append(cmds, cmd)
		for k := range a.panels {
			a.panels[k], cmd = a.panels[k].Update(a.ctx, msg)
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a.quit()
		}

		// Help overlay captures all keys when open
		if a.helpOpen {
			switch msg.String() {
			case "h", "esc":
				a.helpOpen = false
			case "q":
				return a.quit()
			case "j", "down":
				if a.helpCursor < len(helpItems)-1 {
					a.helpCursor++
				}
			case "k", "up":
				if a.helpCursor > 0 {
					a.helpCursor--
				}
			case "enter":
				browser.Open(browser.APIPage(a.apiURL, helpItems[a.helpCursor].page)) //nolint:errcheck // best-effort browser open
			}
			return a, nil
		}

		if !a.machine.Authenticated() {
			return a.updateAuthKeys(msg)
		}

		if !a.isEditing() {
			switch msg.String() {
			case "h", "?":
				a.helpOpen = true
				a.helpCursor = 0
				return a, nil
			case "q":
				return a.quit()
			case "1", "2", "3":
				a.active = domain.PanelKind(msg.String()[0] - '1')
				a.status = ""
				return a, nil
			case "L":
				return a.logout("")
			}
		}
		var cmd tea.Cmd
		a.panels[a.active], cmd = a.panels[a.active].Update(a.ctx, msg)
		return a, cmd
	}

	// Everything else (cursor blink etc.) goes to whatever has focus.
	var cmd tea.Cmd
	switch {
	case a.machine.Authenticated():
		a.panels[a.active], cmd = a.panels[a.active].Update(a.ctx, msg)
	case a.machine.View() == domain.AuthViewRegister:
		a.register, cmd = a.register.Update(a.ctx, msg)
	default:
		a.login, cmd = a.login.Update(a.ctx, msg)
	}
	return a, cmd
}

func (a App) updateAuthKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.machine.View() {
	case domain.AuthViewRegister:
		if msg.String() == "esc" && !a.register.busy {
			a.machine = a.machine.ShowLogin()
			return a, nil
		}
		a.register, cmd = a.register.Update(a.ctx, msg)
	default:
		if msg.String() == "ctrl+r" && !a.login.busy {
			a.machine = a.machine.ShowRegister()
			return a, nil
		}
		a.login, cmd = a.login.Update(a.ctx, msg)
	}
	return a, cmd
}

func (a App) isEditing() bool {
	if !a.machine.Authenticated() {
		return true
	}
	return a.panels[a.active].editing()
}

// chrome is header(2) + tabs(1) + status(1) + help(1).
const chrome = 5

func (a App) resizeBody() App {
	if a.width == 0 {
		return a
	}
	for k := range a.panels {
		a.panels[k] = a.panels[k].resize(a.width, a.height-chrome)
	}
	return a
}

func (a App) View() string {
	header := a.headerView()

	var body, tabs, help string
	switch {
	case a.helpOpen:
		body = helpView(a.apiURL, a.helpCursor)
		help = helpBar("j/k", "nav", "enter", "open", "esc", "close")
	case !a.machine.Authenticated() && a.machine.View() == domain.AuthViewRegister:
		body = a.register.View()
		help = helpBar("enter", "register", "tab", "next", "←/→", "role", "esc", "back to login", "ctrl+c", "quit")
	case !a.machine.Authenticated():
		body = a.login.View()
		help = helpBar("enter", "log in", "tab", "next", "ctrl+r", "register", "ctrl+c", "quit")
	default:
		tabs = a.tabsView()
		body = a.panels[a.active].View()
		help = a.panels[a.active].helpKeys()
	}

	status := ""
	if a.status != "" {
		status = " " + accentStyle.Render(a.status)
	}

	body = strings.TrimRight(truncateToHeight(body, a.height-chrome), "\n")
	return fmt.Sprintf("%s\n%s\n%s\n%s\n%s", header, tabs, body, status, help)
}

// Header field limits, in runes.
const (
	maxHeaderName = 24
	maxHeaderURL  = 40
)

func (a App) headerView() string {
	title := titleStyle.Render("AI HTML Tutor")

	var parts []string
	switch {
	case a.profile != nil:
		parts = append(parts, selectedStyle.Render(truncStr(a.profile.Username, maxHeaderName))+" "+RoleBadge(a.profile.Role))
	case a.profileErr != "":
		parts = append(parts, warnStyle.Render(a.profileErr))
	case a.machine.Authenticated():
		parts = append(parts, dimStyle.Render("loading profile…"))
	}
	switch a.health {
	case "":
	case "ok":
		parts = append(parts, okStyle.Render("●")+" "+metaStyle.Render(truncStr(a.apiURL, maxHeaderURL)))
	default:
		parts = append(parts, errorStyle.Render("●")+" "+metaStyle.Render(truncStr(a.apiURL, maxHeaderURL)+" "+a.health))
	}
	if a.version != "" {
		parts = append(parts, metaStyle.Render(a.version))
	}
	line := strings.Join(parts, metaStyle.Render(" · "))
	return center(title, a.width) + "\n" + center(line, a.width)
}

// tabsView renders "1 Ask  2 Quiz  3 Code Review" in equal-width columns.
func (a App) tabsView() string {
	colWidth := a.width / int(domain.NumPanels)
	var bar strings.Builder
	for k, p := range a.panels {
		key := fmt.Sprintf("%d", k+1)
		var label string
		if domain.PanelKind(k) == a.active {
			label = accentStyle.Render(key) + " " + selectedStyle.Underline(true).Render(p.panel.Title)
		} else {
			label = metaStyle.Render(key) + " " + dimStyle.Render(p.panel.Title)
		}
		if p.tracker.Busy() {
			label += " " + accentStyle.Render("…")
		}
		w := lipgloss.Width(label)
		left := max((colWidth-w)/2, 0)
		right := max(colWidth-w-left, 0)
		bar.WriteString(strings.Repeat(" ", left) + label + strings.Repeat(" ", right))
	}
	return bar.String()
}
