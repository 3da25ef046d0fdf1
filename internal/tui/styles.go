package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/tutor/internal/lifecycle"
	"github.com/naveenspark/tutor/pkg/domain"
)

var (
	// Base styles, neutral palette
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0c4d0"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	// Help bar
	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	helpLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ade80")).
			Bold(true)

	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#34d474"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#4ade80"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e06060"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4a844"))

	sectionHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#606878"))

	inputPromptStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#34d474")).
				Bold(true)

	inputPlaceholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#343c4a"))

	resultBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#1e1e2a")).
				Padding(0, 1)

	roleColors = map[domain.Role]lipgloss.Color{
		domain.RoleStudent: lipgloss.Color("#60a0e0"),
		domain.RoleAdmin:   lipgloss.Color("#d4a844"),
	}
)

// RoleStyle returns a bold style colored for role.
func RoleStyle(r domain.Role) lipgloss.Style {
	if c, ok := roleColors[r]; ok {
		return lipgloss.NewStyle().Foreground(c).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("#8890a0")).Bold(true)
}

// RoleBadge renders "[admin]" style badges. Empty for an empty role.
func RoleBadge(r domain.Role) string {
	if r == "" {
		return ""
	}
	return RoleStyle(r).Render("[" + string(r) + "]")
}

// outcomeStyle picks the color for a finished request.
func outcomeStyle(k lifecycle.ErrorKind) lipgloss.Style {
	switch k {
	case lifecycle.KindNone:
		return normalStyle
	case lifecycle.KindMalformed, lifecycle.KindCanceled, lifecycle.KindValidation:
		return warnStyle
	default:
		return errorStyle
	}
}

// messageStyle colors an auth form message.
func messageStyle(ok bool) lipgloss.Style {
	if ok {
		return okStyle
	}
	return errorStyle
}

// helpEntry renders a single "key label" pair for help bars.
func helpEntry(key, label string) string {
	return helpKeyStyle.Render(key) + " " + helpLabelStyle.Render(label)
}

// helpBar joins key/label pairs with the bar's spacing.
func helpBar(pairs ...string) string {
	var entries []string
	for i := 0; i+1 < len(pairs); i += 2 {
		entries = append(entries, helpEntry(pairs[i], pairs[i+1]))
	}
	return " " + strings.Join(entries, "  ")
}

// helpItem is a selectable link in the help overlay.
type helpItem struct {
	label string
	page  string
}

var helpItems = []helpItem{
	{"API docs", "/docs"},
	{"API health", "/health"},
}

// helpView renders the help overlay with a cursor on the links.
func helpView(apiURL string, cursor int) string {
	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	sectionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)
	linkDescStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)

	keys := []struct{ key, desc string }{
		{"1 2 3", "Ask, Quiz, Code Review"},
		{"enter", "submit (ctrl+s in Code Review)"},
		{"esc", "cancel a running request / leave the input"},
		{"ctrl+l", "clear the current panel"},
		{"i", "focus the input"},
		{"j/k pgup/pgdn", "scroll the answer"},
		{"c", "copy the answer"},
		{"L", "log out"},
		{"q ctrl+c", "quit"},
	}
	commands := []struct{ cmd, desc string }{
		{"tutor", "interactive shell"},
		{"tutor login", "log in and save the session"},
		{"tutor ask ...", "ask a one-off question"},
		{"tutor quiz [topic]", "generate a quiz"},
		{"tutor review FILE", "review an HTML file"},
		{"tutor logout", "clear your session"},
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n  %s\n\n", titleStyle.Render("AI HTML Tutor"), metaStyle.Render(apiURL))

	fmt.Fprintf(&b, "  %s\n", sectionStyle.Render("Keys"))
	for _, k := range keys {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-16s", k.key)), descStyle.Render(k.desc))
	}
	fmt.Fprintf(&b, "\n  %s\n", sectionStyle.Render("Commands"))
	for _, c := range commands {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-20s", c.cmd)), descStyle.Render(c.desc))
	}

	fmt.Fprintf(&b, "\n  %s\n", sectionStyle.Render("Links (enter to open)"))
	for i, item := range helpItems {
		label := cmdStyle.Render(fmt.Sprintf("%-16s", item.label))
		prefix := "    "
		if i == cursor {
			label = titleStyle.Render(fmt.Sprintf("%-16s", item.label))
			prefix = "  > "
		}
		fmt.Fprintf(&b, "%s%s  %s\n", prefix, label, linkDescStyle.Render(strings.TrimRight(apiURL, "/")+item.page))
	}
	return b.String()
}
