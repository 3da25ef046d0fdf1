package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/tutor/internal/config"
)

func printHelp(w io.Writer) {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#4ade80")).
		Bold(true).
		Render("A I   H T M L   T U T O R")

	tagline := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render("Ask questions, take quizzes and get your HTML reviewed.")

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	commands := []struct{ cmd, desc string }{
		{"tutor", "Open the interactive tutor"},
		{"tutor login [-u NAME]", "Log in and save the session"},
		{"tutor register -u NAME", "Create an account (-role student|admin)"},
		{"tutor logout", "Clear your session"},
		{"tutor whoami", "Show the logged-in user"},
		{"tutor ask QUESTION", "Ask the tutor a question"},
		{"tutor quiz [TOPIC]", "Generate a quiz (default: HTML basics)"},
		{"tutor review [FILE|-]", "Review an HTML snippet from a file or stdin"},
		{"tutor health", "Check the API"},
		{"tutor --version", "Show version"},
		{"tutor help", "You are here"},
	}

	fmt.Fprintf(w, "\n  %s\n\n  %s\n\n  Commands:\n", title, tagline)
	for _, c := range commands {
		fmt.Fprintf(w, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-24s", c.cmd)), descStyle.Render(c.desc))
	}
	fmt.Fprintln(w)
	for _, line := range strings.Split(strings.TrimRight(config.Usage, "\n"), "\n") {
		fmt.Fprintf(w, "  %s\n", line)
	}
	fmt.Fprintln(w)
}
