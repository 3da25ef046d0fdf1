package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"

	"github.com/naveenspark/tutor/internal/auth"
	"github.com/naveenspark/tutor/internal/lifecycle"
	"github.com/naveenspark/tutor/pkg/domain"
)

// errUsage marks a bad invocation; help has already been printed.
var errUsage = errors.New("usage")

func (c *cli) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "login":
		return c.runLogin(ctx, args)
	case "register":
		return c.runRegister(ctx, args)
	case "logout":
		return c.runLogout(ctx)
	case "whoami":
		return c.runWhoami(ctx)
	case "ask":
		return c.runPanel(ctx, domain.PanelAsk, strings.Join(args, " "))
	case "quiz":
		topic := strings.Join(args, " ")
		if topic == "" {
			topic = domain.PanelFor(domain.PanelQuiz).DefaultInput
		}
		return c.runPanel(ctx, domain.PanelQuiz, topic)
	case "review":
		code, err := c.readCode(args)
		if err != nil {
			return err
		}
		return c.runPanel(ctx, domain.PanelReview, code)
	case "health":
		return c.runHealth(ctx)
	default:
		fmt.Fprintf(c.errOut, "unknown command %q\n\n", cmd)
		printHelp(c.errOut)
		return errUsage
	}
}

func (c *cli) runLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	username := fs.String("u", "", "username")
	if err := fs.Parse(args); err != nil {
		return helpOK(err)
	}

	if *username == "" {
		u, err := c.prompt("Username: ")
		if err != nil {
			return err
		}
		*username = u
	}
	password, err := c.readPassword("Password: ")
	if err != nil {
		return err
	}

	return c.report(c.svc.Login(ctx, *username, password))
}

func (c *cli) runRegister(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	username := fs.String("u", "", "username")
	role := fs.String("role", string(domain.RoleStudent), "student or admin")
	if err := fs.Parse(args); err != nil {
		return helpOK(err)
	}
	if *username == "" {
		fmt.Fprintln(c.errOut, "usage: tutor register -u USERNAME [-role student|admin]")
		return errUsage
	}
	if !domain.ValidRole(domain.Role(*role)) {
		return errors.New(auth.MsgInvalidRole)
	}

	password, err := c.readPassword("Password: ")
	if err != nil {
		return err
	}
	res := c.svc.Register(ctx, *username, password, domain.Role(*role))
	if err := c.report(res); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Log in with: tutor login -u %s\n", strings.TrimSpace(*username))
	return nil
}

func (c *cli) runLogout(ctx context.Context) error {
	if !c.sess.LoggedIn() {
		fmt.Fprintln(c.out, "Already logged out.")
		return nil
	}
	res := c.svc.Logout(ctx)
	if res.Err != nil {
		return fmt.Errorf("clear session: %w", res.Err)
	}
	fmt.Fprintln(c.out, res.Message)
	return nil
}

func (c *cli) runWhoami(ctx context.Context) error {
	if !c.sess.LoggedIn() {
		return errors.New("not logged in; run: tutor login")
	}
	p, err := c.svc.Profile(ctx)
	if err != nil {
		if auth.Unauthorized(err) {
			if res := c.svc.Logout(ctx); res.Err != nil {
				return fmt.Errorf("session expired, but clearing it failed: %w", res.Err)
			}
			return errors.New("session expired; run: tutor login")
		}
		return err
	}
	fmt.Fprintf(c.out, "%s (%s)\n", p.Username, p.Role)
	return nil
}

// runPanel sends one panel request and prints the answer. Any failure,
// including a reply without a result, exits non-zero with the panel's text.
func (c *cli) runPanel(ctx context.Context, kind domain.PanelKind, value string) error {
	if !c.sess.LoggedIn() {
		return errors.New("not logged in; run: tutor login")
	}
	p := domain.PanelFor(kind)
	o := lifecycle.Invoke(ctx, c.client, p, value)
	if !o.OK() {
		c.log.Warn(ctx, "panel request failed", "endpoint", p.Endpoint, "kind", o.Kind, "error", o.Err)
		return errors.New(o.Text)
	}
	fmt.Fprintln(c.out, renderFor(c.out, o.Text))
	return nil
}

func (c *cli) runHealth(ctx context.Context) error {
	h, err := c.client.Health(ctx)
	if err != nil {
		return fmt.Errorf("%s %s", c.client.BaseURL(), domain.ConnectivityError)
	}
	fmt.Fprintf(c.out, "%s %s\n", c.client.BaseURL(), h.Status)
	return nil
}

// readCode loads the snippet for review from a file, or stdin for "-" or
// no argument.
func (c *cli) readCode(args []string) (string, error) {
	if len(args) > 1 {
		fmt.Fprintln(c.errOut, "usage: tutor review [FILE|-]")
		return "", errUsage
	}
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(c.in)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read %s: %w", args[0], err)
	}
	return string(data), nil
}

// report prints an auth result: messages on stdout, failures as errors.
func (c *cli) report(res auth.Result) error {
	if !res.OK {
		return errors.New(res.Message)
	}
	fmt.Fprintln(c.out, res.Message)
	return nil
}

func (c *cli) prompt(label string) (string, error) {
	fmt.Fprint(c.errOut, label)
	line, err := readLine(c.in)
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// readLine returns one line without its terminator. A final line without
// a newline is accepted.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// helpOK turns a subcommand's -h into a clean exit; its usage has been
// printed already.
func helpOK(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	return err
}

// terminalPassword reads without echo when in is a terminal, otherwise a
// plain line from buf (for scripted use). buf must wrap in and be the same
// reader used for other prompts.
func terminalPassword(in *os.File, buf *bufio.Reader, prompt io.Writer) func(string) (string, error) {
	return func(label string) (string, error) {
		fmt.Fprint(prompt, label)
		fd := int(in.Fd())
		if term.IsTerminal(fd) {
			b, err := term.ReadPassword(fd)
			fmt.Fprintln(prompt)
			if err != nil {
				return "", fmt.Errorf("read password: %w", err)
			}
			return string(b), nil
		}
		line, err := readLine(buf)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return line, nil
	}
}

// renderFor renders Markdown when w is a terminal and returns text as-is
// otherwise.
func renderFor(w io.Writer, text string) string {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return text
	}
	out, err := glamour.Render(text, "dark")
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}
