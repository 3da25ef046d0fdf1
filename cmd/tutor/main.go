package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/tutor/internal/auth"
	"github.com/naveenspark/tutor/internal/config"
	"github.com/naveenspark/tutor/internal/logging"
	"github.com/naveenspark/tutor/internal/session"
	"github.com/naveenspark/tutor/internal/tui"
	"github.com/naveenspark/tutor/pkg/client"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	err := run(os.Args[1:])
	switch {
	case err == nil:
	case errors.Is(err, errUsage):
		os.Exit(2)
	default:
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, rest, err := config.Load(args)
	if errors.Is(err, flag.ErrHelp) {
		printHelp(os.Stdout)
		return nil
	}
	if err != nil {
		return err
	}

	cmd := ""
	if len(rest) > 0 {
		cmd, rest = rest[0], rest[1:]
	}
	switch cmd {
	case "version", "--version", "-v":
		fmt.Println("tutor " + version)
		return nil
	case "help", "--help", "-h":
		printHelp(os.Stdout)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app, closeApp, err := setup(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeApp()

	if cmd == "" {
		return runShell(app)
	}
	return app.dispatch(ctx, cmd, rest)
}

// cli bundles everything a subcommand needs.
type cli struct {
	cfg    *config.Config
	client *client.Client
	sess   *session.Session
	svc    *auth.Service
	log    logging.Logger

	// in is shared by every stdin read so buffered input is never lost
	// between prompts.
	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer
	// readPassword prompts for a secret; it must not echo.
	readPassword func(prompt string) (string, error)
}

// setup opens the log, the session store and the API client.
func setup(ctx context.Context, cfg *config.Config) (*cli, func(), error) {
	var closers []io.Closer
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i].Close() //nolint:errcheck // best-effort close on exit
		}
	}

	log, logFile, err := logging.OpenFile(cfg.LogPath(), cfg.Debug)
	if err != nil {
		return nil, nil, err
	}
	closers = append(closers, logFile)

	store, storeCloser, err := openStore(ctx, cfg)
	if err != nil {
		closeAll()
		return nil, nil, err
	}
	if storeCloser != nil {
		closers = append(closers, storeCloser)
	}

	sess, err := session.Load(ctx, store, cfg.Token)
	if err != nil {
		closeAll()
		return nil, nil, fmt.Errorf("load session: %w", err)
	}

	c := client.New(cfg.APIURL, sess,
		client.WithTimeout(cfg.RequestTimeout),
		client.WithLogger(log.With("component", "client")),
	)
	log.Info(ctx, "starting", "version", version, "api", cfg.APIURL, "session", cfg.Session, "config", cfg.File)

	stdin := bufio.NewReader(os.Stdin)
	return &cli{
		cfg:          cfg,
		client:       c,
		sess:         sess,
		svc:          auth.NewService(c, sess, log),
		log:          log,
		in:           stdin,
		out:          os.Stdout,
		errOut:       os.Stderr,
		readPassword: terminalPassword(os.Stdin, stdin, os.Stderr),
	}, closeAll, nil
}

// openStore picks the token backend. The returned closer may be nil.
func openStore(ctx context.Context, cfg *config.Config) (session.Store, io.Closer, error) {
	switch cfg.Session {
	case config.BackendSQLite:
		st, err := session.OpenSQLite(ctx, cfg.DBPath())
		if err != nil {
			return nil, nil, fmt.Errorf("open session db: %w", err)
		}
		return st, st, nil
	default:
		return session.NewFileStore(cfg.TokenPath()), nil, nil
	}
}

func runShell(app *cli) error {
	model := tui.NewApp(app.svc, app.client, version)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}
