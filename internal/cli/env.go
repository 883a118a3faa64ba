package cli

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/darshit3596/shreejida/internal/app"
	"github.com/darshit3596/shreejida/internal/appstate"
	"github.com/darshit3596/shreejida/internal/auth"
	"github.com/darshit3596/shreejida/internal/config"
	"github.com/darshit3596/shreejida/internal/filehandle"
	"github.com/darshit3596/shreejida/internal/lifecycle"
)

// Host supplies the platform pieces behind a session. Nil fields fall back
// to the local filesystem, the configured slot file and the wall clock.
type Host struct {
	Slot     filehandle.Slot
	Resolver filehandle.Resolver

	// Locate turns a path typed or passed on the command line into a handle.
	Locate func(path string) (filehandle.Handle, error)

	Hasher auth.Hasher
	IDs    appstate.IDGenerator
	Clock  appstate.Clock
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

// env is everything one command invocation works with.
type env struct {
	ctx      context.Context
	cfg      *config.Config
	session  *app.Session
	prompter *Prompter
	out      *OutputFormatter
	clock    appstate.Clock
}

// openEnv loads config, configures logging and starts a session on the
// remembered database file.
func openEnv(cmd *cobra.Command, opts *RootOptions) (*env, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if err := setupLogging(cmd.ErrOrStderr(), cfg, opts.Verbose); err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid log level", err)
	}

	host := Host{}
	if opts.Host != nil {
		host = *opts.Host
	}

	prompter := NewPrompter(cmd.InOrStdin(), cmd.ErrOrStderr(), nil)
	if host.Slot == nil {
		host.Slot = filehandle.NewFileSlot(cfg.SlotPath)
	}
	if host.Resolver == nil {
		host.Resolver = filehandle.LocalResolver{Prompter: prompter}
	}
	if host.Locate == nil {
		host.Locate = func(path string) (filehandle.Handle, error) {
			return filehandle.NewLocalHandle(path, prompter)
		}
	}
	if host.Clock == nil {
		host.Clock = wallClock{}
	}
	prompter.locate = host.Locate

	stateOpts := []appstate.Option{appstate.WithClock(host.Clock)}
	if host.IDs != nil {
		stateOpts = append(stateOpts, appstate.WithIDGenerator(host.IDs))
	}
	files := filehandle.NewManager(host.Slot, prompter, host.Resolver)
	session := app.NewSession(files, cfg.DefaultSettings(), app.Options{
		Hasher: host.Hasher,
		State:  stateOpts,
	})

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	state, err := session.Start(ctx)
	if err != nil {
		session.Close()
		return nil, WrapExitError(ExitFailure, "failed to start session", err)
	}
	slog.Debug("session started", "state", state, "file", session.Controller.FileName())

	return &env{
		ctx:      ctx,
		cfg:      cfg,
		session:  session,
		prompter: prompter,
		out: &OutputFormatter{
			Format:    opts.Format,
			Writer:    cmd.OutOrStdout(),
			ErrWriter: cmd.ErrOrStderr(),
			Verbose:   opts.Verbose,
		},
		clock: host.Clock,
	}, nil
}

func (e *env) close() {
	if err := e.session.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}

// requireReady fails unless a database is loaded.
func (e *env) requireReady() error {
	if e.session.Ready() {
		return nil
	}
	return WrapExitError(ExitCommandError,
		"no database file selected (run 'shreejida new' or 'shreejida open <path>')",
		lifecycle.ErrNotReady)
}

func setupLogging(w io.Writer, cfg *config.Config, verbose bool) error {
	level, err := cfg.Level()
	if err != nil {
		return err
	}
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
	return nil
}
