package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spetersoncode/citydesk/catalog"
	"github.com/spetersoncode/citydesk/city"
	"github.com/spetersoncode/citydesk/lookup"
	"github.com/spetersoncode/citydesk/safety"
	"github.com/spetersoncode/citydesk/session"
	"github.com/spetersoncode/citydesk/toolset"
)

var (
	dbPath      string
	sessionID   string
	logLevel    string
	catalogPath string

	cfg *Config
	app *App
)

var rootCmd = &cobra.Command{
	Use:           "citydesk",
	Short:         "Weather and time for cities, with per-session memory",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		a, err := openApp(cmd.Context(), cmd.Annotations["session"] != "none")
		if err != nil {
			return err
		}
		app = a
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
		return closeApp(cmd.Context())
	},
}

func init() {
	cfg = LoadConfig()
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Session database path (default: $CITYDESK_DB or ~/.citydesk/sessions.db)")
	rootCmd.PersistentFlags().StringVarP(&sessionID, "session", "s", "", "Session ID to resume (default: start a new session)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error (default: $CITYDESK_LOG_LEVEL or warn)")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "YAML catalog replacing the built-in city tables")
}

// App holds the services shared by every command.
type App struct {
	Logger   *zap.Logger
	Deps     toolset.Deps
	Gate     *safety.Gate
	Session  *session.Store
	ID       string
	manager  *session.Manager
	db       *session.SQLiteDB
	resuming bool
}

// openApp wires the services. When withSession is false only the database
// is opened.
func openApp(ctx context.Context, withSession bool) (*App, error) {
	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	logger, err := newLogger(level)
	if err != nil {
		return nil, err
	}

	cat := catalog.Default()
	if catalogPath != "" {
		data, err := os.ReadFile(catalogPath)
		if err != nil {
			return nil, fmt.Errorf("read catalog: %w", err)
		}
		if cat, err = catalog.Parse(data); err != nil {
			return nil, err
		}
		for _, warning := range cat.Lint() {
			logger.Warn("catalog lint", zap.String("issue", warning))
		}
	}

	path := cfg.DBPath
	if dbPath != "" {
		path = dbPath
	}
	db, err := session.OpenSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}

	a := &App{
		Logger: logger,
		Deps: toolset.Deps{
			Resolver: city.NewResolver(cat),
			Lookup:   lookup.New(cat, lookup.WithLogger(logger)),
		},
		Gate:    safety.NewGate(nil, safety.WithLogger(logger)),
		db:      db,
		manager: session.NewManager(db.Adapter, session.WithLogger(logger)),
	}

	switch {
	case !withSession:
		return a, nil
	case sessionID == "":
		a.ID, a.Session, err = a.manager.New(ctx)
	default:
		a.ID, a.resuming = sessionID, true
		a.Session, err = a.manager.Open(ctx, sessionID)
	}
	if err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

// closeApp closes the open App at most once.
func closeApp(ctx context.Context) error {
	a := app
	app = nil
	if a == nil {
		return nil
	}
	return a.Close(ctx)
}

// Save persists the session.
func (a *App) Save(ctx context.Context) error {
	return a.manager.Save(ctx, a.ID)
}

// Close saves the session and releases the database. A new session's ID is
// printed so the next invocation can resume it.
func (a *App) Close(ctx context.Context) error {
	defer a.Logger.Sync()
	defer a.db.Close()

	if a.Session == nil {
		return nil
	}
	if err := a.Save(ctx); err != nil {
		return err
	}
	if !a.resuming {
		fmt.Fprintf(os.Stderr, "session: %s\n", a.ID)
	}
	return nil
}
