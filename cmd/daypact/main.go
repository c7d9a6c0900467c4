// Command daypact runs the goal tracker's sync agent and maintenance tools.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/daypact/daypact/internal/clock"
	"github.com/daypact/daypact/internal/config"
	"github.com/daypact/daypact/internal/connectivity"
	"github.com/daypact/daypact/internal/offline"
	"github.com/daypact/daypact/internal/remote/postgres"
	"github.com/daypact/daypact/internal/storage"
	filestore "github.com/daypact/daypact/internal/storage/file"
	"github.com/daypact/daypact/internal/storage/sqlite"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "daypact",
	Short: "Daypact - offline-first sync for the goal tracker",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "daypact.toml", "path to the config file")
	rootCmd.AddCommand(statusCmd, queueCmd, syncCmd, watchCmd, migrateCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app bundles the long-lived collaborators every command starts from.
type app struct {
	cfg   *config.Config
	log   *zap.Logger
	kv    storage.Store
	queue *offline.Queue
	store *offline.Store
	probe *connectivity.Probe
	clk   clock.Clock

	closers []func()
}

func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	log, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	log.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
	)

	a := &app{cfg: cfg, log: log}
	a.closers = append(a.closers, func() { _ = log.Sync() })

	switch cfg.Storage.Backend {
	case "sqlite":
		st, err := sqlite.Open(cfg.Storage.Path)
		if err != nil {
			a.close()
			return nil, err
		}
		a.kv = st
		a.closers = append(a.closers, func() { _ = st.Close() })
	default:
		st, err := filestore.New(cfg.Storage.Path)
		if err != nil {
			a.close()
			return nil, err
		}
		a.kv = st
	}

	a.clk = clock.NewFixed(cfg.Time.UTCOffsetMinutes)
	a.queue = offline.NewQueue(a.kv, log)
	a.store = offline.NewStore(a.kv, a.queue, a.clk, log)

	endpoint := cfg.Probe.Endpoint
	if endpoint == "" {
		endpoint = connectivity.DefaultEndpoint
	}
	a.probe = connectivity.New(endpoint, cfg.ProbeTimeout(), log)

	return a, nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// remoteStore connects to the configured table store.
func (a *app) remoteStore(ctx context.Context) (*postgres.Store, error) {
	if a.cfg.Remote.DSN == "" {
		return nil, fmt.Errorf("config: remote dsn is not set")
	}
	db, err := postgres.New(ctx, a.cfg.Remote.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect remote store: %w", err)
	}
	a.closers = append(a.closers, db.Close)
	return postgres.NewStore(db), nil
}
