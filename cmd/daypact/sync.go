package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/daypact/daypact/internal/errs"
	"github.com/daypact/daypact/internal/offline"
	"github.com/daypact/daypact/internal/session"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show connectivity, session and queue state",
	RunE:  runStatus,
}

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "List the pending sync queue",
	RunE:  runQueue,
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run a single sync pass against the remote store",
	RunE:  runSync,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run sync passes on an interval until interrupted",
	RunE:  runWatch,
}

var watchRetryAlways bool

func init() {
	watchCmd.Flags().BoolVar(&watchRetryAlways, "retry-always", false, "retry failed passes without backoff")
}

func runStatus(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()
	ctx := cmd.Context()

	online := a.probe.Online(ctx)
	fmt.Printf("connectivity: %s\n", map[bool]string{true: "online", false: "offline"}[online])

	uid, err := session.NewManager(a.kv, a.clk).CurrentUserID(ctx)
	switch {
	case errors.Is(err, errs.ErrSignedOut):
		fmt.Println("session: signed out")
	case err != nil:
		return err
	default:
		fmt.Printf("session: user %s\n", uid)
	}

	fmt.Printf("queue: %d pending item(s)\n", a.queue.Len(ctx))
	return nil
}

func runQueue(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	items := a.queue.PeekAll(cmd.Context())
	if len(items) == 0 {
		fmt.Println("queue is empty")
		return nil
	}
	for _, it := range items {
		ts := time.UnixMilli(it.Timestamp).UTC().Format(time.RFC3339)
		fmt.Printf("%s  %-18s  %s\n", ts, it.Type, it.ID)
	}
	return nil
}

func runSync(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()
	ctx := cmd.Context()

	rs, err := a.remoteStore(ctx)
	if err != nil {
		return err
	}

	syncer := offline.NewSynchronizer(a.probe, a.queue, a.log)
	if err := syncer.SyncWhenOnline(ctx, rs); err != nil {
		return err
	}
	fmt.Printf("queue: %d pending item(s)\n", a.queue.Len(ctx))
	return nil
}

// runWatch is the single place sync passes are scheduled from, so passes
// never overlap.
func runWatch(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()
	ctx := cmd.Context()

	rs, err := a.remoteStore(ctx)
	if err != nil {
		return err
	}

	var strat offline.Strategy = offline.NewBackoff(a.cfg.BackoffBase(), a.cfg.BackoffMax())
	if watchRetryAlways {
		strat = offline.RetryAlways{}
	}

	syncer := offline.NewSynchronizer(a.probe, a.queue, a.log)
	for {
		if err := syncer.SyncWhenOnline(ctx, rs); err != nil {
			a.log.Warn("sync pass", zap.Error(err))
		}

		failed := a.queue.Len(ctx) > 0
		delay := a.cfg.SyncInterval() + strat.NextPass(failed)

		select {
		case <-ctx.Done():
			a.log.Info("watch stopped")
			return nil
		case <-time.After(delay):
		}
	}
}
