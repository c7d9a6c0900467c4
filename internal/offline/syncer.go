package offline

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/daypact/daypact/internal/model"
	"github.com/daypact/daypact/internal/remote"
)

// ConnectivityProbe reports current outbound reachability.
type ConnectivityProbe interface {
	Online(ctx context.Context) bool
}

// Synchronizer replays the pending queue against the remote store with
// at-least-once semantics: items are removed only after their replay
// succeeds, failures stay queued for the next pass.
//
// There is no internal mutual exclusion. Two interleaved passes may replay
// the same item twice; callers must serialize invocations (a single
// scheduler owns the timer).
type Synchronizer struct {
	probe ConnectivityProbe
	queue *Queue
	log   *zap.Logger
}

// NewSynchronizer constructs a synchronizer with injected dependencies.
func NewSynchronizer(probe ConnectivityProbe, queue *Queue, log *zap.Logger) *Synchronizer {
	return &Synchronizer{probe: probe, queue: queue, log: log}
}

// SyncWhenOnline runs one reconciliation pass. Offline or an empty queue
// are no-ops. Items replay sequentially in queue order; each item's outcome
// is independent, and all successes are removed in one batch afterwards.
// The returned error covers only the final local queue write; remote
// failures are logged and retried on the next pass.
//
// A replayed create leaves the remote row under a store-assigned id, so a
// later update still referencing the provisional offline id matches no
// rows; the eq-filtered update reports success regardless.
func (s *Synchronizer) SyncWhenOnline(ctx context.Context, store remote.Store) error {
	if !s.probe.Online(ctx) {
		s.log.Debug("sync skipped: offline")
		return nil
	}
	items := s.queue.PeekAll(ctx)
	if len(items) == 0 {
		return nil
	}

	synced := make(map[string]struct{}, len(items))
	for _, item := range items {
		if err := s.replay(ctx, store, item); err != nil {
			s.log.Warn("replay failed",
				zap.String("item_id", item.ID),
				zap.String("type", string(item.Type)),
				zap.Error(err),
			)
			continue
		}
		synced[item.ID] = struct{}{}
	}

	if err := s.queue.RemoveByIDs(ctx, synced); err != nil {
		return err
	}
	s.log.Info("sync pass complete",
		zap.Int("synced", len(synced)),
		zap.Int("total", len(items)),
	)
	return nil
}

func (s *Synchronizer) replay(ctx context.Context, store remote.Store, item model.PendingSyncItem) error {
	var payload map[string]any
	if err := json.Unmarshal(item.Data, &payload); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	switch item.Type {
	case model.SyncCreateGoal:
		goals, err := store.Collection(remote.CollectionGoals)
		if err != nil {
			return err
		}
		delete(payload, "id") // provisional local id never reaches the remote
		_, err = goals.Insert(ctx, payload)
		return err

	case model.SyncUpdateGoal:
		goals, err := store.Collection(remote.CollectionGoals)
		if err != nil {
			return err
		}
		id, _ := payload["id"].(string)
		if id == "" {
			return fmt.Errorf("update_goal payload missing id")
		}
		delete(payload, "id")
		return goals.Update(ctx, payload, remote.Eq{Column: "id", Value: id})

	case model.SyncCreateRetrospect:
		rs, err := store.Collection(remote.CollectionRetrospects)
		if err != nil {
			return err
		}
		delete(payload, "id")
		_, err = rs.Insert(ctx, payload)
		return err

	default:
		return fmt.Errorf("unknown sync item type %q", item.Type)
	}
}
