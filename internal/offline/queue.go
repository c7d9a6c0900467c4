// Package offline implements the local-first write path: entity snapshots
// usable with zero connectivity, the durable sync queue, and replay of that
// queue against the remote store.
package offline

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/daypact/daypact/internal/errs"
	"github.com/daypact/daypact/internal/model"
	"github.com/daypact/daypact/internal/storage"
)

const queueKey = "sync_queue"

// Queue is a durable FIFO of mutations awaiting remote replay. Every
// operation reads the whole queue and writes it back in full; there is no
// partial persistence.
type Queue struct {
	kv  storage.Store
	log *zap.Logger
}

// NewQueue constructs a queue over the given storage adapter.
func NewQueue(kv storage.Store, log *zap.Logger) *Queue {
	return &Queue{kv: kv, log: log}
}

// Enqueue appends item, preserving insertion order.
func (q *Queue) Enqueue(ctx context.Context, item model.PendingSyncItem) error {
	items := q.PeekAll(ctx)
	items = append(items, item)
	return q.write(ctx, items)
}

// PeekAll returns the queue in insertion order. An absent or undecodable
// queue reads as empty; decode failures are logged, never surfaced.
func (q *Queue) PeekAll(ctx context.Context) []model.PendingSyncItem {
	raw, err := q.kv.Get(ctx, queueKey)
	if errors.Is(err, errs.ErrNotFound) {
		return nil
	}
	if err != nil {
		q.log.Warn("read sync queue", zap.Error(err))
		return nil
	}
	var items []model.PendingSyncItem
	if err := json.Unmarshal(raw, &items); err != nil {
		q.log.Warn("decode sync queue", zap.Error(err))
		return nil
	}
	return items
}

// Len reports the number of pending items, for the status indicator.
func (q *Queue) Len(ctx context.Context) int { return len(q.PeekAll(ctx)) }

// RemoveByIDs drops items whose id is in ids and writes the survivors back
// in one pass. It is the only removal path; items are never removed
// individually mid-drain.
func (q *Queue) RemoveByIDs(ctx context.Context, ids map[string]struct{}) error {
	if len(ids) == 0 {
		return nil
	}
	items := q.PeekAll(ctx)
	kept := make([]model.PendingSyncItem, 0, len(items))
	for _, it := range items {
		if _, drop := ids[it.ID]; !drop {
			kept = append(kept, it)
		}
	}
	return q.write(ctx, kept)
}

func (q *Queue) write(ctx context.Context, items []model.PendingSyncItem) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return q.kv.Set(ctx, queueKey, raw)
}
