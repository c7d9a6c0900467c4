// Package notify defines the local-notification collaborator contract and
// the per-goal handle bookkeeping kept in local storage.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/daypact/daypact/internal/errs"
	"github.com/daypact/daypact/internal/storage"
)

// Scheduler schedules a notification at a fixed time and cancels by handle.
// The platform implementation lives outside this module.
type Scheduler interface {
	// Schedule arranges a notification at the given time and returns an
	// opaque cancellation handle.
	Schedule(ctx context.Context, at time.Time, message string) (string, error)
	// Cancel revokes a previously scheduled notification.
	Cancel(ctx context.Context, handle string) error
}

// Nop is a Scheduler that does nothing, for headless composition roots.
type Nop struct{}

// Schedule returns an empty handle.
func (Nop) Schedule(context.Context, time.Time, string) (string, error) { return "", nil }

// Cancel does nothing.
func (Nop) Cancel(context.Context, string) error { return nil }

// Handles tracks scheduled-notification handles per goal under the
// goal_notifications_<goalID> storage key. The key is owned by the caller
// side of the offline core, never by the synchronizer.
type Handles struct {
	kv  storage.Store
	log *zap.Logger
}

// NewHandles constructs the handle book.
func NewHandles(kv storage.Store, log *zap.Logger) *Handles {
	return &Handles{kv: kv, log: log}
}

func handleKey(goalID string) string { return "goal_notifications_" + goalID }

// Add appends a handle under the goal's key.
func (h *Handles) Add(ctx context.Context, goalID, handle string) error {
	if handle == "" {
		return nil
	}
	hs := append(h.List(ctx, goalID), handle)
	raw, err := json.Marshal(hs)
	if err != nil {
		return err
	}
	return h.kv.Set(ctx, handleKey(goalID), raw)
}

// List returns the stored handles; absent or undecodable data reads as none.
func (h *Handles) List(ctx context.Context, goalID string) []string {
	raw, err := h.kv.Get(ctx, handleKey(goalID))
	if errors.Is(err, errs.ErrNotFound) {
		return nil
	}
	if err != nil {
		h.log.Warn("read notification handles", zap.String("goal_id", goalID), zap.Error(err))
		return nil
	}
	var hs []string
	if err := json.Unmarshal(raw, &hs); err != nil {
		h.log.Warn("decode notification handles", zap.String("goal_id", goalID), zap.Error(err))
		return nil
	}
	return hs
}

// Clear drops every handle recorded for the goal.
func (h *Handles) Clear(ctx context.Context, goalID string) error {
	return h.kv.Delete(ctx, handleKey(goalID))
}
