package offline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/daypact/daypact/internal/clock"
	"github.com/daypact/daypact/internal/errs"
	"github.com/daypact/daypact/internal/model"
	"github.com/daypact/daypact/internal/storage"
)

const (
	goalsKey       = "offline_goals"
	retrospectsKey = "offline_retrospects"
)

// timeLayout is the wire format for created_at/updated_at/target_time.
const timeLayout = time.RFC3339

// GoalDraft carries the caller-supplied fields of a new offline goal.
type GoalDraft struct {
	UserID            string
	Title             string
	TargetTime        string
	IsEssential       bool
	EssentialCategory string
}

// RetrospectDraft carries the caller-supplied fields of a new offline
// retrospect. Date defaults to today in the configured time reference.
type RetrospectDraft struct {
	UserID  string
	Date    string
	Content string
}

// goalPatch is the minimal update payload replayed against the remote row.
type goalPatch struct {
	ID        string           `json:"id"`
	Status    model.GoalStatus `json:"status"`
	UpdatedAt string           `json:"updated_at"`
}

// Store keeps local copies of entities written without connectivity and
// records exactly one queue item per successful write. Writes persist the
// entire collection back to storage; local I/O errors propagate to the
// caller, read failures collapse to empty collections.
type Store struct {
	kv    storage.Store
	queue *Queue
	clock clock.Clock
	log   *zap.Logger
}

// NewStore constructs the offline entity store with injected dependencies.
func NewStore(kv storage.Store, queue *Queue, clk clock.Clock, log *zap.Logger) *Store {
	return &Store{kv: kv, queue: queue, clock: clk, log: log}
}

// CreateGoal stores a goal locally and enqueues its remote creation. The id
// is provisional ("offline_<millis>"); storing twice under the same id
// replaces the entity rather than duplicating it.
func (s *Store) CreateGoal(ctx context.Context, draft GoalDraft) (model.OfflineGoal, error) {
	now := s.clock.Now()
	stamp := now.UTC().Format(timeLayout)
	goal := model.OfflineGoal{
		ID:                fmt.Sprintf("offline_%d", now.UnixMilli()),
		UserID:            draft.UserID,
		Title:             draft.Title,
		TargetTime:        draft.TargetTime,
		Status:            model.StatusPending,
		CreatedAt:         stamp,
		UpdatedAt:         stamp,
		IsEssential:       draft.IsEssential,
		EssentialCategory: draft.EssentialCategory,
	}

	goals := upsertGoal(s.Goals(ctx), goal)
	if err := s.writeJSON(ctx, goalsKey, goals); err != nil {
		return model.OfflineGoal{}, err
	}
	if err := s.enqueue(ctx, model.SyncCreateGoal, goal); err != nil {
		return model.OfflineGoal{}, err
	}
	return goal, nil
}

// CheckGoal transitions a stored goal's status. Unknown ids report false
// with no write and no queue growth.
func (s *Store) CheckGoal(ctx context.Context, goalID string, status model.GoalStatus) (bool, error) {
	goals := s.Goals(ctx)
	idx := -1
	for i := range goals {
		if goals[i].ID == goalID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, nil
	}

	goals[idx].Status = status
	goals[idx].UpdatedAt = s.clock.Now().UTC().Format(timeLayout)
	if err := s.writeJSON(ctx, goalsKey, goals); err != nil {
		return false, err
	}
	patch := goalPatch{ID: goalID, Status: status, UpdatedAt: goals[idx].UpdatedAt}
	if err := s.enqueue(ctx, model.SyncUpdateGoal, patch); err != nil {
		return false, err
	}
	return true, nil
}

// CreateRetrospect stores a retrospect locally and enqueues its remote
// creation. Uniqueness per (user, date) is a caller concern.
func (s *Store) CreateRetrospect(ctx context.Context, draft RetrospectDraft) (model.OfflineRetrospect, error) {
	now := s.clock.Now()
	stamp := now.UTC().Format(timeLayout)
	date := draft.Date
	if date == "" {
		date = s.clock.Today()
	}
	r := model.OfflineRetrospect{
		ID:        fmt.Sprintf("offline_retrospect_%d", now.UnixMilli()),
		UserID:    draft.UserID,
		Date:      date,
		Content:   draft.Content,
		CreatedAt: stamp,
		UpdatedAt: stamp,
	}

	rs := upsertRetrospect(s.Retrospects(ctx), r)
	if err := s.writeJSON(ctx, retrospectsKey, rs); err != nil {
		return model.OfflineRetrospect{}, err
	}
	if err := s.enqueue(ctx, model.SyncCreateRetrospect, r); err != nil {
		return model.OfflineRetrospect{}, err
	}
	return r, nil
}

// Goals returns the local goal collection. Absent or undecodable data reads
// as empty so a render path never crashes on storage problems.
func (s *Store) Goals(ctx context.Context) []model.OfflineGoal {
	var goals []model.OfflineGoal
	s.readJSON(ctx, goalsKey, &goals)
	return goals
}

// Retrospects returns the local retrospect collection, empty on any read
// failure.
func (s *Store) Retrospects(ctx context.Context) []model.OfflineRetrospect {
	var rs []model.OfflineRetrospect
	s.readJSON(ctx, retrospectsKey, &rs)
	return rs
}

func (s *Store) enqueue(ctx context.Context, typ model.SyncItemType, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	id, err := uuid.NewV4()
	if err != nil {
		return err
	}
	return s.queue.Enqueue(ctx, model.PendingSyncItem{
		ID:        id.String(),
		Type:      typ,
		Data:      raw,
		Timestamp: s.clock.Now().UnixMilli(),
	})
}

func (s *Store) readJSON(ctx context.Context, key string, out any) {
	raw, err := s.kv.Get(ctx, key)
	if errors.Is(err, errs.ErrNotFound) {
		return
	}
	if err != nil {
		s.log.Warn("read offline collection", zap.String("key", key), zap.Error(err))
		return
	}
	if err := json.Unmarshal(raw, out); err != nil {
		s.log.Warn("decode offline collection", zap.String("key", key), zap.Error(err))
	}
}

func (s *Store) writeJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, key, raw)
}

func upsertGoal(goals []model.OfflineGoal, goal model.OfflineGoal) []model.OfflineGoal {
	for i := range goals {
		if goals[i].ID == goal.ID {
			goals[i] = goal
			return goals
		}
	}
	return append(goals, goal)
}

func upsertRetrospect(rs []model.OfflineRetrospect, r model.OfflineRetrospect) []model.OfflineRetrospect {
	for i := range rs {
		if rs[i].ID == r.ID {
			rs[i] = r
			return rs
		}
	}
	return append(rs, r)
}
