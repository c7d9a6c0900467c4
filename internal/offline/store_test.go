package offline

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/daypact/daypact/internal/model"
)

func newStore(kv *fakeKV) (*Store, *Queue) {
	q := NewQueue(kv, nop())
	return NewStore(kv, q, testClock(), nop()), q
}

func TestStore_CreateGoal_DefaultsAndEnqueue(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	kv := newFakeKV()
	s, q := newStore(kv)

	goal, err := s.CreateGoal(ctx, GoalDraft{
		UserID:     "u1",
		Title:      "Read",
		TargetTime: "2025-01-01T09:00:00Z",
	})
	if err != nil {
		t.Fatalf("CreateGoal: %v", err)
	}
	if !strings.HasPrefix(goal.ID, "offline_") {
		t.Fatalf("id want offline_ prefix, got %s", goal.ID)
	}
	if goal.Status != model.StatusPending {
		t.Fatalf("status want pending, got %s", goal.Status)
	}
	if goal.CreatedAt == "" || goal.CreatedAt != goal.UpdatedAt {
		t.Fatalf("timestamps not defaulted: %+v", goal)
	}

	goals := s.Goals(ctx)
	if len(goals) != 1 || goals[0].ID != goal.ID {
		t.Fatalf("stored goals want [%s], got %v", goal.ID, goals)
	}

	items := q.PeekAll(ctx)
	if len(items) != 1 || items[0].Type != model.SyncCreateGoal {
		t.Fatalf("queue want one create_goal item, got %v", items)
	}
	var payload model.OfflineGoal
	if err := json.Unmarshal(items[0].Data, &payload); err != nil {
		t.Fatalf("payload decode: %v", err)
	}
	if payload.ID != goal.ID || payload.Title != "Read" {
		t.Fatalf("payload must snapshot the full entity, got %+v", payload)
	}
}

func TestStore_CreateGoal_IdempotentUpsertByID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	kv := newFakeKV()
	s, _ := newStore(kv)

	// Frozen clock: both creations construct the same offline id.
	first, err := s.CreateGoal(ctx, GoalDraft{UserID: "u1", Title: "Read"})
	if err != nil {
		t.Fatalf("CreateGoal: %v", err)
	}
	second, err := s.CreateGoal(ctx, GoalDraft{UserID: "u1", Title: "Read more"})
	if err != nil {
		t.Fatalf("CreateGoal: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("frozen clock must yield equal ids: %s vs %s", first.ID, second.ID)
	}

	goals := s.Goals(ctx)
	if len(goals) != 1 {
		t.Fatalf("upsert by id must not duplicate, got %d entities", len(goals))
	}
	if goals[0].Title != "Read more" {
		t.Fatalf("latter payload must win, got %q", goals[0].Title)
	}
}

func TestStore_EnqueueOnWriteInvariant(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	kv := newFakeKV()
	s, q := newStore(kv)

	g, err := s.CreateGoal(ctx, GoalDraft{UserID: "u1", Title: "a"})
	if err != nil {
		t.Fatalf("CreateGoal: %v", err)
	}
	if ok, err := s.CheckGoal(ctx, g.ID, model.StatusSuccess); err != nil || !ok {
		t.Fatalf("CheckGoal: ok=%v err=%v", ok, err)
	}
	if _, err := s.CreateRetrospect(ctx, RetrospectDraft{UserID: "u1", Content: "c"}); err != nil {
		t.Fatalf("CreateRetrospect: %v", err)
	}

	if got := q.Len(ctx); got != 3 {
		t.Fatalf("3 successful writes must enqueue exactly 3 items, got %d", got)
	}
}

func TestStore_CheckGoal_NotFoundShortCircuit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	kv := newFakeKV()
	s, q := newStore(kv)

	if _, err := s.CreateGoal(ctx, GoalDraft{UserID: "u1", Title: "a"}); err != nil {
		t.Fatalf("CreateGoal: %v", err)
	}
	before := q.Len(ctx)

	ok, err := s.CheckGoal(ctx, "offline_999", model.StatusSuccess)
	if err != nil {
		t.Fatalf("CheckGoal: %v", err)
	}
	if ok {
		t.Fatalf("unknown id must report false, not an error")
	}
	if q.Len(ctx) != before {
		t.Fatalf("unknown id must not grow the queue")
	}
}

func TestStore_CheckGoal_WritesPatchPayload(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	kv := newFakeKV()
	s, q := newStore(kv)

	g, err := s.CreateGoal(ctx, GoalDraft{UserID: "u1", Title: "a"})
	if err != nil {
		t.Fatalf("CreateGoal: %v", err)
	}
	if _, err := s.CheckGoal(ctx, g.ID, model.StatusFailure); err != nil {
		t.Fatalf("CheckGoal: %v", err)
	}

	items := q.PeekAll(ctx)
	last := items[len(items)-1]
	if last.Type != model.SyncUpdateGoal {
		t.Fatalf("want update_goal item, got %s", last.Type)
	}
	var patch map[string]any
	if err := json.Unmarshal(last.Data, &patch); err != nil {
		t.Fatalf("patch decode: %v", err)
	}
	if len(patch) != 3 || patch["id"] != g.ID || patch["status"] != string(model.StatusFailure) {
		t.Fatalf("patch want minimal {id,status,updated_at}, got %v", patch)
	}

	if s.Goals(ctx)[0].Status != model.StatusFailure {
		t.Fatalf("stored goal status not mutated")
	}
}

func TestStore_CreateRetrospect_DateDefaultsToToday(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	kv := newFakeKV()
	s, _ := newStore(kv)

	r, err := s.CreateRetrospect(ctx, RetrospectDraft{UserID: "u1", Content: "note"})
	if err != nil {
		t.Fatalf("CreateRetrospect: %v", err)
	}
	if !strings.HasPrefix(r.ID, "offline_retrospect_") {
		t.Fatalf("id want offline_retrospect_ prefix, got %s", r.ID)
	}
	if r.Date != testClock().Today() {
		t.Fatalf("date want %s, got %s", testClock().Today(), r.Date)
	}
}

func TestStore_ReadsSwallowCorruptData(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	kv := newFakeKV()
	kv.data[goalsKey] = []byte(`{broken`)
	kv.data[retrospectsKey] = []byte(`broken too`)
	s, _ := newStore(kv)

	if got := s.Goals(ctx); len(got) != 0 {
		t.Fatalf("corrupt goals must read as empty, got %v", got)
	}
	if got := s.Retrospects(ctx); len(got) != 0 {
		t.Fatalf("corrupt retrospects must read as empty, got %v", got)
	}
}

func TestStore_WriteErrorsPropagate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	kv := newFakeKV()
	kv.setErr = errors.New("disk full")
	s, _ := newStore(kv)

	if _, err := s.CreateGoal(ctx, GoalDraft{UserID: "u1", Title: "a"}); err == nil {
		t.Fatalf("local write failure must surface to the caller")
	}
}
