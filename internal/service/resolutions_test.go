package service

import (
	"context"
	"errors"
	"testing"

	"github.com/daypact/daypact/internal/errs"
	"github.com/daypact/daypact/internal/remote"
)

func TestResolutionPost(t *testing.T) {
	rs := newFakeRemote()
	deps, _ := testDeps(rs, true)
	svc := NewResolutionService(deps)

	got, err := svc.Post(context.Background(), "drink more water")
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if got.ID != "srv-1" || got.Date != "2025-01-01" {
		t.Fatalf("resolution = %+v", got)
	}

	c := rs.calls[0]
	if c.op != "insert" || c.collection != remote.CollectionDailyResolutions {
		t.Fatalf("call = %+v", c)
	}
	if c.row["date"] != "2025-01-01" {
		t.Fatalf("date = %v, want today", c.row["date"])
	}
}

func TestResolutionPostOffline(t *testing.T) {
	deps, _ := testDeps(newFakeRemote(), false)
	svc := NewResolutionService(deps)

	_, err := svc.Post(context.Background(), "no luck")
	if !errors.Is(err, errs.ErrOffline) {
		t.Fatalf("err = %v, want ErrOffline", err)
	}
}

func TestResolutionListForDateIsShared(t *testing.T) {
	rs := newFakeRemote()
	rs.selectRows[remote.CollectionDailyResolutions] = []remote.Row{
		{"id": "d2", "user_id": "u2", "content": "newest", "date": "2025-01-01"},
		{"id": "d1", "user_id": "u1", "content": "older", "date": "2025-01-01"},
	}
	deps, _ := testDeps(rs, true)
	svc := NewResolutionService(deps)

	got, err := svc.ListForDate(context.Background(), "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d resolutions, want 2", len(got))
	}
	// The feed carries other users' posts too.
	if got[0].UserID != "u2" {
		t.Fatalf("first = %+v, want another user's post", got[0])
	}

	c := rs.calls[0]
	if c.order == nil || c.order.Column != "created_at" || !c.order.Desc {
		t.Fatalf("order = %+v, want created_at desc", c.order)
	}
	for _, f := range c.filters {
		if f.Column == "user_id" {
			t.Fatal("the shared feed must not filter by user")
		}
	}
}

func TestResolutionDeleteOwnOnly(t *testing.T) {
	rs := newFakeRemote()
	deps, _ := testDeps(rs, true)
	svc := NewResolutionService(deps)

	if err := svc.Delete(context.Background(), "d1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	c := rs.calls[0]
	if c.op != "delete" {
		t.Fatalf("call = %+v", c)
	}
	want := map[string]any{"id": "d1", "user_id": "u1"}
	for _, f := range c.filters {
		if want[f.Column] != f.Value {
			t.Fatalf("filter %+v unexpected", f)
		}
		delete(want, f.Column)
	}
	if len(want) != 0 {
		t.Fatalf("missing filters: %v", want)
	}
}

func TestResolutionSignedOut(t *testing.T) {
	deps, _ := testDeps(newFakeRemote(), true)
	deps.Sessions = &fakeSessions{err: errs.ErrSignedOut}
	svc := NewResolutionService(deps)

	if _, err := svc.Post(context.Background(), "x"); !errors.Is(err, errs.ErrSignedOut) {
		t.Fatalf("err = %v, want ErrSignedOut", err)
	}
}
