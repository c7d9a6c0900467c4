package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/daypact/daypact/internal/clock"
	"github.com/daypact/daypact/internal/errs"
	"github.com/daypact/daypact/internal/offline"
	"github.com/daypact/daypact/internal/remote"
	"github.com/daypact/daypact/internal/storage"
)

type memKV struct{ data map[string][]byte }

var _ storage.Store = (*memKV)(nil)

func newMemKV() *memKV { return &memKV{data: map[string][]byte{}} }

func (m *memKV) Get(_ context.Context, key string) ([]byte, error) {
	b, ok := m.data[key]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return b, nil
}
func (m *memKV) Set(_ context.Context, key string, value []byte) error {
	m.data[key] = value
	return nil
}
func (m *memKV) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

type fakeSessions struct {
	uid string
	err error
}

func (f *fakeSessions) CurrentUserID(context.Context) (string, error) { return f.uid, f.err }

type fakeProbe struct{ online bool }

func (p *fakeProbe) Online(context.Context) bool { return p.online }

// remoteCall records one invocation against the fake remote store.
type remoteCall struct {
	collection string
	op         string
	row        remote.Row
	filters    []remote.Eq
	order      *remote.Order
}

type fakeRemote struct {
	calls      []remoteCall
	selectRows map[string][]remote.Row // collection -> canned result
	err        error
	nextID     string
}

var _ remote.Store = (*fakeRemote)(nil)

func newFakeRemote() *fakeRemote {
	return &fakeRemote{selectRows: map[string][]remote.Row{}, nextID: "srv-1"}
}

func (r *fakeRemote) Collection(name string) (remote.Collection, error) {
	return &fakeColl{store: r, name: name}, nil
}

type fakeColl struct {
	store *fakeRemote
	name  string
}

func (c *fakeColl) Insert(_ context.Context, row remote.Row) (remote.Row, error) {
	c.store.calls = append(c.store.calls, remoteCall{collection: c.name, op: "insert", row: row})
	if c.store.err != nil {
		return nil, c.store.err
	}
	out := remote.Row{}
	for k, v := range row {
		out[k] = v
	}
	out["id"] = c.store.nextID
	return out, nil
}

func (c *fakeColl) Update(_ context.Context, patch remote.Row, filters ...remote.Eq) error {
	c.store.calls = append(c.store.calls, remoteCall{collection: c.name, op: "update", row: patch, filters: filters})
	return c.store.err
}

func (c *fakeColl) Delete(_ context.Context, filters ...remote.Eq) error {
	c.store.calls = append(c.store.calls, remoteCall{collection: c.name, op: "delete", filters: filters})
	return c.store.err
}

func (c *fakeColl) Select(_ context.Context, columns []string, order *remote.Order, filters ...remote.Eq) ([]remote.Row, error) {
	c.store.calls = append(c.store.calls, remoteCall{collection: c.name, op: "select", filters: filters, order: order})
	if c.store.err != nil {
		return nil, c.store.err
	}
	return c.store.selectRows[c.name], nil
}

// fakeSched records scheduled and cancelled reminders.
type fakeSched struct {
	scheduled []time.Time
	cancelled []string
	next      int
	err       error
}

func (f *fakeSched) Schedule(_ context.Context, at time.Time, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.next++
	f.scheduled = append(f.scheduled, at)
	return string(rune('a' + f.next - 1)), nil
}

func (f *fakeSched) Cancel(_ context.Context, handle string) error {
	f.cancelled = append(f.cancelled, handle)
	return f.err
}

func testDeps(rs remote.Store, online bool) (Deps, *memKV) {
	kv := newMemKV()
	log := zap.NewNop()
	q := offline.NewQueue(kv, log)
	clk := clock.Frozen{T: time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)}
	return Deps{
		Remote:   rs,
		Offline:  offline.NewStore(kv, q, clk, log),
		Probe:    &fakeProbe{online: online},
		Sessions: &fakeSessions{uid: "u1"},
		Clock:    clk,
		Log:      log,
	}, kv
}
