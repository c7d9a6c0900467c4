package offline

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/daypact/daypact/internal/clock"
	"github.com/daypact/daypact/internal/errs"
	"github.com/daypact/daypact/internal/remote"
	"github.com/daypact/daypact/internal/storage"
)

// fakeKV is an in-memory storage.Store with switchable failure modes.
type fakeKV struct {
	mu      sync.Mutex
	data    map[string][]byte
	getErr  error
	setErr  error
	setCnt  int
	lastKey string
}

var _ storage.Store = (*fakeKV)(nil)

func newFakeKV() *fakeKV { return &fakeKV{data: map[string][]byte{}} }

func (f *fakeKV) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	b, ok := f.data[key]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return append([]byte(nil), b...), nil
}

func (f *fakeKV) Set(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.setCnt++
	f.lastKey = key
	f.data[key] = append([]byte(nil), value...)
	return nil
}

func (f *fakeKV) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	return nil
}

// fakeProbe reports a settable connectivity state.
type fakeProbe struct{ online bool }

func (p *fakeProbe) Online(context.Context) bool { return p.online }

// call records one remote invocation for order assertions.
type call struct {
	collection string
	op         string // "insert" | "update"
	payload    remote.Row
	eq         remote.Eq
}

// fakeRemote implements remote.Store, recording calls and failing on demand.
type fakeRemote struct {
	calls     []call
	failOn    map[int]error // 1-based call index -> error
	collErr   error
	nextIndex int
}

var _ remote.Store = (*fakeRemote)(nil)

func newFakeRemote() *fakeRemote { return &fakeRemote{failOn: map[int]error{}} }

func (r *fakeRemote) Collection(name string) (remote.Collection, error) {
	if r.collErr != nil {
		return nil, r.collErr
	}
	return &fakeCollection{store: r, name: name}, nil
}

func (r *fakeRemote) record(c call) error {
	r.nextIndex++
	r.calls = append(r.calls, c)
	if err, ok := r.failOn[r.nextIndex]; ok {
		return err
	}
	return nil
}

type fakeCollection struct {
	store *fakeRemote
	name  string
}

func (c *fakeCollection) Insert(_ context.Context, row remote.Row) (remote.Row, error) {
	if err := c.store.record(call{collection: c.name, op: "insert", payload: row}); err != nil {
		return nil, err
	}
	return row, nil
}

func (c *fakeCollection) Update(_ context.Context, patch remote.Row, filters ...remote.Eq) error {
	rec := call{collection: c.name, op: "update", payload: patch}
	if len(filters) > 0 {
		rec.eq = filters[0]
	}
	return c.store.record(rec)
}

func (c *fakeCollection) Delete(context.Context, ...remote.Eq) error {
	return errors.New("not used in sync")
}

func (c *fakeCollection) Select(context.Context, []string, *remote.Order, ...remote.Eq) ([]remote.Row, error) {
	return nil, errors.New("not used in sync")
}

func testClock() clock.Frozen {
	return clock.Frozen{T: time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)}
}

func nop() *zap.Logger { return zap.NewNop() }
