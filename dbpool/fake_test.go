package dbpool

import (
	"context"
	"sync"
	"sync/atomic"
)

// fakeClient records calls and fails according to script.
type fakeClient struct {
	mu     sync.Mutex
	script []error // errors returned by successive data calls; nil entries succeed
	calls  []string

	connects    atomic.Int32
	disconnects atomic.Int32
	connectErr  error

	// block, when set, holds each data call until it is closed.
	block chan struct{}
	// inflight tracks concurrent data calls.
	inflight    atomic.Int32
	maxInflight atomic.Int32
}

func (f *fakeClient) next(op string) error {
	n := f.inflight.Add(1)
	defer f.inflight.Add(-1)
	for {
		m := f.maxInflight.Load()
		if n <= m || f.maxInflight.CompareAndSwap(m, n) {
			break
		}
	}

	if f.block != nil {
		<-f.block
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, op)
	if len(f.script) == 0 {
		return nil
	}
	err := f.script[0]
	f.script = f.script[1:]
	return err
}

func (f *fakeClient) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeClient) FindOne(ctx context.Context, q Query, dest any) error {
	if err := f.next(OpFindOne); err != nil {
		return err
	}
	if p, ok := dest.(*string); ok {
		*p = "row:" + q.Model
	}
	return nil
}

func (f *fakeClient) FindMany(ctx context.Context, q Query, dest any) error {
	if err := f.next(OpFindMany); err != nil {
		return err
	}
	if p, ok := dest.(*[]string); ok {
		*p = []string{"a", "b"}
	}
	return nil
}

func (f *fakeClient) Create(ctx context.Context, model string, value any) error {
	return f.next(OpCreate)
}

func (f *fakeClient) Update(ctx context.Context, q Query, values any) (int64, error) {
	if err := f.next(OpUpdate); err != nil {
		return 0, err
	}
	return 2, nil
}

func (f *fakeClient) Delete(ctx context.Context, q Query, value any) (int64, error) {
	if err := f.next(OpDelete); err != nil {
		return 0, err
	}
	return 1, nil
}

func (f *fakeClient) Count(ctx context.Context, q Query) (int64, error) {
	if err := f.next(OpCount); err != nil {
		return 0, err
	}
	return 42, nil
}

func (f *fakeClient) Raw(ctx context.Context, dest any, sql string, args ...any) error {
	return f.next(OpRaw)
}

func (f *fakeClient) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	if err := f.next(OpExec); err != nil {
		return 0, err
	}
	return 3, nil
}

func (f *fakeClient) Transaction(ctx context.Context, fn func(context.Context, Client) error) error {
	if err := f.next(OpTransaction); err != nil {
		return err
	}
	return fn(ctx, f)
}

func (f *fakeClient) Ping(ctx context.Context) error {
	return f.next(OpPing)
}

func (f *fakeClient) Connect(ctx context.Context) error {
	f.connects.Add(1)
	return f.connectErr
}

func (f *fakeClient) Disconnect(ctx context.Context) error {
	f.disconnects.Add(1)
	return nil
}

var _ Client = (*fakeClient)(nil)
