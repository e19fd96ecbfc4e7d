package dbpool

import (
	"context"

	"github.com/israelbalog04/acer-music-sub000/observe"
)

type none = struct{}

func meta(op, model string) observe.OpMeta {
	return observe.OpMeta{Operation: op, Model: model}
}

// FindOne loads the first row matching q into dest.
func (p *Pool) FindOne(ctx context.Context, q Query, dest any) error {
	_, err := run(ctx, p, meta(OpFindOne, q.Model), func(ctx context.Context, c Client) (none, error) {
		return none{}, c.FindOne(ctx, q, dest)
	})
	return err
}

// FindMany loads every row matching q into dest.
func (p *Pool) FindMany(ctx context.Context, q Query, dest any) error {
	_, err := run(ctx, p, meta(OpFindMany, q.Model), func(ctx context.Context, c Client) (none, error) {
		return none{}, c.FindMany(ctx, q, dest)
	})
	return err
}

// Create inserts value.
func (p *Pool) Create(ctx context.Context, model string, value any) error {
	_, err := run(ctx, p, meta(OpCreate, model), func(ctx context.Context, c Client) (none, error) {
		return none{}, c.Create(ctx, model, value)
	})
	return err
}

// Update applies values to the rows matching q.
func (p *Pool) Update(ctx context.Context, q Query, values any) (int64, error) {
	return run(ctx, p, meta(OpUpdate, q.Model), func(ctx context.Context, c Client) (int64, error) {
		return c.Update(ctx, q, values)
	})
}

// Delete removes the rows matching q.
func (p *Pool) Delete(ctx context.Context, q Query, value any) (int64, error) {
	return run(ctx, p, meta(OpDelete, q.Model), func(ctx context.Context, c Client) (int64, error) {
		return c.Delete(ctx, q, value)
	})
}

// Count returns the number of rows matching q.
func (p *Pool) Count(ctx context.Context, q Query) (int64, error) {
	return run(ctx, p, meta(OpCount, q.Model), func(ctx context.Context, c Client) (int64, error) {
		return c.Count(ctx, q)
	})
}

// Raw runs a query and scans its rows into dest.
func (p *Pool) Raw(ctx context.Context, dest any, sql string, args ...any) error {
	_, err := run(ctx, p, meta(OpRaw, ""), func(ctx context.Context, c Client) (none, error) {
		return none{}, c.Raw(ctx, dest, sql, args...)
	})
	return err
}

// Exec runs a statement and returns the affected row count.
func (p *Pool) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	return run(ctx, p, meta(OpExec, ""), func(ctx context.Context, c Client) (int64, error) {
		return c.Exec(ctx, sql, args...)
	})
}

// Transaction runs fn as one gated operation. A retried transaction runs
// fn again from the start, so fn must not have effects outside tx.
func (p *Pool) Transaction(ctx context.Context, fn func(ctx context.Context, tx Client) error) error {
	_, err := run(ctx, p, meta(OpTransaction, ""), func(ctx context.Context, c Client) (none, error) {
		return none{}, c.Transaction(ctx, fn)
	})
	return err
}

// Ping checks connectivity through the gate.
func (p *Pool) Ping(ctx context.Context) error {
	_, err := run(ctx, p, meta(OpPing, ""), func(ctx context.Context, c Client) (none, error) {
		return none{}, c.Ping(ctx)
	})
	return err
}

// Connect opens the client. It is not gated or retried.
func (p *Pool) Connect(ctx context.Context) error {
	return p.client.Connect(ctx)
}

// Disconnect closes the client. It is not gated or retried.
func (p *Pool) Disconnect(ctx context.Context) error {
	return p.client.Disconnect(ctx)
}
