package dbpool

import "context"

// Query selects rows for the read and write helpers.
// The zero value matches every row of the destination's model.
type Query struct {
	// Model names the table. Empty means infer it from the destination.
	Model string

	// Where is a condition understood by the client, such as a SQL
	// fragment with placeholders, a map or a struct.
	Where any
	Args  []any

	Order  string
	Limit  int
	Offset int
}

// Client is the database capability the pool protects.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use.
//   - Context: every method must honor cancellation and deadlines.
//   - Errors: errors are returned as produced; the pool classifies them.
type Client interface {
	FindOne(ctx context.Context, q Query, dest any) error
	FindMany(ctx context.Context, q Query, dest any) error
	Create(ctx context.Context, model string, value any) error
	Update(ctx context.Context, q Query, values any) (int64, error)
	Delete(ctx context.Context, q Query, value any) (int64, error)
	Count(ctx context.Context, q Query) (int64, error)

	Raw(ctx context.Context, dest any, sql string, args ...any) error
	Exec(ctx context.Context, sql string, args ...any) (int64, error)

	// Transaction runs fn inside one transaction. tx is only valid during fn.
	Transaction(ctx context.Context, fn func(ctx context.Context, tx Client) error) error

	Ping(ctx context.Context) error
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
}

// Operation names used for spans, metrics and the stats ledger.
const (
	OpFindOne     = "find_one"
	OpFindMany    = "find_many"
	OpCreate      = "create"
	OpUpdate      = "update"
	OpDelete      = "delete"
	OpCount       = "count"
	OpRaw         = "raw"
	OpExec        = "exec"
	OpTransaction = "transaction"
	OpPing        = "ping"
)
