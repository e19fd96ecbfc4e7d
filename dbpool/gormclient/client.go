package gormclient

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/israelbalog04/acer-music-sub000/dbpool"
	"github.com/israelbalog04/acer-music-sub000/observe"
)

var (
	// ErrNotConnected is returned by data operations before Connect or
	// after Disconnect. Its message classifies as transient, so a pool
	// retries while a concurrent recovery reconnects.
	ErrNotConnected = errors.New("gormclient: no database connection")

	// ErrInTransaction is returned by Connect and Disconnect on the client
	// handed to a transaction callback.
	ErrInTransaction = errors.New("gormclient: not allowed inside a transaction")
)

// Client is a dbpool.Client backed by *gorm.DB. The handle is swapped
// atomically on Connect and Disconnect, so in-flight calls keep the
// handle they started with.
type Client struct {
	cfg    Config
	logger observe.Logger

	mu sync.RWMutex
	db *gorm.DB

	// inTx marks the client passed to Transaction callbacks.
	inTx bool
}

// New creates an unconnected client.
func New(cfg Config, logger observe.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = observe.NopLogger()
	}
	return &Client{
		cfg:    cfg.withDefaults(),
		logger: logger.With(observe.Field{Key: "component", Value: "gormclient"}),
	}, nil
}

// Connect opens a new connection pool and verifies it with a ping.
// An existing handle is replaced and closed.
func (c *Client) Connect(ctx context.Context) error {
	if c.inTx {
		return ErrInTransaction
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  c.cfg.DSN,
		PreferSimpleProtocol: c.cfg.SimpleProtocol,
	}), &gorm.Config{
		PrepareStmt:          c.cfg.PrepareStmt,
		Logger:               newGormLogger(c.logger, c.cfg.SlowThreshold),
		DisableAutomaticPing: true,
	})
	if err != nil {
		return fmt.Errorf("gormclient: open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("gormclient: open: %w", err)
	}
	if c.cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(c.cfg.MaxOpenConns)
	}
	if c.cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(c.cfg.MaxIdleConns)
	}
	if c.cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(c.cfg.ConnMaxLifetime)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return fmt.Errorf("gormclient: connect: %w", err)
	}

	c.mu.Lock()
	old := c.db
	c.db = db
	c.mu.Unlock()

	if old != nil {
		closeDB(old)
	}
	c.logger.Info(ctx, "connected",
		observe.Field{Key: "prepare_stmt", Value: c.cfg.PrepareStmt},
		observe.Field{Key: "simple_protocol", Value: c.cfg.SimpleProtocol},
	)
	return nil
}

// Disconnect closes the connection pool. It is a no-op when not connected.
func (c *Client) Disconnect(ctx context.Context) error {
	if c.inTx {
		return ErrInTransaction
	}

	c.mu.Lock()
	db := c.db
	c.db = nil
	c.mu.Unlock()

	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("gormclient: disconnect: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("gormclient: disconnect: %w", err)
	}
	c.logger.Info(ctx, "disconnected")
	return nil
}

// Connected reports whether a handle is open.
func (c *Client) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db != nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func (c *Client) handle(ctx context.Context) (*gorm.DB, error) {
	c.mu.RLock()
	db := c.db
	c.mu.RUnlock()
	if db == nil {
		return nil, ErrNotConnected
	}
	return db.WithContext(ctx), nil
}

// scope applies q to db.
func scope(db *gorm.DB, q dbpool.Query) *gorm.DB {
	if q.Model != "" {
		db = db.Table(q.Model)
	}
	if q.Where != nil {
		db = db.Where(q.Where, q.Args...)
	}
	if q.Order != "" {
		db = db.Order(q.Order)
	}
	if q.Limit > 0 {
		db = db.Limit(q.Limit)
	}
	if q.Offset > 0 {
		db = db.Offset(q.Offset)
	}
	return db
}

func (c *Client) FindOne(ctx context.Context, q dbpool.Query, dest any) error {
	db, err := c.handle(ctx)
	if err != nil {
		return err
	}
	return scope(db, q).Take(dest).Error
}

func (c *Client) FindMany(ctx context.Context, q dbpool.Query, dest any) error {
	db, err := c.handle(ctx)
	if err != nil {
		return err
	}
	return scope(db, q).Find(dest).Error
}

func (c *Client) Create(ctx context.Context, model string, value any) error {
	db, err := c.handle(ctx)
	if err != nil {
		return err
	}
	if model != "" {
		db = db.Table(model)
	}
	return db.Create(value).Error
}

func (c *Client) Update(ctx context.Context, q dbpool.Query, values any) (int64, error) {
	db, err := c.handle(ctx)
	if err != nil {
		return 0, err
	}
	res := scope(db, q).Updates(values)
	return res.RowsAffected, res.Error
}

func (c *Client) Delete(ctx context.Context, q dbpool.Query, value any) (int64, error) {
	db, err := c.handle(ctx)
	if err != nil {
		return 0, err
	}
	res := scope(db, q).Delete(value)
	return res.RowsAffected, res.Error
}

func (c *Client) Count(ctx context.Context, q dbpool.Query) (int64, error) {
	db, err := c.handle(ctx)
	if err != nil {
		return 0, err
	}
	var n int64
	err = scope(db, q).Count(&n).Error
	return n, err
}

func (c *Client) Raw(ctx context.Context, dest any, sql string, args ...any) error {
	db, err := c.handle(ctx)
	if err != nil {
		return err
	}
	return db.Raw(sql, args...).Scan(dest).Error
}

func (c *Client) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	db, err := c.handle(ctx)
	if err != nil {
		return 0, err
	}
	res := db.Exec(sql, args...)
	return res.RowsAffected, res.Error
}

// Transaction runs fn in a database transaction. A nested call on tx
// becomes a savepoint.
func (c *Client) Transaction(ctx context.Context, fn func(context.Context, dbpool.Client) error) error {
	db, err := c.handle(ctx)
	if err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &Client{cfg: c.cfg, logger: c.logger, db: tx, inTx: true})
	})
}

func (c *Client) Ping(ctx context.Context) error {
	db, err := c.handle(ctx)
	if err != nil {
		return err
	}
	if c.inTx {
		return db.Exec("SELECT 1").Error
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

var _ dbpool.Client = (*Client)(nil)
