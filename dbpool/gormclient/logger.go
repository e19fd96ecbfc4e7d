package gormclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/israelbalog04/acer-music-sub000/observe"
)

// gormLogger routes GORM's log output into an observe.Logger.
type gormLogger struct {
	logger observe.Logger
	level  gormlogger.LogLevel
	slow   time.Duration
}

func newGormLogger(l observe.Logger, slow time.Duration) *gormLogger {
	return &gormLogger{logger: l, level: gormlogger.Warn, slow: slow}
}

func (l *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	c := *l
	c.level = level
	return &c
}

func (l *gormLogger) Info(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Info {
		l.logger.Info(ctx, fmt.Sprintf(msg, args...))
	}
}

func (l *gormLogger) Warn(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Warn {
		l.logger.Warn(ctx, fmt.Sprintf(msg, args...))
	}
}

func (l *gormLogger) Error(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Error {
		l.logger.Error(ctx, fmt.Sprintf(msg, args...))
	}
}

// Trace logs failed and slow statements. Record-not-found is left to the
// caller.
func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && l.level >= gormlogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		l.logger.Debug(ctx, "statement failed",
			observe.Field{Key: "sql", Value: sql},
			observe.Field{Key: "rows", Value: rows},
			observe.Field{Key: "elapsed_ms", Value: elapsed.Milliseconds()},
			observe.Field{Key: "error", Value: err},
			observe.Field{Key: "class", Value: Classify(err).String()},
		)
	case l.slow > 0 && elapsed > l.slow && l.level >= gormlogger.Warn:
		sql, rows := fc()
		l.logger.Warn(ctx, "slow statement",
			observe.Field{Key: "sql", Value: sql},
			observe.Field{Key: "rows", Value: rows},
			observe.Field{Key: "elapsed_ms", Value: elapsed.Milliseconds()},
			observe.Field{Key: "threshold_ms", Value: l.slow.Milliseconds()},
		)
	case l.level >= gormlogger.Info:
		sql, rows := fc()
		l.logger.Debug(ctx, "statement",
			observe.Field{Key: "sql", Value: sql},
			observe.Field{Key: "rows", Value: rows},
			observe.Field{Key: "elapsed_ms", Value: elapsed.Milliseconds()},
		)
	}
}

// ParamsFilter keeps bound values out of logged SQL.
func (l *gormLogger) ParamsFilter(ctx context.Context, sql string, params ...any) (string, []any) {
	return sql, nil
}

var _ gormlogger.Interface = (*gormLogger)(nil)
