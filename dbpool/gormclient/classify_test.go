package gormclient

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/israelbalog04/acer-music-sub000/resilience"
)

func TestClassify(t *testing.T) {
	pg := func(code, msg string) error {
		return &pgconn.PgError{Severity: "ERROR", Code: code, Message: msg}
	}

	tests := []struct {
		name string
		err  error
		want resilience.ErrorClass
	}{
		{name: "nil", err: nil, want: resilience.ClassFatal},
		{name: "record not found", err: gorm.ErrRecordNotFound, want: resilience.ClassFatal},
		{name: "duplicate prepared statement", err: pg("42P05", `prepared statement "stmtcache_1" already exists`), want: resilience.ClassStaleSession},
		{name: "invalid statement name", err: pg("26000", `prepared statement "stmtcache_1" does not exist`), want: resilience.ClassStaleSession},
		{name: "wrapped stale", err: fmt.Errorf("find tracks: %w", pg("42P05", "prepared statement already exists")), want: resilience.ClassStaleSession},
		{name: "connection failure", err: pg("08006", "connection failure"), want: resilience.ClassTransient},
		{name: "connection does not exist", err: pg("08003", "connection does not exist"), want: resilience.ClassTransient},
		{name: "admin shutdown", err: pg("57P01", "terminating connection due to administrator command"), want: resilience.ClassTransient},
		{name: "cannot connect now", err: pg("57P03", "the database system is starting up"), want: resilience.ClassTransient},
		{name: "too many connections", err: pg("53300", "sorry, too many clients already"), want: resilience.ClassTransient},
		{name: "statement timeout", err: pg("57014", "canceling statement due to statement timeout"), want: resilience.ClassTransient},
		{name: "idle in transaction timeout", err: pg("25P03", "terminating connection due to idle-in-transaction timeout"), want: resilience.ClassTransient},
		{name: "pooler max connections", err: pg("XX000", "(EMAXCONN) max client connections reached"), want: resilience.ClassTransient},
		{name: "unknown code with timeout wording", err: pg("XX000", "lock timeout while waiting"), want: resilience.ClassTransient},
		{name: "unknown code already exists", err: pg("42P07", `relation "tracks" already exists`), want: resilience.ClassStaleSession},
		{name: "unknown code plain message", err: pg("22P02", "invalid input syntax for type integer"), want: resilience.ClassFatal},
		{name: "unique violation", err: pg("23505", "duplicate key value violates unique constraint"), want: resilience.ClassFatal},
		{name: "unique violation mentioning already exists", err: pg("23505", `Key (email)=(a@b.c) already exists.`), want: resilience.ClassFatal},
		{name: "foreign key violation", err: pg("23503", "insert or update violates foreign key constraint"), want: resilience.ClassFatal},
		{name: "not connected", err: ErrNotConnected, want: resilience.ClassTransient},
		{name: "deadline", err: context.DeadlineExceeded, want: resilience.ClassTransient},
		{name: "plain stale message", err: errors.New(`prepared statement "s1" already exists`), want: resilience.ClassStaleSession},
		{name: "unknown", err: errors.New("invalid input syntax"), want: resilience.ClassFatal},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.err); got != tc.want {
				t.Errorf("Classify(%v) = %s, want %s", tc.err, got, tc.want)
			}
		})
	}
}
