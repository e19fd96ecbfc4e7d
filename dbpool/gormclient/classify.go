package gormclient

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/israelbalog04/acer-music-sub000/resilience"
)

// SQLSTATE codes treated specially.
const (
	codeDuplicatePreparedStatement = "42P05"
	codeInvalidStatementName       = "26000"
	codeTooManyConnections         = "53300"
	codeAdminShutdown              = "57P01"
	codeCrashShutdown              = "57P02"
	codeCannotConnectNow           = "57P03"
	codeQueryCanceled              = "57014"
	codeIdleInTransactionTimeout   = "25P03"
	classConnectionException       = "08"
	classIntegrityViolation        = "23"
)

// Classify maps driver errors to resilience classes. Known SQLSTATEs decide
// first; any other server or driver error falls back to resilience.Classify.
func Classify(err error) resilience.ErrorClass {
	if err == nil {
		return resilience.ClassFatal
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return resilience.ClassFatal
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if class, ok := classifyCode(pgErr.Code); ok {
			return class
		}
		return resilience.Classify(err)
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return resilience.ClassTransient
	}
	if pgconn.Timeout(err) || pgconn.SafeToRetry(err) {
		return resilience.ClassTransient
	}

	return resilience.Classify(err)
}

func classifyCode(code string) (resilience.ErrorClass, bool) {
	switch {
	case code == codeDuplicatePreparedStatement, code == codeInvalidStatementName:
		return resilience.ClassStaleSession, true
	case strings.HasPrefix(code, classConnectionException),
		code == codeAdminShutdown,
		code == codeCrashShutdown,
		code == codeCannotConnectNow,
		code == codeTooManyConnections,
		code == codeQueryCanceled,
		code == codeIdleInTransactionTimeout:
		return resilience.ClassTransient, true
	case strings.HasPrefix(code, classIntegrityViolation):
		return resilience.ClassFatal, true
	default:
		return 0, false
	}
}
