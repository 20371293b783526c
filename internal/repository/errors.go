// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow higher layers to distinguish
// between different failure scenarios without inspecting driver errors.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an update cannot be applied because the
// row is not in the expected state.
var ErrConflict = errors.New("conflict")

// Lookup failures.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrRouteNotFound   = errors.New("route not found")
	ErrBookingNotFound = errors.New("booking not found")
)

// Uniqueness violations mapped from MySQL error 1062.
var (
	ErrEmailExists    = errors.New("email already exists")
	ErrUsernameExists = errors.New("username already exists")
	ErrSeatTaken      = errors.New("seat already booked")
	ErrDuplicatePNR   = errors.New("pnr already exists")
)

// ErrTokenInvalid is returned for refresh tokens that are unknown, expired
// or revoked.
var ErrTokenInvalid = errors.New("refresh token invalid")

// ErrLockConflict is returned when InnoDB aborted the transaction with a
// deadlock or gave up waiting for a row lock.  Nothing was written; the
// caller may retry.
var ErrLockConflict = errors.New("lock conflict")

// MySQL server error numbers.
const (
	mysqlDuplicateEntry   = 1062
	mysqlLockWaitTimeout  = 1205
	mysqlDeadlockDetected = 1213
)

// duplicateKey reports whether err is a unique-index violation and returns
// the driver message, which names the violated index.
func duplicateKey(err error) (string, bool) {
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
		return me.Message, true
	}
	return "", false
}

// violates reports whether err is a duplicate entry on the named index.
func violates(err error, index string) bool {
	msg, ok := duplicateKey(err)
	return ok && strings.Contains(msg, index)
}

// lockConflict reports whether err is a deadlock or lock wait timeout.
func lockConflict(err error) bool {
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return false
	}
	return me.Number == mysqlDeadlockDetected || me.Number == mysqlLockWaitTimeout
}
