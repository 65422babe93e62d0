package postgres

import (
	"context"
	"database/sql/driver"
	"net"
	"strings"

	domainerrors "kiosk/internal/domain/errors"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Helper functions for PostgreSQL error checking. GORM only surfaces its
// typed errors when translation is enabled on the dialector, so each check
// falls back to the PostgreSQL message text and SQLSTATE code.
func isUniqueConstraintViolation(err error) bool {
	// Check for GORM's duplicate key error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate key") ||
		strings.Contains(errMsg, "unique constraint") ||
		strings.Contains(errMsg, "23505") // PostgreSQL unique_violation error code
}

func isForeignKeyConstraintViolation(err error) bool {
	// Check for GORM's foreign key violation error
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}

	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "foreign key") ||
		strings.Contains(errMsg, "23503") // PostgreSQL foreign_key_violation error code
}

func isNotNullConstraintViolation(err error) bool {
	// Check error message for PostgreSQL-specific not null constraint violation patterns
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "null value") ||
		strings.Contains(errMsg, "not null") ||
		strings.Contains(errMsg, "23502") // PostgreSQL not_null_violation error code
}

func isCheckConstraintViolation(err error) bool {
	// Check for GORM's check constraint violation error
	if errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return true
	}

	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "check constraint") ||
		strings.Contains(errMsg, "23514") // PostgreSQL check_violation error code
}

// isConnectivityError reports whether the failure came from the connection
// rather than the statement: broken connections, dial failures, deadline hits.
func isConnectivityError(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error

	return errors.As(err, &netErr)
}

// wrapQueryError keeps the standard wrap for query failures but lets
// connectivity failures surface as retryable transient errors instead.
func wrapQueryError(err error, message string) error {
	if isConnectivityError(err) {
		return domainerrors.NewTransientStoreError(err, message)
	}

	return errors.Wrap(err, message)
}

// translateExecError maps residual write failures after the constraint checks:
// connectivity becomes a transient error callers may retry, everything else a
// generic database execute error.
func translateExecError(err error, details string) error {
	if isConnectivityError(err) {
		return domainerrors.NewTransientStoreError(err, details)
	}

	return domainerrors.NewDatabaseExecuteError(err, details)
}
