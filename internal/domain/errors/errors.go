package errors

import (
	"fmt"
	"net/http"

	"kiosk/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Predefined error types
var (
	// Identity-related errors
	ErrUserNotFound = NewBaseError(
		http.StatusNotFound,
		"USER_NOT_FOUND",
		"找不到該使用者",
		"",
	)

	ErrEmailAlreadyExists = NewBaseError(
		http.StatusConflict,
		"EMAIL_ALREADY_EXISTS",
		"此電子郵件已被註冊",
		"",
	)

	ErrUsernameAlreadyExists = NewBaseError(
		http.StatusConflict,
		"USERNAME_ALREADY_EXISTS",
		"此使用者名稱已被使用",
		"",
	)

	ErrUserCreationFailed = NewBaseError(
		http.StatusInternalServerError,
		"USER_CREATION_FAILED",
		"建立使用者失敗",
		"",
	)

	ErrUserUpdateFailed = NewBaseError(
		http.StatusInternalServerError,
		"USER_UPDATE_FAILED",
		"更新使用者失敗",
		"",
	)

	// Authentication-related errors
	ErrCredentialNotFound = NewBaseError(
		http.StatusUnauthorized,
		"CREDENTIAL_NOT_FOUND",
		"找不到登入方式",
		"",
	)

	ErrInvalidCredentials = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_CREDENTIALS",
		"帳號或密碼錯誤",
		"",
	)

	ErrPasswordHashFailed = NewBaseError(
		http.StatusInternalServerError,
		"PASSWORD_HASH_FAILED",
		"密碼處理錯誤",
		"",
	)

	ErrPasswordStrength = NewBaseError(
		http.StatusBadRequest,
		"PASSWORD_STRENGTH",
		"密碼強度不足",
		"",
	)

	ErrPasswordForbiddenWords = NewBaseError(
		http.StatusBadRequest,
		"PASSWORD_FORBIDDEN_WORDS",
		"密碼包含禁止使用的字詞或模式",
		"",
	)

	// Widget login errors
	ErrInvalidSignature = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_SIGNATURE",
		"登入簽章驗證失敗",
		"",
	)

	ErrAuthDataExpired = NewBaseError(
		http.StatusUnauthorized,
		"AUTH_DATA_EXPIRED",
		"登入資料已過期，請重新登入",
		"",
	)

	// Session token errors
	ErrMissingToken = NewBaseError(
		http.StatusUnauthorized,
		"MISSING_TOKEN",
		"缺少存取權杖",
		"",
	)

	ErrInvalidToken = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_TOKEN",
		"無效或已過期的存取權杖",
		"",
	)

	// Entitlement-related errors
	ErrInvalidTier = NewBaseError(
		http.StatusBadRequest,
		"INVALID_TIER",
		"無效的訂閱方案",
		"",
	)

	ErrSavedLimitExceeded = NewBaseError(
		http.StatusTooManyRequests,
		"SAVED_LIMIT_EXCEEDED",
		"已達收藏數量上限",
		"",
	)

	ErrArticleAlreadySaved = NewBaseError(
		http.StatusConflict,
		"ARTICLE_ALREADY_SAVED",
		"此文章已在收藏清單中",
		"",
	)

	ErrSavedArticleNotFound = NewBaseError(
		http.StatusNotFound,
		"SAVED_ARTICLE_NOT_FOUND",
		"找不到該收藏",
		"",
	)

	// Validation-related errors
	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"輸入資料驗證失敗",
		"",
	)

	// Transaction-related errors
	ErrTransactionFailed = NewBaseError(
		http.StatusInternalServerError,
		"TRANSACTION_FAILED",
		"資料庫交易失敗",
		"",
	)

	// General errors
	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"系統內部錯誤",
		"",
	)

	ErrForbidden = NewBaseError(
		http.StatusForbidden,
		"FORBIDDEN",
		"存取被拒絕",
		"",
	)

	ErrNotFound = NewBaseError(
		http.StatusNotFound,
		"NOT_FOUND",
		"找不到該資源",
		"",
	)

	ErrConflict = NewBaseError(
		http.StatusConflict,
		"CONFLICT",
		"資源衝突",
		"",
	)
)

// QuotaExceededError reports a metered read rejected by the daily limit,
// implementing the AppError interface. It keeps the limit, the current usage
// and the effective tier so callers can render all three.
type QuotaExceededError struct {
	Limit int
	Used  int
	Tier  string
}

// NewQuotaExceededError creates a quota error for the given limit and usage.
func NewQuotaExceededError(limit, used int, tier string) *QuotaExceededError {
	return &QuotaExceededError{
		Limit: limit,
		Used:  used,
		Tier:  tier,
	}
}

// Error implements the error interface
func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("daily article quota exceeded: limit=%d used=%d tier=%s", e.Limit, e.Used, e.Tier)
}

// HTTPCode returns the HTTP status code
func (e *QuotaExceededError) HTTPCode() int {
	return http.StatusTooManyRequests
}

// ErrorCode returns the business error code
func (e *QuotaExceededError) ErrorCode() string {
	return "QUOTA_EXCEEDED"
}

// Message returns the user-friendly error message
func (e *QuotaExceededError) Message() string {
	return "已達今日閱讀上限"
}

// Details returns detailed error information
func (e *QuotaExceededError) Details() string {
	return fmt.Sprintf("limit=%d, used=%d, tier=%s", e.Limit, e.Used, e.Tier)
}

// TransientStoreError represents a temporary store failure (timeouts, broken
// connections), implementing the AppError interface. It maps to 503 so
// clients and the push broker retry instead of treating it as a domain error.
type TransientStoreError struct {
	err     error
	details string
}

// NewTransientStoreError creates a transient store error
func NewTransientStoreError(err error, details string) AppError {
	return &TransientStoreError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface
func (e *TransientStoreError) Error() string {
	return errors.Wrap(e.err, "transient store failure").Error()
}

// Unwrap exposes the underlying store error for errors.Is checks.
func (e *TransientStoreError) Unwrap() error {
	return e.err
}

// HTTPCode returns the HTTP status code
func (e *TransientStoreError) HTTPCode() int {
	return http.StatusServiceUnavailable
}

// ErrorCode returns the business error code
func (e *TransientStoreError) ErrorCode() string {
	return "STORE_UNAVAILABLE"
}

// Message returns the user-friendly error message
func (e *TransientStoreError) Message() string {
	return "資料庫暫時無法使用，請稍後再試"
}

// Details returns detailed error information
func (e *TransientStoreError) Details() string {
	return e.details
}

// DatabaseExecuteError represents a database execution error, implementing the AppError interface
type DatabaseExecuteError struct {
	err     error
	details string
}

// NewDatabaseExecuteError creates a database-related error
func NewDatabaseExecuteError(err error, details string) AppError {
	return &DatabaseExecuteError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface
func (e *DatabaseExecuteError) Error() string {
	return errors.Wrap(e.err, "database execution failed").Error()
}

// HTTPCode returns the HTTP status code
func (e *DatabaseExecuteError) HTTPCode() int {
	return http.StatusInternalServerError
}

// ErrorCode returns the business error code
func (e *DatabaseExecuteError) ErrorCode() string {
	return "DATABASE_EXECUTE_FAILED"
}

// Message returns the user-friendly error message
func (e *DatabaseExecuteError) Message() string {
	return "資料庫執行失敗"
}

// Details returns detailed error information
func (e *DatabaseExecuteError) Details() string {
	return e.details
}
