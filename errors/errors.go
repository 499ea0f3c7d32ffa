package errors

import (
	"fmt"
	"net/http"

	"github.com/splitz-app/splitz-backend/logger"
)

type ErrorType string

const (
	ValidationError          ErrorType = "VALIDATION_ERROR"
	NotFoundError            ErrorType = "NOT_FOUND"
	AuthError                ErrorType = "AUTHENTICATION_ERROR"
	DatabaseError            ErrorType = "DATABASE_ERROR"
	ServerError              ErrorType = "SERVER_ERROR"
	ForbiddenError           ErrorType = "FORBIDDEN"
	ConflictError            ErrorType = "CONFLICT"
	RateLimitError           ErrorType = "RATE_LIMIT_EXCEEDED"
	SplitMismatchError       ErrorType = "SPLIT_MISMATCH"
	InvitationExpiredError   ErrorType = "INVITATION_EXPIRED"
	InvitationExhaustedError ErrorType = "INVITATION_EXHAUSTED"
	AlreadyMemberError       ErrorType = "ALREADY_MEMBER"
	ExpenseLockedError       ErrorType = "EXPENSE_LOCKED"
)

// AppError represents a structured application error.
type AppError struct {
	Type       ErrorType `json:"type"`
	Code       string    `json:"code"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Raw        error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap exposes the wrapped raw error to errors.Is/As.
func (e *AppError) Unwrap() error {
	return e.Raw
}

// GetHTTPStatus returns the HTTP status code for the error.
func (e *AppError) GetHTTPStatus() int {
	if e.HTTPStatus != 0 {
		return e.HTTPStatus
	}
	return getHTTPStatus(e.Type)
}

// New creates a new AppError.
func New(errType ErrorType, message string, detail string) *AppError {
	return &AppError{
		Type:       errType,
		Message:    message,
		Detail:     detail,
		HTTPStatus: getHTTPStatus(errType),
	}
}

// Wrap wraps a raw error with AppError context.
func Wrap(err error, errType ErrorType, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Type:       errType,
		Message:    message,
		Detail:     err.Error(),
		HTTPStatus: getHTTPStatus(errType),
		Raw:        err,
	}
}

// Helper constructors for common errors.

func NotFound(entity string, id interface{}) *AppError {
	return &AppError{
		Type:       NotFoundError,
		Message:    fmt.Sprintf("%s not found", entity),
		Detail:     fmt.Sprintf("ID: %v", id),
		HTTPStatus: http.StatusNotFound,
	}
}

func ValidationFailed(message string, details string) *AppError {
	return &AppError{
		Type:       ValidationError,
		Message:    message,
		Detail:     details,
		HTTPStatus: http.StatusBadRequest,
	}
}

func AuthenticationFailed(message string) *AppError {
	return &AppError{
		Type:       AuthError,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

func NewDatabaseError(err error) *AppError {
	// Log the original error but return a sanitized message.
	logger.GetLogger().Errorw("Database error", "error", err)
	return &AppError{
		Type:       DatabaseError,
		Message:    "Database operation failed",
		Detail:     "Please try again later",
		HTTPStatus: http.StatusInternalServerError,
		Raw:        err,
	}
}

func InternalServerError(message string) *AppError {
	return &AppError{
		Type:       ServerError,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}

func Forbidden(message string, details string) *AppError {
	return &AppError{
		Type:       ForbiddenError,
		Message:    message,
		Detail:     details,
		HTTPStatus: http.StatusForbidden,
	}
}

func NewConflictError(message string, detail string) *AppError {
	return &AppError{
		Type:       ConflictError,
		Message:    message,
		Detail:     detail,
		HTTPStatus: http.StatusConflict,
	}
}

// SplitMismatch reports a split whose per-member amounts disagree with the
// expense total beyond the rounding tolerance.
func SplitMismatch(detail string) *AppError {
	return &AppError{
		Type:       SplitMismatchError,
		Message:    "splits must equal total",
		Detail:     detail,
		HTTPStatus: http.StatusBadRequest,
	}
}

// InvitationExpired reports a redemption attempt against an invitation past
// its expiry time.
func InvitationExpired(code string) *AppError {
	return &AppError{
		Type:       InvitationExpiredError,
		Message:    "Invitation has expired",
		Detail:     fmt.Sprintf("code: %s", logger.MaskInviteCode(code)),
		HTTPStatus: http.StatusGone,
	}
}

// InvitationExhausted reports a redemption attempt against an invitation
// whose uses are spent.
func InvitationExhausted(code string) *AppError {
	return &AppError{
		Type:       InvitationExhaustedError,
		Message:    "Invitation has reached its maximum number of uses",
		Detail:     fmt.Sprintf("code: %s", logger.MaskInviteCode(code)),
		HTTPStatus: http.StatusGone,
	}
}

// AlreadyMember reports a duplicate membership insert, translated from the
// underlying unique-constraint violation.
func AlreadyMember(resource string) *AppError {
	return &AppError{
		Type:       AlreadyMemberError,
		Message:    fmt.Sprintf("You are already a member of this %s", resource),
		HTTPStatus: http.StatusConflict,
	}
}

// ExpenseLocked reports an update attempt against an expense that has settled
// member rows.
func ExpenseLocked(expenseID string) *AppError {
	return &AppError{
		Type:       ExpenseLockedError,
		Message:    "Expense cannot be modified once members have settled",
		Detail:     fmt.Sprintf("Expense ID: %s", expenseID),
		HTTPStatus: http.StatusConflict,
	}
}

// RateLimitExceeded reports a rejected request with a retry hint in seconds.
func RateLimitExceeded(message string, retryAfterSeconds int) *AppError {
	return &AppError{
		Type:       RateLimitError,
		Message:    message,
		Detail:     fmt.Sprintf("Retry after %d seconds", retryAfterSeconds),
		HTTPStatus: http.StatusTooManyRequests,
	}
}

func Unauthorized(code, message string) error {
	return &AppError{
		Type:       AuthError,
		Code:       code,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

func getHTTPStatus(errType ErrorType) int {
	switch errType {
	case ValidationError, SplitMismatchError:
		return http.StatusBadRequest
	case NotFoundError:
		return http.StatusNotFound
	case AuthError:
		return http.StatusUnauthorized
	case ForbiddenError:
		return http.StatusForbidden
	case ConflictError, AlreadyMemberError, ExpenseLockedError:
		return http.StatusConflict
	case InvitationExpiredError, InvitationExhaustedError:
		return http.StatusGone
	case RateLimitError:
		return http.StatusTooManyRequests
	case DatabaseError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
