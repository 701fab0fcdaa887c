package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidDays      ErrorCode = "INVALID_DAYS"
	ErrCodeInvalidYear      ErrorCode = "INVALID_YEAR"
	ErrCodeInvalidDate      ErrorCode = "INVALID_DATE"
	ErrCodeInvalidLeaveType ErrorCode = "INVALID_LEAVE_TYPE"
	ErrCodeReasonRequired   ErrorCode = "REASON_REQUIRED"

	ErrCodeEmployeeNotFound     ErrorCode = "EMPLOYEE_NOT_FOUND"
	ErrCodeEmployeeInactive     ErrorCode = "EMPLOYEE_INACTIVE"
	ErrCodeEmailTaken           ErrorCode = "EMAIL_TAKEN"
	ErrCodeLeaveTypeNotFound    ErrorCode = "LEAVE_TYPE_NOT_FOUND"
	ErrCodeLeaveTypeInUse       ErrorCode = "LEAVE_TYPE_IN_USE"
	ErrCodeLeaveTypeExists      ErrorCode = "LEAVE_TYPE_EXISTS"
	ErrCodeLeaveRequestNotFound ErrorCode = "LEAVE_REQUEST_NOT_FOUND"
	ErrCodeInvalidLeaveStatus   ErrorCode = "INVALID_LEAVE_STATUS"
	ErrCodeInsufficientQuota    ErrorCode = "INSUFFICIENT_QUOTA"
	ErrCodeConsecutiveExceeded  ErrorCode = "MAX_CONSECUTIVE_EXCEEDED"
	ErrCodeLeaveOverlap         ErrorCode = "LEAVE_OVERLAP"
	ErrCodeQuotaNotFound        ErrorCode = "QUOTA_NOT_FOUND"
	ErrCodeHolidayNotFound      ErrorCode = "HOLIDAY_NOT_FOUND"
	ErrCodeHolidayExists        ErrorCode = "HOLIDAY_EXISTS"

	ErrCodeYearConfigNotFound ErrorCode = "YEAR_CONFIG_NOT_FOUND"
	ErrCodeYearConfigExists   ErrorCode = "YEAR_CONFIG_EXISTS"
	ErrCodeYearAlreadyClosed  ErrorCode = "YEAR_ALREADY_CLOSED"
	ErrCodeYearNotClosed      ErrorCode = "YEAR_NOT_CLOSED"
	ErrCodeYearClosed         ErrorCode = "YEAR_CLOSED"

	ErrCodeAlreadyCheckedIn  ErrorCode = "ALREADY_CHECKED_IN"
	ErrCodeNotCheckedIn      ErrorCode = "NOT_CHECKED_IN"
	ErrCodeAlreadyCheckedOut ErrorCode = "ALREADY_CHECKED_OUT"

	ErrCodeNotificationNotFound ErrorCode = "NOTIFICATION_NOT_FOUND"
	ErrCodeInvalidAttachment    ErrorCode = "INVALID_ATTACHMENT"

	ErrCodeUnauthorizedAccess ErrorCode = "UNAUTHORIZED_ACCESS"
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUserInactive       ErrorCode = "USER_INACTIVE"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if details, ok := e.Details.(ValidationErrors); ok && len(details.Errors) > 0 {
		return details.Errors[0].Message
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// GetDetailedMessage joins every field message of a validation error.
func (e *AppError) GetDetailedMessage() string {
	details, ok := e.Details.(ValidationErrors)
	if !ok || len(details.Errors) == 0 {
		return e.Message
	}
	messages := make([]string, len(details.Errors))
	for i, fe := range details.Errors {
		messages[i] = fe.Message
	}
	return strings.Join(messages, "; ")
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches on type and code so sentinel errors survive WithCause copies.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

// WithCause returns a copy carrying cause; package-level sentinels are never mutated.
func (e *AppError) WithCause(cause error) *AppError {
	cp := *e
	cp.Cause = cause
	return &cp
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

func (e *AppError) WithMessage(message string) *AppError {
	cp := *e
	cp.Message = message
	return &cp
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func newAppError(errType ErrorType, code ErrorCode, message string, status int) *AppError {
	return &AppError{Type: errType, Code: code, Message: message, StatusCode: status}
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return newAppError(ErrorTypeValidation, code, message, http.StatusBadRequest)
}

// NewValidationFieldError reports a single invalid input field under the
// generic VALIDATION_FAILED code; the field specific code goes in the details.
func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	err := newAppError(ErrorTypeValidation, ErrCodeValidationFailed, "Validation failed", http.StatusBadRequest)
	err.Details = ValidationErrors{Errors: []ValidationError{{Field: field, Message: message, Code: string(code)}}}
	return err
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return newAppError(ErrorTypeNotFound, code, message, http.StatusNotFound)
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return newAppError(ErrorTypeUnauthorized, code, message, http.StatusUnauthorized)
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return newAppError(ErrorTypeForbidden, code, message, http.StatusForbidden)
}

// NewConflictError covers state clashes: closed years, duplicate codes,
// attendance transitions and exhausted quotas.
func NewConflictError(message string, code ErrorCode) *AppError {
	return newAppError(ErrorTypeConflict, code, message, http.StatusConflict)
}

func NewInternalError(message string, cause error) *AppError {
	err := newAppError(ErrorTypeInternal, "INTERNAL_ERROR", message, http.StatusInternalServerError)
	err.Cause = cause
	return err
}

var (
	ErrUnauthorizedAccess = NewForbiddenError("insufficient permissions for this operation", ErrCodeUnauthorizedAccess)

	ErrInvalidCredentials = NewUnauthorizedError("Invalid email or password", ErrCodeInvalidCredentials)
	ErrUserInactive       = NewForbiddenError("User account is inactive", ErrCodeUserInactive)
	ErrInvalidToken       = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
