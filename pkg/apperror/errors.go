package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
// Code is the stable kind; callers branch on it, never on Message.
type AppError struct {
	Code         string `json:"error_code"`
	Message      string `json:"message"`
	HTTPStatus   int    `json:"-"`
	LedgerStatus string `json:"ledger_status,omitempty"`
	Retryable    bool   `json:"retryable,omitempty"`
	Err          error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	msg := e.Message
	if e.LedgerStatus != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.LedgerStatus)
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, msg, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, msg)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an AppError with the same code, so that
// errors.Is(err, apperror.ErrConflict()) works regardless of message or cause.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// HasCode reports whether err carries an AppError with the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// ---- Wallets (WAL) ----

func ErrConflict(message string) *AppError {
	return New(CodeConflict, message, http.StatusConflict)
}

func ErrNotFound(entity string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrUnsupportedNetwork(network string) *AppError {
	return New(CodeUnsupportedNetwork, fmt.Sprintf("Unsupported network %q", network), http.StatusBadRequest)
}

func ErrUnsupportedOperation(op, network string) *AppError {
	return New(CodeUnsupportedOperation, fmt.Sprintf("%s is not supported on %s", op, network), http.StatusBadRequest)
}

// ---- Payments (PAY) ----

func ErrInsufficientFunds() *AppError {
	return New(CodeInsufficientFunds, "Insufficient balance in wallet", http.StatusPaymentRequired)
}

func ErrInvalidAmount() *AppError {
	return New(CodeInvalidAmount, "Invalid amount", http.StatusBadRequest)
}

func ErrDuplicateTransaction() *AppError {
	return New(CodeDuplicateTransaction, "Duplicate transaction", http.StatusConflict)
}

func ErrInvalidDestination(message string) *AppError {
	return New(CodeInvalidDestination, message, http.StatusBadRequest)
}

// ---- Recipient resolution (RCP) ----

func ErrRecipientNotFound() *AppError {
	return New(CodeRecipientNotFound, "Recipient not found", http.StatusNotFound)
}

func ErrRecipientWalletNotFound() *AppError {
	return New(CodeRecipientWalletNotFound, "Recipient has no wallet on this network", http.StatusNotFound)
}

// ---- Ledger (LED) ----

func ErrAccountNotFound() *AppError {
	return New(CodeAccountNotFound, "Account not found on ledger", http.StatusNotFound)
}

// ErrLedgerRejected is returned when the ledger executed the request but
// reported a failure status. status is the ledger's own status string.
func ErrLedgerRejected(status string) *AppError {
	e := New(CodeLedgerRejected, "Ledger rejected the transaction", http.StatusUnprocessableEntity)
	e.LedgerStatus = status
	return e
}

// ErrLedgerUnavailable is returned on transport failures and timeouts.
// The caller may retry; the service never does.
func ErrLedgerUnavailable(err error) *AppError {
	e := Wrap(CodeLedgerUnavailable, "Ledger is unavailable", http.StatusServiceUnavailable, err)
	e.Retryable = true
	return e
}

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New(CodeInvalidCredentials, "Invalid credentials", http.StatusUnauthorized)
}

func ErrUsernameExists() *AppError {
	return New(CodeUsernameExists, "Username already exists", http.StatusConflict)
}

func ErrInvalidToken() *AppError {
	return New(CodeUnauthenticated, "Invalid or expired token", http.StatusUnauthorized)
}

func ErrEmailExists() *AppError {
	return New(CodeEmailExists, "Email already registered", http.StatusConflict)
}

// ---- Profiles (PRF) ----

func ErrProfileExists() *AppError {
	return New(CodeProfileExists, "Profile already exists", http.StatusConflict)
}

func ErrHandleTaken(platform string) *AppError {
	return New(CodeHandleTaken, fmt.Sprintf("%s handle is already linked to another profile", platform), http.StatusConflict)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New(CodeRateLimited, "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap(CodeInternal, "Internal database error", http.StatusInternalServerError, err)
}

func ErrLockTimeout(err error) *AppError {
	return Wrap(CodeLockTimeout, "Wallet is busy, try again", http.StatusServiceUnavailable, err)
}

func ErrEncryptionFailure(err error) *AppError {
	return Wrap(CodeEncryption, "Encryption service failure", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap(CodeInternal, "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a REQ_001 input validation error.
func Validation(message string) *AppError {
	return New(CodeValidation, message, http.StatusBadRequest)
}
