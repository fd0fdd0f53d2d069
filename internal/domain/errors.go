package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized          = errors.New("unauthorized")
	ErrInvalidInput          = errors.New("invalid input")
	ErrInvalidAmount         = fmt.Errorf("%w: amount must be a positive integer", ErrInvalidInput)
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrAccountNotFound       = errors.New("account not found")
	ErrSignatureVerification = errors.New("webhook signature verification failed")
	ErrMalformedEvent        = errors.New("malformed webhook event")
	ErrDuplicateEvent        = errors.New("webhook event already processed")
	ErrUnknownOperation      = errors.New("unknown operation")
	ErrDownstreamFailed      = errors.New("downstream operation failed")
)

// InsufficientBalanceError is the expected outcome of a debit that the
// account cannot cover.
type InsufficientBalanceError struct {
	Available int64
	Required  int64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: available %d, required %d", e.Available, e.Required)
}

func (e *InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}

// DownstreamFailedError is returned after the account was charged but the
// metered operation did not produce a result.
type DownstreamFailedError struct {
	Charged   int64
	Remaining int64
	Refunded  bool
	Err       error
}

func (e *DownstreamFailedError) Error() string {
	return fmt.Sprintf("downstream operation failed after charging %d: %v", e.Charged, e.Err)
}

func (e *DownstreamFailedError) Is(target error) bool {
	return target == ErrDownstreamFailed
}

func (e *DownstreamFailedError) Unwrap() error {
	return e.Err
}
