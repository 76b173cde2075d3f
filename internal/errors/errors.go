// Package errors defines the error taxonomy shared by the POS service layers.
package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
)

var (
	// ErrNotFound is returned when a tenant-scoped record does not exist.
	ErrNotFound = stderrors.New("not found")

	// ErrTenantMismatch is returned when a record exists but belongs to another tenant.
	ErrTenantMismatch = stderrors.New("resource belongs to a different tenant")

	// ErrNoActiveItems is returned when an order has nothing billable.
	ErrNoActiveItems = stderrors.New("order has no active items")

	// ErrOrderClosed is returned when a payment targets an order that is no longer open.
	ErrOrderClosed = stderrors.New("order is already closed")
)

// ValidationError describes a malformed or missing request field.
type ValidationError struct {
	Field   string            `json:"field"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Details: map[string]string{field: message},
	}
}

// NotFoundError names the missing resource. It matches ErrNotFound with errors.Is.
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a NotFoundError.
func NewNotFoundError(resource string, id int64) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// AmountMismatchError is returned when a submitted payment differs from the
// computed charge by more than the tolerance. Breakdown holds the bill the
// expected amount was derived from.
type AmountMismatchError struct {
	Expected  decimal.Decimal
	Received  decimal.Decimal
	Breakdown models.BillBreakdown
}

func (e *AmountMismatchError) Error() string {
	return fmt.Sprintf("payment amount %s does not match expected amount %s",
		e.Received.StringFixed(2), e.Expected.StringFixed(2))
}

// PersistenceError wraps a database failure with the operation that failed.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Persistence wraps err as a PersistenceError unless it is nil or already
// classified by this package.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsDomain(err) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

// IsDomain reports whether err is one of the classified, client-facing errors.
func IsDomain(err error) bool {
	var ve *ValidationError
	var me *AmountMismatchError
	var pe *PersistenceError
	switch {
	case stderrors.Is(err, ErrNotFound),
		stderrors.Is(err, ErrTenantMismatch),
		stderrors.Is(err, ErrNoActiveItems),
		stderrors.Is(err, ErrOrderClosed),
		stderrors.As(err, &ve),
		stderrors.As(err, &me),
		stderrors.As(err, &pe):
		return true
	}
	return false
}

// Is and As re-export the standard library helpers so callers need one import.
func Is(err, target error) bool { return stderrors.Is(err, target) }

func As(err error, target interface{}) bool { return stderrors.As(err, target) }
