package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"watchshop/internal/models"
	"watchshop/internal/repositories"
)

var (
	// ErrNotFound matches every NotFoundError and UnknownComponentsError.
	ErrNotFound = repositories.ErrNotFound
	// ErrInsufficientStock matches every InsufficientStockError and OutOfStockError.
	ErrInsufficientStock = repositories.ErrInsufficientStock
	// ErrDuplicate is returned when a catalog entry reuses a unique value such as a watch reference.
	ErrDuplicate = repositories.ErrDuplicate
	// ErrDuplicateRequest is returned while an order with the same idempotency key is still being placed.
	ErrDuplicateRequest = errors.New("duplicate request")
)

// ValidationError reports malformed input, keyed by the offending field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func invalidField(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// NotFoundError reports a reference that does not resolve for the caller.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// UnknownComponentsError lists component ids that do not exist.
type UnknownComponentsError struct {
	IDs []string
}

func (e *UnknownComponentsError) Error() string {
	return "unknown components: " + strings.Join(e.IDs, ", ")
}

func (e *UnknownComponentsError) Is(target error) bool { return target == ErrNotFound }

// InsufficientStockError reports a line asking for more units than are available.
type InsufficientStockError struct {
	ProductID string
	Name      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s (requested: %d, available: %d)", e.Name, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// OutOfStockError lists components with no stock left.
type OutOfStockError struct {
	Names []string
}

func (e *OutOfStockError) Error() string {
	return "out of stock: " + strings.Join(e.Names, ", ")
}

func (e *OutOfStockError) Is(target error) bool { return target == ErrInsufficientStock }

// InvalidStatusError reports a status that is not one of the order statuses.
type InvalidStatusError struct {
	Status string
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid order status: %s", e.Status)
}

// InvalidTransitionError reports an attempt to move an order out of a terminal status.
type InvalidTransitionError struct {
	From models.OrderStatus
	To   models.OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("order status cannot change from %s to %s", e.From, e.To)
}

// TransactionError reports that the store rejected or failed to commit a unit of work.
// Nothing written by that unit of work was kept.
type TransactionError struct {
	Op  string
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("%s: transaction failed: %v", e.Op, e.Err)
}

func (e *TransactionError) Unwrap() error { return e.Err }

// transactionError passes domain errors through and wraps anything else in a TransactionError.
func transactionError(op string, err error) error {
	if err == nil {
		return nil
	}
	var (
		validation *ValidationError
		notFound   *NotFoundError
		unknown    *UnknownComponentsError
		short      *InsufficientStockError
		outOfStock *OutOfStockError
		status     *InvalidStatusError
		transition *InvalidTransitionError
	)
	switch {
	case errors.As(err, &validation), errors.As(err, &notFound), errors.As(err, &unknown),
		errors.As(err, &short), errors.As(err, &outOfStock), errors.As(err, &status),
		errors.As(err, &transition):
		return err
	}
	return &TransactionError{Op: op, Err: err}
}
