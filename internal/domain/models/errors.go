package models

import (
	"errors"
	"fmt"
)

var (
	ErrZoneNotFound      = errors.New("zone not found")
	ErrCropTypeNotFound  = errors.New("crop type not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrProducerNotFound  = errors.New("producer not found")
	ErrWarehouseNotFound = errors.New("warehouse not found")
	ErrHarvestNotFound   = errors.New("harvest record not found")
	ErrDeliveryNotFound  = errors.New("delivery order not found")

	// ErrZoneExists guards the (commune, district, village) uniqueness.
	ErrZoneExists = errors.New("zone already registered")
	// ErrCropTypeExists guards crop name uniqueness.
	ErrCropTypeExists = errors.New("crop type already registered")
	// ErrUsernameTaken guards username uniqueness.
	ErrUsernameTaken = errors.New("username is already taken")

	// ErrCropTypeInUse blocks deleting a crop type referenced by any
	// harvest record or delivery order.
	ErrCropTypeInUse = errors.New("crop type is referenced by ledger entries")

	// ErrMissingDestination rejects confirming a harvest that has no
	// destination warehouse.
	ErrMissingDestination = errors.New("harvest has no destination warehouse")
	// ErrAlreadyReceived signals a repeated receipt confirmation. It is
	// an idempotency warning, not a hard failure: nothing was mutated.
	ErrAlreadyReceived = errors.New("harvest already received")
	// ErrNotScheduled signals dispatch confirmation on a non-scheduled
	// order. Nothing is mutated.
	ErrNotScheduled = errors.New("delivery order is not in scheduled state")
	// ErrInvalidQuantity rejects non-positive delivery quantities.
	ErrInvalidQuantity = errors.New("quantity must be positive")

	// ErrForbidden is returned when the actor's capability does not
	// cover the requested operation.
	ErrForbidden = errors.New("operation not permitted for this actor")
)

// CapacityExceededError reports a receipt confirmation that would push
// a warehouse past its capacity. The current figures are included so
// the actor can adjust.
type CapacityExceededError struct {
	WarehouseName string
	CapacityKg    float64
	StockKg       float64
	AttemptedKg   float64
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("warehouse %s is full: %.0fkg stored + %.0fkg incoming exceeds %.0fkg capacity",
		e.WarehouseName, e.StockKg, e.AttemptedKg, e.CapacityKg)
}

// InsufficientStockError reports a delivery creation or dispatch that
// asks for more than is available.
type InsufficientStockError struct {
	WarehouseName string
	AvailableKg   float64
	RequestedKg   float64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock in %s: %.0fkg available for %.0fkg requested",
		e.WarehouseName, e.AvailableKg, e.RequestedKg)
}

// IsConflict reports whether err is a business-rule conflict dependent
// on current state (as opposed to a validation or not-found error).
func IsConflict(err error) bool {
	var capErr *CapacityExceededError
	var stockErr *InsufficientStockError
	return errors.As(err, &capErr) || errors.As(err, &stockErr)
}

// IsNotFound reports whether err is one of the entity lookup failures.
func IsNotFound(err error) bool {
	for _, target := range []error{
		ErrZoneNotFound, ErrCropTypeNotFound, ErrUserNotFound, ErrProducerNotFound,
		ErrWarehouseNotFound, ErrHarvestNotFound, ErrDeliveryNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
