package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/piwi3910/LayCut/internal/model"
)

var (
	// ErrInvalidInput is returned for empty orders, non-positive quantities
	// or non-positive constraints. Nothing has been allocated when it is returned.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNonConvergence means the allocation loop hit its iteration cap.
	// It indicates a defect in the optimizer, never a user error.
	ErrNonConvergence = errors.New("optimizer did not converge")

	// ErrShortfallDetected means a plan produces fewer pieces than ordered for some size.
	ErrShortfallDetected = errors.New("production shortfall detected")
)

// MaxQuantity bounds the order total and each capacity limit. Keeping both
// within 32 bits keeps every product of blocks, stack height and cut count
// inside int on 64-bit platforms.
const MaxQuantity = math.MaxInt32

// ValidateConstraints checks that both capacity limits are in [1, MaxQuantity].
func ValidateConstraints(c model.Constraints) error {
	if c.MaxBlocksPerCut < 1 {
		return fmt.Errorf("%w: maxBlocksPerCut must be at least 1, got %d", ErrInvalidInput, c.MaxBlocksPerCut)
	}
	if c.MaxStackingCloth < 1 {
		return fmt.Errorf("%w: maxStackingCloth must be at least 1, got %d", ErrInvalidInput, c.MaxStackingCloth)
	}
	if c.MaxBlocksPerCut > MaxQuantity || c.MaxStackingCloth > MaxQuantity {
		return fmt.Errorf("%w: capacity limits must not exceed %d", ErrInvalidInput, MaxQuantity)
	}
	return nil
}

// ValidateOrders checks that the order set is non-empty, that sizes are
// named and unique, that every quantity is positive and that the total
// stays within MaxQuantity.
func ValidateOrders(orders model.OrderSet) error {
	if len(orders) == 0 {
		return fmt.Errorf("%w: order set is empty", ErrInvalidInput)
	}
	total := 0
	seen := make(map[string]bool, len(orders))
	for _, line := range orders {
		if line.Size == "" {
			return fmt.Errorf("%w: size label must not be empty", ErrInvalidInput)
		}
		if seen[line.Size] {
			return fmt.Errorf("%w: duplicate size %q", ErrInvalidInput, line.Size)
		}
		seen[line.Size] = true
		if line.Quantity <= 0 {
			return fmt.Errorf("%w: quantity for size %q must be positive, got %d", ErrInvalidInput, line.Size, line.Quantity)
		}
		if line.Quantity > MaxQuantity-total {
			return fmt.Errorf("%w: total order quantity exceeds %d", ErrInvalidInput, MaxQuantity)
		}
		total += line.Quantity
	}
	return nil
}
