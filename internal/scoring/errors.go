package scoring

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidImage marks empty, zero-area or undecodable imagery.
	ErrInvalidImage = errors.New("invalid image")
	// ErrNonConvergence marks an IRR root search that exhausted its
	// iteration budget or hit a flat derivative.
	ErrNonConvergence = errors.New("irr did not converge")
)

// DimensionMismatchError is returned when a vector's length differs from the
// expected dimensionality.
type DimensionMismatchError struct {
	Got  int
	Want int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("embedding dimension mismatch: got %d, want %d", e.Got, e.Want)
}
