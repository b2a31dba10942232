package pet

import (
	"errors"
	"fmt"
)

// ErrBoundary is matched by every rejected operation.
var ErrBoundary = errors.New("pet: boundary violation")

var (
	maxHeartsReason = fmt.Sprintf("Maximum hearts reached (%d)", MaxHearts)
	minHeartsReason = fmt.Sprintf("Minimum hearts reached (%d)", MinHearts)
	rangeReason     = fmt.Sprintf("Hearts must be between %d and %d", MinHearts, MaxHearts)
)

// IsBoundaryReason reports whether msg is one of the reasons a BoundaryError carries.
func IsBoundaryReason(msg string) bool {
	switch msg {
	case maxHeartsReason, minHeartsReason, rangeReason:
		return true
	}
	return false
}

// BoundaryError reports an operation that would leave hearts outside [MinHearts, MaxHearts].
type BoundaryError struct {
	Action Action
	Hearts int // requested or current heart count
	Reason string
}

func (e *BoundaryError) Error() string {
	return e.Reason
}

// Is makes errors.Is(err, ErrBoundary) true.
func (e *BoundaryError) Is(target error) bool {
	return target == ErrBoundary
}

func maxHeartsError(hearts int) error {
	return &BoundaryError{
		Action: ActionAddHeart,
		Hearts: hearts,
		Reason: maxHeartsReason,
	}
}

func minHeartsError(hearts int) error {
	return &BoundaryError{
		Action: ActionRemoveHeart,
		Hearts: hearts,
		Reason: minHeartsReason,
	}
}

// RangeError is the error for a requested heart count outside [MinHearts, MaxHearts].
func RangeError(hearts int) error {
	return rangeError(hearts)
}

func rangeError(hearts int) error {
	return &BoundaryError{
		Action: ActionUpdate,
		Hearts: hearts,
		Reason: rangeReason,
	}
}
