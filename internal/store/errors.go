package store

import (
	"errors"
	"fmt"
)

var (
	// ErrFilamentNotFound is returned when a filament ID resolves to nothing.
	ErrFilamentNotFound = errors.New("filament not found")

	// ErrBrandNotFound is returned when a brand ID resolves to nothing.
	ErrBrandNotFound = errors.New("brand not found")

	// ErrBrandExists is returned when adding or renaming a brand collides
	// with an existing name (case-insensitively).
	ErrBrandExists = errors.New("brand already exists")

	// ErrBrandInUse is returned when deleting a brand still referenced by a
	// filament.
	ErrBrandInUse = errors.New("brand is used by filaments")

	// ErrPrintNotFound is returned when a print record ID resolves to
	// nothing.
	ErrPrintNotFound = errors.New("print record not found")
)

// InsufficientWeightError is returned when a consume would drive a
// filament's current weight below zero. The filament is left untouched.
type InsufficientWeightError struct {
	AvailableG int
	RequestedG int
}

func (e *InsufficientWeightError) Error() string {
	return fmt.Sprintf("insufficient filament weight: %d g available, %d g requested", e.AvailableG, e.RequestedG)
}

// InvalidNetWeightError is returned when a gross spool weight minus the
// brand's tare leaves nothing to print with.
type InvalidNetWeightError struct {
	GrossG int
	SpoolG int
	Brand  string
}

func (e *InvalidNetWeightError) Error() string {
	return fmt.Sprintf("weight %d g is too small: spool weight for brand %s is %d g (net %d g)",
		e.GrossG, e.Brand, e.SpoolG, e.GrossG-e.SpoolG)
}
