package mie

import "errors"

// Errors reported by the scattering pipeline. The field and hologram
// packages wrap these, so errors.Is matches them across the library.
var (
	// ErrInvalidParameter reports a physical parameter outside its
	// domain: a non-positive radius, wavelength or pixel pitch, a
	// medium index with non-positive real part, non-positive image
	// dimensions, or a non-finite value.
	ErrInvalidParameter = errors.New("mie: invalid parameter")

	// ErrNumericDegeneracy reports that a recurrence produced NaN,
	// typically from degenerate geometry such as a zero sphere index
	// or an evaluation point coincident with the sphere center.
	ErrNumericDegeneracy = errors.New("mie: numeric degeneracy")
)
