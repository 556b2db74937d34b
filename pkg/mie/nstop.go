// Package mie computes Lorenz-Mie scattering coefficients for a
// homogeneous dielectric sphere, following the logarithmic-derivative
// formulation of Bohren & Huffman, "Absorption and Scattering of Light
// by Small Particles" (Wiley, 1983).
package mie

import (
	"fmt"
	"math"
	"math/cmplx"
)

// Nstop returns the number of multipole terms required for the
// Lorenz-Mie series to converge at size parameter x with relative
// refractive index m.
//
// The estimate is Wiscombe's piecewise rule (Appl. Opt. 19, 1505
// (1980)) raised to |x*m| when that is larger, per Yang's criterion for
// absorbing spheres (Appl. Opt. 42, 1710 (2003)), plus a fixed safety
// margin of 15 terms. The result sizes every downstream recurrence
// array, so x must be positive and finite; anything else returns
// ErrInvalidParameter.
func Nstop(x float64, m complex128) (int, error) {
	if math.IsNaN(x) || math.IsInf(x, 0) || x <= 0 {
		return 0, fmt.Errorf("%w: size parameter must be positive and finite, got %g", ErrInvalidParameter, x)
	}

	var ns float64
	switch {
	case x < 8:
		ns = math.Floor(x + 4*math.Cbrt(x) + 1)
	case x < 4200:
		ns = math.Floor(x + 4.05*math.Cbrt(x) + 2)
	default:
		ns = math.Floor(x + 4*math.Cbrt(x) + 2)
	}

	return int(math.Floor(math.Max(ns, cmplx.Abs(complex(x, 0)*m)))) + 15, nil
}
