package mie

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/cmplxs"
)

// AB holds the Lorenz-Mie scattering coefficients a_n and b_n indexed
// by multipole order n = 0..MaxOrder. Index 0 is a placeholder fixed at
// zero; the multipole series starts at order 1. A coefficient set is
// created once per sphere/medium pair and read-only afterwards.
type AB struct {
	// A holds the electric multipole coefficients a_n
	A []complex128

	// B holds the magnetic multipole coefficients b_n
	B []complex128
}

// MaxOrder returns the highest multipole order carried by the set.
func (ab AB) MaxOrder() int {
	return len(ab.A) - 1
}

// Coefficients computes the Lorenz-Mie scattering coefficients of a
// homogeneous dielectric sphere embedded in a medium.
//
// radius is the sphere radius and wavelength the vacuum wavelength of
// the illumination, both in micrometers; sphereIndex and mediumIndex
// are complex refractive indices. The number of returned orders follows
// Nstop applied to the size parameter x = 2*pi*Re(mediumIndex)*radius/
// wavelength and the relative index m = sphereIndex/mediumIndex.
//
// The logarithmic derivative of psi inside the sphere is generated by
// downward recurrence, which is the numerically stable direction, from
// an explicit zero seed at the top order. The Riccati-Bessel functions
// psi and zeta at the boundary run upward from closed-form order-0
// seeds, carrying their product so the logarithmic derivative of zeta
// stays well conditioned for complex arguments (Bohren & Huffman,
// appendix A).
//
// Returns ErrInvalidParameter for out-of-domain inputs and
// ErrNumericDegeneracy if the recurrences produce NaN.
func Coefficients(radius float64, sphereIndex, mediumIndex complex128, wavelength float64) (AB, error) {
	switch {
	case math.IsNaN(radius) || math.IsInf(radius, 0) || radius <= 0:
		return AB{}, fmt.Errorf("%w: radius must be positive and finite, got %g", ErrInvalidParameter, radius)
	case math.IsNaN(wavelength) || math.IsInf(wavelength, 0) || wavelength <= 0:
		return AB{}, fmt.Errorf("%w: wavelength must be positive and finite, got %g", ErrInvalidParameter, wavelength)
	case !(real(mediumIndex) > 0) || math.IsInf(real(mediumIndex), 0):
		return AB{}, fmt.Errorf("%w: medium index must have positive real part, got %v", ErrInvalidParameter, mediumIndex)
	}

	x := 2 * math.Pi * real(mediumIndex) * radius / wavelength
	m := sphereIndex / mediumIndex

	nmax, err := Nstop(x, m)
	if err != nil {
		return AB{}, err
	}

	// Logarithmic derivative of psi inside the sphere, argument x*m.
	// The array carries one spare slot and the downward seed at order
	// nmax is an explicit zero.
	zs := complex(x, 0) * m
	d1s := make([]complex128, nmax+2)
	d1s[nmax] = 0
	for n := nmax; n >= 1; n-- {
		cn := complex(float64(n), 0)
		d1s[n-1] = cn/zs - 1/(d1s[n]+cn/zs)
	}

	// The same recurrence against the real boundary argument x, seeded
	// one order lower; the upward recurrences below consume orders
	// 0..nmax-1 of it.
	zm := complex(x, 0)
	d1m := make([]complex128, nmax+2)
	d1m[nmax-1] = 0
	for n := nmax - 1; n >= 1; n-- {
		cn := complex(float64(n), 0)
		d1m[n-1] = cn/zm - 1/(d1m[n]+cn/zm)
	}

	// Riccati-Bessel psi and zeta at the boundary by upward recurrence
	// from closed-form order-0 seeds, tracking their product and the
	// logarithmic derivative of zeta alongside.
	psi := make([]complex128, nmax+1)
	zeta := make([]complex128, nmax+1)
	psiZeta := make([]complex128, nmax+1)
	d3 := make([]complex128, nmax+1)

	psi[0] = cmplx.Sin(zm)
	zeta[0] = complex(0, -1) * cmplx.Exp(complex(0, 1)*zm)
	psiZeta[0] = 0.5 * (1 - cmplx.Exp(complex(0, 2)*zm))
	d3[0] = complex(0, 1)

	for n := 1; n < nmax; n++ {
		cn := complex(float64(n), 0)
		psi[n] = psi[n-1] * (cn/zm - d1m[n-1])
		zeta[n] = zeta[n-1] * (cn/zm - d3[n-1])
		psiZeta[n] = psiZeta[n-1] * (cn/zm - d1m[n-1]) * (cn/zm - d3[n-1])
		d3[n] = d1m[n] + complex(0, 1)/psiZeta[n]
	}

	// The coefficient ratios pair each order with the previous one; a
	// rotate by one slot provides the aligned previous-order sequences.
	psiPrev := Shift(psi, 1)
	zetaPrev := Shift(zeta, 1)

	ab := AB{
		A: make([]complex128, nmax+1),
		B: make([]complex128, nmax+1),
	}
	for n := 0; n <= nmax; n++ {
		cn := complex(float64(n), 0)
		da := d1s[n]/m + cn/zm
		db := d1s[n]*m + cn/zm
		ab.A[n] = (da*psi[n] - psiPrev[n]) / (da*zeta[n] - zetaPrev[n])
		ab.B[n] = (db*psi[n] - psiPrev[n]) / (db*zeta[n] - zetaPrev[n])
	}

	// The series starts at order 1; order 0 is a placeholder.
	ab.A[0] = 0
	ab.B[0] = 0

	if cmplxs.HasNaN(ab.A) || cmplxs.HasNaN(ab.B) {
		return AB{}, fmt.Errorf("%w: coefficients for radius %g at wavelength %g", ErrNumericDegeneracy, radius, wavelength)
	}

	return ab, nil
}
