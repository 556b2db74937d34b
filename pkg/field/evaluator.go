// Package field evaluates the electromagnetic field scattered by a
// dielectric sphere at points on an imaging plane, by summing the
// vector spherical harmonic series over the sphere's Lorenz-Mie
// coefficients.
package field

import (
	"fmt"
	"math"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/cmplxs"

	"github.com/wrekr/shampoo/pkg/mie"
)

// Field holds the Cartesian components of a scattered electric field
// sampled at a set of points, one entry per point in each component.
type Field struct {
	// X, Y and Z are the complex field components along the axes
	X []complex128
	Y []complex128
	Z []complex128
}

// Evaluator sums the multipole series for the scattered field. The
// order recurrences for a single point are inherently sequential, but
// points are independent of one another, so the point set is
// partitioned across a pool of goroutines. Results are bit-identical
// for any worker count.
type Evaluator struct {
	// workers is the number of goroutines the points are divided among
	workers int
}

// NewEvaluator creates an Evaluator running the given number of
// workers. Non-positive counts select one worker per CPU core.
func NewEvaluator(workers int) *Evaluator {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Evaluator{workers: workers}
}

// Evaluate computes the scattered field at the points (x[i], y[i]) on a
// plane at distance z from the sphere center. Coordinates, z and the
// wavelength are all in pixels; the wavelength must already account for
// the medium index and the pixel pitch. x and y must have equal length;
// unequal lengths are a programming error and panic.
//
// Returns mie.ErrInvalidParameter for a non-positive wavelength and
// mie.ErrNumericDegeneracy if any point coincides with the sphere
// center (kr = 0), where the outgoing radial functions blow up.
func (e *Evaluator) Evaluate(x, y []float64, z float64, ab mie.AB, wavelength float64) (Field, error) {
	var f Field
	if err := e.EvaluateInto(&f, x, y, z, ab, wavelength); err != nil {
		return Field{}, err
	}
	return f, nil
}

// EvaluateInto is Evaluate writing into dst, reusing dst's backing
// arrays when they have sufficient capacity. Repeated evaluation at a
// fixed image size, as in a fitting loop, then allocates nothing per
// call. On error dst's contents are unspecified.
func (e *Evaluator) EvaluateInto(dst *Field, x, y []float64, z float64, ab mie.AB, wavelength float64) error {
	if len(x) != len(y) {
		panic("field: coordinate slices have unequal lengths")
	}
	if math.IsNaN(wavelength) || math.IsInf(wavelength, 0) || wavelength <= 0 {
		return fmt.Errorf("%w: wavelength must be positive and finite, got %g", mie.ErrInvalidParameter, wavelength)
	}

	npts := len(x)
	dst.X = resize(dst.X, npts)
	dst.Y = resize(dst.Y, npts)
	dst.Z = resize(dst.Z, npts)
	if npts == 0 {
		return nil
	}

	k := 2 * math.Pi / wavelength

	// Divide the points among the workers.
	workers := e.workers
	pointsPerWorker := (npts + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)

		go func(workerID int) {
			defer wg.Done()

			// Calculate the point range for this worker.
			start := workerID * pointsPerWorker
			end := (workerID + 1) * pointsPerWorker
			if end > npts {
				end = npts
			}
			if start >= npts {
				return
			}

			for p := start; p < end; p++ {
				dst.X[p], dst.Y[p], dst.Z[p] = scatterAt(x[p], y[p], z, k, ab)
			}
		}(w)
	}
	wg.Wait()

	if cmplxs.HasNaN(dst.X) || cmplxs.HasNaN(dst.Y) || cmplxs.HasNaN(dst.Z) {
		return fmt.Errorf("%w: scattered field contains NaN at z=%g", mie.ErrNumericDegeneracy, z)
	}
	return nil
}

// scatterAt sums the multipole series for a single point. The angular
// functions pi_n and tau_n follow Wiscombe's numerically stable
// recurrence; the outgoing Riccati-Bessel function xi advances by its
// upward three-term recurrence from trigonometric seeds at orders -1
// and 0. Geometric prefactors are divided out of the harmonics during
// the sum and re-applied once at the end.
func scatterAt(x, y, z, k float64, ab mie.AB) (ex, ey, ez complex128) {
	rho := math.Hypot(x, y)
	r := math.Hypot(rho, z)
	theta := math.Atan2(rho, z)
	phi := math.Atan2(y, x)
	kr := k * r
	ckr := complex(kr, 0)

	cosTheta := math.Cos(theta)
	sinTheta := math.Sin(theta)
	cosPhi := math.Cos(phi)
	sinPhi := math.Sin(phi)

	xiPrev2 := complex(math.Cos(kr), math.Sin(kr))
	xiPrev := complex(math.Sin(kr), -math.Cos(kr))

	piPrev := 0.0
	piCur := 1.0

	// i^n, advanced each order.
	ipow := complex(0, 1)

	var esR, esTheta, esPhi complex128

	for n := 1; n < ab.MaxOrder(); n++ {
		fn := float64(n)

		swisc := piCur * cosTheta
		twisc := swisc - piPrev
		tau := piPrev - fn*twisc

		xiCur := complex(2*fn-1, 0)*xiPrev/ckr - xiPrev2
		dn := complex(fn, 0)*xiCur/ckr - xiPrev

		en := ipow * complex((2*fn+1)/(fn*(fn+1)), 0)
		ien := complex(0, 1) * en
		an := ab.A[n]
		bn := ab.B[n]

		// Electric (Ne1n) and magnetic (Mo1n) harmonics, prefactors
		// divided out; Mo1n has no radial part.
		esR += ien * an * complex(fn*(fn+1)*piCur, 0) * xiCur
		esTheta += ien*an*complex(tau, 0)*dn - en*bn*complex(piCur, 0)*xiCur
		esPhi += ien*an*complex(piCur, 0)*dn - en*bn*complex(tau, 0)*xiCur

		piPrev, piCur = piCur, swisc+((fn+1)/fn)*twisc
		xiPrev2, xiPrev = xiPrev, xiCur
		ipow *= complex(0, 1)
	}

	// Re-apply the geometric prefactors.
	esR *= complex(cosPhi*sinTheta, 0) / (ckr * ckr)
	esTheta *= complex(cosPhi, 0) / ckr
	esPhi *= complex(sinPhi, 0) / ckr

	// Project the spherical components onto the Cartesian axes. The
	// incident wave travels along z, polarized along x.
	ex = esR*complex(sinTheta*cosPhi, 0) + esTheta*complex(cosTheta*cosPhi, 0) - esPhi*complex(sinPhi, 0)
	ey = esR*complex(sinTheta*sinPhi, 0) + esTheta*complex(cosTheta*sinPhi, 0) + esPhi*complex(cosPhi, 0)
	ez = esR*complex(cosTheta, 0) - esTheta*complex(sinTheta, 0)
	return ex, ey, ez
}

// resize returns s with length n, keeping the backing array when its
// capacity allows.
func resize(s []complex128, n int) []complex128 {
	if cap(s) < n {
		return make([]complex128, n)
	}
	return s[:n]
}
