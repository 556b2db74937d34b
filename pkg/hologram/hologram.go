// Package hologram synthesizes in-line digital holograms of a single
// dielectric sphere as recorded in a holographic video microscope: the
// interference pattern between a unit plane illumination wave and the
// light the sphere scatters (Lee et al., Opt. Express 15, 18275
// (2007)).
package hologram

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/cmplxs"
	"gonum.org/v1/gonum/mat"

	"github.com/wrekr/shampoo/internal/grid"
	"github.com/wrekr/shampoo/pkg/field"
	"github.com/wrekr/shampoo/pkg/mie"
)

// Sphere describes the scatterer: a homogeneous dielectric sphere.
type Sphere struct {
	// X and Y are the center's in-plane position in pixels
	X float64
	Y float64

	// Z is the center's distance above the imaging plane in pixels
	Z float64

	// Radius is the sphere radius in micrometers
	Radius float64

	// Index is the sphere's complex refractive index
	Index complex128
}

// Medium describes the suspension medium and the recording optics.
type Medium struct {
	// Index is the medium's complex refractive index; the real part
	// must be positive
	Index complex128

	// Wavelength is the vacuum wavelength of the illumination in
	// micrometers
	Wavelength float64

	// PixelPitch is the physical size of a pixel in micrometers
	PixelPitch float64
}

// Params collects the fixed parameters of a Synthesizer.
type Params struct {
	// Medium describes the optical train the holograms are recorded in
	Medium Medium

	// Width and Height are the image dimensions in pixels
	Width  int
	Height int

	// Alpha scales the scattered field's amplitude relative to the
	// unit illumination wave
	Alpha float64

	// Delta is an axial offset in pixels added to the sphere's z when
	// computing the illumination phase at the sphere
	Delta float64

	// Workers is the number of goroutines evaluating field points;
	// non-positive values use one per CPU core
	Workers int

	// Verbose enables progress output on stdout
	Verbose bool
}

// DefaultParams returns synthesis parameters with unit scattering
// amplitude, no axial offset, and one worker per CPU core. The medium
// and the image dimensions must still be filled in by the caller.
func DefaultParams() *Params {
	return &Params{
		Alpha: 1,
		Delta: 0,
	}
}

// Synthesizer renders holograms for one optical configuration. It keeps
// reusable scratch buffers between calls, so a single Synthesizer must
// not be used from multiple goroutines at once; create one per
// goroutine instead.
type Synthesizer struct {
	params *Params
	ev     *field.Evaluator

	// Scratch reused across Compute calls.
	mesh grid.Mesh
	fld  field.Field
	flat []float64
}

// NewSynthesizer validates params and creates a Synthesizer for them.
func NewSynthesizer(params *Params) (*Synthesizer, error) {
	switch {
	case params.Width < 1 || params.Height < 1:
		return nil, fmt.Errorf("%w: image dimensions must be positive, got %dx%d", mie.ErrInvalidParameter, params.Width, params.Height)
	case math.IsNaN(params.Medium.Wavelength) || math.IsInf(params.Medium.Wavelength, 0) || params.Medium.Wavelength <= 0:
		return nil, fmt.Errorf("%w: wavelength must be positive and finite, got %g", mie.ErrInvalidParameter, params.Medium.Wavelength)
	case math.IsNaN(params.Medium.PixelPitch) || math.IsInf(params.Medium.PixelPitch, 0) || params.Medium.PixelPitch <= 0:
		return nil, fmt.Errorf("%w: pixel pitch must be positive and finite, got %g", mie.ErrInvalidParameter, params.Medium.PixelPitch)
	case !(real(params.Medium.Index) > 0) || math.IsInf(real(params.Medium.Index), 0):
		return nil, fmt.Errorf("%w: medium index must have positive real part, got %v", mie.ErrInvalidParameter, params.Medium.Index)
	case math.IsNaN(params.Alpha) || math.IsInf(params.Alpha, 0):
		return nil, fmt.Errorf("%w: alpha must be finite, got %g", mie.ErrInvalidParameter, params.Alpha)
	case math.IsNaN(params.Delta) || math.IsInf(params.Delta, 0):
		return nil, fmt.Errorf("%w: delta must be finite, got %g", mie.ErrInvalidParameter, params.Delta)
	}

	return &Synthesizer{
		params: params,
		ev:     field.NewEvaluator(params.Workers),
	}, nil
}

// Compute renders the hologram of the given sphere as a fresh Width by
// Height intensity matrix. The illumination has unit amplitude, so a
// vanishing scattered field gives a uniform intensity of one.
func (s *Synthesizer) Compute(sph Sphere) (*mat.Dense, error) {
	p := s.params
	flat := make([]float64, p.Width*p.Height)
	if err := s.compute(flat, sph); err != nil {
		return nil, err
	}
	return mat.NewDense(p.Width, p.Height, flat), nil
}

// ComputeInto renders the hologram into dst, which must be Width by
// Height; other dimensions are a programming error and panic. It reuses
// dst's storage and the synthesizer's scratch buffers, making it the
// preferred call inside fitting loops.
func (s *Synthesizer) ComputeInto(dst *mat.Dense, sph Sphere) error {
	p := s.params
	rows, cols := dst.Dims()
	if rows != p.Width || cols != p.Height {
		panic(fmt.Sprintf("hologram: destination is %dx%d, synthesizer renders %dx%d", rows, cols, p.Width, p.Height))
	}

	if cap(s.flat) < rows*cols {
		s.flat = make([]float64, rows*cols)
	}
	s.flat = s.flat[:rows*cols]
	if err := s.compute(s.flat, sph); err != nil {
		return err
	}
	for i := 0; i < rows; i++ {
		dst.SetRow(i, s.flat[i*cols:(i+1)*cols])
	}
	return nil
}

// compute fills flat, of length Width*Height, with the interference
// intensity in the grid's flat point order.
func (s *Synthesizer) compute(flat []float64, sph Sphere) error {
	p := s.params

	switch {
	case math.IsNaN(sph.Radius) || math.IsInf(sph.Radius, 0) || sph.Radius <= 0:
		return fmt.Errorf("%w: sphere radius must be positive and finite, got %g", mie.ErrInvalidParameter, sph.Radius)
	case math.IsNaN(sph.X) || math.IsInf(sph.X, 0) ||
		math.IsNaN(sph.Y) || math.IsInf(sph.Y, 0) ||
		math.IsNaN(sph.Z) || math.IsInf(sph.Z, 0):
		return fmt.Errorf("%w: sphere position must be finite, got (%g, %g, %g)", mie.ErrInvalidParameter, sph.X, sph.Y, sph.Z)
	}

	ab, err := mie.Coefficients(sph.Radius, sph.Index, p.Medium.Index, p.Medium.Wavelength)
	if err != nil {
		return fmt.Errorf("hologram: computing scattering coefficients: %w", err)
	}
	if p.Verbose {
		fmt.Printf("Computed %d multipole terms for radius %.3f um\n", ab.MaxOrder(), sph.Radius)
	}

	// Illumination wavelength inside the medium, in pixels.
	lambda := p.Medium.Wavelength / real(p.Medium.Index) / p.Medium.PixelPitch

	if err := s.mesh.Reset(p.Width, p.Height, sph.X, sph.Y); err != nil {
		return err
	}
	if err := s.ev.EvaluateInto(&s.fld, s.mesh.X, s.mesh.Y, sph.Z, ab, lambda); err != nil {
		return fmt.Errorf("hologram: evaluating scattered field: %w", err)
	}
	if p.Verbose {
		fmt.Printf("Evaluated scattered field at %d points\n", s.mesh.Points())
	}

	// Scale the scattered field by alpha and the illumination phase at
	// the sphere, then add the unit plane wave to the x component.
	k := 2 * math.Pi / lambda
	fac := complex(p.Alpha, 0) * cmplx.Exp(complex(0, -k*(sph.Z+p.Delta)))
	cmplxs.Scale(fac, s.fld.X)
	cmplxs.Scale(fac, s.fld.Y)
	cmplxs.Scale(fac, s.fld.Z)
	cmplxs.AddConst(1, s.fld.X)

	// Interference intensity, summed over the three components.
	for i := range flat {
		xv := s.fld.X[i]
		yv := s.fld.Y[i]
		zv := s.fld.Z[i]
		flat[i] = real(xv)*real(xv) + imag(xv)*imag(xv) +
			real(yv)*real(yv) + imag(yv)*imag(yv) +
			real(zv)*real(zv) + imag(zv)*imag(zv)
	}
	return nil
}

// Compute renders a single hologram without retaining a Synthesizer.
// Fitting loops should construct a Synthesizer once and use ComputeInto
// instead.
func Compute(sph Sphere, med Medium, width, height int, alpha, delta float64) (*mat.Dense, error) {
	s, err := NewSynthesizer(&Params{
		Medium: med,
		Width:  width,
		Height: height,
		Alpha:  alpha,
		Delta:  delta,
	})
	if err != nil {
		return nil, err
	}
	return s.Compute(sph)
}

// ComputeSuppressed renders a hologram and applies the centroid
// suppression filter around the sphere's in-plane position.
func ComputeSuppressed(sph Sphere, med Medium, width, height int, alpha, delta, kernelRadius float64) (*mat.Dense, error) {
	h, err := Compute(sph, med, width, height, alpha, delta)
	if err != nil {
		return nil, err
	}
	return Suppress(h, sph.X, sph.Y, kernelRadius), nil
}
