// Package grid builds the flattened pixel-coordinate meshes consumed by
// the field evaluator and the hologram synthesizer.
package grid

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Mesh holds the pixel coordinates of a rectangular image, expressed as
// offsets from a reference point and flattened to one value per pixel.
// The flat point order is row-major over rows of constant y: point
// p = iy*Nx + ix carries the coordinates of pixel (ix, iy).
type Mesh struct {
	// X is the per-point x offset in pixels, length Nx*Ny
	X []float64

	// Y is the per-point y offset in pixels, length Nx*Ny
	Y []float64

	// Nx is the image width in pixels
	Nx int

	// Ny is the image height in pixels
	Ny int
}

// New creates a mesh for an nx by ny pixel image with coordinates taken
// relative to the reference point (x0, y0).
func New(nx, ny int, x0, y0 float64) (*Mesh, error) {
	var m Mesh
	if err := m.Reset(nx, ny, x0, y0); err != nil {
		return nil, err
	}
	return &m, nil
}

// Reset refills the mesh for new dimensions and reference point,
// reusing the backing arrays when they have sufficient capacity.
func (m *Mesh) Reset(nx, ny int, x0, y0 float64) error {
	if nx < 1 || ny < 1 {
		return fmt.Errorf("grid: image dimensions must be positive, got %dx%d", nx, ny)
	}

	npts := nx * ny
	m.X = resize(m.X, npts)
	m.Y = resize(m.Y, npts)
	m.Nx = nx
	m.Ny = ny

	// Axis offsets i - origin for i = 0..n-1 along each dimension.
	xr := span(nx, x0)
	yr := span(ny, y0)

	// Broadcast the axis offsets across rows and columns.
	for iy := 0; iy < ny; iy++ {
		row := iy * nx
		yv := yr[iy]
		for ix := 0; ix < nx; ix++ {
			m.X[row+ix] = xr[ix]
			m.Y[row+ix] = yv
		}
	}
	return nil
}

// Points returns the number of grid points.
func (m *Mesh) Points() int {
	return m.Nx * m.Ny
}

// span returns the n evenly spaced offsets 0-origin .. (n-1)-origin.
func span(n int, origin float64) []float64 {
	s := make([]float64, n)
	if n == 1 {
		s[0] = -origin
		return s
	}
	return floats.Span(s, -origin, float64(n-1)-origin)
}

// resize returns s with length n, keeping the backing array when its
// capacity allows.
func resize(s []float64, n int) []float64 {
	if cap(s) < n {
		return make([]float64, n)
	}
	return s[:n]
}
