package hologram

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// DefaultKernelRadius is the conventional kernel radius handed to the
// suppression filter.
const DefaultKernelRadius = 15

// Suppress attenuates a hologram radially around the sphere's projected
// centroid (x0, y0): the image median is subtracted and every pixel is
// scaled by exp(-r/20) + 0.05, a fixed exponential falloff over a
// constant floor. kernelRadius is accepted but does not enter the fixed
// envelope; SuppressGaussian applies a true Gaussian of chosen width
// instead. The input matrix is left unmodified.
func Suppress(h *mat.Dense, x0, y0, kernelRadius float64) *mat.Dense {
	med := median(h)
	rows, cols := h.Dims()
	out := mat.NewDense(rows, cols, nil)
	for a := 0; a < rows; a++ {
		for b := 0; b < cols; b++ {
			r := math.Hypot(float64(b)-x0, float64(a)-y0)
			out.Set(a, b, (h.At(a, b)-med)*(math.Exp(-r/20)+0.05))
		}
	}
	return out
}

// SuppressGaussian is Suppress with a true Gaussian envelope of width
// sigma in place of the fixed exponential falloff: every median-free
// pixel is scaled by GaussianKernel evaluated at its offset from the
// centroid. There is no constant floor, so far-field intensity is
// suppressed completely.
func SuppressGaussian(h *mat.Dense, x0, y0, sigma float64) *mat.Dense {
	med := median(h)
	rows, cols := h.Dims()
	out := mat.NewDense(rows, cols, nil)
	for a := 0; a < rows; a++ {
		for b := 0; b < cols; b++ {
			out.Set(a, b, (h.At(a, b)-med)*GaussianKernel(float64(b)-x0, float64(a)-y0, sigma))
		}
	}
	return out
}

// GaussianKernel evaluates an unnormalized two-dimensional Gaussian of
// width sigma at offset (x, y): exp(-(x^2+y^2)/(2*sigma^2)).
func GaussianKernel(x, y, sigma float64) float64 {
	return math.Exp(-(x*x + y*y) / (2 * sigma * sigma))
}

// median returns the empirical median of all matrix entries: the
// smallest entry at or above the half-mass point of the sorted values.
func median(h *mat.Dense) float64 {
	rm := h.RawMatrix()
	vals := make([]float64, 0, rm.Rows*rm.Cols)
	for i := 0; i < rm.Rows; i++ {
		vals = append(vals, rm.Data[i*rm.Stride:i*rm.Stride+rm.Cols]...)
	}
	sort.Float64s(vals)
	return stat.Quantile(0.5, stat.Empirical, vals, nil)
}
