package field

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"gonum.org/v1/gonum/cmplxs"

	"github.com/wrekr/shampoo/pkg/mie"
)

// testAB returns coefficients for a 0.75 um polystyrene sphere in
// water at 0.447 um, the standard scenario used throughout the tests.
func testAB(t *testing.T) mie.AB {
	t.Helper()
	ab, err := mie.Coefficients(0.75, complex(1.58, 0.0001), complex(1.339, 0), 0.447)
	if err != nil {
		t.Fatalf("Coefficients returned error: %v", err)
	}
	return ab
}

// testWavelength is the illumination wavelength in pixels for the
// standard scenario (vacuum wavelength over medium index over pitch).
const testWavelength = 0.447 / 1.339 / 0.135

// gridPoints returns an n by n grid of point coordinates centered on
// the origin with the given pixel step. n must be odd so the grid is
// exactly symmetric.
func gridPoints(n int, step float64) (xs, ys []float64) {
	xs = make([]float64, 0, n*n)
	ys = make([]float64, 0, n*n)
	c := (n - 1) / 2
	for iy := 0; iy < n; iy++ {
		for ix := 0; ix < n; ix++ {
			xs = append(xs, float64(ix-c)*step)
			ys = append(ys, float64(iy-c)*step)
		}
	}
	return xs, ys
}

// maxAbs returns the largest component magnitude in the field.
func maxAbs(f Field) float64 {
	m := 0.0
	for _, s := range [][]complex128{f.X, f.Y, f.Z} {
		for _, v := range s {
			if a := cmplx.Abs(v); a > m {
				m = a
			}
		}
	}
	return m
}

// TestEvaluateWorkerCountInvariance verifies that the partitioning of
// points across goroutines never changes the result, including when
// there are more workers than points.
func TestEvaluateWorkerCountInvariance(t *testing.T) {
	ab := testAB(t)
	xs, ys := gridPoints(21, 1)

	ref, err := NewEvaluator(1).Evaluate(xs, ys, 100, ab, testWavelength)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	for _, workers := range []int{2, 4, 7} {
		got, err := NewEvaluator(workers).Evaluate(xs, ys, 100, ab, testWavelength)
		if err != nil {
			t.Fatalf("Evaluate with %d workers returned error: %v", workers, err)
		}
		if !cmplxs.Equal(got.X, ref.X) || !cmplxs.Equal(got.Y, ref.Y) || !cmplxs.Equal(got.Z, ref.Z) {
			t.Errorf("Expected bit-identical field with %d workers", workers)
		}
	}

	// More workers than points.
	few, err := NewEvaluator(8).Evaluate(xs[:3], ys[:3], 100, ab, testWavelength)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if !cmplxs.Equal(few.X, ref.X[:3]) {
		t.Errorf("Expected identical field with more workers than points")
	}
}

// TestEvaluateDeterminism verifies bit-identical results on repeated
// identical calls.
func TestEvaluateDeterminism(t *testing.T) {
	ab := testAB(t)
	xs, ys := gridPoints(11, 2)
	e := NewEvaluator(4)

	f1, err := e.Evaluate(xs, ys, 100, ab, testWavelength)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	f2, err := e.Evaluate(xs, ys, 100, ab, testWavelength)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if !cmplxs.Equal(f1.X, f2.X) || !cmplxs.Equal(f1.Y, f2.Y) || !cmplxs.Equal(f1.Z, f2.Z) {
		t.Errorf("Expected bit-identical field across calls")
	}
}

// closeC reports whether two complex values agree to the given relative
// tolerance.
func closeC(a, b complex128, tol float64) bool {
	return cmplx.Abs(a-b) <= tol*(cmplx.Abs(a)+cmplx.Abs(b))+1e-15
}

// TestEvaluateMirrorSymmetry verifies the exact parities of the field
// under in-plane mirrorings for x-polarized illumination: Ex is even
// under both mirrors, Ey flips under either one, and Ez follows the x
// mirror only.
func TestEvaluateMirrorSymmetry(t *testing.T) {
	ab := testAB(t)
	xs := []float64{7, -7, 7, -7}
	ys := []float64{5, 5, -5, -5}

	f, err := NewEvaluator(1).Evaluate(xs, ys, 100, ab, testWavelength)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}

	const tol = 1e-9
	// x mirror: (7,5) against (-7,5).
	if !closeC(f.X[0], f.X[1], tol) {
		t.Errorf("Ex not even under x mirror: %v vs %v", f.X[0], f.X[1])
	}
	if !closeC(f.Y[0], -f.Y[1], tol) {
		t.Errorf("Ey not odd under x mirror: %v vs %v", f.Y[0], f.Y[1])
	}
	if !closeC(f.Z[0], -f.Z[1], tol) {
		t.Errorf("Ez not odd under x mirror: %v vs %v", f.Z[0], f.Z[1])
	}
	// y mirror: (7,5) against (7,-5).
	if !closeC(f.X[0], f.X[2], tol) {
		t.Errorf("Ex not even under y mirror: %v vs %v", f.X[0], f.X[2])
	}
	if !closeC(f.Y[0], -f.Y[2], tol) {
		t.Errorf("Ey not odd under y mirror: %v vs %v", f.Y[0], f.Y[2])
	}
	if !closeC(f.Z[0], f.Z[2], tol) {
		t.Errorf("Ez not even under y mirror: %v vs %v", f.Z[0], f.Z[2])
	}
	// Point reflection: (7,5) against (-7,-5).
	if !closeC(f.X[0], f.X[3], tol) || !closeC(f.Y[0], f.Y[3], tol) || !closeC(f.Z[0], -f.Z[3], tol) {
		t.Errorf("Wrong parity under point reflection")
	}
}

// TestEvaluateFarFieldDecay verifies that the scattered amplitude
// shrinks with distance from the sphere.
func TestEvaluateFarFieldDecay(t *testing.T) {
	ab := testAB(t)
	xs, ys := gridPoints(11, 2)
	e := NewEvaluator(2)

	near, err := e.Evaluate(xs, ys, 100, ab, testWavelength)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	far, err := e.Evaluate(xs, ys, 200, ab, testWavelength)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}

	nearMax, farMax := maxAbs(near), maxAbs(far)
	if nearMax == 0 {
		t.Fatalf("Expected a nonzero scattered field at z=100")
	}
	if farMax >= nearMax {
		t.Errorf("Expected the field to decay with distance, got %g at z=100 and %g at z=200", nearMax, farMax)
	}
}

// TestEvaluateDegenerateOrigin verifies that a point on the sphere
// center surfaces as a degeneracy error instead of silent NaNs.
func TestEvaluateDegenerateOrigin(t *testing.T) {
	ab := testAB(t)
	_, err := NewEvaluator(1).Evaluate([]float64{0, 1}, []float64{0, 0}, 0, ab, testWavelength)
	if err == nil {
		t.Fatalf("Expected error for a point at the sphere center, got nil")
	}
	if !errors.Is(err, mie.ErrNumericDegeneracy) {
		t.Errorf("Expected ErrNumericDegeneracy, got %v", err)
	}
}

// TestEvaluateInvalidWavelength verifies wavelength validation.
func TestEvaluateInvalidWavelength(t *testing.T) {
	ab := testAB(t)
	for _, wl := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := NewEvaluator(1).Evaluate([]float64{1}, []float64{1}, 100, ab, wl)
		if err == nil {
			t.Errorf("Expected error for wavelength %v, got nil", wl)
			continue
		}
		if !errors.Is(err, mie.ErrInvalidParameter) {
			t.Errorf("Expected ErrInvalidParameter for wavelength %v, got %v", wl, err)
		}
	}
}

// TestEvaluateLengthMismatchPanics verifies that mismatched coordinate
// slices fail fast as a contract violation.
func TestEvaluateLengthMismatchPanics(t *testing.T) {
	ab := testAB(t)
	defer func() {
		if recover() == nil {
			t.Errorf("Expected panic for mismatched coordinate lengths")
		}
	}()
	_, _ = NewEvaluator(1).Evaluate([]float64{1, 2}, []float64{1}, 100, ab, testWavelength)
}

// TestEvaluateEmptyPoints verifies the zero-point edge case.
func TestEvaluateEmptyPoints(t *testing.T) {
	ab := testAB(t)
	f, err := NewEvaluator(4).Evaluate(nil, nil, 100, ab, testWavelength)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if len(f.X) != 0 || len(f.Y) != 0 || len(f.Z) != 0 {
		t.Errorf("Expected empty field for empty input, got %d points", len(f.X))
	}
}

// TestEvaluateIntoReuse verifies that EvaluateInto reuses the
// destination's backing arrays and still matches a fresh evaluation.
func TestEvaluateIntoReuse(t *testing.T) {
	ab := testAB(t)
	xs, ys := gridPoints(9, 3)
	e := NewEvaluator(3)

	var dst Field
	if err := e.EvaluateInto(&dst, xs, ys, 100, ab, testWavelength); err != nil {
		t.Fatalf("EvaluateInto returned error: %v", err)
	}
	backing := &dst.X[0]

	if err := e.EvaluateInto(&dst, xs, ys, 150, ab, testWavelength); err != nil {
		t.Fatalf("EvaluateInto returned error: %v", err)
	}
	if &dst.X[0] != backing {
		t.Errorf("Expected backing array reuse across EvaluateInto calls")
	}

	fresh, err := e.Evaluate(xs, ys, 150, ab, testWavelength)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if !cmplxs.Equal(dst.X, fresh.X) || !cmplxs.Equal(dst.Y, fresh.Y) || !cmplxs.Equal(dst.Z, fresh.Z) {
		t.Errorf("Expected EvaluateInto to match a fresh evaluation")
	}
}
