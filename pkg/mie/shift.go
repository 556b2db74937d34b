package mie

// Shift rotates a complex sequence by steps slots with modular
// wrap-around and returns the result as a fresh slice; the input is not
// modified. Positive steps move elements toward higher indices, so
// after a shift by one the element previously at the last index sits at
// index 0 and every other element at its old index plus one. Negative
// steps rotate the other way.
//
// The coefficient solver shifts the Riccati-Bessel sequences by one to
// align each order's value with the previous order's in the closed-form
// coefficient ratios.
func Shift(a []complex128, steps int) []complex128 {
	n := len(a)
	b := make([]complex128, n)
	if n == 0 {
		return b
	}
	for i := range b {
		b[i] = a[((i-steps)%n+n)%n]
	}
	return b
}
