package filter

import "fmt"

// CentralDifference is a stateful finite-difference filter: fed a stream of
// evenly-spaced samples, it reports the D-th derivative using a symmetric
// N-point stencil once the ring buffer has filled, with the derivative at
// step k attributed to the center of the window, (k-(N-1)/2)*h.
//
// Coefficients come from a numeric Fornberg-style solve of the Vandermonde
// system built from the stencil offsets (Gaussian elimination) rather than
// a hand-tabulated table per (D, N) pair, so the
// stencil size and derivative order are runtime parameters instead of
// compile-time template arguments.
type CentralDifference struct {
	derivative int
	stencil    int
	h          float64
	coeffs     []float64
	buf        []float64
	filled     int
	next       int
}

// NewCentralDifference constructs a filter for the given derivative order
// and (odd) stencil size, sampled at spacing h.
func NewCentralDifference(derivative, stencil int, h float64) (*CentralDifference, error) {
	if stencil%2 == 0 || stencil < 3 {
		return nil, fmt.Errorf("stencil must be odd and >= 3, got %d", stencil)
	}
	if derivative < 1 || derivative >= stencil {
		return nil, fmt.Errorf("derivative order %d not representable with stencil %d", derivative, stencil)
	}
	coeffs, err := centralDifferenceCoefficients(derivative, stencil, h)
	if err != nil {
		return nil, err
	}
	return &CentralDifference{
		derivative: derivative,
		stencil:    stencil,
		h:          h,
		coeffs:     coeffs,
		buf:        make([]float64, stencil),
	}, nil
}

// Calculate pushes sample into the ring buffer and, once stencil samples
// have been seen, returns the estimated derivative centered on the middle
// of the window. Returns 0 while the buffer is still filling.
func (c *CentralDifference) Calculate(sample float64) float64 {
	c.buf[c.next] = sample
	c.next = (c.next + 1) % c.stencil
	if c.filled < c.stencil {
		c.filled++
	}
	if c.filled < c.stencil {
		return 0
	}

	var acc float64
	// buf[c.next] is the oldest sample, i.e. the start of the window in
	// chronological order.
	for i := 0; i < c.stencil; i++ {
		idx := (c.next + i) % c.stencil
		acc += c.coeffs[i] * c.buf[idx]
	}
	return acc
}

// centralDifferenceCoefficients solves for the weights w such that
// sum_i w[i] * f(x0 + offset[i]*h) approximates f^(derivative)(x0), where
// offset ranges symmetrically over -(stencil-1)/2 .. (stencil-1)/2. This is
// Fornberg's method specialized to a single evaluation point and a single
// requested derivative order: build the Vandermonde-like system from the
// Taylor coefficients of each offset and solve for the weight vector whose
// inner product with the Taylor expansions isolates the requested order.
func centralDifferenceCoefficients(derivative, stencil int, h float64) ([]float64, error) {
	half := (stencil - 1) / 2
	offsets := make([]float64, stencil)
	for i := range offsets {
		offsets[i] = float64(i - half)
	}

	// A[j][i] = offsets[i]^j / j!  — row j picks out the j-th derivative
	// when dotted with the weight vector.
	a := make([][]float64, stencil)
	for j := range a {
		a[j] = make([]float64, stencil)
		fact := factorial(j)
		for i, off := range offsets {
			a[j][i] = pow(off, j) / fact
		}
	}

	// Right-hand side: e_derivative, scaled by h^-derivative once solved.
	b := make([]float64, stencil)
	b[derivative] = 1

	w, err := solveLinearSystem(a, b)
	if err != nil {
		return nil, fmt.Errorf("central difference coefficients: %w", err)
	}

	scale := 1.0
	for i := 0; i < derivative; i++ {
		scale /= h
	}
	for i := range w {
		w[i] *= scale
	}
	return w, nil
}

func factorial(n int) float64 {
	f := 1.0
	for i := 2; i <= n; i++ {
		f *= float64(i)
	}
	return f
}

func pow(base float64, n int) float64 {
	r := 1.0
	for i := 0; i < n; i++ {
		r *= base
	}
	return r
}

// solveLinearSystem solves a*x = b via Gaussian elimination with partial
// pivoting. a is square and modified in place (on a copy).
func solveLinearSystem(a [][]float64, b []float64) ([]float64, error) {
	n := len(b)
	m := make([][]float64, n)
	for i := range a {
		row := make([]float64, n+1)
		copy(row, a[i])
		row[n] = b[i]
		m[i] = row
	}

	for col := 0; col < n; col++ {
		pivot := col
		best := abs(m[col][col])
		for r := col + 1; r < n; r++ {
			if v := abs(m[r][col]); v > best {
				pivot, best = r, v
			}
		}
		if best == 0 {
			return nil, fmt.Errorf("singular stencil system")
		}
		m[col], m[pivot] = m[pivot], m[col]

		for r := col + 1; r < n; r++ {
			factor := m[r][col] / m[col][col]
			for c := col; c <= n; c++ {
				m[r][c] -= factor * m[col][c]
			}
		}
	}

	x := make([]float64, n)
	for r := n - 1; r >= 0; r-- {
		sum := m[r][n]
		for c := r + 1; c < n; c++ {
			sum -= m[r][c] * x[c]
		}
		x[r] = sum / m[r][r]
	}
	return x, nil
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
