// Package regression solves small ordinary-least-squares problems by the
// normal equations, the same shape of linear algebra used elsewhere in the
// retrieved pack for polynomial and state-space fits (gonum/mat-backed).
package regression

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrSingularNormalMatrix is returned when XtX is not invertible.
var ErrSingularNormalMatrix = errors.New("singular normal matrix")

// Result is the outcome of an OLS solve.
type Result struct {
	Beta    []float64
	RMSE    float64
	RSquare float64
}

// Solve fits beta = (XtX)^-1 Xty for the over-determined system x*beta = y.
func Solve(x *mat.Dense, y *mat.VecDense) (Result, error) {
	n, k := x.Dims()
	if yn := y.Len(); yn != n {
		return Result{}, fmt.Errorf("regression: x has %d rows but y has %d entries", n, yn)
	}

	var xtx mat.Dense
	xtx.Mul(x.T(), x)

	var xtxInv mat.Dense
	if err := xtxInv.Inverse(&xtx); err != nil {
		return Result{}, fmt.Errorf("regression: %w: %w", ErrSingularNormalMatrix, err)
	}

	var xty mat.VecDense
	xty.MulVec(x.T(), y)

	var beta mat.VecDense
	beta.MulVec(&xtxInv, &xty)

	b := make([]float64, k)
	for i := 0; i < k; i++ {
		b[i] = beta.AtVec(i)
	}

	var yhat mat.VecDense
	yhat.MulVec(x, &beta)

	var ssRes, ssTot, ySum float64
	for i := 0; i < n; i++ {
		ySum += y.AtVec(i)
	}
	yMean := ySum / float64(n)
	for i := 0; i < n; i++ {
		resid := y.AtVec(i) - yhat.AtVec(i)
		ssRes += resid * resid
		dm := y.AtVec(i) - yMean
		ssTot += dm * dm
	}

	rmse := math.Sqrt(ssRes / float64(n))
	rsq := 1.0
	if ssTot != 0 {
		rsq = 1 - ssRes/ssTot
	}

	return Result{Beta: b, RMSE: rmse, RSquare: rsq}, nil
}
