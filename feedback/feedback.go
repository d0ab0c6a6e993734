package feedback

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Mode selects which closed-loop synthesis technique computes the feedback
// gains from the identified plant.
type Mode int

const (
	PolePlacement Mode = iota
	LQR
)

// LQRWeights are the diagonal state/effort weights for the discrete LQR
// synthesis: Q = diag(1/qPos^2, 1/qVel^2), R = 1/qEffort^2.
type LQRWeights struct {
	QPos    float64
	QVel    float64
	QEffort float64
}

// PlantGains is the identified feedforward plant in the (Kv, Ka) shape
// FeedbackAnalysis consumes, independent of which mechanism type produced
// it.
type PlantGains struct {
	Kv float64
	Ka float64
}

// Gains is the synthesized feedback controller: proportional and
// derivative terms. Kd is zero for a velocity-loop result.
type Gains struct {
	Kp float64
	Kd float64
}

func (p PlantGains) validate() error {
	if p.Ka <= 0 || p.Kv <= 0 {
		return fmt.Errorf("Kv=%v Ka=%v: %w", p.Kv, p.Ka, ErrNonPhysicalPlant)
	}
	return nil
}

// CalculatePositionFeedbackGains synthesizes (Kp, Kd) for a position-loop
// controller driving a plant characterized by (Kv, Ka), scaled to encoder
// ticks if encoderFactor != 1 (gearing * cpr * unitsPerRotation).
func CalculatePositionFeedbackGains(preset Preset, mode Mode, lqr LQRWeights, plant PlantGains, encoderFactor float64) (Gains, error) {
	if err := plant.validate(); err != nil {
		return Gains{}, err
	}

	a := mat.NewDense(2, 2, []float64{
		0, 1,
		0, -plant.Kv / plant.Ka,
	})
	b := mat.NewDense(2, 1, []float64{
		0,
		1 / plant.Ka,
	})

	ad, bd := discretize(a, b, preset.Period.Seconds())

	var k *mat.Dense
	var err error
	switch mode {
	case LQR:
		q := mat.NewDense(2, 2, []float64{
			1 / (lqr.QPos * lqr.QPos), 0,
			0, 1 / (lqr.QVel * lqr.QVel),
		})
		r := mat.NewDense(1, 1, []float64{1 / (lqr.QEffort * lqr.QEffort)})
		k, err = discreteLQR(ad, bd, q, r)
	default:
		k, err = polePlacement(ad, bd, characteristicPole(preset))
	}
	if err != nil {
		return Gains{}, err
	}

	kp, kd := k.At(0, 0), k.At(0, 1)
	if encoderFactor != 0 && encoderFactor != 1 {
		kp *= encoderFactor
		kd *= encoderFactor
	}
	return Gains{Kp: kp, Kd: kd}, nil
}

// CalculateVelocityFeedbackGains synthesizes Kp for a velocity-loop
// controller; Kd is always zero since the plant is first-order.
func CalculateVelocityFeedbackGains(preset Preset, mode Mode, lqr LQRWeights, plant PlantGains, encoderFactor float64) (Gains, error) {
	if err := plant.validate(); err != nil {
		return Gains{}, err
	}

	a := mat.NewDense(1, 1, []float64{-plant.Kv / plant.Ka})
	b := mat.NewDense(1, 1, []float64{1 / plant.Ka})
	ad, bd := discretize(a, b, preset.Period.Seconds())

	var k *mat.Dense
	var err error
	switch mode {
	case LQR:
		q := mat.NewDense(1, 1, []float64{1 / (lqr.QVel * lqr.QVel)})
		r := mat.NewDense(1, 1, []float64{1 / (lqr.QEffort * lqr.QEffort)})
		k, err = discreteLQR(ad, bd, q, r)
	default:
		k, err = polePlacement(ad, bd, characteristicPole(preset))
	}
	if err != nil {
		return Gains{}, err
	}

	kp := k.At(0, 0)
	if encoderFactor != 0 && encoderFactor != 1 {
		kp *= encoderFactor
	}
	return Gains{Kp: kp, Kd: 0}, nil
}

// characteristicWn is the fixed continuous decay rate (rad/s) pole
// placement targets; characteristicPole maps it through each preset's own
// sample period, so a preset with a longer loop period places its discrete
// pole closer to the origin (faster relative decay per tick) than one with
// a shorter period targeting the same continuous response.
const characteristicWn = 2.0

// characteristicPole picks a single critically-damped discrete pole by
// mapping characteristicWn through preset's sampling period via the
// standard z = exp(-wn*T) correspondence.
func characteristicPole(preset Preset) float64 {
	return math.Exp(-characteristicWn * preset.Period.Seconds())
}

// discretize converts a continuous (A, B) pair to the zero-order-hold
// discrete (Ad, Bd) pair over sample period t, via the augmented matrix
// exponential: exp([[A*t, B*t], [0, 0]]) = [[Ad, Bd], [0, I]].
func discretize(a, b *mat.Dense, t float64) (ad, bd *mat.Dense) {
	n, _ := a.Dims()
	_, m := b.Dims()

	var aScaled, bScaled mat.Dense
	aScaled.Scale(t, a)
	bScaled.Scale(t, b)

	aug := mat.NewDense(n+m, n+m, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			aug.Set(i, j, aScaled.At(i, j))
		}
		for j := 0; j < m; j++ {
			aug.Set(i, n+j, bScaled.At(i, j))
		}
	}

	var expM mat.Dense
	expM.Exp(aug)

	adOut := mat.NewDense(n, n, nil)
	bdOut := mat.NewDense(n, m, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			adOut.Set(i, j, expM.At(i, j))
		}
		for j := 0; j < m; j++ {
			bdOut.Set(i, j, expM.At(i, n+j))
		}
	}
	return adOut, bdOut
}

// polePlacement computes the state feedback gain K (1 x n) placing the
// closed-loop poles of (Ad - Bd*K) at the repeated root z via Ackermann's
// formula, restricted to the single-input, <=2-state systems this package
// builds.
func polePlacement(ad, bd *mat.Dense, z float64) (*mat.Dense, error) {
	n, _ := ad.Dims()

	ctrb := mat.NewDense(n, n, nil)
	col := mat.NewDense(n, 1, nil)
	col.Copy(bd)
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			ctrb.Set(i, j, col.At(i, 0))
		}
		if j < n-1 {
			var next mat.Dense
			next.Mul(ad, col)
			col = &next
		}
	}

	var ctrbInv mat.Dense
	if err := ctrbInv.Inverse(ctrb); err != nil {
		return nil, fmt.Errorf("feedback: controllability matrix is singular: %w", err)
	}

	// phi(Ad) = (Ad - z*I)^n, the desired characteristic polynomial with
	// an n-fold root at z, evaluated at Ad (Cayley-Hamilton).
	phi := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		phi.Set(i, i, 1)
	}
	shifted := mat.NewDense(n, n, nil)
	shifted.Copy(ad)
	for i := 0; i < n; i++ {
		shifted.Set(i, i, shifted.At(i, i)-z)
	}
	for i := 0; i < n; i++ {
		var next mat.Dense
		next.Mul(phi, shifted)
		phi.Copy(&next)
	}

	last := mat.NewVecDense(n, nil)
	last.SetVec(n-1, 1)

	var row mat.VecDense
	row.MulVec(ctrbInv.T(), last)

	var k mat.Dense
	k.Mul(row.T(), phi)
	return &k, nil
}

// discreteLQR solves the discrete-time LQR gain for (Ad, Bd, Q, R) by
// iterating the discrete algebraic Riccati equation to a fixed point:
// P = Q + Ad^T P Ad - Ad^T P Bd (R + Bd^T P Bd)^-1 Bd^T P Ad.
func discreteLQR(ad, bd, q, r *mat.Dense) (*mat.Dense, error) {
	n, _ := ad.Dims()
	p := mat.NewDense(n, n, nil)
	p.Copy(q)

	const maxIter = 500
	const tol = 1e-12

	for iter := 0; iter < maxIter; iter++ {
		var atp, atpa, atpb, btpb, rPlus, rPlusInv, btpa, gain, gainTerm mat.Dense
		atp.Mul(ad.T(), p)
		atpa.Mul(&atp, ad)
		atpb.Mul(&atp, bd)

		var btp mat.Dense
		btp.Mul(bd.T(), p)
		btpb.Mul(&btp, bd)
		btpa.Mul(&btp, ad)

		rPlus.Add(r, &btpb)
		if err := rPlusInv.Inverse(&rPlus); err != nil {
			return nil, fmt.Errorf("feedback: %w: %w", ErrRiccatiDidNotConverge, err)
		}

		gain.Mul(&atpb, &rPlusInv)
		gainTerm.Mul(&gain, &btpa)

		next := mat.NewDense(n, n, nil)
		next.Add(q, &atpa)
		next.Sub(next, &gainTerm)

		var diff mat.Dense
		diff.Sub(next, p)
		if normFro(&diff) < tol {
			p = next
			break
		}
		p = next
		if iter == maxIter-1 {
			return nil, ErrRiccatiDidNotConverge
		}
	}

	var btp, btpb, rPlus, rPlusInv, btpa, k mat.Dense
	btp.Mul(bd.T(), p)
	btpb.Mul(&btp, bd)
	btpa.Mul(&btp, ad)
	rPlus.Add(r, &btpb)
	if err := rPlusInv.Inverse(&rPlus); err != nil {
		return nil, fmt.Errorf("feedback: %w: %w", ErrRiccatiDidNotConverge, err)
	}
	k.Mul(&rPlusInv, &btpa)
	return &k, nil
}

func normFro(m *mat.Dense) float64 {
	r, c := m.Dims()
	var sum float64
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			sum += v * v
		}
	}
	return math.Sqrt(sum)
}
