package curve

import (
	"errors"
	"fmt"
	"math/big"
)

// maxIterations caps both Newton-Raphson loops. Hitting the cap is a hard
// failure of the whole operation, never a partial result.
const maxIterations = 255

// ErrNotConverged is returned when the invariant solver fails: degenerate
// balances, or the iteration budget runs out.
var ErrNotConverged = errors.New("invariant solver did not converge")

var (
	big1     = big.NewInt(1)
	big2     = big.NewInt(2)
	big4     = big.NewInt(4)
	big100   = big.NewInt(100)
	tolScale = new(big.Int).Exp(big.NewInt(10), big.NewInt(14), nil) // relative tolerance 1e-14
	tolFloor = new(big.Int).Exp(big.NewInt(10), big.NewInt(16), nil) // absolute floor 0.01
)

// mul1Term computes unit*D/gamma * g1k0/gamma * g1k0 * unit/(4*amp),
// the shared first-derivative term of both solvers.
func mul1Term(d, gamma, g1k0, amp *big.Int) *big.Int {
	m := new(big.Int).Mul(decUnit, d)
	m.Quo(m, gamma)
	m.Mul(m, g1k0)
	m.Quo(m, gamma)
	m.Mul(m, g1k0)
	m.Mul(m, decUnit)
	ann := new(big.Int).Mul(amp, big4)
	return m.Quo(m, ann)
}

func g1k0Term(gamma, k0 *big.Int) *big.Int {
	g := new(big.Int).Add(gamma, decUnit)
	g.Sub(g, k0)
	g.Abs(g)
	return g.Add(g, big1)
}

// CalcD solves the two-asset Curve-v2 invariant for D given balances in the
// internal common unit and the current amp/gamma. The initial guess is the
// balance sum; each step applies the analytic first derivative. Returns
// ErrNotConverged for degenerate balances or when the iteration budget is
// exhausted.
func CalcD(x0, x1, amp, gamma Dec) (Dec, error) {
	x0r, x1r := x0.raw(), x1.raw()
	if x0r.Sign() <= 0 || x1r.Sign() <= 0 {
		return Dec{}, fmt.Errorf("%w: non-positive balance", ErrNotConverged)
	}
	ampR, gammaR := amp.raw(), gamma.raw()
	if ampR.Sign() <= 0 || gammaR.Sign() <= 0 {
		return Dec{}, fmt.Errorf("%w: non-positive amp or gamma", ErrNotConverged)
	}

	s := new(big.Int).Add(x0r, x1r)
	d := new(big.Int).Set(s)

	for i := 0; i < maxIterations; i++ {
		if d.Sign() <= 0 {
			return Dec{}, fmt.Errorf("%w: invariant collapsed to zero", ErrNotConverged)
		}
		dPrev := new(big.Int).Set(d)

		// K0 = 4e18 * x0/D * x1/D; 1e18 at perfect balance, smaller otherwise.
		k0 := new(big.Int).Mul(big4, decUnit)
		k0.Mul(k0, x0r)
		k0.Quo(k0, d)
		k0.Mul(k0, x1r)
		k0.Quo(k0, d)
		if k0.Sign() <= 0 {
			return Dec{}, fmt.Errorf("%w: balances too spread", ErrNotConverged)
		}

		g1k0 := g1k0Term(gammaR, k0)
		mul1 := mul1Term(d, gammaR, g1k0, ampR)

		// mul2 = 4e18*K0/g1k0
		mul2 := new(big.Int).Mul(big4, decUnit)
		mul2.Mul(mul2, k0)
		mul2.Quo(mul2, g1k0)

		negFprime := new(big.Int).Set(s)
		t := new(big.Int).Mul(s, mul2)
		negFprime.Add(negFprime, t.Quo(t, decUnit))
		t = new(big.Int).Mul(mul1, big2)
		negFprime.Add(negFprime, t.Quo(t, k0))
		t = new(big.Int).Mul(mul2, d)
		negFprime.Sub(negFprime, t.Quo(t, decUnit))
		if negFprime.Sign() <= 0 {
			return Dec{}, fmt.Errorf("%w: non-positive derivative", ErrNotConverged)
		}

		dPlus := new(big.Int).Add(negFprime, s)
		dPlus.Mul(dPlus, d)
		dPlus.Quo(dPlus, negFprime)

		dMinus := new(big.Int).Mul(d, d)
		dMinus.Quo(dMinus, negFprime)

		adj := new(big.Int).Quo(mul1, negFprime)
		adj.Mul(adj, d)
		adj.Quo(adj, decUnit)
		if k0.Cmp(decUnit) < 0 {
			t = new(big.Int).Sub(decUnit, k0)
			adj.Mul(adj, t)
			adj.Quo(adj, k0)
			dMinus.Add(dMinus, adj)
		} else {
			t = new(big.Int).Sub(k0, decUnit)
			adj.Mul(adj, t)
			adj.Quo(adj, k0)
			dMinus.Sub(dMinus, adj)
		}

		if dPlus.Cmp(dMinus) > 0 {
			d.Sub(dPlus, dMinus)
		} else {
			d.Sub(dMinus, dPlus)
			d.Quo(d, big2)
		}

		diff := new(big.Int).Sub(d, dPrev)
		diff.Abs(diff)
		diff.Mul(diff, tolScale)
		bound := tolFloor
		if d.Cmp(tolFloor) > 0 {
			bound = d
		}
		if diff.Cmp(bound) < 0 {
			return DecFromRaw(d), nil
		}
	}

	return Dec{}, fmt.Errorf("%w after %d iterations", ErrNotConverged, maxIterations)
}

// CalcY solves for the single unknown balance at index askIdx that keeps
// the invariant at D, given the other balance fixed. A second Newton loop
// with the same derivative terms as CalcD.
func CalcY(other, d, amp, gamma Dec, askIdx int) (Dec, error) {
	if askIdx != 0 && askIdx != 1 {
		return Dec{}, fmt.Errorf("ask index must be 0 or 1, got %d", askIdx)
	}
	xj := other.raw()
	dr := d.raw()
	if xj.Sign() <= 0 || dr.Sign() <= 0 {
		return Dec{}, fmt.Errorf("%w: non-positive balance or invariant", ErrNotConverged)
	}
	ampR, gammaR := amp.raw(), gamma.raw()
	if ampR.Sign() <= 0 || gammaR.Sign() <= 0 {
		return Dec{}, fmt.Errorf("%w: non-positive amp or gamma", ErrNotConverged)
	}

	// y0 = D^2 / (4*x_j), the constant-product solution.
	y := new(big.Int).Mul(dr, dr)
	y.Quo(y, new(big.Int).Mul(big4, xj))

	k0i := new(big.Int).Mul(big2, decUnit)
	k0i.Mul(k0i, xj)
	k0i.Quo(k0i, dr)

	convLimit := new(big.Int).Quo(xj, tolScale)
	if t := new(big.Int).Quo(dr, tolScale); t.Cmp(convLimit) > 0 {
		convLimit = t
	}
	if convLimit.Cmp(big100) < 0 {
		convLimit = new(big.Int).Set(big100)
	}

	for i := 0; i < maxIterations; i++ {
		if y.Sign() <= 0 {
			return Dec{}, fmt.Errorf("%w: balance collapsed to zero", ErrNotConverged)
		}
		yPrev := new(big.Int).Set(y)

		k0 := new(big.Int).Mul(k0i, y)
		k0.Mul(k0, big2)
		k0.Quo(k0, dr)
		if k0.Sign() <= 0 {
			return Dec{}, fmt.Errorf("%w: balances too spread", ErrNotConverged)
		}
		s := new(big.Int).Add(xj, y)

		g1k0 := g1k0Term(gammaR, k0)
		mul1 := mul1Term(dr, gammaR, g1k0, ampR)

		mul2 := new(big.Int).Mul(big2, decUnit)
		mul2.Mul(mul2, k0)
		mul2.Quo(mul2, g1k0)
		mul2.Add(mul2, decUnit)

		yfprime := new(big.Int).Mul(decUnit, y)
		yfprime.Add(yfprime, new(big.Int).Mul(s, mul2))
		yfprime.Add(yfprime, mul1)
		dyfprime := new(big.Int).Mul(dr, mul2)
		if yfprime.Cmp(dyfprime) < 0 {
			y = yPrev.Quo(yPrev, big2)
			continue
		}
		yfprime.Sub(yfprime, dyfprime)

		fprime := new(big.Int).Quo(yfprime, y)
		if fprime.Sign() <= 0 {
			y = yPrev.Quo(yPrev, big2)
			continue
		}

		yMinus := new(big.Int).Quo(mul1, fprime)
		yPlus := new(big.Int).Mul(decUnit, dr)
		yPlus.Add(yPlus, yfprime)
		yPlus.Quo(yPlus, fprime)
		t := new(big.Int).Mul(yMinus, decUnit)
		yPlus.Add(yPlus, t.Quo(t, k0))
		t = new(big.Int).Mul(decUnit, s)
		yMinus.Add(yMinus, t.Quo(t, fprime))

		if yPlus.Cmp(yMinus) < 0 {
			y = new(big.Int).Quo(yPrev, big2)
		} else {
			y = new(big.Int).Sub(yPlus, yMinus)
		}

		diff := new(big.Int).Sub(y, yPrev)
		diff.Abs(diff)
		bound := new(big.Int).Quo(y, tolScale)
		if bound.Cmp(convLimit) < 0 {
			bound = convLimit
		}
		if diff.Cmp(bound) < 0 {
			return DecFromRaw(y), nil
		}
	}

	return Dec{}, fmt.Errorf("%w after %d iterations", ErrNotConverged, maxIterations)
}

// GetXcp returns the constant-product-equivalent pool value used for profit
// tracking: D / (2*sqrt(priceScale)).
func GetXcp(d, priceScale Dec) Dec {
	return d.Quo(priceScale.Sqrt().MulInt64(2))
}
