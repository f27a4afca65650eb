package curve

import "math/big"

// ln2 to 18 decimals. Used to evaluate 0.5^x as exp(-x*ln2).
var ln2 = MustDec("0.693147180559945309")

// halfPowCutoff: beyond this exponent 0.5^x underflows 18 decimals anyway.
var halfPowCutoff = NewDec(60)

// HalfPow computes 0.5^arg for a non-negative argument in fixed point.
// The integer part is an exact right shift; the fractional part is
// exp(-f*ln2) evaluated by Taylor series, which converges fast because the
// series argument stays within (-ln2, 0]. Deterministic, no floats.
func HalfPow(arg Dec) Dec {
	if arg.IsNeg() {
		panic("negative exponent in HalfPow")
	}
	if arg.GTE(halfPowCutoff) {
		return ZeroDec()
	}

	n := arg.Floor()
	frac := arg.Sub(DecFromRaw(new(big.Int).Mul(n, decUnit)))

	res := expSeries(frac.Mul(ln2).Neg())
	if n.Sign() > 0 {
		shifted := new(big.Int).Rsh(res.raw(), uint(n.Int64()))
		res = DecFromRaw(shifted)
	}
	return res
}

// expSeries evaluates e^x by Taylor expansion for |x| < 1.
func expSeries(x Dec) Dec {
	sum := OneDec()
	term := OneDec()
	for k := int64(1); k <= 24; k++ {
		term = term.Mul(x).QuoInt64(k)
		if term.IsZero() {
			break
		}
		sum = sum.Add(term)
	}
	return sum
}
