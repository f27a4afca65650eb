package curve

import (
	"fmt"
	"math/big"
	"strings"
)

// DecPrecision is the number of fractional decimal digits carried by Dec.
const DecPrecision = 18

var (
	decUnit   = new(big.Int).Exp(big.NewInt(10), big.NewInt(DecPrecision), nil)
	decUnitSq = new(big.Int).Mul(decUnit, decUnit)
)

// Dec is a signed fixed-point decimal with 18 fractional digits, backed by
// math/big. All pool math runs on Dec; there are no floats in the
// production path, so identical inputs always produce identical results.
type Dec struct {
	i *big.Int
}

// ZeroDec returns 0.
func ZeroDec() Dec { return Dec{i: new(big.Int)} }

// OneDec returns 1.
func OneDec() Dec { return Dec{i: new(big.Int).Set(decUnit)} }

// NewDec returns whole as a Dec.
func NewDec(whole int64) Dec {
	return Dec{i: new(big.Int).Mul(big.NewInt(whole), decUnit)}
}

// DecFromRaw wraps an already-scaled raw value (value = raw / 10^18).
func DecFromRaw(raw *big.Int) Dec {
	return Dec{i: new(big.Int).Set(raw)}
}

// DecFromRatio returns num/den.
func DecFromRatio(num, den int64) (Dec, error) {
	if den == 0 {
		return Dec{}, fmt.Errorf("decimal ratio: division by zero")
	}
	n := new(big.Int).Mul(big.NewInt(num), decUnit)
	return Dec{i: n.Quo(n, big.NewInt(den))}, nil
}

// DecFromInt converts a raw integer token amount with the given number of
// decimal places into a Dec. A precision above 18 is rejected.
func DecFromInt(amount *big.Int, precision uint8) (Dec, error) {
	if precision > DecPrecision {
		return Dec{}, fmt.Errorf("precision %d exceeds %d", precision, DecPrecision)
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(DecPrecision-precision)), nil)
	return Dec{i: scale.Mul(scale, amount)}, nil
}

// DecFromString parses a decimal string such as "0.000145" or "-2.5".
func DecFromString(s string) (Dec, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Dec{}, fmt.Errorf("empty decimal string")
	}
	neg := false
	if s[0] == '-' {
		neg = true
		s = s[1:]
	}
	whole, frac := s, ""
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		whole, frac = s[:idx], s[idx+1:]
	}
	if len(frac) > DecPrecision {
		return Dec{}, fmt.Errorf("decimal %q has more than %d fractional digits", s, DecPrecision)
	}
	frac += strings.Repeat("0", DecPrecision-len(frac))
	if whole == "" {
		whole = "0"
	}
	raw, ok := new(big.Int).SetString(whole+frac, 10)
	if !ok {
		return Dec{}, fmt.Errorf("invalid decimal %q", s)
	}
	if neg {
		raw.Neg(raw)
	}
	return Dec{i: raw}, nil
}

// MustDec parses s and panics on error. Intended for constants.
func MustDec(s string) Dec {
	d, err := DecFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Raw returns a copy of the underlying scaled integer.
func (d Dec) Raw() *big.Int {
	if d.i == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(d.i)
}

func (d Dec) raw() *big.Int {
	if d.i == nil {
		return new(big.Int)
	}
	return d.i
}

// ToInt truncates the Dec to a raw integer amount with the given number of
// decimal places. Negative values are rejected: a negative amount never
// leaves the engine.
func (d Dec) ToInt(precision uint8) (*big.Int, error) {
	if precision > DecPrecision {
		return nil, fmt.Errorf("precision %d exceeds %d", precision, DecPrecision)
	}
	if d.IsNeg() {
		return nil, fmt.Errorf("cannot convert negative decimal %s to integer amount", d)
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(DecPrecision-precision)), nil)
	return new(big.Int).Quo(d.raw(), scale), nil
}

func (d Dec) Add(o Dec) Dec { return Dec{i: new(big.Int).Add(d.raw(), o.raw())} }
func (d Dec) Sub(o Dec) Dec { return Dec{i: new(big.Int).Sub(d.raw(), o.raw())} }

// Mul returns d*o with truncating division by the scale unit.
func (d Dec) Mul(o Dec) Dec {
	p := new(big.Int).Mul(d.raw(), o.raw())
	return Dec{i: p.Quo(p, decUnit)}
}

// Quo returns d/o, truncated. Division by zero is a programming error and
// panics like integer division would.
func (d Dec) Quo(o Dec) Dec {
	n := new(big.Int).Mul(d.raw(), decUnit)
	return Dec{i: n.Quo(n, o.raw())}
}

// QuoInt64 divides by a plain integer.
func (d Dec) QuoInt64(o int64) Dec {
	return Dec{i: new(big.Int).Quo(d.raw(), big.NewInt(o))}
}

// MulInt64 multiplies by a plain integer.
func (d Dec) MulInt64(o int64) Dec {
	return Dec{i: new(big.Int).Mul(d.raw(), big.NewInt(o))}
}

// Diff returns |d-o|.
func (d Dec) Diff(o Dec) Dec {
	r := new(big.Int).Sub(d.raw(), o.raw())
	return Dec{i: r.Abs(r)}
}

// Abs returns |d|.
func (d Dec) Abs() Dec { return Dec{i: new(big.Int).Abs(d.raw())} }

// Neg returns -d.
func (d Dec) Neg() Dec { return Dec{i: new(big.Int).Neg(d.raw())} }

// Sqrt returns the square root of d, truncated to 18 decimals.
// Negative input panics; callers guard it the same way they guard division.
func (d Dec) Sqrt() Dec {
	if d.IsNeg() {
		panic("square root of negative decimal")
	}
	// sqrt(raw/1e18)*1e18 == isqrt(raw*1e18)
	n := new(big.Int).Mul(d.raw(), decUnit)
	return Dec{i: n.Sqrt(n)}
}

func (d Dec) Cmp(o Dec) int  { return d.raw().Cmp(o.raw()) }
func (d Dec) Equal(o Dec) bool { return d.Cmp(o) == 0 }
func (d Dec) LT(o Dec) bool  { return d.Cmp(o) < 0 }
func (d Dec) LTE(o Dec) bool { return d.Cmp(o) <= 0 }
func (d Dec) GT(o Dec) bool  { return d.Cmp(o) > 0 }
func (d Dec) GTE(o Dec) bool { return d.Cmp(o) >= 0 }
func (d Dec) IsZero() bool   { return d.raw().Sign() == 0 }
func (d Dec) IsNeg() bool    { return d.raw().Sign() < 0 }
func (d Dec) IsPos() bool    { return d.raw().Sign() > 0 }

// Floor returns the integer part of d as an int64-capable Dec floor.
func (d Dec) Floor() *big.Int {
	q, r := new(big.Int).QuoRem(d.raw(), decUnit, new(big.Int))
	if q.Sign() < 0 && r.Sign() != 0 {
		q.Sub(q, big.NewInt(1))
	}
	return q
}

// String renders the decimal with trailing fractional zeros trimmed.
func (d Dec) String() string {
	raw := d.raw()
	neg := raw.Sign() < 0
	abs := new(big.Int).Abs(raw)
	q, r := new(big.Int).QuoRem(abs, decUnit, new(big.Int))
	out := q.String()
	if r.Sign() != 0 {
		frac := fmt.Sprintf("%018s", r.String())
		frac = strings.TrimRight(frac, "0")
		out += "." + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}

// MarshalJSON encodes the decimal as a string to keep storage readable and
// precision-exact.
func (d Dec) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts the string form produced by MarshalJSON.
func (d *Dec) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := DecFromString(s)
	if err != nil {
		return err
	}
	d.i = parsed.i
	return nil
}
