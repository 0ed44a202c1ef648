package keycalc

import (
	"math"
	"math/big"

	"github.com/zephyrtronium/bigfloat"
)

// scaleFor computes 10^places as an integer.
func scaleFor(places int) *big.Int {
	if places <= 0 {
		return big.NewInt(1)
	}
	// log2(10) < 4, so this is enough to hold 10^places exactly.
	prec := uint(places)*4 + 64
	ten := new(big.Float).SetPrec(prec).SetInt64(10)
	exp := new(big.Float).SetPrec(prec).SetInt64(int64(places))
	p := new(big.Float).SetPrec(prec)
	bigfloat.Pow(p, ten, exp)
	// The power is an integer. Snap away any error from Pow.
	p.Add(p, big.NewFloat(0.5))
	i, _ := p.Int(nil)
	return i
}

// round rounds x to the nearest multiple of 1/scale, with ties away from zero,
// and converts it to the nearest float64. The result is never -0. If the
// rounded value is too large for a float64, the result is an infinity.
func round(x *big.Float, scale *big.Int) float64 {
	s := new(big.Float).SetInt(scale)
	y := new(big.Float).SetPrec(x.Prec() + uint(scale.BitLen()) + 1)
	y.Mul(x, s)
	half := big.NewFloat(0.5)
	if y.Signbit() {
		half.Neg(half)
	}
	y.Add(y, half)
	// Int truncates toward zero.
	i, _ := y.Int(nil)
	f, _ := new(big.Rat).SetFrac(i, scale).Float64()
	return f
}

// finite reports whether f is neither infinite nor NaN.
func finite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}
