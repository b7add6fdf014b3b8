// Copyright © 2021 Io FinNet Group, Inc.

package int

import (
	"math/big"
)

// squaresMod64[r] is true when r is a quadratic residue modulo 64.
// Only 12 of the 64 residues qualify, so most non-squares are rejected before any root is taken.
var squaresMod64 [64]bool

func init() {
	for i := 0; i < 64; i++ {
		squaresMod64[(i*i)%64] = true
	}
}

// Sqrt returns floor(sqrt(x)) for x >= 0 and nil for negative x.
func Sqrt(x *big.Int) *big.Int {
	if x == nil || x.Sign() < 0 {
		return nil
	}
	s := new(big.Int).Sqrt(x)
	// floor root satisfies s^2 <= x < (s+1)^2
	sq := new(big.Int).Mul(s, s)
	for sq.Cmp(x) > 0 {
		s.Sub(s, one)
		sq.Mul(s, s)
	}
	next := new(big.Int).Add(s, one)
	for sq.Mul(next, next).Cmp(x) <= 0 {
		s.Set(next)
		next.Add(next, one)
	}
	return s
}

// ExactSqrt returns (s, true) when x = s^2, and (nil, false) otherwise.
func ExactSqrt(x *big.Int) (*big.Int, bool) {
	if x == nil || x.Sign() < 0 {
		return nil, false
	}
	var low uint
	if words := x.Bits(); len(words) > 0 {
		low = uint(words[0]) & 63
	}
	if !squaresMod64[low] {
		return nil, false
	}
	s := Sqrt(x)
	if new(big.Int).Mul(s, s).Cmp(x) != 0 {
		return nil, false
	}
	return s, true
}

var one = big.NewInt(1)
