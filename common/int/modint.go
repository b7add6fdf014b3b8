// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package int

import (
	"math/big"
	"sync/atomic"

	big_const "github.com/cronokirby/saferith"

	"github.com/iofinnet/weak-rsa/common"
)

var constantTimeIntEnabled atomic.Bool

// EnableConstantTimeArithmetic routes ModInt.Exp through saferith (experimental, slow).
// Must be called before any recovery or key generation is started.
func EnableConstantTimeArithmetic() (enabled bool) {
	constantTimeIntEnabled.Store(true)
	common.Logger.Warn("constant-time modular exponentiation enabled, recovery will be slower")
	return constantTimeIntEnabled.Load()
}

// DisableConstantTimeArithmetic restores the math/big code paths.
func DisableConstantTimeArithmetic() {
	constantTimeIntEnabled.Store(false)
}

func ConstantTimeArithmeticEnabled() bool {
	return constantTimeIntEnabled.Load()
}

// modInt is a *big.Int that performs all of its arithmetic with modular reduction.
type modInt big.Int

func ModInt(mod *big.Int) *modInt {
	i := new(big.Int).SetBytes(mod.Bytes())
	return (*modInt)(i)
}

func (mi *modInt) Add(x, y *big.Int) *big.Int {
	i := new(big.Int)
	i.Add(x, y)
	return i.Mod(i, mi.int())
}

func (mi *modInt) Sub(x, y *big.Int) *big.Int {
	i := new(big.Int)
	i.Sub(x, y)
	return i.Mod(i, mi.int())
}

func (mi *modInt) Mul(x, y *big.Int) *big.Int {
	i := new(big.Int)
	i.Mul(x, y)
	return i.Mod(i, mi.int())
}

// Exp returns x^y mod m. Negative exponents are not supported.
func (mi *modInt) Exp(x, y *big.Int) *big.Int {
	m := mi.int()
	if constantTimeIntEnabled.Load() && m.Bit(0) == 1 && y.Sign() >= 0 {
		// saferith expects a reduced base
		xr := new(big.Int).Mod(x, m)
		mod := big_const.ModulusFromBytes(m.Bytes())
		base := new(big_const.Nat).SetBig(xr, m.BitLen())
		exp := new(big_const.Nat).SetBig(y, y.BitLen())
		return new(big_const.Nat).Exp(base, exp, mod).Big()
	}
	return new(big.Int).Exp(x, y, m)
}

// Inverse returns g^-1 mod m, or nil when g is not invertible.
func (mi *modInt) Inverse(g *big.Int) *big.Int {
	return new(big.Int).ModInverse(g, mi.int())
}

func (mi *modInt) Size() int {
	return mi.int().BitLen() / 8
}

func (mi *modInt) int() *big.Int {
	return new(big.Int).Set((*big.Int)(mi))
}
