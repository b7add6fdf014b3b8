// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package common

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"github.com/pkg/errors"
)

const (
	mustGetRandomIntMaxBits = 5000
)

var (
	zero = big.NewInt(0)
	one  = big.NewInt(1)
	two  = big.NewInt(2)
)

// MustGetRandomInt panics if it is unable to gather entropy from `rand.Reader` or when `bits` is <= 0
func MustGetRandomInt(bits int) *big.Int {
	if bits <= 0 || mustGetRandomIntMaxBits < bits {
		panic(fmt.Errorf("MustGetRandomInt: bits should be positive, non-zero and less than %d", mustGetRandomIntMaxBits))
	}
	// Max random value e.g. 2^256 - 1
	max := new(big.Int)
	max = max.Exp(two, big.NewInt(int64(bits)), nil).Sub(max, one)

	// Generate cryptographically strong pseudo-random int between 0 - max
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		panic(errors.Wrap(err, "rand.Int failure in MustGetRandomInt!"))
	}
	return n
}

// GetRandomPositiveInt returns a uniform value in [1, upper), or nil when upper < 2.
func GetRandomPositiveInt(upper *big.Int) *big.Int {
	if upper == nil || upper.Cmp(one) != 1 {
		return nil
	}
	var try *big.Int
	for {
		try = MustGetRandomInt(upper.BitLen())
		if try.Cmp(upper) < 0 && try.Cmp(zero) > 0 {
			break
		}
	}
	return try
}

// GetRandomPrimeInt returns a prime of exactly `bits` bits read from rand.Reader.
func GetRandomPrimeInt(bits int) *big.Int {
	p, err := GetRandomPrimeIntFrom(rand.Reader, bits)
	if err != nil {
		return nil
	}
	return p
}

// GetRandomPrimeIntFrom is GetRandomPrimeInt over an arbitrary entropy source.
func GetRandomPrimeIntFrom(reader io.Reader, bits int) (*big.Int, error) {
	if bits < 2 {
		return nil, fmt.Errorf("GetRandomPrimeInt: bits must be >= 2, got %d", bits)
	}
	try, err := rand.Prime(reader, bits)
	if err != nil {
		return nil, errors.Wrapf(err, "rand.Prime(%d)", bits)
	}
	if try.Cmp(zero) == 0 {
		return nil, errors.New("rand.Prime returned zero")
	}
	return try, nil
}
