// Copyright © 2021 Io FinNet Group, Inc.

package common

import (
	"math/big"

	"github.com/otiai10/primes"
)

const (
	// PrimeTestN = 15 runs BPSW plus 14 additional Miller-Rabin rounds
	PrimeTestN = 15
	// trialDivisionLimit bounds the primes used to discard composite candidates cheaply.
	trialDivisionLimit = 1000
)

// smallPrimes holds every prime below trialDivisionLimit.
var smallPrimes = GetPrimesUpTo(trialDivisionLimit)

// GetPrimesUpTo returns all prime numbers up to the given limit.
func GetPrimesUpTo(limit int) []uint {
	if limit < 2 {
		return []uint{}
	}
	list := primes.Until(int64(limit)).List()
	out := make([]uint, 0, len(list))
	for _, p := range list {
		out = append(out, uint(p))
	}
	return out
}

// IsPrimeCandidate rejects n when it has a prime factor below 1000 other than itself.
// Passing does not prove primality; follow up with ProbablyPrime.
func IsPrimeCandidate(n *big.Int) bool {
	if n == nil || n.Cmp(two) < 0 {
		return false
	}
	m := new(big.Int)
	for _, p := range smallPrimes {
		bp := new(big.Int).SetUint64(uint64(p))
		if n.Cmp(bp) == 0 {
			return true
		}
		if m.Mod(n, bp).Sign() == 0 {
			return false
		}
	}
	return true
}

// ProbablyPrime runs the full-strength primality test used for generated key material.
func ProbablyPrime(prime *big.Int) bool {
	return prime != nil && prime.ProbablyPrime(PrimeTestN)
}
