// Copyright © 2021 Io FinNet Group, Inc.

package recovery

import (
	"errors"

	"github.com/iofinnet/weak-rsa/crypto/rsakey"
)

var (
	// input validation
	ErrInvalidKey        = rsakey.ErrInvalidKey
	ErrInvalidCiphertext = errors.New("ciphertext must satisfy 0 <= c < n")
	ErrInvalidFlagLength = errors.New("flag length out of range")
	ErrInvalidParameters = errors.New("invalid recovery parameters")

	// ErrSearchExhausted means no even k up to the ceiling produced a factor of n.
	// Either the key was not generated with q = e^-1 mod p or the ceiling is too low.
	ErrSearchExhausted = errors.New("search exhausted without finding a factor")

	// arithmetic inconsistency
	ErrInvalidFactor = errors.New("candidate factor does not divide n")
	ErrNoInverse     = errors.New("e is not invertible mod (p-1)(q-1)")
)

type ErrorCategory int

const (
	CategoryUnknown ErrorCategory = iota
	CategoryInputValidation
	CategorySearchExhausted
	CategoryArithmeticInconsistency
)

func (c ErrorCategory) String() string {
	switch c {
	case CategoryInputValidation:
		return "InputValidationError"
	case CategorySearchExhausted:
		return "SearchExhausted"
	case CategoryArithmeticInconsistency:
		return "ArithmeticInconsistency"
	default:
		return "Unknown"
	}
}

// Category classifies err, looking through any wrapping.
func Category(err error) ErrorCategory {
	switch {
	case err == nil:
		return CategoryUnknown
	case errors.Is(err, ErrInvalidKey),
		errors.Is(err, ErrInvalidCiphertext),
		errors.Is(err, ErrInvalidFlagLength),
		errors.Is(err, ErrInvalidParameters):
		return CategoryInputValidation
	case errors.Is(err, ErrSearchExhausted):
		return CategorySearchExhausted
	case errors.Is(err, ErrInvalidFactor),
		errors.Is(err, ErrNoInverse):
		return CategoryArithmeticInconsistency
	}
	return CategoryUnknown
}
