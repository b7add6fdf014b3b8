// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

// Package rsakey holds textbook RSA key material together with the helpers needed to move it in
// and out of files: PEM loading, a big-endian integer codec and a generator for the weak
// `q = e^-1 mod p` key construction.
package rsakey

import (
	"crypto/rsa"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"

	"github.com/hashicorp/go-multierror"

	"github.com/iofinnet/weak-rsa/common"
	"github.com/iofinnet/weak-rsa/common/hash"
	int2 "github.com/iofinnet/weak-rsa/common/int"
)

const fingerprintTag = "weak-rsa/public-key"

type (
	PublicKey struct {
		N, E *big.Int
	}

	PrivateKey struct {
		PublicKey
		P, Q,
		D *big.Int // e^-1 mod (p-1)(q-1)
	}
)

var (
	ErrInvalidKey        = errors.New("invalid RSA key")
	ErrMessageOutOfRange = errors.New("the message is too large or < 0")

	zero = big.NewInt(0)
	one  = big.NewInt(1)
)

func NewPublicKey(n, e *big.Int) (*PublicKey, error) {
	pk := &PublicKey{N: n, E: e}
	if err := pk.Validate(); err != nil {
		return nil, err
	}
	return pk, nil
}

// FromStdlib converts a crypto/rsa public key.
func FromStdlib(pub *rsa.PublicKey) (*PublicKey, error) {
	if pub == nil {
		return nil, fmt.Errorf("%w: nil crypto/rsa key", ErrInvalidKey)
	}
	return NewPublicKey(new(big.Int).Set(pub.N), big.NewInt(int64(pub.E)))
}

// Validate reports every structural problem with the key at once.
func (pk *PublicKey) Validate() error {
	if pk == nil {
		return fmt.Errorf("%w: nil public key", ErrInvalidKey)
	}
	var result *multierror.Error
	if pk.N == nil || pk.N.Sign() <= 0 {
		result = multierror.Append(result, fmt.Errorf("%w: modulus must be positive", ErrInvalidKey))
	} else if pk.N.Bit(0) == 0 {
		result = multierror.Append(result, fmt.Errorf("%w: modulus must be odd", ErrInvalidKey))
	}
	if pk.E == nil || pk.E.Cmp(one) <= 0 {
		result = multierror.Append(result, fmt.Errorf("%w: public exponent must be > 1", ErrInvalidKey))
	} else if pk.E.Bit(0) == 0 {
		result = multierror.Append(result, fmt.Errorf("%w: public exponent must be odd", ErrInvalidKey))
	}
	return result.ErrorOrNil()
}

// Encrypt is raw (unpadded) RSA: c = m^e mod n.
func (pk *PublicKey) Encrypt(m *big.Int) (*big.Int, error) {
	if m == nil || m.Cmp(zero) == -1 || m.Cmp(pk.N) != -1 { // m < 0 || m >= N ?
		return nil, ErrMessageOutOfRange
	}
	return int2.ModInt(pk.N).Exp(m, pk.E), nil
}

// Size returns the modulus length in bytes.
func (pk *PublicKey) Size() int {
	return (pk.N.BitLen() + 7) / 8
}

// Fingerprint is a tagged SHA-512/256 digest of (N, E).
func (pk *PublicKey) Fingerprint() []byte {
	return hash.TaggedInts(fingerprintTag, pk.N, pk.E)
}

func (pk *PublicKey) FingerprintHex() string {
	return hex.EncodeToString(pk.Fingerprint())
}

// Stdlib converts the key for use with crypto/x509. E must fit in an int.
func (pk *PublicKey) Stdlib() (*rsa.PublicKey, error) {
	if !pk.E.IsInt64() || pk.E.Int64() > int64(^uint(0)>>1) {
		return nil, fmt.Errorf("%w: public exponent does not fit in an int", ErrInvalidKey)
	}
	return &rsa.PublicKey{N: new(big.Int).Set(pk.N), E: int(pk.E.Int64())}, nil
}

func (pk *PublicKey) Equal(other *PublicKey) bool {
	return other != nil && pk.N.Cmp(other.N) == 0 && pk.E.Cmp(other.E) == 0
}

// Clone creates a deep copy of the PublicKey
func (pk *PublicKey) Clone() *PublicKey {
	if pk == nil {
		return nil
	}
	newPK := &PublicKey{}
	if pk.N != nil {
		newPK.N = new(big.Int).Set(pk.N)
	}
	if pk.E != nil {
		newPK.E = new(big.Int).Set(pk.E)
	}
	return newPK
}

// ----- //

// NewPrivateKey derives d from the two primes. It fails when e is not invertible mod (p-1)(q-1).
func NewPrivateKey(pub *PublicKey, p, q *big.Int) (*PrivateKey, error) {
	if err := pub.Validate(); err != nil {
		return nil, err
	}
	if p == nil || q == nil || new(big.Int).Mul(p, q).Cmp(pub.N) != 0 {
		return nil, fmt.Errorf("%w: p*q != n", ErrInvalidKey)
	}
	d := int2.ModInt(Phi(p, q)).Inverse(pub.E)
	if d == nil {
		return nil, fmt.Errorf("%w: e is not invertible mod (p-1)(q-1)", ErrInvalidKey)
	}
	return &PrivateKey{PublicKey: *pub.Clone(), P: new(big.Int).Set(p), Q: new(big.Int).Set(q), D: d}, nil
}

// Phi returns (p-1)(q-1).
func Phi(p, q *big.Int) *big.Int {
	pMinus1, qMinus1 := new(big.Int).Sub(p, one), new(big.Int).Sub(q, one)
	return new(big.Int).Mul(pMinus1, qMinus1)
}

// Decrypt is raw (unpadded) RSA: m = c^d mod n.
func (sk *PrivateKey) Decrypt(c *big.Int) (*big.Int, error) {
	if c == nil || c.Cmp(zero) == -1 || c.Cmp(sk.N) != -1 { // c < 0 || c >= N ?
		return nil, ErrMessageOutOfRange
	}
	return int2.ModInt(sk.N).Exp(c, sk.D), nil
}

// Validate checks the private half against the public key, including primality of p and q.
func (sk *PrivateKey) Validate() error {
	if sk == nil {
		return fmt.Errorf("%w: nil private key", ErrInvalidKey)
	}
	var result *multierror.Error
	if err := sk.PublicKey.Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	if sk.P == nil || sk.Q == nil || sk.D == nil {
		result = multierror.Append(result, fmt.Errorf("%w: missing private components", ErrInvalidKey))
		return result.ErrorOrNil()
	}
	if sk.P.Cmp(sk.Q) == 0 {
		result = multierror.Append(result, fmt.Errorf("%w: p == q", ErrInvalidKey))
	}
	if !common.ProbablyPrime(sk.P) || !common.ProbablyPrime(sk.Q) {
		result = multierror.Append(result, fmt.Errorf("%w: p and q must be prime", ErrInvalidKey))
	}
	if sk.N != nil && new(big.Int).Mul(sk.P, sk.Q).Cmp(sk.N) != 0 {
		result = multierror.Append(result, fmt.Errorf("%w: p*q != n", ErrInvalidKey))
	}
	if sk.E != nil {
		ed := int2.ModInt(Phi(sk.P, sk.Q)).Mul(sk.E, sk.D)
		if ed.Cmp(one) != 0 {
			result = multierror.Append(result, fmt.Errorf("%w: e*d != 1 mod (p-1)(q-1)", ErrInvalidKey))
		}
	}
	return result.ErrorOrNil()
}

// Stdlib converts the key for use with crypto/x509, precomputing CRT values.
func (sk *PrivateKey) Stdlib() (*rsa.PrivateKey, error) {
	pub, err := sk.PublicKey.Stdlib()
	if err != nil {
		return nil, err
	}
	priv := &rsa.PrivateKey{
		PublicKey: *pub,
		D:         new(big.Int).Set(sk.D),
		Primes:    []*big.Int{new(big.Int).Set(sk.P), new(big.Int).Set(sk.Q)},
	}
	priv.Precompute()
	return priv, nil
}

// Clone creates a deep copy of the PrivateKey
func (sk *PrivateKey) Clone() *PrivateKey {
	if sk == nil {
		return nil
	}
	newSK := &PrivateKey{PublicKey: *sk.PublicKey.Clone()}
	if sk.P != nil {
		newSK.P = new(big.Int).Set(sk.P)
	}
	if sk.Q != nil {
		newSK.Q = new(big.Int).Set(sk.Q)
	}
	if sk.D != nil {
		newSK.D = new(big.Int).Set(sk.D)
	}
	return newSK
}
