// Copyright © 2021 Io FinNet Group, Inc.

package recovery

import (
	"context"
	"fmt"
	"math/big"

	"github.com/iofinnet/weak-rsa/common"
	int2 "github.com/iofinnet/weak-rsa/common/int"
	"github.com/iofinnet/weak-rsa/crypto/rsakey"
)

type Result struct {
	PublicKey *rsakey.PublicKey
	Secret    *Secret
	Plaintext *big.Int
}

// Recover factors pub.N via the q = e^-1 mod p weakness and decrypts c.
// Nothing is returned on failure.
func Recover(ctx context.Context, pub *rsakey.PublicKey, c *big.Int, params *Parameters) (*Result, error) {
	if err := pub.Validate(); err != nil {
		return nil, err
	}
	if c == nil || c.Sign() < 0 || c.Cmp(pub.N) >= 0 {
		return nil, fmt.Errorf("%w: ciphertext has %d bits, modulus %d", ErrInvalidCiphertext, bitLen(c), pub.N.BitLen())
	}
	secret, err := Search(ctx, pub, params)
	if err != nil {
		return nil, err
	}
	m := int2.ModInt(pub.N).Exp(c, secret.D)
	common.Logger.Debugf("decrypted %d byte plaintext", (m.BitLen()+7)/8)
	return &Result{PublicKey: pub.Clone(), Secret: secret, Plaintext: m}, nil
}

// PlaintextBytes is the minimal big-endian encoding of the plaintext.
func (r *Result) PlaintextBytes() []byte {
	return rsakey.IntToBytes(r.Plaintext)
}

// Flag returns the trailing length bytes of the plaintext; 0 returns all of it.
func (r *Result) Flag(length int) ([]byte, error) {
	return ExtractFlag(r.PlaintextBytes(), length)
}

func (r *Result) PrivateKey() *rsakey.PrivateKey {
	return r.Secret.PrivateKey(r.PublicKey)
}

// ExtractFlag returns a copy of the last length bytes of plaintext, dropping the leading padding.
// A length of 0 returns a copy of the whole plaintext.
func ExtractFlag(plaintext []byte, length int) ([]byte, error) {
	if length < 0 || length > len(plaintext) {
		return nil, fmt.Errorf("%w: want %d bytes, plaintext has %d", ErrInvalidFlagLength, length, len(plaintext))
	}
	if length == 0 {
		length = len(plaintext)
	}
	out := make([]byte, length)
	copy(out, plaintext[len(plaintext)-length:])
	return out, nil
}

func bitLen(x *big.Int) int {
	if x == nil {
		return 0
	}
	return x.BitLen()
}
