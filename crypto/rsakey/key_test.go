// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package rsakey_test

import (
	"errors"
	"math/big"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iofinnet/weak-rsa/common"
	. "github.com/iofinnet/weak-rsa/crypto/rsakey"
	"github.com/iofinnet/weak-rsa/test"
)

func TestPublicKeyValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		n, e    *big.Int
		wantErr int
	}{
		{"valid", big.NewInt(961500781), big.NewInt(65537), 0},
		{"zero modulus", big.NewInt(0), big.NewInt(65537), 1},
		{"negative modulus", big.NewInt(-15), big.NewInt(65537), 1},
		{"even modulus", big.NewInt(16), big.NewInt(3), 1},
		{"exponent one", big.NewInt(15), big.NewInt(1), 1},
		{"even exponent", big.NewInt(15), big.NewInt(4), 1},
		{"nil everything", nil, nil, 2},
		{"both broken", big.NewInt(-1), big.NewInt(0), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := (&PublicKey{N: tt.n, E: tt.e}).Validate()
			if tt.wantErr == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidKey))
			var merr *multierror.Error
			require.True(t, errors.As(err, &merr))
			assert.Len(t, merr.Errors, tt.wantErr)
		})
	}
	assert.ErrorIs(t, (*PublicKey)(nil).Validate(), ErrInvalidKey)
}

func TestEncryptDecrypt(t *testing.T) {
	t.Parallel()
	f := test.SmallFixture()
	pk, err := NewPublicKey(f.N, f.E)
	require.NoError(t, err)

	c, err := pk.Encrypt(f.Plaintext)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Cmp(f.Ciphertext))

	sk, err := NewPrivateKey(pk, f.P, f.Q)
	require.NoError(t, err)
	assert.Equal(t, 0, sk.D.Cmp(f.D))
	assert.NoError(t, sk.Validate())

	m, err := sk.Decrypt(c)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Cmp(f.Plaintext))

	for i := 0; i < 16; i++ {
		msg := common.GetRandomPositiveInt(f.N)
		c, err := pk.Encrypt(msg)
		require.NoError(t, err)
		m, err := sk.Decrypt(c)
		require.NoError(t, err)
		assert.Equal(t, 0, m.Cmp(msg))
	}
}

func TestEncryptOutOfRange(t *testing.T) {
	t.Parallel()
	f := test.SmallFixture()
	pk, err := NewPublicKey(f.N, f.E)
	require.NoError(t, err)

	_, err = pk.Encrypt(big.NewInt(-1))
	assert.ErrorIs(t, err, ErrMessageOutOfRange)
	_, err = pk.Encrypt(f.N)
	assert.ErrorIs(t, err, ErrMessageOutOfRange)

	sk, err := NewPrivateKey(pk, f.P, f.Q)
	require.NoError(t, err)
	_, err = sk.Decrypt(new(big.Int).Add(f.N, big.NewInt(1)))
	assert.ErrorIs(t, err, ErrMessageOutOfRange)
}

func TestNewPrivateKeyRejects(t *testing.T) {
	t.Parallel()
	f := test.SmallFixture()
	pk, err := NewPublicKey(f.N, f.E)
	require.NoError(t, err)

	_, err = NewPrivateKey(pk, f.P, big.NewInt(3))
	assert.ErrorIs(t, err, ErrInvalidKey)

	// e = 3 divides (p-1) for p = 40111 - 1 = 40110
	n := new(big.Int).Mul(f.P, f.Q)
	_, err = NewPrivateKey(&PublicKey{N: n, E: big.NewInt(3)}, f.P, f.Q)
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestPrivateKeyValidate(t *testing.T) {
	t.Parallel()
	f := test.Fixture1024()
	sk := &PrivateKey{PublicKey: PublicKey{N: f.N, E: f.E}, P: f.P, Q: f.Q, D: f.D}
	assert.NoError(t, sk.Validate())

	broken := sk.Clone()
	broken.D = new(big.Int).Add(broken.D, big.NewInt(2))
	assert.ErrorIs(t, broken.Validate(), ErrInvalidKey)

	broken = sk.Clone()
	broken.Q = new(big.Int).Set(broken.P)
	var merr *multierror.Error
	require.True(t, errors.As(broken.Validate(), &merr))
	// p == q, p*q != n and e*d != 1
	assert.Len(t, merr.Errors, 3)

	broken = sk.Clone()
	broken.D = nil
	assert.ErrorIs(t, broken.Validate(), ErrInvalidKey)
}

func TestClone(t *testing.T) {
	t.Parallel()
	f := test.SmallFixture()
	sk := &PrivateKey{PublicKey: PublicKey{N: f.N, E: f.E}, P: f.P, Q: f.Q, D: f.D}
	clone := sk.Clone()
	assert.True(t, clone.PublicKey.Equal(&sk.PublicKey))
	clone.P.SetInt64(7)
	assert.Equal(t, int64(40111), sk.P.Int64())
	assert.Nil(t, (*PrivateKey)(nil).Clone())
	assert.Nil(t, (*PublicKey)(nil).Clone())
}

func TestFingerprint(t *testing.T) {
	t.Parallel()
	f := test.Fixture1024()
	pk, err := NewPublicKey(f.N, f.E)
	require.NoError(t, err)
	other, err := NewPublicKey(test.IndependentModulus1024(), f.E)
	require.NoError(t, err)

	assert.Len(t, pk.Fingerprint(), 32)
	assert.Equal(t, pk.FingerprintHex(), pk.Clone().FingerprintHex())
	assert.NotEqual(t, pk.FingerprintHex(), other.FingerprintHex())
	assert.Equal(t, 128, pk.Size())
}

func TestStdlibConversion(t *testing.T) {
	t.Parallel()
	f := test.Fixture1024()
	sk := &PrivateKey{PublicKey: PublicKey{N: f.N, E: f.E}, P: f.P, Q: f.Q, D: f.D}
	priv, err := sk.Stdlib()
	require.NoError(t, err)
	assert.NoError(t, priv.Validate())
	assert.Equal(t, 65537, priv.E)

	pk, err := FromStdlib(&priv.PublicKey)
	require.NoError(t, err)
	assert.True(t, pk.Equal(&sk.PublicKey))

	huge := &PublicKey{N: f.N, E: new(big.Int).Lsh(big.NewInt(1), 80)}
	_, err = huge.Stdlib()
	assert.ErrorIs(t, err, ErrInvalidKey)
}
