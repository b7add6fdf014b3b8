// Copyright © 2021 Io FinNet Group, Inc.

package recovery

import (
	"math/big"

	"github.com/fxamacker/cbor/v2"
	errors2 "github.com/pkg/errors"

	"github.com/iofinnet/weak-rsa/crypto/rsakey"
)

// Report is the persisted outcome of a recovery. Integers are big-endian byte strings.
type Report struct {
	Fingerprint []byte `cbor:"1,keyasint"`
	N           []byte `cbor:"2,keyasint"`
	E           []byte `cbor:"3,keyasint"`
	K           []byte `cbor:"4,keyasint"`
	P           []byte `cbor:"5,keyasint"`
	Q           []byte `cbor:"6,keyasint"`
	D           []byte `cbor:"7,keyasint"`
	Iterations  int    `cbor:"8,keyasint"`
	Plaintext   []byte `cbor:"9,keyasint"`
	Flag        []byte `cbor:"10,keyasint,omitempty"`
}

var reportEncMode cbor.EncMode

func init() {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(errors2.Wrap(err, "cbor EncMode"))
	}
	reportEncMode = em
}

// Report captures the result; flagLength selects the flag as in Flag and may be 0.
func (r *Result) Report(flagLength int) (*Report, error) {
	var flag []byte
	if flagLength > 0 {
		var err error
		if flag, err = r.Flag(flagLength); err != nil {
			return nil, err
		}
	}
	return &Report{
		Fingerprint: r.PublicKey.Fingerprint(),
		N:           r.PublicKey.N.Bytes(),
		E:           r.PublicKey.E.Bytes(),
		K:           r.Secret.K.Bytes(),
		P:           r.Secret.P.Bytes(),
		Q:           r.Secret.Q.Bytes(),
		D:           r.Secret.D.Bytes(),
		Iterations:  r.Secret.Iterations,
		Plaintext:   r.PlaintextBytes(),
		Flag:        flag,
	}, nil
}

// MarshalBinary encodes the report as deterministic CBOR.
func (rep *Report) MarshalBinary() ([]byte, error) {
	return reportEncMode.Marshal(rep)
}

func (rep *Report) UnmarshalBinary(data []byte) error {
	return cbor.Unmarshal(data, rep)
}

// PublicKey rebuilds the public key the report was produced for.
func (rep *Report) PublicKey() (*rsakey.PublicKey, error) {
	return rsakey.NewPublicKey(new(big.Int).SetBytes(rep.N), new(big.Int).SetBytes(rep.E))
}

// Verify checks the internal consistency of the report: p*q = n and q*e = k*p + 1.
func (rep *Report) Verify() error {
	pub, err := rep.PublicKey()
	if err != nil {
		return err
	}
	p, q, k := new(big.Int).SetBytes(rep.P), new(big.Int).SetBytes(rep.Q), new(big.Int).SetBytes(rep.K)
	if new(big.Int).Mul(p, q).Cmp(pub.N) != 0 {
		return errors2.Wrapf(ErrInvalidFactor, "report p*q != n")
	}
	lhs := new(big.Int).Mul(q, pub.E)
	rhs := new(big.Int).Mul(k, p)
	rhs.Add(rhs, one)
	if lhs.Cmp(rhs) != 0 {
		return errors2.Wrapf(ErrInvalidFactor, "report q*e != k*p + 1")
	}
	return nil
}
