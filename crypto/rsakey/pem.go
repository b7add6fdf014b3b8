// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package rsakey

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"

	"github.com/pkg/errors"
)

const (
	pemTypePKIXPublic   = "PUBLIC KEY"
	pemTypePKCS1Public  = "RSA PUBLIC KEY"
	pemTypePKCS1Private = "RSA PRIVATE KEY"
)

// ParsePublicKeyPEM decodes the first PEM block of data as a PKIX or PKCS#1 RSA public key.
func ParsePublicKeyPEM(data []byte) (*PublicKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("%w: no PEM block found", ErrInvalidKey)
	}
	var rsaPub *rsa.PublicKey
	switch block.Type {
	case pemTypePKIXPublic:
		pub, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return nil, errors.Wrapf(err, "ParsePKIXPublicKey")
		}
		var ok bool
		if rsaPub, ok = pub.(*rsa.PublicKey); !ok {
			return nil, fmt.Errorf("%w: not an RSA public key (%T)", ErrInvalidKey, pub)
		}
	case pemTypePKCS1Public:
		pub, err := x509.ParsePKCS1PublicKey(block.Bytes)
		if err != nil {
			return nil, errors.Wrapf(err, "ParsePKCS1PublicKey")
		}
		rsaPub = pub
	default:
		return nil, fmt.Errorf("%w: unsupported PEM block type %q", ErrInvalidKey, block.Type)
	}
	return FromStdlib(rsaPub)
}

// LoadPublicKey reads and parses a PEM encoded public key file.
func LoadPublicKey(path string) (*PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading public key %s", path)
	}
	pk, err := ParsePublicKeyPEM(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing public key %s", path)
	}
	return pk, nil
}

// MarshalPublicKeyPEM encodes the key as a PKIX "PUBLIC KEY" block.
func MarshalPublicKeyPEM(pk *PublicKey) ([]byte, error) {
	pub, err := pk.Stdlib()
	if err != nil {
		return nil, err
	}
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, errors.Wrapf(err, "MarshalPKIXPublicKey")
	}
	return pem.EncodeToMemory(&pem.Block{Type: pemTypePKIXPublic, Bytes: der}), nil
}

// MarshalPrivateKeyPEM encodes the key as a PKCS#1 "RSA PRIVATE KEY" block.
func MarshalPrivateKeyPEM(sk *PrivateKey) ([]byte, error) {
	priv, err := sk.Stdlib()
	if err != nil {
		return nil, err
	}
	return pem.EncodeToMemory(&pem.Block{Type: pemTypePKCS1Private, Bytes: x509.MarshalPKCS1PrivateKey(priv)}), nil
}

// ParsePrivateKeyPEM decodes a PKCS#1 "RSA PRIVATE KEY" block.
func ParsePrivateKeyPEM(data []byte) (*PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil || block.Type != pemTypePKCS1Private {
		return nil, fmt.Errorf("%w: no %s PEM block found", ErrInvalidKey, pemTypePKCS1Private)
	}
	priv, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, errors.Wrapf(err, "ParsePKCS1PrivateKey")
	}
	if len(priv.Primes) != 2 {
		return nil, fmt.Errorf("%w: expected two primes, got %d", ErrInvalidKey, len(priv.Primes))
	}
	pub, err := FromStdlib(&priv.PublicKey)
	if err != nil {
		return nil, err
	}
	sk := &PrivateKey{PublicKey: *pub, P: priv.Primes[0], Q: priv.Primes[1], D: priv.D}
	return sk, nil
}
