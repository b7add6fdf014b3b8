// Copyright © 2021 Io FinNet Group, Inc.

package rsakey

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/pkg/errors"
)

type Encoding string

const (
	EncodingRaw    Encoding = "raw"
	EncodingHex    Encoding = "hex"
	EncodingBase64 Encoding = "base64"
)

// IntFromBytes interprets b as an unsigned big-endian integer.
func IntFromBytes(b []byte) *big.Int {
	return new(big.Int).SetBytes(b)
}

// IntToBytes returns the minimal big-endian encoding of x; zero encodes to an empty slice.
func IntToBytes(x *big.Int) []byte {
	return x.Bytes()
}

// IntToFixedBytes left-pads the big-endian encoding of x to size bytes.
func IntToFixedBytes(x *big.Int, size int) ([]byte, error) {
	if x.Sign() < 0 {
		return nil, fmt.Errorf("IntToFixedBytes: negative value")
	}
	if (x.BitLen()+7)/8 > size {
		return nil, fmt.Errorf("IntToFixedBytes: value needs %d bytes, have %d", (x.BitLen()+7)/8, size)
	}
	return x.FillBytes(make([]byte, size)), nil
}

// DecodeCiphertext turns file contents in the given encoding into an integer.
// Text encodings tolerate surrounding whitespace.
func DecodeCiphertext(data []byte, enc Encoding) (*big.Int, error) {
	switch enc {
	case EncodingRaw, "":
		return IntFromBytes(data), nil
	case EncodingHex:
		s := strings.TrimPrefix(strings.TrimSpace(string(data)), "0x")
		b, err := hex.DecodeString(s)
		if err != nil {
			return nil, errors.Wrapf(err, "hex ciphertext")
		}
		return IntFromBytes(b), nil
	case EncodingBase64:
		b, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(data)))
		if err != nil {
			return nil, errors.Wrapf(err, "base64 ciphertext")
		}
		return IntFromBytes(b), nil
	default:
		return nil, fmt.Errorf("unknown ciphertext encoding %q", enc)
	}
}

// EncodeCiphertext is the inverse of DecodeCiphertext, padding c to size bytes.
func EncodeCiphertext(c *big.Int, size int, enc Encoding) ([]byte, error) {
	raw, err := IntToFixedBytes(c, size)
	if err != nil {
		return nil, err
	}
	switch enc {
	case EncodingRaw, "":
		return raw, nil
	case EncodingHex:
		return []byte(hex.EncodeToString(raw) + "\n"), nil
	case EncodingBase64:
		return []byte(base64.StdEncoding.EncodeToString(raw) + "\n"), nil
	default:
		return nil, fmt.Errorf("unknown ciphertext encoding %q", enc)
	}
}

// LoadCiphertext reads a ciphertext file.
func LoadCiphertext(path string, enc Encoding) (*big.Int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading ciphertext %s", path)
	}
	return DecodeCiphertext(data, enc)
}
