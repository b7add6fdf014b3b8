// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package hash

import (
	"crypto"
	_ "crypto/sha512"
	"encoding/binary"
	"math/big"

	"github.com/iofinnet/weak-rsa/common"
)

const (
	hashInputDelimiter = byte('$')
)

// Tagged hashes `in` with SHA-512/256 under a domain-separation tag.
// Every buffer is framed by a delimiter and its length so that distinct input lists never collide.
func Tagged(tag string, in ...[]byte) []byte {
	state := crypto.SHA512_256.New()
	if len(in) == 0 {
		return nil
	}
	bufs := append([][]byte{[]byte(tag)}, in...)
	// prevent hash collisions with this prefix containing the block count
	inLenBz := make([]byte, 8) // 64-bits
	binary.LittleEndian.PutUint64(inLenBz, uint64(len(bufs)))
	bzSize := 0
	for _, bz := range bufs {
		bzSize += len(bz)
	}
	data := make([]byte, 0, len(inLenBz)+bzSize+len(bufs)*9)
	data = append(data, inLenBz...)
	for _, bz := range bufs {
		data = append(data, bz...)
		data = append(data, hashInputDelimiter) // safety delimiter
		dataLen := make([]byte, 8)              // 64-bits
		binary.LittleEndian.PutUint64(dataLen, uint64(len(bz)))
		data = append(data, dataLen...)
	}
	// n < len(data) or an error will never happen.
	// see: https://golang.org/pkg/hash/#Hash
	if _, err := state.Write(data); err != nil {
		common.Logger.Errorf("Tagged Write() failed: %v", err)
		return nil
	}
	return state.Sum(nil)
}

// TaggedInts is Tagged over the big-endian encodings of `in`, with each sign appended.
func TaggedInts(tag string, in ...*big.Int) []byte {
	if len(in) == 0 {
		return nil
	}
	bufs := make([][]byte, len(in))
	for i, n := range in {
		if n == nil {
			return nil
		}
		bufs[i] = append(n.Bytes(), byte(n.Sign()))
	}
	return Tagged(tag, bufs...)
}
