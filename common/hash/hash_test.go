// Copyright © 2021 Io FinNet Group, Inc.

package hash_test

import (
	"math/big"
	"testing"

	. "github.com/iofinnet/weak-rsa/common/hash"
	"github.com/stretchr/testify/assert"
)

func TestTagged(t *testing.T) {
	input := [][]byte{[]byte("abc"), []byte("def"), []byte("ghi")}
	input2 := [][]byte{[]byte("abc"), []byte("def"), []byte("gh")}
	input3 := [][]byte{[]byte("abcd"), []byte("ef"), []byte("ghi")}
	type args struct {
		tag string
		in  [][]byte
	}
	tests := []struct {
		name     string
		args     args
		want     []byte
		wantDiff bool
	}{{
		name: "same inputs produce the same hash",
		args: args{"t", input},
		want: Tagged("t", input...),
	}, {
		name:     "different inputs produce a differing hash",
		args:     args{"t", input2},
		want:     Tagged("t", input...),
		wantDiff: true,
	}, {
		name:     "moving a byte across a boundary changes the hash",
		args:     args{"t", input3},
		want:     Tagged("t", input...),
		wantDiff: true,
	}, {
		name:     "different tags produce a differing hash",
		args:     args{"u", input},
		want:     Tagged("t", input...),
		wantDiff: true,
	}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tagged(tt.args.tag, tt.args.in...)
			if tt.wantDiff {
				assert.NotEqualf(t, tt.want, got, "Tagged(%v)", tt.args.in)
			} else {
				assert.Equalf(t, tt.want, got, "Tagged(%v)", tt.args.in)
			}
			assert.Len(t, got, 256/8)
		})
	}
}

func TestTaggedEmpty(t *testing.T) {
	assert.Nil(t, Tagged("t"))
	assert.Nil(t, TaggedInts("t"))
	assert.Nil(t, TaggedInts("t", big.NewInt(1), nil))
}

func TestTaggedIntsSign(t *testing.T) {
	a := big.NewInt(12345)
	negA := new(big.Int).Neg(a)
	assert.NotEqual(t, TaggedInts("t", a), TaggedInts("t", negA))
	assert.Equal(t, TaggedInts("t", a), TaggedInts("t", big.NewInt(12345)))
}
