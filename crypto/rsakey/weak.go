// Copyright © 2021 Io FinNet Group, Inc.
// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package rsakey

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/iofinnet/weak-rsa/common"
	int2 "github.com/iofinnet/weak-rsa/common/int"
)

const (
	// MinWeakKeyBits keeps each prime at least one byte long.
	MinWeakKeyBits  = 16
	DefaultExponent = 65537
)

// GenerateWeakKey produces a key with the flawed construction q = e^-1 mod p.
//
// The algorithm is as follows:
//  1. Draw a random prime p of bits/2 bits (top two bits set).
//  2. Set q = e^-1 mod p. q is therefore uniform-ish in [1, p).
//  3. Reject unless q > 2 is prime, q != p, gcd(e, (p-1)(q-1)) = 1 and
//     n = p*q has exactly `bits` bits.
//
// Workers run concurrently; the first acceptable key wins and the rest are cancelled.
// If none is found within `timeout` an error is returned.
func GenerateWeakKey(bits int, e *big.Int, timeout time.Duration, optionalConcurrency ...int) (*PrivateKey, error) {
	var concurrency int
	if 0 < len(optionalConcurrency) {
		if 1 < len(optionalConcurrency) {
			return nil, errors.New("GenerateWeakKey: expected 0 or 1 item in `optionalConcurrency`")
		}
		concurrency = optionalConcurrency[0]
	} else {
		concurrency = runtime.GOMAXPROCS(0)
	}
	if concurrency < 1 {
		return nil, fmt.Errorf("GenerateWeakKey: concurrency must be >= 1, got %d", concurrency)
	}
	if bits < MinWeakKeyBits || bits%2 != 0 {
		return nil, fmt.Errorf("GenerateWeakKey: bits must be even and >= %d, got %d", MinWeakKeyBits, bits)
	}
	if e == nil || e.Cmp(big.NewInt(3)) < 0 || e.Bit(0) == 0 {
		return nil, fmt.Errorf("%w: public exponent must be odd and >= 3", ErrInvalidKey)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	keyCh := make(chan *PrivateKey, concurrency)
	errCh := make(chan error, concurrency)
	wg := &sync.WaitGroup{}
	var attempts int64
	defer func() {
		cancel()
		wg.Wait()
	}()

	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func() {
			defer wg.Done()
			runWeakKeyRoutine(ctx, rand.Reader, bits, e, keyCh, errCh, &attempts)
		}()
	}

	select {
	case sk := <-keyCh:
		common.Logger.Debugf("weak key found after %d attempts, n: %s", atomic.LoadInt64(&attempts), common.FormatBigInt(sk.N))
		return sk, nil
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		return nil, fmt.Errorf("generator timed out after %v", timeout)
	}
}

func runWeakKeyRoutine(
	ctx context.Context,
	reader io.Reader,
	bits int,
	e *big.Int,
	keyCh chan<- *PrivateKey,
	errCh chan<- error,
	attempts *int64,
) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		atomic.AddInt64(attempts, 1)
		p, err := common.GetRandomPrimeIntFrom(reader, bits/2)
		if err != nil {
			select {
			case errCh <- err:
			default:
			}
			return
		}
		sk := weakKeyFromPrime(p, e, bits)
		if sk == nil {
			continue
		}
		select {
		case keyCh <- sk:
		case <-ctx.Done():
		}
		return
	}
}

// WeakKeyFromPrime completes p into a vulnerable key, or returns nil if p does not yield one.
// A bits value of 0 skips the modulus length check.
func WeakKeyFromPrime(p, e *big.Int, bits int) *PrivateKey {
	return weakKeyFromPrime(p, e, bits)
}

func weakKeyFromPrime(p, e *big.Int, bits int) *PrivateKey {
	q := int2.ModInt(p).Inverse(e)
	if q == nil || q.Cmp(big.NewInt(2)) <= 0 || q.Cmp(p) == 0 {
		return nil
	}
	if !common.IsPrimeCandidate(q) || !common.ProbablyPrime(q) {
		return nil
	}
	n := new(big.Int).Mul(p, q)
	if bits > 0 && n.BitLen() != bits {
		return nil
	}
	sk, err := NewPrivateKey(&PublicKey{N: n, E: new(big.Int).Set(e)}, p, q)
	if err != nil {
		return nil
	}
	return sk
}
