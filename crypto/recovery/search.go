// Copyright © 2021 Io FinNet Group, Inc.

// Package recovery factors RSA moduli built as n = p*q with q = e^-1 mod p and decrypts with the
// recovered private exponent.
//
// The construction guarantees q*e = k*p + 1 for some integer k. Multiplying by p gives
//
//	n*e = p*(k*p + 1)  =>  k*p^2 + p - n*e = 0
//
// so for the right k the quadratic has the integer root p = (-1 + sqrt(1 + 4*k*n*e)) / 2k.
// n*e is odd, which forces k to be even; only even k are ever tried, in increasing order.
package recovery

import (
	"context"
	"math/big"

	errors2 "github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/iofinnet/weak-rsa/common"
	int2 "github.com/iofinnet/weak-rsa/common/int"
	"github.com/iofinnet/weak-rsa/crypto/rsakey"
)

const (
	// cancellation is checked once per this many candidates
	ctxCheckInterval = 64
	progressInterval = 4096
)

var (
	one = big.NewInt(1)
)

type (
	// Secret is the factorisation found for one public key.
	Secret struct {
		K, // q*e = k*p + 1
		P, Q,
		D *big.Int
		// Iterations is the 1-based index of K in the candidate sequence 2, 4, 6, ...
		Iterations int
	}

	hit struct {
		k, p *big.Int
		i    int
	}
)

// CandidateK returns the k tested at iteration i (1-based): 2*i.
func CandidateK(i int) *big.Int {
	return new(big.Int).Lsh(big.NewInt(int64(i)), 1)
}

// SolveQuadratic returns the positive integer root p of k*p^2 + p - ne = 0, or nil if there is none.
// It does not check that p divides n.
func SolveQuadratic(k, ne *big.Int) *big.Int {
	if k == nil || k.Sign() <= 0 || ne == nil || ne.Sign() <= 0 {
		return nil
	}
	// disc = 1 + 4*k*ne
	disc := new(big.Int).Mul(k, ne)
	disc.Lsh(disc, 2)
	disc.Add(disc, one)
	s, ok := int2.ExactSqrt(disc)
	if !ok {
		return nil
	}
	// p = (s - 1) / 2k, exact
	num := s.Sub(s, one)
	den := new(big.Int).Lsh(k, 1)
	p, rem := new(big.Int).QuoRem(num, den, new(big.Int))
	if rem.Sign() != 0 || p.Sign() <= 0 {
		return nil
	}
	return p
}

// FactorForK returns the prime factor of n exposed by k, or nil.
// The root must satisfy 1 < p < n, p | n and n*e = p*(k*p + 1).
func FactorForK(k, ne, n *big.Int) *big.Int {
	p := SolveQuadratic(k, ne)
	if p == nil || p.Cmp(one) <= 0 || p.Cmp(n) >= 0 {
		return nil
	}
	if new(big.Int).Mod(n, p).Sign() != 0 {
		return nil
	}
	check := new(big.Int).Mul(k, p)
	check.Add(check, one)
	check.Mul(check, p)
	if check.Cmp(ne) != 0 {
		return nil
	}
	return p
}

// Search looks for the smallest even k exposing a factor of pub.N and completes it into a Secret.
func Search(ctx context.Context, pub *rsakey.PublicKey, params *Parameters) (*Secret, error) {
	if err := pub.Validate(); err != nil {
		return nil, err
	}
	if params == nil {
		params = DefaultParameters()
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if params.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, params.timeout)
		defer cancel()
	}

	ne := new(big.Int).Mul(pub.N, pub.E)
	common.Logger.Debugf("searching k in [2, %v] for n: %s, concurrency: %d",
		params.MaxK(), common.FormatBigInt(pub.N), params.concurrency)

	var (
		h   *hit
		err error
	)
	if params.concurrency == 1 {
		h, err = searchRange(ctx, ne, pub.N, 1, params.maxIterations, params.candidateHook)
	} else {
		h, err = searchParallel(ctx, ne, pub.N, params)
	}
	if err != nil {
		return nil, err
	}
	if h == nil {
		common.Logger.Warnf("no factor found for n: %s after %d candidates", common.FormatBigInt(pub.N), params.maxIterations)
		return nil, errors2.Wrapf(ErrSearchExhausted, "tried k = 2..%v", params.MaxK())
	}
	common.Logger.Infof("found k: %v after %d candidates, p: %s", h.k, h.i, common.FormatBigInt(h.p))

	secret, err := Complete(pub, h.k, h.p)
	if err != nil {
		return nil, err
	}
	secret.Iterations = h.i
	return secret, nil
}

// Complete derives q and d from a factor p of pub.N found at k.
func Complete(pub *rsakey.PublicKey, k, p *big.Int) (*Secret, error) {
	if p == nil || p.Cmp(one) <= 0 {
		return nil, errors2.Wrapf(ErrInvalidFactor, "p must be > 1")
	}
	q, rem := new(big.Int).QuoRem(pub.N, p, new(big.Int))
	if rem.Sign() != 0 {
		return nil, errors2.Wrapf(ErrInvalidFactor, "n mod p = %s", common.FormatBigInt(rem))
	}
	if q.Cmp(one) <= 0 {
		return nil, errors2.Wrapf(ErrInvalidFactor, "q = n/p must be > 1")
	}
	d := int2.ModInt(rsakey.Phi(p, q)).Inverse(pub.E)
	if d == nil {
		return nil, errors2.Wrapf(ErrNoInverse, "e: %v", pub.E)
	}
	var kk *big.Int
	if k != nil {
		kk = new(big.Int).Set(k)
	}
	return &Secret{K: kk, P: p, Q: q, D: d}, nil
}

// PrivateKey assembles the recovered private key for pub.
func (s *Secret) PrivateKey(pub *rsakey.PublicKey) *rsakey.PrivateKey {
	return &rsakey.PrivateKey{
		PublicKey: *pub.Clone(),
		P:         new(big.Int).Set(s.P),
		Q:         new(big.Int).Set(s.Q),
		D:         new(big.Int).Set(s.D),
	}
}

// searchRange tests iterations from..to (inclusive) in order and returns the first hit.
func searchRange(ctx context.Context, ne, n *big.Int, from, to int, hook func(*big.Int)) (*hit, error) {
	for i := from; i <= to; i++ {
		if (i-from)%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, errors2.Wrapf(err, "search interrupted at k=%v", CandidateK(i))
			}
		}
		if i%progressInterval == 0 {
			common.Logger.Debugf("search progress: k=%v", CandidateK(i))
		}
		k := CandidateK(i)
		if hook != nil {
			hook(k)
		}
		if p := FactorForK(k, ne, n); p != nil {
			return &hit{k: k, p: p, i: i}, nil
		}
	}
	return nil, nil
}

// searchParallel splits the candidates into rounds of `concurrency` consecutive batches.
// Every batch of a round completes before the round is evaluated, and hits are taken in batch
// order, so the smallest k wins exactly as in the sequential scan.
func searchParallel(ctx context.Context, ne, n *big.Int, params *Parameters) (*hit, error) {
	batch, workers, limit := params.batchSize, params.concurrency, params.maxIterations
	for start := 1; start <= limit; start += batch * workers {
		hits := make([]*hit, workers)
		g, gctx := errgroup.WithContext(ctx)
		for w := 0; w < workers; w++ {
			from := start + w*batch
			if from > limit {
				break
			}
			to := from + batch - 1
			if to > limit {
				to = limit
			}
			w := w
			g.Go(func() error {
				h, err := searchRange(gctx, ne, n, from, to, params.candidateHook)
				hits[w] = h
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		for _, h := range hits {
			if h != nil {
				return h, nil
			}
		}
	}
	return nil, nil
}
