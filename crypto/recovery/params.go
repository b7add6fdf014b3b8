// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package recovery

import (
	"fmt"
	"math/big"
	"time"

	"github.com/hashicorp/go-multierror"
)

const (
	// DefaultMaxIterations covers every even k below 2^16. Since q < p, k < e,
	// so this is exhaustive for e = 65537.
	DefaultMaxIterations = 1 << 15
	DefaultConcurrency   = 1
	DefaultBatchSize     = 256
)

type (
	Parameters struct {
		maxIterations int
		concurrency   int
		batchSize     int
		timeout       time.Duration
		candidateHook func(k *big.Int)
	}

	Option func(*Parameters)
)

// WithMaxIterations sets how many even k values are tried before giving up.
func WithMaxIterations(n int) Option {
	return func(p *Parameters) { p.maxIterations = n }
}

// WithConcurrency spreads the search over n workers. Results are identical to the sequential scan.
func WithConcurrency(n int) Option {
	return func(p *Parameters) { p.concurrency = n }
}

// WithBatchSize sets how many consecutive candidates one worker handles per round.
func WithBatchSize(n int) Option {
	return func(p *Parameters) { p.batchSize = n }
}

// WithTimeout bounds the wall-clock time of the search. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(p *Parameters) { p.timeout = d }
}

// WithCandidateHook registers an observer invoked with every k before it is tested.
// With concurrency > 1 the hook is called from several goroutines and must be safe for that.
func WithCandidateHook(fn func(k *big.Int)) Option {
	return func(p *Parameters) { p.candidateHook = fn }
}

func NewParameters(opts ...Option) (*Parameters, error) {
	params := DefaultParameters()
	for _, opt := range opts {
		opt(params)
	}
	return params, params.Validate()
}

// DefaultParameters returns a sequential search with the default ceiling.
func DefaultParameters() *Parameters {
	return &Parameters{
		maxIterations: DefaultMaxIterations,
		concurrency:   DefaultConcurrency,
		batchSize:     DefaultBatchSize,
	}
}

func (params *Parameters) Validate() error {
	var result *multierror.Error
	if params.maxIterations < 1 {
		result = multierror.Append(result, fmt.Errorf("%w: maxIterations < 1", ErrInvalidParameters))
	}
	if params.concurrency < 1 {
		result = multierror.Append(result, fmt.Errorf("%w: concurrency < 1", ErrInvalidParameters))
	}
	if params.batchSize < 1 {
		result = multierror.Append(result, fmt.Errorf("%w: batchSize < 1", ErrInvalidParameters))
	}
	if params.timeout < 0 {
		result = multierror.Append(result, fmt.Errorf("%w: timeout < 0", ErrInvalidParameters))
	}
	return result.ErrorOrNil()
}

func (params *Parameters) MaxIterations() int {
	return params.maxIterations
}

func (params *Parameters) Concurrency() int {
	return params.concurrency
}

func (params *Parameters) BatchSize() int {
	return params.batchSize
}

func (params *Parameters) Timeout() time.Duration {
	return params.timeout
}

// MaxK is the largest k the search will try.
func (params *Parameters) MaxK() *big.Int {
	return CandidateK(params.maxIterations)
}
