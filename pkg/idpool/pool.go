// Package idpool hands out artwork identifiers drawn without replacement
// from a shuffled integer range.
package idpool

import (
	"fmt"
	"math/rand/v2"
	"time"

	errs "raisonne/pkg/errors"
)

// Pool is a pre-shuffled, single-consumer queue of unique identifiers.
// It is not safe for concurrent use.
type Pool struct {
	ids  []int
	next int
}

// New draws drawSize distinct ids from [0, rangeSize) in random order.
// The random source is supplied by the caller so runs can be reproduced.
func New(rangeSize, drawSize int, rng *rand.Rand) (*Pool, error) {
	if rangeSize <= 0 || drawSize < 0 {
		return nil, fmt.Errorf("invalid pool size: range %d, draw %d", rangeSize, drawSize)
	}
	if drawSize > rangeSize {
		return nil, fmt.Errorf("cannot draw %d ids from a range of %d", drawSize, rangeSize)
	}
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}

	return &Pool{ids: rng.Perm(rangeSize)[:drawSize]}, nil
}

// NewSeeded builds a pool from a PCG source. A zero seed uses the clock.
func NewSeeded(rangeSize, drawSize int, seed uint64) (*Pool, error) {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return New(rangeSize, drawSize, rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// Next removes and returns the next id
func (p *Pool) Next() (int, error) {
	if p.next >= len(p.ids) {
		return 0, errs.NewPoolExhaustedError(len(p.ids))
	}
	id := p.ids[p.next]
	p.next++
	return id, nil
}

// Remaining reports how many ids have not been handed out yet
func (p *Pool) Remaining() int {
	return len(p.ids) - p.next
}

// Consumed reports how many ids have been handed out
func (p *Pool) Consumed() int {
	return p.next
}
