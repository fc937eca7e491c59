// Package sieve feeds the coordinator a stream of primes in [lo, hi) in
// ascending order, computed by a segmented sieve of Eratosthenes spread
// across worker goroutines. Grounded on
// other_examples/anisomorphic-Parallel-Prime-Sieve's bit-per-odd segment
// array and its channel-of-channels pattern for recombining
// out-of-order parallel segment results back into one ordered stream.
package sieve

import (
	"context"
	"math/big"
)

// segmentSize is the width of one unit of sieving work handed to a
// worker goroutine. Wide enough to amortize goroutine handoff, narrow
// enough that early segments (and so early primes) become available
// quickly.
const segmentSize = 1 << 16

// Primes returns a channel that yields every prime in [lo, hi) in
// ascending order. The channel is closed once every prime has been sent,
// or once ctx is cancelled. workers bounds how many segments are sieved
// concurrently.
func Primes(ctx context.Context, lo, hi uint64, workers int) <-chan uint64 {
	out := make(chan uint64, 1024)
	if workers < 1 {
		workers = 1
	}
	if lo < 2 {
		lo = 2
	}
	if hi <= lo {
		close(out)
		return out
	}

	base := basePrimesUpTo(isqrt(hi))

	nSegments := int((hi - lo + segmentSize - 1) / segmentSize)
	segResults := make([]chan []uint64, nSegments)
	for i := range segResults {
		segResults[i] = make(chan []uint64, 1)
	}

	segTasks := make(chan int, nSegments)
	for i := 0; i < nSegments; i++ {
		segTasks <- i
	}
	close(segTasks)

	for w := 0; w < workers; w++ {
		go func() {
			for idx := range segTasks {
				segLo := lo + uint64(idx)*segmentSize
				segHi := segLo + segmentSize
				if segHi > hi {
					segHi = hi
				}
				select {
				case <-ctx.Done():
					segResults[idx] <- nil
				default:
					segResults[idx] <- sieveSegment(segLo, segHi, base)
				}
			}
		}()
	}

	// One goroutine drains the per-segment result channels strictly in
	// order, so segments computed out of order by the worker pool above
	// are reassembled into a single ascending stream before anything is
	// sent downstream.
	go func() {
		defer close(out)
		for _, ch := range segResults {
			select {
			case <-ctx.Done():
				return
			case primes := <-ch:
				for _, p := range primes {
					select {
					case out <- p:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()

	return out
}

// basePrimesUpTo returns every prime <= n via a plain sieve, used to
// knock composites out of each segment.
func basePrimesUpTo(n uint64) []uint64 {
	if n < 2 {
		return nil
	}
	isComposite := make([]bool, n+1)
	var out []uint64
	for p := uint64(2); p <= n; p++ {
		if isComposite[p] {
			continue
		}
		out = append(out, p)
		for m := p * p; m <= n && m >= p; m += p {
			isComposite[m] = true
		}
	}
	return out
}

// sieveSegment marks composites in [lo, hi) using the precomputed base
// primes, one bool per integer in the segment, and returns the survivors
// (the bit-per-odd packing the reference sieve uses buys roughly 2x
// memory density at the cost of a parity check per candidate; this
// port keeps the plain one-bool-per-integer layout for clarity since Go
// slices of bool are already word-aligned rather than bit-packed, and
// the segment width here is small enough that the difference does not
// matter to a pure-Go search at this scale).
func sieveSegment(lo, hi uint64, base []uint64) []uint64 {
	width := hi - lo
	isComposite := make([]bool, width)
	for _, p := range base {
		start := lo
		if start < p*p {
			start = p * p
		}
		// smallest multiple of p that is >= start
		rem := start % p
		if rem != 0 {
			start += p - rem
		}
		for m := start; m < hi; m += p {
			isComposite[m-lo] = true
		}
	}
	var out []uint64
	for i := uint64(0); i < width; i++ {
		if !isComposite[i] {
			out = append(out, lo+i)
		}
	}
	return out
}

func isqrt(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	x := new(big.Int).SetUint64(n)
	r := new(big.Int).Sqrt(x)
	res := r.Uint64()
	for res*res > n {
		res--
	}
	for (res+1)*(res+1) <= n {
		res++
	}
	return res
}
