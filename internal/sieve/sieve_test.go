package sieve

import (
	"context"
	"testing"
)

func TestPrimesMatchesBruteForce(t *testing.T) {
	ctx := context.Background()
	got := []uint64{}
	for p := range Primes(ctx, 2, 200, 4) {
		got = append(got, p)
	}
	want := bruteForcePrimes(2, 200)
	if len(got) != len(want) {
		t.Fatalf("got %d primes, want %d\ngot:  %v\nwant: %v", len(got), len(want), got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("prime %d: got %d, want %d", i, got[i], want[i])
		}
	}
}

func TestPrimesRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.Background(), func() {}
	ctx, cancel = context.WithCancel(ctx)
	cancel()
	count := 0
	for range Primes(ctx, 2, 1<<20, 4) {
		count++
	}
	if count > 1<<20 {
		t.Fatalf("cancelled sieve still produced %d primes", count)
	}
}

func bruteForcePrimes(lo, hi uint64) []uint64 {
	var out []uint64
	for n := lo; n < hi; n++ {
		if isPrime(n) {
			out = append(out, n)
		}
	}
	return out
}

func isPrime(n uint64) bool {
	if n < 2 {
		return false
	}
	for p := uint64(2); p*p <= n; p++ {
		if n%p == 0 {
			return false
		}
	}
	return true
}
