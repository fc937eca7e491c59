package report

import (
	"path/filepath"
	"testing"

	"cubesum/internal/worker"
)

func TestShouldProcessVetoesAtOrBelowCheckpoint(t *testing.T) {
	r := New(&Checkpoint{LastPrime: 100}, "", 0)
	if r.ShouldProcess(worker.PhaseCached, 100) {
		t.Error("expected veto at last_prime")
	}
	if r.ShouldProcess(worker.PhaseCached, 50) {
		t.Error("expected veto below last_prime")
	}
	if !r.ShouldProcess(worker.PhaseCached, 101) {
		t.Error("expected no veto above last_prime")
	}
}

func TestPrimeDoneAdvancesCheckpointAndPersists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "checkpoint.json")
	r := New(nil, path, 2)

	r.PrimeDone(5)
	if r.Snapshot().Primes != 1 {
		t.Fatalf("Primes = %d, want 1", r.Snapshot().Primes)
	}
	r.PrimeDone(7) // crosses the every=2 threshold, should persist

	cp, err := LoadCheckpoint(path)
	if err != nil {
		t.Fatalf("LoadCheckpoint: %v", err)
	}
	if cp.LastPrime != 7 {
		t.Fatalf("persisted LastPrime = %d, want 7", cp.LastPrime)
	}
	if cp.Primes != 2 {
		t.Fatalf("persisted Primes = %d, want 2", cp.Primes)
	}
}

func TestCandidateSinkCountsAndForwards(t *testing.T) {
	var counters Counters
	var forwarded []uint64
	sink := &CandidateSink{Counters: &counters, Downstream: hitFunc(func(d, z uint64) {
		forwarded = append(forwarded, z)
	})}
	sink.Hit(10, 3)
	sink.Hit(10, 13)
	if counters.Results != 2 {
		t.Fatalf("Results = %d, want 2", counters.Results)
	}
	if len(forwarded) != 2 {
		t.Fatalf("forwarded %d hits, want 2", len(forwarded))
	}
}

type hitFunc func(d, z uint64)

func (f hitFunc) Hit(d, z uint64) { f(d, z) }
