package worker

import (
	"testing"

	"cubesum/internal/dispatch"
	"cubesum/internal/tables"
)

type nopSink struct{ n int }

func (s *nopSink) Hit(d, z uint64) { s.n++ }

func TestClassifyPhaseOrdering(t *testing.T) {
	s, err := tables.Load(3, 2000, 20000, 2, 1500)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	disp := dispatch.New(s, &nopSink{})
	d := New(s, disp)

	cases := []struct {
		p     uint64
		phase Phase
	}{
		{1, PhaseCached},
		{s.CPMax, PhaseCached},
		{s.CDMin - 1, PhaseUncached},
		{s.SDMin - 1, PhaseCocached},
		{s.PDMin - 1, PhaseNearPrime},
		{s.BPMin - 1, PhasePrime},
		{s.BPMin + 1, PhaseBigPrime},
	}
	for _, c := range cases {
		if got := d.ClassifyPhase(c.p); got != c.phase {
			t.Errorf("ClassifyPhase(%d) = %v, want %v", c.p, got, c.phase)
		}
	}
}

func TestProcessDoesNotErrorAcrossPhases(t *testing.T) {
	s, err := tables.Load(3, 2000, 20000, 2, 1500)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	disp := dispatch.New(s, &nopSink{})
	d := New(s, disp)
	for _, p := range []uint64{2, 3, 5, 7, 11, 13} {
		if err := d.Process(p); err != nil {
			t.Errorf("Process(%d): %v", p, err)
		}
	}
}

func TestOnPhaseEnterVeto(t *testing.T) {
	s, err := tables.Load(3, 2000, 20000, 2, 1500)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	disp := dispatch.New(s, &nopSink{})
	d := New(s, disp)
	called := false
	d.OnPhaseEnter = func(phase Phase, p uint64) bool {
		called = true
		return false
	}
	if err := d.Process(2); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !called {
		t.Fatal("OnPhaseEnter was never called")
	}
}
