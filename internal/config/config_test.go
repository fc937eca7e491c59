package config

import (
	"runtime"
	"testing"
)

func TestParsePositionalArgs(t *testing.T) {
	cfg, err := Parse([]string{"4", "3", "2", "1000", "100000", "50000"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Cores != 4 || cfg.K != 3 || cfg.PMin != 2 || cfg.PMax != 1000 || cfg.DMax != 100000 || cfg.ZMax != 50000 {
		t.Fatalf("unexpected parse result: %+v", cfg)
	}
	if cfg.PCount != -1 || cfg.CCount != -1 {
		t.Fatalf("expected unset counts to default to -1, got %+v", cfg)
	}
}

func TestParseKeywordCounts(t *testing.T) {
	cfg, err := Parse([]string{"4", "3", "2", "1000", "100000", "50000", "pcnt=17", "rcnt=0"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.PCount != 17 || cfg.RCount != 0 {
		t.Fatalf("unexpected counts: pcnt=%d rcnt=%d", cfg.PCount, cfg.RCount)
	}
}

func TestParseCheckpointAndVerbose(t *testing.T) {
	cfg, err := Parse([]string{"4", "3", "2", "1000", "100000", "50000", "-checkpoint", "/tmp/cp.json", "-verbose"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.CheckpointPath != "/tmp/cp.json" || !cfg.Verbose {
		t.Fatalf("unexpected flags: %+v", cfg)
	}
}

func TestParseSubprimeSpec(t *testing.T) {
	// Mirrors the outer-prime-7, inner-range-[2,5] subprime scenario:
	// pmin="7x2" and pmax="7x5" select p0=7 with inner bound 2..5.
	cfg, err := Parse([]string{"2", "3", "7x2", "7x5", "10000", "1000000000"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Subprime == nil || cfg.Subprime.P0 != 7 {
		t.Fatalf("unexpected subprime: %+v", cfg.Subprime)
	}
	if cfg.PMin != 2 || cfg.PMax != 5 {
		t.Fatalf("unexpected inner prime range: pmin=%d pmax=%d", cfg.PMin, cfg.PMax)
	}
}

func TestParseSubprimeRequiresMatchingP0(t *testing.T) {
	if _, err := Parse([]string{"2", "3", "7x2", "9x5", "10000", "1000000000"}); err == nil {
		t.Fatal("expected error for mismatched subprime outer primes")
	}
}

func TestParseSubprimeRejectsOuterPrimeDividingK(t *testing.T) {
	if _, err := Parse([]string{"2", "3", "3x2", "3x5", "10000", "1000000000"}); err == nil {
		t.Fatal("expected error for subprime outer prime dividing k")
	}
}

func TestParseZeroCoresUsesAllLogicalCPUs(t *testing.T) {
	cfg, err := Parse([]string{"0", "3", "2", "1000", "100000", "50000"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Cores != runtime.NumCPU() {
		t.Fatalf("cores = %d, want runtime.NumCPU() = %d", cfg.Cores, runtime.NumCPU())
	}
}

func TestParseRejectsInadmissibleK(t *testing.T) {
	if _, err := Parse([]string{"4", "4", "2", "1000", "100000", "50000"}); err == nil {
		t.Fatal("expected error for k=4")
	}
}

func TestParseRejectsTooFewArgs(t *testing.T) {
	if _, err := Parse([]string{"4", "3"}); err == nil {
		t.Fatal("expected error for missing positional args")
	}
}
