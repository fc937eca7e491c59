// Package config parses the search's command line, which mirrors the
// positional argv grammar of the reference engine's main() (six required
// numeric arguments, each either a plain integer or, for pmin/pmax, a
// p0xN subprime spec, followed by optional keyword arguments) rather
// than a conventional flag-first CLI. The two Go-native additions
// (-checkpoint, -verbose) are parsed the way
// internal/ecscan.ParseFlags validates and reports flag errors, even
// though the positional-argument-heavy grammar itself cannot use the
// stdlib flag package directly (flag.Parse stops at the first
// non-flag token, and here the flags trail the required positionals).
package config

import (
	"fmt"
	"regexp"
	"runtime"
	"strconv"
)

// Subprime fixes the run's outer prime p0: every denominator the run
// builds is p0 times a smaller "second-largest" prime drawn from
// [PMin, PMax], letting several independent processes each cover a
// different p0 to split one search across machines.
type Subprime struct {
	P0 uint64
}

// Config is one fully parsed invocation.
type Config struct {
	Cores                  int
	K, PMin, PMax, DMax, ZMax uint64

	// Expected-count assertions from pcnt=/ccnt=/dcnt=/rcnt=; -1 means
	// unset (no assertion). A run that finishes with a different count
	// than asserted is a hard error, matching the original's use of
	// these as regression checks against known totals.
	PCount, CCount, DCount, RCount int64

	CheckpointPath string
	Verbose        bool
	Subprime       *Subprime
}

var keywordCount = regexp.MustCompile(`^(pcnt|ccnt|dcnt|rcnt)=(\d+)$`)
var subprimeBound = regexp.MustCompile(`^(\d+)x(\d+)$`)

// Parse parses args (as in os.Args[1:]) into a Config.
func Parse(args []string) (*Config, error) {
	cfg := &Config{PCount: -1, CCount: -1, DCount: -1, RCount: -1}
	var positional []string

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-checkpoint" || arg == "--checkpoint":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("config: %s requires a path argument", arg)
			}
			i++
			cfg.CheckpointPath = args[i]
		case arg == "-verbose" || arg == "--verbose":
			cfg.Verbose = true
		case keywordCount.MatchString(arg):
			m := keywordCount.FindStringSubmatch(arg)
			n, err := strconv.ParseInt(m[2], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("config: invalid count in %q: %w", arg, err)
			}
			switch m[1] {
			case "pcnt":
				cfg.PCount = n
			case "ccnt":
				cfg.CCount = n
			case "dcnt":
				cfg.DCount = n
			case "rcnt":
				cfg.RCount = n
			}
		default:
			positional = append(positional, arg)
		}
	}

	if len(positional) < 6 {
		return nil, fmt.Errorf("config: usage: cubesum <cores> <k> <pmin> <pmax> <dmax> <zmax> [options]")
	}

	var err error
	cfg.Cores, err = strconv.Atoi(positional[0])
	if err != nil || cfg.Cores < 0 {
		return nil, fmt.Errorf("config: cores must be a non-negative integer, got %q", positional[0])
	}
	if cfg.Cores == 0 {
		cfg.Cores = runtime.NumCPU()
	}

	cfg.K, err = strconv.ParseUint(positional[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("config: k must be a non-negative integer, got %q", positional[1])
	}

	p0q, hasP0q, q, err := parsePrimeBound(positional[2])
	if err != nil {
		return nil, fmt.Errorf("config: pmin must be a non-negative integer or p0xq subprime spec, got %q", positional[2])
	}
	p0r, hasP0r, r, err := parsePrimeBound(positional[3])
	if err != nil {
		return nil, fmt.Errorf("config: pmax must be a non-negative integer or p0xr subprime spec, got %q", positional[3])
	}
	if hasP0q != hasP0r {
		return nil, fmt.Errorf("config: pmin and pmax must both use p0xN subprime syntax or neither")
	}
	if hasP0q {
		if p0q != p0r {
			return nil, fmt.Errorf("config: subprime outer prime mismatch: pmin uses p0=%d, pmax uses p0=%d", p0q, p0r)
		}
		cfg.Subprime = &Subprime{P0: p0q}
	}
	cfg.PMin, cfg.PMax = q, r

	cfg.DMax, err = strconv.ParseUint(positional[4], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("config: dmax must be a non-negative integer, got %q", positional[4])
	}
	cfg.ZMax, err = strconv.ParseUint(positional[5], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("config: zmax must be a non-negative integer, got %q", positional[5])
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parsePrimeBound parses one of pmin/pmax's positional tokens: either a
// plain non-negative integer, or (selecting subprime mode) "p0xN" giving
// the run's fixed outer prime p0 and the inner-prime bound N.
func parsePrimeBound(tok string) (p0 uint64, hasP0 bool, n uint64, err error) {
	if m := subprimeBound.FindStringSubmatch(tok); m != nil {
		p0, err = strconv.ParseUint(m[1], 10, 64)
		if err != nil {
			return 0, false, 0, err
		}
		n, err = strconv.ParseUint(m[2], 10, 64)
		if err != nil {
			return 0, false, 0, err
		}
		return p0, true, n, nil
	}
	n, err = strconv.ParseUint(tok, 10, 64)
	if err != nil {
		return 0, false, 0, err
	}
	return 0, false, n, nil
}

func (c *Config) validate() error {
	if c.K == 0 || c.K > 1000 || (c.K%9 != 3 && c.K%9 != 6) {
		return fmt.Errorf("config: k=%d is not admissible (need 1<=k<=1000, k == 3 or 6 mod 9)", c.K)
	}
	if !(2 <= c.PMin && c.PMin <= c.PMax && c.PMax <= c.DMax) {
		return fmt.Errorf("config: require 2 <= pmin <= pmax <= dmax")
	}
	if c.ZMax == 0 {
		return fmt.Errorf("config: zmax must be positive")
	}
	if c.Subprime != nil {
		p0 := c.Subprime.P0
		if p0 == 0 || p0*p0 < p0 || p0*p0 > c.DMax {
			return fmt.Errorf("config: subprime outer prime p0=%d must satisfy p0 <= sqrt(dmax=%d)", p0, c.DMax)
		}
		if c.K%p0 == 0 {
			return fmt.Errorf("config: subprime outer prime p0=%d divides k=%d", p0, c.K)
		}
	}
	return nil
}
