// cmd/bench runs the cubesum binary across a fixed set of scenarios
// (varying k, search range, and worker count) and reports each
// scenario's best wall-clock time over -reps passes (one by default) and
// its hit count.
// Adapted from the reference engine's scenario runner, which drove
// ectorus the same way over a handful of fixed curves; here the
// scenarios vary k and the prime range instead of curve parameters.
package main

import (
	"bufio"
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"time"
)

type scenario struct {
	Name              string
	Cores             int
	K, PMin, PMax, DMax, ZMax uint64
	Timeout           time.Duration
}

func runScenario(path string, sc scenario, reps int) (time.Duration, int64, error) {
	var best time.Duration
	var hits int64 = -1
	for i := 0; i < reps; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), sc.Timeout)
		defer cancel()
		args := []string{
			fmt.Sprintf("%d", sc.Cores),
			fmt.Sprintf("%d", sc.K),
			fmt.Sprintf("%d", sc.PMin),
			fmt.Sprintf("%d", sc.PMax),
			fmt.Sprintf("%d", sc.DMax),
			fmt.Sprintf("%d", sc.ZMax),
		}
		cmd := exec.CommandContext(ctx, path, args...)
		var stdout, stderr bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
		t0 := time.Now()
		err := cmd.Run()
		dur := time.Since(t0)
		if ctx.Err() == context.DeadlineExceeded {
			return dur, hits, fmt.Errorf("timeout: %s", sc.Name)
		}
		if err != nil {
			return dur, hits, fmt.Errorf("%s failed: %v\n%s", sc.Name, err, stderr.String())
		}
		n := int64(0)
		lineScanner := bufio.NewScanner(&stdout)
		for lineScanner.Scan() {
			n++
		}
		hits = n
		if i == 0 || dur < best {
			best = dur
		}
	}
	return best, hits, nil
}

func main() {
	var binPath string
	var reps int
	var timeout time.Duration
	flag.StringVar(&binPath, "cubesum", "./bin/cubesum", "path to cubesum binary")
	flag.IntVar(&reps, "reps", 1, "repetitions per scenario (report best)")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "per-run timeout")
	flag.Parse()

	if _, err := os.Stat(binPath); err != nil {
		fmt.Fprintf(os.Stderr, "cubesum not found at %s (build it first)\n", binPath)
		os.Exit(2)
	}

	scenarios := []scenario{
		{Name: "k=3 small range, 1 core", Cores: 1, K: 3, PMin: 2, PMax: 500, DMax: 20000, ZMax: 1 << 16, Timeout: timeout},
		{Name: "k=3 small range, 4 cores", Cores: 4, K: 3, PMin: 2, PMax: 500, DMax: 20000, ZMax: 1 << 16, Timeout: timeout},
		{Name: "k=6 small range, 4 cores", Cores: 4, K: 6, PMin: 2, PMax: 500, DMax: 20000, ZMax: 1 << 16, Timeout: timeout},
		{Name: "k=3 wider range, 4 cores", Cores: 4, K: 3, PMin: 2, PMax: 2000, DMax: 100000, ZMax: 1 << 18, Timeout: timeout},
	}

	fmt.Println("cubesum bench — running scenarios")
	for _, sc := range scenarios {
		dur, hits, err := runScenario(binPath, sc, reps)
		if err != nil {
			fmt.Printf("%-40s : ERROR: %v\n", sc.Name, err)
			continue
		}
		fmt.Printf("%-40s : %8s  hits=%-6d  cores=%d\n",
			sc.Name, dur.Truncate(time.Microsecond), hits, sc.Cores)
	}
}
