// cmd/benchscan runs the cubesum binary -runs times (after optional
// warmups) and reports its hit count and timings by counting stdout lines as they
// stream in, rather than waiting for the process to exit and parsing a
// final summary. Adapted from the reference engine's ecscan throughput
// harness, which counted affine points the same way; here each stdout
// line is one "d z" candidate hit instead of one curve point.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os/exec"
	"strings"
	"time"
)

type runResult struct {
	hits     int64
	duration time.Duration
	err      error
}

func runOnce(bin string, args []string, timeout time.Duration, quiet bool) runResult {
	ctx := context.Background()
	var cancel func()
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return runResult{err: fmt.Errorf("stdout pipe: %w", err)}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return runResult{err: fmt.Errorf("stderr pipe: %w", err)}
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return runResult{err: fmt.Errorf("start: %w", err)}
	}

	var hits int64
	sc := bufio.NewScanner(stdout)
	for sc.Scan() {
		hits++
	}
	if err := sc.Err(); err != nil {
		slurp, _ := bufio.NewReader(stderr).ReadString(0)
		return runResult{err: fmt.Errorf("scan stdout: %w (stderr: %q)", err, slurp)}
	}

	if !quiet {
		se := bufio.NewScanner(stderr)
		for se.Scan() {
			log.Printf("[cubesum] %s", se.Text())
		}
	}

	if err := cmd.Wait(); err != nil {
		return runResult{err: fmt.Errorf("wait: %w", err)}
	}
	return runResult{hits: hits, duration: time.Since(start)}
}

func main() {
	var (
		bin = flag.String("cubesum", "./bin/cubesum", "path to cubesum binary")

		cores = flag.Int("cores", 4, "worker count")
		k     = flag.Uint64("k", 3, "target k in x^3+y^3+z^3=k")
		pmin  = flag.Uint64("pmin", 2, "lower prime bound")
		pmax  = flag.Uint64("pmax", 1000, "upper prime bound")
		dmax  = flag.Uint64("dmax", 100000, "max admissible denominator")
		zmax  = flag.Uint64("zmax", 1 << 20, "max z magnitude")

		runs    = flag.Int("runs", 3, "number of timed runs")
		warmup  = flag.Int("warmup", 1, "number of warmup runs (not timed in summary)")
		timeout = flag.Duration("timeout", 0, "per-run timeout (e.g. 10m, 0 = none)")
		label   = flag.String("label", "", "optional label for this scenario")
		quiet   = flag.Bool("quiet", false, "suppress cubesum stderr logs")
	)
	flag.Parse()

	args := []string{
		fmt.Sprintf("%d", *cores),
		fmt.Sprintf("%d", *k),
		fmt.Sprintf("%d", *pmin),
		fmt.Sprintf("%d", *pmax),
		fmt.Sprintf("%d", *dmax),
		fmt.Sprintf("%d", *zmax),
	}

	title := "cubesum bench"
	if *label != "" {
		title += " - " + *label
	}
	log.Printf("%s", title)
	log.Printf("cmd: %s %s", *bin, strings.Join(args, " "))

	for i := 0; i < *warmup; i++ {
		if !*quiet {
			log.Printf("warmup %d/%d ...", i+1, *warmup)
		}
		_ = runOnce(*bin, args, *timeout, *quiet)
	}

	var total time.Duration
	var min, max time.Duration
	var lastHits int64 = -1
	for i := 0; i < *runs; i++ {
		res := runOnce(*bin, args, *timeout, *quiet)
		if res.err != nil {
			log.Fatalf("run %d/%d failed: %v", i+1, *runs, res.err)
		}
		if lastHits >= 0 && res.hits != lastHits {
			log.Printf("warning: hit count changed between runs (%d -> %d)", lastHits, res.hits)
		}
		lastHits = res.hits

		if !*quiet {
			log.Printf("run %d/%d: %v, hits=%d", i+1, *runs, res.duration, res.hits)
		}
		if i == 0 || res.duration < min {
			min = res.duration
		}
		if res.duration > max {
			max = res.duration
		}
		total += res.duration
	}

	avg := time.Duration(0)
	if *runs > 0 {
		avg = time.Duration(int64(total) / int64(*runs))
	}

	fmt.Println("---- summary ----")
	fmt.Printf("label:    %s\n", title)
	fmt.Printf("k:        %d\n", *k)
	fmt.Printf("range:    p in [%d, %d], dmax=%d, zmax=%d\n", *pmin, *pmax, *dmax, *zmax)
	fmt.Printf("cores:    %d\n", *cores)
	fmt.Printf("runs:     %d (warmup=%d)\n", *runs, *warmup)
	fmt.Printf("hits:     %d\n", lastHits)
	fmt.Printf("time:     avg=%v  min=%v  max=%v\n", avg, min, max)
}
