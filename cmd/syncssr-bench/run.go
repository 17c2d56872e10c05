package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	syncssr "github.com/vango-go/sync-ssr"
	"github.com/vango-go/sync-ssr/pkg/signal"
)

type benchConfig struct {
	Rounds      int
	Slots       int
	WriteRatio  float64
	WriteDelay  time.Duration
	WaitTimeout time.Duration
	Seed        int64
	JSONOutput  string
}

type benchCounters struct {
	waitsWritten  atomic.Uint64
	waitsReleased atomic.Uint64
	waitsTimedOut atomic.Uint64
	valuesMissed  atomic.Uint64
}

func runCmd() *cobra.Command {
	cfg := benchConfig{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the coordination benchmark",
		Long: `Run rounds of boundary construction, waiting, and exit.

Each round registers --slots signal resources under one boundary. Every
slot gets a waiting consumer; a --write-ratio share of slots also gets
a producer that writes after --write-delay. The boundary exits as soon
as all producers are scheduled, so slots without a producer resolve at
exit while written slots resolve only when their value lands.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(cfg)
		},
	}

	cmd.Flags().IntVar(&cfg.Rounds, "rounds", 200, "Number of boundary rounds")
	cmd.Flags().IntVar(&cfg.Slots, "slots", 64, "Slots per boundary")
	cmd.Flags().Float64Var(&cfg.WriteRatio, "write-ratio", 0.5, "Share of slots with a producer (0..1)")
	cmd.Flags().DurationVar(&cfg.WriteDelay, "write-delay", time.Millisecond, "Producer delay before writing")
	cmd.Flags().DurationVar(&cfg.WaitTimeout, "wait-timeout", 5*time.Second, "Per-wait timeout")
	cmd.Flags().Int64Var(&cfg.Seed, "seed", 1, "PRNG seed for producer placement")
	cmd.Flags().StringVar(&cfg.JSONOutput, "json", "-", "JSON report path ('-' for stdout)")

	return cmd
}

func runBench(cfg benchConfig) error {
	if cfg.Rounds <= 0 {
		return errors.New("--rounds must be > 0")
	}
	if cfg.Slots <= 0 {
		return errors.New("--slots must be > 0")
	}
	if cfg.WriteRatio < 0 || cfg.WriteRatio > 1 {
		return errors.New("--write-ratio must be in [0, 1]")
	}
	if cfg.WaitTimeout <= 0 {
		return errors.New("--wait-timeout must be > 0")
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	var counters benchCounters
	var mu sync.Mutex
	written := make([]time.Duration, 0, cfg.Rounds*cfg.Slots)
	released := make([]time.Duration, 0, cfg.Rounds*cfg.Slots)

	start := time.Now()
	for round := 0; round < cfg.Rounds; round++ {
		hasWriter := make([]bool, cfg.Slots)
		for i := range hasWriter {
			hasWriter[i] = rng.Float64() < cfg.WriteRatio
		}

		b := syncssr.NewBoundary()
		resources := make([]*signal.SignalResource[int], cfg.Slots)
		for i := range resources {
			sr, err := syncssr.NewSignalResource(b, -1)
			if err != nil {
				return err
			}
			resources[i] = sr
		}

		var wg sync.WaitGroup
		for i, sr := range resources {
			wg.Add(1)
			go func(i int, sr *signal.SignalResource[int]) {
				defer wg.Done()
				ctx, cancel := context.WithTimeout(context.Background(), cfg.WaitTimeout)
				defer cancel()

				waitStart := time.Now()
				v, err := sr.ReadOnly().Await(ctx)
				elapsed := time.Since(waitStart)
				if err != nil {
					counters.waitsTimedOut.Add(1)
					return
				}
				if hasWriter[i] {
					if v != i {
						counters.valuesMissed.Add(1)
					}
					counters.waitsWritten.Add(1)
					mu.Lock()
					written = append(written, elapsed)
					mu.Unlock()
					return
				}
				counters.waitsReleased.Add(1)
				mu.Lock()
				released = append(released, elapsed)
				mu.Unlock()
			}(i, sr)
		}

		// Producers acquire their writers synchronously, before the
		// boundary exit below, so every written slot holds its waiter.
		delay := cfg.WriteDelay
		for i, sr := range resources {
			if !hasWriter[i] {
				continue
			}
			ws := sr.WriteOnly()
			go func(i int, ws *signal.WriteSignal[int]) {
				defer ws.Release()
				if delay > 0 {
					time.Sleep(delay)
				}
				ws.Set(i)
			}(i, ws)
		}

		b.Exit()
		wg.Wait()
	}
	elapsed := time.Since(start)

	report := buildReport(cfg, elapsed, written, released, &counters)
	writeSummary(os.Stderr, report)
	return writeJSON(cfg.JSONOutput, report)
}

type benchReport struct {
	Version  string       `json:"version"`
	Run      runInfo      `json:"run"`
	Workload workloadInfo `json:"workload"`
	Written  latencyInfo  `json:"written_wait_ms"`
	Released latencyInfo  `json:"released_wait_ms"`
	Counts   countInfo    `json:"counts"`
}

type runInfo struct {
	Timestamp string `json:"timestamp"`
	Go        string `json:"go"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	CPUCount  int    `json:"cpu_count"`
	ElapsedMS int64  `json:"elapsed_ms"`
}

type workloadInfo struct {
	Rounds       int     `json:"rounds"`
	Slots        int     `json:"slots"`
	WriteRatio   float64 `json:"write_ratio"`
	WriteDelayMS float64 `json:"write_delay_ms"`
}

type latencyInfo struct {
	Count int     `json:"count"`
	Min   float64 `json:"min"`
	P50   float64 `json:"p50"`
	P95   float64 `json:"p95"`
	P99   float64 `json:"p99"`
	Max   float64 `json:"max"`
}

type countInfo struct {
	WaitsWritten  uint64 `json:"waits_written"`
	WaitsReleased uint64 `json:"waits_released"`
	WaitsTimedOut uint64 `json:"waits_timed_out"`
	ValuesMissed  uint64 `json:"values_missed"`
}

func buildReport(cfg benchConfig, elapsed time.Duration, written, released []time.Duration, counters *benchCounters) benchReport {
	return benchReport{
		Version: "1",
		Run: runInfo{
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
			Go:        runtime.Version(),
			OS:        runtime.GOOS,
			Arch:      runtime.GOARCH,
			CPUCount:  runtime.NumCPU(),
			ElapsedMS: elapsed.Milliseconds(),
		},
		Workload: workloadInfo{
			Rounds:       cfg.Rounds,
			Slots:        cfg.Slots,
			WriteRatio:   cfg.WriteRatio,
			WriteDelayMS: ms(cfg.WriteDelay),
		},
		Written:  summarize(written),
		Released: summarize(released),
		Counts: countInfo{
			WaitsWritten:  counters.waitsWritten.Load(),
			WaitsReleased: counters.waitsReleased.Load(),
			WaitsTimedOut: counters.waitsTimedOut.Load(),
			ValuesMissed:  counters.valuesMissed.Load(),
		},
	}
}

func summarize(samples []time.Duration) latencyInfo {
	if len(samples) == 0 {
		return latencyInfo{}
	}
	sorted := append([]time.Duration(nil), samples...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return latencyInfo{
		Count: len(sorted),
		Min:   ms(sorted[0]),
		P50:   ms(percentile(sorted, 0.50)),
		P95:   ms(percentile(sorted, 0.95)),
		P99:   ms(percentile(sorted, 0.99)),
		Max:   ms(sorted[len(sorted)-1]),
	}
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	idx := int(math.Ceil(float64(len(sorted))*p)) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func writeSummary(w io.Writer, report benchReport) {
	fmt.Fprintln(w, "=== sync-ssr Coordination Benchmark ===")
	fmt.Fprintf(w, "Rounds: %d, slots/round: %d, write ratio: %.2f\n",
		report.Workload.Rounds, report.Workload.Slots, report.Workload.WriteRatio)
	fmt.Fprintf(w, "Elapsed: %d ms\n\n", report.Run.ElapsedMS)

	printLatency := func(label string, l latencyInfo) {
		if l.Count == 0 {
			fmt.Fprintf(w, "%s: no samples\n", label)
			return
		}
		fmt.Fprintf(w, "%s (%d samples):\n", label, l.Count)
		fmt.Fprintf(w, "  min: %.3f ms  p50: %.3f ms  p95: %.3f ms  p99: %.3f ms  max: %.3f ms\n",
			l.Min, l.P50, l.P95, l.P99, l.Max)
	}
	printLatency("Written waits", report.Written)
	printLatency("Released waits", report.Released)

	fmt.Fprintf(w, "\nTimeouts: %d, missed values: %d\n",
		report.Counts.WaitsTimedOut, report.Counts.ValuesMissed)
}

func writeJSON(path string, report benchReport) error {
	var out io.Writer
	if path == "-" {
		out = os.Stdout
	} else {
		file, err := os.Create(path)
		if err != nil {
			return err
		}
		defer file.Close()
		out = file
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
