// Package profile provides the stacklight CLI commands.
package profile

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v4/process"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/stacklight/stacklight/internal/config"
	"github.com/stacklight/stacklight/internal/logging"
	"github.com/stacklight/stacklight/internal/sampler"
)

// RegisterCommands attaches the profiling subcommands to root.
func RegisterCommands(root *cobra.Command) {
	root.AddCommand(newRunCmd())
}

func newRunCmd() *cobra.Command {
	var (
		workers    int
		duration   time.Duration
		configPath string
		topN       int
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Sample a synthetic workload and print the hottest stacks",
		Long: `Run spins up worker goroutines over a CPU-bound synthetic workload,
installs the sampling engine, and after the given duration drains every
worker's trace buffer and prints the most frequently captured stacks.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd, workers, duration, configPath, topN)
		},
	}

	registerRunFlags(cmd.Flags(), &workers, &duration, &configPath, &topN)
	return cmd
}

func registerRunFlags(fs *pflag.FlagSet, workers *int, duration *time.Duration, configPath *string, topN *int) {
	fs.IntVarP(workers, "workers", "w", 4, "number of worker goroutines to sample")
	fs.DurationVarP(duration, "duration", "d", 2*time.Second, "how long to sample the workload")
	fs.StringVarP(configPath, "config", "c", "", "optional YAML config file")
	fs.IntVar(topN, "top", 10, "number of stacks to report")
}

func runDemo(cmd *cobra.Command, workers int, duration time.Duration, configPath string, topN int) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := logging.New(logging.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})

	prof := sampler.New(sampler.Options{
		Interval:  cfg.Sampling.Interval,
		MaxTraces: cfg.Sampling.MaxTraces,
		MaxFrames: cfg.Sampling.MaxFrames,
		Logger:    logger,
	})

	if !prof.Install() {
		return fmt.Errorf("failed to install profiler")
	}
	defer prof.Uninstall()
	prof.Start()

	logger.Info().
		Int("workers", workers).
		Dur("duration", duration).
		Msg("sampling synthetic workload")

	results := make(chan [][]sampler.FrameLine, workers)
	deadline := time.Now().Add(duration)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()

			tc, err := prof.Register()
			if err != nil {
				logger.Error().Err(err).Int("worker", id).Msg("failed to register worker")
				return
			}
			defer prof.Deregister(tc)

			tc.StartSampling()
			for time.Now().Before(deadline) {
				burn(id)
				tc.Poll()
			}
			tc.StopSampling(false)

			results <- tc.ProfileFrames()
		}(i)
	}
	wg.Wait()
	close(results)

	var traces [][]sampler.FrameLine
	for r := range results {
		traces = append(traces, r...)
	}

	logger.Info().Int("traces", len(traces)).Msg("drained trace buffers")

	printSummary(cmd, summarize(traces), len(traces), topN, prof.ClassForFrame)
	logProcessStats(logger)
	return nil
}

// burn is the synthetic workload: a small call pyramid so captured stacks
// have recognizable shape and depth.
func burn(seed int) {
	burnOuter(seed)
}

func burnOuter(seed int) int {
	return burnInner(seed) + burnInner(seed+1)
}

func burnInner(seed int) int {
	acc := seed
	for i := 0; i < 5000; i++ {
		acc = (acc*31 + i) % 1_000_003
	}
	return acc
}

// logProcessStats reports the sampled process's own resource usage so the
// demo doubles as an overhead sanity check.
func logProcessStats(logger zerolog.Logger) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		logger.Warn().Err(err).Msg("failed to inspect own process")
		return
	}

	ev := logger.Info()
	if cpuPct, err := proc.CPUPercent(); err == nil {
		ev = ev.Float64("cpu_percent", cpuPct)
	}
	if mem, err := proc.MemoryInfo(); err == nil && mem != nil {
		ev = ev.Uint64("rss_bytes", mem.RSS)
	}
	if threads, err := proc.NumThreads(); err == nil {
		ev = ev.Int32("os_threads", threads)
	}
	ev.Msg("process stats after sampling")
}
