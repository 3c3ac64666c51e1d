package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"uk.ac.bris.cs/hashlife/gol"
	"uk.ac.bris.cs/hashlife/patterns"
)

type runFlags struct {
	config      string
	turns       int
	threads     int
	stepExp     int
	rule        string
	pattern     string
	offsetX     int
	offsetY     int
	seed        uint64
	randomSize  int
	density     float64
	metricsAddr string
	logLevel    string
	jsonLogs    bool
	print       bool
	interactive bool
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "hashlife",
		Short:         "Run Life-like cellular automata with the Hashlife algorithm",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(newRunCmd(), newPatternsCmd())
	return rootCmd
}

func newRunCmd() *cobra.Command {
	var f runFlags
	defaults := gol.DefaultParams()
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Evolve a pattern for a number of generations",
		Long: `Evolves a library pattern, optionally loaded from a yaml config file, and logs
progress. Flags given explicitly override the config file. SIGINT stops the run
and reports the generation reached.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, f)
		},
	}
	flags := runCmd.Flags()
	flags.StringVarP(&f.config, "config", "c", "", "yaml parameter file")
	flags.IntVarP(&f.turns, "turns", "t", defaults.Turns, "generations to advance, -1 to run until interrupted")
	flags.IntVar(&f.threads, "threads", defaults.Threads, "goroutines used by each step")
	flags.IntVar(&f.stepExp, "step-exp", defaults.StepExponent, "advance 2^N generations per step, -1 for the largest possible step")
	flags.StringVarP(&f.rule, "rule", "r", defaults.Rule, "rule in B/S notation")
	flags.StringVarP(&f.pattern, "pattern", "p", defaults.Pattern, "library pattern, see 'hashlife patterns'")
	flags.IntVar(&f.offsetX, "x", 0, "x offset of the pattern centre")
	flags.IntVar(&f.offsetY, "y", 0, "y offset of the pattern centre")
	flags.Uint64Var(&f.seed, "seed", defaults.Seed, "seed of the random pattern")
	flags.IntVar(&f.randomSize, "random-size", defaults.RandomSize, "side of the random pattern")
	flags.Float64Var(&f.density, "density", defaults.Density, "live fraction of the random pattern")
	flags.StringVar(&f.metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")
	flags.StringVar(&f.logLevel, "log-level", "info", "debug, info, warn or error")
	flags.BoolVar(&f.jsonLogs, "json-logs", false, "log as JSON")
	flags.BoolVar(&f.print, "print", false, "print the final live cells as 'x y' lines")
	flags.BoolVarP(&f.interactive, "interactive", "i", false, "read p (pause), s (snapshot) and q (quit) from stdin")
	return runCmd
}

// Merge the config file with the flags the user set
func resolveParams(cmd *cobra.Command, f runFlags) (gol.Params, error) {
	p := gol.DefaultParams()
	if f.config != "" {
		var err error
		if p, err = gol.LoadParams(f.config); err != nil {
			return gol.Params{}, err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("turns") {
		p.Turns = f.turns
	}
	if flags.Changed("threads") {
		p.Threads = f.threads
	}
	if flags.Changed("step-exp") {
		p.StepExponent = f.stepExp
	}
	if flags.Changed("rule") {
		p.Rule = f.rule
	}
	if flags.Changed("pattern") {
		p.Pattern = f.pattern
	}
	if flags.Changed("x") {
		p.OffsetX = f.offsetX
	}
	if flags.Changed("y") {
		p.OffsetY = f.offsetY
	}
	if flags.Changed("seed") {
		p.Seed = f.seed
	}
	if flags.Changed("random-size") {
		p.RandomSize = f.randomSize
	}
	if flags.Changed("density") {
		p.Density = f.density
	}
	return p, p.Validate()
}

func runRun(cmd *cobra.Command, f runFlags) error {
	logger, err := newLogger(cmd.ErrOrStderr(), f.logLevel, f.jsonLogs)
	if err != nil {
		return err
	}
	p, err := resolveParams(cmd, f)
	if err != nil {
		return err
	}

	if f.metricsAddr != "" {
		server := serveMetrics(f.metricsAddr, logger)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
		}()
	}

	keyPresses := make(chan rune, 10)
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})
	defer func() {
		signal.Stop(signals)
		close(done)
	}()
	go func() {
		select {
		case <-signals:
			keyPresses <- 'q'
		case <-done:
		}
	}()
	if f.interactive {
		go readKeys(cmd.InOrStdin(), keyPresses, done)
	}

	logger.Info("starting", "pattern", p.Pattern, "rule", p.Rule, "turns", p.Turns, "threads", p.Threads)
	start := time.Now()
	events := make(chan gol.Event)
	go gol.Run(p, events, keyPresses)

	var final gol.FinalTurnComplete
	for event := range events {
		switch e := event.(type) {
		case gol.TurnComplete:
			logger.Debug("step", "generation", e.CompletedTurns, "advanced", e.Advanced, "level", e.Level, "nodes", e.Nodes)
		case gol.AliveCellsCount:
			logger.Info("alive", "generation", e.CompletedTurns, "cells", e.CellsCount)
		case gol.StateChange:
			logger.Info("state", "generation", e.CompletedTurns, "state", e.NewState.String())
		case gol.Snapshot:
			logger.Info("snapshot", "generation", e.CompletedTurns, "population", e.Population, "min", e.Min.String(), "max", e.Max.String())
		case gol.FinalTurnComplete:
			final = e
		case gol.CellsFlipped:
			logger.Debug("loaded", "cells", len(e.Cells))
		}
	}
	logger.Info("finished", "generation", final.CompletedTurns, "population", len(final.Alive), "elapsed", time.Since(start))

	if f.print {
		out := bufio.NewWriter(cmd.OutOrStdout())
		for _, cell := range final.Alive {
			fmt.Fprintf(out, "%d %d\n", cell.X, cell.Y)
		}
		return out.Flush()
	}
	return nil
}

// Forward p, s and q from r until it ends or done is closed
func readKeys(r io.Reader, keyPresses chan<- rune, done <-chan struct{}) {
	reader := bufio.NewReader(r)
	for {
		char, _, err := reader.ReadRune()
		if err != nil {
			return
		}
		switch char {
		case 'p', 's', 'q':
			select {
			case keyPresses <- char:
			case <-done:
				return
			}
		}
	}
}

func serveMetrics(addr string, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "addr", addr, "error", err)
		}
	}()
	logger.Info("serving metrics", "addr", addr)
	return server
}

func newPatternsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "patterns",
		Short: "List the built-in patterns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSIZE\tCELLS\tDESCRIPTION")
			for _, name := range patterns.Names() {
				p, _ := patterns.Lookup(name)
				width, height := p.Size()
				fmt.Fprintf(w, "%s\t%dx%d\t%d\t%s\n", p.Name, width, height, len(p.Cells), p.Description)
			}
			fmt.Fprintf(w, "%s\t--random-size\t-\tseeded soup, see --seed and --density\n", patterns.RandomName)
			return w.Flush()
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
