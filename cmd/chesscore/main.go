// Command chesscore inspects chess positions: perft and divide counts,
// static exchange values and FEN validation.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime/pprof"

	"github.com/spf13/cobra"

	"github.com/abcus/chess-engine-sub000/internal/board"
	"github.com/abcus/chess-engine-sub000/internal/config"
	"github.com/abcus/chess-engine-sub000/internal/logging"
	"github.com/abcus/chess-engine-sub000/internal/metrics"
	"github.com/abcus/chess-engine-sub000/internal/perft"
	"github.com/abcus/chess-engine-sub000/internal/storage"
)

// app holds the state shared by every subcommand. It is built in the root
// command's PersistentPreRunE and torn down by close once Execute returns,
// whether or not the command failed.
type app struct {
	configPath string
	logLevel   string
	cpuprofile string

	cfg     *config.Config
	log     *slog.Logger
	tables  *board.Tables
	store   *storage.PerftStore
	runner  *perft.Runner
	profile *os.File
	cancel  context.CancelFunc
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{}
	root := &cobra.Command{
		Use:           "chesscore",
		Short:         "Chess position core: perft, divide, SEE and FEN tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override the configured log level")
	root.PersistentFlags().StringVar(&a.cpuprofile, "cpuprofile", "", "write cpu profile to file")

	root.AddCommand(
		newPerftCmd(a),
		newDivideCmd(a),
		newRunsCmd(a),
		newSEECmd(a),
		newFENCmd(a),
	)
	return root, a
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logging.New(logging.Config{
		Level:  level,
		Format: cfg.Log.Format,
		Output: cmd.ErrOrStderr(),
	})

	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := a.cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			f.Close()
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		a.profile = f
		a.log.Info("CPU profiling enabled", "path", profilePath)
	}

	if cfg.Tables == (config.TablesConfig{}) {
		a.tables = board.DefaultTables()
	} else {
		a.tables = board.NewTables(cfg.TableConfig())
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	a.cancel = cancel
	cmd.SetContext(ctx)

	if cfg.Metrics.Addr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Addr, a.log); err != nil {
				a.log.Error("metrics server failed", "error", err)
			}
		}()
	}
	return nil
}

// openRunner builds the perft runner, opening the result store unless
// caching is disabled.
func (a *app) openRunner(noCache bool) error {
	if a.cfg.Storage.Enabled && !noCache {
		store, err := storage.Open(a.cfg.Storage.Dir, a.log)
		if err != nil {
			return err
		}
		a.store = store
	}
	a.runner = perft.NewRunner(perft.Options{
		Workers:  a.cfg.Perft.Workers,
		MaxDepth: a.cfg.Perft.MaxDepth,
		HashMB:   a.cfg.Perft.HashMB,
		Store:    a.store,
		Logger:   a.log,
	})
	return nil
}

func (a *app) close() error {
	if a.profile != nil {
		pprof.StopCPUProfile()
		a.profile.Close()
		a.profile = nil
	}
	if a.cancel != nil {
		a.cancel()
	}
	if a.store != nil {
		err := a.store.Close()
		a.store = nil
		return err
	}
	return nil
}

// execute runs root and releases everything setup acquired.
func execute(root *cobra.Command, a *app) error {
	err := root.Execute()
	if cerr := a.close(); err == nil {
		err = cerr
	}
	return err
}

// parseFEN parses fen with the configured tables.
func (a *app) parseFEN(fen string) (*board.Position, error) {
	if fen == "" || fen == "startpos" {
		fen = board.StartFEN
	}
	return a.tables.ParseFEN(fen)
}

func main() {
	root, a := newRootCmd()
	if err := execute(root, a); err != nil {
		fmt.Fprintln(os.Stderr, "chesscore:", err)
		os.Exit(1)
	}
}
