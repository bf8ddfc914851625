// Package perft runs parallel, cached perft counts over board positions.
//
// Root moves are split across workers, each walking its own copy of the
// position. Results are cached in a storage.PerftStore keyed by the
// position hash and depth.
package perft

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/abcus/chess-engine-sub000/internal/board"
	"github.com/abcus/chess-engine-sub000/internal/metrics"
	"github.com/abcus/chess-engine-sub000/internal/storage"
)

// ErrDepth is returned for depths outside the runner's range.
var ErrDepth = errors.New("perft: depth out of range")

// Options configures a Runner.
type Options struct {
	Workers  int // <= 0 selects GOMAXPROCS
	MaxDepth int // <= 0 means unbounded
	HashMB   int // size of the shared subtree table; 0 disables it
	Store    *storage.PerftStore
	Logger   *slog.Logger
}

// Result is the outcome of one perft or divide run.
type Result struct {
	RunID   string
	FEN     string
	Depth   int
	Nodes   uint64
	Divide  []board.DivideEntry // nil for plain perft runs
	Cached  bool
	Elapsed time.Duration
}

// NPS returns nodes per second, or zero when the run took no measurable time.
func (r Result) NPS() uint64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return uint64(float64(r.Nodes) / r.Elapsed.Seconds())
}

// Runner executes perft runs. It is safe for concurrent use.
type Runner struct {
	workers  int
	maxDepth int
	table    *Table
	store    *storage.PerftStore
	log      *slog.Logger
	tracer   trace.Tracer
}

// NewRunner creates a Runner from opts.
func NewRunner(opts Options) *Runner {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	var table *Table
	if opts.HashMB > 0 {
		table = NewTable(opts.HashMB)
	}
	return &Runner{
		workers:  workers,
		maxDepth: opts.MaxDepth,
		table:    table,
		store:    opts.Store,
		log:      log,
		tracer:   otel.Tracer("chesscore/perft"),
	}
}

// Perft counts leaf nodes below pos to depth. pos is not modified.
func (r *Runner) Perft(ctx context.Context, pos *board.Position, depth int) (Result, error) {
	return r.run(ctx, pos, depth, false)
}

// Divide counts leaf nodes below each legal root move. Entries follow
// generation order.
func (r *Runner) Divide(ctx context.Context, pos *board.Position, depth int) (Result, error) {
	return r.run(ctx, pos, depth, true)
}

func (r *Runner) run(ctx context.Context, pos *board.Position, depth int, divide bool) (Result, error) {
	if depth < 0 || (r.maxDepth > 0 && depth > r.maxDepth) {
		return Result{}, fmt.Errorf("%w: %d", ErrDepth, depth)
	}

	kind := "perft"
	if divide {
		kind = "divide"
	}
	res := Result{
		RunID: uuid.NewString(),
		FEN:   pos.ToFEN(),
		Depth: depth,
	}

	ctx, span := r.tracer.Start(ctx, "perft.Runner."+kind, trace.WithAttributes(
		attribute.String("run_id", res.RunID),
		attribute.String("fen", res.FEN),
		attribute.Int("depth", depth),
	))
	defer span.End()

	log := r.log.With("run_id", res.RunID, "kind", kind, "depth", depth)
	log.Debug("perft started", "fen", res.FEN, "workers", r.workers)
	start := time.Now()

	if r.lookup(ctx, pos.Hash, depth, divide, &res) {
		res.Elapsed = time.Since(start)
		span.SetAttributes(attribute.Bool("cached", true))
		log.Info("perft cache hit", "nodes", res.Nodes)
		r.record(log, res)
		return res, nil
	}

	entries, err := r.divide(ctx, pos, depth)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "perft cancelled")
		return Result{}, err
	}
	for _, e := range entries {
		res.Nodes += e.Nodes
	}
	if depth == 0 {
		res.Nodes = 1
	}
	if divide {
		res.Divide = entries
	}
	res.Elapsed = time.Since(start)

	metrics.PerftNodes.WithLabelValues(kind).Add(float64(res.Nodes))
	metrics.PerftDuration.Observe(res.Elapsed.Seconds())
	span.SetAttributes(attribute.Int64("nodes", int64(res.Nodes)))
	span.SetStatus(codes.Ok, "")
	log.Info("perft finished", "nodes", res.Nodes, "elapsed", res.Elapsed, "nps", res.NPS())

	r.save(log, pos.Hash, depth, entries, res)
	return res, nil
}

// divide walks every legal root move on its own copy of pos.
func (r *Runner) divide(ctx context.Context, pos *board.Position, depth int) ([]board.DivideEntry, error) {
	if depth == 0 {
		return nil, nil
	}
	moves := pos.LegalMoves()
	entries := make([]board.DivideEntry, len(moves))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, m := range moves {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			child := pos.Copy()
			child.MakeMove(m)
			var nodes uint64
			if r.table != nil {
				nodes = hashedPerft(child, depth-1, r.table)
			} else {
				nodes = child.Perft(depth - 1)
			}
			entries[i] = board.DivideEntry{Move: m, Nodes: nodes}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}

// lookup fills res from the store. It reports whether the result was found.
func (r *Runner) lookup(ctx context.Context, hash uint64, depth int, divide bool, res *Result) bool {
	if r.store == nil {
		return false
	}
	_, span := r.tracer.Start(ctx, "perft.Runner.lookup")
	defer span.End()

	var err error
	if divide {
		var entries []board.DivideEntry
		entries, err = r.store.LoadDivide(hash, depth)
		if err == nil {
			res.Divide = entries
			for _, e := range entries {
				res.Nodes += e.Nodes
			}
			if depth == 0 {
				res.Nodes = 1
			}
		}
	} else {
		res.Nodes, err = r.store.LoadNodes(hash, depth)
	}

	switch {
	case err == nil:
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		res.Cached = true
		return true
	case errors.Is(err, storage.ErrNotFound):
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	default:
		metrics.CacheLookups.WithLabelValues("error").Inc()
		span.RecordError(err)
		r.log.Warn("perft cache lookup failed", "error", err)
	}
	return false
}

// save stores a computed result. Store failures are logged, not returned.
func (r *Runner) save(log *slog.Logger, hash uint64, depth int, entries []board.DivideEntry, res Result) {
	if r.store == nil {
		return
	}
	if err := r.store.SaveNodes(hash, depth, res.Nodes); err != nil {
		log.Warn("perft cache save failed", "error", err)
	}
	if err := r.store.SaveDivide(hash, depth, entries); err != nil {
		log.Warn("divide cache save failed", "error", err)
	}
	r.record(log, res)
}

func (r *Runner) record(log *slog.Logger, res Result) {
	if r.store == nil {
		return
	}
	rec := storage.RunRecord{
		ID:       res.RunID,
		FEN:      res.FEN,
		Depth:    res.Depth,
		Nodes:    res.Nodes,
		Workers:  r.workers,
		Cached:   res.Cached,
		Duration: res.Elapsed,
		Finished: time.Now(),
	}
	if err := r.store.SaveRun(rec); err != nil {
		log.Warn("run record save failed", "error", err)
	}
}
