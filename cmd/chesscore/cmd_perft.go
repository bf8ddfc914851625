package main

import (
	"fmt"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/abcus/chess-engine-sub000/internal/board"
)

func newPerftCmd(a *app) *cobra.Command {
	var (
		fen     string
		depth   int
		workers int
		noCache bool
	)
	cmd := &cobra.Command{
		Use:   "perft",
		Short: "Count leaf nodes of the legal move tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if workers > 0 {
				a.cfg.Perft.Workers = workers
			}
			if err := a.openRunner(noCache); err != nil {
				return err
			}
			pos, err := a.parseFEN(fen)
			if err != nil {
				return err
			}
			res, err := a.runner.Perft(cmd.Context(), pos, depth)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "nodes %d\n", res.Nodes)
			fmt.Fprintf(out, "time  %s\n", res.Elapsed.Round(time.Millisecond))
			if res.Cached {
				fmt.Fprintln(out, "cached")
			} else {
				fmt.Fprintf(out, "nps   %d\n", res.NPS())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&fen, "fen", "startpos", "position to count from")
	cmd.Flags().IntVarP(&depth, "depth", "d", 5, "search depth")
	cmd.Flags().IntVar(&workers, "workers", 0, "override the configured worker count")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "skip the perft result store")
	return cmd
}

func newDivideCmd(a *app) *cobra.Command {
	var (
		fen     string
		depth   int
		san     bool
		noCache bool
	)
	cmd := &cobra.Command{
		Use:   "divide",
		Short: "Count leaf nodes below each legal root move",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.openRunner(noCache); err != nil {
				return err
			}
			pos, err := a.parseFEN(fen)
			if err != nil {
				return err
			}
			res, err := a.runner.Divide(cmd.Context(), pos, depth)
			if err != nil {
				return err
			}

			entries := append([]board.DivideEntry(nil), res.Divide...)
			sort.Slice(entries, func(i, j int) bool {
				return entries[i].Move.String() < entries[j].Move.String()
			})

			out := cmd.OutOrStdout()
			for _, e := range entries {
				name := e.Move.String()
				if san {
					name = pos.SAN(e.Move)
				}
				fmt.Fprintf(out, "%s: %d\n", name, e.Nodes)
			}
			fmt.Fprintf(out, "\nmoves %d\nnodes %d\n", len(entries), res.Nodes)
			return nil
		},
	}
	cmd.Flags().StringVar(&fen, "fen", "startpos", "position to count from")
	cmd.Flags().IntVarP(&depth, "depth", "d", 3, "search depth")
	cmd.Flags().BoolVar(&san, "san", false, "print moves in SAN")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "skip the perft result store")
	return cmd
}

func newRunsCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded perft runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.cfg.Storage.Enabled {
				return fmt.Errorf("storage is disabled in the config")
			}
			if err := a.openRunner(false); err != nil {
				return err
			}
			runs, err := a.store.Runs()
			if err != nil {
				return err
			}
			if limit > 0 && len(runs) > limit {
				runs = runs[:limit]
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "FINISHED\tDEPTH\tNODES\tTIME\tCACHED\tFEN")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%t\t%s\n",
					r.Finished.Format(time.DateTime), r.Depth, r.Nodes,
					r.Duration.Round(time.Millisecond), r.Cached, r.FEN)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of runs to show")
	return cmd
}
