package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abcus/chess-engine-sub000/internal/board"
)

func newSEECmd(a *app) *cobra.Command {
	var fen, move string
	cmd := &cobra.Command{
		Use:   "see",
		Short: "Static exchange evaluation of a capture",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := a.parseFEN(fen)
			if err != nil {
				return err
			}
			m, err := pos.ParseMove(move)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d\n", pos.SAN(m), pos.SEE(m.From, m.To, pos.SideToMove))
			return nil
		},
	}
	cmd.Flags().StringVar(&fen, "fen", "startpos", "position")
	cmd.Flags().StringVarP(&move, "move", "m", "", "move in coordinate notation, e.g. e4d5")
	_ = cmd.MarkFlagRequired("move")
	return cmd
}

func newFENCmd(a *app) *cobra.Command {
	var fen string
	cmd := &cobra.Command{
		Use:   "fen",
		Short: "Validate a FEN and describe the position",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := a.parseFEN(fen)
			if err != nil {
				return err
			}
			if err := pos.Verify(); err != nil {
				return err
			}

			moves := pos.LegalMoves()
			names := make([]string, len(moves))
			for i, m := range moves {
				names[i] = pos.SAN(m)
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, pos)
			fmt.Fprintf(out, "fen    %s\n", pos.ToFEN())
			fmt.Fprintf(out, "score  %d\n", pos.Score)
			fmt.Fprintf(out, "status %s\n", status(pos))
			fmt.Fprintf(out, "moves  %d: %s\n", len(moves), strings.Join(names, " "))
			return nil
		},
	}
	cmd.Flags().StringVar(&fen, "fen", "startpos", "position")
	return cmd
}

func status(pos *board.Position) string {
	switch {
	case pos.IsCheckmate():
		return "checkmate"
	case pos.IsStalemate():
		return "stalemate"
	case pos.IsInsufficientMaterial():
		return "insufficient material"
	case pos.IsDrawByFiftyMoves():
		return "fifty-move draw"
	}
	return pos.CheckStatus().String()
}
