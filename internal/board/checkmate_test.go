package board

import (
	"testing"
)

func TestCheckmate(t *testing.T) {
	// Back rank mate: black king on h8 boxed in by its own pawns.
	pos, err := ParseFEN("R6k/6pp/8/8/8/8/8/K7 b - - 0 1")
	if err != nil {
		t.Fatal("Error parsing FEN:", err)
	}

	t.Log("Checkmate position:")
	t.Log(pos)

	if pos.CheckStatus() != Check {
		t.Errorf("CheckStatus = %v, want check", pos.CheckStatus())
	}
	if !pos.IsCheckmate() {
		t.Error("Expected checkmate but got false")
	}
	if pos.IsStalemate() {
		t.Error("Checkmate reported as stalemate")
	}
}

func TestNotCheckmate(t *testing.T) {
	// Black king on h8, rook on g8 but king can take it
	pos, err := ParseFEN("6Rk/8/8/8/8/8/8/K7 b - - 0 1")
	if err != nil {
		t.Fatal("Error parsing FEN:", err)
	}

	moves := pos.LegalMoves()
	t.Log("Black legal moves:", len(moves))
	for _, m := range moves {
		t.Log("  Move:", m)
	}

	if pos.IsCheckmate() {
		t.Error("Expected NOT checkmate but got true")
	}
}

func TestStalemate(t *testing.T) {
	pos, err := ParseFEN("7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	if err != nil {
		t.Fatal("Error parsing FEN:", err)
	}
	if !pos.IsStalemate() || !pos.IsDraw() {
		t.Error("Expected stalemate")
	}
	if pos.IsCheckmate() {
		t.Error("Stalemate reported as checkmate")
	}
}

func TestDoubleCheck(t *testing.T) {
	// Knight on f6 and rook on e1 both check the king on e8.
	pos, err := ParseFEN("4k3/8/5N2/8/8/8/8/4RK2 b - - 0 1")
	if err != nil {
		t.Fatal("Error parsing FEN:", err)
	}
	if pos.CheckStatus() != DoubleCheck {
		t.Fatalf("CheckStatus = %v, want double-check", pos.CheckStatus())
	}
	for _, m := range pos.LegalMoves() {
		if m.From != E8 {
			t.Errorf("non-king move %v in double check", m)
		}
	}
}
