package chess

import "testing"

func TestSANRoundTripFromStartPosition(t *testing.T) {
	b := NewBoard()
	var list MoveList
	b.GenerateMoves(&list, GenAll)

	for i := 0; i < list.Len(); i++ {
		m := list.At(i)
		san := b.ToSAN(m)
		got, err := ParseSAN(san, b)
		if err != nil {
			t.Errorf("ParseSAN(%q): %v", san, err)
			continue
		}
		if got != m {
			t.Errorf("ParseSAN(ToSAN(%v)) = %v, want %v (san %q)", m, got, m, san)
		}
	}
}

func TestSANRoundTripKiwipete(t *testing.T) {
	b, err := ParseFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq -", FENRelaxed, false)
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	var list MoveList
	b.GenerateMoves(&list, GenAll)

	for i := 0; i < list.Len(); i++ {
		m := list.At(i)
		san := b.ToSAN(m)
		got, err := ParseSAN(san, b)
		if err != nil {
			t.Errorf("ParseSAN(%q): %v", san, err)
			continue
		}
		if got != m {
			t.Errorf("ParseSAN(ToSAN(%v)) = %v, want %v (san %q)", m, got, m, san)
		}
	}
}

func TestSANCheckmateSuffix(t *testing.T) {
	b, err := ParseFEN("6k1/R7/6K1/8/8/8/8/8 w - -", FENRelaxed, false)
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	m := NewMove(A7, A8)
	san := b.ToSAN(m)
	if san != "Ra8#" {
		t.Errorf("ToSAN(mating rook move) = %q, want %q", san, "Ra8#")
	}
}

func TestCheckmateDetection(t *testing.T) {
	b, err := ParseFEN("R6k/6pp/8/8/8/8/8/K7 b - -", FENRelaxed, false)
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	if !b.InCheck() {
		t.Fatal("position should be in check")
	}
	var list MoveList
	b.GenerateMoves(&list, GenAll)
	if list.Len() != 0 {
		t.Errorf("checkmated side has %d legal moves, want 0", list.Len())
	}
}

func TestStalemateDetection(t *testing.T) {
	b, err := ParseFEN("7k/8/6Q1/8/8/8/8/7K b - -", FENRelaxed, false)
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	if b.InCheck() {
		t.Fatal("stalemated side should not be in check")
	}
	var list MoveList
	b.GenerateMoves(&list, GenAll)
	if list.Len() != 0 {
		t.Errorf("stalemated side has %d legal moves, want 0", list.Len())
	}
}
