// Command corvid is the CLI surface over the engine core: subcommands are
// thin, intentionally minimal collaborators (spec §1 Non-goals), not the
// object of test coverage. Grounded on the teacher's cmd/chessplay-uci/
// main.go's NNUE auto-load and profiling setup.
package main

import (
	"bufio"
	"fmt"
	"log"
	"math/bits"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/corvidchess/corvid/internal/chess"
	"github.com/corvidchess/corvid/internal/config"
	"github.com/corvidchess/corvid/internal/engine"
	"github.com/corvidchess/corvid/internal/search"
	"github.com/corvidchess/corvid/internal/uci"
)

const defaultWeightsFile = "corvid.nnue"

var benchFENs = []string{
	chess.StartFEN,
	"r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3",
	"rnbqkb1r/pp1p1ppp/2p2n2/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R w KQkq - 0 4",
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
}

func main() {
	args := os.Args[1:]
	cmd := "uci"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd = args[0]
		args = args[1:]
	}

	switch cmd {
	case "uci":
		runUCI()
	case "bench":
		runBench(args)
	case "perft":
		runPerft(args)
	case "datagen":
		runDatagen(args)
	case "eval-stats":
		runEvalStats(args)
	case "genmagics":
		runGenMagics()
	default:
		fmt.Fprintf(os.Stderr, "corvid: unknown command %q\n", cmd)
		os.Exit(1)
	}
}

func newEngine() *engine.Engine {
	cfg := config.Default()
	if path := autoLocateWeights(); path != "" {
		cfg.WeightsFile = path
	}
	return engine.NewEngine(cfg)
}

func runUCI() {
	eng := newEngine()
	protocol := uci.New(eng)
	protocol.Run()
}

// runBench searches every position in benchFENs to a fixed depth (default
// 13) and reports total nodes and nodes/sec, the way engines self-report a
// reproducible strength/speed fingerprint for CI and release tagging.
func runBench(args []string) {
	depth := 13
	if len(args) > 0 {
		if d, err := strconv.Atoi(args[0]); err == nil {
			depth = d
		}
	}

	eng := newEngine()
	var totalNodes uint64
	start := time.Now()

	for _, fen := range benchFENs {
		pos, err := chess.ParseFEN(fen, chess.FENStrict, false)
		if err != nil {
			log.Fatalf("bench: %v", err)
		}
		if err := eng.SetPosition(pos, []uint64{pos.Hash}); err != nil {
			log.Fatalf("bench: %v", err)
		}
		eng.Search(pos, search.Limits{Depth: depth}, pos.Ply, nil)
		totalNodes += eng.TotalNodes()
	}

	elapsed := time.Since(start)
	nps := float64(totalNodes) / elapsed.Seconds()
	fmt.Printf("%d nodes %.0f nps\n", totalNodes, nps)
}

func runPerft(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: corvid perft <fen> <depth>")
		os.Exit(1)
	}
	depth, err := strconv.Atoi(args[len(args)-1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "corvid: invalid depth %q\n", args[len(args)-1])
		os.Exit(1)
	}
	fen := strings.Join(args[:len(args)-1], " ")
	if fen == "startpos" {
		fen = chess.StartFEN
	}

	pos, err := chess.ParseFEN(fen, chess.FENStrict, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "corvid: %v\n", err)
		os.Exit(1)
	}

	start := time.Now()
	nodes := engine.Perft(pos, depth)
	elapsed := time.Since(start)
	fmt.Printf("Nodes: %d\n", nodes)
	fmt.Printf("Time: %v\n", elapsed)
	if elapsed > 0 {
		fmt.Printf("NPS: %.0f\n", float64(nodes)/elapsed.Seconds())
	}
}

// runDatagen self-plays fixed-depth games from the start position, writing
// one FEN plus its search score per ply to stdout, the minimal self-play
// data source a later Texel-tuning pass would consume.
func runDatagen(args []string) {
	games := 1
	depth := 6
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil {
			games = n
		}
	}
	if len(args) > 1 {
		if d, err := strconv.Atoi(args[1]); err == nil {
			depth = d
		}
	}

	eng := newEngine()
	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()

	for g := 0; g < games; g++ {
		pos := chess.NewBoard()
		hashes := []uint64{pos.Hash}
		for ply := 0; ply < 200; ply++ {
			var moves chess.MoveList
			pos.GenerateMoves(&moves, chess.GenAll)
			if moves.Len() == 0 {
				break
			}

			if err := eng.SetPosition(pos, hashes); err != nil {
				log.Fatalf("datagen: %v", err)
			}
			best, score := eng.Search(pos, search.Limits{Depth: depth}, ply, nil)
			if best == chess.NoMove {
				break
			}
			fmt.Fprintf(w, "%s | %d\n", pos.FEN(), score)

			pos.MakeMove(best)
			hashes = append(hashes, pos.Hash)
			if pos.IsDraw() {
				break
			}
		}
	}
}

// runEvalStats reads EPD lines from a file (or stdin if path is "-") and
// prints each position's static evaluation, for sanity-checking the NNUE
// evaluator against a labeled suite (spec's EPD-suite supplement).
func runEvalStats(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: corvid eval-stats <epd>")
		os.Exit(1)
	}

	var r *os.File
	if args[0] == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(args[0])
		if err != nil {
			log.Fatalf("eval-stats: %v", err)
		}
		defer f.Close()
		r = f
	}

	eng := newEngine()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}
		fen := strings.Join(fields[:4], " ")
		pos, err := chess.ParseFEN(fen, chess.FENRelaxed, false)
		if err != nil {
			fmt.Fprintf(os.Stderr, "eval-stats: skipping %q: %v\n", fen, err)
			continue
		}
		score, err := eng.Evaluate(pos)
		if err != nil {
			log.Fatalf("eval-stats: %v", err)
		}
		fmt.Printf("%s | eval %d\n", fen, score)
	}
}

// runGenMagics prints a freshly searched set of magic-bitboard multipliers
// in the layout of the tables internal/chess/magic.go bakes in (spec §4
// magics, §9 open question on offline vs. first-start generation). It does
// not compare them with the checked-in numbers.
func runGenMagics() {
	fmt.Println("var bishopMagicNumbers = [64]uint64{")
	for sq := chess.A1; sq <= chess.H8; sq++ {
		m := chess.FindMagic(uint64(sq)*0x9E3779B97F4A7C15+1, sq, chess.BishopMask(sq), chess.BishopAttacksSlow)
		fmt.Printf("\t0x%016x, // %s (popcount %d)\n", m, sq, bits.OnesCount64(m))
	}
	fmt.Println("}")

	fmt.Println("var rookMagicNumbers = [64]uint64{")
	for sq := chess.A1; sq <= chess.H8; sq++ {
		m := chess.FindMagic(uint64(sq)*0x9E3779B97F4A7C15+2, sq, chess.RookMask(sq), chess.RookAttacksSlow)
		fmt.Printf("\t0x%016x, // %s (popcount %d)\n", m, sq, bits.OnesCount64(m))
	}
	fmt.Println("}")
}

// autoLocateWeights looks for a trained network next to the binary and in
// the user's config directory, mirroring the teacher's autoLoadNNUE search
// path, falling back to the evaluator's built-in random weights.
func autoLocateWeights() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	candidates := []string{
		filepath.Join(".", defaultWeightsFile),
		filepath.Join(home, ".corvid", defaultWeightsFile),
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
