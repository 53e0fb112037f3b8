// Package uci implements the Universal Chess Interface protocol front end,
// a thin collaborator over internal/engine (spec §6, §1 Non-goals: not a
// test-coverage target in its own right). Grounded on the teacher's
// internal/uci/uci.go main loop and option handling, generalized onto
// internal/chess and the new internal/engine/internal/search façade.
package uci

import (
	"bufio"
	"fmt"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/corvidchess/corvid/internal/chess"
	"github.com/corvidchess/corvid/internal/config"
	"github.com/corvidchess/corvid/internal/engine"
	"github.com/corvidchess/corvid/internal/search"
	"github.com/corvidchess/corvid/internal/tablebase"
)

// UCI implements the Universal Chess Interface protocol.
type UCI struct {
	eng      *engine.Engine
	position *chess.Board

	positionHashes []uint64

	weightsFile string

	syzygyPath       string
	syzygyProbeDepth int

	searching     bool
	searchDone    chan struct{}
	stopRequested atomic.Bool

	profileFile *os.File
}

// New creates a new UCI protocol handler wrapping eng.
func New(eng *engine.Engine) *UCI {
	return &UCI{eng: eng, position: chess.NewBoard()}
}

// Run starts the UCI main loop, reading commands from stdin until "quit".
func (u *UCI) Run() {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 1<<20), 1<<20)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.Fields(line)
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "uci":
			u.handleUCI()
		case "isready":
			fmt.Println("readyok")
		case "ucinewgame":
			u.handleNewGame()
		case "position":
			u.handlePosition(args)
		case "go":
			u.handleGo(args)
		case "stop":
			u.handleStop()
		case "quit":
			u.handleQuit()
		case "setoption":
			u.handleSetOption(args)
		case "d":
			fmt.Println(u.position.String())
		case "perft":
			u.handlePerft(args)
		}
	}
}

func (u *UCI) handleUCI() {
	fmt.Println("id name Corvid")
	fmt.Println("id author Corvid Contributors")
	fmt.Println()
	fmt.Println("option name Hash type spin default 16 min 1 max 65536")
	fmt.Println("option name Threads type spin default 1 min 1 max 256")
	fmt.Println("option name UseNNUE type check default true")
	fmt.Println("option name EvalFile type string default <empty>")
	fmt.Println("option name SyzygyPath type string default <empty>")
	fmt.Println("option name SyzygyProbeDepth type spin default 1 min 1 max 100")
	fmt.Println("option name UCI_Chess960 type check default false")
	fmt.Println("uciok")
}

func (u *UCI) handleNewGame() {
	u.eng.Clear()
	u.position = chess.NewBoard()
	u.positionHashes = []uint64{u.position.Hash}
}

// handlePosition parses "position [startpos|fen <fen>] [moves ...]".
func (u *UCI) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}
	u.positionHashes = nil

	var moveStart int
	switch args[0] {
	case "startpos":
		u.position = chess.NewBoard()
		moveStart = 1
	case "fen":
		fenEnd := len(args)
		for i, a := range args[1:] {
			if a == "moves" {
				fenEnd = i + 1
				break
			}
		}
		fenStr := strings.Join(args[1:fenEnd], " ")
		pos, err := chess.ParseFEN(fenStr, chess.FENStrict, u.position.Chess960)
		if err != nil {
			fmt.Fprintf(os.Stderr, "info string error: invalid FEN: %v\n", err)
			return
		}
		u.position = pos
		moveStart = fenEnd + 1
	default:
		return
	}

	for i, a := range args {
		if a == "moves" {
			moveStart = i + 1
			break
		}
	}

	u.positionHashes = append(u.positionHashes, u.position.Hash)

	if moveStart < len(args) {
		for _, moveStr := range args[moveStart:] {
			m, err := chess.ParseMove(moveStr, u.position)
			if err != nil || !u.position.IsLegal(m) {
				fmt.Fprintf(os.Stderr, "info string error: illegal move %s\n", moveStr)
				return
			}
			u.position.MakeMove(m)
			u.positionHashes = append(u.positionHashes, u.position.Hash)
		}
	}
}

// goOptions holds parsed "go" command arguments.
type goOptions struct {
	Depth     int
	Nodes     uint64
	MoveTime  time.Duration
	Infinite  bool
	WTime     time.Duration
	BTime     time.Duration
	WInc      time.Duration
	BInc      time.Duration
	MovesToGo int
}

func (u *UCI) handleGo(args []string) {
	opts := u.parseGoOptions(args)
	limits := search.Limits{
		Depth:     opts.Depth,
		Nodes:     opts.Nodes,
		MoveTime:  opts.MoveTime,
		WTime:     opts.WTime,
		BTime:     opts.BTime,
		WInc:      opts.WInc,
		BInc:      opts.BInc,
		MovesToGo: opts.MovesToGo,
		Infinite:  opts.Infinite,
	}

	pos, err := chess.ParseFEN(u.position.FEN(), chess.FENStrict, u.position.Chess960)
	if err != nil {
		fmt.Fprintf(os.Stderr, "info string error: %v\n", err)
		return
	}
	hashes := append([]uint64(nil), u.positionHashes...)
	ply := u.position.Ply

	u.searching = true
	u.stopRequested.Store(false)
	u.searchDone = make(chan struct{})

	go func() {
		defer close(u.searchDone)

		if err := u.eng.SetPosition(pos, hashes); err != nil {
			fmt.Fprintf(os.Stderr, "info string error: %v\n", err)
		}
		bestMove, _ := u.eng.Search(pos, limits, ply, u.sendInfo)
		u.searching = false

		if bestMove == chess.NoMove {
			fmt.Println("bestmove 0000")
			return
		}
		fmt.Printf("bestmove %s\n", bestMove.String())
	}()
}

func (u *UCI) parseGoOptions(args []string) goOptions {
	var opts goOptions
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "depth":
			if i+1 < len(args) {
				opts.Depth, _ = strconv.Atoi(args[i+1])
				i++
			}
		case "nodes":
			if i+1 < len(args) {
				n, _ := strconv.ParseUint(args[i+1], 10, 64)
				opts.Nodes = n
				i++
			}
		case "movetime":
			if i+1 < len(args) {
				ms, _ := strconv.Atoi(args[i+1])
				opts.MoveTime = time.Duration(ms) * time.Millisecond
				i++
			}
		case "infinite":
			opts.Infinite = true
		case "wtime":
			if i+1 < len(args) {
				ms, _ := strconv.Atoi(args[i+1])
				opts.WTime = time.Duration(ms) * time.Millisecond
				i++
			}
		case "btime":
			if i+1 < len(args) {
				ms, _ := strconv.Atoi(args[i+1])
				opts.BTime = time.Duration(ms) * time.Millisecond
				i++
			}
		case "winc":
			if i+1 < len(args) {
				ms, _ := strconv.Atoi(args[i+1])
				opts.WInc = time.Duration(ms) * time.Millisecond
				i++
			}
		case "binc":
			if i+1 < len(args) {
				ms, _ := strconv.Atoi(args[i+1])
				opts.BInc = time.Duration(ms) * time.Millisecond
				i++
			}
		case "movestogo":
			if i+1 < len(args) {
				opts.MovesToGo, _ = strconv.Atoi(args[i+1])
				i++
			}
		}
	}
	return opts
}

// sendInfo prints one iterative-deepening depth's result in UCI format.
func (u *UCI) sendInfo(info search.Info) {
	var parts []string
	parts = append(parts, fmt.Sprintf("depth %d", info.Depth))

	const mateScore = 32000
	switch {
	case info.Score > mateScore-100:
		parts = append(parts, fmt.Sprintf("score mate %d", (mateScore-info.Score+1)/2))
	case info.Score < -mateScore+100:
		parts = append(parts, fmt.Sprintf("score mate %d", -(mateScore+info.Score+1)/2))
	default:
		parts = append(parts, fmt.Sprintf("score cp %d", info.Score))
	}

	parts = append(parts, fmt.Sprintf("nodes %d", info.Nodes))
	parts = append(parts, fmt.Sprintf("time %d", info.Time.Milliseconds()))
	if info.Time > 0 {
		nps := uint64(float64(info.Nodes) / info.Time.Seconds())
		parts = append(parts, fmt.Sprintf("nps %d", nps))
	}
	if hf := u.eng.HashFull(); hf > 0 {
		parts = append(parts, fmt.Sprintf("hashfull %d", hf))
	}
	if len(info.PV) > 0 {
		strs := make([]string, len(info.PV))
		for i, m := range info.PV {
			strs[i] = m.String()
		}
		parts = append(parts, "pv "+strings.Join(strs, " "))
	}

	fmt.Printf("info %s\n", strings.Join(parts, " "))
}

func (u *UCI) handleStop() {
	if u.searching {
		u.stopRequested.Store(true)
		u.eng.Stop()
		<-u.searchDone
	}
}

func (u *UCI) handleQuit() {
	u.handleStop()
	if u.profileFile != nil {
		pprof.StopCPUProfile()
		u.profileFile.Close()
	}
	os.Exit(0)
}

func (u *UCI) handleSetOption(args []string) {
	var name, value string
	readingName, readingValue := false, false
	for _, a := range args {
		switch a {
		case "name":
			readingName, readingValue = true, false
		case "value":
			readingName, readingValue = false, true
		default:
			if readingName {
				if name != "" {
					name += " "
				}
				name += a
			} else if readingValue {
				if value != "" {
					value += " "
				}
				value += a
			}
		}
	}

	switch strings.ToLower(name) {
	case "hash":
		if mb, err := strconv.Atoi(value); err == nil {
			u.eng.Resize(mb)
		}
	case "evalfile":
		u.weightsFile = value
		if err := u.eng.LoadNNUE(u.weightsFile); err != nil {
			fmt.Fprintf(os.Stderr, "info string error: failed to load NNUE: %v\n", err)
		}
	case "syzygypath":
		u.syzygyPath = value
		u.initSyzygy()
	case "syzygyprobedepth":
		if d, err := strconv.Atoi(value); err == nil && d >= 1 {
			u.syzygyProbeDepth = d
		}
	case "uci_chess960":
		u.position.Chess960 = strings.ToLower(value) == "true"
	case "cpuprofile":
		if u.profileFile != nil {
			pprof.StopCPUProfile()
			u.profileFile.Close()
			u.profileFile = nil
		}
		if value != "" && value != "stop" {
			f, err := os.Create(value)
			if err != nil {
				fmt.Fprintf(os.Stderr, "info string error: %v\n", err)
				return
			}
			if err := pprof.StartCPUProfile(f); err != nil {
				f.Close()
				fmt.Fprintf(os.Stderr, "info string error: %v\n", err)
				return
			}
			u.profileFile = f
		}
	}
}

func (u *UCI) initSyzygy() {
	if u.syzygyPath == "" {
		return
	}
	u.eng.SetTablebase(tablebase.NoopProber{})
	fmt.Fprintf(os.Stderr, "info string no Syzygy backend compiled in; SyzygyPath ignored\n")
}

func (u *UCI) handlePerft(args []string) {
	depth := 5
	if len(args) > 0 {
		depth, _ = strconv.Atoi(args[0])
	}
	start := time.Now()
	nodes := engine.Perft(u.position, depth)
	elapsed := time.Since(start)

	fmt.Printf("Nodes: %d\n", nodes)
	fmt.Printf("Time: %v\n", elapsed)
	if elapsed > 0 {
		fmt.Printf("NPS: %.0f\n", float64(nodes)/elapsed.Seconds())
	}
}

// DefaultConfig returns config.Default(), the engine's out-of-the-box
// configuration.
func DefaultConfig() config.Params { return config.Default() }
