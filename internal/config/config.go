// Package config collects the search's tunable constants into one struct,
// the way the teacher exposes engine knobs, so UCI "setoption" handling and
// tuning tools (spec's supplemented texel-tuning workflow) share a single
// source of truth instead of scattered package-level constants.
package config

// Params holds every tunable search/evaluation constant. Zero-value use is
// never correct; always start from Default().
type Params struct {
	HashMB      int
	Threads     int
	MoveOverhead int // milliseconds reserved against clock-read latency

	NullMoveMinDepth  int
	NullMoveBaseR     int
	NullMoveDepthDiv  int

	RazorMargin      int
	RazorMaxDepth    int

	RFPMaxDepth  int
	RFPMargin    int

	LMRMinDepth     int
	LMRMinMoveCount int

	AspirationWindow int
	AspirationMinDepth int

	SingularMinDepth int
	SingularMargin   int

	SEEQuietMargin   int
	SEECaptureMargin int

	UseNNUE     bool
	WeightsFile string

	SyzygyPath       string
	SyzygyProbeDepth int
}

// Default returns the engine's out-of-the-box configuration.
func Default() Params {
	return Params{
		HashMB:       16,
		Threads:      1,
		MoveOverhead: 30,

		NullMoveMinDepth: 3,
		NullMoveBaseR:    3,
		NullMoveDepthDiv: 4,

		RazorMargin:   300,
		RazorMaxDepth: 3,

		RFPMaxDepth: 7,
		RFPMargin:   75,

		LMRMinDepth:     3,
		LMRMinMoveCount: 3,

		AspirationWindow:   18,
		AspirationMinDepth: 5,

		SingularMinDepth: 7,
		SingularMargin:   0,

		SEEQuietMargin:   -60,
		SEECaptureMargin: -20,

		UseNNUE:     true,
		WeightsFile: "",

		SyzygyPath:       "",
		SyzygyProbeDepth: 1,
	}
}
