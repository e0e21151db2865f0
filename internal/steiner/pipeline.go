package steiner

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/paulmach/orb"
)

// Scene is the static input of a run.
type Scene struct {
	Bounds    orb.Polygon
	Obstacles []orb.Polygon
	// Terminals are fixed terminals placed ahead of generated ones.
	Terminals []Terminal
}

// Stage names a pipeline step for progress reporting.
type Stage string

const (
	StageFreeSpace Stage = "free_space"
	StageTerminals Stage = "terminals"
	StageGraph     Stage = "visibility_graph"
	StageClosure   Stage = "metric_closure"
	StageNetwork   Stage = "network"
	StageDone      Stage = "done"
)

// ProgressFunc is called after every completed stage with a short summary.
type ProgressFunc func(stage Stage, detail string)

// Options control a run.
type Options struct {
	TerminalCount   int     // terminals to generate on top of Scene.Terminals
	Shape           Shape   // footprint of generated terminals
	ShapeSize       float64 // edge length of square footprints
	MinSpacing      float64 // dedupe distance, 0 disables
	MaxAttempts     int     // generation budget, 0 means TerminalCount*1000
	AvoidFootprints bool    // reject edges touching other terminals' footprints
	Workers         int     // goroutines for pairwise work, <= 1 runs serially

	Rand     RandomSource // nil seeds from the clock
	Logger   *log.Logger  // nil means log.Default()
	Progress ProgressFunc // optional
}

// Stats summarises a run.
type Stats struct {
	Terminals    int
	Nodes        int
	Edges        int
	ClosureEdges int
	MissingPairs int
	LowerBound   float64 // Euclidean MST weight over the terminals
	Elapsed      time.Duration
}

// Result holds every stage's output. Nothing in it is modified after Build returns.
type Result struct {
	FreeSpace *FreeSpace
	Terminals []Terminal
	Helpers   []orb.Point
	Graph     *VisibilityGraph
	Closure   *MetricClosure
	Tree      SpanningTree
	Network   *Network
	Stats     Stats
}

// Build runs the whole pipeline: free space, terminals, visibility graph,
// metric closure, spanning tree and network.
//
// Malformed geometry aborts with a *GeometryError before any graph work.
// Exhausted generation aborts with a *GenerationExhaustedError. Terminal
// pairs without a path never abort; they show up in Closure.Missing and as a
// partial Network.
func Build(scene Scene, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	progress := opts.Progress
	if progress == nil {
		progress = func(Stage, string) {}
	}
	start := time.Now()

	logger.Println("🌐 Building free space...")
	fs, err := NewFreeSpace(scene.Bounds, scene.Obstacles, logger)
	if err != nil {
		logger.Printf("❌ %v\n", err)
		return nil, err
	}
	logger.Printf("   Obstacles: %d (%d combined), free area %.3f\n",
		len(fs.Obstacles), len(fs.Combined), fs.Area())
	progress(StageFreeSpace, fmt.Sprintf("%d obstacles", len(fs.Obstacles)))

	terminals, err := placeTerminals(fs, scene.Terminals, opts, logger)
	if err != nil {
		return nil, err
	}
	progress(StageTerminals, fmt.Sprintf("%d terminals", len(terminals)))

	logger.Println("🔗 Building visibility graph...")
	helpers := fs.HelperPoints()
	graph := BuildVisibilityGraph(terminals, helpers, fs, GraphOptions{
		AvoidFootprints: opts.AvoidFootprints,
		Workers:         opts.Workers,
		Logger:          logger,
	})
	progress(StageGraph, fmt.Sprintf("%d nodes, %d edges", graph.Len(), graph.EdgeCount()))

	logger.Println("📏 Computing metric closure...")
	closure := BuildMetricClosure(graph, opts.Workers)
	for _, m := range closure.Missing {
		logger.Printf("⚠️  No path between terminals %d and %d\n", m.A, m.B)
	}
	progress(StageClosure, fmt.Sprintf("%d pairs, %d missing", len(closure.Edges), len(closure.Missing)))

	logger.Println("🌲 Reducing to spanning tree...")
	network, err := BuildNetwork(graph, closure, closure)
	if err != nil {
		return nil, err
	}
	if network.Partial {
		logger.Printf("⚠️  Partial network: %d components, unreached terminals %v\n",
			len(network.Components), network.Unreached)
	}
	progress(StageNetwork, fmt.Sprintf("%d segments, length %.3f", len(network.Segments), network.Length))

	res := &Result{
		FreeSpace: fs,
		Terminals: terminals,
		Helpers:   helpers,
		Graph:     graph,
		Closure:   closure,
		Tree:      MinimumSpanningTree(closure),
		Network:   network,
	}
	res.Stats = Stats{
		Terminals:    len(terminals),
		Nodes:        graph.Len(),
		Edges:        graph.EdgeCount(),
		ClosureEdges: len(closure.Edges),
		MissingPairs: len(closure.Missing),
		LowerBound:   EuclideanMST(Positions(terminals)).Weight,
		Elapsed:      time.Since(start),
	}

	logger.Printf("✅ Network built: %d segments, length %.3f (lower bound %.3f) in %v\n",
		len(network.Segments), network.Length, res.Stats.LowerBound, res.Stats.Elapsed)
	progress(StageDone, fmt.Sprintf("length %.3f", network.Length))
	return res, nil
}

// placeTerminals validates fixed terminals, generates the rest and dedupes
// the combined list, fixed terminals first.
func placeTerminals(fs *FreeSpace, fixed []Terminal, opts Options, logger *log.Logger) ([]Terminal, error) {
	for i, t := range fixed {
		if !Accept(t, fs) {
			err := &GeometryError{Op: "terminal", Index: i, Err: ErrTerminalBlocked}
			logger.Printf("❌ %v\n", err)
			return nil, err
		}
	}

	terminals := append([]Terminal(nil), fixed...)
	if opts.TerminalCount > 0 {
		rng := opts.Rand
		if rng == nil {
			seed := time.Now().UnixNano()
			logger.Printf("ℹ️  No random source given, seeding with %d\n", seed)
			rng = rand.New(rand.NewSource(seed))
		}
		maxAttempts := opts.MaxAttempts
		if maxAttempts <= 0 {
			maxAttempts = opts.TerminalCount * 1000
		}

		logger.Printf("🎲 Generating %d %s terminals (max %d attempts)...\n",
			opts.TerminalCount, opts.Shape, maxAttempts)
		generated, err := GenerateTerminals(fs, TerminalSpec{
			Count:       opts.TerminalCount,
			Shape:       opts.Shape,
			Size:        opts.ShapeSize,
			MaxAttempts: maxAttempts,
		}, rng)
		if err != nil {
			logger.Printf("❌ %v\n", err)
			return nil, err
		}
		terminals = append(terminals, generated...)
	}

	if opts.MinSpacing > 0 {
		before := len(terminals)
		terminals = Dedupe(terminals, opts.MinSpacing)
		if dropped := before - len(terminals); dropped > 0 {
			logger.Printf("   Dropped %d terminals closer than %.3f\n", dropped, opts.MinSpacing)
		}
	}
	logger.Printf("   Terminals: %d\n", len(terminals))
	return terminals, nil
}
