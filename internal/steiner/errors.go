package steiner

import (
	"errors"
	"fmt"
)

// Sentinel errors for network construction.
var (
	// ErrGeometry marks malformed or inconsistent input geometry. It is fatal:
	// construction stops before any graph work begins.
	ErrGeometry = errors.New("steiner: invalid geometry")

	// ErrGenerationExhausted is returned when terminal generation used up its
	// attempt budget before placing the requested count.
	ErrGenerationExhausted = errors.New("steiner: terminal generation exhausted")

	// ErrDisconnectedTerminal marks a terminal pair with no path through the
	// visibility graph. It never aborts a run.
	ErrDisconnectedTerminal = errors.New("steiner: no path between terminals")

	// ErrNodeNotFound is returned when a path query names a node the graph does not have.
	ErrNodeNotFound = errors.New("steiner: node not found")

	// ErrNoRandomSource is returned when generation is requested without a random source.
	ErrNoRandomSource = errors.New("steiner: random source required")

	// ErrTerminalBlocked is wrapped in a GeometryError when a fixed terminal
	// does not fit in free space.
	ErrTerminalBlocked = errors.New("terminal not contained in free space")
)

// GeometryError describes which input failed validation and why.
type GeometryError struct {
	Op    string // "bounds", "obstacle", "clip" or "terminal"
	Index int    // position of the offending input, -1 when not applicable
	Err   error
}

func (e *GeometryError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("steiner: invalid geometry (%s): %v", e.Op, e.Err)
	}
	return fmt.Sprintf("steiner: invalid geometry (%s %d): %v", e.Op, e.Index, e.Err)
}

func (e *GeometryError) Unwrap() []error {
	return []error{ErrGeometry, e.Err}
}

// GenerationExhaustedError reports how far terminal generation got.
type GenerationExhaustedError struct {
	Requested int
	Placed    int
	Attempts  int
}

func (e *GenerationExhaustedError) Error() string {
	return fmt.Sprintf("steiner: placed %d of %d terminals in %d attempts",
		e.Placed, e.Requested, e.Attempts)
}

func (e *GenerationExhaustedError) Is(target error) bool {
	return target == ErrGenerationExhausted
}

// NoPathError names the node pair that has no connecting path.
type NoPathError struct {
	From, To int
}

func (e *NoPathError) Error() string {
	return fmt.Sprintf("steiner: no path between nodes %d and %d", e.From, e.To)
}

func (e *NoPathError) Is(target error) bool {
	return target == ErrDisconnectedTerminal
}
