// Package config holds the compile-time and default construction
// parameters for the state-transition engine. There is no config file to
// parse; every knob here is either a hard compile-time circuit parameter or
// a sensible default for a constructor argument.
package config

const (
	// TreeDepth is the default number of hash levels above the leaves for a
	// standalone tree (2^TreeDepth leaf capacity).
	TreeDepth = 32

	// ShiftDefault is the height offset used when a tree is not a subtree of
	// a larger tree.
	ShiftDefault = 0

	// Stride is the default unit of work granularity for the batch engine's
	// level-parallel fork-join. Must stay even so that a sibling pair is
	// never split across two stride chunks in the leaf pass.
	Stride = 250

	// CircuitTreeDepth is the fixed depth a transition circuit is compiled
	// for. gnark circuits have compile-time-sized arrays, so this must be a
	// constant rather than a constructor argument like TreeDepth above.
	CircuitTreeDepth = 32
)
