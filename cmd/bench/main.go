// Command bench times a single batch update against a fresh tree, the
// benchmark harness spec.md §6 calls out as the only CLI this engine needs
// beyond the circuit tooling. Grounded on original_source/src/main.rs's
// minimal "create N updates, time batch_transition_updates" driver,
// generalized to configurable depth/leaf-count/stride flags and structured
// logging in place of the Rust driver's single println.
package main

import (
	"flag"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/muridata/rollmerkle/config"
	"github.com/muridata/rollmerkle/pkg/cliutil"
	"github.com/muridata/rollmerkle/pkg/field"
	"github.com/muridata/rollmerkle/pkg/preimage"
	"github.com/muridata/rollmerkle/pkg/statetree"
)

func main() {
	cliutil.SetupLogger()

	minVersion := flag.String("min-engine-version", "", "fail if this build is older than the given semver")
	depth := flag.Int("depth", config.TreeDepth, "tree depth")
	shift := flag.Uint("shift", uint(config.ShiftDefault), "tree shift")
	stride := flag.Int("stride", config.Stride, "batch engine stride (must be even)")
	leaves := flag.Int("leaves", 1000, "number of leaves to update")
	step := flag.Uint64("step", 4, "leaf index step, matching the batch's sparsity pattern")
	flag.Parse()
	if err := cliutil.CheckMinVersion(*minVersion); err != nil {
		log.Fatal().Err(err).Msg("version check failed")
	}

	tree, err := statetree.New(*depth, uint32(*shift))
	if err != nil {
		log.Fatal().Err(err).Msg("construct tree")
	}

	updates := make(map[uint64]field.Element, *leaves)
	idx := uint64(0)
	for i := 0; i < *leaves; i++ {
		updates[idx] = field.FromInt64(int64(idx))
		idx += *step
	}

	p := preimage.New()

	start := time.Now()
	if err := statetree.ApplyBatch(tree, updates, p, *stride); err != nil {
		log.Fatal().Err(err).Msg("apply batch")
	}
	elapsed := time.Since(start)

	log.Info().
		Int("leaves", len(updates)).
		Int("depth", *depth).
		Int("stride", *stride).
		Int("preimageEntries", p.Len()).
		Dur("elapsed", elapsed).
		Str("root", tree.Root().String()).
		Msg("batch applied")
}
