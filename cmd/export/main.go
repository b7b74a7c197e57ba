// Command export builds a small deterministic tree, applies one leaf
// update, and exports a Groth16 proof fixture for that transition. Adapted
// from the teacher's cmd/export, which dispatched to a per-circuit
// ExportProofFixture; this repo has only the transition circuit, so the
// dispatch collapses to one path, and the fixture's inputs (tree + update)
// are synthesized here rather than taken from a file on disk.
package main

import (
	"flag"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/muridata/rollmerkle/circuits/transition"
	"github.com/muridata/rollmerkle/pkg/cliutil"
	"github.com/muridata/rollmerkle/pkg/field"
	"github.com/muridata/rollmerkle/pkg/preimage"
	"github.com/muridata/rollmerkle/pkg/statetree"
)

func main() {
	cliutil.SetupLogger()

	minVersion := flag.String("min-engine-version", "", "fail if this build is older than the given semver")
	outPath := flag.String("out", "proof_fixture.json", "output path for the proof fixture")
	keysDir := flag.String("keys", ".", "directory containing transition_prover.key / transition_verifier.key")
	leafIndex := flag.Uint64("leaf", 0, "leaf index to update")
	flag.Parse()
	if err := cliutil.CheckMinVersion(*minVersion); err != nil {
		log.Fatal().Err(err).Msg("version check failed")
	}

	tree, err := statetree.New(transition.Depth, 0)
	if err != nil {
		log.Fatal().Err(err).Msg("construct tree")
	}

	prevRoot := tree.Root()
	prevLeaf, err := tree.Leaf(*leafIndex)
	if err != nil {
		log.Fatal().Err(err).Msg("read prior leaf")
	}

	newLeaf := field.FromInt64(42)
	updates := map[uint64]field.Element{*leafIndex: newLeaf}
	if err := statetree.ApplyBatch(tree, updates, preimage.New(), 2); err != nil {
		log.Fatal().Err(err).Msg("apply batch")
	}

	wr, err := transition.PrepareWitness(tree, *leafIndex, prevRoot, prevLeaf)
	if err != nil {
		log.Fatal().Err(err).Msg("prepare witness")
	}

	jsonOut, err := transition.ExportProofFixture(*keysDir, wr)
	if err != nil {
		log.Fatal().Err(err).Msg("export proof fixture")
	}

	if err := os.WriteFile(*outPath, jsonOut, 0o644); err != nil {
		log.Fatal().Err(err).Msg("write fixture file")
	}
	log.Info().Str("path", *outPath).Msg("fixture written")
}
