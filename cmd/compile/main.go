// Command compile drives circuit compilation, dev setup, and the Groth16
// MPC ceremony for the transition circuit. Adapted from the teacher's
// cmd/compile, generalized from its multi-circuit registry down to this
// repo's single circuit (circuits/transition.Circuit is always Groth16, so
// the PLONK branch of the teacher's dispatch has no entry here).
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/consensys/gnark/frontend"
	"github.com/rs/zerolog/log"

	"github.com/muridata/rollmerkle/circuits/transition"
	"github.com/muridata/rollmerkle/pkg/cliutil"
	"github.com/muridata/rollmerkle/pkg/zksetup"
)

func main() {
	cliutil.SetupLogger()

	minVersion := flag.String("min-engine-version", "", "fail if this build is older than the given semver")
	flag.Parse()
	if err := cliutil.CheckMinVersion(*minVersion); err != nil {
		log.Fatal().Err(err).Msg("version check failed")
	}

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	newCircuit := func() frontend.Circuit { return &transition.Circuit{} }

	switch args[0] {
	case "dev":
		if err := zksetup.DevSetup(newCircuit(), ".", "transition"); err != nil {
			log.Fatal().Err(err).Msg("dev setup failed")
		}
	case "ceremony":
		if len(args) < 2 {
			printUsage()
			os.Exit(1)
		}
		handleCeremony(args[1:], newCircuit)
	default:
		printUsage()
		os.Exit(1)
	}
}

func handleCeremony(args []string, newCircuit func() frontend.Circuit) {
	switch args[0] {
	case "p1-init":
		if err := zksetup.CeremonyP1Init(newCircuit()); err != nil {
			log.Fatal().Err(err).Msg("phase 1 init failed")
		}
	case "p1-contribute":
		if err := zksetup.CeremonyP1Contribute(); err != nil {
			log.Fatal().Err(err).Msg("phase 1 contribution failed")
		}
	case "p1-verify":
		if len(args) < 2 {
			log.Fatal().Msg("usage: go run ./cmd/compile ceremony p1-verify BEACON_HEX")
		}
		if err := zksetup.CeremonyP1Verify(newCircuit(), args[1]); err != nil {
			log.Fatal().Err(err).Msg("phase 1 verify failed")
		}
	case "p2-init":
		if err := zksetup.CeremonyP2Init(newCircuit()); err != nil {
			log.Fatal().Err(err).Msg("phase 2 init failed")
		}
	case "p2-contribute":
		if err := zksetup.CeremonyP2Contribute(); err != nil {
			log.Fatal().Err(err).Msg("phase 2 contribution failed")
		}
	case "p2-verify":
		if len(args) < 2 {
			log.Fatal().Msg("usage: go run ./cmd/compile ceremony p2-verify BEACON_HEX")
		}
		if err := zksetup.CeremonyP2Verify(newCircuit(), args[1], ".", "transition"); err != nil {
			log.Fatal().Err(err).Msg("phase 2 verify failed")
		}
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Usage:
  go run ./cmd/compile dev                         Dev mode (single-party/unsafe setup, NOT for production)

  go run ./cmd/compile ceremony p1-init            Initialize Phase 1 (Powers of Tau)
  go run ./cmd/compile ceremony p1-contribute      Add a Phase 1 contribution
  go run ./cmd/compile ceremony p1-verify HEX      Verify Phase 1 & seal with random beacon

  go run ./cmd/compile ceremony p2-init            Initialize Phase 2 (circuit-specific)
  go run ./cmd/compile ceremony p2-contribute      Add a Phase 2 contribution
  go run ./cmd/compile ceremony p2-verify HEX      Verify Phase 2, seal & export keys

Flags:
  --min-engine-version X.Y.Z   fail fast if this build is older than required

Ceremony workflow:
  1. p1-init          Coordinator creates the initial Phase 1 state
  2. p1-contribute    Each participant contributes (repeat N times)
  3. p1-verify        Coordinator verifies all & seals with a public beacon
  4. p2-init          Coordinator initializes Phase 2 with the circuit
  5. p2-contribute    Each participant contributes (repeat M times)
  6. p2-verify        Coordinator verifies all, seals, and exports final keys

Security: 1-of-N honest, if any single contributor is honest, the setup is secure.
Beacon: use a public randomness source evaluated AFTER the last contribution.`)
}
