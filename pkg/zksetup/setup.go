// Package zksetup provides circuit-agnostic gnark compilation, dev setup,
// key export/import, and a Groth16 MPC ceremony (Powers-of-Tau Phase 1 +
// circuit-specific Phase 2), used to produce the proving/verifying keys for
// circuits/transition.Circuit. It is adapted from the teacher's
// pkg/setup/setup.go, renamed to reflect this repo's single circuit domain
// and switched from fmt.Println/log.Fatal to structured zerolog events.
package zksetup

import (
	"encoding/hex"
	"fmt"
	"io"
	"math/bits"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/groth16/bn254/mpcsetup"
	"github.com/consensys/gnark/constraint"
	cs_bn254 "github.com/consensys/gnark/constraint/bn254"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/rs/zerolog/log"
)

// CeremonyDir is the default directory for ceremony files.
const CeremonyDir = "ceremony"

// CompileCircuit compiles a gnark circuit into an R1CS constraint system.
func CompileCircuit(circuit frontend.Circuit) (constraint.ConstraintSystem, error) {
	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, circuit)
	if err != nil {
		return nil, fmt.Errorf("compile circuit: %w", err)
	}
	return ccs, nil
}

// DevSetup performs a single-party trusted setup (NOT for production). It
// writes the proving key, verifying key, and Solidity verifier to outputDir.
func DevSetup(circuit frontend.Circuit, outputDir, circuitName string) error {
	log.Warn().
		Str("circuit", circuitName).
		Msg("single-party dev setup: do not use these keys in production, run an MPC ceremony instead")

	ccs, err := CompileCircuit(circuit)
	if err != nil {
		return err
	}

	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return fmt.Errorf("groth16 setup: %w", err)
	}

	return ExportKeys(pk, vk, outputDir, circuitName)
}

// ExportKeys writes the proving key, verifying key, and Solidity verifier to
// outputDir. Files are named <circuitName>_prover.key, _verifier.key, _verifier.sol.
func ExportKeys(pk groth16.ProvingKey, vk groth16.VerifyingKey, outputDir, circuitName string) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	solPath := filepath.Join(outputDir, circuitName+"_verifier.sol")
	f, err := os.Create(solPath)
	if err != nil {
		return fmt.Errorf("create solidity verifier: %w", err)
	}
	if err := vk.ExportSolidity(f); err != nil {
		f.Close()
		return fmt.Errorf("export solidity verifier: %w", err)
	}
	f.Close()

	vkPath := filepath.Join(outputDir, circuitName+"_verifier.key")
	if err := saveObject(vkPath, vk); err != nil {
		return err
	}

	pkPath := filepath.Join(outputDir, circuitName+"_prover.key")
	if err := saveObject(pkPath, pk); err != nil {
		return err
	}

	log.Info().Str("prover", pkPath).Str("verifier", vkPath).Str("solidity", solPath).Msg("exported keys")
	return nil
}

// LoadKeys loads the proving and verifying keys from dir.
func LoadKeys(dir, circuitName string) (groth16.ProvingKey, groth16.VerifyingKey, error) {
	pk := groth16.NewProvingKey(ecc.BN254)
	if err := loadObject(filepath.Join(dir, circuitName+"_prover.key"), pk); err != nil {
		return nil, nil, fmt.Errorf("load proving key: %w", err)
	}

	vk := groth16.NewVerifyingKey(ecc.BN254)
	if err := loadObject(filepath.Join(dir, circuitName+"_verifier.key"), vk); err != nil {
		return nil, nil, fmt.Errorf("load verifying key: %w", err)
	}

	return pk, vk, nil
}

// ─── MPC Ceremony ──────────────────────────────────────────────────────────

// CeremonyP1Init initializes Phase 1 (Powers of Tau).
func CeremonyP1Init(circuit frontend.Circuit) error {
	if err := ensureCeremonyDir(); err != nil {
		return err
	}
	ccs, err := CompileCircuit(circuit)
	if err != nil {
		return err
	}

	n := ecc.NextPowerOfTwo(uint64(ccs.GetNbConstraints()))
	log.Info().Uint64("domainSize", n).Int("log2", bits.Len64(n)-1).Int("constraints", ccs.GetNbConstraints()).Msg("phase 1: domain sized")

	p := mpcsetup.NewPhase1(n)
	path := nextContribPath("phase1")
	if err := saveObject(path, &p); err != nil {
		return err
	}
	log.Info().Str("path", path).Msg("wrote initial phase 1 state")
	return nil
}

// CeremonyP1Contribute adds a Phase 1 contribution.
func CeremonyP1Contribute() error {
	latest, err := latestContrib("phase1")
	if err != nil {
		return err
	}

	var p mpcsetup.Phase1
	if err := loadObject(latest, &p); err != nil {
		return err
	}

	p.Contribute()

	path := nextContribPath("phase1")
	if err := saveObject(path, &p); err != nil {
		return err
	}
	log.Info().Str("path", path).Msg("wrote phase 1 contribution")
	return nil
}

// CeremonyP1Verify verifies Phase 1 contributions and seals with a random beacon.
func CeremonyP1Verify(circuit frontend.Circuit, beaconHex string) error {
	beacon, err := parseBeacon(beaconHex)
	if err != nil {
		return err
	}
	ccs, err := CompileCircuit(circuit)
	if err != nil {
		return err
	}
	n := ecc.NextPowerOfTwo(uint64(ccs.GetNbConstraints()))

	contribs, err := findContribs("phase1")
	if err != nil {
		return err
	}
	if len(contribs) < 2 {
		return fmt.Errorf("need at least the init file + one contribution to verify")
	}

	nContribs := len(contribs) - 1
	log.Info().Int("contributions", nContribs).Msg("verifying phase 1")

	phases := make([]*mpcsetup.Phase1, nContribs)
	for i, path := range contribs[1:] {
		phases[i] = new(mpcsetup.Phase1)
		if err := loadObject(path, phases[i]); err != nil {
			return err
		}
	}

	commons, err := mpcsetup.VerifyPhase1(n, beacon, phases...)
	if err != nil {
		return fmt.Errorf("phase 1 verification failed: %w", err)
	}

	srsPath := filepath.Join(CeremonyDir, "srs_commons.bin")
	if err := saveObject(srsPath, &commons); err != nil {
		return err
	}
	log.Info().Str("path", srsPath).Msg("phase 1 verified and sealed")
	return nil
}

// CeremonyP2Init initializes Phase 2 (circuit-specific).
func CeremonyP2Init(circuit frontend.Circuit) error {
	if err := ensureCeremonyDir(); err != nil {
		return err
	}
	ccs, err := CompileCircuit(circuit)
	if err != nil {
		return err
	}
	r1csConcrete, ok := ccs.(*cs_bn254.R1CS)
	if !ok {
		return fmt.Errorf("circuit did not compile to a bn254 R1CS")
	}

	srsPath := filepath.Join(CeremonyDir, "srs_commons.bin")
	var commons mpcsetup.SrsCommons
	if err := loadObject(srsPath, &commons); err != nil {
		return err
	}

	var p mpcsetup.Phase2
	p.Initialize(r1csConcrete, &commons)

	path := nextContribPath("phase2")
	if err := saveObject(path, &p); err != nil {
		return err
	}
	log.Info().Str("path", path).Msg("wrote initial phase 2 state")
	return nil
}

// CeremonyP2Contribute adds a Phase 2 contribution.
func CeremonyP2Contribute() error {
	latest, err := latestContrib("phase2")
	if err != nil {
		return err
	}

	var p mpcsetup.Phase2
	if err := loadObject(latest, &p); err != nil {
		return err
	}

	p.Contribute()

	path := nextContribPath("phase2")
	if err := saveObject(path, &p); err != nil {
		return err
	}
	log.Info().Str("path", path).Msg("wrote phase 2 contribution")
	return nil
}

// CeremonyP2Verify verifies Phase 2 contributions, seals, and exports final keys.
func CeremonyP2Verify(circuit frontend.Circuit, beaconHex, outputDir, circuitName string) error {
	beacon, err := parseBeacon(beaconHex)
	if err != nil {
		return err
	}
	ccs, err := CompileCircuit(circuit)
	if err != nil {
		return err
	}
	r1csConcrete, ok := ccs.(*cs_bn254.R1CS)
	if !ok {
		return fmt.Errorf("circuit did not compile to a bn254 R1CS")
	}

	srsPath := filepath.Join(CeremonyDir, "srs_commons.bin")
	var commons mpcsetup.SrsCommons
	if err := loadObject(srsPath, &commons); err != nil {
		return err
	}

	contribs, err := findContribs("phase2")
	if err != nil {
		return err
	}
	if len(contribs) < 2 {
		return fmt.Errorf("need at least the init file + one contribution to verify")
	}

	nContribs := len(contribs) - 1
	log.Info().Int("contributions", nContribs).Msg("verifying phase 2")

	phases := make([]*mpcsetup.Phase2, nContribs)
	for i, path := range contribs[1:] {
		phases[i] = new(mpcsetup.Phase2)
		if err := loadObject(path, phases[i]); err != nil {
			return err
		}
	}

	pk, vk, err := mpcsetup.VerifyPhase2(r1csConcrete, &commons, beacon, phases...)
	if err != nil {
		return fmt.Errorf("phase 2 verification failed: %w", err)
	}

	if err := ExportKeys(pk, vk, outputDir, circuitName); err != nil {
		return err
	}
	log.Info().Msg("ceremony complete, keys are production-ready")
	return nil
}

// ─── Internal helpers ──────────────────────────────────────────────────────

func ensureCeremonyDir() error {
	if err := os.MkdirAll(CeremonyDir, 0o755); err != nil {
		return fmt.Errorf("create ceremony dir: %w", err)
	}
	return nil
}

func saveObject(path string, obj io.WriterTo) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if _, err := obj.WriteTo(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func loadObject(path string, obj io.ReaderFrom) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	if _, err := obj.ReadFrom(f); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}

func parseBeacon(hexStr string) ([]byte, error) {
	hexStr = strings.TrimPrefix(hexStr, "0x")
	b, err := hex.DecodeString(hexStr)
	if err != nil {
		return nil, fmt.Errorf("invalid beacon hex: %w", err)
	}
	if len(b) < 16 {
		return nil, fmt.Errorf("beacon must be at least 16 bytes for sufficient entropy")
	}
	return b, nil
}

// findContribs returns sorted paths matching ceremony/<prefix>_NNNN.bin.
func findContribs(prefix string) ([]string, error) {
	pattern := filepath.Join(CeremonyDir, prefix+"_????.bin")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	sort.Strings(matches)
	return matches, nil
}

func latestContrib(prefix string) (string, error) {
	contribs, err := findContribs(prefix)
	if err != nil {
		return "", err
	}
	if len(contribs) == 0 {
		return "", fmt.Errorf("no %s contributions found in %s/", prefix, CeremonyDir)
	}
	return contribs[len(contribs)-1], nil
}

func nextContribPath(prefix string) string {
	contribs, _ := findContribs(prefix)
	return filepath.Join(CeremonyDir, fmt.Sprintf("%s_%04d.bin", prefix, len(contribs)))
}
