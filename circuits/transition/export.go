package transition

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"

	"github.com/muridata/rollmerkle/pkg/zksetup"
)

// ProofFixture holds the values a settlement contract or test harness needs
// to check a single transition proof: the Groth16 proof bytes plus the two
// public inputs, all hex-encoded.
type ProofFixture struct {
	Proof    string `json:"proof"`
	PrevRoot string `json:"prev_root"`
	NewRoot  string `json:"new_root"`
}

// ExportProofFixture compiles the circuit, loads the proving/verifying keys
// from keysDir, proves wr, verifies the proof in-process, and returns a
// JSON-encoded ProofFixture.
func ExportProofFixture(keysDir string, wr *WitnessResult) ([]byte, error) {
	ccs, err := zksetup.CompileCircuit(&Circuit{})
	if err != nil {
		return nil, fmt.Errorf("compile circuit: %w", err)
	}

	pk, vk, err := zksetup.LoadKeys(keysDir, "transition")
	if err != nil {
		return nil, fmt.Errorf("load keys: %w", err)
	}

	witness, err := frontend.NewWitness(&wr.Assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("create witness: %w", err)
	}
	publicWitness, err := witness.Public()
	if err != nil {
		return nil, fmt.Errorf("extract public witness: %w", err)
	}

	gproof, err := groth16.Prove(ccs, pk, witness)
	if err != nil {
		return nil, fmt.Errorf("prove: %w", err)
	}

	if err := groth16.Verify(gproof, vk, publicWitness); err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}

	var proofBuf bytes.Buffer
	if _, err := gproof.WriteTo(&proofBuf); err != nil {
		return nil, fmt.Errorf("marshal proof: %w", err)
	}

	fixture := ProofFixture{
		Proof:    fmt.Sprintf("0x%x", proofBuf.Bytes()),
		PrevRoot: fmt.Sprintf("0x%064x", wr.PrevRoot.BigInt()),
		NewRoot:  fmt.Sprintf("0x%064x", wr.NewRoot.BigInt()),
	}

	return json.MarshalIndent(fixture, "", "  ")
}
