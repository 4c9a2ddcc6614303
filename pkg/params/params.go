// Package params holds the hard resource limits and protocol parameters
// shared by the native verifier and the circuit. Both implementations must be
// built against the same Params value; the circuit bakes them in at compile
// time, the native side checks them at run time.
package params

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"
)

type Params struct {
	// MaxNotes is the fixed note-set capacity. Commitments are computed over
	// exactly this many slots, unused slots zero-filled.
	MaxNotes int `json:"max_notes"`

	// MaxProofDepth bounds the number of trie layers in an account proof.
	MaxProofDepth int `json:"max_proof_depth"`

	// MaxNodeBytes bounds the RLP size of a single trie node.
	MaxNodeBytes int `json:"max_node_bytes"`

	// PowBits is the number of trailing zero bits required of a PoW digest.
	PowBits int `json:"pow_bits"`

	// MaxSecretAttempts bounds the deterministic secret search.
	MaxSecretAttempts int `json:"max_secret_attempts"`

	// MaxAggregateAmount caps the sum of note amounts, in wei, as a decimal
	// string. Deliberately a configuration value: deployments disagree on it.
	MaxAggregateAmount string `json:"max_aggregate_amount"`
}

// Default returns the parameter set the circuits in this repo are sized for.
func Default() Params {
	return Params{
		MaxNotes:          5,
		MaxProofDepth:     12,
		MaxNodeBytes:      600,
		PowBits:           16,
		MaxSecretAttempts: 1 << 24,
		// 2^96 - 1 wei
		MaxAggregateAmount: "79228162514264337593543950335",
	}
}

// AggregateCap parses MaxAggregateAmount. An unparsable value is a
// configuration bug, reported as an error rather than a panic so callers can
// surface it next to the file path they loaded.
func (p Params) AggregateCap() (*big.Int, error) {
	cap, ok := new(big.Int).SetString(p.MaxAggregateAmount, 10)
	if !ok || cap.Sign() <= 0 {
		return nil, fmt.Errorf("params: bad max_aggregate_amount %q", p.MaxAggregateAmount)
	}
	return cap, nil
}

func (p Params) Validate() error {
	if p.MaxNotes < 1 {
		return fmt.Errorf("params: max_notes must be >= 1, got %d", p.MaxNotes)
	}
	if p.MaxProofDepth < 1 {
		return fmt.Errorf("params: max_proof_depth must be >= 1, got %d", p.MaxProofDepth)
	}
	if p.MaxNodeBytes < 32 {
		return fmt.Errorf("params: max_node_bytes must be >= 32, got %d", p.MaxNodeBytes)
	}
	if p.PowBits < 0 || p.PowBits > 64 {
		return fmt.Errorf("params: pow_bits must be in [0,64], got %d", p.PowBits)
	}
	if _, err := p.AggregateCap(); err != nil {
		return err
	}
	return nil
}

// Load reads params from a JSON file, falling back to Default when the file
// does not exist.
func Load(path string) (Params, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Params{}, fmt.Errorf("params: reading %s: %w", path, err)
	}
	p := Default()
	if err := json.Unmarshal(raw, &p); err != nil {
		return Params{}, fmt.Errorf("params: parsing %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

func Save(p Params, path string) error {
	raw, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}
