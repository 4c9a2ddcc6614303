package derive

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/yourorg/veildrop/pkg/params"
)

// BundleVersion is the only deposit-bundle format this implementation reads
// or writes.
const BundleVersion = 2

// Bundle is the depositor's export record. It carries everything needed to
// reconstruct a claim: the secret, the chain, and the committed note set. The
// target address is optional and serves only as a self-consistency check.
type Bundle struct {
	Version       int             `json:"version"`
	ChainID       uint64          `json:"chainId"`
	Secret        hexutil.Bytes   `json:"secret"`
	Notes         []BundleNote    `json:"notes"`
	TargetAddress *common.Address `json:"targetAddress,omitempty"`
}

type BundleNote struct {
	Recipient common.Address `json:"recipient"`
	Amount    *hexutil.Big   `json:"amount"`
	Label     string         `json:"label,omitempty"`
}

// NewBundle builds a versioned bundle from a validated deposit, recording the
// derived target address for later self-checking.
func NewBundle(secret Secret, chainID uint64, ns NoteSet, p params.Params) (*Bundle, error) {
	d, err := Derive(secret, chainID, ns, p)
	if err != nil {
		return nil, err
	}
	b := &Bundle{
		Version:       BundleVersion,
		ChainID:       chainID,
		Secret:        secret[:],
		Notes:         make([]BundleNote, len(ns)),
		TargetAddress: &d.TargetAddress,
	}
	for i, n := range ns {
		b.Notes[i] = BundleNote{
			Recipient: n.Recipient,
			Amount:    (*hexutil.Big)(new(big.Int).Set(n.Amount)),
			Label:     n.Label,
		}
	}
	return b, nil
}

func ParseBundle(raw []byte) (*Bundle, error) {
	var b Bundle
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("derive: parsing bundle: %w", err)
	}
	if b.Version != BundleVersion {
		return nil, fmt.Errorf("derive: unsupported bundle version %d", b.Version)
	}
	if len(b.Secret) != 32 {
		return nil, fmt.Errorf("derive: bundle secret is %d bytes, want 32", len(b.Secret))
	}
	return &b, nil
}

func (b *Bundle) Encode() ([]byte, error) {
	return json.MarshalIndent(b, "", "  ")
}

// NoteSet converts the bundle's notes back into the committed form.
func (b *Bundle) NoteSet() NoteSet {
	ns := make(NoteSet, len(b.Notes))
	for i, n := range b.Notes {
		ns[i] = Note{
			Recipient: n.Recipient,
			Amount:    (*big.Int)(n.Amount),
			Label:     n.Label,
		}
	}
	return ns
}

// SecretBytes returns the bundle secret as a Secret. Call only after
// ParseBundle has checked the length.
func (b *Bundle) SecretBytes() Secret {
	var s Secret
	copy(s[:], b.Secret)
	return s
}

// Reconstruct re-derives every value from the bundle and, when a target
// address is recorded, requires it to match; a disagreement is reported as
// ErrTargetAddressMismatch, never papered over.
func (b *Bundle) Reconstruct(p params.Params) (Derived, error) {
	d, err := Derive(b.SecretBytes(), b.ChainID, b.NoteSet(), p)
	if err != nil {
		return Derived{}, err
	}
	if b.TargetAddress != nil && *b.TargetAddress != d.TargetAddress {
		return Derived{}, fmt.Errorf("%w: bundle says %s, derived %s",
			ErrTargetAddressMismatch, b.TargetAddress.Hex(), d.TargetAddress.Hex())
	}
	return d, nil
}
