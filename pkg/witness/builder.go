// Package witness assembles proving inputs for the claim circuit: it fetches
// raw account-proof bytes from an archive node, re-verifies them natively
// (every byte from the data source is untrusted), and pads them into the
// fixed-capacity layout the circuit expects.
package witness

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/math/uints"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/yourorg/veildrop/circuits"
	"github.com/yourorg/veildrop/pkg/derive"
	"github.com/yourorg/veildrop/pkg/params"
	"github.com/yourorg/veildrop/pkg/trie"
)

func toU8Slice(b []byte) []uints.U8 {
	out := make([]uints.U8, len(b))
	for i, v := range b {
		out[i] = uints.NewU8(v)
	}
	return out
}

func toU8Arr32(b [32]byte) (out [32]uints.U8) {
	for i, v := range b {
		out[i] = uints.NewU8(v)
	}
	return out
}

// padU8 widens raw to a capacity-sized buffer, zero-filled past len(raw).
func padU8(raw []byte, capacity int) []uints.U8 {
	out := make([]uints.U8, capacity)
	for i := 0; i < capacity; i++ {
		if i < len(raw) {
			out[i] = uints.NewU8(raw[i])
		} else {
			out[i] = uints.NewU8(0)
		}
	}
	return out
}

// NewAssignment builds the full circuit assignment and the matching public
// vector from an already-fetched proof. The nodes are verified natively
// first; a proof the native verifier rejects is never handed to the prover.
// noteIndex selects which note of the bundle's set is being claimed.
func NewAssignment(
	dep *derive.Bundle,
	noteIndex uint8,
	blockNumber uint64,
	root [32]byte,
	nodes [][]byte,
	p params.Params,
) (*circuits.ClaimCircuit, derive.PublicVector, error) {

	d, err := dep.Reconstruct(p)
	if err != nil {
		return nil, derive.PublicVector{}, err
	}
	ns := dep.NoteSet()
	if int(noteIndex) >= len(ns) {
		return nil, derive.PublicVector{}, fmt.Errorf("witness: note index %d outside set of %d", noteIndex, len(ns))
	}

	required := ns.Aggregate()
	if _, err := trie.VerifyAccount(nodes, root, d.TargetAddress, required, p); err != nil {
		return nil, derive.PublicVector{}, fmt.Errorf("witness: account proof rejected: %w", err)
	}

	assignment := circuits.New(p)
	for i, b := range be64(blockNumber) {
		assignment.BlockNumber[i] = uints.NewU8(b)
	}
	assignment.Root = toU8Arr32(root)
	for i, b := range be64(dep.ChainID) {
		assignment.ChainID[i] = uints.NewU8(b)
	}
	assignment.NoteIndex = uints.NewU8(noteIndex)

	var amount32 [32]byte
	ns[noteIndex].Amount.FillBytes(amount32[:])
	assignment.Amount = toU8Arr32(amount32)
	for i, b := range ns[noteIndex].Recipient {
		assignment.Recipient[i] = uints.NewU8(b)
	}
	assignment.Nullifier = toU8Arr32(d.Nullifiers[noteIndex])
	assignment.PowDigest = toU8Arr32(d.PowDigest)

	assignment.Secret = toU8Arr32([32]byte(dep.SecretBytes()))
	for i := 0; i < p.MaxNotes; i++ {
		var amt, rc [32]byte
		if i < len(ns) {
			ns[i].Amount.FillBytes(amt[:])
			rc = derive.RecipientCommitment(ns[i].Recipient)
		}
		assignment.NoteAmounts[i] = toU8Arr32(amt)
		assignment.NoteRecipients[i] = toU8Arr32(rc)
	}

	for i := 0; i < p.MaxProofDepth; i++ {
		var raw []byte
		if i < len(nodes) {
			raw = nodes[i]
		}
		assignment.ProofNodes[i] = padU8(raw, p.MaxNodeBytes)
		assignment.ProofNodeLens[i] = len(raw)
	}
	assignment.NodeCount = len(nodes)

	pub := derive.PublicVector{
		BlockNumber: blockNumber,
		Root:        root,
		ChainID:     dep.ChainID,
		NoteIndex:   noteIndex,
		Amount:      ns[noteIndex].Amount,
		Recipient:   ns[noteIndex].Recipient,
		Nullifier:   d.Nullifiers[noteIndex],
		PowDigest:   d.PowDigest,
	}
	return assignment, pub, nil
}

// Assemble wraps NewAssignment into a ready-to-prove bundle.
func Assemble(
	dep *derive.Bundle,
	noteIndex uint8,
	blockNumber uint64,
	root [32]byte,
	nodes [][]byte,
	p params.Params,
) (*Bundle, error) {

	assignment, pub, err := NewAssignment(dep, noteIndex, blockNumber, root, nodes, p)
	if err != nil {
		return nil, err
	}
	full, err := frontend.NewWitness(assignment, circuits.Curve().ScalarField())
	if err != nil {
		return nil, fmt.Errorf("witness: %w", err)
	}
	return &Bundle{Full: full, Public: pub, Blueprint: circuits.New(p)}, nil
}

// Build fetches the account proof and state root over RPC and assembles the
// witness. Retry and timeout policy belongs to the caller's context.
func Build(
	ctx context.Context,
	rpc string,
	block uint64,
	dep *derive.Bundle,
	noteIndex uint8,
	p params.Params,
) (*Bundle, error) {

	cli, err := ethclient.DialContext(ctx, rpc)
	if err != nil {
		return nil, err
	}
	defer cli.Close()

	d, err := dep.Reconstruct(p)
	if err != nil {
		return nil, err
	}

	proof, err := FetchProof(ctx, cli, d.TargetAddress, block)
	if err != nil {
		return nil, err
	}
	root, err := FetchStateRoot(ctx, cli, block)
	if err != nil {
		return nil, err
	}

	nodes, err := decodeNodes(proof.AccountProof)
	if err != nil {
		return nil, err
	}
	return Assemble(dep, noteIndex, block, [32]byte(root), nodes, p)
}

func decodeNodes(hexNodes []string) ([][]byte, error) {
	nodes := make([][]byte, len(hexNodes))
	for i, h := range hexNodes {
		raw, err := hex.DecodeString(strings.TrimPrefix(h, "0x"))
		if err != nil {
			return nil, fmt.Errorf("witness: decoding proof node %d: %w", i, err)
		}
		nodes[i] = raw
	}
	return nodes, nil
}

func be64(n uint64) [8]byte {
	var out [8]byte
	for i := 0; i < 8; i++ {
		out[7-i] = byte(n >> (8 * i))
	}
	return out
}
