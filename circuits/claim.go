// Package circuits holds the claim-authorization circuit: the provable
// counterpart of pkg/derive and pkg/trie. The statement is the v2 public
// vector; the witness is the depositor's secret, the committed note slots,
// and the raw account-proof bytes.
package circuits

import (
	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/math/uints"

	"github.com/yourorg/veildrop/internal/keccak"
	"github.com/yourorg/veildrop/pkg/mpt"
	"github.com/yourorg/veildrop/pkg/params"
)

func Curve() ecc.ID { return ecc.BN254 }

// amountBytes is the slot width of an amount; amountValueBytes is how many
// of those may be nonzero, so packed amounts and their sums stay in-field.
const (
	amountBytes      = 32
	amountValueBytes = 16
)

// ClaimCircuit proves, for one note of a committed note set, that the
// deterministically-derived target address held the set's aggregate amount
// under the public state root, and binds the claim to its nullifier and PoW
// digest. Public fields mirror the v2 public vector slot for slot.
type ClaimCircuit struct {
	BlockNumber [8]uints.U8  `gnark:",public"`
	Root        [32]uints.U8 `gnark:",public"`
	ChainID     [8]uints.U8  `gnark:",public"`
	NoteIndex   uints.U8     `gnark:",public"`
	Amount      [32]uints.U8 `gnark:",public"`
	Recipient   [20]uints.U8 `gnark:",public"`
	Nullifier   [32]uints.U8 `gnark:",public"`
	PowDigest   [32]uints.U8 `gnark:",public"`

	Secret [32]uints.U8

	// note slots, fixed capacity, zero-filled past the committed set
	NoteAmounts    [][32]uints.U8
	NoteRecipients [][32]uints.U8 // recipient commitments

	// account proof, fixed capacity, zero-filled past NodeCount layers
	ProofNodes    [][]uints.U8
	ProofNodeLens []frontend.Variable
	NodeCount     frontend.Variable

	// compile-time PoW gate width
	PowBits int
}

// New sizes a circuit blueprint for the given parameter set. Prover and
// verifier must agree on the parameters or the constraint systems diverge.
func New(p params.Params) *ClaimCircuit {
	c := &ClaimCircuit{PowBits: p.PowBits}
	c.NoteAmounts = make([][32]uints.U8, p.MaxNotes)
	c.NoteRecipients = make([][32]uints.U8, p.MaxNotes)
	c.ProofNodes = make([][]uints.U8, p.MaxProofDepth)
	for i := range c.ProofNodes {
		c.ProofNodes[i] = make([]uints.U8, p.MaxNodeBytes)
	}
	c.ProofNodeLens = make([]frontend.Variable, p.MaxProofDepth)
	return c
}

func (c *ClaimCircuit) Define(api frontend.API) error {
	chainID32 := append(zeroU8s(24), c.ChainID[:]...)

	// derivation chain, mirroring pkg/derive
	nc := notesCommitment(api, c.NoteAmounts, c.NoteRecipients)

	null := nullifierDigest(api, chainID32, c.Secret[:], c.NoteIndex)
	assertBytesEqual(api, null, c.Nullifier)

	pow := powDigest(api, nc, c.Secret[:])
	assertBytesEqual(api, pow, c.PowDigest)
	assertTrailingZeroBits(api, pow, c.PowBits)

	addr := targetAddress(api, chainID32, c.Secret[:], nc)

	// the claimed slot must carry the public amount and recipient
	rc := recipientCommitment(api, c.Recipient)
	hit := frontend.Variable(0)
	for k := range c.NoteAmounts {
		pick := api.IsZero(api.Sub(c.NoteIndex.Val, k))
		hit = api.Add(hit, pick)
		for i := 0; i < amountBytes; i++ {
			api.AssertIsEqual(api.Mul(pick, api.Sub(c.NoteAmounts[k][i].Val, c.Amount[i].Val)), 0)
			api.AssertIsEqual(api.Mul(pick, api.Sub(c.NoteRecipients[k][i].Val, rc[i].Val)), 0)
		}
	}
	// exactly one slot hit, which also range-checks NoteIndex
	api.AssertIsEqual(hit, 1)

	// aggregate the slot amounts; high amount bytes must be zero so the
	// packed values and their sum stay in-field
	required := frontend.Variable(0)
	for k := range c.NoteAmounts {
		required = api.Add(required, packAmount(api, c.NoteAmounts[k]))
	}
	claimed := packAmount(api, c.Amount)
	api.AssertIsDifferent(claimed, 0)

	// walk the proof along keccak(targetAddress)
	balance := mpt.VerifyAccount(api, mpt.ProofInput{
		Nodes:     c.ProofNodes,
		NodeLens:  c.ProofNodeLens,
		NodeCount: c.NodeCount,
		Root:      c.Root,
		Path:      addressPath(api, addr),
	})
	api.AssertIsLessOrEqual(required, balance)

	return nil
}

// packAmount folds a 32-byte amount into a field element, asserting the
// bytes above amountValueBytes are zero.
func packAmount(api frontend.API, amount [32]uints.U8) frontend.Variable {
	for i := 0; i < amountBytes-amountValueBytes; i++ {
		api.AssertIsEqual(amount[i].Val, 0)
	}
	acc := frontend.Variable(0)
	for i := amountBytes - amountValueBytes; i < amountBytes; i++ {
		acc = api.Add(api.Mul(acc, 256), amount[i].Val)
	}
	return acc
}

// addressPath expands keccak(address) into the 64-nibble trie path.
func addressPath(api frontend.API, addr [20]uints.U8) [mpt.MaxPathNibbles]frontend.Variable {
	h := keccak.New(api)
	h.Write(addr[:])
	digest := h.Sum()

	var path [mpt.MaxPathNibbles]frontend.Variable
	for i := 0; i < 32; i++ {
		bits := api.ToBinary(digest[i].Val, 8)
		path[2*i] = api.Add(bits[4], api.Add(api.Mul(bits[5], 2), api.Add(api.Mul(bits[6], 4), api.Mul(bits[7], 8))))
		path[2*i+1] = api.Add(bits[0], api.Add(api.Mul(bits[1], 2), api.Add(api.Mul(bits[2], 4), api.Mul(bits[3], 8))))
	}
	return path
}
