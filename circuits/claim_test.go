package circuits_test

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend"
	"github.com/consensys/gnark/std/math/uints"
	"github.com/consensys/gnark/test"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/veildrop/circuits"
	"github.com/yourorg/veildrop/pkg/derive"
	"github.com/yourorg/veildrop/pkg/params"
	"github.com/yourorg/veildrop/pkg/witness"
)

// testParams shrinks the capacities so the full claim circuit stays
// tractable under the test prover. Semantics are unchanged.
func testParams() params.Params {
	p := params.Default()
	p.MaxNotes = 2
	p.MaxProofDepth = 2
	p.MaxNodeBytes = 200
	p.PowBits = 4
	return p
}

func hexPrefixKey(nibbles []byte, isLeaf bool) []byte {
	flags := byte(0)
	if isLeaf {
		flags |= 2
	}
	if len(nibbles)%2 == 1 {
		flags |= 1
	}
	out := []byte{flags << 4}
	if len(nibbles)%2 == 1 {
		out[0] |= nibbles[0]
		nibbles = nibbles[1:]
	}
	for i := 0; i < len(nibbles); i += 2 {
		out = append(out, nibbles[i]<<4|nibbles[i+1])
	}
	return out
}

// leafProofFor builds a depth-1 account proof putting balance at address.
func leafProofFor(t *testing.T, address common.Address, balance *big.Int) ([32]byte, [][]byte) {
	t.Helper()
	h := crypto.Keccak256(address[:])
	nibbles := make([]byte, 64)
	for i, x := range h {
		nibbles[2*i] = x >> 4
		nibbles[2*i+1] = x & 0x0f
	}
	account, err := rlp.EncodeToBytes([]interface{}{
		uint64(0), balance, make([]byte, 32), crypto.Keccak256([]byte{}),
	})
	require.NoError(t, err)
	leaf, err := rlp.EncodeToBytes([]interface{}{hexPrefixKey(nibbles, true), account})
	require.NoError(t, err)
	var root [32]byte
	copy(root[:], crypto.Keccak256(leaf))
	return root, [][]byte{leaf}
}

type claimScenario struct {
	assignment *circuits.ClaimCircuit
	pub        derive.PublicVector
	secret     derive.Secret
	p          params.Params
}

func newClaimScenario(t *testing.T) claimScenario {
	t.Helper()
	p := testParams()
	const chainID = uint64(1)

	ns := derive.NoteSet{
		{Recipient: common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"), Amount: big.NewInt(3)},
		{Recipient: common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"), Amount: big.NewInt(4)},
	}
	nc := derive.NotesCommitment(ns, p.MaxNotes)

	var seed derive.Secret
	seed[0] = 0x5a
	secret, _, err := derive.FindValidSecret(seed, nc, p.PowBits, 1<<16)
	require.NoError(t, err)

	dep, err := derive.NewBundle(secret, chainID, ns, p)
	require.NoError(t, err)
	d, err := dep.Reconstruct(p)
	require.NoError(t, err)

	root, nodes := leafProofFor(t, d.TargetAddress, ns.Aggregate())
	assignment, pub, err := witness.NewAssignment(dep, 1, 123456, root, nodes, p)
	require.NoError(t, err)
	require.Equal(t, uint8(1), pub.NoteIndex)
	return claimScenario{assignment: assignment, pub: pub, secret: secret, p: p}
}

func (s claimScenario) prove(t *testing.T, wantOK bool) {
	t.Helper()
	assert := test.NewAssert(t)
	opts := []test.TestingOption{
		test.WithCurves(ecc.BN254),
		test.WithBackends(backend.GROTH16),
	}
	if wantOK {
		assert.ProverSucceeded(circuits.New(s.p), s.assignment, opts...)
	} else {
		assert.ProverFailed(circuits.New(s.p), s.assignment, opts...)
	}
}

func TestClaimCircuitProves(t *testing.T) {
	newClaimScenario(t).prove(t, true)
}

func TestClaimCircuitRejectsWrongNullifier(t *testing.T) {
	s := newClaimScenario(t)
	s.assignment.Nullifier[0] = uints.NewU8(s.pub.Nullifier[0] ^ 0x01)
	s.prove(t, false)
}

func TestClaimCircuitRejectsWrongAmount(t *testing.T) {
	s := newClaimScenario(t)
	s.assignment.Amount[31] = uints.NewU8(9) // claimed note holds 4
	s.prove(t, false)
}

func TestClaimCircuitRejectsForeignSecret(t *testing.T) {
	s := newClaimScenario(t)
	s.assignment.Secret[0] = uints.NewU8(s.secret[0] ^ 0x01)
	s.prove(t, false)
}
