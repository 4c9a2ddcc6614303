package mpt

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/math/uints"
	"github.com/consensys/gnark/test"
	"github.com/ethereum/go-ethereum/crypto"
)

// digestCircuit hashes the first NodeLen bytes of a fixed 80-byte buffer, so
// the padding beyond the real node must not influence the digest.
type digestCircuit struct {
	Node    [80]uints.U8
	NodeLen frontend.Variable
	Want    [32]uints.U8 `gnark:",public"`
}

func (c *digestCircuit) Define(api frontend.API) error {
	got := NodeDigest(api, c.Node[:], c.NodeLen)
	for i := range got {
		api.AssertIsEqual(got[i].Val, c.Want[i].Val)
	}
	return nil
}

func TestNodeDigest(t *testing.T) {
	assert := test.NewAssert(t)

	for _, n := range []int{1, 17, 55, 80} {
		raw := make([]byte, n)
		for i := range raw {
			raw[i] = byte(i + 1)
		}
		var w digestCircuit
		for i := range w.Node {
			if i < n {
				w.Node[i] = b(raw[i])
			} else {
				w.Node[i] = b(0xee) // padding must be ignored
			}
		}
		w.NodeLen = n
		var want [32]byte
		copy(want[:], crypto.Keccak256(raw))
		for i := range w.Want {
			w.Want[i] = b(want[i])
		}
		assert.ProverSucceeded(new(digestCircuit), &w, test.WithCurves(ecc.BN254))
	}
}

func TestNodeDigestRejectsWrong(t *testing.T) {
	assert := test.NewAssert(t)

	raw := []byte{0x01, 0x02, 0x03}
	var w digestCircuit
	for i := range w.Node {
		if i < len(raw) {
			w.Node[i] = b(raw[i])
		} else {
			w.Node[i] = b(0)
		}
	}
	w.NodeLen = len(raw)
	var want [32]byte
	copy(want[:], crypto.Keccak256(raw))
	want[31] ^= 0x01
	for i := range w.Want {
		w.Want[i] = b(want[i])
	}
	assert.ProverFailed(new(digestCircuit), &w, test.WithCurves(ecc.BN254))
}
