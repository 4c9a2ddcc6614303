package mpt

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/math/uints"
	"github.com/consensys/gnark/test"
)

type compactCircuit struct {
	Key    [4]uints.U8
	KeyLen frontend.Variable
	Leaf   frontend.Variable `gnark:",public"`
	Len    frontend.Variable `gnark:",public"`
	Nib0   frontend.Variable `gnark:",public"`
	Nib1   frontend.Variable `gnark:",public"`
	Valid  frontend.Variable `gnark:",public"`
}

func (c *compactCircuit) Define(api frontend.API) error {
	cp := DecodeCompact(api, c.Key[:], c.KeyLen)
	api.AssertIsEqual(cp.IsLeaf, c.Leaf)
	api.AssertIsEqual(cp.Len, c.Len)
	api.AssertIsEqual(cp.Nibbles[0], c.Nib0)
	api.AssertIsEqual(cp.Nibbles[1], c.Nib1)
	api.AssertIsEqual(cp.Valid, c.Valid)
	return nil
}

func key4(bs ...byte) [4]uints.U8 {
	var out [4]uints.U8
	for i := range out {
		if i < len(bs) {
			out[i] = b(bs[i])
		} else {
			out[i] = b(0)
		}
	}
	return out
}

func TestCompactVariants(t *testing.T) {
	assert := test.NewAssert(t)

	cases := []struct {
		name       string
		key        [4]uints.U8
		keyLen     int
		leaf       int
		length     int
		nib0, nib1 int
		valid      int
	}{
		{"even extension", key4(0x00, 0x12, 0x34), 3, 0, 4, 1, 2, 1},
		{"odd extension", key4(0x11, 0x23), 2, 0, 3, 1, 2, 1},
		{"even leaf", key4(0x20, 0xab), 2, 1, 2, 0xa, 0xb, 1},
		{"odd leaf", key4(0x3f), 1, 1, 1, 0xf, 0, 1},
		{"flag nibble above three", key4(0x40, 0x12), 2, 0, 2, 1, 2, 0},
		{"nonzero even padding", key4(0x05, 0x12), 2, 0, 2, 1, 2, 0},
	}
	for _, tc := range cases {
		w := compactCircuit{
			Key:    tc.key,
			KeyLen: tc.keyLen,
			Leaf:   tc.leaf,
			Len:    tc.length,
			Nib0:   tc.nib0,
			Nib1:   tc.nib1,
			Valid:  tc.valid,
		}
		assert.ProverSucceeded(new(compactCircuit), &w, test.WithCurves(ecc.BN254))
	}
}
