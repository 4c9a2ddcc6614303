package mpt

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/math/uints"
)

// nibble folds 4 LSB-first bits into a 0-15 value.
func nibble(api frontend.API, bits []frontend.Variable, start int) frontend.Variable {
	val := bits[start]
	val = api.Add(val, api.Mul(bits[start+1], 2))
	val = api.Add(val, api.Mul(bits[start+2], 4))
	val = api.Add(val, api.Mul(bits[start+3], 8))
	return val
}

// CompactPath is the decoded hex-prefix key of a short node: leaf or
// extension, never both, with the path nibbles aligned from Nibbles[0].
type CompactPath struct {
	IsLeaf  frontend.Variable
	Nibbles [MaxPathNibbles]frontend.Variable
	Len     frontend.Variable
	Valid   frontend.Variable
}

// DecodeCompact parses the hex-prefix encoding in key[:keyLen]. The first
// byte's high nibble carries the leaf flag and the parity of the nibble
// count; flag values above 3 and nonzero even-parity padding are invalid.
// key is a fixed-capacity buffer; bytes at or beyond keyLen are ignored.
func DecodeCompact(api frontend.API, key []uints.U8, keyLen frontend.Variable) CompactPath {
	var cp CompactPath

	bits := api.ToBinary(key[0].Val, 8)
	hi0, hi1, hi2, hi3 := bits[4], bits[5], bits[6], bits[7]
	loNib := nibble(api, bits, 0)

	cp.IsLeaf = hi1
	isOdd := hi0

	flagsOK := api.Mul(api.IsZero(hi2), api.IsZero(hi3))
	padOK := api.Select(isOdd, 1, api.IsZero(loNib))

	// nibble layouts for both parities, selected elementwise
	var odd, even [MaxPathNibbles]frontend.Variable
	for i := range odd {
		odd[i] = frontend.Variable(0)
		even[i] = frontend.Variable(0)
	}
	odd[0] = loNib
	for j := 1; j < len(key) && 2*j <= MaxPathNibbles; j++ {
		b := api.ToBinary(key[j].Val, 8)
		hiN := nibble(api, b, 4)
		loN := nibble(api, b, 0)
		even[2*j-2] = hiN
		even[2*j-1] = loN
		if 2*j < MaxPathNibbles {
			odd[2*j-1] = hiN
			odd[2*j] = loN
		}
	}
	for i := range cp.Nibbles {
		cp.Nibbles[i] = api.Select(isOdd, odd[i], even[i])
	}

	// total nibbles: 2*(keyLen-1) + parity
	cp.Len = api.Add(api.Mul(api.Sub(keyLen, 1), 2), isOdd)
	lenOK := api.Mul(
		api.Sub(1, api.IsZero(keyLen)),
		api.Sub(1, isLess(api, MaxPathNibbles, cp.Len)),
	)

	cp.Valid = api.Mul(api.Mul(flagsOK, padOK), lenOK)
	return cp
}
