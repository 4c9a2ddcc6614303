// Package mpt is the constraint-producing half of the account-proof
// verifier. Every function mirrors its counterpart in pkg/trie; loops run a
// fixed, capacity-derived number of iterations and use explicit length and
// active signals to turn unused iterations off, because the proving
// environment cannot branch on data-dependent lengths at all.
package mpt

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/math/uints"
)

// ConstU8 wraps a constant byte.
func ConstU8(b byte) uints.U8 {
	return uints.NewU8(b)
}

// BytesToU8s lifts raw bytes into constant circuit bytes.
func BytesToU8s(bs []byte) []uints.U8 {
	u8 := make([]uints.U8, len(bs))
	for i, b := range bs {
		u8[i] = uints.NewU8(b)
	}
	return u8
}

// isLess returns 1 iff x < y.
func isLess(api frontend.API, x, y frontend.Variable) frontend.Variable {
	return api.IsZero(api.Add(api.Cmp(x, y), 1))
}

func isEqual(api frontend.API, x, y frontend.Variable) frontend.Variable {
	return api.IsZero(api.Sub(x, y))
}

// ByteAt muxes buf[idx] out of a fixed-capacity buffer. Out-of-range indices
// read as zero, which the callers' length masks render harmless.
func ByteAt(api frontend.API, buf []uints.U8, idx frontend.Variable) frontend.Variable {
	val := frontend.Variable(0)
	for j := range buf {
		val = api.Select(isEqual(api, idx, j), buf[j].Val, val)
	}
	return val
}

// assertWhen asserts cond == 1 whenever active == 1.
func assertWhen(api frontend.API, active, cond frontend.Variable) {
	api.AssertIsEqual(api.Select(active, cond, 1), 1)
}

// packPrefixBE folds the first n bytes of buf into a big-endian integer,
// iterating the full capacity with n as the cut-off signal. The caller keeps
// n small enough for the result to stay in-field.
func packPrefixBE(api frontend.API, buf []uints.U8, n frontend.Variable) frontend.Variable {
	acc := frontend.Variable(0)
	for i := range buf {
		inPrefix := isLess(api, i, n)
		acc = api.Select(inPrefix, api.Add(api.Mul(acc, 256), buf[i].Val), acc)
	}
	return acc
}

// bytesEqualPrefix returns 1 iff a[i] == b[i] for every i < n.
func bytesEqualPrefix(api frontend.API, a, b []frontend.Variable, n frontend.Variable) frontend.Variable {
	ok := frontend.Variable(1)
	for i := range a {
		same := isEqual(api, a[i], b[i])
		ok = api.Select(isLess(api, i, n), api.Mul(ok, same), ok)
	}
	return ok
}
