package keccak

import (
	"github.com/consensys/gnark/frontend"
	stdhash "github.com/consensys/gnark/std/hash"
	"github.com/consensys/gnark/std/hash/sha3"
)

func New(api frontend.API) stdhash.BinaryHasher {
	h, err := sha3.NewLegacyKeccak256(api)
	if err != nil {
		panic(err)
	}
	return h
}

// NewFixed returns a keccak instance supporting FixedLengthSum, for hashing
// a fixed-capacity buffer of which only a dynamic-length prefix is real data.
func NewFixed(api frontend.API) stdhash.BinaryFixedLengthHasher {
	h, err := sha3.NewLegacyKeccak256(api)
	if err != nil {
		panic(err)
	}
	f, ok := any(h).(stdhash.BinaryFixedLengthHasher)
	if !ok {
		panic("keccak: sha3 gadget lacks FixedLengthSum")
	}
	return f
}