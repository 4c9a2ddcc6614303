package circuits

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/math/uints"

	"github.com/yourorg/veildrop/internal/keccak"
	"github.com/yourorg/veildrop/pkg/derive"
)

// In-circuit counterparts of the pkg/derive functions. The domain tags are
// shared with the native side so the two can never drift apart.

func constU8s(bs []byte) []uints.U8 {
	out := make([]uints.U8, len(bs))
	for i, b := range bs {
		out[i] = uints.NewU8(b)
	}
	return out
}

func zeroU8s(n int) []uints.U8 {
	out := make([]uints.U8, n)
	for i := range out {
		out[i] = uints.NewU8(0)
	}
	return out
}

// keccakOf hashes the concatenation of the chunks.
func keccakOf(api frontend.API, chunks ...[]uints.U8) [32]uints.U8 {
	h := keccak.New(api)
	for _, c := range chunks {
		h.Write(c)
	}
	var out [32]uints.U8
	copy(out[:], h.Sum()[:32])
	return out
}

// recipientCommitment computes keccak(TagRecipient ‖ pad32(recipient)).
func recipientCommitment(api frontend.API, recipient [20]uints.U8) [32]uints.U8 {
	return keccakOf(api,
		constU8s(derive.TagRecipient[:]),
		zeroU8s(12),
		recipient[:],
	)
}

// notesCommitment hashes the fixed-capacity slot encoding: every slot is
// amount₃₂ ‖ recipientCommitment₃₂, zero slots included.
func notesCommitment(api frontend.API, amounts, recipients [][32]uints.U8) [32]uints.U8 {
	h := keccak.New(api)
	for i := range amounts {
		h.Write(amounts[i][:])
		h.Write(recipients[i][:])
	}
	var out [32]uints.U8
	copy(out[:], h.Sum()[:32])
	return out
}

// nullifierDigest computes keccak(TagNullifier ‖ chainId₃₂ ‖ secret ‖ idx₃₂).
func nullifierDigest(api frontend.API, chainID32, secret []uints.U8, noteIndex uints.U8) [32]uints.U8 {
	idx32 := zeroU8s(32)
	idx32[31] = noteIndex
	return keccakOf(api, constU8s(derive.TagNullifier[:]), chainID32, secret, idx32)
}

// powDigest computes keccak(notesCommitment ‖ secret).
func powDigest(api frontend.API, nc [32]uints.U8, secret []uints.U8) [32]uints.U8 {
	return keccakOf(api, nc[:], secret)
}

// targetAddress returns the low 20 bytes of
// keccak(TagAddress ‖ chainId₃₂ ‖ secret ‖ notesCommitment).
func targetAddress(api frontend.API, chainID32, secret []uints.U8, nc [32]uints.U8) [20]uints.U8 {
	full := keccakOf(api, constU8s(derive.TagAddress[:]), chainID32, secret, nc[:])
	var addr [20]uints.U8
	copy(addr[:], full[12:32])
	return addr
}

// assertTrailingZeroBits enforces the PoW gate: the digest's `bits`
// low-order bits must all be zero.
func assertTrailingZeroBits(api frontend.API, digest [32]uints.U8, bits int) {
	for i := 0; i < bits; i += 8 {
		b := api.ToBinary(digest[31-i/8].Val, 8)
		n := bits - i
		if n > 8 {
			n = 8
		}
		for j := 0; j < n; j++ {
			api.AssertIsEqual(b[j], 0)
		}
	}
}

func assertBytesEqual(api frontend.API, got [32]uints.U8, want [32]uints.U8) {
	for i := 0; i < 32; i++ {
		api.AssertIsEqual(got[i].Val, want[i].Val)
	}
}
