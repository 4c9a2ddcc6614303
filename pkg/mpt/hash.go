package mpt

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/math/uints"

	"github.com/yourorg/veildrop/internal/keccak"
)

// NodeDigest returns keccak256 of the first nodeLen bytes of the
// fixed-capacity node buffer.
func NodeDigest(api frontend.API, node []uints.U8, nodeLen frontend.Variable) [32]uints.U8 {
	h := keccak.NewFixed(api)
	h.Write(node)
	sum := h.FixedLengthSum(nodeLen)

	var out [32]uints.U8
	copy(out[:], sum[:32])
	return out
}

// AssertDigestEqual asserts, when active, that digest equals the 32 bytes of
// buf starting at the dynamic offset start.
func AssertDigestEqual(api frontend.API, buf []uints.U8, start frontend.Variable, digest [32]uints.U8, active frontend.Variable) {
	for i := 0; i < 32; i++ {
		b := ByteAt(api, buf, api.Add(start, i))
		assertWhen(api, active, isEqual(api, b, digest[i].Val))
	}
}
