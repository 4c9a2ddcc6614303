package mpt

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/math/uints"
)

// DecodeAccount parses the 4-field account record occupying buf[:total]:
// list(nonce, balance, storageRoot₃₂, codeHash₃₂). When active, asserts the
// record's shape and returns the balance as an integer. The balance run is
// bounded to MaxBalanceBytes, mirroring the native decoder.
func DecodeAccount(api frontend.API, buf []uints.U8, total, active frontend.Variable) (balance frontend.Variable) {
	list := DecodeNode(api, buf, total, active)
	assertWhen(api, active, list.IsList)

	items, count := ListItems(api, buf, list, active)
	assertWhen(api, active, isEqual(api, count, 4))

	for i := 0; i < 4; i++ {
		on := api.Mul(active, items[i].Present)
		assertWhen(api, on, api.Sub(1, items[i].IsList))
	}
	// nonce and balance are bounded scalars, the commitments exactly 32 bytes
	assertWhen(api, active, api.Sub(1, isLess(api, 32, items[0].PayloadLen)))
	assertWhen(api, active, api.Sub(1, isLess(api, MaxBalanceBytes, items[1].PayloadLen)))
	assertWhen(api, active, isEqual(api, items[2].PayloadLen, 32))
	assertWhen(api, active, isEqual(api, items[3].PayloadLen, 32))

	return ReadUint(api, buf, items[1].PayloadStart, items[1].PayloadLen, MaxBalanceBytes)
}
