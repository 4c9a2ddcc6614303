package mpt

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/math/uints"
)

// Header is the decoded shape of one RLP item, all fields dynamic. Valid
// collects the well-formedness conditions; the caller asserts it under its
// own active mask instead of this decoder failing hard, so masked-off layers
// can carry arbitrary padding.
type Header struct {
	PayloadStart frontend.Variable
	PayloadLen   frontend.Variable
	IsList       frontend.Variable
	Valid        frontend.Variable
}

func (h Header) End(api frontend.API) frontend.Variable {
	return api.Add(h.PayloadStart, h.PayloadLen)
}

// DecodeHeaderAt classifies the item starting at dynamic offset pos: single
// embedded byte, short or long string, short or long list. Long-form lengths
// are read from up to two subsequent bytes; a longer length-of-length yields
// the oversize sentinel, which the exact-consumption contract then rejects,
// matching the native decoder's verdict on such inputs.
func DecodeHeaderAt(api frontend.API, buf []uints.U8, pos frontend.Variable) Header {
	b0 := ByteAt(api, buf, pos)
	b1 := ByteAt(api, buf, api.Add(pos, 1))
	b2 := ByteAt(api, buf, api.Add(pos, 2))

	isSingle := isLess(api, b0, 0x80)
	isShortStr := api.Mul(api.Sub(1, isSingle), isLess(api, b0, 0xb8))
	isLongStr := api.Mul(isLess(api, b0, 0xc0), api.Sub(1, api.Add(isSingle, isShortStr)))
	isShortList := api.Mul(api.Sub(1, isLess(api, b0, 0xc0)), isLess(api, b0, 0xf8))
	isLongList := api.Sub(1, api.Add(api.Add(isSingle, isShortStr), api.Add(isLongStr, isShortList)))

	// length-of-length for the long forms
	lol := api.Select(isLongStr, api.Sub(b0, 0xb7), api.Select(isLongList, api.Sub(b0, 0xf7), 0))
	lolIs1 := isEqual(api, lol, 1)
	lolIs2 := isEqual(api, lol, 2)
	longLen := api.Select(lolIs1, b1,
		api.Select(lolIs2, api.Add(api.Mul(b1, 256), b2), oversize))

	isLong := api.Add(isLongStr, isLongList)
	// canonical long form: first length byte nonzero, payload >= 56
	longOK := api.Mul(api.Sub(1, api.IsZero(b1)), api.Sub(1, isLess(api, longLen, 56)))

	var h Header
	h.IsList = api.Add(isShortList, isLongList)
	h.Valid = api.Select(isLong, longOK, 1)

	shortLen := api.Select(isShortStr, api.Sub(b0, 0x80),
		api.Select(isShortList, api.Sub(b0, 0xc0), 1))
	h.PayloadLen = api.Select(isLong, longLen, shortLen)

	// single byte: payload is the byte itself, at pos
	off := api.Select(isSingle, 0, api.Add(1, lol))
	h.PayloadStart = api.Add(pos, off)
	return h
}

// DecodeNode decodes a complete node occupying buf[:total] and, when active,
// asserts the exact-consumption contract: the item must span precisely the
// declared total, with no shortfall and no overrun.
func DecodeNode(api frontend.API, buf []uints.U8, total, active frontend.Variable) Header {
	h := DecodeHeaderAt(api, buf, 0)
	assertWhen(api, active, h.Valid)
	assertWhen(api, active, isEqual(api, h.End(api), total))
	return h
}

// ReadUint folds buf[start:start+length] into a big-endian unsigned integer.
// Positions at or beyond length contribute nothing. maxBytes bounds the scan
// and must keep the result in-field.
func ReadUint(api frontend.API, buf []uints.U8, start, length frontend.Variable, maxBytes int) frontend.Variable {
	acc := frontend.Variable(0)
	for i := 0; i < maxBytes; i++ {
		b := ByteAt(api, buf, api.Add(start, i))
		inRun := isLess(api, i, length)
		acc = api.Select(inRun, api.Add(api.Mul(acc, 256), b), acc)
	}
	return acc
}

// ListItems scans the payload of list for its items, returning a fixed
// BranchItems-sized table plus per-item presence flags and the item count.
// When active, asserts every present item is well formed and that the items
// tile the payload exactly.
type Item struct {
	Header
	HeaderStart frontend.Variable
	Present     frontend.Variable
}

func ListItems(api frontend.API, buf []uints.U8, list Header, active frontend.Variable) ([BranchItems]Item, frontend.Variable) {
	var items [BranchItems]Item
	end := list.End(api)
	pos := list.PayloadStart
	count := frontend.Variable(0)

	for k := 0; k < BranchItems; k++ {
		present := isLess(api, pos, end)
		h := DecodeHeaderAt(api, buf, pos)

		on := api.Mul(active, present)
		assertWhen(api, on, h.Valid)
		// item must not overrun the enclosing payload
		assertWhen(api, on, api.Sub(1, isLess(api, end, h.End(api))))

		items[k] = Item{Header: h, HeaderStart: pos, Present: present}
		pos = api.Select(present, h.End(api), pos)
		count = api.Add(count, present)
	}

	// exact tiling: a 17-item scan must consume the whole payload
	assertWhen(api, active, isEqual(api, pos, end))
	return items, count
}

// ItemAt muxes the item table at a dynamic index.
func ItemAt(api frontend.API, items [BranchItems]Item, idx frontend.Variable) Item {
	out := items[0]
	for k := 1; k < BranchItems; k++ {
		pick := isEqual(api, idx, k)
		out.PayloadStart = api.Select(pick, items[k].PayloadStart, out.PayloadStart)
		out.PayloadLen = api.Select(pick, items[k].PayloadLen, out.PayloadLen)
		out.IsList = api.Select(pick, items[k].IsList, out.IsList)
		out.Valid = api.Select(pick, items[k].Valid, out.Valid)
		out.HeaderStart = api.Select(pick, items[k].HeaderStart, out.HeaderStart)
		out.Present = api.Select(pick, items[k].Present, out.Present)
	}
	return out
}
