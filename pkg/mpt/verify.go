package mpt

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/math/uints"
)

// ProofInput is the fixed-capacity account proof as the circuit sees it.
// Nodes holds MaxProofDepth buffers of MaxNodeBytes each; NodeLens carries
// the real byte length of every populated layer and zero for padding layers;
// NodeCount says how many layers are populated. Path is the 64-nibble
// expansion of keccak(address).
type ProofInput struct {
	Nodes     [][]uints.U8
	NodeLens  []frontend.Variable
	NodeCount frontend.Variable
	Root      [32]uints.U8
	Path      [MaxPathNibbles]frontend.Variable
}

// PathAt muxes the nibble path at a dynamic cursor. Past-the-end reads
// return zero and are only ever produced by masked-off lanes.
func PathAt(api frontend.API, path [MaxPathNibbles]frontend.Variable, idx frontend.Variable) frontend.Variable {
	val := frontend.Variable(0)
	for j := range path {
		val = api.Select(isEqual(api, idx, j), path[j], val)
	}
	return val
}

// VerifyAccount walks the proof root-to-leaf along the address path and
// returns the balance of the terminal account record. Every structural check
// of the native verifier is asserted here under the layer's active mask: a
// single failing check makes the whole witness unprovable. The walk runs the
// full fixed depth regardless of NodeCount.
func VerifyAccount(api frontend.API, in ProofInput) frontend.Variable {
	depth := len(in.Nodes)

	// 1 <= NodeCount <= depth
	api.AssertIsEqual(isLess(api, 0, in.NodeCount), 1)
	api.AssertIsEqual(isLess(api, frontend.Variable(depth), in.NodeCount), 0)

	// one digest per layer; layer 0's doubles as the root check
	digests := make([][32]uints.U8, depth)
	for lvl := 0; lvl < depth; lvl++ {
		digests[lvl] = NodeDigest(api, in.Nodes[lvl], in.NodeLens[lvl])
	}
	for i := 0; i < 32; i++ {
		api.AssertIsEqual(digests[0][i].Val, in.Root[i].Val)
	}

	cursor := frontend.Variable(0)
	balance := frontend.Variable(0)

	for lvl := 0; lvl < depth; lvl++ {
		node := in.Nodes[lvl]
		nlen := in.NodeLens[lvl]

		active := isLess(api, lvl, in.NodeCount)
		isLast := isEqual(api, lvl, api.Sub(in.NodeCount, 1))

		assertWhen(api, active, api.Sub(1, api.IsZero(nlen)))
		assertWhen(api, active, api.Sub(1, isLess(api, len(node), nlen)))

		list := DecodeNode(api, node, nlen, active)
		assertWhen(api, active, list.IsList)

		items, count := ListItems(api, node, list, active)
		isBranch := isEqual(api, count, BranchItems)
		isShort := isEqual(api, count, 2)
		assertWhen(api, active, api.Add(isBranch, isShort))

		branchActive := api.Mul(active, isBranch)
		shortActive := api.Mul(active, isShort)

		// a branch consumes one nibble and can never terminate the proof
		assertWhen(api, branchActive, api.Sub(1, isLast))
		assertWhen(api, branchActive, isLess(api, cursor, MaxPathNibbles))
		nib := PathAt(api, in.Path, cursor)

		// short node: decode the hex-prefix key out of item 0
		assertWhen(api, shortActive, api.Sub(1, items[0].IsList))
		assertWhen(api, shortActive, api.Sub(1, isLess(api, MaxKeyBytes, items[0].PayloadLen)))
		var keyBuf [MaxKeyBytes]uints.U8
		for j := 0; j < MaxKeyBytes; j++ {
			b := ByteAt(api, node, api.Add(items[0].PayloadStart, j))
			keyBuf[j] = uints.U8{Val: api.Select(isLess(api, j, items[0].PayloadLen), b, 0)}
		}
		cp := DecodeCompact(api, keyBuf[:], items[0].PayloadLen)
		assertWhen(api, shortActive, cp.Valid)

		// the decoded path must equal the address path slice at cursor
		assertWhen(api, shortActive, api.Sub(1, isLess(api, MaxPathNibbles, api.Add(cursor, cp.Len))))
		for i := 0; i < MaxPathNibbles; i++ {
			within := isLess(api, i, cp.Len)
			want := PathAt(api, in.Path, api.Add(cursor, i))
			assertWhen(api, api.Mul(shortActive, within), isEqual(api, cp.Nibbles[i], want))
		}

		isLeaf := api.Mul(shortActive, cp.IsLeaf)
		isExt := api.Mul(shortActive, api.Sub(1, cp.IsLeaf))

		// a leaf is terminal, the terminal layer is a leaf, an extension
		// always has a successor and a nonempty path
		assertWhen(api, isLeaf, isLast)
		assertWhen(api, api.Mul(active, isLast), api.Mul(isShort, cp.IsLeaf))
		assertWhen(api, isExt, api.Sub(1, isLast))
		assertWhen(api, isExt, api.Sub(1, api.IsZero(cp.Len)))

		// child reference: branch slot at the path nibble, or item 1 of an
		// extension
		child := ItemAt(api, items, api.Select(isBranch, nib, 1))
		if lvl+1 < depth {
			linkActive := api.Mul(active, api.Sub(1, isLast))
			assertChildLink(api, node, child, in.Nodes[lvl+1], in.NodeLens[lvl+1],
				digests[lvl+1], linkActive)
		}

		// terminal leaf: item 1 is a string holding the account record
		assertWhen(api, isLeaf, isEqual(api, api.Add(cursor, cp.Len), MaxPathNibbles))
		assertWhen(api, isLeaf, api.Sub(1, items[1].IsList))
		assertWhen(api, isLeaf, api.Sub(1, isLess(api, MaxAccountBytes, items[1].PayloadLen)))
		var acctBuf [MaxAccountBytes]uints.U8
		for j := 0; j < MaxAccountBytes; j++ {
			b := ByteAt(api, node, api.Add(items[1].PayloadStart, j))
			acctBuf[j] = uints.U8{Val: api.Select(isLess(api, j, items[1].PayloadLen), b, 0)}
		}
		bal := DecodeAccount(api, acctBuf[:], items[1].PayloadLen, isLeaf)
		balance = api.Select(isLeaf, bal, balance)

		consumed := api.Select(isBranch, 1, cp.Len)
		cursor = api.Select(active, api.Add(cursor, consumed), cursor)
	}

	// the leaf check above already pins cursor to 64 on the active path;
	// this closes the loop for the accumulated value itself
	api.AssertIsEqual(cursor, MaxPathNibbles)

	return balance
}

// assertChildLink ties a parent's child reference to the next layer. A
// 32-byte string reference must equal the next layer's digest; anything else
// is an embedded reference, which must be under 32 bytes and byte-identical
// to the next layer.
func assertChildLink(api frontend.API, node []uints.U8, child Item, next []uints.U8, nextLen frontend.Variable, nextDigest [32]uints.U8, active frontend.Variable) {
	refStart := api.Select(child.IsList, child.HeaderStart, child.PayloadStart)
	refLen := api.Select(child.IsList,
		api.Sub(child.End(api), child.HeaderStart), child.PayloadLen)

	isHash := api.Mul(api.Sub(1, child.IsList), isEqual(api, refLen, 32))
	hashActive := api.Mul(active, isHash)
	embedActive := api.Mul(active, api.Sub(1, isHash))

	for i := 0; i < 32; i++ {
		b := ByteAt(api, node, api.Add(refStart, i))
		assertWhen(api, hashActive, isEqual(api, b, nextDigest[i].Val))
	}
	assertWhen(api, embedActive, isLess(api, refLen, 32))
	assertWhen(api, embedActive, isEqual(api, refLen, nextLen))
	for i := 0; i < MaxEmbedBytes; i++ {
		b := ByteAt(api, node, api.Add(refStart, i))
		assertWhen(api, api.Mul(embedActive, isLess(api, i, refLen)),
			isEqual(api, b, next[i].Val))
	}
}
