package mpt

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark/std/math/uints"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
)

// Proof fixtures for the walk tests, built with geth's encoder so none of the
// bytes under test come from this package.

func hexPrefix(nibbles []byte, isLeaf bool) []byte {
	flags := byte(0)
	if isLeaf {
		flags |= 2
	}
	if len(nibbles)%2 == 1 {
		flags |= 1
	}
	out := make([]byte, 0, len(nibbles)/2+1)
	if len(nibbles)%2 == 1 {
		out = append(out, flags<<4|nibbles[0])
		nibbles = nibbles[1:]
	} else {
		out = append(out, flags<<4)
	}
	for i := 0; i < len(nibbles); i += 2 {
		out = append(out, nibbles[i]<<4|nibbles[i+1])
	}
	return out
}

func mustRLP(t *testing.T, v interface{}) []byte {
	t.Helper()
	raw, err := rlp.EncodeToBytes(v)
	if err != nil {
		t.Fatalf("rlp: %v", err)
	}
	return raw
}

func fixtureAccount(t *testing.T, balance *big.Int) []byte {
	return mustRLP(t, []interface{}{
		uint64(3),
		balance,
		make([]byte, 32),
		crypto.Keccak256([]byte{}),
	})
}

func addressNibbles(address common.Address) [64]byte {
	h := crypto.Keccak256(address[:])
	var path [64]byte
	for i, x := range h {
		path[2*i] = x >> 4
		path[2*i+1] = x & 0x0f
	}
	return path
}

type walkFixture struct {
	path    [64]byte
	root    [32]byte
	nodes   [][]byte
	balance *big.Int
}

func leafOnlyFixture(t *testing.T, balance *big.Int) walkFixture {
	addr := common.HexToAddress("0x1111111111111111111111111111111111111111")
	path := addressNibbles(addr)
	leaf := mustRLP(t, []interface{}{hexPrefix(path[:], true), fixtureAccount(t, balance)})
	var root [32]byte
	copy(root[:], crypto.Keccak256(leaf))
	return walkFixture{path: path, root: root, nodes: [][]byte{leaf}, balance: balance}
}

func extBranchLeafFixture(t *testing.T, balance *big.Int) walkFixture {
	addr := common.HexToAddress("0x3333333333333333333333333333333333333333")
	path := addressNibbles(addr)
	leaf := mustRLP(t, []interface{}{hexPrefix(path[3:], true), fixtureAccount(t, balance)})
	children := make([][]byte, 17)
	children[path[2]] = crypto.Keccak256(leaf)
	branch := mustRLP(t, children)
	ext := mustRLP(t, []interface{}{hexPrefix(path[:2], false), crypto.Keccak256(branch)})
	var root [32]byte
	copy(root[:], crypto.Keccak256(ext))
	return walkFixture{path: path, root: root, nodes: [][]byte{ext, branch, leaf}, balance: balance}
}

func padNode(t *testing.T, raw []byte, capacity int) []uints.U8 {
	t.Helper()
	if len(raw) > capacity {
		t.Fatalf("node is %d bytes, capacity %d", len(raw), capacity)
	}
	out := make([]uints.U8, capacity)
	for i := range out {
		if i < len(raw) {
			out[i] = b(raw[i])
		} else {
			out[i] = b(0)
		}
	}
	return out
}
