package trie

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
)

// Fixture proofs are built from first principles with geth's rlp encoder, so
// the verifier under test never checks bytes produced by its own code.

// compactEncode packs a nibble path and the leaf flag into hex-prefix form.
func compactEncode(nibbles []byte, isLeaf bool) []byte {
	flags := byte(0)
	if isLeaf {
		flags |= 2
	}
	odd := len(nibbles) % 2
	if odd == 1 {
		flags |= 1
	}
	out := make([]byte, 0, len(nibbles)/2+1)
	if odd == 1 {
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

func accountRLP(t *testing.T, nonce uint64, balance *big.Int) []byte {
	t.Helper()
	raw, err := rlp.EncodeToBytes([]interface{}{
		nonce,
		balance,
		make([]byte, 32), // empty storage root
		crypto.Keccak256([]byte{}),
	})
	if err != nil {
		t.Fatalf("encoding account: %v", err)
	}
	return raw
}

func leafNode(t *testing.T, pathNibbles []byte, value []byte) []byte {
	t.Helper()
	raw, err := rlp.EncodeToBytes([]interface{}{compactEncode(pathNibbles, true), value})
	if err != nil {
		t.Fatalf("encoding leaf: %v", err)
	}
	return raw
}

func extensionNode(t *testing.T, pathNibbles []byte, child []byte) []byte {
	t.Helper()
	raw, err := rlp.EncodeToBytes([]interface{}{compactEncode(pathNibbles, false), child})
	if err != nil {
		t.Fatalf("encoding extension: %v", err)
	}
	return raw
}

// branchNode builds a 17-item branch with a single populated child slot.
func branchNode(t *testing.T, slot int, child []byte) []byte {
	t.Helper()
	items := make([][]byte, 17)
	items[slot] = child
	raw, err := rlp.EncodeToBytes(items)
	if err != nil {
		t.Fatalf("encoding branch: %v", err)
	}
	return raw
}

// proofFixture is a self-consistent account proof for one address.
type proofFixture struct {
	address common.Address
	root    [32]byte
	nodes   [][]byte
	balance *big.Int
}

func pathOf(address common.Address) [64]byte {
	return AddressPath(address)
}

// depth1Fixture: a single leaf carrying the full 64-nibble path.
func depth1Fixture(t *testing.T, balance *big.Int) proofFixture {
	addr := common.HexToAddress("0x1111111111111111111111111111111111111111")
	path := pathOf(addr)
	leaf := leafNode(t, path[:], accountRLP(t, 0, balance))
	return proofFixture{
		address: addr,
		root:    crypto.Keccak256Hash(leaf),
		nodes:   [][]byte{leaf},
		balance: balance,
	}
}

// depth2Fixture: branch at the root, leaf below it.
func depth2Fixture(t *testing.T, balance *big.Int) proofFixture {
	addr := common.HexToAddress("0x2222222222222222222222222222222222222222")
	path := pathOf(addr)
	leaf := leafNode(t, path[1:], accountRLP(t, 1, balance))
	branch := branchNode(t, int(path[0]), crypto.Keccak256(leaf))
	return proofFixture{
		address: addr,
		root:    crypto.Keccak256Hash(branch),
		nodes:   [][]byte{branch, leaf},
		balance: balance,
	}
}

// depth3Fixture: extension, then branch, then leaf.
func depth3Fixture(t *testing.T, balance *big.Int) proofFixture {
	addr := common.HexToAddress("0x3333333333333333333333333333333333333333")
	path := pathOf(addr)
	leaf := leafNode(t, path[3:], accountRLP(t, 7, balance))
	branch := branchNode(t, int(path[2]), crypto.Keccak256(leaf))
	ext := extensionNode(t, path[:2], crypto.Keccak256(branch))
	return proofFixture{
		address: addr,
		root:    crypto.Keccak256Hash(ext),
		nodes:   [][]byte{ext, branch, leaf},
		balance: balance,
	}
}
