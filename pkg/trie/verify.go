package trie

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/yourorg/veildrop/pkg/params"
)

const branchItems = 17

// AddressPath expands keccak256(address) into its 64-nibble trie path.
func AddressPath(address common.Address) [MaxPathNibbles]byte {
	h := crypto.Keccak256Hash(address[:])
	var path [MaxPathNibbles]byte
	for i, b := range h {
		path[2*i] = b >> 4
		path[2*i+1] = b & 0x0f
	}
	return path
}

// VerifyAccount walks an account proof root-to-leaf against the 64-nibble
// path of address, checks every structural and hash link, decodes the
// terminal account record, and requires balance >= required. Every input
// byte is untrusted; the only trusted value is root. Returns the proven
// balance on success.
//
// Limits are enforced before any parsing: an oversized proof never reaches
// the decoder.
func VerifyAccount(nodes [][]byte, root [32]byte, address common.Address, required *big.Int, p params.Params) (*big.Int, error) {
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: empty proof", ErrMalformedEncoding)
	}
	if len(nodes) > p.MaxProofDepth {
		return nil, fmt.Errorf("%w: %d layers, max %d", ErrDepthExceeded, len(nodes), p.MaxProofDepth)
	}
	for i, n := range nodes {
		if len(n) > p.MaxNodeBytes {
			return nil, fmt.Errorf("%w: layer %d is %d bytes, max %d", ErrNodeTooLarge, i, len(n), p.MaxNodeBytes)
		}
		if len(n) == 0 {
			return nil, fmt.Errorf("%w: layer %d is empty", ErrMalformedEncoding, i)
		}
	}

	if got := crypto.Keccak256Hash(nodes[0]); got != common.Hash(root) {
		return nil, fmt.Errorf("%w: root commitment does not cover layer 0", ErrHashMismatch)
	}

	path := AddressPath(address)
	cursor := 0
	var balance *big.Int

	for lvl, node := range nodes {
		last := lvl == len(nodes)-1

		list, err := DecodeHeader(node, len(node))
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", lvl, err)
		}
		if !list.IsList {
			return nil, fmt.Errorf("%w: layer %d is a scalar, not a list", ErrStructuralMismatch, lvl)
		}
		items, starts, err := listItems(node, list, branchItems)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", lvl, err)
		}

		switch len(items) {
		case branchItems:
			if last {
				return nil, fmt.Errorf("%w: proof terminates at a branch", ErrStructuralMismatch)
			}
			if cursor >= MaxPathNibbles {
				return nil, fmt.Errorf("%w: branch at layer %d past end of path", ErrPathMismatch, lvl)
			}
			nib := int(path[cursor])
			cursor++
			if err := checkChild(node, items[nib], starts[nib], nodes[lvl+1]); err != nil {
				return nil, fmt.Errorf("layer %d, slot %d: %w", lvl, nib, err)
			}

		case 2:
			if items[0].IsList {
				return nil, fmt.Errorf("%w: layer %d key is a list", ErrStructuralMismatch, lvl)
			}
			cp, err := DecodeCompact(node[items[0].PayloadStart:items[0].end()])
			if err != nil {
				return nil, fmt.Errorf("layer %d: %w", lvl, err)
			}
			if cursor+cp.Len > MaxPathNibbles {
				return nil, fmt.Errorf("%w: layer %d overruns the address path", ErrPathMismatch, lvl)
			}
			for i := 0; i < cp.Len; i++ {
				if cp.Nibbles[i] != path[cursor+i] {
					return nil, fmt.Errorf("%w: layer %d diverges at nibble %d", ErrPathMismatch, lvl, cursor+i)
				}
			}
			cursor += cp.Len

			if cp.IsLeaf {
				if !last {
					return nil, fmt.Errorf("%w: leaf at layer %d is not terminal", ErrStructuralMismatch, lvl)
				}
				if cursor != MaxPathNibbles {
					return nil, fmt.Errorf("%w: leaf completes %d of %d nibbles", ErrPathMismatch, cursor, MaxPathNibbles)
				}
				if items[1].IsList {
					return nil, fmt.Errorf("%w: leaf value is a list", ErrStructuralMismatch)
				}
				acct, err := DecodeAccount(node[items[1].PayloadStart:items[1].end()])
				if err != nil {
					return nil, fmt.Errorf("leaf account: %w", err)
				}
				balance = acct.Balance
			} else {
				if last {
					return nil, fmt.Errorf("%w: proof terminates at an extension", ErrStructuralMismatch)
				}
				if cp.Len == 0 {
					return nil, fmt.Errorf("%w: extension with empty path", ErrMalformedEncoding)
				}
				if err := checkChild(node, items[1], starts[1], nodes[lvl+1]); err != nil {
					return nil, fmt.Errorf("layer %d: %w", lvl, err)
				}
			}

		default:
			return nil, fmt.Errorf("%w: layer %d has %d items, want 2 or 17", ErrStructuralMismatch, lvl, len(items))
		}
	}

	if balance == nil {
		return nil, fmt.Errorf("%w: no terminal leaf", ErrStructuralMismatch)
	}
	if required != nil && balance.Cmp(required) < 0 {
		return nil, fmt.Errorf("%w: proven %s, required %s", ErrInsufficientBalance, balance, required)
	}
	return balance, nil
}

// checkChild links a parent's child reference to the next layer. A 32-byte
// string reference is the keccak of the child's raw bytes; any other
// reference must be byte-identical to the child (small subtrees are embedded
// rather than hashed). Which rule applies follows from the reference length
// alone. An embedded reference of 32 bytes or more is structurally invalid:
// a node that large is always referenced by hash.
func checkChild(parent []byte, item Header, headerStart int, child []byte) error {
	if item.IsList {
		// embedded child: the reference is the whole sublist encoding
		embedded := parent[headerStart:item.end()]
		if len(embedded) >= 32 {
			return fmt.Errorf("%w: embedded child encoding is %d bytes", ErrStructuralMismatch, len(embedded))
		}
		if !bytes.Equal(embedded, child) {
			return fmt.Errorf("%w: embedded child differs from next layer", ErrHashMismatch)
		}
		return nil
	}
	ref := parent[item.PayloadStart:item.end()]
	if len(ref) == 32 {
		if !bytes.Equal(ref, crypto.Keccak256(child)) {
			return fmt.Errorf("%w: child reference does not hash next layer", ErrHashMismatch)
		}
		return nil
	}
	if len(ref) > 32 {
		return fmt.Errorf("%w: inline child reference is %d bytes", ErrStructuralMismatch, len(ref))
	}
	if !bytes.Equal(ref, child) {
		return fmt.Errorf("%w: inline child differs from next layer", ErrHashMismatch)
	}
	return nil
}
