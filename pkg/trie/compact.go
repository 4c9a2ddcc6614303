package trie

import "fmt"

// MaxPathNibbles is the full address path length: 64 nibbles of the 32-byte
// keccak(address).
const MaxPathNibbles = 64

// CompactPath is the decoded hex-prefix key of a short node. A node is a
// leaf or an extension, never both and never neither.
type CompactPath struct {
	IsLeaf  bool
	Nibbles [MaxPathNibbles]byte
	Len     int
}

// DecodeCompact decodes the hex-prefix path encoding of a short-node key.
// The first nibble carries the node kind and the parity of the remaining
// path; flag nibbles above 3 and nonzero padding are malformed.
func DecodeCompact(key []byte) (CompactPath, error) {
	if len(key) < 1 {
		return CompactPath{}, fmt.Errorf("%w: empty compact path", ErrMalformedEncoding)
	}
	if len(key) > MaxPathNibbles/2+1 {
		return CompactPath{}, fmt.Errorf("%w: compact path is %d bytes", ErrMalformedEncoding, len(key))
	}
	flags := key[0] >> 4
	if flags > 3 {
		return CompactPath{}, fmt.Errorf("%w: compact flag nibble %d", ErrMalformedEncoding, flags)
	}
	var cp CompactPath
	cp.IsLeaf = flags&2 != 0
	odd := flags&1 != 0

	if total := 2*(len(key)-1) + boolInt(odd); total > MaxPathNibbles {
		return CompactPath{}, fmt.Errorf("%w: %d path nibbles, max %d", ErrMalformedEncoding, total, MaxPathNibbles)
	}

	if odd {
		cp.Nibbles[0] = key[0] & 0x0f
		cp.Len = 1
	} else if key[0]&0x0f != 0 {
		return CompactPath{}, fmt.Errorf("%w: nonzero padding nibble", ErrMalformedEncoding)
	}
	for _, b := range key[1:] {
		cp.Nibbles[cp.Len] = b >> 4
		cp.Nibbles[cp.Len+1] = b & 0x0f
		cp.Len += 2
	}
	return cp, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

