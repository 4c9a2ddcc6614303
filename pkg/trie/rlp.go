// Package trie is the native half of the account-proof verifier: RLP header
// decoding, hex-prefix path decoding, and the radix-16 trie walk, written as
// ordinary procedural Go. pkg/mpt is the constraint-producing half; the two
// are kept behaviorally identical and cross-checked with the same vectors.
package trie

import (
	"fmt"
	"math/big"
)

// maxLengthBytes caps the length-of-length of long-form items. Four bytes
// address anything up to 4 GiB; the node size limit cuts in far earlier.
const maxLengthBytes = 4

// Header is the decoded shape of one RLP item.
type Header struct {
	PayloadStart int
	PayloadLen   int
	IsList       bool
}

func (h Header) end() int { return h.PayloadStart + h.PayloadLen }

// decodeHeaderAt reads the item header starting at pos. limit is the first
// byte past the enclosing payload; the item must fit inside it entirely.
// Offsets in the returned Header are absolute within buf.
func decodeHeaderAt(buf []byte, pos, limit int) (Header, error) {
	if pos < 0 || pos >= limit || limit > len(buf) {
		return Header{}, fmt.Errorf("%w: item at offset %d past end %d", ErrMalformedEncoding, pos, limit)
	}
	b0 := buf[pos]
	switch {
	case b0 < 0x80: // single embedded byte, payload is the byte itself
		return Header{PayloadStart: pos, PayloadLen: 1}, nil

	case b0 < 0xb8: // short string
		h := Header{PayloadStart: pos + 1, PayloadLen: int(b0 - 0x80)}
		if h.end() > limit {
			return Header{}, fmt.Errorf("%w: short string overruns payload", ErrMalformedEncoding)
		}
		return h, nil

	case b0 < 0xc0: // long string
		return decodeLong(buf, pos, limit, int(b0-0xb7), false)

	case b0 < 0xf8: // short list
		h := Header{PayloadStart: pos + 1, PayloadLen: int(b0 - 0xc0), IsList: true}
		if h.end() > limit {
			return Header{}, fmt.Errorf("%w: short list overruns payload", ErrMalformedEncoding)
		}
		return h, nil

	default: // long list
		return decodeLong(buf, pos, limit, int(b0-0xf7), true)
	}
}

func decodeLong(buf []byte, pos, limit, lenBytes int, isList bool) (Header, error) {
	if lenBytes > maxLengthBytes {
		return Header{}, fmt.Errorf("%w: %d length bytes, max %d", ErrMalformedEncoding, lenBytes, maxLengthBytes)
	}
	if pos+1+lenBytes > limit {
		return Header{}, fmt.Errorf("%w: truncated length bytes", ErrMalformedEncoding)
	}
	if buf[pos+1] == 0 {
		return Header{}, fmt.Errorf("%w: leading zero in length", ErrMalformedEncoding)
	}
	plen := 0
	for i := 0; i < lenBytes; i++ {
		plen = plen<<8 | int(buf[pos+1+i])
	}
	if plen < 56 {
		return Header{}, fmt.Errorf("%w: long form used for %d-byte payload", ErrMalformedEncoding, plen)
	}
	h := Header{PayloadStart: pos + 1 + lenBytes, PayloadLen: plen, IsList: isList}
	if h.end() > limit {
		return Header{}, fmt.Errorf("%w: long item overruns payload", ErrMalformedEncoding)
	}
	return h, nil
}

// DecodeHeader decodes the header of a complete item occupying buf[:total].
// The item must consume exactly total bytes: shortfall and overrun are both
// ErrMalformedEncoding. There is no partial or lenient mode.
func DecodeHeader(buf []byte, total int) (Header, error) {
	if total < 1 || total > len(buf) {
		return Header{}, fmt.Errorf("%w: declared length %d outside buffer", ErrMalformedEncoding, total)
	}
	h, err := decodeHeaderAt(buf, 0, total)
	if err != nil {
		return Header{}, err
	}
	if h.end() != total {
		return Header{}, fmt.Errorf("%w: item spans %d bytes, declared %d", ErrMalformedEncoding, h.end(), total)
	}
	return h, nil
}

// ReadUint interprets buf[:length] as a big-endian unsigned integer. Bytes at
// or beyond length contribute nothing, so a fixed-capacity buffer can carry a
// shorter scalar safely.
func ReadUint(buf []byte, length int) *big.Int {
	if length > len(buf) {
		length = len(buf)
	}
	if length < 0 {
		length = 0
	}
	return new(big.Int).SetBytes(buf[:length])
}

// listItems walks the payload of a list header and returns the item headers,
// in order, plus the start offset of each item's own header bytes (needed for
// embedded-child comparison, where the reference is the whole item encoding).
// The items must tile the payload exactly and number at most maxItems.
func listItems(buf []byte, list Header, maxItems int) (items []Header, headerStarts []int, err error) {
	pos := list.PayloadStart
	end := list.end()
	for pos < end {
		if len(items) == maxItems {
			return nil, nil, fmt.Errorf("%w: more than %d list items", ErrStructuralMismatch, maxItems)
		}
		h, err := decodeHeaderAt(buf, pos, end)
		if err != nil {
			return nil, nil, err
		}
		items = append(items, h)
		headerStarts = append(headerStarts, pos)
		pos = h.end()
	}
	return items, headerStarts, nil
}
