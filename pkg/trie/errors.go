package trie

import "errors"

// Every verification failure maps to exactly one of these classes. All are
// terminal: a proof that trips any of them is rejected outright, and whether
// to fetch a fresher proof is the caller's call.
var (
	ErrMalformedEncoding   = errors.New("trie: malformed length-prefix encoding")
	ErrStructuralMismatch  = errors.New("trie: node structure mismatch")
	ErrPathMismatch        = errors.New("trie: path nibble mismatch")
	ErrHashMismatch        = errors.New("trie: child hash mismatch")
	ErrInsufficientBalance = errors.New("trie: insufficient balance")
	ErrDepthExceeded       = errors.New("trie: proof depth exceeds limit")
	ErrNodeTooLarge        = errors.New("trie: node size exceeds limit")
)
