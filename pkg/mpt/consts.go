package mpt

const (
	// BranchItems is the item count of a branch node: 16 child slots plus
	// the value slot.
	BranchItems = 17

	// MaxPathNibbles is the full address path: 64 nibbles of keccak(address).
	MaxPathNibbles = 64

	// MaxEmbedBytes bounds an embedded (non-hashed) child reference. A node
	// whose encoding reaches 32 bytes is referenced by hash instead.
	MaxEmbedBytes = 32

	// MaxKeyBytes bounds the hex-prefix key of a short node: flag byte plus
	// 32 path bytes.
	MaxKeyBytes = 33

	// MaxAccountBytes bounds the encoded account record in a terminal leaf:
	// a 4-field list of nonce, balance, and two 32-byte commitments.
	MaxAccountBytes = 110

	// MaxBalanceBytes bounds the balance scalar, mirroring the native side.
	MaxBalanceBytes = 16

	// oversize is a payload-length sentinel that can never satisfy the
	// exact-consumption contract against any in-bounds node.
	oversize = 1 << 24
)
