package derive

import (
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
)

// PowDigest is the anti-spam digest: keccak256(notesCommitment ‖ secret).
func PowDigest(notesCommitment [32]byte, secret Secret) [32]byte {
	var buf [64]byte
	copy(buf[:32], notesCommitment[:])
	copy(buf[32:], secret[:])
	return crypto.Keccak256Hash(buf[:])
}

// PowIsValid reports whether the digest's `bits` low-order (trailing) bits
// are all zero. The trailing-bit convention is the one the on-chain verifier
// enforces; older design notes describing leading bits are wrong.
func PowIsValid(digest [32]byte, bits int) bool {
	for i := 0; i < bits; i++ {
		byteIdx := 31 - i/8
		if digest[byteIdx]&(1<<(i%8)) != 0 {
			return false
		}
	}
	return true
}

// FindValidSecret walks a deterministic rehash chain from seed until it finds
// a secret whose PowDigest against notesCommitment passes the trailing-bit
// gate. Returns the secret and the number of attempts consumed. Fails with
// ErrSecretSearchExhausted after maxAttempts candidates.
func FindValidSecret(seed Secret, notesCommitment [32]byte, bits, maxAttempts int) (Secret, int, error) {
	candidate := seed
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if PowIsValid(PowDigest(notesCommitment, candidate), bits) {
			return candidate, attempt + 1, nil
		}
		candidate = Secret(crypto.Keccak256Hash(candidate[:]))
	}
	return Secret{}, maxAttempts, fmt.Errorf("%w after %d attempts (%d bits)",
		ErrSecretSearchExhausted, maxAttempts, bits)
}
