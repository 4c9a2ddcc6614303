// Package derive implements the deterministic claim derivations: the notes
// commitment, the unspendable target address, per-note nullifiers, and the
// anti-spam proof-of-work digest. All functions are pure and total over
// fixed-size byte inputs; the circuit in circuits/ recomputes every one of
// them constraint-for-constraint, so any change here must be mirrored there.
package derive

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/yourorg/veildrop/pkg/params"
)

// Domain tags, one per derivation. 32 bytes, ASCII right-padded with NUL, so
// no function's output can be replayed as another function's input.
var (
	TagRecipient = tag("veildrop.v2.recipient")
	TagAddress   = tag("veildrop.v2.address")
	TagNullifier = tag("veildrop.v2.nullifier")
)

func tag(s string) (t [32]byte) {
	if len(s) > 32 {
		panic("derive: domain tag longer than 32 bytes")
	}
	copy(t[:], s)
	return t
}

// NoteSlotBytes is the fixed commitment width of one note slot:
// 32-byte big-endian amount followed by the 32-byte recipient commitment.
const NoteSlotBytes = 64

// RecipientCommitment binds a recipient address under its domain tag:
// keccak256(TagRecipient ‖ pad32(address)).
func RecipientCommitment(recipient common.Address) [32]byte {
	var buf [64]byte
	copy(buf[:32], TagRecipient[:])
	copy(buf[44:64], recipient[:]) // left-padded to 32 bytes
	return crypto.Keccak256Hash(buf[:])
}

// NotesCommitment hashes the fixed-capacity slot encoding of the note set:
// maxNotes slots of (amount₃₂ ‖ recipientCommitment₃₂), unused slots zero.
// The note set must already be validated; amounts wider than 32 bytes panic.
func NotesCommitment(ns NoteSet, maxNotes int) [32]byte {
	buf := make([]byte, maxNotes*NoteSlotBytes)
	for i, n := range ns {
		slot := buf[i*NoteSlotBytes:]
		n.Amount.FillBytes(slot[:32])
		rc := RecipientCommitment(n.Recipient)
		copy(slot[32:64], rc[:])
	}
	return crypto.Keccak256Hash(buf)
}

// TargetAddress derives the unspendable funding address: the low 20 bytes of
// keccak256(TagAddress ‖ chainId₃₂ ‖ secret ‖ notesCommitment). There is no
// signing key for it; only the claim proof can move the funds.
func TargetAddress(secret Secret, chainID uint64, notesCommitment [32]byte) common.Address {
	var buf [128]byte
	copy(buf[:32], TagAddress[:])
	binary.BigEndian.PutUint64(buf[56:64], chainID)
	copy(buf[64:96], secret[:])
	copy(buf[96:128], notesCommitment[:])
	h := crypto.Keccak256(buf[:])
	return common.BytesToAddress(h[12:32])
}

// Nullifier derives the replay tag for one note index:
// keccak256(TagNullifier ‖ chainId₃₂ ‖ secret ‖ noteIndex₃₂). Distinct
// indices of the same set yield distinct nullifiers; the on-chain registry
// consumes each at most once.
func Nullifier(secret Secret, chainID uint64, noteIndex uint8) [32]byte {
	var buf [128]byte
	copy(buf[:32], TagNullifier[:])
	binary.BigEndian.PutUint64(buf[56:64], chainID)
	copy(buf[64:96], secret[:])
	buf[127] = noteIndex
	return crypto.Keccak256Hash(buf[:])
}

// Derived bundles every value the protocol computes from a deposit.
type Derived struct {
	NotesCommitment [32]byte
	TargetAddress   common.Address
	Nullifiers      [][32]byte
	PowDigest       [32]byte
}

// Derive runs the full derivation chain for a validated note set.
func Derive(secret Secret, chainID uint64, ns NoteSet, p params.Params) (Derived, error) {
	if err := ns.Validate(p); err != nil {
		return Derived{}, err
	}
	d := Derived{NotesCommitment: NotesCommitment(ns, p.MaxNotes)}
	d.TargetAddress = TargetAddress(secret, chainID, d.NotesCommitment)
	d.PowDigest = PowDigest(d.NotesCommitment, secret)
	d.Nullifiers = make([][32]byte, len(ns))
	for i := range ns {
		d.Nullifiers[i] = Nullifier(secret, chainID, uint8(i))
	}
	return d, nil
}
