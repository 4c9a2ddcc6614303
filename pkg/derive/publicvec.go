package derive

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/yourorg/veildrop/pkg/params"
)

// PublicVector is the fixed-order, fixed-width byte vector handed to the
// claim-verification collaborator. This is layout v2; the v1 layout (no note
// index, no PoW digest, block-hash snapshot model) is neither emitted nor
// accepted.
//
// Layout, one byte per slot, every multi-byte field big-endian:
//
//	[0]       version (0x02)
//	[1:9]     snapshot block number
//	[9:41]    state root
//	[41:49]   chain id
//	[49]      note index
//	[50:82]   claimed amount
//	[82:102]  recipient
//	[102:134] nullifier
//	[134:166] pow digest
type PublicVector struct {
	BlockNumber uint64
	Root        [32]byte
	ChainID     uint64
	NoteIndex   uint8
	Amount      *big.Int
	Recipient   common.Address
	Nullifier   [32]byte
	PowDigest   [32]byte
}

const (
	PublicVectorVersion = 0x02
	PublicVectorLen     = 166
)

func (v PublicVector) Encode(p params.Params) ([PublicVectorLen]byte, error) {
	var out [PublicVectorLen]byte
	out[0] = PublicVectorVersion
	binary.BigEndian.PutUint64(out[1:9], v.BlockNumber)
	copy(out[9:41], v.Root[:])
	binary.BigEndian.PutUint64(out[41:49], v.ChainID)
	if int(v.NoteIndex) >= p.MaxNotes {
		return out, fmt.Errorf("derive: public vector note index %d, capacity %d", v.NoteIndex, p.MaxNotes)
	}
	out[49] = v.NoteIndex
	if v.Amount == nil || v.Amount.Sign() < 0 || v.Amount.BitLen() > 256 {
		return out, fmt.Errorf("derive: public vector amount out of range")
	}
	v.Amount.FillBytes(out[50:82])
	copy(out[82:102], v.Recipient[:])
	copy(out[102:134], v.Nullifier[:])
	copy(out[134:166], v.PowDigest[:])
	return out, nil
}

// DecodePublicVector parses a v2 vector. Length, version, and note-index
// range are strict; there is no tolerance for truncated or extended vectors.
func DecodePublicVector(raw []byte, p params.Params) (PublicVector, error) {
	if len(raw) != PublicVectorLen {
		return PublicVector{}, fmt.Errorf("derive: public vector is %d bytes, want %d", len(raw), PublicVectorLen)
	}
	if raw[0] != PublicVectorVersion {
		return PublicVector{}, fmt.Errorf("derive: public vector version 0x%02x, want 0x%02x", raw[0], PublicVectorVersion)
	}
	if int(raw[49]) >= p.MaxNotes {
		return PublicVector{}, fmt.Errorf("derive: public vector note index %d, capacity %d", raw[49], p.MaxNotes)
	}
	var v PublicVector
	v.BlockNumber = binary.BigEndian.Uint64(raw[1:9])
	copy(v.Root[:], raw[9:41])
	v.ChainID = binary.BigEndian.Uint64(raw[41:49])
	v.NoteIndex = raw[49]
	v.Amount = new(big.Int).SetBytes(raw[50:82])
	copy(v.Recipient[:], raw[82:102])
	copy(v.Nullifier[:], raw[102:134])
	copy(v.PowDigest[:], raw[134:166])
	return v, nil
}
