package derive

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/veildrop/pkg/params"
)

func testNoteSet() NoteSet {
	return NoteSet{
		{Recipient: common.HexToAddress("0x1111111111111111111111111111111111111111"), Amount: big.NewInt(1)},
	}
}

func testSecret(b byte) Secret {
	var s Secret
	for i := range s {
		s[i] = b
	}
	return s
}

// The commitment primitive must be legacy Keccak-256, pinned by the published
// vectors for the empty string and "hello".
func TestKeccakConformance(t *testing.T) {
	require.Equal(t,
		"c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470",
		common.Bytes2Hex(crypto.Keccak256([]byte{})))
	require.Equal(t,
		"1c8aff950685c2ed4bc3174f3472287b56d9517b9c948127319a09a7a36deac8",
		common.Bytes2Hex(crypto.Keccak256([]byte("hello"))))
}

func TestDomainTagsAreDistinct(t *testing.T) {
	require.NotEqual(t, TagRecipient, TagAddress)
	require.NotEqual(t, TagRecipient, TagNullifier)
	require.NotEqual(t, TagAddress, TagNullifier)
}

func TestDerivationVectors(t *testing.T) {
	p := params.Default()
	ns := testNoteSet()
	secret := testSecret(0x01)

	nc := NotesCommitment(ns, p.MaxNotes)
	require.Equal(t,
		"68bf60c622c61f263bb157d1c6464f2bbec3f5964ff337de4e64675c083deade",
		common.Bytes2Hex(nc[:]))

	rc := RecipientCommitment(ns[0].Recipient)
	require.Equal(t,
		"b30509a5d5f2ba043059702e922d40a9ee091d4223d26a0c52c06d3a1b09b723",
		common.Bytes2Hex(rc[:]))

	addr := TargetAddress(secret, 1, nc)
	require.Equal(t, "0xe88E34Ee9193af74271447D4991b758459B432E6", addr.Hex())

	null := Nullifier(secret, 1, 0)
	require.Equal(t,
		"6b2de097e77ff12044bd8f49de26e008dea17869a2bf9c43c9185b1fc4e05efb",
		common.Bytes2Hex(null[:]))
}

func TestDerivationIsDeterministic(t *testing.T) {
	p := params.Default()
	ns := testNoteSet()
	secret := testSecret(0x42)

	d1, err := Derive(secret, 1, ns, p)
	require.NoError(t, err)
	d2, err := Derive(secret, 1, ns, p)
	require.NoError(t, err)
	require.Equal(t, d1, d2)
}

func TestTargetAddressDependsOnChainID(t *testing.T) {
	nc := NotesCommitment(testNoteSet(), params.Default().MaxNotes)
	secret := testSecret(0x42)
	require.NotEqual(t, TargetAddress(secret, 1, nc), TargetAddress(secret, 5, nc))
}

func TestNullifierDependsOnIndex(t *testing.T) {
	secret := testSecret(0x42)
	seen := map[[32]byte]bool{}
	for i := uint8(0); i < 5; i++ {
		n := Nullifier(secret, 1, i)
		require.False(t, seen[n], "nullifier collision at index %d", i)
		seen[n] = true
	}
}

func TestNotesCommitmentDependsOnOrder(t *testing.T) {
	p := params.Default()
	a := Note{Recipient: common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"), Amount: big.NewInt(2)}
	b := Note{Recipient: common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"), Amount: big.NewInt(3)}
	require.NotEqual(t,
		NotesCommitment(NoteSet{a, b}, p.MaxNotes),
		NotesCommitment(NoteSet{b, a}, p.MaxNotes))
}

func TestNoteSetValidation(t *testing.T) {
	p := params.Default()

	require.Error(t, NoteSet{}.Validate(p))

	toMany := make(NoteSet, p.MaxNotes+1)
	for i := range toMany {
		toMany[i] = Note{Recipient: common.Address{1}, Amount: big.NewInt(1)}
	}
	require.Error(t, toMany.Validate(p))

	zero := NoteSet{{Recipient: common.Address{1}, Amount: big.NewInt(0)}}
	require.Error(t, zero.Validate(p))

	cap, err := p.AggregateCap()
	require.NoError(t, err)
	over := NoteSet{{Recipient: common.Address{1}, Amount: new(big.Int).Add(cap, big.NewInt(1))}}
	require.Error(t, over.Validate(p))

	atCap := NoteSet{{Recipient: common.Address{1}, Amount: cap}}
	require.NoError(t, atCap.Validate(p))
}
