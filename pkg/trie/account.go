package trie

import (
	"fmt"
	"math/big"
)

// maxBalanceBytes bounds the encoded balance scalar. Ethereum balances fit in
// 16 bytes; keeping the bound here keeps the circuit-side comparison in-field.
const maxBalanceBytes = 16

// Account is the decoded 4-field account record found in a terminal leaf.
type Account struct {
	Nonce          *big.Int
	Balance        *big.Int
	StorageRoot    [32]byte
	CodeCommitment [32]byte
}

// DecodeAccount parses an encoded account record:
// list(nonce, balance, storageRoot₃₂, codeHash₃₂). The two commitments must
// be exactly 32 bytes; anything else fails the decode.
func DecodeAccount(raw []byte) (Account, error) {
	list, err := DecodeHeader(raw, len(raw))
	if err != nil {
		return Account{}, err
	}
	if !list.IsList {
		return Account{}, fmt.Errorf("%w: account record is not a list", ErrStructuralMismatch)
	}
	items, _, err := listItems(raw, list, 4)
	if err != nil {
		return Account{}, err
	}
	if len(items) != 4 {
		return Account{}, fmt.Errorf("%w: account record has %d fields, want 4", ErrStructuralMismatch, len(items))
	}
	for i, it := range items {
		if it.IsList {
			return Account{}, fmt.Errorf("%w: account field %d is a list", ErrStructuralMismatch, i)
		}
	}
	if items[0].PayloadLen > 32 {
		return Account{}, fmt.Errorf("%w: nonce is %d bytes", ErrMalformedEncoding, items[0].PayloadLen)
	}
	if items[1].PayloadLen > maxBalanceBytes {
		return Account{}, fmt.Errorf("%w: balance is %d bytes, max %d", ErrMalformedEncoding, items[1].PayloadLen, maxBalanceBytes)
	}
	if items[2].PayloadLen != 32 {
		return Account{}, fmt.Errorf("%w: storage commitment is %d bytes, want 32", ErrMalformedEncoding, items[2].PayloadLen)
	}
	if items[3].PayloadLen != 32 {
		return Account{}, fmt.Errorf("%w: code commitment is %d bytes, want 32", ErrMalformedEncoding, items[3].PayloadLen)
	}

	var acct Account
	acct.Nonce = ReadUint(raw[items[0].PayloadStart:], items[0].PayloadLen)
	acct.Balance = ReadUint(raw[items[1].PayloadStart:], items[1].PayloadLen)
	copy(acct.StorageRoot[:], raw[items[2].PayloadStart:items[2].end()])
	copy(acct.CodeCommitment[:], raw[items[3].PayloadStart:items[3].end()])
	return acct, nil
}
