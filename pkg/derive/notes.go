package derive

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/yourorg/veildrop/pkg/params"
)

// Secret is the depositor's private entropy. Everything else in a claim is
// derived from it; losing it makes the deposit unrecoverable.
type Secret [32]byte

// Note is one payout of a deposit. The label is operator bookkeeping and is
// excluded from every derivation.
type Note struct {
	Recipient common.Address
	Amount    *big.Int
	Label     string
}

// NoteSet is an ordered set of 1..MaxNotes notes. Order is part of the
// commitment: reordering yields a different NotesCommitment.
type NoteSet []Note

// Validate checks the note-set invariants against the configured limits.
func (ns NoteSet) Validate(p params.Params) error {
	if len(ns) == 0 {
		return fmt.Errorf("derive: note set is empty")
	}
	if len(ns) > p.MaxNotes {
		return fmt.Errorf("derive: note set has %d notes, max is %d", len(ns), p.MaxNotes)
	}
	cap, err := p.AggregateCap()
	if err != nil {
		return err
	}
	total := new(big.Int)
	for i, n := range ns {
		if n.Amount == nil || n.Amount.Sign() <= 0 {
			return fmt.Errorf("derive: note %d has non-positive amount", i)
		}
		total.Add(total, n.Amount)
	}
	if total.Cmp(cap) > 0 {
		return fmt.Errorf("derive: aggregate amount %s exceeds cap %s", total, cap)
	}
	return nil
}

// Aggregate returns the sum of all note amounts. This is the balance the
// target address must prove it held.
func (ns NoteSet) Aggregate() *big.Int {
	total := new(big.Int)
	for _, n := range ns {
		if n.Amount != nil {
			total.Add(total, n.Amount)
		}
	}
	return total
}
