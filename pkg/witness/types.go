package witness

import (
	backendwitness "github.com/consensys/gnark/backend/witness"

	"github.com/yourorg/veildrop/circuits"
	"github.com/yourorg/veildrop/pkg/derive"
)

// Bundle is a fully assembled proving input: the gnark witness, the public
// vector handed to the claim-verification collaborator, and a blueprint
// sized for compilation.
type Bundle struct {
	Full      backendwitness.Witness
	Public    derive.PublicVector
	Blueprint *circuits.ClaimCircuit
}
