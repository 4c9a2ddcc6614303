package witness

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Proof is the raw eth_getProof response for the target account. Only the
// AccountProof node bytes feed the verifier; the convenience fields are kept
// for cross-checking and diagnostics, never trusted.
type Proof struct {
	Address      string   `json:"address"`
	AccountProof []string `json:"accountProof"`
	Balance      string   `json:"balance"`
	Nonce        string   `json:"nonce"`
	StorageHash  string   `json:"storageHash"`
	CodeHash     string   `json:"codeHash"`
}

func FetchProof(
	ctx context.Context,
	cli *ethclient.Client,
	account common.Address,
	block uint64,
) (*Proof, error) {

	var p Proof
	err := cli.Client().CallContext(
		ctx, &p, "eth_getProof",
		account,
		[]string{}, // no storage slots: account inclusion only
		hexutil.Uint64(block),
	)
	return &p, err
}

func FetchStateRoot(ctx context.Context, cli *ethclient.Client, block uint64) (common.Hash, error) {
	hexNum := hexutil.Uint64(block)
	var hdr struct {
		StateRoot common.Hash `json:"stateRoot"`
	}
	if err := cli.Client().CallContext(ctx, &hdr, "eth_getBlockByNumber", hexNum, false); err != nil {
		return common.Hash{}, err
	}
	return hdr.StateRoot, nil
}
