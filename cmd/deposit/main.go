package main

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/yourorg/veildrop/pkg/derive"
	"github.com/yourorg/veildrop/pkg/params"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	var (
		chainID    uint64
		recipients []string
		amounts    []string
		labels     []string
		paramsPath string
		outPath    string
	)

	cmd := &cobra.Command{
		Use:   "deposit",
		Short: "Mine a PoW-valid secret and export the deposit bundle",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := params.Load(paramsPath)
			if err != nil {
				return err
			}
			if len(recipients) == 0 || len(recipients) != len(amounts) {
				return fmt.Errorf("need matching --recipient/--amount pairs")
			}

			ns := make(derive.NoteSet, len(recipients))
			for i := range recipients {
				amt, ok := new(big.Int).SetString(amounts[i], 10)
				if !ok {
					return fmt.Errorf("bad amount %q", amounts[i])
				}
				ns[i] = derive.Note{
					Recipient: common.HexToAddress(recipients[i]),
					Amount:    amt,
				}
				if i < len(labels) {
					ns[i].Label = labels[i]
				}
			}
			if err := ns.Validate(p); err != nil {
				return err
			}

			var seed derive.Secret
			if _, err := rand.Read(seed[:]); err != nil {
				return err
			}
			nc := derive.NotesCommitment(ns, p.MaxNotes)
			secret, attempts, err := derive.FindValidSecret(seed, nc, p.PowBits, p.MaxSecretAttempts)
			if err != nil {
				return err
			}
			log.Info().Int("attempts", attempts).Int("bits", p.PowBits).Msg("secret mined")

			bundle, err := derive.NewBundle(secret, chainID, ns, p)
			if err != nil {
				return err
			}
			raw, err := bundle.Encode()
			if err != nil {
				return err
			}
			if err := os.WriteFile(outPath, raw, 0o600); err != nil {
				return err
			}

			log.Info().
				Str("targetAddress", bundle.TargetAddress.Hex()).
				Str("bundle", outPath).
				Msg("deposit ready: fund the target address, keep the bundle private")
			return nil
		},
	}

	cmd.Flags().Uint64Var(&chainID, "chain-id", 1, "Chain identifier")
	cmd.Flags().StringArrayVar(&recipients, "recipient", nil, "Note recipient address (repeatable)")
	cmd.Flags().StringArrayVar(&amounts, "amount", nil, "Note amount in wei, decimal (repeatable)")
	cmd.Flags().StringArrayVar(&labels, "label", nil, "Optional note label (repeatable)")
	cmd.Flags().StringVar(&paramsPath, "params", "params.json", "Protocol parameters file")
	cmd.Flags().StringVar(&outPath, "out", "deposit.json", "Bundle output path")

	if err := cmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("deposit failed")
	}
}
