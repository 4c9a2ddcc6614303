package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/consensys/gnark/backend/groth16"
	backendwitness "github.com/consensys/gnark/backend/witness"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/math/uints"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/yourorg/veildrop/circuits"
	"github.com/yourorg/veildrop/pkg/derive"
	"github.com/yourorg/veildrop/pkg/params"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	var proofPath, publicPath, vkPath, paramsPath string

	cmd := &cobra.Command{
		Use:   "verifier",
		Short: "Verify a Groth16 claim proof against its public vector",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := params.Load(paramsPath)
			if err != nil {
				return err
			}

			pBytes, err := os.ReadFile(proofPath)
			if err != nil {
				return err
			}
			vBytes, err := os.ReadFile(vkPath)
			if err != nil {
				return err
			}
			jBytes, err := os.ReadFile(publicPath)
			if err != nil {
				return err
			}

			proof := groth16.NewProof(circuits.Curve())
			if _, err := proof.ReadFrom(bytes.NewReader(pBytes)); err != nil {
				return fmt.Errorf("reading proof: %w", err)
			}
			vk := groth16.NewVerifyingKey(circuits.Curve())
			if _, err := vk.ReadFrom(bytes.NewReader(vBytes)); err != nil {
				return fmt.Errorf("reading verifying key: %w", err)
			}

			var pubFile struct {
				Vector hexutil.Bytes `json:"vector"`
			}
			if err := json.Unmarshal(jBytes, &pubFile); err != nil {
				return err
			}
			vec, err := derive.DecodePublicVector(pubFile.Vector, p)
			if err != nil {
				return err
			}

			pubWit, err := publicWitness(vec, p)
			if err != nil {
				return err
			}
			if err := groth16.Verify(proof, vk, pubWit); err != nil {
				return fmt.Errorf("verification failed: %w", err)
			}
			log.Info().
				Str("nullifier", fmt.Sprintf("%x", vec.Nullifier)).
				Str("recipient", vec.Recipient.Hex()).
				Msg("claim proof verified")
			return nil
		},
	}

	cmd.Flags().StringVar(&proofPath, "proof", "", "claim_proof.bin")
	cmd.Flags().StringVar(&publicPath, "public", "", "claim_public.json")
	cmd.Flags().StringVar(&vkPath, "vk", "", "claim_vk.bin")
	cmd.Flags().StringVar(&paramsPath, "params", "params.json", "Protocol parameters file")
	_ = cmd.MarkFlagRequired("proof")
	_ = cmd.MarkFlagRequired("public")
	_ = cmd.MarkFlagRequired("vk")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("verifier failed")
	}
}

// publicWitness rebuilds the circuit's public assignment from the decoded
// vector. The byte layout here and in witness.Assemble must stay in lockstep
// with the vector encoding.
func publicWitness(vec derive.PublicVector, p params.Params) (backendwitness.Witness, error) {
	raw, err := vec.Encode(p)
	if err != nil {
		return nil, err
	}

	a := circuits.New(p)
	for i := 0; i < 8; i++ {
		a.BlockNumber[i] = uints.NewU8(raw[1+i])
		a.ChainID[i] = uints.NewU8(raw[41+i])
	}
	for i := 0; i < 32; i++ {
		a.Root[i] = uints.NewU8(raw[9+i])
		a.Amount[i] = uints.NewU8(raw[50+i])
		a.Nullifier[i] = uints.NewU8(raw[102+i])
		a.PowDigest[i] = uints.NewU8(raw[134+i])
	}
	a.NoteIndex = uints.NewU8(raw[49])
	for i := 0; i < 20; i++ {
		a.Recipient[i] = uints.NewU8(raw[82+i])
	}

	return frontend.NewWitness(a, circuits.Curve().ScalarField(), frontend.PublicOnly())
}
