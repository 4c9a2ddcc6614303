package main

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/yourorg/veildrop/circuits"
	"github.com/yourorg/veildrop/pkg/derive"
	"github.com/yourorg/veildrop/pkg/params"
	"github.com/yourorg/veildrop/pkg/witness"
)

// publicOutput is the on-disk form of the claim statement.
type publicOutput struct {
	Vector hexutil.Bytes `json:"vector"`
}

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	var (
		rpcURL     string
		blockNum   uint64
		bundlePath string
		noteIndex  uint8
		paramsPath string
		outDir     string
	)

	rootCmd := &cobra.Command{
		Use:   "prover",
		Short: "Generate a Groth16 claim proof for one note of a deposit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			start := time.Now()

			if rpcURL == "" {
				_ = godotenv.Load()
				rpcURL = os.Getenv("ALCHEMY_URL")
				if rpcURL == "" {
					return fmt.Errorf("--rpc flag or ALCHEMY_URL env var is required")
				}
			}

			p, err := params.Load(paramsPath)
			if err != nil {
				return err
			}

			raw, err := os.ReadFile(bundlePath)
			if err != nil {
				return err
			}
			dep, err := derive.ParseBundle(raw)
			if err != nil {
				return err
			}

			// -----------------------------------------------------------------
			// Witness bundle (fetch + native pre-verification)
			// -----------------------------------------------------------------
			bundle, err := witness.Build(cmd.Context(), rpcURL, blockNum, dep, noteIndex, p)
			if err != nil {
				return err
			}
			log.Info().Uint64("block", blockNum).Uint8("noteIndex", noteIndex).
				Msg("witness assembled, account proof verified natively")

			// -----------------------------------------------------------------
			// Circuit compile
			// -----------------------------------------------------------------
			cs, err := frontend.Compile(
				circuits.Curve().ScalarField(),
				r1cs.NewBuilder,
				bundle.Blueprint,
			)
			if err != nil {
				return err
			}

			// -----------------------------------------------------------------
			// Trusted setup (cached)
			// -----------------------------------------------------------------
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}
			pkPath := filepath.Join(outDir, "claim_pk.bin")
			vkPath := filepath.Join(outDir, "claim_vk.bin")

			pk := groth16.NewProvingKey(circuits.Curve())
			vk := groth16.NewVerifyingKey(circuits.Curve())

			if pkBytes, err := os.ReadFile(pkPath); err == nil {
				if _, err := pk.ReadFrom(bytes.NewReader(pkBytes)); err != nil {
					return fmt.Errorf("reading cached proving key: %w", err)
				}
				vkBytes, err := os.ReadFile(vkPath)
				if err != nil {
					return err
				}
				if _, err := vk.ReadFrom(bytes.NewReader(vkBytes)); err != nil {
					return fmt.Errorf("reading cached verifying key: %w", err)
				}
			} else {
				pk, vk, err = groth16.Setup(cs)
				if err != nil {
					return err
				}
				var b bytes.Buffer
				if _, err := pk.WriteTo(&b); err != nil {
					return err
				}
				if err := os.WriteFile(pkPath, b.Bytes(), 0o644); err != nil {
					return err
				}
				b.Reset()
				if _, err := vk.WriteTo(&b); err != nil {
					return err
				}
				if err := os.WriteFile(vkPath, b.Bytes(), 0o644); err != nil {
					return err
				}
			}

			// -----------------------------------------------------------------
			// Prove
			// -----------------------------------------------------------------
			proof, err := groth16.Prove(cs, pk, bundle.Full)
			if err != nil {
				return err
			}

			// -----------------------------------------------------------------
			// Outputs
			// -----------------------------------------------------------------
			vec, err := bundle.Public.Encode(p)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if _, err := proof.WriteTo(&buf); err != nil {
				return err
			}
			if err := os.WriteFile(filepath.Join(outDir, "claim_proof.bin"), buf.Bytes(), 0o644); err != nil {
				return err
			}
			jsonBytes, err := json.MarshalIndent(publicOutput{Vector: vec[:]}, "", "  ")
			if err != nil {
				return err
			}
			if err := os.WriteFile(filepath.Join(outDir, "claim_public.json"), jsonBytes, 0o644); err != nil {
				return err
			}

			csBuf := new(bytes.Buffer)
			if _, err := cs.WriteTo(csBuf); err != nil {
				return err
			}
			sum := sha256.Sum256(csBuf.Bytes())
			log.Info().
				Str("circuitHash", fmt.Sprintf("%x", sum[:4])).
				Str("nullifier", fmt.Sprintf("%x", bundle.Public.Nullifier)).
				Dur("elapsed", time.Since(start)).
				Msg("proof done")
			return nil
		},
	}

	rootCmd.Flags().StringVar(&rpcURL, "rpc", "", "Archive RPC URL")
	rootCmd.Flags().Uint64Var(&blockNum, "block", 0, "Snapshot block number")
	rootCmd.Flags().StringVar(&bundlePath, "bundle", "deposit.json", "Deposit bundle path")
	rootCmd.Flags().Uint8Var(&noteIndex, "note-index", 0, "Note index to claim")
	rootCmd.Flags().StringVar(&paramsPath, "params", "params.json", "Protocol parameters file")
	rootCmd.Flags().StringVar(&outDir, "outdir", "./", "Output directory")

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("prover failed")
	}
}
