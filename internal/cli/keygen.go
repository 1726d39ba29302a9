package cli

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"strconv"

	"github.com/spf13/cobra"
)

const keySymbols = "ABCDEFGHIJKLMNOPQRSTUVWXYZ@"

// GenerateKey returns n symbols drawn uniformly from 'A'..'Z' and '@'
func GenerateKey(r io.Reader, n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("key length must be positive, got %d", n)
	}
	max := big.NewInt(int64(len(keySymbols)))
	key := make([]byte, n)
	for i := range key {
		idx, err := rand.Int(r, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate key: %w", err)
		}
		key[i] = keySymbols[idx.Int64()]
	}
	return string(key), nil
}

// NewKeygenCommand prints a random key of the requested length
func NewKeygenCommand() *cobra.Command {
	return &cobra.Command{
		Use:           "keygen keylength",
		Short:         "Generate a random key for otp_enc and otp_dec",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  false,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			n, err := strconv.Atoi(args[0])
			if err != nil || n <= 0 {
				return fmt.Errorf("please enter a valid number of characters: %q", args[0])
			}
			key, err := GenerateKey(rand.Reader, n)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), key)
			return err
		},
	}
}
