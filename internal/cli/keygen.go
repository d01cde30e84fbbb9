package cli

import (
	"fmt"
	"io"

	"github.com/fountain/fountain-api/internal/vault"
	"github.com/spf13/cobra"
)

// NewKeygenCommand creates the keygen command.
func NewKeygenCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Print a fresh WALLET_ENCRYPTION_KEY",
		Long: `Generate a random 256-bit key for encrypting collection wallet secrets,
base64 encoded as WALLET_ENCRYPTION_KEY expects it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := vault.GenerateKey()
			if err != nil {
				return err
			}
			return writeResult(cmd.OutOrStdout(), rootOpts.Format, map[string]string{"key": key}, func(w io.Writer) {
				fmt.Fprintln(w, key)
			})
		},
	}
}
