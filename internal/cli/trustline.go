package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fountain/fountain-api/internal/app"
	"github.com/fountain/fountain-api/internal/client/xrpl"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

const defaultTrustLimit = "1000000000"

// NewTrustlineCommand creates the trustline command.
func NewTrustlineCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		currency string
		limit    string
	)

	cmd := &cobra.Command{
		Use:   "trustline",
		Short: "Open a trust line from a holder wallet to the issuer",
		Long: `Submit a TrustSet from the holder wallet whose seed is read from
HOLDER_SEED, so the issuer can deliver the given currency to it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			seed := os.Getenv("HOLDER_SEED")
			if seed == "" {
				return errors.New("HOLDER_SEED is required")
			}
			if currency == "" {
				return errors.New("--currency is required")
			}
			amount, err := decimal.NewFromString(limit)
			if err != nil || !amount.IsPositive() {
				return fmt.Errorf("invalid --limit %q", limit)
			}
			holder, err := xrpl.WalletFromSeed(seed)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			cfg, err := rootOpts.LoadConfig(ctx)
			if err != nil {
				return err
			}
			cfg.EnableSubscriber = false
			gateway, _, err := app.BuildGateway(cfg)
			if err != nil {
				return err
			}

			res, err := gateway.SubmitTrustSet(ctx, holder, currency, amount)
			if err != nil {
				return err
			}
			return writeResult(cmd.OutOrStdout(), rootOpts.Format, res, func(w io.Writer) {
				line(w, "Holder", holder.Address)
				line(w, "Issuer", gateway.IssuerAddress())
				line(w, "Currency", currency)
				line(w, "Tx", res.TxID)
			})
		},
	}

	cmd.Flags().StringVar(&currency, "currency", "", "currency code of the stablecoin")
	cmd.Flags().StringVar(&limit, "limit", defaultTrustLimit, "trust line limit")
	return cmd
}
