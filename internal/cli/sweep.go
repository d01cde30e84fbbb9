package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// SweepResult reports one retirement sweep
type SweepResult struct {
	LedgerIndex uint32 `json:"ledger_index"`
	Retired     int    `json:"retired"`
}

// NewSweepCommand creates the sweep command.
func NewSweepCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Retire every eligible collection wallet once",
		Long: `Read the current validated ledger index and retire every collection
wallet old enough to be deleted, then re-drive stalled confirmations.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := offlineEngine(ctx, rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			index, err := a.Gateway.GetValidatedLedgerIndex(ctx)
			if err != nil {
				return fmt.Errorf("failed to read validated ledger index: %w", err)
			}
			retired, err := a.Lifecycle.Sweep(ctx, index)
			if err != nil {
				return err
			}
			a.Recon.RedriveStalled(ctx, index)

			result := SweepResult{LedgerIndex: index, Retired: retired}
			return writeResult(cmd.OutOrStdout(), rootOpts.Format, result, func(w io.Writer) {
				line(w, "Ledger index", result.LedgerIndex)
				line(w, "Wallets retired", result.Retired)
			})
		},
	}
}
