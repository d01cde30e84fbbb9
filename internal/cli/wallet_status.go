package cli

import (
	"fmt"
	"io"

	"github.com/fountain/fountain-api/internal/types/business"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// NewWalletStatusCommand creates the wallet-status command.
func NewWalletStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "wallet-status <operation-id>",
		Short: "Show the collection wallet of an operation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid operation id %q: %w", args[0], err)
			}

			ctx := cmd.Context()
			a, err := offlineEngine(ctx, rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			status, err := a.Stablecoins.GetCollectionWalletStatus(ctx, business.Caller{IsAdmin: true}, id)
			if err != nil {
				return err
			}
			return writeResult(cmd.OutOrStdout(), rootOpts.Format, status, func(w io.Writer) {
				printWalletStatus(w, status)
			})
		},
	}
}

func printWalletStatus(w io.Writer, s *business.WalletStatus) {
	line(w, "Operation", s.OperationID)
	line(w, "Address", s.Address)
	line(w, "Status", s.Status)
	if s.BalanceAvailable {
		line(w, "Balance", s.Balance.String()+" XRP")
	} else {
		line(w, "Balance", "unavailable")
	}
	line(w, "Required", s.RequiredAmount.String()+" XRP")
	line(w, "Accumulated", s.AccumulatedAmount.String()+" XRP")
	line(w, "Progress", s.ProgressPercent.String()+"%")
	line(w, "Created at ledger", s.CreationLedgerIndex)
	if s.CurrentLedgerIndex > 0 {
		line(w, "Current ledger", s.CurrentLedgerIndex)
	}
	if s.RetiredAt != nil {
		line(w, "Retired", s.RetiredAt.Format("2006-01-02 15:04:05Z07:00")+" ("+s.RetirementTxID+")")
	}
	for _, d := range s.Deposits {
		fmt.Fprintf(w, "  deposit %s from %s: %s\n", d.TxID, d.Depositor, d.Amount)
	}
	for _, r := range s.Refunds {
		outcome := r.TxID
		if !r.Succeeded() {
			outcome = "failed: " + r.Error
		}
		fmt.Fprintf(w, "  refund (%s) to %s: %s %s\n", r.Reason, r.Recipient, r.Amount, outcome)
	}
}
