package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/fountain/fountain-api/internal/app"
	"github.com/fountain/fountain-api/internal/config"
	"github.com/fountain/fountain-api/internal/helpers"
	"github.com/fountain/fountain-api/internal/logger"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Format string // "json" | "text"

	// LoadConfig resolves the service configuration
	LoadConfig func(ctx context.Context) (*config.Config, error)
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for fountainctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{LoadConfig: loadConfig}

	cmd := &cobra.Command{
		Use:   "fountainctl",
		Short: "Operator tooling for the stablecoin reconciliation engine",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewKeygenCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSweepCommand(opts))
	cmd.AddCommand(NewWalletStatusCommand(opts))
	cmd.AddCommand(NewTrustlineCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

func loadConfig(ctx context.Context) (*config.Config, error) {
	if err := config.LoadEnvFile(); err != nil {
		return nil, err
	}
	stage := os.Getenv("STAGE")
	if stage == "" {
		stage = helpers.StageLocal
	}
	logger.InitLogger(stage)

	secrets, _ := app.LoadSecrets(ctx, stage)
	return config.Load(ctx, secrets)
}

// offlineEngine builds the engine without the push stream or polling, so a
// command touches the ledger only through explicit RPC calls
func offlineEngine(ctx context.Context, opts *RootOptions) (*app.App, error) {
	cfg, err := opts.LoadConfig(ctx)
	if err != nil {
		return nil, err
	}
	cfg.EnableSubscriber = false
	cfg.EnablePolling = false
	return app.Build(ctx, cfg, nil)
}
