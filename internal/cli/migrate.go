package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fountain/fountain-api/internal/app"
	"github.com/spf13/cobra"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	var databaseURL string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if databaseURL == "" {
				databaseURL = os.Getenv("DATABASE_URL")
			}
			if databaseURL == "" {
				return errors.New("a database url is required (--database-url or DATABASE_URL)")
			}

			// OpenStore applies migrations on connect
			_, pool, err := app.OpenStore(cmd.Context(), databaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			return writeResult(cmd.OutOrStdout(), rootOpts.Format, map[string]string{"status": "up to date"}, func(w io.Writer) {
				fmt.Fprintln(w, "database schema up to date")
			})
		},
	}

	cmd.Flags().StringVar(&databaseURL, "database-url", "", "Postgres connection string (defaults to DATABASE_URL)")
	return cmd
}
