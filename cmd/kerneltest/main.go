// Command kerneltest is the operator CLI: schema migration and offline log checks.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"

	"kerneltest/internal/config"
	"kerneltest/internal/database"
	"kerneltest/internal/database/migration"
	"kerneltest/internal/ingest"
	"kerneltest/internal/logging"
	"kerneltest/internal/model"
)

// errRejected makes the process exit non-zero after the verdict was printed.
var errRejected = errors.New("log rejected")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "kerneltest",
		Short:        "Kernel test result service tooling",
		SilenceUsage: true,
	}
	root.AddCommand(newMigrateCmd(), newCheckCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the result schema if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			logger := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Location())

			db, err := database.NewPostgres(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			return migration.EnsureMigrated(cmd.Context(), db, logger, database.Target(cfg.Database))
		},
	}
}

// checkReport is printed by `check`. Exactly one of Log and Error is set.
type checkReport struct {
	Outcome string           `json:"outcome"`
	File    string           `json:"file"`
	User    string           `json:"user,omitempty"`
	Log     *model.ParsedLog `json:"log,omitempty"`
	Error   string           `json:"error,omitempty"`
}

func newCheckCmd() *cobra.Command {
	var (
		user     string
		reserved string
		maxBytes int64
	)

	cmd := &cobra.Command{
		Use:   "check FILE",
		Short: "Run the upload checks on a local log and print the verdict as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			p := ingest.NewPipeline(reserved, maxBytes)

			checked, err := p.Validate(cmd.Context(), user, false, func() (io.ReadCloser, error) {
				return os.Open(path)
			})

			report := checkReport{File: path, User: user}
			if err != nil {
				out, ok := ingest.Rejected(err, p.Reserved())
				if !ok {
					return err
				}
				report.Outcome = out.Kind.String()
				report.Error = err.Error()
				if perr := printJSON(cmd.OutOrStdout(), report); perr != nil {
					return perr
				}
				return fmt.Errorf("%w: %s", errRejected, out.Kind)
			}

			report.Outcome = ingest.Success.String()
			report.Log = &checked.Log
			return printJSON(cmd.OutOrStdout(), report)
		},
	}

	defaults := config.Load().Upload
	cmd.Flags().StringVar(&user, "user", "", "username the log would be submitted as")
	cmd.Flags().StringVar(&reserved, "reserved", defaults.ReservedUsername, "reserved account name")
	cmd.Flags().Int64Var(&maxBytes, "max-bytes", defaults.MaxBytes, "size limit, 0 disables it")
	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
