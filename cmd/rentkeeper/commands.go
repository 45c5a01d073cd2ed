package main

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/rentkeeper/internal/client/cli"
	"github.com/dmitrijs2005/rentkeeper/internal/client/config"
	"github.com/spf13/cobra"
)

// Settings flags (-a, -w, -c ...) are read by config.LoadConfig straight
// from os.Args, so every command lets unknown flags through.
var passSettings = cobra.FParseErrWhitelist{UnknownFlags: true}

// newApp is a test seam for building the console.
var newApp = func(ctx context.Context, cfg *config.Config) (consoleApp, error) {
	return cli.NewApp(ctx, cfg)
}

type consoleApp interface {
	Run(ctx context.Context) error
	ExportPaidBills(ctx context.Context, month, format string) (string, error)
	Close()
}

func loadConfig() (*config.Config, error) {
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func runConsole(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	app, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	return app.Run(ctx)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:                "rentkeeper",
		Short:              "Rent management console for tenants and administrators",
		SilenceUsage:       true,
		FParseErrWhitelist: passSettings,
		Args:               cobra.ArbitraryArgs,
		RunE:               runConsole,
	}

	root.AddCommand(consoleCmd(), exportCmd())
	return root
}

func consoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:                "console",
		Short:              "Start the interactive console (default)",
		FParseErrWhitelist: passSettings,
		Args:               cobra.ArbitraryArgs,
		RunE:               runConsole,
	}
}

func exportCmd() *cobra.Command {
	export := &cobra.Command{
		Use:   "export",
		Short: "Export admin reports without opening the console",
	}
	export.AddCommand(exportPaidBillsCmd())
	return export
}

func exportPaidBillsCmd() *cobra.Command {
	var month, format string

	cmd := &cobra.Command{
		Use:                "paid-bills",
		Short:              "Export the bills paid in a month (needs a stored admin session)",
		FParseErrWhitelist: passSettings,
		Args:               cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			app, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			where, err := app.ExportPaidBills(ctx, month, format)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Exported to", where)
			return nil
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "month to report (YYYY-MM)")
	cmd.Flags().StringVar(&format, "format", "csv", "file format (csv or xlsx)")
	_ = cmd.MarkFlagRequired("month")
	return cmd
}
