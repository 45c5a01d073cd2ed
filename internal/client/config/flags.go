package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/rentkeeper/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Only the settings flags are taken from os.Args (see flagx.Pick), so cobra
// subcommands and their own flags do not interfere.
func parseFlags(cfg *Config) {
	args := flagx.Pick(os.Args[1:], "-a", "-p", "-w", "-d", "-l", "-m", "-k", "-o")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "base URL of the backend API")
	fs.StringVar(&cfg.APIPrefix, "p", cfg.APIPrefix, "API path prefix")
	fs.DurationVar(&cfg.InactivityWindow, "w", cfg.InactivityWindow, "inactivity window")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local database path")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.CheckoutMode, "m", cfg.CheckoutMode, "checkout mode (web|manual)")
	fs.StringVar(&cfg.CheckoutAddr, "k", cfg.CheckoutAddr, "checkout page listen address")
	fs.StringVar(&cfg.ExportDir, "o", cfg.ExportDir, "export directory")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
