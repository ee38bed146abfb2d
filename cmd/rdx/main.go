// Command rdx is the rickdex debug and maintenance CLI.
//
// Usage:
//
//	rdx list [--page N] [--status S] [--gender G]   One page of characters
//	rdx get <id> [id...]                             Characters by id
//	rdx search <name>                                Characters by name
//	rdx describe <id>                                Description with fallback
//	rdx url [id]                                     Request URL for a query
//	rdx events                                       JSONL event log viewer
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/abelbrown/rickdex/internal/logging"
)

var (
	formatFlag  string
	baseURLFlag string
	noCache     bool
	verbose     bool
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "rdx",
	Short: "rickdex debug and maintenance CLI",
	Long:  "Query the Rick & Morty character API the way the rickdex TUI does, and inspect its event log.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := log.WarnLevel
		if verbose {
			level = log.DebugLevel
		}
		logging.InitWriter(os.Stderr, level)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "text", "Output format: text or json")
	rootCmd.PersistentFlags().StringVar(&baseURLFlag, "base-url", "", "API base URL (default: from config)")
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "Bypass the response cache")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging on stderr")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
