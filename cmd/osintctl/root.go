// osintctl runs the report pipeline on files, without the server or queue.
//
// Usage:
//
//	osintctl parse <payload-file> [--enrichment]
//	osintctl run <primary-file>... [--enrichment=<file>] [--plan=<file>] [--completed=<dim>,...] [--out=<dir>] [--save]
//	osintctl reports list [--limit=<n>]
//	osintctl reports show <run-id>
//	osintctl schema
package main

import (
	"fmt"
	"os"

	"github.com/OFFIS-RIT/osint/internal/util"
	"github.com/OFFIS-RIT/osint/pkg/logger"
	"github.com/OFFIS-RIT/osint/pkg/logger/console"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

func newRootCmd() *cobra.Command {
	var debug bool

	rootCmd := &cobra.Command{
		Use:   "osintctl",
		Short: "Turn collected research output into linked-data reports",
		Long:  "osintctl parses research agent output, validates and deduplicates the\nentities it finds and assembles them into a JSON-LD report.",
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logger.Init(console.NewConsoleLogger(console.ConsoleLoggerParams{
				Debug:  debug || util.GetEnvBool("DEBUG", false),
				JSON:   util.GetEnvBool("LOG_JSON", false),
				Prefix: "osintctl",
				Output: cmd.ErrOrStderr(),
			}))
		},
	}
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(newParseCmd())
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newReportsCmd())
	rootCmd.AddCommand(newSchemaCmd())
	rootCmd.Version = version
	return rootCmd
}

func main() {
	util.LoadEnv()
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
