package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/OFFIS-RIT/osint/pkg/parse"

	"github.com/spf13/cobra"
)

func newParseCmd() *cobra.Command {
	var enrichment bool

	cmd := &cobra.Command{
		Use:   "parse <payload-file>",
		Short: "Parse a payload and print the extracted records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read payload: %w", err)
			}

			p := parse.New(parse.Config{})
			var res parse.Result
			if enrichment {
				res = p.ParseEnrichment(string(data))
			} else {
				res = p.Parse(string(data))
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
	cmd.Flags().BoolVar(&enrichment, "enrichment", false, "Treat the payload as enrichment output")
	return cmd
}
