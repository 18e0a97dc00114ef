package main

import (
	"fmt"

	"github.com/OFFIS-RIT/osint/internal/storage"
	"github.com/OFFIS-RIT/osint/internal/util"
	"github.com/OFFIS-RIT/osint/pkg/store"

	"github.com/spf13/cobra"
)

func newReportsCmd() *cobra.Command {
	var dbPath string

	openStore := func(cmd *cobra.Command) (store.ReportStore, error) {
		cfg := util.LoadConfig()
		if dbPath != "" {
			cfg.SQLitePath = dbPath
		}
		reports, _, err := storage.OpenReportStore(cmd.Context(), cfg)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		return reports, nil
	}

	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Inspect stored reports",
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite store path, overrides SQLITE_PATH")

	var limit, offset int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored reports, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reports, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer reports.Close()

			res, err := reports.ListReports(cmd.Context(), store.ListOptions{Limit: limit, Offset: offset})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, rec := range res {
				fmt.Fprintf(out, "%s\t%s\t%s\t%d entities\t%s\n",
					rec.ID, rec.CreatedAt.Format("2006-01-02 15:04"), rec.Status, rec.EntityCount, rec.Title)
			}
			return nil
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", store.DefaultListLimit, "Maximum number of reports")
	listCmd.Flags().IntVar(&offset, "offset", 0, "Number of reports to skip")

	showCmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Print the document of a stored report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reports, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer reports.Close()

			rec, err := reports.GetReport(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(rec.Document))
			return err
		},
	}

	cmd.AddCommand(listCmd, showCmd)
	return cmd
}
