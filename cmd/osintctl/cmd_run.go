package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/OFFIS-RIT/osint/internal/storage"
	"github.com/OFFIS-RIT/osint/internal/util"
	"github.com/OFFIS-RIT/osint/pkg/coverage"
	"github.com/OFFIS-RIT/osint/pkg/research"
	"github.com/OFFIS-RIT/osint/pkg/store"

	"github.com/spf13/cobra"
)

type runFlags struct {
	enrichmentPath string
	planPath       string
	title          string
	completed      []string
	outDir         string
	save           bool
	dbPath         string
}

func newRunCmd() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run <primary-file>...",
		Short: "Assemble reports from primary agent output files",
		Long: "Each primary file becomes one run whose id is the file name without\n" +
			"extension. With a single file and no --out the document is printed.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(cmd, args, flags)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.enrichmentPath, "enrichment", "", "Enrichment output applied to every run")
	f.StringVar(&flags.planPath, "plan", "", "Decomposition plan (YAML or JSON)")
	f.StringVar(&flags.title, "title", "", "Report title, defaults to the plan topic")
	f.StringSliceVar(&flags.completed, "completed", nil, "Dimension ids or labels the research exhausted")
	f.StringVarP(&flags.outDir, "out", "o", "", "Write <run id>.jsonld files to this directory")
	f.BoolVar(&flags.save, "save", false, "Store the reports in the configured report store")
	f.StringVar(&flags.dbPath, "db", "", "SQLite store path, overrides SQLITE_PATH")
	return cmd
}

func runRuns(cmd *cobra.Command, args []string, flags runFlags) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := util.LoadConfig()
	if flags.dbPath != "" {
		cfg.SQLitePath = flags.dbPath
	}

	var enrichment string
	if flags.enrichmentPath != "" {
		data, err := os.ReadFile(flags.enrichmentPath)
		if err != nil {
			return fmt.Errorf("read enrichment: %w", err)
		}
		enrichment = string(data)
	}

	var plan *coverage.Plan
	if flags.planPath != "" {
		data, err := os.ReadFile(flags.planPath)
		if err != nil {
			return fmt.Errorf("read plan: %w", err)
		}
		plan, err = coverage.ParsePlan(data)
		if err != nil {
			return err
		}
	}

	runs := make([]research.Run, 0, len(args))
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read primary: %w", err)
		}
		runs = append(runs, research.Run{
			ID:                  runIDFromPath(path),
			Title:               flags.title,
			Primary:             string(data),
			Enrichment:          enrichment,
			Plan:                plan,
			CompletedDimensions: flags.completed,
		})
	}

	client, err := util.NewResearchClient(cfg)
	if err != nil {
		return err
	}
	results, err := client.ProcessBatch(ctx, runs)
	if err != nil {
		return err
	}

	var reports store.ReportStore
	if flags.save {
		reports, _, err = storage.OpenReportStore(ctx, cfg)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer reports.Close()
	}
	if flags.outDir != "" {
		if err := os.MkdirAll(flags.outDir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	for _, res := range results {
		rec, err := store.NewReportRecord(res.Report)
		if err != nil {
			return err
		}
		if reports != nil {
			if err := reports.SaveReport(ctx, rec); err != nil {
				return fmt.Errorf("save report %s: %w", rec.ID, err)
			}
		}

		switch {
		case flags.outDir != "":
			path := filepath.Join(flags.outDir, rec.ID+".jsonld")
			if err := os.WriteFile(path, rec.Document, 0o644); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			fmt.Fprintf(out, "%s\t%s\t%d entities\t%.2f%% coverage\t%s\n",
				rec.ID, rec.Status, rec.EntityCount, res.Diagnostics.CoveragePercentage, path)
		case len(results) == 1:
			fmt.Fprintln(out, string(rec.Document))
		default:
			fmt.Fprintf(out, "%s\t%s\t%d entities\t%.2f%% coverage\n",
				rec.ID, rec.Status, rec.EntityCount, res.Diagnostics.CoveragePercentage)
		}
	}
	return nil
}

func runIDFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
