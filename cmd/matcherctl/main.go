// matcherctl runs one reconciliation batch from the command line, without
// the HTTP server: a records file against a sqlite catalog.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"catalog-matcher/internal/fileio"
	"catalog-matcher/internal/match/model"
	"catalog-matcher/internal/match/service"
	"catalog-matcher/internal/store/sqlite"
)

func main() {
	root := &cobra.Command{
		Use:           "matcherctl",
		Short:         "Catalog reconciliation batch runner",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd())
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	var (
		filePath    string
		dbPath      string
		userID      int64
		headerRow   int
		catThr      float64
		brandThr    float64
		dryRun      bool
		showDetails bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Reconcile a records file against the catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := os.Open(filePath)
			if err != nil {
				return fmt.Errorf("opening records file: %w", err)
			}
			defer f.Close()

			records, err := fileio.ReadRecords(f, filePath, headerRow)
			if err != nil {
				return fmt.Errorf("reading records: %w", err)
			}

			st, err := sqlite.Open(dbPath)
			if err != nil {
				return fmt.Errorf("opening catalog store: %w", err)
			}
			defer st.Close()

			lvl := zerolog.WarnLevel
			if showDetails {
				lvl = zerolog.DebugLevel
			}
			logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
				Level(lvl).With().Timestamp().Logger()

			opt := model.Options{
				UserID:            userID,
				CategoryThreshold: catThr,
				BrandThreshold:    brandThr,
				DryRun:            dryRun,
			}.WithDefaults()

			if dryRun {
				fmt.Println("dry run: no changes will be written to the catalog")
			}
			fmt.Printf("records: %d  user: %d  db: %s\n", len(records), userID, dbPath)

			stats, err := service.NewRunner(st, opt, logger).Run(cmd.Context(), records)
			printStats(stats)
			return err
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", "", "records file (json, csv, xlsx, xls)")
	cmd.Flags().StringVar(&dbPath, "db", "catalog.db", "sqlite catalog database")
	cmd.Flags().Int64Var(&userID, "user-id", 39, "catalog owner user id")
	cmd.Flags().IntVar(&headerRow, "header-row", 1, "header row for sheet files (1-based)")
	cmd.Flags().Float64Var(&catThr, "category-threshold", 85, "fuzzy threshold for categories")
	cmd.Flags().Float64Var(&brandThr, "brand-threshold", 85, "fuzzy threshold for brands")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "simulate without writing to the catalog")
	cmd.Flags().BoolVar(&showDetails, "show-details", false, "log per-record matching details")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func printStats(s model.Stats) {
	fmt.Println("--------------------------------------")
	fmt.Printf("processed           %d\n", s.Processed)
	fmt.Printf("matched             %d\n", s.Matched)
	fmt.Printf("not found           %d\n", s.NotFound)
	fmt.Printf("invalid             %d\n", s.Invalid)
	fmt.Printf("categories created  %d\n", s.CategoriesCreated)
	fmt.Printf("brands created      %d\n", s.BrandsCreated)
	fmt.Printf("brands assigned     %d\n", s.BrandsAssigned)
	fmt.Printf("success rate        %.2f%%\n", s.SuccessRate)
}
