package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/career-admin/internal/bundle"
	"github.com/jonathan/career-admin/internal/db"
	"github.com/jonathan/career-admin/internal/observability"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a career data bundle",
	Long: `Validate a career data bundle against the bundle schema and write every record.
Records are added alongside existing ones; the bundle's profile replaces the stored profile.`,
	RunE: runImport,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the career record as a bundle",
	RunE:  runExport,
}

var (
	importFile   string
	importDryRun bool
	importDBURL  string
	exportFile   string
	exportDBURL  string
)

func init() {
	importCmd.Flags().StringVarP(&importFile, "in", "i", "", "Path to the bundle JSON file (required)")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Validate and report counts without writing")
	importCmd.Flags().StringVar(&importDBURL, "db-url", "", "Database URL (overrides DATABASE_URL)")
	_ = importCmd.MarkFlagRequired("in")

	exportCmd.Flags().StringVarP(&exportFile, "out", "o", "", "Write the bundle to this file instead of stdout")
	exportCmd.Flags().StringVar(&exportDBURL, "db-url", "", "Database URL (overrides DATABASE_URL)")

	rootCmd.AddCommand(importCmd, exportCmd)
}

func runImport(cmd *cobra.Command, _ []string) error {
	raw, err := os.ReadFile(importFile)
	if err != nil {
		return fmt.Errorf("failed to read bundle: %w", err)
	}

	b, err := bundle.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid bundle %s: %w", importFile, err)
	}

	printer := observability.NewPrinter(cmd.OutOrStdout())
	if importDryRun {
		printer.PrintSummary("DRY RUN: WOULD IMPORT", bundle.Count(b))
		return nil
	}

	url, err := databaseURL(importDBURL)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	database, err := openDB(ctx, url, db.DefaultPoolConfig())
	if err != nil {
		return err
	}
	defer database.Close()

	sum, err := bundle.ImportTx(ctx, database.WithTx, b)
	if err != nil {
		return fmt.Errorf("import rolled back, nothing was written: %w", err)
	}
	printer.PrintSummary("IMPORTED", sum)
	return nil
}

func runExport(cmd *cobra.Command, _ []string) error {
	url, err := databaseURL(exportDBURL)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	database, err := openDB(ctx, url, db.DefaultPoolConfig())
	if err != nil {
		return err
	}
	defer database.Close()

	b, err := bundle.Export(ctx, database)
	if err != nil {
		return fmt.Errorf("failed to export: %w", err)
	}

	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode bundle: %w", err)
	}
	data = append(data, '\n')

	if exportFile == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(exportFile, data, 0o644); err != nil {
		return fmt.Errorf("failed to write bundle: %w", err)
	}
	observability.NewPrinter(cmd.ErrOrStderr()).PrintSummary("EXPORTED", bundle.Count(b))
	return nil
}
