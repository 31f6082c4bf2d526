package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/career-admin/internal/aicontext"
	"github.com/jonathan/career-admin/internal/db"
	"github.com/jonathan/career-admin/internal/observability"
	"github.com/jonathan/career-admin/internal/prompts"
	"github.com/jonathan/career-admin/internal/types"
)

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Print the AI context and system prompt for a record",
	Long: `Assemble the AI context the writing assistant would receive while editing a record,
then print a summary of it and the full system prompt built from it. No model is called.`,
	RunE: runContext,
}

var (
	contextCollection string
	contextItemID     string
	contextRole       string
	contextField      string
	contextDBURL      string
)

func init() {
	contextCmd.Flags().StringVarP(&contextCollection, "collection", "c", "", "Collection being edited: profile, experiences, skills, projects, education (required)")
	contextCmd.Flags().StringVar(&contextItemID, "item", "", "ID of the record being edited")
	contextCmd.Flags().StringVarP(&contextRole, "role", "r", "", "Target role type, e.g. software_engineer")
	contextCmd.Flags().StringVar(&contextField, "field", "", "Field being edited")
	contextCmd.Flags().StringVar(&contextDBURL, "db-url", "", "Database URL (overrides DATABASE_URL)")

	_ = contextCmd.MarkFlagRequired("collection")

	rootCmd.AddCommand(contextCmd)
}

func runContext(cmd *cobra.Command, _ []string) error {
	url, err := databaseURL(contextDBURL)
	if err != nil {
		return err
	}
	logger := cliLogger()

	ctx := cmd.Context()
	database, err := openDB(ctx, url, db.DefaultPoolConfig())
	if err != nil {
		return err
	}
	defer database.Close()

	role := types.RoleType(contextRole)
	if role != "" && !role.IsKnown() {
		logger.Warn("unknown role type, rendering as given", "role", role)
	}

	req := aicontext.Request{
		Collection: contextCollection,
		ItemID:     contextItemID,
		RoleType:   role,
		Field:      contextField,
	}
	aiCtx := aicontext.NewAssembler(database, logger).Build(ctx, req)

	limits := prompts.DefaultAssistantLimits()
	printer := observability.NewPrinter(cmd.OutOrStdout())
	printer.PrintContext(aiCtx)
	printer.PrintPrompt("SYSTEM PROMPT",
		prompts.AssistantSections(aiCtx, limits),
		prompts.BuildAssistantPrompt(aiCtx, limits))

	if contextItemID != "" && aiCtx.CurrentItem == nil {
		fmt.Fprintf(os.Stderr, "Note: no %s record with id %s\n", contextCollection, contextItemID)
	}
	return nil
}
