package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/career-admin/internal/assistant"
	"github.com/jonathan/career-admin/internal/config"
	"github.com/jonathan/career-admin/internal/db"
	"github.com/jonathan/career-admin/internal/fetch"
	"github.com/jonathan/career-admin/internal/llm"
	"github.com/jonathan/career-admin/internal/logging"
	"github.com/jonathan/career-admin/internal/observability"
	"github.com/jonathan/career-admin/internal/types"
)

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Generate a job-tailored resume, cover letter or application answer",
	Long: `Generate a draft tailored to a job from the stored career record.
The job can be described by flags, a posting text file (--job) or a posting URL (--job-url).
Values from --config are used for any flag not given on the command line.`,
	RunE: runDraft,
}

var (
	draftConfigFile string
	draftFlags      config.Config
)

func init() {
	f := draftCmd.Flags()
	f.StringVar(&draftConfigFile, "config", "", "Path to a JSON config file")
	f.StringVarP(&draftFlags.Kind, "kind", "k", "", "Draft kind: resume, cover_letter or question_answer")
	f.StringVarP(&draftFlags.RoleType, "role", "r", "", "Target role type, e.g. software_engineer")
	f.StringVar(&draftFlags.Company, "company", "", "Company name")
	f.StringVar(&draftFlags.Title, "title", "", "Job title")
	f.StringVar(&draftFlags.Job, "job", "", "Path to a job posting text file")
	f.StringVar(&draftFlags.JobURL, "job-url", "", "URL of the job posting")
	f.StringVarP(&draftFlags.Question, "question", "q", "", "Application question (question_answer only)")
	f.StringVar(&draftFlags.Additional, "additional", "", "Additional instructions for the draft")
	f.StringVarP(&draftFlags.Output, "out", "o", "", "Write the draft to this file instead of stdout")
	f.StringVar(&draftFlags.DatabaseURL, "db-url", "", "Database URL (overrides DATABASE_URL)")
	f.StringVar(&draftFlags.Provider, "provider", "", "LLM provider: gemini or anthropic (default from LLM_PROVIDER)")
	f.StringVar(&draftFlags.APIKey, "api-key", "", "Provider API key (overrides GEMINI_API_KEY / ANTHROPIC_API_KEY)")
	f.StringVar(&draftFlags.Model, "model", "", "Model name override")
	f.BoolVar(&draftFlags.UseBrowser, "use-browser", false, "Render JavaScript-heavy job sites in headless Chrome")
	f.BoolVarP(&draftFlags.Verbose, "verbose", "v", false, "Print draft details and debug logs")

	rootCmd.AddCommand(draftCmd)
}

func runDraft(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveDraftConfig(draftConfigFile, draftFlags)
	if err != nil {
		return err
	}

	kind, req, err := buildDraftRequest(cfg)
	if err != nil {
		return err
	}

	url, err := databaseURL(cfg.DatabaseURL)
	if err != nil {
		return err
	}

	level := resolveLogLevel()
	if cfg.Verbose {
		level = "debug"
	}
	logger := logging.New(os.Stderr, logging.FormatText, level)

	ctx := cmd.Context()
	database, err := openDB(ctx, url, db.DefaultPoolConfig())
	if err != nil {
		return err
	}
	defer database.Close()

	llmCfg, err := llmConfig(cfg.Provider, cfg.Model)
	if err != nil {
		return err
	}
	apiKey := apiKeyFor(llmCfg.Provider, cfg.APIKey)
	if apiKey == "" {
		return fmt.Errorf("API key is required for %s (set the provider's API key environment variable or use --api-key)", llmCfg.Provider)
	}
	client, err := llm.NewClient(ctx, llmCfg, apiKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer client.Close() //nolint:errcheck

	fetcherCfg := fetch.PostingFetcherConfig{Logger: logger}
	if cfg.UseBrowser {
		fetcherCfg.Render = fetch.ChromeRenderer(fetch.DefaultTimeout, logger)
	}
	agent := assistant.NewJobAgent(database, client, assistant.JobAgentConfig{
		Fetcher: fetch.NewPostingFetcher(fetcherCfg),
		Logger:  logger,
	})

	draft, err := agent.GenerateDraft(ctx, kind, req)
	if err != nil {
		return fmt.Errorf("failed to generate %s: %w", kind.Label(), err)
	}

	if cfg.Output != "" {
		if err := os.WriteFile(cfg.Output, []byte(draft.Content+"\n"), 0o644); err != nil {
			return fmt.Errorf("failed to write draft: %w", err)
		}
		logger.Info("draft written", "path", cfg.Output)
		return nil
	}

	if cfg.Verbose {
		observability.NewPrinter(cmd.OutOrStdout()).PrintDraft(draft)
		return nil
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), draft.Content)
	return err
}

// resolveDraftConfig merges flags over the optional config file and validates the result
func resolveDraftConfig(path string, flags config.Config) (config.Config, error) {
	cfg := flags
	if path != "" {
		fileCfg, err := config.LoadConfig(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = flags.MergeWithDefaults(*fileCfg)
		cfg.UseBrowser = flags.UseBrowser || fileCfg.UseBrowser
		cfg.Verbose = flags.Verbose || fileCfg.Verbose
	}
	if cfg.Provider == "" {
		cfg.Provider = os.Getenv("LLM_PROVIDER")
	}

	if cfg.Kind == "" {
		return config.Config{}, fmt.Errorf("--kind is required (resume, cover_letter or question_answer)")
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// buildDraftRequest turns the command configuration into an agent request
func buildDraftRequest(cfg config.Config) (types.DraftKind, types.DraftRequest, error) {
	kind, err := types.ParseDraftKind(cfg.Kind)
	if err != nil {
		return "", types.DraftRequest{}, err
	}

	job := types.JobInfo{
		Company:  cfg.Company,
		Title:    cfg.Title,
		URL:      cfg.JobURL,
		Question: cfg.Question,
		RoleType: types.RoleType(cfg.RoleType),
	}
	if cfg.Job != "" {
		text, err := os.ReadFile(cfg.Job)
		if err != nil {
			return "", types.DraftRequest{}, fmt.Errorf("failed to read job file: %w", err)
		}
		job.Description = strings.TrimSpace(string(text))
	}
	if err := job.ValidateFor(kind); err != nil {
		return "", types.DraftRequest{}, err
	}

	return kind, types.DraftRequest{JobInfo: job, AdditionalContext: cfg.Additional}, nil
}
