package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jonathan/career-admin/internal/db"
	"github.com/jonathan/career-admin/internal/llm"
	"github.com/jonathan/career-admin/internal/logging"
)

// cliLogger returns a text logger on stderr for one-shot commands
func cliLogger() *slog.Logger {
	return logging.New(os.Stderr, logging.FormatText, resolveLogLevel())
}

func resolveLogLevel() string {
	if logLevel != "" {
		return logLevel
	}
	return os.Getenv("LOG_LEVEL")
}

// databaseURL returns flagValue, falling back to DATABASE_URL
func databaseURL(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if env := os.Getenv("DATABASE_URL"); env != "" {
		return env, nil
	}
	return "", fmt.Errorf("database URL is required (set DATABASE_URL or use --db-url)")
}

// openDB connects and makes sure the record tables exist
func openDB(ctx context.Context, url string, pool db.PoolConfig) (*db.DB, error) {
	database, err := db.Connect(ctx, url, pool)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.EnsureSchema(ctx); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

// llmConfig returns the provider defaults, with model replacing every tier when set
func llmConfig(provider, model string) (*llm.Config, error) {
	p, err := llm.ParseProvider(provider)
	if err != nil {
		return nil, err
	}
	cfg := llm.ConfigFor(p)
	if model != "" {
		for _, tier := range []llm.ModelTier{llm.TierLite, llm.TierStandard, llm.TierAdvanced} {
			cfg = cfg.WithModel(tier, model)
		}
	}
	return cfg, nil
}

// apiKeyFor returns flagValue or the provider's environment key
func apiKeyFor(provider llm.Provider, flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if provider == llm.ProviderAnthropic {
		return os.Getenv("ANTHROPIC_API_KEY")
	}
	return os.Getenv("GEMINI_API_KEY")
}
