package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/career-admin/internal/aicontext"
	"github.com/jonathan/career-admin/internal/assistant"
	"github.com/jonathan/career-admin/internal/config"
	"github.com/jonathan/career-admin/internal/db"
	"github.com/jonathan/career-admin/internal/fetch"
	"github.com/jonathan/career-admin/internal/llm"
	"github.com/jonathan/career-admin/internal/logging"
	"github.com/jonathan/career-admin/internal/server"
	"github.com/jonathan/career-admin/internal/server/ratelimit"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server exposing the career record, the writing assistant and job-tailored drafts.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		return err
	}
	if servePort != "" {
		cfg.Port = servePort
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	logger := logging.New(os.Stderr, logging.FormatJSON, cfg.LogLevel)

	authCfg, err := config.NewAuthConfig()
	if err != nil {
		return fmt.Errorf("failed to create auth config: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool := db.DefaultPoolConfig()
	pool.MaxConns = cfg.DBMaxConns
	pool.MinConns = cfg.DBMinConns
	database, err := openDB(ctx, cfg.DatabaseURL, pool)
	if err != nil {
		return err
	}
	defer database.Close()

	llmCfg, err := llmConfig(cfg.LLMProvider, cfg.LLMModel)
	if err != nil {
		return err
	}
	client, err := llm.NewClient(ctx, llmCfg, cfg.LLMAPIKey())
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer client.Close() //nolint:errcheck

	fetcherCfg := fetch.PostingFetcherConfig{Logger: logger}
	if cfg.FetchUseBrowser {
		fetcherCfg.Render = fetch.ChromeRenderer(fetch.DefaultTimeout, logger)
	}

	limiter, err := newLimiter(ctx, cfg.RedisURL, logger)
	if err != nil {
		return err
	}

	srv, err := server.New(server.Deps{
		Store:     database,
		Assembler: aicontext.NewAssembler(database, logger),
		Assistant: assistant.NewService(client, assistant.ServiceConfig{
			Timeout: cfg.AIRequestTimeout,
			Logger:  logger,
		}),
		Agent: assistant.NewJobAgent(database, client, assistant.JobAgentConfig{
			Fetcher: fetch.NewPostingFetcher(fetcherCfg),
			Timeout: cfg.AIRequestTimeout,
			Logger:  logger,
		}),
		Auth:           authCfg,
		Limiter:        limiter,
		Logger:         logger,
		Addr:           ":" + cfg.Port,
		AllowedOrigins: strings.Split(cfg.AllowedOrigins, ","),
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start(ctx)
}

// newLimiter builds the rate limiter, sharing counters through Redis when url is set
func newLimiter(ctx context.Context, url string, logger *slog.Logger) (*ratelimit.Limiter, error) {
	rlCfg := ratelimit.LoadConfig()
	if url == "" || !rlCfg.Enabled {
		return ratelimit.NewLimiter(rlCfg, ratelimit.WithLogger(logger)), nil
	}

	rdb, err := ratelimit.NewRedisClient(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	logger.Info("rate limit counters shared through redis")
	return ratelimit.NewLimiter(rlCfg,
		ratelimit.WithStore(ratelimit.NewRedisStore(rdb)),
		ratelimit.WithLogger(logger),
	), nil
}
