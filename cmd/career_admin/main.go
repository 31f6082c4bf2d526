// Package main provides the entry point for the career admin server and CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "career_admin",
	Short: "Career data admin server and tools",
	Long: "Career Admin manages a personal career record (profile, experiences, skills, projects, " +
		"education and keywords) and uses it to assist editing and to draft job-tailored resumes, " +
		"cover letters and application answers.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default from LOG_LEVEL)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
