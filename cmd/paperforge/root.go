package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/paperforge/paperforge/internal/config"
	"github.com/paperforge/paperforge/internal/home"
	"github.com/paperforge/paperforge/version"
)

var (
	cfgFile     string
	homeDirPath string
)

var rootCmd = &cobra.Command{
	Use:   "paperforge",
	Short: "Generate IEEE reports and Beamer slide decks from research papers",
	Long: `Paperforge turns a set of research paper PDFs plus a format template PDF
into a ready-to-compile LaTeX document.

The pipeline includes:
  - PDF text extraction with per-document character caps
  - LLM-backed bibliography extraction
  - Structured content generation with retry and fallback
  - IEEE report or Beamer slide rendering`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.paperforge/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDirPath, "home", "", "paperforge home directory (default: ~/.paperforge)",
	)

	// API keys commonly live in a local .env during development.
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
	}

	rootCmd.AddCommand(versionCmd)
}

// newLogger builds the structured logger used by all commands.
func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// loadRuntime prepares the home directory and loads configuration with
// resolved backend credentials. The manager is returned so long-running
// commands can enable hot reload.
func loadRuntime() (*config.Manager, *home.Dir, error) {
	h, err := home.New(homeDirPath)
	if err != nil {
		return nil, nil, err
	}
	if err := h.EnsureExists(); err != nil {
		return nil, nil, err
	}

	mgr, err := config.NewManager(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	if err := mgr.Get().ResolveCredentials(); err != nil {
		return nil, nil, err
	}
	return mgr, h, nil
}
