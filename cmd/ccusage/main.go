// Package main is the entry point for the Claude Code usage monitor.
// It initializes configuration, services, and runs the Bubble Tea program.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brucechou1983/claude-code-usage/internal/app"
	"github.com/brucechou1983/claude-code-usage/internal/config"
	"github.com/brucechou1983/claude-code-usage/internal/logger"
	"github.com/brucechou1983/claude-code-usage/internal/services"
	"github.com/brucechou1983/claude-code-usage/internal/version"
)

func main() {
	// Handle version flag
	if len(os.Args) > 1 && (os.Args[1] == "-v" || os.Args[1] == "--version") {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	// Handle help flag
	if len(os.Args) > 1 && (os.Args[1] == "-h" || os.Args[1] == "--help") {
		printUsage()
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run contains the main application logic, separated for cleaner error handling.
func run() error {
	// 1. Load configuration from .env files and environment variables
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Route logs to a file so they do not corrupt the TUI output
	logCloser, err := logger.InitFile(cfg.LogPath)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logCloser.Close()
	logger.SetLevel(cfg.LogLevel)

	// 3. Initialize the service manager. This starts the settings store,
	// its file watcher and the refresh scheduler.
	svcManager, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	defer func() {
		if closeErr := svcManager.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
		}
	}()

	// 4. Create the root Bubble Tea model
	model := app.NewModel(svcManager)

	// 5. Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	go func() {
		<-sigChan
		p.Send(tea.Quit())
	}()

	// Blocks until the user quits or an error occurs
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// printUsage prints the command-line usage information.
func printUsage() {
	fmt.Println(`Claude Code Usage - rate limit monitor for the Anthropic API

Usage:
  ccusage [flags]

Flags:
  -h, --help      Show this help message
  -v, --version   Show version information

Keyboard Shortcuts:
  r               Refresh usage now
  s               Edit OAuth token and poll interval
  t               Toggle trend chart
  ?               Toggle help
  q, Ctrl+C       Quit

Environment Variables:
  CCUSAGE_SETTINGS_PATH   Settings JSON file path
  CCUSAGE_LOG_PATH        Log file path
  CCUSAGE_LOG_LEVEL       Log level (debug, info, warn, error)
  CCUSAGE_HTTP_TIMEOUT    API request timeout (default: 30s)

Configuration:
  The application looks for .env files in the following locations:
  - Current directory
  - ~/.config/claude-code-usage/.env
  - ~/.claude-code-usage/.env

Settings (token and poll interval) are edited in the app with 's' and
persisted to the settings file; external edits are picked up live.`)
}
