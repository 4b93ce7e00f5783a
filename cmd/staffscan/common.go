package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/staffscan/internal/config"
	"github.com/nao1215/staffscan/internal/database"
	"github.com/nao1215/staffscan/internal/log"
)

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates the masking logger for a command and makes it the default.
func setupLogger(cmd *cobra.Command) *slog.Logger {
	verbose := getVerboseFlag(cmd)
	var logger *slog.Logger
	if jsonLogs, err := cmd.Flags().GetBool("log-json"); err == nil && jsonLogs {
		logger = log.NewSecureJSONLogger(cmd.ErrOrStderr(), verbose)
	} else {
		logger = log.NewSecureLogger(cmd.ErrOrStderr(), verbose)
	}
	slog.SetDefault(logger)
	return logger
}

// dataDir returns --data-dir, or the XDG data directory.
func dataDir(cmd *cobra.Command) string {
	if dir, err := cmd.Flags().GetString("data-dir"); err == nil && dir != "" {
		return dir
	}
	return config.XDGDataDir()
}

// openStore opens the history store. Read-only commands pass create=false
// so a missing store is reported instead of created.
func openStore(cmd *cobra.Command, create bool) (*database.Store, error) {
	opts := database.DefaultOptions()
	opts.CreateIfNotExists = create
	store, err := database.Open(dataDir(cmd), opts)
	if err != nil {
		if errors.Is(err, database.ErrStoreNotFound) {
			return nil, fmt.Errorf("%w (run 'staffscan run' first)", err)
		}
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return store, nil
}

// loadConfigFile loads the configuration file. A path given explicitly must
// exist; otherwise a missing file yields an empty configuration.
func loadConfigFile(path string) (*config.File, error) {
	found := config.FindConfigFile(path)
	if found == "" {
		if path != "" {
			return nil, fmt.Errorf("configuration file not found: %s", path)
		}
		return &config.File{Companies: make(map[string]config.Profile)}, nil
	}
	file, err := config.LoadConfigFile(found)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", found, err)
	}
	slog.Debug("loaded configuration file", "path", found, "companies", len(file.Companies))
	return file, nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}
