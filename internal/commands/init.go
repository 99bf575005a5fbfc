package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/basis/internal/config"
	"github.com/cleared-dev/basis/internal/ledger"
	"github.com/cleared-dev/basis/internal/logging"
)

// inboxDir is the directory `basis import --inbox` reads by convention.
const inboxDir = "import"

func newInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new basis project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd.Context(), absDir)
		},
	}

	return cmd
}

func runInit(ctx context.Context, dir string) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	}

	// Create directory structure.
	for _, d := range []string{inboxDir, filepath.Join(inboxDir, "processed")} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	// Write basis.yaml.
	cfg := config.Default()
	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Create the migrated, empty ledger.
	log, err := logging.New(cfg.Log.Level, os.Stderr)
	if err != nil {
		return err
	}
	store, err := ledger.Open(ctx, filepath.Join(dir, cfg.Ledger.Path), log)
	if err != nil {
		return fmt.Errorf("creating ledger: %w", err)
	}
	if err := store.Close(); err != nil {
		return fmt.Errorf("closing ledger: %w", err)
	}

	// Write .gitignore.
	gitignore := cfg.Ledger.Path + "\n.env\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	fmt.Printf("Initialized basis project at %s\n", dir)
	return nil
}
