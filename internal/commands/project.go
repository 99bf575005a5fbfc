package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/cleared-dev/basis/internal/config"
	"github.com/cleared-dev/basis/internal/importer"
	"github.com/cleared-dev/basis/internal/ledger"
	"github.com/cleared-dev/basis/internal/logging"
)

// project is a loaded basis.yaml plus the logger built from it.
type project struct {
	cfg *config.Config
	dir string // directory holding basis.yaml
	log *logrus.Logger
}

// loadProject reads the config at path, falling back to defaults when the
// file does not exist, and applies environment overrides.
func loadProject(path string) (*project, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.Load(abs)
	switch {
	case errors.Is(err, os.ErrNotExist):
		cfg = config.Default()
	case err != nil:
		return nil, err
	}
	config.ApplyEnv(cfg)

	log, err := logging.New(cfg.Log.Level, os.Stderr)
	if err != nil {
		return nil, err
	}
	return &project{cfg: cfg, dir: filepath.Dir(abs), log: log}, nil
}

func (p *project) ledgerPath() string {
	if filepath.IsAbs(p.cfg.Ledger.Path) {
		return p.cfg.Ledger.Path
	}
	return filepath.Join(p.dir, p.cfg.Ledger.Path)
}

func (p *project) openLedger(ctx context.Context) (*ledger.Store, error) {
	path := p.ledgerPath()
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	return ledger.Open(ctx, path, p.log)
}

func (p *project) registry() *importer.Registry {
	fc := p.cfg.Import.FeeColumns
	cols := importer.Columns{FeePrimary: fc.Primary.Header, FeeSecondary: fc.Secondary.Header}
	return importer.DefaultRegistry(cols, p.cfg.Import.Sheet)
}

func (p *project) normalizeOptions() importer.Options {
	fc := p.cfg.Import.FeeColumns
	return importer.Options{
		DateFormat:        p.cfg.Import.DateFormat,
		PrimaryCurrency:   fc.Primary.Currency,
		SecondaryCurrency: fc.Secondary.Currency,
	}
}
