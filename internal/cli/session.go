package cli

import (
	"context"
	"log/slog"

	"github.com/roach88/ovenledger/internal/config"
	"github.com/roach88/ovenledger/internal/export"
	"github.com/roach88/ovenledger/internal/ledger"
	"github.com/roach88/ovenledger/internal/store"
)

// session is an open ledger plus the resources backing it.
type session struct {
	cfg      config.Config
	backend  store.Backend
	exporter export.Writer
	ledger   *ledger.Ledger
	logger   *slog.Logger
}

// openSession resolves configuration (file, then flags), opens the ledger
// backend and loads the record set.
//
// Config problems are command errors. A ledger that cannot be opened or
// parsed is reported as *ledger.StorageReadError.
func openSession(ctx context.Context, opts *RootOptions) (*session, error) {
	logger := opts.logger
	if logger == nil {
		logger = slog.Default()
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	cfg = cfg.Override(config.Config{Ledger: opts.Ledger, Export: opts.Export})
	if err := cfg.Validate(); err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid settings", err)
	}

	exp, err := export.New(cfg.Export)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid export path", err)
	}

	logger.Debug("opening ledger", "path", cfg.Ledger)
	backend, err := store.ForPath(cfg.Ledger)
	if err != nil {
		return nil, &ledger.StorageReadError{Path: cfg.Ledger, Err: err}
	}

	ledgerOpts := []ledger.Option{
		ledger.WithExporter(exp),
		ledger.WithOvens(cfg.Ovens),
		ledger.WithLogger(logger),
	}
	if opts.Clock != nil {
		ledgerOpts = append(ledgerOpts, ledger.WithClock(opts.Clock))
	}
	if opts.IDs != nil {
		ledgerOpts = append(ledgerOpts, ledger.WithIDGenerator(opts.IDs))
	}

	l, err := ledger.Load(ctx, backend, ledgerOpts...)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}

	return &session{
		cfg:      cfg,
		backend:  backend,
		exporter: exp,
		ledger:   l,
		logger:   logger,
	}, nil
}

// Close releases the backend.
func (s *session) Close() {
	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing ledger", "error", err)
	}
}

// withSession opens a session, runs fn and reports any error through out.
// ExitErrors raised before the ledger is loaded are printed as E001.
func withSession(ctx context.Context, opts *RootOptions, out *OutputFormatter, fn func(*session) error) error {
	s, err := openSession(ctx, opts)
	if err != nil {
		return out.Fail(err)
	}
	defer s.Close()
	return fn(s)
}
