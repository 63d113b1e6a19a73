package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/roach88/ovenledger/internal/dashboard"
	"github.com/roach88/ovenledger/internal/metrics"
)

// shutdownTimeout bounds how long in-flight requests get on shutdown.
const shutdownTimeout = 5 * time.Second

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr string

	// listener, when set, is used instead of listening on Addr (for testing).
	listener net.Listener
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the operator dashboard",
		Long: `Run the operator dashboard over HTTP.

The dashboard shows the oven board, logs and unloads cylinders, serves the
export for download and exposes Prometheus metrics on /metrics.

Example:
  ovenledger serve --addr :8080
  ovenledger --ledger /srv/ovens.db serve --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address; overrides config")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd)

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	return withSession(ctx, opts.RootOptions, out, func(s *session) error {
		addr := opts.Addr
		if addr == "" {
			addr = s.cfg.Listen
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		m := metrics.New(reg, s.ledger)
		h := dashboard.New(s.ledger, s.exporter, s.logger, m)
		srv := dashboard.NewServer(addr, dashboard.NewRouter(h, reg))

		ln := opts.listener
		if ln == nil {
			var err error
			ln, err = net.Listen("tcp", addr)
			if err != nil {
				return out.Fail(WrapExitError(ExitCommandError, "failed to listen", err))
			}
		}

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigChan) // Prevent signal handler leak

		go func() {
			select {
			case sig := <-sigChan:
				s.logger.Info("received signal, shutting down", "signal", sig)
				cancel()
			case <-ctx.Done():
				// Parent context cancelled (e.g., from test)
			}
		}()

		serveErr := make(chan error, 1)
		go func() {
			serveErr <- srv.Serve(ln)
		}()

		s.logger.Info("dashboard starting", "addr", ln.Addr().String(), "ledger", s.cfg.Ledger)
		fmt.Fprintf(cmd.OutOrStdout(), "Dashboard listening on http://%s\n", ln.Addr())
		fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl-C to stop.")

		select {
		case err := <-serveErr:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return out.Fail(WrapExitError(ExitCommandError, "dashboard error", err))
			}
		case <-ctx.Done():
		}

		shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
		defer done()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("dashboard shutdown failed", "error", err)
		}

		s.logger.Info("dashboard stopped gracefully")
		return nil
	})
}
