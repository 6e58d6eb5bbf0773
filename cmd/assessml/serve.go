package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"assessml/internal/httpapi"
	"assessml/internal/registry"
	"assessml/internal/service"
)

type serveOptions struct {
	addr        string
	corsOrigins string
}

func newServeCmd(root *rootOptions) *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Load models and serve the HTTP API",
		Example: "  assessml serve --config configs/assessml.yaml\n" +
			"  ASSESSML_ADDR=:9000 assessml serve",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), root, opts)
		},
	}
	cmd.Flags().StringVar(&opts.addr, "addr", "", "HTTP listen address, e.g. :8000 (overrides config)")
	cmd.Flags().StringVar(&opts.corsOrigins, "cors-origins", "", "Comma-separated allowed CORS origins; enables CORS when set")
	return cmd
}

func runServe(parent context.Context, root *rootOptions, opts *serveOptions) error {
	cfg, err := resolveConfig(root)
	if err != nil {
		return err
	}
	if opts.addr != "" {
		cfg.Addr = opts.addr
	}
	if origins := splitCSV(opts.corsOrigins); len(origins) > 0 {
		cfg.CORS.Enabled = true
		cfg.CORS.AllowedOrigins = origins
	}
	log, err := newLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		return err
	}

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg, err := registry.New(registry.LoadersFromConfig(cfg.Models, log), registry.Options{Logger: &log})
	if err != nil {
		return err
	}
	// Initialize may still be loading on an early signal; stop cancels it and
	// closeModels waits so late-loaded models are released too.
	var initDone <-chan struct{}
	defer func() {
		stop()
		closeModels(initDone, reg, log)
	}()
	svc := service.New(reg, service.Options{Logger: &log})

	httpapi.SetLogger(log)
	httpapi.Apply(cfg)
	httpapi.SetBaseContext(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewMux(svc, reg),
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Bool("swagger", httpapi.SwaggerEnabled()).Msg("assessml listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// /readyz reports loading until this finishes; a degraded registry still serves.
	initDone = initializeAsync(ctx, reg, log)

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown error")
	}
	return nil
}

// initializeAsync runs reg.Initialize in the background. The returned channel
// is closed once Initialize has returned.
func initializeAsync(ctx context.Context, reg *registry.Registry, log zerolog.Logger) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := reg.Initialize(ctx); err != nil {
			log.Warn().Err(err).Str("state", string(reg.State())).Msg("registry initialized with failures")
		}
	}()
	return done
}

// closeModels releases loaded models after a pending Initialize returns. A nil
// initDone means Initialize was never started.
func closeModels(initDone <-chan struct{}, reg io.Closer, log zerolog.Logger) {
	if initDone != nil {
		<-initDone
	}
	if err := reg.Close(); err != nil {
		log.Warn().Err(err).Msg("closing models")
	}
}
