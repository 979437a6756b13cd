package cmd

import (
	"context"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/nikogura/cv-builder/pkg/config"
	"github.com/nikogura/cv-builder/pkg/export"
	"github.com/nikogura/cv-builder/pkg/llm"
	"github.com/nikogura/cv-builder/pkg/server"
	"github.com/nikogura/cv-builder/pkg/summary"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

//nolint:gochecknoglobals // Cobra boilerplate
var serveAddr string

//nolint:gochecknoglobals // Cobra boilerplate
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the CV form with live preview",
	Long: `Serve the CV form, live preview, PDF download and summary generation over HTTP.

Each browser visit to / starts a new in-memory session. Nothing is persisted.
Summary generation is enabled only when an Anthropic API key is configured.

Example:
  cv-builder serve
  cv-builder serve --addr :8080 -v`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) (err error) {
	var cfg config.Config
	cfg, err = loadConfig()
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Log.Level)

	deps := server.Deps{
		Exporter:          export.NewExporter(export.NewPlaywrightRasterizer(), cfg.Margin(), cfg.Export.OutputDir),
		GenerationTimeout: cfg.GenerationTimeout(),
		SessionTTL:        cfg.SessionTTL(),
		DefaultLanguage:   cfg.Defaults.Language,
		DefaultTemplate:   cfg.Defaults.Template,
		Logger:            logger,
	}

	deps.Registry, err = newRegistry(cfg)
	if err != nil {
		return err
	}

	deps.Generator = newGenerator(cfg)
	if deps.Generator == nil {
		logger.Warn("no Anthropic API key configured, summary generation disabled")
	}

	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	web := server.New(deps)
	srv := &http.Server{
		Addr:              addr,
		Handler:           web.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		// Open event streams end when the process is told to stop.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("listening", "addr", addr)
		serveErr := srv.ListenAndServe()
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			return errors.Wrap(serveErr, "server error")
		}
		return nil
	})

	g.Go(func() error {
		return web.ExpireSessions(gCtx)
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	return err
}

// newGenerator returns the Claude-backed summary generator, or nil when no API
// key is configured.
func newGenerator(cfg config.Config) (gen summary.Generator) {
	if cfg.ValidateGeneration() != nil {
		return gen
	}
	gen = llm.NewClient(cfg.AnthropicAPIKey, cfg.GetGenerationModel())
	return gen
}
