package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/DewclawArchery/teri-gateway/internal/chat"
	"github.com/DewclawArchery/teri-gateway/internal/config"
	"github.com/DewclawArchery/teri-gateway/internal/llm"
	"github.com/DewclawArchery/teri-gateway/internal/prompt"
	"github.com/DewclawArchery/teri-gateway/internal/redact"
	"github.com/DewclawArchery/teri-gateway/internal/server"
	"github.com/DewclawArchery/teri-gateway/internal/telemetry"
	"github.com/DewclawArchery/teri-gateway/internal/wordpress"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the assistant gateway HTTP server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "HTTP server port (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.RequireGatewayKey(); err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}

	var redactOpts []redact.Option
	if cfg.RedactPatternsFile != "" {
		redactOpts = append(redactOpts, redact.WithOverrideFile(cfg.RedactPatternsFile))
	}
	redactor, err := redact.NewRedactor(redactOpts...)
	if err != nil {
		return fmt.Errorf("loading redaction patterns: %w", err)
	}

	provider := llm.NewGatewayProvider(cfg.GatewayAPIKey, cfg.GatewayURL)
	controller := llm.NewFallbackController(provider, llm.ControllerConfig{
		PrimaryModel:    cfg.Model,
		FallbackModel:   cfg.FallbackModel,
		PrimaryTimeout:  cfg.Timeout,
		FallbackTimeout: cfg.FallbackTimeout,
		Temperature:     float32(cfg.Temperature),
		MaxTokens:       cfg.MaxTokens,
	})

	telemetryOpts := []telemetry.LoggerOption{}
	if cfg.TelemetryURL != "" {
		telemetryOpts = append(telemetryOpts, telemetry.WithSink(cfg.TelemetryURL, cfg.TelemetrySecret))
	}
	var eventStore *telemetry.Store
	if dbPath := cfg.EventsDBPath(); dbPath != "" {
		if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
		eventStore, err = telemetry.NewStore(dbPath)
		if err != nil {
			return fmt.Errorf("opening event store: %w", err)
		}
		defer eventStore.Close()
		telemetryOpts = append(telemetryOpts, telemetry.WithStore(eventStore))
	}
	telemetryLogger := telemetry.NewLogger(cfg.LoggingEnabled, telemetryOpts...)
	defer telemetryLogger.Close()

	pipeline := chat.NewPipeline(chat.PipelineConfig{
		Redactor:  redactor,
		Generator: controller,
		Telemetry: telemetryLogger,
		Links: prompt.OpsLinks{
			Booking: cfg.OpsBookingURL,
			Orders:  cfg.OpsOrdersURL,
			Leagues: cfg.OpsLeaguesURL,
		},
		MaxHistory: cfg.MaxHistory,
	})

	opts := []server.Option{
		server.WithCORSOrigins([]string{"*"}),
	}
	if cfg.WordPressURL != "" {
		opts = append(opts, server.WithWordPress(wordpress.NewClient(cfg.WordPressURL)))
	}
	if eventStore != nil {
		opts = append(opts, server.WithEventStore(eventStore))
	}
	if cfg.RateLimitRPM > 0 {
		// Per-visitor budget from config, global at 20x to protect the
		// upstream token spend.
		opts = append(opts, server.WithRateLimiter(server.NewRateLimiter(cfg.RateLimitRPM*20, cfg.RateLimitRPM)))
	}
	if len(cfg.AdminAPIKeys) == 0 {
		log.Warn().Msg("TERI_ADMIN_API_KEYS not set — admin endpoints will return 401")
	} else {
		opts = append(opts, server.WithAdminKeys(cfg.AdminAPIKeys))
	}

	srv := server.NewServer(pipeline, opts...)

	addr := fmt.Sprintf(":%d", cfg.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info().
		Str("addr", addr).
		Str("model", cfg.Model).
		Str("fallback_model", cfg.FallbackModel).
		Bool("telemetry", cfg.LoggingEnabled).
		Bool("event_store", eventStore != nil).
		Msg("teri_serve_started")

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown_signal_received")
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("server_stopped")
	return nil
}
