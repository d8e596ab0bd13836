package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/DewclawArchery/teri-gateway/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage gateway configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the resolved configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, span := tracer.Start(cmd.Context(), "config.show")
		defer span.End()

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		out := map[string]interface{}{
			"gateway_url":         cfg.GatewayURL,
			"gateway_api_key":     mask(cfg.GatewayAPIKey),
			"model":               cfg.Model,
			"fallback_model":      cfg.FallbackModel,
			"timeout_ms":          cfg.Timeout.Milliseconds(),
			"fallback_timeout_ms": cfg.FallbackTimeout.Milliseconds(),
			"max_history":         cfg.MaxHistory,
			"max_tokens":          cfg.MaxTokens,
			"temperature":         cfg.Temperature,
			"logging_enabled":     cfg.LoggingEnabled,
			"telemetry_url":       cfg.TelemetryURL,
			"telemetry_secret":    mask(cfg.TelemetrySecret),
			"data_dir":            cfg.DataDir,
			"ops_booking_url":     cfg.OpsBookingURL,
			"ops_orders_url":      cfg.OpsOrdersURL,
			"ops_leagues_url":     cfg.OpsLeaguesURL,
			"wordpress_url":       cfg.WordPressURL,
			"admin_api_keys":      fmt.Sprintf("%d configured", len(cfg.AdminAPIKeys)),
			"rate_limit_rpm":      cfg.RateLimitRPM,
			"port":                cfg.Port,
		}

		data, err := yaml.Marshal(out)
		if err != nil {
			return err
		}
		cmd.Print(string(data))
		return nil
	},
}

func mask(secret string) string {
	if secret == "" {
		return "(unset)"
	}
	if len(secret) <= 4 {
		return "****"
	}
	return secret[:2] + "****" + secret[len(secret)-2:]
}

func init() {
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
