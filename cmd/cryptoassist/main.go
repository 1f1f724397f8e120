package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"cryptoassist/internal/analyzer"
	"cryptoassist/internal/bot"
	"cryptoassist/internal/config"
	"cryptoassist/internal/logging"
	"cryptoassist/internal/market"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const pollTimeoutSeconds = 60

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		envFile  string
		logLevel string
	)

	cmd := &cobra.Command{
		Use:           "cryptoassist",
		Short:         "Telegram assistant for crypto market analysis and investment questions",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), config.Options{EnvFile: envFile}, logLevel)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "path to a .env file (default: search next to the binary, its parent, then the working directory)")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "override LOG_LEVEL (trace, debug, info, warn/warning, error, fatal/critical)")
	return cmd
}

func run(ctx context.Context, out io.Writer, opts config.Options, levelOverride string) error {
	fallback, _ := logging.NewWithWriter(out, "info", true)

	cfg, err := config.Load(opts)
	if err != nil {
		fallback.Error().Err(err).Msg("Failed to load configuration")
		fallback.Info().Msg("Application shutdown complete")
		return err
	}

	level := cfg.LogLevel
	if levelOverride != "" {
		level = levelOverride
	}
	log, err := logging.NewWithWriter(out, level, cfg.DevMode)
	if err != nil {
		fallback.Error().Err(err).Msg("Failed to configure logging")
		fallback.Info().Msg("Application shutdown complete")
		return err
	}

	log.Info().Msg("Starting Crypto Investment Assistant...")
	defer log.Info().Msg("Application shutdown complete")

	if err := serve(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("Application error")
		return err
	}
	return nil
}

func serve(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	log.Info().
		Str("env_file", cfg.EnvFile).
		Interface("config", cfg.Summary()).
		Msg("Environment variables loaded successfully")
	log.Debug().
		Int("max_requests_per_minute", cfg.MaxRequestsPerMinute).
		Int("max_ai_requests_per_hour", cfg.MaxAIRequestsPerHour).
		Dur("cache_ttl", cfg.CacheTTL).
		Bool("enable_cache", cfg.EnableCache).
		Msg("Rate limit and cache settings are not enforced")

	marketClient := market.NewClient(cfg.BinanceAPIURL, cfg.MarketTimeout, log)
	log.Info().Str("base_url", cfg.BinanceAPIURL).Msg("✅ Binance client initialized")

	completer, err := analyzer.NewCompleter(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create %s completer: %w", cfg.AIProvider, err)
	}
	agent := analyzer.NewCryptoAgent(completer, log)
	log.Info().Str("provider", cfg.AIProvider).Msg("✅ Crypto agent initialized")

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return fmt.Errorf("failed to create telegram bot: %w", err)
	}
	telegramBot := bot.New(api, marketClient, agent, log, cfg.DevMode)
	log.Info().Str("username", api.Self.UserName).Msg("✅ Telegram bot initialized")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return telegramBot.Listen(gctx, api, pollTimeoutSeconds)
	})
	if cfg.DigestEnabled() {
		g.Go(func() error {
			return telegramBot.RunDigest(gctx, cfg.ChatID, cfg.DigestCron)
		})
	}

	err = g.Wait()
	if ctx.Err() != nil {
		log.Info().Msg("👋 Exiting gracefully...")
	}
	return err
}
