package bot

import (
	"context"
	"fmt"

	"cryptoassist/internal/prompts"

	"github.com/robfig/cron/v3"
)

// RunDigest posts a gainers digest to chatID on the cron schedule until ctx
// is done.
func (b *Bot) RunDigest(ctx context.Context, chatID int64, spec string) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		b.log.Info().Int64("chat_id", chatID).Msg("🗞 Sending market digest")
		b.SendDigest(ctx, chatID)
	}); err != nil {
		return fmt.Errorf("invalid DIGEST_CRON %q: %w", spec, err)
	}

	c.Start()
	b.log.Info().Str("schedule", spec).Int64("chat_id", chatID).Msg("⏰ Market digest scheduled")

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

func (b *Bot) SendDigest(ctx context.Context, chatID int64) {
	log := b.log.With().Int64("chat_id", chatID).Str("job", "digest").Logger()

	gainers := b.market.GetTopGainers(ctx, gainersLimit)
	if len(gainers) == 0 {
		log.Warn().Msg("📭 No gainers available, skipping digest")
		return
	}

	data := prompts.FormatGainers(gainers)
	text := "🗞 Market digest\n\n🚀 Top 24h gainers:\n" + data

	result, err := b.agent.AnalyzeMarket(ctx, data)
	switch {
	case err != nil:
		log.Error().Err(err).Msg("Digest analysis error")
	case !result.Empty():
		text += "\n\n" + result.String()
	}

	b.reply(chatID, text, "", log)
}
