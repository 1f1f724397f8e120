package bot

import (
	"context"
	"fmt"
	"strings"

	"cryptoassist/internal/market"
	"cryptoassist/internal/prompts"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

const (
	analyzeSymbols  = 5
	questionSymbols = 3
	gainersLimit    = 5

	welcomeMessage = "👋 Welcome to the *Crypto Investment Assistant*\n\n" +
		"Commands:\n" +
		"• /analyze - Market analysis\n" +
		"• /ask [question] - Ask investment questions\n" +
		"• /portfolio [holdings] - Portfolio review\n" +
		"• /gainers - Top 24h gainers\n" +
		"• Or type a question directly!"

	analyzingMessage      = "📊 Analyzing the market..."
	analyzeFailedMessage  = "❌ Market analysis failed. Please try again later."
	analyzeErrorMessage   = "⚠️ Error: the market analysis could not be completed."
	askUsageMessage       = "❓ Please ask something after /ask\nExample: /ask Should I buy ETH now?"
	thinkingMessage       = "🤔 Thinking about that..."
	questionFailedMessage = "❌ Could not process your question."
	portfolioUsageMessage = "💼 Please describe your holdings after /portfolio\nExample: /portfolio 50% BTC, 30% ETH, 20% SOL"
	portfolioErrorMessage = "❌ Could not review your portfolio."
	gainersFailedMessage  = "❌ Could not fetch the top gainers right now."
	unknownCommandMessage = "🤷 Unknown command. Send /start to see what I can do."
)

func (b *Bot) handleStart(msg *tgbotapi.Message, log zerolog.Logger) {
	b.reply(msg.Chat.ID, welcomeMessage, tgbotapi.ModeMarkdown, log)
}

func (b *Bot) handleAnalyze(ctx context.Context, msg *tgbotapi.Message, log zerolog.Logger) {
	chatID := msg.Chat.ID
	b.reply(chatID, analyzingMessage, "", log)

	symbols := b.market.GetTopSymbols(ctx, analyzeSymbols)
	quotes := make([]market.Quote, 0, len(symbols))
	for _, symbol := range symbols {
		if quote, ok := b.market.GetPrice(ctx, symbol); ok {
			quotes = append(quotes, quote)
		}
	}

	result, err := b.agent.AnalyzeMarket(ctx, prompts.FormatCoinData(quotes))
	if err != nil {
		log.Error().Err(err).Msg("Market analysis error")
		b.reply(chatID, b.userError(analyzeErrorMessage, err), "", log)
		return
	}
	if result.Empty() {
		b.reply(chatID, analyzeFailedMessage, "", log)
		return
	}
	b.reply(chatID, result.String(), "", log)
}

func (b *Bot) handleAsk(ctx context.Context, msg *tgbotapi.Message, question string, log zerolog.Logger) {
	question = strings.TrimSpace(question)
	if question == "" {
		b.reply(msg.Chat.ID, askUsageMessage, "", log)
		return
	}

	if err := b.processQuestion(ctx, msg.Chat.ID, question, log); err != nil {
		log.Error().Err(err).Msg("Question error")
		b.reply(msg.Chat.ID, b.userError(questionFailedMessage, err), "", log)
	}
}

func (b *Bot) processQuestion(ctx context.Context, chatID int64, question string, log zerolog.Logger) error {
	placeholder, err := b.reply(chatID, thinkingMessage, "", log)
	if err != nil {
		return fmt.Errorf("send placeholder: %w", err)
	}

	marketData := b.marketSnapshot(ctx, b.market.GetTopSymbols(ctx, questionSymbols))

	answer, err := b.agent.AnswerQuestion(ctx, question+"\n\nMarket Data: "+marketData)
	if err != nil {
		return err
	}

	edit := tgbotapi.NewEditMessageText(chatID, placeholder.MessageID, EscapeMarkdownV2(answer.String()))
	edit.ParseMode = tgbotapi.ModeMarkdownV2
	if _, err := b.sender.Send(edit); err != nil {
		return fmt.Errorf("edit placeholder: %w", err)
	}
	return nil
}

// marketSnapshot renders "SYMBOL: price" pairs; failed lookups show n/a.
func (b *Bot) marketSnapshot(ctx context.Context, symbols []string) string {
	pairs := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		price := "n/a"
		if quote, ok := b.market.GetPrice(ctx, symbol); ok {
			price = quote.Price.String()
		}
		pairs = append(pairs, symbol+": "+price)
	}
	return "{" + strings.Join(pairs, ", ") + "}"
}

func (b *Bot) handlePortfolio(ctx context.Context, msg *tgbotapi.Message, holdings string, log zerolog.Logger) {
	holdings = strings.TrimSpace(holdings)
	if holdings == "" {
		b.reply(msg.Chat.ID, portfolioUsageMessage, "", log)
		return
	}

	result, err := b.agent.AnalyzePortfolio(ctx, holdings)
	if err != nil {
		log.Error().Err(err).Msg("Portfolio analysis error")
		b.reply(msg.Chat.ID, b.userError(portfolioErrorMessage, err), "", log)
		return
	}
	if result.Empty() {
		b.reply(msg.Chat.ID, portfolioErrorMessage, "", log)
		return
	}
	b.reply(msg.Chat.ID, result.String(), "", log)
}

func (b *Bot) handleGainers(ctx context.Context, msg *tgbotapi.Message, log zerolog.Logger) {
	gainers := b.market.GetTopGainers(ctx, gainersLimit)
	if len(gainers) == 0 {
		b.reply(msg.Chat.ID, gainersFailedMessage, "", log)
		return
	}
	b.reply(msg.Chat.ID, "🚀 Top 24h gainers:\n"+prompts.FormatGainers(gainers), "", log)
}
