package bot

import (
	"context"
	"errors"
	"sync"

	"cryptoassist/internal/analyzer"
	"cryptoassist/internal/market"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// Sender is the part of *tgbotapi.BotAPI the handlers use.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type MarketData interface {
	GetPrice(ctx context.Context, symbol string) (market.Quote, bool)
	GetTopSymbols(ctx context.Context, limit int) []string
	GetTopGainers(ctx context.Context, limit int) []market.Ticker
}

type Agent interface {
	AnalyzeMarket(ctx context.Context, coinData string) (analyzer.Reply, error)
	AnalyzePortfolio(ctx context.Context, portfolio string) (analyzer.Reply, error)
	AnswerQuestion(ctx context.Context, question string) (analyzer.Reply, error)
}

// Bot dispatches Telegram updates to command handlers. It holds no
// per-conversation state, so updates from different chats run in parallel.
type Bot struct {
	sender  Sender
	market  MarketData
	agent   Agent
	log     zerolog.Logger
	devMode bool

	wg sync.WaitGroup
}

func New(sender Sender, market MarketData, agent Agent, log zerolog.Logger, devMode bool) *Bot {
	return &Bot{
		sender:  sender,
		market:  market,
		agent:   agent,
		log:     log.With().Str("component", "bot").Logger(),
		devMode: devMode,
	}
}

// Listen long-polls Telegram until ctx is cancelled.
func (b *Bot) Listen(ctx context.Context, api *tgbotapi.BotAPI, pollTimeout int) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeout

	updates := api.GetUpdatesChan(u)
	stop := context.AfterFunc(ctx, api.StopReceivingUpdates)
	defer stop()

	b.log.Info().Str("username", api.Self.UserName).Msg("🚀 Listening for Telegram updates")
	if err := b.Run(ctx, updates); err != nil {
		return err
	}
	if ctx.Err() == nil {
		return errors.New("telegram update channel closed")
	}
	return nil
}

// Run handles each update on its own goroutine and returns once the channel
// closes or ctx is done and every in-flight handler has finished.
func (b *Bot) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) error {
	defer b.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.wg.Add(1)
			go func() {
				defer b.wg.Done()
				b.HandleUpdate(ctx, update)
			}()
		}
	}
}

func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return
	}

	log := b.log.With().Int64("chat_id", msg.Chat.ID).Int("message_id", msg.MessageID).Logger()
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Handler panicked")
		}
	}()

	if msg.IsCommand() {
		log.Debug().Str("command", msg.Command()).Msg("Command received")
		switch msg.Command() {
		case "start":
			b.handleStart(msg, log)
		case "analyze":
			b.handleAnalyze(ctx, msg, log)
		case "ask":
			b.handleAsk(ctx, msg, msg.CommandArguments(), log)
		case "portfolio":
			b.handlePortfolio(ctx, msg, msg.CommandArguments(), log)
		case "gainers":
			b.handleGainers(ctx, msg, log)
		default:
			b.reply(msg.Chat.ID, unknownCommandMessage, "", log)
		}
		return
	}

	if msg.Text == "" {
		return
	}
	b.handleAsk(ctx, msg, msg.Text, log)
}

func (b *Bot) reply(chatID int64, text, parseMode string, log zerolog.Logger) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = parseMode
	msg.DisableWebPagePreview = true

	sent, err := b.sender.Send(msg)
	if err != nil {
		log.Error().Err(err).Msg("❌ Error sending message")
	}
	return sent, err
}

// userError picks what a user sees when a handler fails. Error details are
// only exposed in dev mode.
func (b *Bot) userError(generic string, err error) string {
	if b.devMode && err != nil {
		return generic + "\n" + err.Error()
	}
	return generic
}
