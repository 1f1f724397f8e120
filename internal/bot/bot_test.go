package bot

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"cryptoassist/internal/analyzer"
	"cryptoassist/internal/market"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chatID int64 = 4242

func command(text string) tgbotapi.Update {
	length := strings.IndexByte(text, ' ')
	if length < 0 {
		length = len(text)
	}
	return tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 7,
		Text:      text,
		Chat:      &tgbotapi.Chat{ID: chatID},
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}},
	}}
}

func text(s string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{MessageID: 8, Text: s, Chat: &tgbotapi.Chat{ID: chatID}}}
}

func newTestBot(m *fakeMarket, a *fakeAgent, dev bool) (*Bot, *fakeSender) {
	sender := &fakeSender{}
	return New(sender, m, a, zerolog.Nop(), dev), sender
}

func TestStart(t *testing.T) {
	m, a := &fakeMarket{}, &fakeAgent{}
	b, sender := newTestBot(m, a, false)

	b.HandleUpdate(context.Background(), command("/start"))

	msgs := sender.messages()
	require.Len(t, msgs, 1)
	msg := msgs[0].(tgbotapi.MessageConfig)
	assert.Equal(t, chatID, msg.ChatID)
	assert.Equal(t, tgbotapi.ModeMarkdown, msg.ParseMode)
	assert.Contains(t, msg.Text, "/analyze")
	assert.Contains(t, msg.Text, "/ask [question]")
	assert.Contains(t, msg.Text, "type a question directly")
	assert.Zero(t, m.calls())
	assert.Empty(t, a.calls())
}

func TestAnalyze(t *testing.T) {
	m := &fakeMarket{
		symbols: []string{"BTCUSDT", "FDUSDUSDT", "ETHUSDT", "SOLUSDT", "XRPUSDT", "DOGEUSDT"},
		prices:  map[string]string{"BTCUSDT": "67012.345", "ETHUSDT": "3500", "SOLUSDT": "150.1", "XRPUSDT": "0.52"},
	}
	a := &fakeAgent{text: "BTC leads the market."}
	b, sender := newTestBot(m, a, false)

	b.HandleUpdate(context.Background(), command("/analyze"))

	assert.Equal(t, []int{5}, m.topCalls)
	assert.Equal(t, []string{"BTCUSDT", "FDUSDUSDT", "ETHUSDT", "SOLUSDT", "XRPUSDT"}, m.priceCalls)
	assert.Equal(t, []string{"BTCUSDT: $67012.35\nETHUSDT: $3500.00\nSOLUSDT: $150.10\nXRPUSDT: $0.52"}, a.calls())
	assert.Equal(t, []string{analyzingMessage, "📈 Market Analysis Result:\nBTC leads the market."}, sender.texts())
}

func TestAnalyze_NoSymbolsStillAsksAgent(t *testing.T) {
	m := &fakeMarket{}
	a := &fakeAgent{text: "Market data unavailable, stay cautious."}
	b, sender := newTestBot(m, a, false)

	b.HandleUpdate(context.Background(), command("/analyze"))

	assert.Equal(t, []string{""}, a.calls())
	texts := sender.texts()
	require.Len(t, texts, 2)
	assert.Equal(t, "📈 Market Analysis Result:\nMarket data unavailable, stay cautious.", texts[1])
}

func TestAnalyze_NoResponse(t *testing.T) {
	a := &fakeAgent{text: analyzer.NoResponse}
	b, sender := newTestBot(&fakeMarket{}, a, false)

	b.HandleUpdate(context.Background(), command("/analyze"))

	assert.Equal(t, []string{analyzingMessage, analyzeFailedMessage}, sender.texts())
}

func TestAnalyze_AgentError(t *testing.T) {
	boom := errors.New("googleapi: Error 503: overloaded")

	b, sender := newTestBot(&fakeMarket{}, &fakeAgent{err: boom}, false)
	b.HandleUpdate(context.Background(), command("/analyze"))
	texts := sender.texts()
	require.Len(t, texts, 2)
	assert.Equal(t, analyzeErrorMessage, texts[1])

	dev, devSender := newTestBot(&fakeMarket{}, &fakeAgent{err: boom}, true)
	dev.HandleUpdate(context.Background(), command("/analyze"))
	assert.Contains(t, devSender.texts()[1], "Error 503: overloaded")
}

func TestAsk_EmptyQuestion(t *testing.T) {
	for _, cmd := range []string{"/ask", "/ask    "} {
		m, a := &fakeMarket{symbols: []string{"BTCUSDT"}}, &fakeAgent{text: "x"}
		b, sender := newTestBot(m, a, false)

		b.HandleUpdate(context.Background(), command(cmd))

		assert.Equal(t, []string{askUsageMessage}, sender.texts())
		assert.Zero(t, m.calls(), "no market calls for %q", cmd)
		assert.Empty(t, a.calls())
	}
}

func TestAsk(t *testing.T) {
	m := &fakeMarket{
		symbols: []string{"BTCUSDT", "ETHUSDT", "USDCUSDT", "SOLUSDT"},
		prices:  map[string]string{"BTCUSDT": "45000.5", "USDCUSDT": "1.0001"},
	}
	a := &fakeAgent{text: "price: $45,000.00! Consider (small) positions."}
	b, sender := newTestBot(m, a, false)

	b.HandleUpdate(context.Background(), command("/ask Should I buy ETH now?"))

	assert.Equal(t, []int{3}, m.topCalls)
	require.Len(t, a.calls(), 1)
	assert.Equal(t, "Should I buy ETH now?\n\nMarket Data: {BTCUSDT: 45000.5, ETHUSDT: n/a, USDCUSDT: 1.0001}", a.calls()[0])

	msgs := sender.messages()
	require.Len(t, msgs, 2)
	placeholder := msgs[0].(tgbotapi.MessageConfig)
	assert.Equal(t, thinkingMessage, placeholder.Text)

	edit := msgs[1].(tgbotapi.EditMessageTextConfig)
	assert.Equal(t, chatID, edit.ChatID)
	assert.Equal(t, 101, edit.MessageID)
	assert.Equal(t, tgbotapi.ModeMarkdownV2, edit.ParseMode)
	assert.Equal(t, "❓ Answer:\nprice: $45,000\\.00\\! Consider \\(small\\) positions\\.", edit.Text)
}

func TestPlainTextIsAQuestion(t *testing.T) {
	m := &fakeMarket{}
	a := &fakeAgent{text: "Yes."}
	b, sender := newTestBot(m, a, false)

	b.HandleUpdate(context.Background(), text("is btc a good hedge?"))

	assert.Equal(t, []string{"is btc a good hedge?\n\nMarket Data: {}"}, a.calls())
	assert.Equal(t, []string{thinkingMessage, "❓ Answer:\nYes\\."}, sender.texts())
}

func TestAsk_AgentErrorIsHidden(t *testing.T) {
	m := &fakeMarket{symbols: []string{"BTCUSDT"}, prices: map[string]string{"BTCUSDT": "1"}}
	a := &fakeAgent{err: errors.New("rpc error: api key leaked-secret invalid")}
	b, sender := newTestBot(m, a, false)

	b.HandleUpdate(context.Background(), command("/ask what now?"))

	texts := sender.texts()
	assert.Equal(t, []string{thinkingMessage, questionFailedMessage}, texts)
	for _, txt := range texts {
		assert.NotContains(t, txt, "leaked-secret")
	}
}

func TestAsk_EditFailure(t *testing.T) {
	a := &fakeAgent{text: "answer"}
	b, sender := newTestBot(&fakeMarket{}, a, false)
	sender.failEdit = true

	b.HandleUpdate(context.Background(), text("hello?"))

	assert.Equal(t, []string{thinkingMessage, "❓ Answer:\nanswer", questionFailedMessage}, sender.texts())
}

func TestAsk_PlaceholderFailureSkipsWork(t *testing.T) {
	m, a := &fakeMarket{symbols: []string{"BTCUSDT"}}, &fakeAgent{text: "x"}
	b, sender := newTestBot(m, a, false)
	sender.failAll = true

	b.HandleUpdate(context.Background(), text("hello?"))

	assert.Zero(t, m.calls())
	assert.Empty(t, a.calls())
	assert.Len(t, sender.messages(), 2)
}

func TestPortfolio(t *testing.T) {
	a := &fakeAgent{text: "Trim DOGE, add ETH."}
	b, sender := newTestBot(&fakeMarket{}, a, false)

	b.HandleUpdate(context.Background(), command("/portfolio"))
	b.HandleUpdate(context.Background(), command("/portfolio 70% DOGE, 30% BTC"))

	assert.Equal(t, []string{"70% DOGE, 30% BTC"}, a.calls())
	assert.Equal(t, []string{portfolioUsageMessage, "💼 Portfolio Insight:\nTrim DOGE, add ETH."}, sender.texts())
}

func TestGainers(t *testing.T) {
	m := &fakeMarket{gainers: []market.Ticker{
		{Symbol: "PEPEUSDT", LastPrice: decimal.RequireFromString("0.0000123"), PriceChangePercent: decimal.RequireFromString("12.4")},
		{Symbol: "SOLUSDT", LastPrice: decimal.RequireFromString("150.75"), PriceChangePercent: decimal.RequireFromString("9.8")},
	}}
	b, sender := newTestBot(m, &fakeAgent{}, false)

	b.HandleUpdate(context.Background(), command("/gainers"))

	assert.Equal(t, []string{"🚀 Top 24h gainers:\nPEPEUSDT: $0.0000123 (+12.40%)\nSOLUSDT: $150.75 (+9.80%)"}, sender.texts())
}

func TestGainers_Unavailable(t *testing.T) {
	b, sender := newTestBot(&fakeMarket{}, &fakeAgent{}, false)
	b.HandleUpdate(context.Background(), command("/gainers"))
	assert.Equal(t, []string{gainersFailedMessage}, sender.texts())
}

func TestUnknownCommandAndIgnoredUpdates(t *testing.T) {
	b, sender := newTestBot(&fakeMarket{}, &fakeAgent{}, false)

	b.HandleUpdate(context.Background(), command("/moon"))
	b.HandleUpdate(context.Background(), text(""))
	b.HandleUpdate(context.Background(), tgbotapi.Update{})

	assert.Equal(t, []string{unknownCommandMessage}, sender.texts())
}

func TestRun_DispatchesUntilChannelCloses(t *testing.T) {
	a := &fakeAgent{text: "ok"}
	b, sender := newTestBot(&fakeMarket{}, a, false)

	updates := make(chan tgbotapi.Update, 3)
	updates <- command("/start")
	updates <- text("first?")
	updates <- text("second?")
	close(updates)

	done := make(chan error, 1)
	go func() { done <- b.Run(context.Background(), updates) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after the channel closed")
	}

	assert.Len(t, a.calls(), 2)
	assert.Len(t, sender.messages(), 5)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	b, _ := newTestBot(&fakeMarket{}, &fakeAgent{}, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, b.Run(ctx, make(chan tgbotapi.Update)))
}
