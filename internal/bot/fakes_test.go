package bot

import (
	"context"
	"errors"
	"sync"

	"cryptoassist/internal/analyzer"
	"cryptoassist/internal/formatter"
	"cryptoassist/internal/market"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
)

type fakeSender struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	nextID   int
	failEdit bool
	failAll  bool
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sent = append(f.sent, c)
	if f.failAll {
		return tgbotapi.Message{}, errors.New("telegram down")
	}
	if _, ok := c.(tgbotapi.EditMessageTextConfig); ok && f.failEdit {
		return tgbotapi.Message{}, errors.New("Bad Request: can't parse entities")
	}
	f.nextID++
	return tgbotapi.Message{MessageID: 100 + f.nextID}, nil
}

func (f *fakeSender) messages() []tgbotapi.Chattable {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tgbotapi.Chattable(nil), f.sent...)
}

func (f *fakeSender) texts() []string {
	var out []string
	for _, c := range f.messages() {
		switch m := c.(type) {
		case tgbotapi.MessageConfig:
			out = append(out, m.Text)
		case tgbotapi.EditMessageTextConfig:
			out = append(out, m.Text)
		}
	}
	return out
}

type fakeMarket struct {
	mu         sync.Mutex
	symbols    []string
	prices     map[string]string
	gainers    []market.Ticker
	priceCalls []string
	topCalls   []int
}

func (f *fakeMarket) GetPrice(_ context.Context, symbol string) (market.Quote, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.priceCalls = append(f.priceCalls, symbol)
	p, ok := f.prices[symbol]
	if !ok {
		return market.Quote{}, false
	}
	return market.Quote{Symbol: symbol, Price: decimal.RequireFromString(p)}, true
}

func (f *fakeMarket) GetTopSymbols(_ context.Context, limit int) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.topCalls = append(f.topCalls, limit)
	if len(f.symbols) > limit {
		return f.symbols[:limit]
	}
	return f.symbols
}

func (f *fakeMarket) GetTopGainers(_ context.Context, limit int) []market.Ticker {
	if len(f.gainers) > limit {
		return f.gainers[:limit]
	}
	return f.gainers
}

func (f *fakeMarket) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.priceCalls) + len(f.topCalls)
}

type fakeAgent struct {
	mu     sync.Mutex
	text   string
	err    error
	inputs []string
}

func (f *fakeAgent) record(input string, c formatter.Category) (analyzer.Reply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, input)
	if f.err != nil {
		return analyzer.Reply{}, f.err
	}
	return analyzer.Reply{Category: c, Text: f.text}, nil
}

func (f *fakeAgent) AnalyzeMarket(_ context.Context, coinData string) (analyzer.Reply, error) {
	return f.record(coinData, formatter.MarketAnalysis)
}

func (f *fakeAgent) AnalyzePortfolio(_ context.Context, portfolio string) (analyzer.Reply, error) {
	return f.record(portfolio, formatter.Portfolio)
}

func (f *fakeAgent) AnswerQuestion(_ context.Context, question string) (analyzer.Reply, error) {
	return f.record(question, formatter.General)
}

func (f *fakeAgent) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.inputs...)
}
