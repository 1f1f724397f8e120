package analyzer

import (
	"context"
	"fmt"
	"time"

	"cryptoassist/internal/formatter"
	"cryptoassist/internal/prompts"

	"github.com/rs/zerolog"
)

// Completer sends one prompt to a hosted model. Implementations must be safe
// for concurrent use.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (Response, error)
}

// Reply is the cleaned model output and the category it is shown under.
type Reply struct {
	Category formatter.Category
	Text     string
}

// Empty reports whether the model produced nothing usable.
func (r Reply) Empty() bool {
	return r.Text == "" || r.Text == NoResponse
}

func (r Reply) String() string {
	return formatter.Format(r.Category, r.Text)
}

type CryptoAgent struct {
	completer Completer
	log       zerolog.Logger
}

func NewCryptoAgent(completer Completer, log zerolog.Logger) *CryptoAgent {
	return &CryptoAgent{
		completer: completer,
		log:       log.With().Str("component", "agent").Logger(),
	}
}

func (a *CryptoAgent) AnalyzeMarket(ctx context.Context, coinData string) (Reply, error) {
	return a.ask(ctx, formatter.MarketAnalysis, prompts.MarketAnalysisPrompt(coinData))
}

func (a *CryptoAgent) AnalyzePortfolio(ctx context.Context, portfolio string) (Reply, error) {
	return a.ask(ctx, formatter.Portfolio, prompts.PortfolioAnalysisPrompt(portfolio))
}

func (a *CryptoAgent) AnswerQuestion(ctx context.Context, question string) (Reply, error) {
	return a.ask(ctx, formatter.General, prompts.GeneralQueryPrompt(question))
}

func (a *CryptoAgent) ask(ctx context.Context, category formatter.Category, prompt string) (Reply, error) {
	start := time.Now()
	resp, err := a.completer.Complete(ctx, prompts.SystemPrompt(), prompt)
	if err != nil {
		return Reply{}, fmt.Errorf("completion failed: %w", err)
	}

	reply := Reply{Category: category, Text: ExtractText(resp)}
	a.log.Debug().
		Dur("took", time.Since(start)).
		Int("prompt_len", len(prompt)).
		Bool("empty", reply.Empty()).
		Msg("Completion received")
	return reply, nil
}
