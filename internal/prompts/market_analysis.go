package prompts

import (
	"fmt"
	"strings"

	"cryptoassist/internal/market"
)

// MarketAnalysisPrompt asks for bullet-point insights on a block of
// "SYMBOL: $price" lines.
func MarketAnalysisPrompt(coinData string) string {
	return fmt.Sprintf(`You are a professional crypto analyst. Analyze the following market data for top-performing coins in the last 24 hours:

%s

Provide concise investment insights in 5-6 bullet points.
Include short-term and long-term potential, risks, and key observations.`, coinData)
}

// PortfolioAnalysisPrompt embeds the user's own description of their holdings.
func PortfolioAnalysisPrompt(portfolio string) string {
	return fmt.Sprintf(`You are a crypto portfolio advisor. Here is the user's current portfolio:

%s

Analyze it and suggest:
- Improvements or rebalancing opportunities
- Risk management tips
- Diversification ideas (if needed)
Be concise and specific.`, portfolio)
}

// GeneralQueryPrompt embeds the user's question verbatim.
func GeneralQueryPrompt(question string) string {
	return fmt.Sprintf(`You are an expert in cryptocurrency and blockchain.

User question:
"%s"

Respond clearly and concisely. If relevant, reference market trends or investor best practices.`, question)
}

// SystemPrompt returns the system instruction shared by every completion.
func SystemPrompt() string {
	return "You are a crypto investment assistant answering inside a Telegram chat. Keep answers brief and plain text. This is not financial advice."
}

func FormatCoinData(quotes []market.Quote) string {
	lines := make([]string, 0, len(quotes))
	for _, q := range quotes {
		lines = append(lines, fmt.Sprintf("%s: $%s", q.Symbol, q.Price.StringFixed(2)))
	}
	return strings.Join(lines, "\n")
}

func FormatGainers(tickers []market.Ticker) string {
	lines := make([]string, 0, len(tickers))
	for _, t := range tickers {
		lines = append(lines, fmt.Sprintf("%s: $%s (%s%%)",
			t.Symbol, t.LastPrice.String(), signed(t.PriceChangePercent.StringFixed(2))))
	}
	return strings.Join(lines, "\n")
}

func signed(s string) string {
	if strings.HasPrefix(s, "-") {
		return s
	}
	return "+" + s
}
