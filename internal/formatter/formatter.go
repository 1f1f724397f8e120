package formatter

import "strings"

type Category int

const (
	MarketAnalysis Category = iota
	Portfolio
	General
)

var stripper = strings.NewReplacer(
	"*", "",
	"_", "",
	"`", "",
	"\\", "",
)

// Label is the header line placed above a reply of the given category.
func Label(c Category) string {
	switch c {
	case MarketAnalysis:
		return "📈 Market Analysis Result:"
	case Portfolio:
		return "💼 Portfolio Insight:"
	default:
		return "❓ Answer:"
	}
}

// Clean drops markdown emphasis and code characters the model tends to emit.
func Clean(text string) string {
	return strings.TrimSpace(stripper.Replace(text))
}

func Format(c Category, text string) string {
	return Label(c) + "\n" + Clean(text)
}
