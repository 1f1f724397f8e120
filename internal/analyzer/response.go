package analyzer

import "strings"

const NoResponse = "No response"

// Response is what a completion backend returned. Some providers fill Text
// directly, others only return candidates.
type Response struct {
	Text       string
	Candidates []Candidate
}

type Candidate struct {
	Parts []string
}

var responseCleaner = strings.NewReplacer("\\", "", "`", "")

// ExtractText picks the reply text in priority order: the direct text when
// it is non-blank, then the first part of the first candidate, then
// NoResponse.
func ExtractText(r Response) string {
	if text := strings.TrimSpace(r.Text); text != "" {
		return cleanResponse(text)
	}
	if len(r.Candidates) > 0 && len(r.Candidates[0].Parts) > 0 {
		return cleanResponse(r.Candidates[0].Parts[0])
	}
	return NoResponse
}

func cleanResponse(text string) string {
	return strings.TrimSpace(responseCleaner.Replace(strings.TrimSpace(text)))
}
