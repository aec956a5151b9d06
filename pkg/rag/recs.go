package rag

import (
	"context"
	"fmt"
	"strings"

	"intellicart-assistant-be/pkg/store"
)

const (
	recBaseID    = 7000
	recBasePrice = 14.99
	recPriceStep = 2.00
	recLimit     = 3
)

// GenerateRecommendations asks the model for three picks matching the
// preference and parses them into typed recommendations. Any model
// failure, refusal, or unparseable output falls back to a static shelf
// keyed off the preference, so the caller always gets something to show.
func (e *Engine) GenerateRecommendations(ctx context.Context, preference string) []*store.Recommendation {
	prompt := fmt.Sprintf(
		"Recommend 3 books for a reader who likes: %s. Format lines as: Title — one-line reason. No extras.",
		preference)

	raw, err := e.provider.Generate(ctx, prompt)
	if err != nil {
		e.logger.Printf("[WARN] recommendation completion failed: %v", err)
		return FallbackRecommendations(preference)
	}

	t := strings.TrimSpace(raw)
	if strings.HasPrefix(t, "{") || strings.HasPrefix(t, "[") || strings.Contains(strings.ToLower(t), `"error"`) {
		return FallbackRecommendations(preference)
	}

	recs := ParseRecommendationText(raw)
	if len(recs) == 0 {
		recs = FallbackRecommendations(preference)
	}
	return recs
}

// ParseRecommendationText turns "Title — reason" lines into typed
// recommendations. Lines that look like JSON, quoted strings, or
// key:value noise are skipped. Parsed items get synthetic ids starting
// at 7000 and a climbing price ladder starting at $14.99.
func ParseRecommendationText(text string) []*store.Recommendation {
	var out []*store.Recommendation
	if text == "" {
		return out
	}

	id := int64(recBaseID)
	price := recBasePrice
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		t := strings.TrimSpace(line)
		if t == "" {
			continue
		}
		if strings.HasPrefix(t, "{") || strings.HasPrefix(t, "[") || strings.HasPrefix(t, `"`) || strings.Contains(t, ":") {
			continue
		}

		title, reason := splitTitleReason(t)
		title = stripListMarker(title)
		if title == "" {
			continue
		}
		if reason == "" {
			reason = "Good fit for your taste."
		}

		out = append(out, store.NewRecommendation(id, title, reason, price))
		id++
		price += recPriceStep
		if len(out) == recLimit {
			break
		}
	}
	return out
}

// splitTitleReason splits on the first em-dash, en-dash or hyphen
// separator surrounded by whitespace.
func splitTitleReason(t string) (string, string) {
	for _, sep := range []string{" — ", " – ", " - "} {
		if i := strings.Index(t, sep); i >= 0 {
			return strings.TrimSpace(t[:i]), strings.TrimSpace(t[i+len(sep):])
		}
	}
	return t, ""
}

// FallbackRecommendations is the static shelf used when the model is
// unavailable or returns garbage. Ids live in distinct 7x00 ranges per
// bucket so tests and logs can tell which path produced them.
func FallbackRecommendations(preference string) []*store.Recommendation {
	p := strings.ToLower(preference)
	if containsAny(p, "sci", "science", "space", "dune") {
		return []*store.Recommendation{
			store.NewRecommendation(7101, "Dune", "Epic politics and prophecy.", 19.99),
			store.NewRecommendation(7102, "Foundation", "Civilization, math, fate.", 17.49),
			store.NewRecommendation(7103, "The Three-Body Problem", "First contact, high stakes.", 18.25),
		}
	}
	if containsAny(p, "fantasy", "wizard", "magic") {
		return []*store.Recommendation{
			store.NewRecommendation(7201, "The Name of the Wind", "A gifted student of arcane arts.", 16.99),
			store.NewRecommendation(7202, "Mistborn", "Heist fantasy with unique magic.", 15.49),
			store.NewRecommendation(7203, "The Lies of Locke Lamora", "Clever rogues, rich worldbuilding.", 18.99),
		}
	}
	return []*store.Recommendation{
		store.NewRecommendation(7301, "Project Hail Mary", "Science-forward, high-stakes adventure.", 19.49),
		store.NewRecommendation(7302, "The Martian", "Witty survival on Mars.", 14.99),
		store.NewRecommendation(7303, "Red Rising", "Uprising in a stratified future.", 17.99),
	}
}

func containsAny(input string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(input, n) {
			return true
		}
	}
	return false
}
