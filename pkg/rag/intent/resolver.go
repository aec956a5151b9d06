// Package intent classifies a conversational turn into one of the
// shopping actions using a strict-JSON model prompt. Classification is
// advisory: any model failure degrades to ActionUnknown and the
// dialogue layer falls back to its own heuristics.
package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"

	"intellicart-assistant-be/pkg/llm"
	"intellicart-assistant-be/pkg/store"
)

// Intent is the parsed result of one classification call.
type Intent struct {
	Action string        `json:"action"`
	Items  []interface{} `json:"items"` // numbers (1..N) or title strings
}

// Action constants
const (
	ActionAddToCart      = "add_to_cart"
	ActionRemoveFromCart = "remove_from_cart"
	ActionCheckout       = "checkout"
	ActionReject         = "reject"
	ActionNewRecs        = "new_recs"
	ActionCompare        = "compare"
	ActionHelp           = "help"
	ActionUnknown        = "unknown"
)

// Resolver performs pure LLM-based intent resolution
type Resolver struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

// NewResolver creates a new intent resolver
func NewResolver(llmProvider llm.LLMProvider, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.Default()
	}
	return &Resolver{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

// Resolve classifies one user turn against the current shelf and cart.
// Never returns an error: the fallback intent is ActionUnknown.
func (r *Resolver) Resolve(ctx context.Context, message string, session *store.Session) *Intent {
	prompt := r.buildPrompt(message, session)

	// Temperature 0 for deterministic output
	response, err := r.llmProvider.Generate(ctx, prompt, llm.WithTemperature(0.0))
	if err != nil {
		r.logger.Printf("[WARN] Intent resolution failed: %v", err)
		return &Intent{Action: ActionUnknown}
	}

	intent, err := r.parseIntent(response)
	if err != nil {
		r.logger.Printf("[WARN] Intent parsing failed, using fallback: %v", err)
		return &Intent{Action: ActionUnknown}
	}

	r.logger.Printf("[INTENT] Resolved: %s (%d items)", intent.Action, len(intent.Items))
	return intent
}

func (r *Resolver) buildPrompt(message string, session *store.Session) string {
	return fmt.Sprintf(`You are a strict intent parser. Output ONLY compact JSON:
{"action":"add_to_cart|remove_from_cart|checkout|reject|new_recs|compare|help|unknown","items":[numberOrTitleOrPref...]}

- "which is best?", "what should I pick?", "your top pick?" -> action "compare"
- If user wants different books, action "new_recs" with a short preference phrase in items (single string).
- If user declines, "reject".
- For adding/removing, items can be numbers (1..N) or titles.
- If unsure, "unknown".

User: "%s"
Recs (1..N): %s
Cart: %s`,
		message, renderRecsShort(session.Recs), renderCartShort(session.Cart))
}

var (
	fenceOpenRe  = regexp.MustCompile("^```[a-zA-Z]*\\s*")
	fenceCloseRe = regexp.MustCompile("\\s*```\\s*$")
)

func (r *Resolver) parseIntent(response string) (*Intent, error) {
	t := strings.TrimSpace(response)
	if strings.HasPrefix(t, "```") {
		t = fenceOpenRe.ReplaceAllString(t, "")
		t = strings.TrimSpace(fenceCloseRe.ReplaceAllString(t, ""))
	}

	jsonContent := extractJSON(t)
	if jsonContent == "" {
		return nil, fmt.Errorf("no JSON found in response")
	}

	var intent Intent
	if err := json.Unmarshal([]byte(jsonContent), &intent); err != nil {
		return nil, fmt.Errorf("JSON unmarshal failed: %w", err)
	}

	intent.Action = strings.ToLower(strings.TrimSpace(intent.Action))
	switch intent.Action {
	case ActionAddToCart, ActionRemoveFromCart, ActionCheckout, ActionReject,
		ActionNewRecs, ActionCompare, ActionHelp:
	default:
		intent.Action = ActionUnknown
	}
	return &intent, nil
}

func extractJSON(response string) string {
	startIdx := strings.Index(response, "{")
	endIdx := strings.LastIndex(response, "}")

	if startIdx == -1 || endIdx == -1 || endIdx <= startIdx {
		return ""
	}

	return response[startIdx : endIdx+1]
}

func renderRecsShort(recs []*store.Recommendation) string {
	var sb strings.Builder
	for i, r := range recs {
		fmt.Fprintf(&sb, "%d) %s", i+1, r.Title)
		if i < len(recs)-1 {
			sb.WriteString("; ")
		}
	}
	return sb.String()
}

func renderCartShort(cart []*store.Recommendation) string {
	if len(cart) == 0 {
		return "(empty)"
	}
	titles := make([]string, len(cart))
	for i, r := range cart {
		titles[i] = r.Title
	}
	return strings.Join(titles, ", ")
}
