package agent

import (
	"encoding/json"
	"strings"
)

const toolCallPrefix = "TOOL_CALL:"

// Decision is the typed outcome of a first-pass completion.
type Decision struct {
	Kind DecisionKind

	// Text is set for DirectAnswer.
	Text string

	// Call is set for ToolRequest.
	Call Call
}

type DecisionKind int

const (
	// DirectAnswer: the model answered in natural language.
	DirectAnswer DecisionKind = iota

	// ToolRequest: the model emitted a well-formed TOOL_CALL line.
	ToolRequest

	// Malformed: the model emitted a TOOL_CALL line that does not parse.
	Malformed
)

// Decode classifies a raw first-pass completion. The TOOL_CALL prefix
// is matched before any normalization so that directive detection never
// depends on newline handling.
func Decode(raw string) Decision {
	t := strings.TrimSpace(raw)
	if !strings.HasPrefix(t, toolCallPrefix) {
		return Decision{Kind: DirectAnswer, Text: t}
	}

	payload := strings.TrimSpace(strings.TrimPrefix(t, toolCallPrefix))
	var parsed struct {
		Name string                 `json:"name"`
		Args map[string]interface{} `json:"args"`
	}
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil || strings.TrimSpace(parsed.Name) == "" {
		return Decision{Kind: Malformed}
	}
	args := parsed.Args
	if args == nil {
		args = map[string]interface{}{}
	}
	return Decision{Kind: ToolRequest, Call: Call{Name: parsed.Name, Args: args}}
}

// NormalizeNewlines collapses platform endings and unescapes literal
// backslash-n sequences. Applied exactly once, at the outer boundary.
func NormalizeNewlines(s string) string {
	t := strings.ReplaceAll(s, "\r\n", "\n")
	t = strings.ReplaceAll(t, "\r", "\n")
	t = strings.ReplaceAll(t, `\n`, "\n")
	return strings.TrimSpace(t)
}
