package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"intellicart-assistant-be/pkg/llm"
	"intellicart-assistant-be/pkg/store"
)

const malformedToolReply = "Sorry, I couldn't interpret the tool request. Could you rephrase?"

// shortCircuitTools return user-ready text; their output is passed
// through verbatim instead of spending a second completion on it.
var shortCircuitTools = map[string]bool{
	"recommend_books":  true,
	"search_catalogue": true,
}

// Bridge runs the two-pass tool protocol over a plain text model.
// Pass 1 lets the model answer directly or request one tool; pass 2
// composes a reply from the tool result. There are no retries: any
// failure degrades to a fixed user-facing message.
type Bridge struct {
	provider llm.LLMProvider
	router   *Router
	system   string
	style    string
	logger   *log.Logger
}

func NewBridge(provider llm.LLMProvider, router *Router, system, style string, logger *log.Logger) *Bridge {
	if logger == nil {
		logger = log.Default()
	}
	return &Bridge{
		provider: provider,
		router:   router,
		system:   system,
		style:    style,
		logger:   logger,
	}
}

// Reply holds the final answer plus an optional record of the tool
// execution for logging.
type Reply struct {
	Text     string
	ToolUsed string
	Result   *Result
}

// Chat runs one turn. The transcript must already include the latest
// user message.
func (b *Bridge) Chat(ctx context.Context, transcript []store.Turn, session *ToolSession) Reply {
	pass1Prompt := fmt.Sprintf(`%s

%s

You can optionally call a tool to fetch data or act.
Available tools (JSON signatures):
%s

Conversation so far:
%s

Decide ONE of the following:
1) Answer directly in natural language if you have enough info.
2) Or, if you need data/action, output EXACTLY one line:
   TOOL_CALL: {"name":"<toolName>","args":{"action":"...","...":...}}

Rules:
- If you output TOOL_CALL, do NOT add any extra text before/after it.
- Keep args minimal and valid per the tool signature.
- Tool names must match one of the available tools.
- Prefer asking a short clarifying question only if required.`,
		b.system, b.style, b.router.Schemas(), renderTranscript(transcript))

	pass1, err := b.provider.Generate(ctx, pass1Prompt)
	if err != nil {
		b.logger.Printf("[WARN] agent pass 1 failed: %v", err)
		return Reply{Text: "I'm having trouble answering right now. Please try again."}
	}

	decision := Decode(pass1)
	switch decision.Kind {
	case DirectAnswer:
		return Reply{Text: NormalizeNewlines(decision.Text)}

	case Malformed:
		b.logger.Printf("[WARN] model returned malformed TOOL_CALL: %q", strings.TrimSpace(pass1))
		return Reply{Text: malformedToolReply}
	}

	call := decision.Call
	result := b.router.Dispatch(ctx, call, session)

	// Short-circuit: the tool output is already what the user should see.
	if shortCircuitTools[strings.ToLower(call.Name)] {
		return Reply{
			Text:     NormalizeNewlines(readyText(result)),
			ToolUsed: call.Name,
			Result:   &result,
		}
	}

	callJSON, _ := json.Marshal(call)
	pass2Prompt := fmt.Sprintf(`%s

%s

You requested this tool call earlier:
%s

The tool responded with this JSON (do not fabricate other fields):
%s

Compose a concise, friendly reply for the user in plain language, using ONLY the provided tool result.
If the result is an error, explain briefly and suggest one next step.`,
		b.system, b.style, string(callJSON), prettyResult(result))

	pass2, err := b.provider.Generate(ctx, pass2Prompt)
	if err != nil {
		b.logger.Printf("[WARN] agent pass 2 failed: %v", err)
		return Reply{
			Text:     "I fetched the data but couldn't compose a reply. Please try again.",
			ToolUsed: call.Name,
			Result:   &result,
		}
	}

	return Reply{
		Text:     NormalizeNewlines(pass2),
		ToolUsed: call.Name,
		Result:   &result,
	}
}

// readyText flattens a short-circuit tool result into display text.
// List payloads become newline-joined lines.
func readyText(result Result) string {
	if !result.OK {
		return result.Error
	}
	if lines, ok := result.Data["lines"].([]string); ok {
		return strings.Join(lines, "\n")
	}
	if items, ok := result.Data["lines"].([]interface{}); ok {
		parts := make([]string, 0, len(items))
		for _, it := range items {
			if it != nil {
				parts = append(parts, fmt.Sprintf("%v", it))
			}
		}
		return strings.Join(parts, "\n")
	}
	if text, ok := result.Data["text"].(string); ok {
		return text
	}
	raw, _ := json.Marshal(result.Data)
	return string(raw)
}

func prettyResult(r Result) string {
	raw, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Sprintf("{\"ok\": %v, \"error\": %q}", r.OK, r.Error)
	}
	return string(raw)
}

func renderTranscript(transcript []store.Turn) string {
	var sb strings.Builder
	for _, turn := range transcript {
		role := turn.Role
		if role == "" {
			role = "user"
		}
		fmt.Fprintf(&sb, "%s: %s\n", role, turn.Content)
	}
	return strings.TrimSpace(sb.String())
}
