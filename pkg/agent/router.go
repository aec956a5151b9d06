package agent

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Router dispatches a parsed tool call to the registered tool by name.
type Router struct {
	tools map[string]Tool
}

func NewRouter(tools map[string]Tool) *Router {
	return &Router{tools: tools}
}

// Dispatch executes the named tool exactly once. Unknown names yield an
// error result without execution.
func (r *Router) Dispatch(ctx context.Context, call Call, session *ToolSession) Result {
	t, ok := r.tools[call.Name]
	if !ok {
		return Err(fmt.Sprintf("unknown tool: %s", call.Name))
	}
	action, _ := call.Args["action"].(string)
	return t.Handle(ctx, action, call.Args, session)
}

// Schemas renders the advertised tool catalog for the first-pass prompt.
func (r *Router) Schemas() string {
	if len(r.tools) == 0 {
		return "(none)"
	}
	var sb strings.Builder
	for _, name := range sortedNames(r.tools) {
		fmt.Fprintf(&sb, "- %s\n", r.tools[name].Schema())
	}
	return sb.String()
}

func sortedNames(tools map[string]Tool) []string {
	names := make([]string, 0, len(tools))
	for n := range tools {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
