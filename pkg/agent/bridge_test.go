package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"intellicart-assistant-be/pkg/llm"
	"intellicart-assistant-be/pkg/store"
)

// scriptedProvider returns queued replies, one per Generate call.
type scriptedProvider struct {
	replies []string
	err     error
	calls   int
	prompts []string
}

func (p *scriptedProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return "", nil
}

func (p *scriptedProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	p.prompts = append(p.prompts, prompt)
	if p.err != nil {
		return "", p.err
	}
	if p.calls >= len(p.replies) {
		return "", errors.New("no scripted reply left")
	}
	reply := p.replies[p.calls]
	p.calls++
	return reply, nil
}

// countingTool records invocations and returns a fixed result.
type countingTool struct {
	name    string
	result  Result
	handled int
	lastAct string
}

func (t *countingTool) Handle(ctx context.Context, action string, args map[string]interface{}, session *ToolSession) Result {
	t.handled++
	t.lastAct = action
	return t.result
}

func (t *countingTool) Schema() string {
	return `{"name":"` + t.name + `"}`
}

func transcript(msgs ...string) []store.Turn {
	out := make([]store.Turn, len(msgs))
	for i, m := range msgs {
		out[i] = store.Turn{Role: "user", Content: m}
	}
	return out
}

func TestChatDirectAnswer(t *testing.T) {
	provider := &scriptedProvider{replies: []string{"Hi! Ask me about books."}}
	tool := &countingTool{name: "userTool", result: OK(nil)}
	b := NewBridge(provider, NewRouter(map[string]Tool{"userTool": tool}), "sys", "style", nil)

	reply := b.Chat(context.Background(), transcript("hello"), &ToolSession{})
	if reply.Text != "Hi! Ask me about books." {
		t.Errorf("text = %q", reply.Text)
	}
	if reply.ToolUsed != "" {
		t.Errorf("toolUsed = %q, want empty", reply.ToolUsed)
	}
	if tool.handled != 0 {
		t.Errorf("tool ran %d times, want 0", tool.handled)
	}
	if provider.calls != 1 {
		t.Errorf("provider calls = %d, want 1", provider.calls)
	}
}

func TestChatTwoPassToolCall(t *testing.T) {
	provider := &scriptedProvider{replies: []string{
		`TOOL_CALL: {"name":"userTool","args":{"action":"listUsers"}}`,
		"Here are the users: alice and bob.",
	}}
	tool := &countingTool{name: "userTool", result: OK(map[string]interface{}{"users": []string{"alice", "bob"}})}
	b := NewBridge(provider, NewRouter(map[string]Tool{"userTool": tool}), "sys", "style", nil)

	reply := b.Chat(context.Background(), transcript("who are the users?"), &ToolSession{})
	if reply.Text != "Here are the users: alice and bob." {
		t.Errorf("text = %q", reply.Text)
	}
	if reply.ToolUsed != "userTool" {
		t.Errorf("toolUsed = %q", reply.ToolUsed)
	}
	if tool.handled != 1 || tool.lastAct != "listUsers" {
		t.Errorf("tool handled=%d action=%q", tool.handled, tool.lastAct)
	}
	if provider.calls != 2 {
		t.Errorf("provider calls = %d, want 2", provider.calls)
	}
	if !strings.Contains(provider.prompts[1], "tool responded") {
		t.Errorf("pass 2 prompt missing tool result section")
	}
}

func TestChatShortCircuitSkipsSecondPass(t *testing.T) {
	provider := &scriptedProvider{replies: []string{
		`TOOL_CALL: {"name":"recommend_books","args":{"action":"recommend","preference":"sci-fi"}}`,
	}}
	tool := &countingTool{
		name:   "recommend_books",
		result: OK(map[string]interface{}{"text": "Please choose a book (1-2):\n1. Dune\n2. Foundation"}),
	}
	b := NewBridge(provider, NewRouter(map[string]Tool{"recommend_books": tool}), "sys", "style", nil)

	reply := b.Chat(context.Background(), transcript("recommend sci-fi"), &ToolSession{})
	if !strings.HasPrefix(reply.Text, "Please choose a book (1-2):") {
		t.Errorf("text = %q", reply.Text)
	}
	if provider.calls != 1 {
		t.Errorf("provider calls = %d, want 1 (short-circuit)", provider.calls)
	}
	if reply.ToolUsed != "recommend_books" {
		t.Errorf("toolUsed = %q", reply.ToolUsed)
	}
}

func TestChatShortCircuitJoinsLines(t *testing.T) {
	provider := &scriptedProvider{replies: []string{
		`TOOL_CALL: {"name":"search_catalogue","args":{"action":"search","query":"dune"}}`,
	}}
	tool := &countingTool{
		name:   "search_catalogue",
		result: OK(map[string]interface{}{"lines": []string{"Dune — Frank Herbert", "Dune Messiah — Frank Herbert"}}),
	}
	b := NewBridge(provider, NewRouter(map[string]Tool{"search_catalogue": tool}), "sys", "style", nil)

	reply := b.Chat(context.Background(), transcript("search dune"), &ToolSession{})
	want := "Dune — Frank Herbert\nDune Messiah — Frank Herbert"
	if reply.Text != want {
		t.Errorf("text = %q, want %q", reply.Text, want)
	}
}

func TestChatMalformedToolCall(t *testing.T) {
	provider := &scriptedProvider{replies: []string{`TOOL_CALL: {"name": }`}}
	tool := &countingTool{name: "userTool", result: OK(nil)}
	b := NewBridge(provider, NewRouter(map[string]Tool{"userTool": tool}), "sys", "style", nil)

	reply := b.Chat(context.Background(), transcript("hi"), &ToolSession{})
	if reply.Text != malformedToolReply {
		t.Errorf("text = %q", reply.Text)
	}
	if tool.handled != 0 {
		t.Errorf("tool ran on malformed call")
	}
}

func TestChatUnknownToolIsNotExecuted(t *testing.T) {
	provider := &scriptedProvider{replies: []string{
		`TOOL_CALL: {"name":"nukeTool","args":{"action":"go"}}`,
		"That tool isn't available.",
	}}
	tool := &countingTool{name: "userTool", result: OK(nil)}
	b := NewBridge(provider, NewRouter(map[string]Tool{"userTool": tool}), "sys", "style", nil)

	reply := b.Chat(context.Background(), transcript("hi"), &ToolSession{})
	if tool.handled != 0 {
		t.Errorf("registered tool ran for unknown name")
	}
	if reply.ToolUsed != "nukeTool" {
		t.Errorf("toolUsed = %q", reply.ToolUsed)
	}
	if reply.Result == nil || reply.Result.OK {
		t.Errorf("expected error result for unknown tool")
	}
	if reply.Text != "That tool isn't available." {
		t.Errorf("text = %q", reply.Text)
	}
}

func TestChatPass1Failure(t *testing.T) {
	provider := &scriptedProvider{err: errors.New("down")}
	b := NewBridge(provider, NewRouter(nil), "sys", "style", nil)

	reply := b.Chat(context.Background(), transcript("hi"), &ToolSession{})
	if reply.Text != "I'm having trouble answering right now. Please try again." {
		t.Errorf("text = %q", reply.Text)
	}
}

func TestChatPass2Failure(t *testing.T) {
	provider := &scriptedProvider{replies: []string{
		`TOOL_CALL: {"name":"userTool","args":{"action":"listUsers"}}`,
	}}
	tool := &countingTool{name: "userTool", result: OK(nil)}
	b := NewBridge(provider, NewRouter(map[string]Tool{"userTool": tool}), "sys", "style", nil)

	reply := b.Chat(context.Background(), transcript("hi"), &ToolSession{})
	if reply.Text != "I fetched the data but couldn't compose a reply. Please try again." {
		t.Errorf("text = %q", reply.Text)
	}
	if reply.ToolUsed != "userTool" {
		t.Errorf("toolUsed = %q", reply.ToolUsed)
	}
}
