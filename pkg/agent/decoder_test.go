package agent

import (
	"testing"
)

func TestDecodeDirectAnswer(t *testing.T) {
	d := Decode("  Happy to help! What genre do you like?  ")
	if d.Kind != DirectAnswer {
		t.Fatalf("kind = %v", d.Kind)
	}
	if d.Text != "Happy to help! What genre do you like?" {
		t.Errorf("text = %q", d.Text)
	}
}

func TestDecodeToolRequest(t *testing.T) {
	d := Decode(`TOOL_CALL: {"name":"userTool","args":{"action":"listUsers"}}`)
	if d.Kind != ToolRequest {
		t.Fatalf("kind = %v", d.Kind)
	}
	if d.Call.Name != "userTool" {
		t.Errorf("name = %q", d.Call.Name)
	}
	if d.Call.Args["action"] != "listUsers" {
		t.Errorf("args = %v", d.Call.Args)
	}
}

func TestDecodeToolRequestNilArgs(t *testing.T) {
	d := Decode(`TOOL_CALL: {"name":"orderTool"}`)
	if d.Kind != ToolRequest {
		t.Fatalf("kind = %v", d.Kind)
	}
	if d.Call.Args == nil {
		t.Error("args should be an empty map, not nil")
	}
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"broken json", `TOOL_CALL: {"name": "userTool", "args": {`},
		{"missing name", `TOOL_CALL: {"args":{"action":"listUsers"}}`},
		{"blank name", `TOOL_CALL: {"name":"  ","args":{}}`},
		{"no payload", `TOOL_CALL:`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if d := Decode(tt.raw); d.Kind != Malformed {
				t.Errorf("kind = %v, want Malformed", d.Kind)
			}
		})
	}
}

func TestDecodePrefixMustLeadTheReply(t *testing.T) {
	d := Decode(`Sure, I'll do: TOOL_CALL: {"name":"userTool","args":{}}`)
	if d.Kind != DirectAnswer {
		t.Errorf("kind = %v, want DirectAnswer for mid-text directive", d.Kind)
	}
}

func TestNormalizeNewlines(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a\r\nb", "a\nb"},
		{"a\rb", "a\nb"},
		{`line one\nline two`, "line one\nline two"},
		{"  padded  ", "padded"},
	}
	for _, tt := range tests {
		if got := NormalizeNewlines(tt.in); got != tt.want {
			t.Errorf("NormalizeNewlines(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
