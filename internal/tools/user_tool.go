// Package tools implements the actions the tool-calling agent may
// invoke: user directory lookups, order listing and checkout, and
// catalogue search/recommendation.
package tools

import (
	"context"
	"fmt"
	"strings"

	"intellicart-assistant-be/internal/client"
	"intellicart-assistant-be/pkg/agent"
)

const userToolSchema = `{"name":"userTool","description":"User directory","parameters":{"type":"object","properties":{"action":{"type":"string","enum":["listUsers","getUser","resolveUserByName"]},"userId":{"type":"integer"},"username":{"type":"string"}},"required":["action"]}}`

type UserTool struct {
	users client.IUserClient
}

var _ agent.Tool = &UserTool{}

func NewUserTool(users client.IUserClient) *UserTool {
	return &UserTool{users: users}
}

func (t *UserTool) Schema() string { return userToolSchema }

func (t *UserTool) Handle(ctx context.Context, action string, args map[string]interface{}, session *agent.ToolSession) agent.Result {
	switch action {
	case "listUsers":
		users, err := t.users.ListRaw(ctx)
		if err != nil {
			return agent.Err("user-service unreachable: " + err.Error())
		}
		return agent.OK(map[string]interface{}{"users": users})

	case "getUser":
		id, ok := argInt64(args, "userId")
		if !ok {
			return agent.Err("userId is required")
		}
		user, err := t.users.Get(ctx, id)
		if err != nil {
			return agent.Err("user-service unreachable: " + err.Error())
		}
		return agent.OK(map[string]interface{}{"user": user})

	case "resolveUserByName":
		name, _ := args["username"].(string)
		if strings.TrimSpace(name) == "" {
			return agent.Err("username is required")
		}
		user, err := t.users.ResolveByName(ctx, name)
		if err != nil {
			return agent.Err("user-service unreachable: " + err.Error())
		}
		if user == nil {
			return agent.OK(map[string]interface{}{"match": nil})
		}
		// Remember the resolved user so later order actions can omit it.
		session.UserID = user.ID
		return agent.OK(map[string]interface{}{"match": map[string]interface{}{
			"id":    user.ID,
			"name":  user.DisplayName(),
			"email": user.Email,
		}})

	default:
		return agent.Err(fmt.Sprintf("unsupported user action: %s", action))
	}
}

// argInt64 reads an integer argument that may arrive as a JSON number
// or a numeric string.
func argInt64(args map[string]interface{}, key string) (int64, bool) {
	switch v := args[key].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case string:
		var out int64
		if _, err := fmt.Sscanf(strings.TrimSpace(v), "%d", &out); err == nil {
			return out, true
		}
	}
	return 0, false
}
