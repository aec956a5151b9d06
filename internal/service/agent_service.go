package service

import (
	"context"
	"strings"

	"intellicart-assistant-be/internal/dto"
	"intellicart-assistant-be/internal/pkg/logger"
	"intellicart-assistant-be/internal/repository/contract"
	"intellicart-assistant-be/pkg/agent"
)

// IAgentService is the freeform tool-calling surface: the model decides
// between answering directly and requesting a tool via a TOOL_CALL line.
type IAgentService interface {
	HandleChat(ctx context.Context, sessionID, message string) (*dto.AgentChatResponse, error)
}

type agentService struct {
	sessions contract.ISessionRepository
	bridge   *agent.Bridge
	logger   logger.ILogger
}

func NewAgentService(sessions contract.ISessionRepository, bridge *agent.Bridge, log logger.ILogger) IAgentService {
	return &agentService{sessions: sessions, bridge: bridge, logger: log}
}

func (s *agentService) HandleChat(ctx context.Context, sessionID, message string) (*dto.AgentChatResponse, error) {
	if sessionID == "" {
		sessionID = "default"
	}

	session := s.sessions.GetOrCreate(sessionID)
	session.AddUserTurn(strings.TrimSpace(message))

	toolSession := &agent.ToolSession{UserID: session.UserID}
	for _, r := range session.Cart {
		toolSession.Cart = append(toolSession.Cart, agent.CartItem{
			BookID:   r.BookID,
			Quantity: 1,
			Price:    r.Price,
		})
	}

	reply := s.bridge.Chat(ctx, session.History, toolSession)

	// Tools mutate the working copy: a resolved user sticks, and a
	// checkout empties the cart.
	session.UserID = toolSession.UserID
	if len(toolSession.Cart) == 0 {
		session.Cart = nil
	}

	session.AddAssistantTurn(reply.Text)
	s.sessions.Save(session)

	if reply.ToolUsed != "" {
		s.logger.Info("agent", "tool dispatched", map[string]interface{}{
			"sessionId": sessionID,
			"tool":      reply.ToolUsed,
		})
	}

	return &dto.AgentChatResponse{
		Answer:    reply.Text,
		ToolUsed:  reply.ToolUsed,
		SessionID: sessionID,
	}, nil
}
