package controller

import (
	"intellicart-assistant-be/internal/dto"
	"intellicart-assistant-be/internal/pkg/serverutils"
	"intellicart-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAgentController interface {
	RegisterRoutes(r fiber.Router)
	Chat(ctx *fiber.Ctx) error
}

type agentController struct {
	agentService service.IAgentService
}

func NewAgentController(agentService service.IAgentService) IAgentController {
	return &agentController{
		agentService: agentService,
	}
}

func (c *agentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/agent")
	h.Post("chat", c.Chat)
}

func (c *agentController) Chat(ctx *fiber.Ctx) error {
	var req dto.AgentChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	sessionID := ctx.Get(sessionHeader)
	if sessionID == "" {
		sessionID = "default"
	}

	res, err := c.agentService.HandleChat(ctx.Context(), sessionID, req.Message)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}
