package controller

import (
	"intellicart-assistant-be/internal/dto"
	"intellicart-assistant-be/internal/pkg/serverutils"
	"intellicart-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

const sessionHeader = "X-Session-Id"

type IAssistantController interface {
	RegisterRoutes(r fiber.Router)
	Chat(ctx *fiber.Ctx) error
	Reindex(ctx *fiber.Ctx) error
	Search(ctx *fiber.Ctx) error
	Answer(ctx *fiber.Ctx) error
}

type assistantController struct {
	assistantService service.IAssistantService
	catalogueService service.ICatalogueService
}

func NewAssistantController(assistantService service.IAssistantService, catalogueService service.ICatalogueService) IAssistantController {
	return &assistantController{
		assistantService: assistantService,
		catalogueService: catalogueService,
	}
}

func (c *assistantController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/assistant")
	h.Post("chat", c.Chat)
	h.Post("books/reindex", c.Reindex)
	h.Get("books/search", c.Search)
	h.Get("books/qa", c.Answer)
}

func (c *assistantController) Chat(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	sessionID := ctx.Get(sessionHeader)
	if sessionID == "" {
		sessionID = "default"
	}

	res := c.assistantService.HandleChat(ctx.Context(), sessionID, req.Message, req.ForceRag)
	return ctx.JSON(res)
}

func (c *assistantController) Reindex(ctx *fiber.Ctx) error {
	res, err := c.catalogueService.Reindex(ctx.Context())
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}
	return ctx.JSON(serverutils.SuccessResponse("Success reindex catalogue", res))
}

func (c *assistantController) Search(ctx *fiber.Ctx) error {
	query := ctx.Query("q")
	if query == "" {
		return fiber.NewError(fiber.StatusBadRequest, "query parameter 'q' is required")
	}
	limit := ctx.QueryInt("limit", 5)

	res, err := c.catalogueService.SearchTop(ctx.Context(), query, limit)
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}
	return ctx.JSON(serverutils.SuccessResponse("Success search catalogue", res))
}

func (c *assistantController) Answer(ctx *fiber.Ctx) error {
	question := ctx.Query("q")
	if question == "" {
		return fiber.NewError(fiber.StatusBadRequest, "query parameter 'q' is required")
	}

	res := c.catalogueService.Answer(ctx.Context(), question)
	return ctx.JSON(serverutils.SuccessResponse("Success answer question", res))
}
