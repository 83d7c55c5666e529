package controller

import (
	"errors"
	"strconv"

	"sysassist-be/internal/dto"
	"sysassist-be/internal/pkg/serverutils"
	"sysassist-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	SendMessage(ctx *fiber.Ctx) error
	ListSessions(ctx *fiber.Ctx) error
	ShowSession(ctx *fiber.Ctx) error
	ClearSession(ctx *fiber.Ctx) error
	SaveChat(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
}

func NewChatController(chatService service.IChatService) IChatController {
	return &chatController{
		chatService: chatService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Use(serverutils.UserEmailMiddleware)
	h.Post("message", c.SendMessage)
	h.Get("sessions", c.ListSessions)
	h.Get("sessions/:id", c.ShowSession)
	h.Post("clear", c.ClearSession)
	h.Post("save", c.SaveChat)
}

func (c *chatController) SendMessage(ctx *fiber.Ctx) error {
	email := ctx.Locals("user_email").(string)

	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.SendMessage(ctx.Context(), email, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success send message", res))
}

func (c *chatController) ListSessions(ctx *fiber.Ctx) error {
	email := ctx.Locals("user_email").(string)

	res, err := c.chatService.ListSessions(ctx.Context(), email)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list sessions", res))
}

func (c *chatController) ShowSession(ctx *fiber.Ctx) error {
	email := ctx.Locals("user_email").(string)

	chatID, err := strconv.ParseInt(ctx.Params("id"), 10, 64)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "chat id must be a number")
	}

	res, err := c.chatService.ShowSession(ctx.Context(), email, chatID)
	if err != nil {
		return err
	}
	if res == nil {
		return fiber.NewError(fiber.StatusNotFound, service.ErrChatNotFound.Error())
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show session", res))
}

func (c *chatController) ClearSession(ctx *fiber.Ctx) error {
	email := ctx.Locals("user_email").(string)

	res, err := c.chatService.ClearSession(ctx.Context(), email)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success clear session", res))
}

func (c *chatController) SaveChat(ctx *fiber.Ctx) error {
	email := ctx.Locals("user_email").(string)

	var req dto.SaveChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.Email = email

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.SaveChat(ctx.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrUnbalancedTranscript) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success save chat", res))
}
