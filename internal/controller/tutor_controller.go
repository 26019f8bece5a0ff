package controller

import (
	"errors"

	"ai-tutoring-be/internal/dto"
	"ai-tutoring-be/internal/pkg/serverutils"
	"ai-tutoring-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ITutorController interface {
	RegisterRoutes(r fiber.Router)
	CreateSession(ctx *fiber.Ctx) error
	GetAllSessions(ctx *fiber.Ctx) error
	GetTurnHistory(ctx *fiber.Ctx) error
	SendTurn(ctx *fiber.Ctx) error
	CompleteSession(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
	GetUsage(ctx *fiber.Ctx) error
}

type tutorController struct {
	tutorService service.ITutorService
}

func NewTutorController(tutorService service.ITutorService) ITutorController {
	return &tutorController{
		tutorService: tutorService,
	}
}

func (c *tutorController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/tutor/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("/session", c.CreateSession)
	h.Get("/sessions", c.GetAllSessions)
	h.Get("/session/:id/history", c.GetTurnHistory)
	h.Post("/turn", c.SendTurn)
	h.Post("/session/:id/complete", c.CompleteSession)
	h.Delete("/session/:id", c.DeleteSession)
	h.Get("/usage", c.GetUsage)
}

func (c *tutorController) CreateSession(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.CreateSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.tutorService.CreateSession(ctx.Context(), userId, &req)
	if err != nil {
		return mapTutorError(err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create tutor session", res))
}

func (c *tutorController) GetAllSessions(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	res, err := c.tutorService.GetAllSessions(ctx.Context(), userId, ctx.Query("status"))
	if err != nil {
		return mapTutorError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get tutor sessions", res))
}

func (c *tutorController) GetTurnHistory(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	sessionId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}

	res, err := c.tutorService.GetTurnHistory(ctx.Context(), userId, sessionId)
	if err != nil {
		return mapTutorError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get turn history", res))
}

func (c *tutorController) SendTurn(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.SendTurnRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.tutorService.SendTurn(ctx.Context(), userId, &req)
	if err != nil {
		return mapTutorError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success send turn", res))
}

func (c *tutorController) CompleteSession(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	sessionId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}

	if err := c.tutorService.CompleteSession(ctx.Context(), userId, sessionId); err != nil {
		return mapTutorError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success complete tutor session", nil))
}

func (c *tutorController) DeleteSession(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	sessionId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}

	req := dto.DeleteSessionRequest{TutorSessionId: sessionId}
	if err := c.tutorService.DeleteSession(ctx.Context(), userId, &req); err != nil {
		return mapTutorError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete tutor session", nil))
}

func (c *tutorController) GetUsage(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	res, err := c.tutorService.GetUsage(ctx.Context(), userId)
	if err != nil {
		return mapTutorError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get usage", res))
}

// mapTutorError translates known service errors to HTTP statuses.
// Governance rejections pass through untouched; the error handler
// middleware knows how to render those.
func mapTutorError(err error) error {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrSessionTerminal):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	default:
		return err
	}
}
