package handler

import (
	"os"

	"ai-tutoring-be/internal/pkg/logger"
	"ai-tutoring-be/internal/pkg/serverutils"
	"ai-tutoring-be/internal/service"
	internalWS "ai-tutoring-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type NotificationHandler struct {
	service *service.NotificationService
	hub     *internalWS.Hub
	logger  logger.ILogger
}

func NewNotificationHandler(service *service.NotificationService, hub *internalWS.Hub, log logger.ILogger) *NotificationHandler {
	return &NotificationHandler{
		service: service,
		hub:     hub,
		logger:  log,
	}
}

func (h *NotificationHandler) RegisterRoutes(r fiber.Router) {
	g := r.Group("/notifications", serverutils.JwtMiddleware)
	g.Get("/", h.GetNotifications)
	g.Get("/unread-count", h.GetUnreadCount)
	g.Post("/:id/read", h.MarkAsRead)
	g.Post("/read-all", h.MarkAllAsRead)
}

// ServeWs upgrades the connection after validating the JWT from the
// query param (browser clients) or the Authorization header.
func (h *NotificationHandler) ServeWs(c *fiber.Ctx) error {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}

	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing token (Query 'token' or Header 'Authorization')"})
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.ErrUnauthorized
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})

	if err != nil || !token.Valid {
		h.logger.Warn("NotificationHandler", "Invalid Token in WS Handshake", map[string]interface{}{"error": err})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token claims"})
	}

	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Token missing user_id"})
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user ID format in token"})
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			internalWS.ServeWs(h.hub, conn, userID)
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

func (h *NotificationHandler) GetNotifications(c *fiber.Ctx) error {
	userID, err := userIDFromLocals(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)

	notifications, total, err := h.service.List(c.Context(), userID, limit, offset)
	if err != nil {
		return err
	}

	return c.JSON(serverutils.SuccessResponse("Success get notifications", fiber.Map{
		"items": notifications,
		"total": total,
	}))
}

func (h *NotificationHandler) GetUnreadCount(c *fiber.Ctx) error {
	userID, err := userIDFromLocals(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	count, err := h.service.UnreadCount(c.Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(serverutils.SuccessResponse("Success get unread count", fiber.Map{"count": count}))
}

func (h *NotificationHandler) MarkAsRead(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid notification id"})
	}

	if err := h.service.MarkAsRead(c.Context(), id); err != nil {
		return err
	}
	return c.JSON(serverutils.SuccessResponse[any]("Notification marked as read", nil))
}

func (h *NotificationHandler) MarkAllAsRead(c *fiber.Ctx) error {
	userID, err := userIDFromLocals(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	if err := h.service.MarkAllAsRead(c.Context(), userID); err != nil {
		return err
	}
	return c.JSON(serverutils.SuccessResponse[any]("All notifications marked as read", nil))
}

func userIDFromLocals(c *fiber.Ctx) (uuid.UUID, error) {
	if uid, ok := c.Locals("user_id").(uuid.UUID); ok {
		return uid, nil
	}
	userIDStr, _ := c.Locals("user_id").(string)
	return uuid.Parse(userIDStr)
}
