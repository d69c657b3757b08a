package controller

import (
	"leadflow-be/internal/dto"
	"leadflow-be/internal/pkg/serverutils"
	"leadflow-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type INotificationController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	UnreadCount(ctx *fiber.Ctx) error
	MarkAsRead(ctx *fiber.Ctx) error
	MarkAllAsRead(ctx *fiber.Ctx) error
}

type notificationController struct {
	service service.INotificationService
}

func NewNotificationController(service service.INotificationService) INotificationController {
	return &notificationController{service: service}
}

// RegisterRoutes is mounted under both the admin and the provider group;
// the principal decides whose notifications are read.
func (c *notificationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/notifications")
	h.Get("/", c.List)
	h.Get("/unread", c.UnreadCount)
	h.Post("/read-all", c.MarkAllAsRead)
	h.Post("/:id/read", c.MarkAsRead)
}

func (c *notificationController) List(ctx *fiber.Ctx) error {
	p, err := serverutils.PrincipalFrom(ctx)
	if err != nil {
		return err
	}
	var req dto.NotificationListRequest
	if err := parseQuery(ctx, &req); err != nil {
		return err
	}
	res, err := c.service.List(ctx.UserContext(), p, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Notifications", res))
}

func (c *notificationController) UnreadCount(ctx *fiber.Ctx) error {
	p, err := serverutils.PrincipalFrom(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.UnreadCount(ctx.UserContext(), p)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Unread count", res))
}

func (c *notificationController) MarkAsRead(ctx *fiber.Ctx) error {
	p, err := serverutils.PrincipalFrom(ctx)
	if err != nil {
		return err
	}
	if err := c.service.MarkAsRead(ctx.UserContext(), p, ctx.Params("id")); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Notification marked as read", nil))
}

func (c *notificationController) MarkAllAsRead(ctx *fiber.Ctx) error {
	p, err := serverutils.PrincipalFrom(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.MarkAllAsRead(ctx.UserContext(), p)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("All notifications marked as read", res))
}
