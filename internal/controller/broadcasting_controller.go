package controller

import (
	"leadflow-be/internal/dto"
	"leadflow-be/internal/pkg/serverutils"
	"leadflow-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IBroadcastingController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	Authorize(ctx *fiber.Ctx) error
}

type broadcastingController struct {
	service service.IBroadcastingService
}

func NewBroadcastingController(service service.IBroadcastingService) IBroadcastingController {
	return &broadcastingController{service: service}
}

func (c *broadcastingController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	r.Post("/broadcasting/auth", auth, c.Authorize)
}

// Authorize accepts JSON or the form encoding browser socket clients send.
func (c *broadcastingController) Authorize(ctx *fiber.Ctx) error {
	p, err := serverutils.PrincipalFrom(ctx)
	if err != nil {
		return err
	}
	var req dto.ChannelAuthRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	res, err := c.service.Authorize(ctx.UserContext(), p, &req)
	if err != nil {
		return err
	}
	// Socket clients read the signature from the top level.
	return ctx.JSON(res)
}
