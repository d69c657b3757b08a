package controller

import (
	"encoding/json"

	"leadflow-be/internal/dto"
	"leadflow-be/internal/entity"
	"leadflow-be/internal/pkg/serverutils"
	"leadflow-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISettingsController interface {
	RegisterAdminRoutes(r fiber.Router)
	RegisterProviderRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Group(ctx *fiber.Ctx) error
	UpdateGroup(ctx *fiber.Ctx) error
	RealtimeConfig(ctx *fiber.Ctx) error
}

type settingsController struct {
	service service.ISettingsService
}

func NewSettingsController(service service.ISettingsService) ISettingsController {
	return &settingsController{service: service}
}

func (c *settingsController) RegisterAdminRoutes(r fiber.Router) {
	h := r.Group("/settings")
	h.Get("/", c.List)
	h.Get("/group/:group", c.Group)
	h.Put("/group/:group", c.UpdateGroup)
}

func (c *settingsController) RegisterProviderRoutes(r fiber.Router) {
	r.Get("/settings/pusher", c.RealtimeConfig)
}

func (c *settingsController) List(ctx *fiber.Ctx) error {
	res, err := c.service.List(ctx.UserContext(), ctx.Query("group"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Settings", res))
}

// Group returns the group as a key/value object. The pusher group is
// merged over the environment defaults.
func (c *settingsController) Group(ctx *fiber.Ctx) error {
	group := ctx.Params("group")
	if group == entity.SettingGroupPusher {
		return c.RealtimeConfig(ctx)
	}

	settings, err := c.service.List(ctx.UserContext(), group)
	if err != nil {
		return err
	}
	values := make(map[string]json.RawMessage, len(settings))
	for _, s := range settings {
		values[s.Key] = s.Value
	}
	return ctx.JSON(serverutils.SuccessResponse("Settings", values))
}

func (c *settingsController) UpdateGroup(ctx *fiber.Ctx) error {
	var req dto.UpdateSettingsRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	res, err := c.service.UpdateGroup(ctx.UserContext(), ctx.Params("group"), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Settings updated successfully", res))
}

func (c *settingsController) RealtimeConfig(ctx *fiber.Ctx) error {
	res, err := c.service.RealtimeConfig(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Realtime settings", res))
}
