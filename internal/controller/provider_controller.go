package controller

import (
	"leadflow-be/internal/dto"
	"leadflow-be/internal/pkg/serverutils"
	"leadflow-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IProviderController interface {
	RegisterAdminRoutes(r fiber.Router)
	RegisterProviderRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	UpdateSubscription(ctx *fiber.Ctx) error
	SubscriptionStatus(ctx *fiber.Ctx) error
}

type providerController struct {
	service service.IProviderService
}

func NewProviderController(service service.IProviderService) IProviderController {
	return &providerController{service: service}
}

func (c *providerController) RegisterAdminRoutes(r fiber.Router) {
	h := r.Group("/service-providers")
	h.Get("/", c.List)
	h.Post("/", c.Create)
	h.Get("/:id", c.Show)
	h.Put("/:id", c.Update)
	h.Put("/:id/subscription", c.UpdateSubscription)
}

func (c *providerController) RegisterProviderRoutes(r fiber.Router) {
	r.Get("/subscription/status", c.SubscriptionStatus)
}

func (c *providerController) List(ctx *fiber.Ctx) error {
	var req dto.ProviderListRequest
	if err := parseQuery(ctx, &req); err != nil {
		return err
	}
	res, err := c.service.List(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Service providers", res))
}

func (c *providerController) Show(ctx *fiber.Ctx) error {
	id, err := idParam(ctx, "Service provider")
	if err != nil {
		return err
	}
	res, err := c.service.Show(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Service provider detail", res))
}

func (c *providerController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateProviderRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	res, err := c.service.Create(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Service provider created successfully", res))
}

func (c *providerController) Update(ctx *fiber.Ctx) error {
	id, err := idParam(ctx, "Service provider")
	if err != nil {
		return err
	}
	var req dto.UpdateProviderRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	res, err := c.service.Update(ctx.UserContext(), id, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Service provider updated successfully", res))
}

func (c *providerController) UpdateSubscription(ctx *fiber.Ctx) error {
	id, err := idParam(ctx, "Service provider")
	if err != nil {
		return err
	}
	var req dto.UpdateSubscriptionRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	res, err := c.service.UpdateSubscription(ctx.UserContext(), id, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Subscription updated successfully", res))
}

func (c *providerController) SubscriptionStatus(ctx *fiber.Ctx) error {
	p, err := serverutils.PrincipalFrom(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.SubscriptionStatus(ctx.UserContext(), p.Id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Subscription status", res))
}
