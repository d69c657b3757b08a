package controller

import (
	"leadflow-be/internal/dto"
	"leadflow-be/internal/pkg/serverutils"
	"leadflow-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ILocationController interface {
	RegisterPublicRoutes(r fiber.Router)
	RegisterAdminRoutes(r fiber.Router)
	ShowPublic(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	AssignProviders(ctx *fiber.Ctx) error
}

type locationController struct {
	service service.ILocationService
}

func NewLocationController(service service.ILocationService) ILocationController {
	return &locationController{service: service}
}

func (c *locationController) RegisterPublicRoutes(r fiber.Router) {
	r.Get("/locations/:slug", c.ShowPublic)
}

func (c *locationController) RegisterAdminRoutes(r fiber.Router) {
	h := r.Group("/locations")
	h.Get("/", c.List)
	h.Post("/", c.Create)
	h.Get("/:id", c.Show)
	h.Put("/:id", c.Update)
	h.Delete("/:id", c.Delete)
	h.Post("/:id/assign-providers", c.AssignProviders)
}

func (c *locationController) ShowPublic(ctx *fiber.Ctx) error {
	res, err := c.service.ShowPublic(ctx.UserContext(), ctx.Params("slug"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Location", res))
}

func (c *locationController) List(ctx *fiber.Ctx) error {
	res, err := c.service.List(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Locations", res))
}

func (c *locationController) Show(ctx *fiber.Ctx) error {
	id, err := idParam(ctx, "Location")
	if err != nil {
		return err
	}
	res, err := c.service.Show(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Location detail", res))
}

func (c *locationController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateLocationRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	res, err := c.service.Create(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Location created successfully", res))
}

func (c *locationController) Update(ctx *fiber.Ctx) error {
	id, err := idParam(ctx, "Location")
	if err != nil {
		return err
	}
	var req dto.UpdateLocationRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	res, err := c.service.Update(ctx.UserContext(), id, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Location updated successfully", res))
}

func (c *locationController) Delete(ctx *fiber.Ctx) error {
	id, err := idParam(ctx, "Location")
	if err != nil {
		return err
	}
	if err := c.service.Delete(ctx.UserContext(), id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Location deleted successfully", nil))
}

func (c *locationController) AssignProviders(ctx *fiber.Ctx) error {
	id, err := idParam(ctx, "Location")
	if err != nil {
		return err
	}
	var req dto.AssignProvidersRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	res, err := c.service.AssignProviders(ctx.UserContext(), id, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Service providers assigned successfully", res))
}
