package controller

import (
	"leadflow-be/internal/dto"
	"leadflow-be/internal/pkg/serverutils"
	"leadflow-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ILeadController interface {
	RegisterPublicRoutes(r fiber.Router)
	// RegisterScopedRoutes mounts the lead routes shared by admins and providers.
	RegisterScopedRoutes(r fiber.Router, guards ...fiber.Handler)
	RegisterAdminRoutes(r fiber.Router)
	Capture(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Reassign(ctx *fiber.Ctx) error
	ListNotes(ctx *fiber.Ctx) error
	AddNote(ctx *fiber.Ctx) error
}

type leadController struct {
	service service.ILeadService
}

func NewLeadController(service service.ILeadService) ILeadController {
	return &leadController{service: service}
}

func (c *leadController) RegisterPublicRoutes(r fiber.Router) {
	r.Post("/leads", c.Capture)
}

func (c *leadController) RegisterScopedRoutes(r fiber.Router, guards ...fiber.Handler) {
	h := r.Group("/leads", guards...)
	h.Get("/", c.List)
	h.Get("/:id", c.Show)
	h.Put("/:id", c.Update)
	h.Get("/:id/notes", c.ListNotes)
	h.Post("/:id/notes", c.AddNote)
}

func (c *leadController) RegisterAdminRoutes(r fiber.Router) {
	r.Put("/leads/:id/reassign", c.Reassign)
	c.RegisterScopedRoutes(r)
}

func (c *leadController) Capture(ctx *fiber.Ctx) error {
	var req dto.CreateLeadRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	res, err := c.service.Capture(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse(res.Message, res))
}

func (c *leadController) List(ctx *fiber.Ctx) error {
	p, err := serverutils.PrincipalFrom(ctx)
	if err != nil {
		return err
	}
	var req dto.LeadListRequest
	if err := parseQuery(ctx, &req); err != nil {
		return err
	}
	res, err := c.service.List(ctx.UserContext(), p, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Leads", res))
}

func (c *leadController) Show(ctx *fiber.Ctx) error {
	p, err := serverutils.PrincipalFrom(ctx)
	if err != nil {
		return err
	}
	id, err := idParam(ctx, "Lead")
	if err != nil {
		return err
	}
	res, err := c.service.Show(ctx.UserContext(), p, id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Lead detail", res))
}

func (c *leadController) Update(ctx *fiber.Ctx) error {
	p, err := serverutils.PrincipalFrom(ctx)
	if err != nil {
		return err
	}
	id, err := idParam(ctx, "Lead")
	if err != nil {
		return err
	}
	var req dto.UpdateLeadRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	res, err := c.service.UpdateStatus(ctx.UserContext(), p, id, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Lead updated successfully", res))
}

func (c *leadController) Reassign(ctx *fiber.Ctx) error {
	p, err := serverutils.PrincipalFrom(ctx)
	if err != nil {
		return err
	}
	id, err := idParam(ctx, "Lead")
	if err != nil {
		return err
	}
	var req dto.ReassignLeadRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	res, err := c.service.Reassign(ctx.UserContext(), p, id, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Lead reassigned successfully", res))
}

func (c *leadController) ListNotes(ctx *fiber.Ctx) error {
	p, err := serverutils.PrincipalFrom(ctx)
	if err != nil {
		return err
	}
	id, err := idParam(ctx, "Lead")
	if err != nil {
		return err
	}
	res, err := c.service.ListNotes(ctx.UserContext(), p, id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Lead notes", res))
}

func (c *leadController) AddNote(ctx *fiber.Ctx) error {
	p, err := serverutils.PrincipalFrom(ctx)
	if err != nil {
		return err
	}
	id, err := idParam(ctx, "Lead")
	if err != nil {
		return err
	}
	var req dto.CreateLeadNoteRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	res, err := c.service.AddNote(ctx.UserContext(), p, id, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Note added successfully", res))
}
