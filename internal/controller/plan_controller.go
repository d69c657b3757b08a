package controller

import (
	"leadflow-be/internal/pkg/serverutils"
	"leadflow-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type PlanController interface {
	RegisterRoutes(api fiber.Router)
}

type planController struct {
	planService service.IPlanService
}

func NewPlanController(planService service.IPlanService) PlanController {
	return &planController{planService: planService}
}

// Plans are public so the provider signup page can render prices.
func (c *planController) RegisterRoutes(api fiber.Router) {
	h := api.Group("/plans")
	h.Get("/", c.List)
	h.Get("/:id", c.Show)
}

func (c *planController) List(ctx *fiber.Ctx) error {
	plans, err := c.planService.ListActive(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Plans retrieved", plans))
}

func (c *planController) Show(ctx *fiber.Ctx) error {
	id, err := idParam(ctx, "Plan")
	if err != nil {
		return err
	}
	plan, err := c.planService.Show(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Plan retrieved", plan))
}
