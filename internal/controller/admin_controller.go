package controller

import (
	"leadflow-be/internal/dto"
	"leadflow-be/internal/pkg/serverutils"
	"leadflow-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAdminController interface {
	RegisterRoutes(r fiber.Router)
	GetDashboard(ctx *fiber.Ctx) error
	GetLogs(ctx *fiber.Ctx) error
	GetLogDetail(ctx *fiber.Ctx) error
}

type adminController struct {
	analyticsService service.IAnalyticsService
	logService       service.ILogService
}

func NewAdminController(analyticsService service.IAnalyticsService, logService service.ILogService) IAdminController {
	return &adminController{
		analyticsService: analyticsService,
		logService:       logService,
	}
}

// RegisterRoutes expects r to be the admin group, already guarded.
func (c *adminController) RegisterRoutes(r fiber.Router) {
	// Analytics
	r.Get("/analytics/dashboard", c.GetDashboard)

	// Logs
	r.Get("/logs", c.GetLogs)
	r.Get("/logs/:id", c.GetLogDetail)
}

func (c *adminController) GetDashboard(ctx *fiber.Ctx) error {
	var req dto.DashboardRequest
	if err := parseQuery(ctx, &req); err != nil {
		return err
	}
	stats, err := c.analyticsService.Dashboard(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Dashboard stats", stats))
}

func (c *adminController) GetLogs(ctx *fiber.Ctx) error {
	var req dto.LogListRequest
	if err := parseQuery(ctx, &req); err != nil {
		return err
	}
	logs, err := c.logService.List(&req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("System logs", logs))
}

func (c *adminController) GetLogDetail(ctx *fiber.Ctx) error {
	logId := ctx.Params("id") // MD5 of the raw line, not a number

	l, err := c.logService.Show(logId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Log detail", l))
}
