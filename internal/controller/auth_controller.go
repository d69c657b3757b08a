package controller

import (
	"leadflow-be/internal/dto"
	"leadflow-be/internal/pkg/serverutils"
	"leadflow-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAuthController interface {
	// RegisterRoutes mounts the public login and signup routes.
	RegisterRoutes(r fiber.Router)
	RegisterProviderRoutes(r fiber.Router)
	AdminLogin(ctx *fiber.Ctx) error
	ProviderLogin(ctx *fiber.Ctx) error
	ProviderRegister(ctx *fiber.Ctx) error
	ProviderUser(ctx *fiber.Ctx) error
	ProviderLogout(ctx *fiber.Ctx) error
}

type authController struct {
	authService     service.IAuthService
	providerService service.IProviderService
}

func NewAuthController(authService service.IAuthService, providerService service.IProviderService) IAuthController {
	return &authController{
		authService:     authService,
		providerService: providerService,
	}
}

func (c *authController) RegisterRoutes(r fiber.Router) {
	r.Post("/admin/login", c.AdminLogin)
	r.Post("/provider/login", c.ProviderLogin)
	r.Post("/provider/register", c.ProviderRegister)
}

func (c *authController) RegisterProviderRoutes(r fiber.Router) {
	r.Get("/user", c.ProviderUser)
	r.Post("/logout", c.ProviderLogout)
}

func (c *authController) AdminLogin(ctx *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	res, err := c.authService.LoginAdmin(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Admin login successful", res))
}

func (c *authController) ProviderLogin(ctx *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	res, err := c.authService.LoginProvider(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Login successful", res))
}

func (c *authController) ProviderRegister(ctx *fiber.Ctx) error {
	var req dto.RegisterProviderRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	res, err := c.authService.RegisterProvider(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Registration successful", res))
}

func (c *authController) ProviderUser(ctx *fiber.Ctx) error {
	p, err := serverutils.PrincipalFrom(ctx)
	if err != nil {
		return err
	}
	res, err := c.providerService.Me(ctx.UserContext(), p.Id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Current provider", res))
}

// ProviderLogout only acknowledges; tokens are stateless and expire on their own.
func (c *authController) ProviderLogout(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse[any]("Logged out successfully", nil))
}
