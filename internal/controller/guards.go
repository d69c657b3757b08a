package controller

import (
	"strconv"

	"leadflow-be/internal/entity"
	"leadflow-be/internal/pkg/serverutils"
	"leadflow-be/internal/service"
	"leadflow-be/pkg/apperr"

	"github.com/gofiber/fiber/v2"
)

// Guards are the route middlewares shared by the controllers.
type Guards struct {
	tokens    *serverutils.TokenManager
	providers service.IProviderService
}

func NewGuards(tokens *serverutils.TokenManager, providers service.IProviderService) *Guards {
	return &Guards{tokens: tokens, providers: providers}
}

func (g *Guards) Admin() []fiber.Handler {
	return []fiber.Handler{g.tokens.Middleware(entity.RoleAdmin)}
}

// Provider authenticates a provider and rejects deactivated accounts.
func (g *Guards) Provider() []fiber.Handler {
	return []fiber.Handler{g.tokens.Middleware(entity.RoleProvider), g.providerAccess(false)}
}

// Subscribed is layered on provider lead routes.
func (g *Guards) Subscribed() fiber.Handler {
	return g.providerAccess(true)
}

func (g *Guards) Authenticated() fiber.Handler {
	return g.tokens.Middleware(entity.RoleAdmin, entity.RoleProvider)
}

func (g *Guards) providerAccess(requireSubscription bool) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		p, err := serverutils.PrincipalFrom(ctx)
		if err != nil {
			return err
		}
		if err := g.providers.CheckAccess(ctx.UserContext(), p.Id, requireSubscription); err != nil {
			return err
		}
		return ctx.Next()
	}
}

func parseBody(ctx *fiber.Ctx, req interface{}) error {
	if err := ctx.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	return serverutils.ValidateRequest(req)
}

func parseQuery(ctx *fiber.Ctx, req interface{}) error {
	if err := ctx.QueryParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query parameters")
	}
	return serverutils.ValidateRequest(req)
}

// idParam reads a positive numeric route id. Anything else is a 404.
func idParam(ctx *fiber.Ctx, what string) (uint, error) {
	id, err := strconv.ParseUint(ctx.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.NotFound(what)
	}
	return uint(id), nil
}
