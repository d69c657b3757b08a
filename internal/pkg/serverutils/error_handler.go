package serverutils

import (
	"errors"

	"leadflow-be/pkg/apperr"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler renders err as a BaseResponse. Application errors carry
// their own status, fiber errors keep theirs, anything else is a 500.
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	resp := errorBody(err)
	return ctx.Status(resp.Code).JSON(resp)
}

func errorBody(err error) *BaseResponse[any] {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		resp := ErrorResponse(appErr.Kind.HTTPStatus(), appErr.Message)
		resp.Errors = appErr.Fields
		resp.AccountInactive = appErr.Kind == apperr.KindAccountInactive
		resp.SubscriptionInactive = appErr.Kind == apperr.KindSubscriptionInactive
		if appErr.Kind == apperr.KindInternal {
			resp.Message = "Internal server error"
		}
		return resp
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return ErrorResponse(fiberErr.Code, fiberErr.Message)
	}

	return ErrorResponse(fiber.StatusInternalServerError, "Internal server error")
}

// ErrorHandlerMiddleware converts errors returned by later handlers into
// responses so that route groups behave the same under any fiber.Config.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		return ErrorHandler(ctx, err)
	}
}
