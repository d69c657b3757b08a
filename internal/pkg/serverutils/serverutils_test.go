package serverutils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"leadflow-be/internal/entity"
	"leadflow-be/pkg/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureForm struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone" validate:"required,phone"`
	Email string `json:"email" validate:"required,email"`
}

func TestValidateRequest(t *testing.T) {
	err := ValidateRequest(captureForm{Name: "Jane", Phone: "+1 (555) 010-2030", Email: "jane@example.com"})
	require.NoError(t, err)

	err = ValidateRequest(captureForm{Phone: "call me", Email: "nope"})
	require.Error(t, err)

	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperr.KindValidation, appErr.Kind)
	assert.Equal(t, "The name field is required.", appErr.Fields["name"])
	assert.Equal(t, "The phone format is invalid.", appErr.Fields["phone"])
	assert.Equal(t, "The email must be a valid email address.", appErr.Fields["email"])
}

func TestTokenManager(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)

	token, err := tm.Issue(entity.Principal{Role: entity.RoleProvider, Id: 7, Name: "Acme"})
	require.NoError(t, err)

	p, err := tm.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, entity.Principal{Role: entity.RoleProvider, Id: 7, Name: "Acme"}, p)

	_, err = NewTokenManager("other", time.Hour).Parse(token)
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))

	expired := NewTokenManager("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.Issue(entity.Principal{Role: entity.RoleAdmin, Id: 1})
	require.NoError(t, err)
	_, err = tm.Parse(old)
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
}

func decode(t *testing.T, body io.Reader) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func TestMiddlewareAndErrorHandler(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Use(ErrorHandlerMiddleware())
	admin := app.Group("/admin", tm.Middleware(entity.RoleAdmin))
	admin.Get("/me", func(ctx *fiber.Ctx) error {
		p, err := PrincipalFrom(ctx)
		if err != nil {
			return err
		}
		return ctx.JSON(SuccessResponse("ok", p.Id))
	})
	app.Get("/inactive", func(ctx *fiber.Ctx) error {
		return apperr.New(apperr.KindSubscriptionInactive, "Subscription inactive")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/admin/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	providerToken, _ := tm.Issue(entity.Principal{Role: entity.RoleProvider, Id: 3})
	req := httptest.NewRequest("GET", "/admin/me", nil)
	req.Header.Set("Authorization", "Bearer "+providerToken)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	adminToken, _ := tm.Issue(entity.Principal{Role: entity.RoleAdmin, Id: 9})
	resp, err = app.Test(httptest.NewRequest("GET", "/admin/me?token="+adminToken, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(9), decode(t, resp.Body)["data"])

	resp, err = app.Test(httptest.NewRequest("GET", "/inactive", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	body := decode(t, resp.Body)
	assert.Equal(t, true, body["subscription_inactive"])
	assert.Nil(t, body["account_inactive"])
}
