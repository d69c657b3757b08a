package serverutils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"leadflow-be/internal/entity"
	"leadflow-be/pkg/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const principalKey = "principal"

// TokenManager issues and verifies the HS256 bearer tokens used by both
// dashboards and the websocket endpoint.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (m *TokenManager) Issue(p entity.Principal) (string, error) {
	now := m.now()
	claims := jwt.MapClaims{
		"user_id": p.Id,
		"role":    string(p.Role),
		"name":    p.Name,
		"iat":     now.Unix(),
		"exp":     now.Add(m.ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *TokenManager) Parse(tokenStr string) (entity.Principal, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil || !token.Valid {
		return entity.Principal{}, apperr.Wrap(apperr.KindUnauthorized, "Invalid token", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return entity.Principal{}, apperr.New(apperr.KindUnauthorized, "Invalid claims")
	}
	id, ok := claims["user_id"].(float64)
	if !ok || id <= 0 {
		return entity.Principal{}, apperr.New(apperr.KindUnauthorized, "Invalid claims")
	}
	role, _ := claims["role"].(string)
	name, _ := claims["name"].(string)
	p := entity.Principal{Role: entity.Role(role), Id: uint(id), Name: name}
	if !p.IsAdmin() && !p.IsProvider() {
		return entity.Principal{}, apperr.New(apperr.KindUnauthorized, "Invalid claims")
	}
	return p, nil
}

// TokenFromRequest reads the bearer header, then the token query parameter
// that browsers use for websocket upgrades.
func TokenFromRequest(ctx *fiber.Ctx) string {
	authHeader := ctx.Get("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	return ctx.Query("token")
}

// Middleware authenticates the request and, when roles are given, requires
// the caller to hold one of them.
func (m *TokenManager) Middleware(roles ...entity.Role) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		tokenStr := TokenFromRequest(ctx)
		if tokenStr == "" {
			return apperr.New(apperr.KindUnauthorized, "Missing token")
		}
		p, err := m.Parse(tokenStr)
		if err != nil {
			return err
		}
		if len(roles) > 0 && !hasRole(p.Role, roles) {
			return apperr.Forbidden("Access denied")
		}

		ctx.Locals("user_id", p.Id)
		ctx.Locals("role", string(p.Role))
		ctx.Locals(principalKey, p)
		return ctx.Next()
	}
}

func hasRole(role entity.Role, allowed []entity.Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

var ErrNoPrincipal = errors.New("no authenticated principal")

func PrincipalFrom(ctx *fiber.Ctx) (entity.Principal, error) {
	p, ok := ctx.Locals(principalKey).(entity.Principal)
	if !ok {
		return entity.Principal{}, apperr.Wrap(apperr.KindUnauthorized, "Unauthenticated", ErrNoPrincipal)
	}
	return p, nil
}
