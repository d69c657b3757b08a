package realtime

import (
	"fmt"

	"leadflow-be/internal/entity"
	"leadflow-be/internal/pkg/serverutils"
	"leadflow-be/pkg/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// RegisterRoutes mounts GET /ws. The token comes from the bearer header or
// the token query parameter.
func (h *Hub) RegisterRoutes(r fiber.Router, tokens *serverutils.TokenManager) {
	r.Get("/ws", h.upgrade(tokens), websocket.New(h.serve))
}

func (h *Hub) upgrade(tokens *serverutils.TokenManager) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(ctx) {
			return fiber.ErrUpgradeRequired
		}
		token := serverutils.TokenFromRequest(ctx)
		if token == "" {
			return apperr.New(apperr.KindUnauthorized, "Missing token")
		}
		p, err := tokens.Parse(token)
		if err != nil {
			return err
		}
		ctx.Locals("principal", p)
		return ctx.Next()
	}
}

// serve runs for the lifetime of one socket.
func (h *Hub) serve(conn *websocket.Conn) {
	p, _ := conn.Locals("principal").(entity.Principal)
	client := &Client{
		hub:       h,
		conn:      conn,
		SocketId:  newSocketId(),
		Principal: p,
		send:      make(chan []byte, 256),
	}
	if !h.enqueueRegister(client) {
		conn.Close()
		return
	}

	go client.writePump()
	client.readPump()
}

// newSocketId mimics the "123.456" shape dashboards already expect.
func newSocketId() string {
	id := uuid.New()
	a := uint32(id[0])<<16 | uint32(id[1])<<8 | uint32(id[2])
	b := uint32(id[3])<<16 | uint32(id[4])<<8 | uint32(id[5])
	return fmt.Sprintf("%d.%d", a, b)
}
