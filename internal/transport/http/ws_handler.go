package rest

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/Gunvolt24/shop_backend/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	wsWriteWait      = 10 * time.Second
	wsMaxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Доступ проверяется токеном, а не Origin.
	CheckOrigin: func(*http.Request) bool { return true },
}

// orderEvents — websocket-поток событий заказов пользователя :user_id.
// Токен: Authorization: Bearer или ?token=. Чужой поток доступен только администратору.
func (h *Handler) orderEvents(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("user_id"))
	if userID == "" {
		badRequest(c, "user_id is required")
		return
	}
	if h.subscriber == nil {
		abortError(c, codeInternal, "notifications are disabled")
		return
	}

	principal, ok := principalFrom(c)
	if !ok {
		if token := strings.TrimSpace(c.Query("token")); token != "" {
			p, err := h.auth.Authenticate(c.Request.Context(), token)
			if err != nil {
				h.writeError(c, "ws authenticate", err)
				return
			}
			setPrincipal(c, p)
			principal, ok = p, true
		}
	}

	switch {
	case !ok && h.ws.RequireAuth:
		abortError(c, codeUnauthorized, "authentication required")
		return
	case ok && !principal.CanAccessUser(userID):
		abortError(c, codeForbidden, "notifications of another user")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade сам пишет ответ клиенту
		h.log.Warnf(c.Request.Context(), "ws upgrade failed user_id=%s: %v", userID, err)
		return
	}
	defer conn.Close()

	events, unsubscribe := h.subscriber.Subscribe(userID)
	defer unsubscribe()

	ctx := c.Request.Context()
	h.log.Infof(ctx, "ws subscribed user_id=%s", userID)
	defer h.log.Infof(ctx, "ws unsubscribed user_id=%s", userID)

	done := make(chan struct{})
	go h.readPump(conn, done)
	h.writePump(ctx, conn, events, done)
}

// readPump — читает и отбрасывает сообщения клиента, продлевая дедлайн по pong.
// Завершается при ошибке чтения или истечении PongWait.
func (h *Handler) readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	conn.SetReadLimit(wsMaxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(h.ws.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.ws.PongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump — единственный писатель в соединение: события и ping.
func (h *Handler) writePump(ctx context.Context, conn *websocket.Conn, events <-chan domain.OrderEvent, done <-chan struct{}) {
	ticker := time.NewTicker(h.ws.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case ev, ok := <-events:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				// Хаб закрыт: сервис останавливается
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutdown"))
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				h.log.Debugf(ctx, "ws write failed order_id=%s: %v", ev.OrderID, err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		}
	}
}
