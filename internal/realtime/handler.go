package realtime

import (
	"context"
	"net/http"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/transport"
	"github.com/frahmantamala/leave-management/pkg/logger"
	"github.com/gorilla/websocket"
)

type Authenticator interface {
	CurrentUser(ctx context.Context, accessToken string) (*internal.User, error)
}

type Handler struct {
	*transport.BaseHandler
	Hub      *Hub
	Auth     Authenticator
	upgrader websocket.Upgrader
}

// NewHandler accepts origins the same way the CORS layer does; "*" allows any.
func NewHandler(hub *Hub, auth Authenticator, allowedOrigins []string) *Handler {
	allowAll := len(allowedOrigins) == 0
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}

	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.LoggerWrapper()),
		Hub:         hub,
		Auth:        auth,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowAll || origin == "" || allowed[origin]
			},
		},
	}
}

// ServeWS authenticates during the handshake and joins the caller's rooms.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := h.ExtractTokenFromHeader(r)
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		h.WriteAppError(w, internal.ErrInvalidToken.WithMessage("missing token"))
		return
	}

	user, err := h.Auth.CurrentUser(r.Context(), token)
	if err != nil {
		h.Logger.Warn("ServeWS: handshake rejected", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Logger.Warn("ServeWS: upgrade failed", "error", err, "user_id", user.ID)
		return
	}

	rooms := []string{UserRoom(user.ID)}
	if user.Role != "" {
		rooms = append(rooms, RoleRoom(user.Role))
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer), rooms: rooms}
	h.Hub.join(c)
	h.Logger.Info("realtime client connected", "user_id", user.ID, "rooms", rooms)

	go h.Hub.writePump(c)
	go h.Hub.readPump(c)
}
