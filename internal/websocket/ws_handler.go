package websocket

import (
	"net/http"
	"net/url"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Server upgrades HTTP requests into post room subscriptions
type Server struct {
	hub      *Hub
	upgrader websocket.Upgrader
}

// NewServer accepts connections from allowedOrigins only. Requests without
// an Origin header (non-browser clients) are let through.
func NewServer(hub *Hub, allowedOrigins []string) *Server {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &Server{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || allowed["*"] {
					return true
				}
				if u, err := url.Parse(origin); err == nil && u.Host == r.Host {
					return true
				}
				return allowed[origin]
			},
		},
	}
}

// ServeRoom subscribes the connection to room until either side closes it
func (s *Server) ServeRoom(w http.ResponseWriter, r *http.Request, room string) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.L().Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	client := NewClient(s.hub, conn, room)
	if !s.hub.Register(client) {
		conn.Close()
		return
	}
	go client.Start()
}
