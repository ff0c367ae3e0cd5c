// Package signaling envia ao navegador os avisos de dataset alterado por
// conexões websocket ligadas a uma sessão.
package signaling

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"oitivas-pro/internal/app"
	"oitivas-pro/internal/middleware"
)

const (
	readTimeout  = 60 * time.Second
	pingInterval = 30 * time.Second
	writeTimeout = 10 * time.Second
	sendBuffer   = 16
)

// ControlMessage é um frame do cliente ou a resposta do servidor a ele.
// Avisos de dataset vão como app.Event.
type ControlMessage struct {
	Type string `json:"type"`
}

type client struct {
	conn  *websocket.Conn
	send  chan []byte
	done  chan struct{}
	token string
}

// Hub acompanha as conexões abertas de cada sessão.
type Hub struct {
	upgrader websocket.Upgrader
	log      *logrus.Entry

	mu      sync.RWMutex
	clients map[*client]struct{}
}

func NewHub(log *logrus.Entry) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		log:     log,
		clients: make(map[*client]struct{}),
	}
}

// HandleWebSocket faz upgrade de uma requisição que já traz sessão (ver
// middleware.RequireSession) e envia os eventos até o cliente desconectar.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	a, ok := middleware.FromContext(r.Context())
	if !ok {
		middleware.Unauthorized(w)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Error("❌ Erro upgrade")
		return
	}

	c := &client{
		conn:  conn,
		send:  make(chan []byte, sendBuffer),
		done:  make(chan struct{}),
		token: a.Token(),
	}
	unsubscribe := a.Subscribe(func(ev app.Event) {
		h.enqueue(c, ev)
	})
	h.register(c)

	go h.writeLoop(c)
	h.readLoop(c, a)

	unsubscribe()
	h.unregister(c)
}

func (h *Hub) readLoop(c *client, a *app.App) {
	c.conn.SetReadDeadline(time.Now().Add(readTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	for {
		msgType, message, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(readTimeout))

		if msgType != websocket.TextMessage {
			continue
		}
		var msg ControlMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			h.enqueue(c, ControlMessage{Type: "error"})
			continue
		}
		switch msg.Type {
		case "ping":
			a.Touch()
			h.enqueue(c, ControlMessage{Type: "pong"})
		case "hangup":
			return
		}
	}
}

func (h *Hub) writeLoop(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.conn.Close()
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				c.conn.Close()
				return
			}
		}
	}
}

// enqueue nunca bloqueia quem publica. Cliente lento perde a mensagem; a
// próxima traz a revisão mais nova de qualquer forma.
func (h *Hub) enqueue(c *client, msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case <-c.done:
	case c.send <- data:
	default:
		h.log.Warn("⚠️ Cliente lento, mensagem descartada")
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()
	h.log.WithField("clients", total).Info("🔌 Cliente conectado")
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()

	close(c.done)
	c.conn.Close()
	h.log.Info("🔌 Cliente desconectado")
}

// GetActiveClientsCount retorna o número de conexões abertas.
func (h *Hub) GetActiveClientsCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// CloseSession derruba todas as conexões de token. Usado quando a sessão
// é removida.
func (h *Hub) CloseSession(token string) {
	h.mu.RLock()
	var conns []*websocket.Conn
	for c := range h.clients {
		if c.token == token {
			conns = append(conns, c.conn)
		}
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		conn.Close()
	}
}
