package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/facturacom/webrouter/internal/errors"
	"github.com/facturacom/webrouter/pkg/middleware"
	"github.com/facturacom/webrouter/pkg/router"
)

// Socket message types.
const (
	messageNavigated = "navigated"
	messageError     = "error"
	messageReloaded  = "reloaded"
)

// navigateRequest is sent by clients over the navigation socket.
// Either Path or Name must be set.
type navigateRequest struct {
	Path    string            `json:"path,omitempty"`
	Name    string            `json:"name,omitempty"`
	Params  map[string]string `json:"params,omitempty"`
	Query   map[string]string `json:"query,omitempty"`
	Replace bool              `json:"replace,omitempty"`
}

// socketMessage is sent to clients over the navigation socket.
type socketMessage struct {
	Type string `json:"type"`

	*NavigationResult

	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Version string `json:"version,omitempty"`
}

// conn is one navigation socket. Writes are serialized because broadcasts
// come from other goroutines.
type conn struct {
	ws           *websocket.Conn
	writeMu      sync.Mutex
	writeTimeout time.Duration
}

func (c *conn) send(msg socketMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// hub tracks open navigation sockets.
type hub struct {
	mu      sync.RWMutex
	clients map[*conn]bool
	logger  *slog.Logger
}

func newHub(logger *slog.Logger) *hub {
	return &hub{
		clients: make(map[*conn]bool),
		logger:  logger,
	}
}

func (h *hub) add(c *conn) {
	h.mu.Lock()
	h.clients[c] = true
	n := len(h.clients)
	h.mu.Unlock()
	middleware.SetActiveSockets(n)
}

func (h *hub) remove(c *conn) {
	h.mu.Lock()
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()
	middleware.SetActiveSockets(n)
}

func (h *hub) count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// broadcast sends msg to every client, dropping clients that fail.
func (h *hub) broadcast(msg socketMessage) {
	h.mu.RLock()
	clients := make([]*conn, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if err := c.send(msg); err != nil {
			h.logger.Debug("socket broadcast failed", "error", err)
			h.remove(c)
			c.ws.Close()
		}
	}
}

func (h *hub) close() {
	h.mu.Lock()
	for c := range h.clients {
		c.ws.Close()
		delete(h.clients, c)
	}
	h.mu.Unlock()
	middleware.SetActiveSockets(0)
}

// handleSocket upgrades to a navigation socket. Each connection has its own
// navigator whose title sink is the connection's TitleSlot.
func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("socket upgrade failed", "error", err)
		return
	}
	ws.SetReadLimit(s.config.MaxMessageSize)

	c := &conn{ws: ws, writeTimeout: s.config.WriteTimeout}
	s.hub.add(c)
	defer func() {
		s.hub.remove(c)
		ws.Close()
	}()

	slot := router.NewTitleSlot(s.Table().DefaultTitle())
	nav := s.newNavigator(slot)
	logger := s.logger.With("request_id", middleware.RequestIDFromContext(r.Context()))
	logger.Debug("socket connected")

	ctx := r.Context()

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("socket closed", "error", err)
			}
			return
		}

		reply := s.navigateSocket(ctx, nav, data)
		if err := c.send(reply); err != nil {
			logger.Debug("socket write failed", "error", err)
			return
		}
	}
}

func (s *Server) navigateSocket(ctx context.Context, nav *router.Navigator, data []byte) socketMessage {
	var req navigateRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return errorMessage(errors.New("E203").WithDetail("Malformed navigation message").Wrap(err))
	}

	var opts []router.NavigateOption
	if req.Replace {
		opts = append(opts, router.WithReplace())
	}
	if len(req.Query) > 0 {
		q := url.Values{}
		for k, v := range req.Query {
			q.Set(k, v)
		}
		opts = append(opts, router.WithQuery(q))
	}

	var (
		result *router.Navigation
		err    error
	)
	switch {
	case req.Name != "":
		result, err = nav.NavigateTo(ctx, req.Name, req.Params, opts...)
	case req.Path != "":
		result, err = nav.Navigate(ctx, req.Path, opts...)
	default:
		err = errors.New("E203").WithDetail("A navigation message needs a path or a name")
	}
	if err != nil {
		return errorMessage(err)
	}

	res := NewNavigationResult(result)
	return socketMessage{Type: messageNavigated, NavigationResult: &res}
}

func errorMessage(err error) socketMessage {
	coded := errors.Classify(err)
	return socketMessage{
		Type:    messageError,
		Code:    coded.Code,
		Message: coded.Error(),
	}
}
