package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/johnnychen-a11y/energy-flow-insights/internal/core/domain"

	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
	wsSendBuffer = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func (c *wsClient) closeDone() {
	c.once.Do(func() { close(c.done) })
}

// hub pushes every fleet snapshot to the connected websocket clients. A
// client that falls behind loses snapshots, never blocks the publisher.
type hub struct {
	mu          sync.RWMutex
	clients     map[*wsClient]struct{}
	eventStream *eventstream.EventStream
	sub         *eventstream.Subscription
	logger      *zap.Logger
}

func newHub(eventStream *eventstream.EventStream, logger *zap.Logger) *hub {
	h := &hub{
		clients:     make(map[*wsClient]struct{}),
		eventStream: eventStream,
		logger:      logger,
	}
	if eventStream != nil {
		h.sub = eventStream.Subscribe(func(evt any) {
			if ev, ok := evt.(domain.FleetSnapshotEvent); ok {
				h.broadcastSnapshot(ev.State)
			}
		})
	}
	return h
}

func (h *hub) broadcastSnapshot(state domain.FleetState) {
	h.mu.RLock()
	empty := len(h.clients) == 0
	h.mu.RUnlock()
	if empty {
		return
	}
	payload, err := json.Marshal(domain.NewFleetView(state))
	if err != nil {
		h.logger.Error("ws snapshot marshal error", zap.Error(err))
		return
	}
	h.broadcast(payload)
}

func (h *hub) broadcast(payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.send <- payload:
		default:
		}
	}
}

func (h *hub) count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// serve registers conn and blocks until the client goes away. initial, when
// not nil, is the first message the client receives.
func (h *hub) serve(conn *websocket.Conn, initial []byte) {
	client := &wsClient{
		conn: conn,
		send: make(chan []byte, wsSendBuffer),
		done: make(chan struct{}),
	}
	if initial != nil {
		client.send <- initial
	}

	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("ws client connected", zap.String("remote", conn.RemoteAddr().String()))

	go h.writePump(client)
	h.readPump(client)
}

func (h *hub) readPump(client *wsClient) {
	defer func() {
		h.mu.Lock()
		delete(h.clients, client)
		h.mu.Unlock()
		client.closeDone()
		client.conn.Close()
		h.logger.Debug("ws client disconnected")
	}()

	client.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		// clients only listen, anything they send is dropped
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *hub) writePump(client *wsClient) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		client.conn.Close()
	}()

	for {
		select {
		case message := <-client.send:
			client.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := client.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-client.done:
			return
		}
	}
}

func (h *hub) close() {
	if h.sub != nil {
		h.eventStream.Unsubscribe(h.sub)
		h.sub = nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		client.closeDone()
		client.conn.Close()
	}
}
