package websockets

import (
	"encoding/json"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/bwise1/reportnow/internal/metrics"
	"github.com/bwise1/reportnow/internal/model"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
	sendBuffer     = 16

	earthRadiusKm = 6371.0
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketManager fans report events out to live feed viewers.
type WebSocketManager struct {
	clients    map[*Client]bool
	broadcast  chan model.ReportEvent
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once
	mu         sync.RWMutex
}

func NewWebSocketManager() *WebSocketManager {
	return &WebSocketManager{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan model.ReportEvent),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run owns the client set until Stop is called.
func (manager *WebSocketManager) Run() {
	for {
		select {
		case client := <-manager.register:
			manager.mu.Lock()
			manager.clients[client] = true
			manager.mu.Unlock()
			metrics.LiveClients.Inc()

		case client := <-manager.unregister:
			manager.remove(client)

		case event := <-manager.broadcast:
			payload, err := json.Marshal(event)
			if err != nil {
				log.Error().Err(err).Str("report_id", event.Report.ReportID).Msg("unable to encode live event")
				continue
			}

			manager.mu.RLock()
			var slow []*Client
			for client := range manager.clients {
				if !client.wants(event.Report) {
					continue
				}
				select {
				case client.send <- payload:
				default:
					slow = append(slow, client)
				}
			}
			manager.mu.RUnlock()

			for _, client := range slow {
				manager.remove(client)
			}

		case <-manager.done:
			manager.mu.Lock()
			for client := range manager.clients {
				delete(manager.clients, client)
				close(client.send)
				metrics.LiveClients.Dec()
			}
			manager.mu.Unlock()
			return
		}
	}
}

func (manager *WebSocketManager) remove(client *Client) {
	manager.mu.Lock()
	defer manager.mu.Unlock()
	if _, ok := manager.clients[client]; ok {
		delete(manager.clients, client)
		close(client.send)
		metrics.LiveClients.Dec()
	}
}

// Broadcast queues event for every interested viewer. It returns immediately
// once the manager is stopped.
func (manager *WebSocketManager) Broadcast(event model.ReportEvent) {
	select {
	case manager.broadcast <- event:
	case <-manager.done:
	}
}

// Stop disconnects every viewer and ends Run.
func (manager *WebSocketManager) Stop() {
	manager.stopOnce.Do(func() { close(manager.done) })
}

// ClientCount returns the number of connected viewers.
func (manager *WebSocketManager) ClientCount() int {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	return len(manager.clients)
}

// HandleConnections upgrades the request and serves the viewer until it
// disconnects.
func (manager *WebSocketManager) HandleConnections(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &Client{conn: conn, send: make(chan []byte, sendBuffer)}

	select {
	case manager.register <- client:
	case <-manager.done:
		_ = conn.Close()
		return
	}

	go client.writePump()
	client.readPump(manager)
}

func (c *Client) readPump(manager *WebSocketManager) {
	defer func() {
		select {
		case manager.unregister <- c:
		case <-manager.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var message Message
		if err := json.Unmarshal(msg, &message); err != nil {
			c.reply(manager, Ack{Type: MsgTypeError, Error: "invalid message"})
			continue
		}

		switch message.Type {
		case MsgTypeSubscribe:
			if message.RadiusKm < 0 {
				c.reply(manager, Ack{Type: MsgTypeError, Error: "radiusKm must not be negative"})
				continue
			}
			c.mu.Lock()
			c.latitude = message.Latitude
			c.longitude = message.Longitude
			c.radiusKm = message.RadiusKm
			c.statusOnly = message.Status
			c.mu.Unlock()
			c.reply(manager, Ack{Type: MsgTypeSubscribed, RadiusKm: message.RadiusKm})
		default:
			c.reply(manager, Ack{Type: MsgTypeError, Error: "unknown message type"})
		}
	}
}

// reply queues a control message. The manager lock guards against a send on a
// channel that Run already closed.
func (c *Client) reply(manager *WebSocketManager, ack Ack) {
	payload, err := json.Marshal(ack)
	if err != nil {
		return
	}
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	if !manager.clients[c] {
		return
	}
	select {
	case c.send <- payload:
	default:
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// wants reports whether the viewer's subscription covers report. Reports
// without coordinates only reach viewers that did not set a radius.
func (c *Client) wants(report model.Report) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.statusOnly != "" && c.statusOnly != report.Status {
		return false
	}
	if c.radiusKm == 0 {
		return true
	}
	if report.Latitude == 0 && report.Longitude == 0 {
		return false
	}
	return isNearby(c.latitude, c.longitude, report.Latitude, report.Longitude, c.radiusKm)
}

// isNearby checks whether two points are within radiusKm using the haversine
// distance.
func isNearby(userLat, userLon, reportLat, reportLon, radiusKm float64) bool {
	return distanceKm(userLat, userLon, reportLat, reportLon) <= radiusKm
}

func distanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
