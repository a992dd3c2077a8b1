package websockets

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Message types
const (
	MsgTypeSubscribe  = "subscribe"
	MsgTypeSubscribed = "subscribed"
	MsgTypeError      = "error"
)

// Client is one connected live feed viewer.
type Client struct {
	conn *websocket.Conn
	send chan []byte

	mu         sync.Mutex
	latitude   float64
	longitude  float64
	radiusKm   float64
	statusOnly string
}

// Message is what viewers send to narrow their feed. A zero radius receives
// every report.
type Message struct {
	Type      string  `json:"type"`
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
	RadiusKm  float64 `json:"radiusKm,omitempty"`
	Status    string  `json:"status,omitempty"`
}

// Ack confirms a subscribe message.
type Ack struct {
	Type     string  `json:"type"`
	RadiusKm float64 `json:"radiusKm"`
	Error    string  `json:"error,omitempty"`
}
