// network/connection.go
package network

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 5 * time.Second
	maxMessageSize = 4096
	sendQueueSize  = 64
)

var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrSendQueueFull    = errors.New("send queue full")
	ErrMalformedPacket  = errors.New("malformed packet")
)

// Packet is one event frame: {"event": "...", "data": ...}.
type Packet struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type Connection interface {
	Send(event string, payload interface{}) error
	Close() error
	RemoteAddr() net.Addr
	SetHeartbeat(interval time.Duration)
	ReadPacket() (*Packet, error)
}

// WSConnection frames events as JSON text messages. Sends are queued and
// written by a single pump goroutine, so Send never blocks on the socket and
// frames reach the peer in the order they were sent.
type WSConnection struct {
	conn      *websocket.Conn
	outbound  chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func NewWSConnection(conn *websocket.Conn) *WSConnection {
	conn.SetReadLimit(maxMessageSize)
	c := &WSConnection{
		conn:     conn,
		outbound: make(chan []byte, sendQueueSize),
		done:     make(chan struct{}),
	}
	go c.writePump()
	return c
}

// EncodePacket marshals payload into a frame. A nil payload is sent as null.
func EncodePacket(event string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", event, err)
	}
	return json.Marshal(Packet{Event: event, Data: data})
}

// DecodePacket parses a frame received from a peer.
func DecodePacket(frame []byte) (*Packet, error) {
	var packet Packet
	if err := json.Unmarshal(frame, &packet); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPacket, err)
	}
	if packet.Event == "" {
		return nil, fmt.Errorf("%w: missing event", ErrMalformedPacket)
	}
	return &packet, nil
}

func (c *WSConnection) Send(event string, payload interface{}) error {
	frame, err := EncodePacket(event, payload)
	if err != nil {
		return err
	}

	select {
	case <-c.done:
		return ErrConnectionClosed
	default:
	}

	select {
	case c.outbound <- frame:
		return nil
	case <-c.done:
		return ErrConnectionClosed
	default:
		return ErrSendQueueFull
	}
}

func (c *WSConnection) writePump() {
	for {
		select {
		case frame := <-c.outbound:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.Close()
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *WSConnection) ReadPacket() (*Packet, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	return DecodePacket(data)
}

// SetHeartbeat expects a pong within two intervals and pings every interval.
func (c *WSConnection) SetHeartbeat(interval time.Duration) {
	c.conn.SetReadDeadline(time.Now().Add(interval * 2))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(interval * 2))
	})

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					return
				}
			case <-c.done:
				return
			}
		}
	}()
}

func (c *WSConnection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.conn.Close()
	})
	return err
}

func (c *WSConnection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}
