// Package socket implements the transport interfaces over a websocket for
// endpoints that speak the event protocol without media negotiation. The
// socket itself doubles as the data channel; audio travels through
// input_audio_buffer.append events instead of media tracks.
package socket

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/tvrdic/voxlink-core/core/transport"
)

// Dialer creates websocket-backed connections.
type Dialer struct {
	dialer *websocket.Dialer
}

type DialerOption func(*Dialer)

// WithWebsocketDialer overrides the underlying websocket dialer.
func WithWebsocketDialer(dialer *websocket.Dialer) DialerOption {
	return func(d *Dialer) { d.dialer = dialer }
}

func NewDialer(opts ...DialerOption) *Dialer {
	d := &Dialer{dialer: websocket.DefaultDialer}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dialer) Dial(_ context.Context) (transport.Connection, error) {
	return &Connection{dialer: d.dialer}, nil
}

// Connection defers the actual dial until Negotiate, mirroring the
// offer/answer phase of a media-capable transport.
type Connection struct {
	dialer  *websocket.Dialer
	channel *dataChannel
}

func (c *Connection) CreateDataChannel(label string) (transport.DataChannel, error) {
	if c.channel != nil {
		return nil, fmt.Errorf("data channel %q already created", label)
	}
	c.channel = &dataChannel{}
	return c.channel, nil
}

func (c *Connection) AddAudioTrack() (transport.AudioWriter, error) {
	return nil, transport.ErrMediaUnsupported
}

// OnRemoteTrack is a no-op: a websocket carries no media.
func (c *Connection) OnRemoteTrack(func(transport.RemoteTrack)) {}

func (c *Connection) Negotiate(ctx context.Context, endpoint string, bearer string) error {
	if c.channel == nil {
		return fmt.Errorf("cannot negotiate before a data channel is created")
	}

	conn, _, err := c.dialer.DialContext(ctx, toWebsocketURL(endpoint),
		http.Header{"Authorization": {"Bearer " + bearer}})
	if err != nil {
		return fmt.Errorf("failed to open socket connection: %w", err)
	}

	c.channel.open(conn)
	return nil
}

func (c *Connection) Close() error {
	if c.channel == nil {
		return nil
	}
	return c.channel.Close()
}

func toWebsocketURL(endpoint string) string {
	switch {
	case strings.HasPrefix(endpoint, "https://"):
		return "wss://" + strings.TrimPrefix(endpoint, "https://")
	case strings.HasPrefix(endpoint, "http://"):
		return "ws://" + strings.TrimPrefix(endpoint, "http://")
	}
	return endpoint
}

type dataChannel struct {
	mu        sync.Mutex
	conn      *websocket.Conn
	callbacks transport.ChannelCallbacks
	closed    bool
	closeOnce sync.Once
}

func (d *dataChannel) Register(callbacks transport.ChannelCallbacks) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.callbacks = callbacks
}

func (d *dataChannel) open(conn *websocket.Conn) {
	d.mu.Lock()
	d.conn = conn
	callbacks := d.callbacks
	d.mu.Unlock()

	if callbacks.OnOpen != nil {
		callbacks.OnOpen()
	}
	go d.readLoop(conn, callbacks)
}

func (d *dataChannel) readLoop(conn *websocket.Conn, callbacks transport.ChannelCallbacks) {
	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				log.Println("Failed to read socket message", "error", err)
			}
			d.markClosed()
			conn.Close()
			if callbacks.OnClose != nil {
				d.closeOnce.Do(callbacks.OnClose)
			}
			return
		}
		if msgType == websocket.BinaryMessage {
			continue
		}
		if callbacks.OnMessage != nil {
			callbacks.OnMessage(msg)
		}
	}
}

func (d *dataChannel) markClosed() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
}

func (d *dataChannel) Send(data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.conn == nil || d.closed {
		return fmt.Errorf("channel is not open")
	}
	if err := d.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("failed to write to channel: %w", err)
	}
	return nil
}

func (d *dataChannel) Ready() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.conn != nil && !d.closed
}

func (d *dataChannel) Close() error {
	d.mu.Lock()
	conn := d.conn
	alreadyClosed := d.closed
	d.closed = true
	d.mu.Unlock()

	if conn == nil || alreadyClosed {
		return nil
	}
	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return conn.Close()
}
