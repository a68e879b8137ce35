package socket

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tvrdic/voxlink-core/core/transport"
)

func TestChannelLifecycleOverWebsocket(t *testing.T) {
	upgrader := websocket.Upgrader{}
	received := make(chan []byte, 4)
	auth := make(chan string, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth <- r.Header.Get("Authorization")
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			received <- msg
			conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"session.created"}`))
		}
	}))
	defer server.Close()

	dialer := NewDialer()
	conn, err := dialer.Dial(context.Background())
	if err != nil {
		t.Fatalf("expected dial to succeed, got %v", err)
	}

	if _, err := conn.AddAudioTrack(); !errors.Is(err, transport.ErrMediaUnsupported) {
		t.Fatalf("expected socket transport to report media as unsupported, got %v", err)
	}

	channel, err := conn.CreateDataChannel("events")
	if err != nil {
		t.Fatalf("expected channel creation to succeed, got %v", err)
	}

	opened := make(chan struct{})
	inbound := make(chan []byte, 4)
	closed := make(chan struct{})
	channel.Register(transport.ChannelCallbacks{
		OnOpen:    func() { close(opened) },
		OnMessage: func(data []byte) { inbound <- data },
		OnClose:   func() { close(closed) },
	})

	if channel.Ready() {
		t.Fatalf("expected channel not ready before negotiation")
	}
	if err := channel.Send([]byte(`{"type":"input_audio_buffer.commit"}`)); err == nil {
		t.Fatalf("expected send before negotiation to fail")
	}

	if err := conn.Negotiate(context.Background(), server.URL, "token"); err != nil {
		t.Fatalf("expected negotiation to succeed, got %v", err)
	}

	select {
	case <-opened:
	case <-time.After(time.Second):
		t.Fatalf("expected open callback after negotiation")
	}
	select {
	case got := <-auth:
		if got != "Bearer token" {
			t.Fatalf("expected bearer credential on dial, got %q", got)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected the server to observe the dial")
	}

	if !channel.Ready() {
		t.Fatalf("expected channel ready after negotiation")
	}
	if err := channel.Send([]byte(`{"type":"input_audio_buffer.commit"}`)); err != nil {
		t.Fatalf("expected send to succeed, got %v", err)
	}

	select {
	case msg := <-received:
		if string(msg) != `{"type":"input_audio_buffer.commit"}` {
			t.Fatalf("unexpected payload on the wire: %s", msg)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected the server to receive the event")
	}
	select {
	case msg := <-inbound:
		if string(msg) != `{"type":"session.created"}` {
			t.Fatalf("unexpected inbound payload: %s", msg)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected an inbound message")
	}

	if err := conn.Close(); err != nil {
		t.Fatalf("expected close to succeed, got %v", err)
	}
	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatalf("expected close callback after shutdown")
	}
	if channel.Ready() {
		t.Fatalf("expected channel not ready after close")
	}
}

func TestNegotiateRequiresAChannel(t *testing.T) {
	conn, err := NewDialer().Dial(context.Background())
	if err != nil {
		t.Fatalf("expected dial to succeed, got %v", err)
	}
	if err := conn.Negotiate(context.Background(), "http://unused", "token"); err == nil {
		t.Fatalf("expected negotiation without a channel to fail")
	}
}

func TestToWebsocketURL(t *testing.T) {
	cases := map[string]string{
		"https://api.example.com/v1/realtime": "wss://api.example.com/v1/realtime",
		"http://127.0.0.1:8080/realtime":      "ws://127.0.0.1:8080/realtime",
		"wss://already.websocket":             "wss://already.websocket",
	}
	for in, want := range cases {
		if got := toWebsocketURL(in); got != want {
			t.Fatalf("expected %q to map to %q, got %q", in, want, got)
		}
	}
}
