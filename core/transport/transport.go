// Package transport defines the narrow peer connection surface the session
// core consumes: open a connection, attach local audio before negotiation,
// learn about remote media arrival, and exchange structured events over a
// reliable ordered channel.
package transport

import (
	"context"
	"errors"
	"time"
)

// ErrMediaUnsupported is reported by transports that cannot carry media
// tracks. Audio still flows through input_audio_buffer.append events on the
// data channel.
var ErrMediaUnsupported = errors.New("transport does not support media tracks")

// ChannelCallbacks registers the lifecycle hooks of a data channel. Nil
// callbacks are skipped. OnMessage is invoked in strict arrival order, one
// message at a time.
type ChannelCallbacks struct {
	OnOpen    func()
	OnMessage func(data []byte)
	OnClose   func()
}

// DataChannel is the reliable, ordered side-channel used for event exchange.
type DataChannel interface {
	Register(callbacks ChannelCallbacks)
	Send(data []byte) error
	Ready() bool
	Close() error
}

// AudioWriter feeds captured PCM into the connection's local audio track.
type AudioWriter interface {
	WriteAudio(pcm []byte, duration time.Duration) error
}

// RemoteTrack is an opaque handle to media arriving from the remote peer.
type RemoteTrack interface {
	ID() string
	Codec() string
}

// Connection is one peer connection. AddAudioTrack must be called before
// Negotiate; attaching media after the offer is created is a protocol
// violation.
type Connection interface {
	CreateDataChannel(label string) (DataChannel, error)
	AddAudioTrack() (AudioWriter, error)
	OnRemoteTrack(callback func(RemoteTrack))
	Negotiate(ctx context.Context, endpoint string, bearer string) error
	Close() error
}

// Dialer creates connections. One connection per session.
type Dialer interface {
	Dial(ctx context.Context) (Connection, error)
}
