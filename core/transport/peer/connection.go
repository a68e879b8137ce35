// Package peer implements the transport interfaces over a WebRTC peer
// connection: media tracks plus a reliable ordered data channel, negotiated
// through an SDP offer/answer exchange with the remote endpoint.
package peer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media"
	"github.com/tvrdic/voxlink-core/core/transport"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Dialer creates WebRTC connections.
type Dialer struct {
	config     webrtc.Configuration
	httpClient *http.Client
}

type DialerOption func(*Dialer)

// WithICEServers overrides the default (serverless) ICE configuration.
func WithICEServers(urls ...string) DialerOption {
	return func(d *Dialer) {
		d.config.ICEServers = []webrtc.ICEServer{{URLs: urls}}
	}
}

// WithHTTPClient overrides the client used for the answer exchange.
func WithHTTPClient(client *http.Client) DialerOption {
	return func(d *Dialer) { d.httpClient = client }
}

func NewDialer(opts ...DialerOption) *Dialer {
	d := &Dialer{
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dialer) Dial(_ context.Context) (transport.Connection, error) {
	pc, err := webrtc.NewPeerConnection(d.config)
	if err != nil {
		return nil, fmt.Errorf("failed to open peer connection: %w", err)
	}
	return &Connection{pc: pc, httpClient: d.httpClient}, nil
}

// Connection wraps one peer connection.
type Connection struct {
	pc         *webrtc.PeerConnection
	httpClient *http.Client
}

func (c *Connection) CreateDataChannel(label string) (transport.DataChannel, error) {
	ordered := true
	dc, err := c.pc.CreateDataChannel(label, &webrtc.DataChannelInit{Ordered: &ordered})
	if err != nil {
		return nil, fmt.Errorf("failed to create data channel: %w", err)
	}
	return &dataChannel{dc: dc}, nil
}

func (c *Connection) AddAudioTrack() (transport.AudioWriter, error) {
	track, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus},
		"audio", "voxlink",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create local audio track: %w", err)
	}
	if _, err := c.pc.AddTrack(track); err != nil {
		return nil, fmt.Errorf("failed to attach local audio track: %w", err)
	}
	return &audioWriter{track: track}, nil
}

func (c *Connection) OnRemoteTrack(callback func(transport.RemoteTrack)) {
	c.pc.OnTrack(func(track *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
		callback(remoteTrack{track: track})
	})
}

// Negotiate creates the local offer, waits for ICE gathering, POSTs the SDP
// with the bearer credential, and applies the remote answer.
func (c *Connection) Negotiate(ctx context.Context, endpoint string, bearer string) error {
	ctx, span := tracer.Start(ctx, "negotiate peer connection")
	defer span.End()

	offer, err := c.pc.CreateOffer(nil)
	if err != nil {
		return recordError(span, fmt.Errorf("failed to create offer: %w", err))
	}

	gathered := webrtc.GatheringCompletePromise(c.pc)
	if err := c.pc.SetLocalDescription(offer); err != nil {
		return recordError(span, fmt.Errorf("failed to set local description: %w", err))
	}
	select {
	case <-gathered:
	case <-ctx.Done():
		return recordError(span, fmt.Errorf("ICE gathering interrupted: %w", ctx.Err()))
	}

	answer, err := c.exchangeDescription(ctx, endpoint, bearer, c.pc.LocalDescription().SDP)
	if err != nil {
		return recordError(span, err)
	}

	if err := c.pc.SetRemoteDescription(webrtc.SessionDescription{
		Type: webrtc.SDPTypeAnswer,
		SDP:  answer,
	}); err != nil {
		return recordError(span, fmt.Errorf("failed to apply remote answer: %w", err))
	}
	return nil
}

func (c *Connection) exchangeDescription(ctx context.Context, endpoint, bearer, sdp string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(sdp))
	if err != nil {
		return "", fmt.Errorf("failed to build answer request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Content-Type", "application/sdp")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to exchange session description: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read answer body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("answer exchange rejected: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	return string(body), nil
}

func (c *Connection) Close() error {
	if err := c.pc.Close(); err != nil {
		return fmt.Errorf("failed to close peer connection: %w", err)
	}
	return nil
}

type dataChannel struct {
	dc *webrtc.DataChannel
	mu sync.Mutex
}

func (d *dataChannel) Register(callbacks transport.ChannelCallbacks) {
	if callbacks.OnOpen != nil {
		d.dc.OnOpen(callbacks.OnOpen)
	}
	if callbacks.OnMessage != nil {
		d.dc.OnMessage(func(msg webrtc.DataChannelMessage) {
			callbacks.OnMessage(msg.Data)
		})
	}
	if callbacks.OnClose != nil {
		d.dc.OnClose(callbacks.OnClose)
	}
}

func (d *dataChannel) Send(data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.dc.SendText(string(data)); err != nil {
		return fmt.Errorf("failed to write to data channel: %w", err)
	}
	return nil
}

func (d *dataChannel) Ready() bool {
	return d.dc.ReadyState() == webrtc.DataChannelStateOpen
}

func (d *dataChannel) Close() error {
	return d.dc.Close()
}

type audioWriter struct {
	track *webrtc.TrackLocalStaticSample
}

func (w *audioWriter) WriteAudio(pcm []byte, duration time.Duration) error {
	if err := w.track.WriteSample(media.Sample{Data: pcm, Duration: duration}); err != nil {
		return fmt.Errorf("failed to write audio sample: %w", err)
	}
	return nil
}

type remoteTrack struct {
	track *webrtc.TrackRemote
}

func (t remoteTrack) ID() string    { return t.track.ID() }
func (t remoteTrack) Codec() string { return t.track.Codec().MimeType }
