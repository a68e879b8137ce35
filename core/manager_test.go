package realtime

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/tvrdic/voxlink-core/core/credentials"
	"github.com/tvrdic/voxlink-core/core/events"
	"github.com/tvrdic/voxlink-core/core/transport"
)

type fakeCredentials struct {
	grant *credentials.Grant
	err   error
}

func (c *fakeCredentials) CreateSession(_ context.Context, _ events.SessionConfig) (*credentials.Grant, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.grant, nil
}

type fakeDialer struct {
	conn *fakeConn
	err  error
}

func (d *fakeDialer) Dial(_ context.Context) (transport.Connection, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.conn, nil
}

type fakeConn struct {
	mu               sync.Mutex
	channel          *fakeChannel
	onRemoteTrack    func(transport.RemoteTrack)
	negotiateErr     error
	mediaUnsupported bool
	trackAttached    bool
	negotiated       bool
	closed           bool
}

func (c *fakeConn) CreateDataChannel(string) (transport.DataChannel, error) {
	return c.channel, nil
}

func (c *fakeConn) AddAudioTrack() (transport.AudioWriter, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mediaUnsupported {
		return nil, transport.ErrMediaUnsupported
	}
	if c.negotiated {
		return nil, fmt.Errorf("track attached after negotiation")
	}
	c.trackAttached = true
	return &fakeWriter{}, nil
}

func (c *fakeConn) OnRemoteTrack(callback func(transport.RemoteTrack)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onRemoteTrack = callback
}

func (c *fakeConn) Negotiate(_ context.Context, _ string, _ string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.negotiateErr != nil {
		return c.negotiateErr
	}
	c.negotiated = true
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) arriveRemoteTrack(track transport.RemoteTrack) {
	c.mu.Lock()
	callback := c.onRemoteTrack
	c.mu.Unlock()
	if callback != nil {
		callback(track)
	}
}

type fakeWriter struct {
	written [][]byte
}

func (w *fakeWriter) WriteAudio(pcm []byte, _ time.Duration) error {
	w.written = append(w.written, pcm)
	return nil
}

type fakeTrack struct{ id string }

func (t fakeTrack) ID() string    { return t.id }
func (t fakeTrack) Codec() string { return "audio/opus" }

type fakeChannel struct {
	mu        sync.Mutex
	callbacks transport.ChannelCallbacks
	ready     bool
	sent      [][]byte
	closed    bool
}

func (c *fakeChannel) Register(callbacks transport.ChannelCallbacks) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.callbacks = callbacks
}

func (c *fakeChannel) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.ready {
		return fmt.Errorf("channel is not open")
	}
	c.sent = append(c.sent, data)
	return nil
}

func (c *fakeChannel) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready
}

func (c *fakeChannel) Close() error {
	c.mu.Lock()
	c.ready = false
	c.closed = true
	callbacks := c.callbacks
	c.mu.Unlock()
	if callbacks.OnClose != nil {
		callbacks.OnClose()
	}
	return nil
}

func (c *fakeChannel) open() {
	c.mu.Lock()
	c.ready = true
	callbacks := c.callbacks
	c.mu.Unlock()
	if callbacks.OnOpen != nil {
		callbacks.OnOpen()
	}
}

func (c *fakeChannel) deliver(raw []byte) {
	c.mu.Lock()
	callbacks := c.callbacks
	c.mu.Unlock()
	if callbacks.OnMessage != nil {
		callbacks.OnMessage(raw)
	}
}

func (c *fakeChannel) sentCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent)
}

func newTestManager(t *testing.T, opts ...ManagerOption) (*Manager, *fakeConn) {
	t.Helper()

	channel := &fakeChannel{}
	conn := &fakeConn{channel: channel}
	base := []ManagerOption{
		WithCredentialClient(&fakeCredentials{grant: &credentials.Grant{
			ID:           "sess-1",
			ClientSecret: credentials.ClientSecret{Value: "secret"},
		}}),
		WithDialer(&fakeDialer{conn: conn}),
	}
	return NewManager(append(base, opts...)...), conn
}

func TestStartTransitionsConnectingToConnectedOnChannelOpen(t *testing.T) {
	manager, conn := newTestManager(t)

	before := time.Now()
	id, err := manager.Start(context.Background(),
		WithModalities(ModalityText, ModalityAudio))
	if err != nil {
		t.Fatalf("expected start to succeed, got %v", err)
	}

	record, exists := manager.Registry().GetByID(id)
	if !exists {
		t.Fatalf("expected a session record after start")
	}
	if record.State != ConnectionStateConnecting {
		t.Fatalf("expected connecting state before channel open, got %s", record.State)
	}
	if record.StartTime.Before(before) {
		t.Fatalf("expected start time to be set at creation")
	}
	if !conn.trackAttached {
		t.Fatalf("expected local audio track attached before negotiation")
	}

	conn.channel.open()

	record, _ = manager.Registry().GetByID(id)
	if record.State != ConnectionStateConnected {
		t.Fatalf("expected connected state after channel open, got %s", record.State)
	}
}

func TestRemoteTrackArrivalIsIndependentOfChannelOpen(t *testing.T) {
	manager, conn := newTestManager(t)

	id, err := manager.Start(context.Background())
	if err != nil {
		t.Fatalf("expected start to succeed, got %v", err)
	}

	// Track lands while the channel is still closed.
	conn.arriveRemoteTrack(fakeTrack{id: "remote-audio"})

	record, _ := manager.Registry().GetByID(id)
	if record.State != ConnectionStateConnecting {
		t.Fatalf("expected state untouched by media arrival, got %s", record.State)
	}
	if record.RemoteTrack == nil || record.RemoteTrack.ID() != "remote-audio" {
		t.Fatalf("expected remote track handle to be recorded")
	}
}

func TestChannelOpenPushesInitialConfiguration(t *testing.T) {
	manager, conn := newTestManager(t)

	_, err := manager.Start(context.Background(), WithInstructions("be concise"))
	if err != nil {
		t.Fatalf("expected start to succeed, got %v", err)
	}
	if conn.channel.sentCount() != 0 {
		t.Fatalf("expected nothing sent before channel open")
	}

	conn.channel.open()

	if conn.channel.sentCount() != 1 {
		t.Fatalf("expected one session.update push after open, got %d", conn.channel.sentCount())
	}
}

func TestSendBeforeChannelOpenIsReportedAndDropped(t *testing.T) {
	manager, conn := newTestManager(t)

	id, err := manager.Start(context.Background())
	if err != nil {
		t.Fatalf("expected start to succeed, got %v", err)
	}

	if err := manager.SendText(id, "too early"); !errors.Is(err, ErrChannelNotReady) {
		t.Fatalf("expected channel-not-ready drop, got %v", err)
	}
	if conn.channel.sentCount() != 0 {
		t.Fatalf("expected nothing transmitted on a closed channel")
	}

	conn.channel.open()
	sentAfterOpen := conn.channel.sentCount()

	if err := manager.SendText(id, "hello"); err != nil {
		t.Fatalf("expected send to work once the channel opened, got %v", err)
	}
	if conn.channel.sentCount() != sentAfterOpen+1 {
		t.Fatalf("expected exactly one more message after open")
	}
}

func TestSendAgainstUnknownSessionIsReportedAndDropped(t *testing.T) {
	manager, _ := newTestManager(t)

	if err := manager.SendText("ghost", "anyone there"); !errors.Is(err, ErrUnknownSession) {
		t.Fatalf("expected unknown-session drop, got %v", err)
	}
}

func TestCloseFinalizesTimingAndReleasesHandlesKeepingData(t *testing.T) {
	manager, conn := newTestManager(t)

	id, err := manager.Start(context.Background())
	if err != nil {
		t.Fatalf("expected start to succeed, got %v", err)
	}
	conn.channel.open()
	startRecord, _ := manager.Registry().GetByID(id)

	conn.channel.deliver([]byte(`{"type":"conversation.item.input_audio_transcription.completed","transcript":"hello"}`))
	conn.channel.deliver([]byte(`{"type":"response.done","response":{"usage":{"input_tokens":5,"output_tokens":5,"total_tokens":10}}}`))

	manager.Close(id)

	record, exists := manager.Registry().GetByID(id)
	if !exists {
		t.Fatalf("expected closed session to be retained")
	}
	if record.State != ConnectionStateClosed {
		t.Fatalf("expected closed state, got %s", record.State)
	}
	if record.EndTime == nil || record.EndTime.Before(startRecord.StartTime) {
		t.Fatalf("expected end time at or after start time")
	}
	if record.Duration != record.EndTime.Sub(record.StartTime) {
		t.Fatalf("expected duration to equal end minus start, got %v", record.Duration)
	}
	if record.Channel != nil || record.Transport != nil {
		t.Fatalf("expected transport handles cleared on close")
	}
	if len(record.Transcripts) != 1 || record.Usage == nil {
		t.Fatalf("expected transcripts and usage to survive close")
	}
	if !conn.closed || !conn.channel.closed {
		t.Fatalf("expected channel and transport to be closed")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	manager, conn := newTestManager(t)

	id, err := manager.Start(context.Background())
	if err != nil {
		t.Fatalf("expected start to succeed, got %v", err)
	}
	conn.channel.open()

	manager.Close(id)
	first, _ := manager.Registry().GetByID(id)

	manager.now = func() time.Time { return time.Now().Add(time.Hour) }
	manager.Close(id)
	second, _ := manager.Registry().GetByID(id)

	if !second.EndTime.Equal(*first.EndTime) || second.Duration != first.Duration {
		t.Fatalf("expected second close to be a no-op, got end=%v duration=%v",
			second.EndTime, second.Duration)
	}
}

func TestCloseUnknownSessionIsANoop(t *testing.T) {
	manager, _ := newTestManager(t)
	manager.Close("ghost")

	if got := manager.Registry().Len(); got != 0 {
		t.Fatalf("expected registry to stay empty, got %d records", got)
	}
}

func TestStartFailsWithoutRecordWhenCredentialHandshakeFails(t *testing.T) {
	channel := &fakeChannel{}
	conn := &fakeConn{channel: channel}
	manager := NewManager(
		WithCredentialClient(&fakeCredentials{err: fmt.Errorf("missing server secret")}),
		WithDialer(&fakeDialer{conn: conn}),
	)

	if _, err := manager.Start(context.Background()); err == nil {
		t.Fatalf("expected start to fail when credentials cannot be minted")
	}
	if got := manager.Registry().Len(); got != 0 {
		t.Fatalf("expected no record after failed handshake, got %d", got)
	}
}

func TestFailedNegotiationLeavesTerminalFailedRecord(t *testing.T) {
	channel := &fakeChannel{}
	conn := &fakeConn{channel: channel, negotiateErr: fmt.Errorf("no answer")}
	manager := NewManager(
		WithCredentialClient(&fakeCredentials{grant: &credentials.Grant{
			ID:           "sess-1",
			ClientSecret: credentials.ClientSecret{Value: "secret"},
		}}),
		WithDialer(&fakeDialer{conn: conn}),
	)

	if _, err := manager.Start(context.Background()); err == nil {
		t.Fatalf("expected start to fail when negotiation fails")
	}

	record, exists := manager.Registry().GetByID("sess-1")
	if !exists {
		t.Fatalf("expected record to remain after failed negotiation")
	}
	if record.State != ConnectionStateFailed {
		t.Fatalf("expected failed state, got %s", record.State)
	}
	if record.Channel != nil || record.Transport != nil {
		t.Fatalf("expected handles released on failed negotiation")
	}
	if !conn.closed {
		t.Fatalf("expected transport closed on failed negotiation")
	}
}

func TestMuteSyncsRegistryAndPlaybackSink(t *testing.T) {
	output := &fakeOutput{}
	manager, conn := newTestManager(t, WithAudioOutput(output))

	id, err := manager.Start(context.Background())
	if err != nil {
		t.Fatalf("expected start to succeed, got %v", err)
	}
	conn.channel.open()

	manager.MuteAudio(id)
	record, _ := manager.Registry().GetByID(id)
	if !record.Muted || !output.muted {
		t.Fatalf("expected mute to reach both registry and playback sink")
	}

	manager.UnmuteAudio(id)
	record, _ = manager.Registry().GetByID(id)
	if record.Muted || output.muted {
		t.Fatalf("expected unmute to reach both registry and playback sink")
	}
}

type fakeOutput struct {
	muted bool
}

func (o *fakeOutput) SendAudio([]byte) error { return nil }
func (o *fakeOutput) SetMuted(muted bool)    { o.muted = muted }
