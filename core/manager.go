package realtime

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tvrdic/voxlink-core/core/credentials"
	"github.com/tvrdic/voxlink-core/core/events"
	"github.com/tvrdic/voxlink-core/core/transport"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultEndpoint       = "https://api.openai.com/v1/realtime"
	defaultConnectTimeout = 30 * time.Second
	dataChannelLabel      = "oai-events"
)

// Manager orchestrates session creation, teardown, and per-session
// commands. All session state lives in its Registry.
//
// Contract: do not race Start and Close for the same session id; neither
// call observes the other and which one wins is undefined.
type Manager struct {
	registry           *Registry
	credentials        CredentialClient
	dialer             transport.Dialer
	endpoint           string
	output             AudioOutput
	onFunctionCall     FunctionCallHandler
	connectTimeout     time.Duration
	refreshCredentials bool

	now        func() time.Time
	newEventID func() string

	mu         sync.Mutex
	writers    map[string]transport.AudioWriter
	refreshers map[string]*credentials.Refresher
}

func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		registry:       NewRegistry(),
		endpoint:       defaultEndpoint,
		connectTimeout: defaultConnectTimeout,
		now:            time.Now,
		newEventID:     uuid.NewString,
		writers:        map[string]transport.AudioWriter{},
		refreshers:     map[string]*credentials.Refresher{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Registry exposes the session store for read access and for collaborators
// that render session state.
func (m *Manager) Registry() *Registry { return m.registry }

// Sessions returns snapshots of every session in creation order.
func (m *Manager) Sessions() []SessionRecord { return m.registry.Sessions() }

// Start establishes a new session: credential handshake, transport dial,
// media attach (audio modality only, always before the offer), channel
// creation, record insertion, then offer/answer negotiation. Failure before
// the record is inserted creates nothing; failure after leaves the record
// in the terminal Failed state with its handles released.
func (m *Manager) Start(ctx context.Context, opts ...SessionOption) (string, error) {
	ctx, span := tracer.Start(ctx, "start realtime session")
	defer span.End()

	options := SessionOptions{
		Modalities: []Modality{ModalityText, ModalityAudio},
	}
	for _, opt := range opts {
		opt(&options)
	}

	config := options.Config
	config.Modalities = make([]string, 0, len(options.Modalities))
	for _, modality := range options.Modalities {
		config.Modalities = append(config.Modalities, string(modality))
	}

	if m.credentials == nil || m.dialer == nil {
		return "", m.failStart(span, fmt.Errorf("manager is missing a credential client or dialer"))
	}

	grant, err := m.credentials.CreateSession(ctx, config)
	if err != nil {
		return "", m.failStart(span, fmt.Errorf("failed to create remote session: %w", err))
	}

	conn, err := m.dialer.Dial(ctx)
	if err != nil {
		return "", m.failStart(span, fmt.Errorf("failed to open transport: %w", err))
	}

	id := grant.ID
	if id == "" {
		id = m.newEventID()
	}

	var writer transport.AudioWriter
	if slices.Contains(options.Modalities, ModalityAudio) {
		writer, err = conn.AddAudioTrack()
		if err != nil && !errors.Is(err, transport.ErrMediaUnsupported) {
			conn.Close()
			return "", m.failStart(span, fmt.Errorf("failed to attach local audio: %w", err))
		}
	}

	// Remote media arrival is independent of channel-open ordering; it may
	// land before or after Connected.
	conn.OnRemoteTrack(func(track transport.RemoteTrack) {
		m.registry.UpdateSession(id, SessionUpdate{RemoteTrack: track})
	})

	channel, err := conn.CreateDataChannel(dataChannelLabel)
	if err != nil {
		conn.Close()
		return "", m.failStart(span, fmt.Errorf("failed to create data channel: %w", err))
	}

	m.registry.AddSession(SessionRecord{
		ID:         id,
		Modalities: options.Modalities,
		Config:     config,
		State:      ConnectionStateConnecting,
		Transport:  conn,
		Channel:    channel,
		StartTime:  m.now(),
	})
	if writer != nil {
		m.mu.Lock()
		m.writers[id] = writer
		m.mu.Unlock()
	}

	channel.Register(transport.ChannelCallbacks{
		OnOpen: func() {
			connected := ConnectionStateConnected
			m.registry.UpdateSession(id, SessionUpdate{State: &connected})
			if err := m.SendEvent(id, events.NewSessionUpdate(config)); err != nil {
				logger.Warn("failed to push initial session configuration",
					"session_id", id, "error", err)
			}
		},
		OnMessage: func(data []byte) { m.dispatch(id, data) },
		OnClose:   func() { m.finalize(id) },
	})

	negotiateCtx, cancel := context.WithTimeout(ctx, m.connectTimeout)
	defer cancel()
	if err := conn.Negotiate(negotiateCtx, m.negotiationEndpoint(config), grant.ClientSecret.Value); err != nil {
		failed := ConnectionStateFailed
		m.registry.UpdateSession(id, SessionUpdate{State: &failed, ReleaseHandles: true})
		m.releaseRuntime(id)
		conn.Close()
		return "", m.failStart(span, fmt.Errorf("failed to negotiate session: %w", err))
	}

	if m.refreshCredentials {
		refresher := credentials.NewRefresher(context.Background(), m.credentials, grant, nil)
		m.mu.Lock()
		m.refreshers[id] = refresher
		m.mu.Unlock()
	}

	return id, nil
}

func (m *Manager) failStart(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func (m *Manager) negotiationEndpoint(config events.SessionConfig) string {
	if config.Model == "" {
		return m.endpoint
	}
	return m.endpoint + "?model=" + url.QueryEscape(config.Model)
}

// Close tears a session down: channel and transport are closed and their
// handles released, timing is finalized, and the record is retained in the
// Closed state so transcripts, errors, and usage stay queryable. Closing an
// unknown or already-closed session is a no-op.
func (m *Manager) Close(id string) {
	record, exists := m.registry.GetByID(id)
	if !exists {
		logger.Warn("close requested for unknown session", "session_id", id)
		return
	}
	if record.State == ConnectionStateClosed || record.State == ConnectionStateFailed {
		return
	}

	if record.Channel != nil {
		if err := record.Channel.Close(); err != nil {
			logger.Warn("failed to close data channel", "session_id", id, "error", err)
		}
	}
	if record.Transport != nil {
		if err := record.Transport.Close(); err != nil {
			logger.Warn("failed to close transport", "session_id", id, "error", err)
		}
	}
	m.finalize(id)
}

// finalize transitions a session to Closed exactly once, computing end time
// and duration and releasing transport ownership. Reached from Close and
// from the channel's close callback, whichever fires first.
func (m *Manager) finalize(id string) {
	record, exists := m.registry.GetByID(id)
	if !exists || record.State == ConnectionStateClosed || record.State == ConnectionStateFailed {
		return
	}

	end := m.now()
	duration := end.Sub(record.StartTime)
	closed := ConnectionStateClosed
	m.registry.UpdateSession(id, SessionUpdate{
		State:          &closed,
		EndTime:        &end,
		Duration:       &duration,
		ReleaseHandles: true,
	})
	m.releaseRuntime(id)

	logger.Info("session closed", "session_id", id, "duration", duration)
}

func (m *Manager) releaseRuntime(id string) {
	m.mu.Lock()
	delete(m.writers, id)
	refresher := m.refreshers[id]
	delete(m.refreshers, id)
	m.mu.Unlock()

	if refresher != nil {
		refresher.Stop()
	}
}
