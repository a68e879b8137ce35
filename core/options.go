package realtime

import (
	"context"
	"time"

	"github.com/tvrdic/voxlink-core/core/credentials"
	"github.com/tvrdic/voxlink-core/core/events"
	"github.com/tvrdic/voxlink-core/core/transport"
)

// CredentialClient mints session grants. Satisfied by *credentials.Client.
type CredentialClient interface {
	CreateSession(ctx context.Context, config events.SessionConfig) (*credentials.Grant, error)
}

// AudioOutput is the playback sink whose mute flag the manager keeps in
// sync with session mute state.
type AudioOutput interface {
	SendAudio(audio []byte) error
	SetMuted(muted bool)
}

// FunctionCallHandler receives model-initiated function calls with their
// parsed argument object.
type FunctionCallHandler func(sessionID string, name string, arguments map[string]any)

type ManagerOption func(*Manager)

func WithCredentialClient(client CredentialClient) ManagerOption {
	return func(m *Manager) { m.credentials = client }
}

func WithDialer(dialer transport.Dialer) ManagerOption {
	return func(m *Manager) { m.dialer = dialer }
}

// WithEndpoint overrides the remote endpoint the transport negotiates with.
func WithEndpoint(endpoint string) ManagerOption {
	return func(m *Manager) { m.endpoint = endpoint }
}

func WithAudioOutput(output AudioOutput) ManagerOption {
	return func(m *Manager) { m.output = output }
}

func WithFunctionCallHandler(handler FunctionCallHandler) ManagerOption {
	return func(m *Manager) { m.onFunctionCall = handler }
}

// WithConnectTimeout bounds the offer/answer exchange. A negotiation that
// exceeds it leaves the session in the terminal Failed state.
func WithConnectTimeout(timeout time.Duration) ManagerOption {
	return func(m *Manager) { m.connectTimeout = timeout }
}

// WithCredentialRefresh enables background re-minting of expiring session
// credentials; the refresh loop is cancelled when the session closes.
func WithCredentialRefresh() ManagerOption {
	return func(m *Manager) { m.refreshCredentials = true }
}

// SessionOptions collects per-Start parameters.
type SessionOptions struct {
	Modalities []Modality
	Config     events.SessionConfig
}

type SessionOption func(*SessionOptions)

// WithModalities fixes which capabilities the session is created with.
// Defaults to text and audio.
func WithModalities(modalities ...Modality) SessionOption {
	return func(o *SessionOptions) { o.Modalities = modalities }
}

// WithSessionConfig replaces the whole configuration snapshot at once.
func WithSessionConfig(config events.SessionConfig) SessionOption {
	return func(o *SessionOptions) { o.Config = config }
}

func WithModel(model string) SessionOption {
	return func(o *SessionOptions) { o.Config.Model = model }
}

func WithVoice(voice string) SessionOption {
	return func(o *SessionOptions) { o.Config.Voice = voice }
}

func WithInstructions(instructions string) SessionOption {
	return func(o *SessionOptions) { o.Config.Instructions = instructions }
}

func WithTools(tools ...events.Tool) SessionOption {
	return func(o *SessionOptions) { o.Config.Tools = tools }
}

func WithTemperature(temperature float64) SessionOption {
	return func(o *SessionOptions) { o.Config.Temperature = temperature }
}

func WithMaxResponseOutputTokens(tokens int) SessionOption {
	return func(o *SessionOptions) { o.Config.MaxResponseOutputTokens = tokens }
}

func WithTurnDetection(detection *events.TurnDetection) SessionOption {
	return func(o *SessionOptions) { o.Config.TurnDetection = detection }
}

func WithInputAudioTranscription(model string) SessionOption {
	return func(o *SessionOptions) {
		o.Config.InputAudioTranscription = &events.InputAudioTranscription{Model: model}
	}
}
