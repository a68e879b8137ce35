// Command voxlink-console is a terminal client for driving a realtime
// conversation: it mints a session, opens the transport, and renders the
// live transcript while text (and optionally microphone audio) is sent
// upstream.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	realtime "github.com/tvrdic/voxlink-core/core"
	"github.com/tvrdic/voxlink-core/core/audio/miniaudio"
	"github.com/tvrdic/voxlink-core/core/credentials"
	"github.com/tvrdic/voxlink-core/core/transport"
	"github.com/tvrdic/voxlink-core/core/transport/peer"
	"github.com/tvrdic/voxlink-core/core/transport/socket"
)

func main() {
	endpoint := flag.String("endpoint", "https://api.openai.com/v1/realtime", "negotiation endpoint")
	sessionsURL := flag.String("sessions-url", "https://api.openai.com/v1/realtime/sessions", "credential minting endpoint")
	model := flag.String("model", "gpt-4o-realtime-preview", "model to converse with")
	voice := flag.String("voice", "", "voice for spoken responses")
	instructions := flag.String("instructions", "", "system instructions for the session")
	transportName := flag.String("transport", "webrtc", "transport to dial: webrtc or socket")
	withAudio := flag.Bool("audio", false, "capture microphone audio and send it upstream")
	flag.Parse()

	if err := run(*endpoint, *sessionsURL, *model, *voice, *instructions, *transportName, *withAudio); err != nil {
		log.Println("voxlink-console exited with an error", "error", err)
		os.Exit(1)
	}
}

func run(endpoint, sessionsURL, model, voice, instructions, transportName string, withAudio bool) error {
	var dialer transport.Dialer
	switch transportName {
	case "webrtc":
		dialer = peer.NewDialer()
	case "socket":
		dialer = socket.NewDialer()
	default:
		return fmt.Errorf("unknown transport %q, expected webrtc or socket", transportName)
	}

	opts := []realtime.ManagerOption{
		realtime.WithCredentialClient(credentials.NewClient(sessionsURL)),
		realtime.WithDialer(dialer),
		realtime.WithEndpoint(endpoint),
	}

	var audioClient *miniaudio.Client
	if withAudio {
		client, err := miniaudio.NewClient()
		if err != nil {
			return fmt.Errorf("failed to initialize audio: %w", err)
		}
		defer client.Close()
		audioClient = client
		opts = append(opts, realtime.WithAudioOutput(client))
	}

	manager := realtime.NewManager(opts...)

	sessionOpts := []realtime.SessionOption{realtime.WithModel(model)}
	if withAudio {
		sessionOpts = append(sessionOpts,
			realtime.WithModalities(realtime.ModalityText, realtime.ModalityAudio))
	} else {
		sessionOpts = append(sessionOpts, realtime.WithModalities(realtime.ModalityText))
	}
	if voice != "" {
		sessionOpts = append(sessionOpts, realtime.WithVoice(voice))
	}
	if instructions != "" {
		sessionOpts = append(sessionOpts, realtime.WithInstructions(instructions))
	}

	id, err := manager.Start(context.Background(), sessionOpts...)
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	handle := manager.Handle(id)
	defer handle.Close()

	if audioClient != nil {
		err := audioClient.StartCapture(context.Background(), func(pcm []byte) {
			// Drops are already reported by the manager.
			_ = manager.SendAudio(id, pcm)
		})
		if err != nil {
			return fmt.Errorf("failed to start audio capture: %w", err)
		}
		defer audioClient.StopCapture()
	}

	program := tea.NewProgram(newConsole(handle), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("console ui failed: %w", err)
	}
	return nil
}
