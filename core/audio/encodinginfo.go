// Package audio defines the capture/playback encoding contract: 16-bit
// signed little-endian PCM, mono, 24kHz by default, matching what the
// remote endpoint expects in input_audio_buffer.append.
package audio

import "time"

const (
	DefaultSampleRate = 24000
	DefaultChannels   = 1
)

type encodingFormat string

const (
	EncodingLinear16 encodingFormat = "linear16"
	EncodingMulaw    encodingFormat = "mulaw"
	EncodingALaw     encodingFormat = "alaw"
)

func (e encodingFormat) Name() string { return string(e) }

func (e encodingFormat) ByteSize() int {
	switch e {
	case EncodingMulaw, EncodingALaw:
		return 1
	case EncodingLinear16:
		return 2
	}
	return -1
}

type EncodingInfo struct {
	SampleRate int
	Channels   int
	Format     encodingFormat
}

func GetDefaultEncodingInfo() EncodingInfo {
	return EncodingInfo{
		SampleRate: DefaultSampleRate,
		Channels:   DefaultChannels,
		Format:     EncodingLinear16,
	}
}

func (e EncodingInfo) IsZero() bool {
	return e.SampleRate == 0 || e.Format.Name() == ""
}

func (e EncodingInfo) SilenceValue() byte {
	switch e.Format {
	case EncodingALaw:
		return 0x55
	case EncodingMulaw:
		return 0xFF
	case EncodingLinear16:
		return 0
	}
	return 0
}

func (e EncodingInfo) BytesPerSecond() int {
	channels := e.Channels
	if channels == 0 {
		channels = 1
	}
	return e.SampleRate * e.Format.ByteSize() * channels
}

// ChunkDuration reports how much wall-clock audio n bytes represent.
func (e EncodingInfo) ChunkDuration(n int) time.Duration {
	perSecond := e.BytesPerSecond()
	if perSecond <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second / time.Duration(perSecond)
}
