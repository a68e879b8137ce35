package audio

import (
	"encoding/base64"
	"fmt"
)

// EncodeChunk prepares a raw PCM chunk for an input_audio_buffer.append
// event.
func EncodeChunk(pcm []byte) string {
	return base64.StdEncoding.EncodeToString(pcm)
}

// DecodeChunk reverses EncodeChunk.
func DecodeChunk(chunk string) ([]byte, error) {
	pcm, err := base64.StdEncoding.DecodeString(chunk)
	if err != nil {
		return nil, fmt.Errorf("failed to decode audio chunk: %w", err)
	}
	return pcm, nil
}
