package audio

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"time"
)

// The speech endpoint emits raw signed 16-bit little-endian PCM,
// mono, at 24000 Hz. No container, no header.
const (
	DefaultSampleRate   = 24000
	DefaultChannelCount = 1
)

// Buffer is decoded audio ready for playback: one normalized float32
// slice per channel, every sample in [-1.0, 1.0].
type Buffer struct {
	SampleRate int
	Channels   [][]float32
}

func (b *Buffer) FrameCount() int {
	if len(b.Channels) == 0 {
		return 0
	}
	return len(b.Channels[0])
}

func (b *Buffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(b.FrameCount()) / float64(b.SampleRate) * float64(time.Second))
}

/*
DecodePCM reinterprets a base64 payload as raw little-endian int16 samples,
de-interleaves them by channel and normalizes to [-1.0, 1.0] by dividing by
32768. Samples left over after de-interleaving (a count not divisible by
the channel count) are truncated, not an error.
*/
func DecodePCM(b64 string, sampleRate, channelCount int) (*Buffer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("non-positive sample rate %d", sampleRate)
	}
	if channelCount <= 0 {
		return nil, fmt.Errorf("non-positive channel count %d", channelCount)
	}

	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("decoding base64 audio: %w", err)
	}

	samples := pcmBytesToInt16(raw)
	frames := len(samples) / channelCount

	channels := make([][]float32, channelCount)
	for ch := range channels {
		channels[ch] = make([]float32, frames)
	}
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channelCount; ch++ {
			channels[ch][i] = float32(samples[i*channelCount+ch]) / 32768.0
		}
	}

	return &Buffer{SampleRate: sampleRate, Channels: channels}, nil
}

// pcmBytesToInt16 reads little-endian pairs; a trailing odd byte is dropped.
func pcmBytesToInt16(pcm []byte) []int16 {
	samples := make([]int16, len(pcm)/2)
	for i := 0; i < len(samples); i++ {
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}
	return samples
}

func float32ToInt16(samples []float32) []int16 {
	result := make([]int16, len(samples))
	for i, s := range samples {
		if s > 1.0 {
			s = 1.0
		} else if s < -1.0 {
			s = -1.0
		}
		result[i] = int16(s * 32767.0)
	}
	return result
}
