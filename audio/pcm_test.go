package audio

import (
	"encoding/base64"
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeSamples(samples []int16) string {
	raw := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(s))
	}
	return base64.StdEncoding.EncodeToString(raw)
}

func TestDecodePCM(t *testing.T) {
	t.Run("normalizes known samples in order", func(t *testing.T) {
		b64 := encodeSamples([]int16{0, 16384, -16384, 32767})
		buf, err := DecodePCM(b64, 24000, 1)
		require.NoError(t, err)
		require.Len(t, buf.Channels, 1)
		samples := buf.Channels[0]
		require.Len(t, samples, 4)
		assert.InDelta(t, 0.0, samples[0], 1e-6)
		assert.InDelta(t, 0.5, samples[1], 1e-6)
		assert.InDelta(t, -0.5, samples[2], 1e-6)
		assert.InDelta(t, 0.99997, samples[3], 1e-4)
	})

	t.Run("de-interleaves stereo payloads", func(t *testing.T) {
		b64 := encodeSamples([]int16{100, -100, 200, -200})
		buf, err := DecodePCM(b64, 24000, 2)
		require.NoError(t, err)
		require.Len(t, buf.Channels, 2)
		assert.Len(t, buf.Channels[0], 2)
		assert.InDelta(t, float32(100)/32768.0, buf.Channels[0][0], 1e-6)
		assert.InDelta(t, float32(-100)/32768.0, buf.Channels[1][0], 1e-6)
	})

	t.Run("truncates a remainder instead of erroring", func(t *testing.T) {
		// 5 samples across 2 channels leaves one dangling sample
		b64 := encodeSamples([]int16{1, 2, 3, 4, 5})
		buf, err := DecodePCM(b64, 24000, 2)
		require.NoError(t, err)
		assert.Equal(t, 2, buf.FrameCount())
	})

	t.Run("drops a trailing odd byte", func(t *testing.T) {
		raw := []byte{0x00, 0x40, 0x7f} // one full sample plus a stray byte
		buf, err := DecodePCM(base64.StdEncoding.EncodeToString(raw), 24000, 1)
		require.NoError(t, err)
		assert.Equal(t, 1, buf.FrameCount())
	})

	t.Run("rejects malformed base64", func(t *testing.T) {
		_, err := DecodePCM("!!! not base64 !!!", 24000, 1)
		assert.Error(t, err)
	})

	t.Run("rejects nonsense rates and channel counts", func(t *testing.T) {
		_, err := DecodePCM("", 0, 1)
		assert.Error(t, err)
		_, err = DecodePCM("", 24000, 0)
		assert.Error(t, err)
	})

	t.Run("reports duration from the sample rate", func(t *testing.T) {
		samples := make([]int16, 24000) // exactly one second mono
		buf, err := DecodePCM(encodeSamples(samples), 24000, 1)
		require.NoError(t, err)
		assert.Equal(t, time.Second, buf.Duration())
	})
}

func TestEncodeWAV(t *testing.T) {
	b64 := encodeSamples([]int16{0, 16384, -16384, 32767})
	buf, err := DecodePCM(b64, 24000, 1)
	require.NoError(t, err)

	wav := EncodeWAV(buf)

	require.Greater(t, len(wav), 44)
	assert.Equal(t, "RIFF", string(wav[0:4]))
	assert.Equal(t, "WAVE", string(wav[8:12]))
	assert.Equal(t, "fmt ", string(wav[12:16]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(wav[20:22]), "PCM format tag")
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(wav[22:24]), "mono")
	assert.Equal(t, uint32(24000), binary.LittleEndian.Uint32(wav[24:28]), "sample rate")
	assert.Equal(t, "data", string(wav[36:40]))
	assert.Equal(t, uint32(8), binary.LittleEndian.Uint32(wav[40:44]), "4 samples x 2 bytes")

	// Round-trip check on an exactly representable sample
	first := int16(binary.LittleEndian.Uint16(wav[44:46]))
	assert.Equal(t, int16(0), first)
	second := int16(binary.LittleEndian.Uint16(wav[46:48]))
	assert.InDelta(t, 16384, second, 1)
}
