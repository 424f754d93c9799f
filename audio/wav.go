package audio

import (
	"bytes"
	"encoding/binary"
)

// EncodeWAV wraps the buffer into a 16-bit PCM RIFF/WAVE file so the
// synthesized summary is playable by anything on disk.
func EncodeWAV(buf *Buffer) []byte {
	channelCount := len(buf.Channels)
	frames := buf.FrameCount()

	interleaved := make([]float32, 0, frames*channelCount)
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channelCount; ch++ {
			interleaved = append(interleaved, buf.Channels[ch][i])
		}
	}
	samples := float32ToInt16(interleaved)

	dataSize := len(samples) * 2
	byteRate := buf.SampleRate * channelCount * 2
	blockAlign := channelCount * 2

	var out bytes.Buffer
	out.WriteString("RIFF")
	binary.Write(&out, binary.LittleEndian, uint32(36+dataSize))
	out.WriteString("WAVE")

	out.WriteString("fmt ")
	binary.Write(&out, binary.LittleEndian, uint32(16))
	binary.Write(&out, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&out, binary.LittleEndian, uint16(channelCount))
	binary.Write(&out, binary.LittleEndian, uint32(buf.SampleRate))
	binary.Write(&out, binary.LittleEndian, uint32(byteRate))
	binary.Write(&out, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&out, binary.LittleEndian, uint16(16)) // bits per sample

	out.WriteString("data")
	binary.Write(&out, binary.LittleEndian, uint32(dataSize))
	binary.Write(&out, binary.LittleEndian, samples)

	return out.Bytes()
}
