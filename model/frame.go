package model

// Frame is one compressed still captured from the source video.
// Position is the relative timestamp (0.0–1.0) it was captured at.
// Frames are immutable once produced and keep their capture order.
type Frame struct {
	Data     []byte
	MimeType string
	Position float64
}
