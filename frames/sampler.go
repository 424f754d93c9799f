package frames

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"os/exec"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/image/draw"

	"github.com/reliefworks/floodscan/fault"
	"github.com/reliefworks/floodscan/model"
)

// DefaultCapturePoints are the fixed relative timestamps sampled from every
// clip. They are a constant table, not content-aware keyframing, and always
// include a point very near the end.
var DefaultCapturePoints = []float64{0.2, 0.4, 0.6, 0.8, 0.95}

const (
	DefaultMaxDimension = 1080
	DefaultJPEGQuality  = 68
	DefaultSeekTimeout  = 15 * time.Second
)

type Sampler struct {
	FFmpegPath    string
	FFprobePath   string
	CapturePoints []float64
	MaxDimension  int
	JPEGQuality   int
	SeekTimeout   time.Duration
}

func NewSampler(ffmpegPath, ffprobePath string) *Sampler {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Sampler{
		FFmpegPath:    ffmpegPath,
		FFprobePath:   ffprobePath,
		CapturePoints: DefaultCapturePoints,
		MaxDimension:  DefaultMaxDimension,
		JPEGQuality:   DefaultJPEGQuality,
		SeekTimeout:   DefaultSeekTimeout,
	}
}

/*
Sample extracts one compressed still per capture point, in capture-point
order. The returned sequence length always equals the number of capture
points: a capture that never settles within the per-step timeout fails the
whole operation rather than returning a short sequence. Captures run
sequentially because seeking is destructive to the decode position.
*/
func (s *Sampler) Sample(ctx context.Context, videoPath string) ([]model.Frame, error) {
	duration, err := s.probeDuration(ctx, videoPath)
	if err != nil {
		return nil, fault.Wrap(fault.KindFrameExtraction, "video metadata never loaded", err)
	}
	if duration <= 0 {
		return nil, fault.Newf(fault.KindFrameExtraction, "video reports non-positive duration %f", duration)
	}

	frames := make([]model.Frame, 0, len(s.CapturePoints))
	for _, point := range s.CapturePoints {
		frame, err := s.captureAt(ctx, videoPath, duration*point, point)
		if err != nil {
			return nil, err
		}
		frames = append(frames, *frame)
	}

	log.WithField("videoPath", videoPath).Debugf("sampled %d frames over %.1fs", len(frames), duration)
	return frames, nil
}

func (s *Sampler) probeDuration(ctx context.Context, videoPath string) (float64, error) {
	probeCtx, cancel := context.WithTimeout(ctx, s.SeekTimeout)
	defer cancel()

	cmd := exec.CommandContext(probeCtx, s.FFprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		videoPath,
	)
	// Orphaned children must not hold the pipe open past the deadline
	cmd.WaitDelay = time.Second
	output, err := cmd.Output()
	if errors.Is(probeCtx.Err(), context.DeadlineExceeded) {
		return 0, fmt.Errorf("no metadata within %s", s.SeekTimeout)
	}
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w", err)
	}
	duration, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration: %w", err)
	}
	return duration, nil
}

func (s *Sampler) captureAt(ctx context.Context, videoPath string, seconds, point float64) (*model.Frame, error) {
	stepCtx, cancel := context.WithTimeout(ctx, s.SeekTimeout)
	defer cancel()

	cmd := exec.CommandContext(stepCtx, s.FFmpegPath,
		"-ss", fmt.Sprintf("%.3f", seconds),
		"-i", videoPath,
		"-frames:v", "1",
		"-f", "image2",
		"-c:v", "mjpeg",
		"pipe:1",
	)
	cmd.WaitDelay = time.Second
	raw, err := cmd.Output()
	if errors.Is(stepCtx.Err(), context.DeadlineExceeded) {
		return nil, fault.Newf(fault.KindFrameExtraction, "seek to %.2f never settled within %s", point, s.SeekTimeout)
	}
	if err != nil {
		return nil, fault.Wrap(fault.KindFrameExtraction, fmt.Sprintf("capturing frame at %.2f", point), err)
	}
	if len(raw) == 0 {
		return nil, fault.Newf(fault.KindFrameExtraction, "no frame data at %.2f", point)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fault.Wrap(fault.KindFrameExtraction, fmt.Sprintf("decoding frame at %.2f", point), err)
	}

	data, err := encodeJPEG(downscale(img, s.MaxDimension), s.JPEGQuality)
	if err != nil {
		return nil, fault.Wrap(fault.KindFrameExtraction, fmt.Sprintf("encoding frame at %.2f", point), err)
	}

	return &model.Frame{Data: data, MimeType: "image/jpeg", Position: point}, nil
}

// fitWithin scales (w, h) down so neither dimension exceeds limit, preserving
// aspect ratio. Dimensions already within the limit are untouched.
func fitWithin(w, h, limit int) (int, int) {
	longest := w
	if h > longest {
		longest = h
	}
	if longest <= limit {
		return w, h
	}
	scale := float64(limit) / float64(longest)
	scaledW := int(float64(w) * scale)
	scaledH := int(float64(h) * scale)
	if scaledW < 1 {
		scaledW = 1
	}
	if scaledH < 1 {
		scaledH = 1
	}
	return scaledW, scaledH
}

func downscale(img image.Image, limit int) image.Image {
	bounds := img.Bounds()
	w, h := fitWithin(bounds.Dx(), bounds.Dy(), limit)
	if w == bounds.Dx() && h == bounds.Dy() {
		return img
	}
	scaled := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, bounds, draw.Over, nil)
	return scaled
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
