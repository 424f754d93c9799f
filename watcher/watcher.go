package watcher

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"

	"github.com/reliefworks/floodscan/assessor"
)

// settleDelay gives an uploader time to finish writing a video before the
// pipeline reads it. fsnotify fires on create, not on close.
const settleDelay = 2 * time.Second

var videoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".webm": true,
	".mkv":  true,
	".avi":  true,
	".3gp":  true,
}

/*
Watcher turns a directory into the upload surface: a video file dropped
into the inbox is analyzed, and the claim report, result JSON and speech
WAV land in the output directory under the video's base name. Files are
handled one at a time; the assessor rejects overlap anyway.
*/
type Watcher struct {
	assessor  *assessor.Assessor
	inboxDir  string
	outputDir string
}

func NewWatcher(a *assessor.Assessor, inboxDir, outputDir string) *Watcher {
	return &Watcher{
		assessor:  a,
		inboxDir:  inboxDir,
		outputDir: outputDir,
	}
}

func (w *Watcher) Watch(ctx context.Context) error {
	if err := os.MkdirAll(w.inboxDir, 0755); err != nil {
		return err
	}
	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return err
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsWatcher.Close()

	if err := fsWatcher.Add(w.inboxDir); err != nil {
		return err
	}
	log.Infof("watching inbox %s", w.inboxDir)

	for {
		select {
		case <-ctx.Done():
			log.Debug("exiting Watcher by closing channel")
			return nil
		case event, ok := <-fsWatcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !isVideoFile(event.Name) {
				log.WithField("path", event.Name).Debug("ignoring non-video inbox file")
				continue
			}
			// Let the writer finish before reading; bail out on shutdown
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(settleDelay):
			}
			w.handleVideo(ctx, event.Name)
		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return nil
			}
			log.Errorf("inbox watch error: %v", err)
		}
	}
}

func (w *Watcher) handleVideo(ctx context.Context, videoPath string) {
	log.WithField("videoPath", videoPath).Info("found video in inbox")

	if err := w.assessor.Analyze(ctx, videoPath); err != nil {
		// The session carries the user-facing message; nothing to write out.
		log.WithField("videoPath", videoPath).Warnf("inbox analysis failed: %v", err)
		return
	}

	session := w.assessor.Session()
	if session.Assessment == nil {
		// Reset raced the completion; treat as abandoned.
		return
	}

	base := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	w.writeResult(base, session)
	w.writeSpeech(ctx, base)

	// Inbox mode is batch: once the artifacts are on disk the session is done.
	w.assessor.Reset()
}

func (w *Watcher) writeResult(base string, session assessor.Session) {
	resultJSON, err := json.MarshalIndent(session.Assessment, "", "  ")
	if err != nil {
		log.Errorf("error marshaling result for %s: %v", base, err)
		return
	}
	resultPath := filepath.Join(w.outputDir, base+".assessment.json")
	if err := os.WriteFile(resultPath, resultJSON, 0644); err != nil {
		log.Errorf("error writing %s: %v", resultPath, err)
	}

	claim := assessor.RenderClaimDocument(*session.Assessment, time.Now())
	claimPath := filepath.Join(w.outputDir, base+".claim.txt")
	if err := os.WriteFile(claimPath, []byte(claim), 0644); err != nil {
		log.Errorf("error writing %s: %v", claimPath, err)
	}
}

func (w *Watcher) writeSpeech(ctx context.Context, base string) {
	wav, err := w.assessor.Speak(ctx)
	if err != nil {
		// Audio is a bonus on top of the written report; keep going.
		log.Warnf("speech unavailable for %s: %v", base, err)
		return
	}
	wavPath := filepath.Join(w.outputDir, base+".summary.wav")
	if err := os.WriteFile(wavPath, wav, 0644); err != nil {
		log.Errorf("error writing %s: %v", wavPath, err)
	}
}

func isVideoFile(path string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(path))]
}
