package assessor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/lucsky/cuid"
	log "github.com/sirupsen/logrus"

	"github.com/reliefworks/floodscan/audio"
	"github.com/reliefworks/floodscan/fault"
	"github.com/reliefworks/floodscan/metrics"
	"github.com/reliefworks/floodscan/model"
)

type FrameSampler interface {
	Sample(ctx context.Context, videoPath string) ([]model.Frame, error)
}

type DamageAnalyzer interface {
	Assess(ctx context.Context, frames []model.Frame, loc *model.GeoPoint) (*model.AssessmentResult, error)
}

type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string) (string, error)
}

type Locator interface {
	Locate(ctx context.Context) *model.GeoPoint
}

type RecordKeeper interface {
	AddAssessment(ctx context.Context, videoPath string, result model.AssessmentResult) (string, error)
}

/*
Assessor is the application controller: it orchestrates sampling and
assessment, owns the session record, and converts every pipeline failure
into a single user-facing message with the technical detail preserved in
logs. Overlapping analyses are rejected; one user action is in flight at
a time.
*/
type Assessor struct {
	sampler     FrameSampler
	analyzer    DamageAnalyzer
	synthesizer SpeechSynthesizer
	locator     Locator
	records     RecordKeeper // nil when persistence is off (test mode)

	mu             sync.Mutex
	session        Session
	cancelAnalysis context.CancelFunc
}

func New(sampler FrameSampler, analyzer DamageAnalyzer, synthesizer SpeechSynthesizer, locator Locator, records RecordKeeper) *Assessor {
	return &Assessor{
		sampler:     sampler,
		analyzer:    analyzer,
		synthesizer: synthesizer,
		locator:     locator,
		records:     records,
	}
}

// Session returns a snapshot of the current session record.
func (a *Assessor) Session() Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}

var ErrAnalysisInProgress = errors.New("an analysis is already in progress")

/*
Analyze runs the full pipeline for one video: sample frames, best-effort
locate, call the assessment service, gate on usability, publish the result.
Whatever happens, the session lands back at IsAnalyzing=false; the returned
error carries the diagnostic while the session carries the user message.
*/
func (a *Assessor) Analyze(ctx context.Context, videoPath string) error {
	a.mu.Lock()
	if a.session.IsAnalyzing {
		a.mu.Unlock()
		return ErrAnalysisInProgress
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancelAnalysis = cancel
	a.session = a.session.Apply(AnalysisStarted{PreviewURL: videoPath})
	generation := a.session.Generation
	a.mu.Unlock()
	defer cancel()

	start := time.Now()
	result, err := a.runPipeline(ctx, videoPath)
	metrics.AnalysisDuration.WithLabelValues("total").Observe(time.Since(start).Seconds())

	a.mu.Lock()
	defer a.mu.Unlock()

	if err != nil {
		metrics.AssessmentsTotal.WithLabelValues("failure").Inc()
		log.WithField("videoPath", videoPath).Errorf("analysis failed: %v", err)
		a.session = a.session.Apply(AnalysisFailed{Generation: generation, Message: fault.UserMessage(err)})
		return err
	}

	a.session = a.session.Apply(AnalysisSucceeded{Generation: generation, Assessment: result})
	if a.session.Assessment != result {
		// A reset happened mid-flight; the result belongs to a dead session.
		log.WithField("videoPath", videoPath).Warn("discarding stale analysis result after reset")
		metrics.AssessmentsTotal.WithLabelValues("stale").Inc()
		return nil
	}
	metrics.AssessmentsTotal.WithLabelValues("success").Inc()

	if a.records != nil {
		if id, err := a.records.AddAssessment(ctx, videoPath, *result); err != nil {
			// Persistence is best effort; the assessment is already displayed.
			log.Errorf("error recording assessment: %v", err)
		} else {
			log.WithField("id", id).WithField("propertyId", result.PropertyID).Info("assessment recorded")
		}
	}
	return nil
}

func (a *Assessor) runPipeline(ctx context.Context, videoPath string) (*model.AssessmentResult, error) {
	sampleStart := time.Now()
	frames, err := a.sampler.Sample(ctx, videoPath)
	if err != nil {
		return nil, err
	}
	metrics.AnalysisDuration.WithLabelValues("sampling").Observe(time.Since(sampleStart).Seconds())
	metrics.FramesExtractedTotal.Add(float64(len(frames)))

	loc := a.locator.Locate(ctx)
	if loc != nil {
		log.WithField("latitude", loc.Latitude).WithField("longitude", loc.Longitude).Debug("analysis request carries location")
	}

	result, err := a.analyzer.Assess(ctx, frames, loc)
	if err != nil {
		return nil, err
	}

	if !result.Usable() {
		return nil, fault.Newf(fault.KindUnusableResult, "isClear=%v with %d damages listed", result.IsClear, len(result.StructuralDamages))
	}

	if result.PropertyID == "" {
		result.PropertyID = "PD-" + cuid.Slug()
	}
	return result, nil
}

/*
Speak synthesizes the current Urdu summary and returns it as playable WAV
bytes. A synthesis failure is local to playback: it never clears or
invalidates the displayed assessment, and the user may simply retry.
*/
func (a *Assessor) Speak(ctx context.Context) ([]byte, error) {
	a.mu.Lock()
	if a.session.Assessment == nil {
		a.mu.Unlock()
		return nil, errors.New("no assessment to read")
	}
	if a.session.IsSynthesizingAudio {
		a.mu.Unlock()
		return nil, errors.New("speech synthesis is already in progress")
	}
	script := a.session.Assessment.UrduSummaryScript
	a.session = a.session.Apply(SynthesisStarted{})
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.session = a.session.Apply(SynthesisFinished{})
		a.mu.Unlock()
	}()

	b64, err := a.synthesizer.Synthesize(ctx, script)
	if err != nil {
		metrics.SpeechSynthesesTotal.WithLabelValues("failure").Inc()
		log.Errorf("speech synthesis failed: %v", err)
		return nil, err
	}

	buf, err := audio.DecodePCM(b64, audio.DefaultSampleRate, audio.DefaultChannelCount)
	if err != nil {
		metrics.SpeechSynthesesTotal.WithLabelValues("failure").Inc()
		return nil, fault.Wrap(fault.KindSynthesisEmpty, "audio payload undecodable", err)
	}

	metrics.SpeechSynthesesTotal.WithLabelValues("success").Inc()
	return audio.EncodeWAV(buf), nil
}

// Reset cancels any in-flight analysis and restores the initial session.
func (a *Assessor) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancelAnalysis != nil {
		a.cancelAnalysis()
		a.cancelAnalysis = nil
	}
	a.session = a.session.Apply(ResetRequested{})
}
