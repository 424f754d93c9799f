package assessor

import "github.com/reliefworks/floodscan/model"

/*
Session is the single piece of mutable application state. It is never
mutated in place: every transition builds a replacement record through
Apply, a pure function of (old state, event). The Generation counter ties
an in-flight analysis to the session it started in, so a completion that
arrives after a reset is discarded instead of resurrecting stale state.
*/
type Session struct {
	IsAnalyzing         bool
	IsSynthesizingAudio bool
	PreviewURL          string
	Assessment          *model.AssessmentResult
	Error               string
	Generation          uint64
}

type Event interface {
	isEvent()
}

// AnalysisStarted optimistically clears any prior error and assessment
// before the network call begins, and opens a new generation.
type AnalysisStarted struct {
	PreviewURL string
}

type AnalysisSucceeded struct {
	Generation uint64
	Assessment *model.AssessmentResult
}

type AnalysisFailed struct {
	Generation uint64
	Message    string
}

type SynthesisStarted struct{}

type SynthesisFinished struct{}

// ResetRequested restores the zero-value session, discarding any prior
// assessment entirely, and invalidates in-flight completions.
type ResetRequested struct{}

func (AnalysisStarted) isEvent()   {}
func (AnalysisSucceeded) isEvent() {}
func (AnalysisFailed) isEvent()    {}
func (SynthesisStarted) isEvent()  {}
func (SynthesisFinished) isEvent() {}
func (ResetRequested) isEvent()    {}

func (s Session) Apply(ev Event) Session {
	switch e := ev.(type) {
	case AnalysisStarted:
		return Session{
			IsAnalyzing: true,
			PreviewURL:  e.PreviewURL,
			Generation:  s.Generation + 1,
		}
	case AnalysisSucceeded:
		if e.Generation != s.Generation {
			return s
		}
		next := s
		next.IsAnalyzing = false
		next.Assessment = e.Assessment
		next.Error = ""
		return next
	case AnalysisFailed:
		if e.Generation != s.Generation {
			return s
		}
		next := s
		next.IsAnalyzing = false
		next.Assessment = nil
		next.Error = e.Message
		return next
	case SynthesisStarted:
		next := s
		next.IsSynthesizingAudio = true
		return next
	case SynthesisFinished:
		next := s
		next.IsSynthesizingAudio = false
		return next
	case ResetRequested:
		return Session{Generation: s.Generation + 1}
	default:
		return s
	}
}
