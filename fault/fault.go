// Package fault carries the typed failures produced along the analysis
// pipeline. Every fault maps to exactly one user-facing message; the
// Detail field is a diagnostic for logs and must never be shown directly.
package fault

import (
	"errors"
	"fmt"
)

type Kind string

const (
	// The video's metadata never loaded or a seek never settled.
	KindFrameExtraction Kind = "FRAME_EXTRACTION"
	// Transport-level failure reaching the assessment service.
	KindNetwork Kind = "NETWORK"
	// The reply's text could not be coerced to the expected JSON shape.
	KindInvalidResponse Kind = "INVALID_RESPONSE"
	// The service explicitly errored or refused (safety filter, quota).
	KindServiceRejected Kind = "SERVICE_REJECTED"
	// Well-formed reply, but it signals insufficient visual evidence.
	KindUnusableResult Kind = "UNUSABLE_RESULT"
	// The speech reply carried no audio payload.
	KindSynthesisEmpty Kind = "SYNTHESIS_EMPTY"
)

type Fault struct {
	Kind   Kind
	Detail string
	Err    error
}

func (f *Fault) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Detail, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Detail)
}

func (f *Fault) Unwrap() error {
	return f.Err
}

func New(kind Kind, detail string) *Fault {
	return &Fault{Kind: kind, Detail: detail}
}

func Newf(kind Kind, format string, args ...any) *Fault {
	return &Fault{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, detail string, err error) *Fault {
	return &Fault{Kind: kind, Detail: detail, Err: err}
}

// KindOf extracts the fault kind from anywhere in err's chain.
func KindOf(err error) (Kind, bool) {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind, true
	}
	return "", false
}

func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// UserMessage converts any pipeline error into the single string shown to
// the person holding the camera. Raw model text and transport detail stay
// in the Fault for logging.
func UserMessage(err error) string {
	kind, ok := KindOf(err)
	if !ok {
		return "Connection timed out. Please try again with a shorter video."
	}
	switch kind {
	case KindFrameExtraction:
		return "Could not read the video. Please retry with a shorter, clearer clip."
	case KindInvalidResponse:
		return "AI Specialist processing error. Please try a different video clip."
	case KindUnusableResult:
		return "Visuals too unclear. Please film closer to the damage."
	case KindSynthesisEmpty:
		return "Audio summary is unavailable right now. Please try playback again."
	default:
		// Network and service rejections read the same to the user.
		return "Connection timed out. Please try again with a shorter video."
	}
}
