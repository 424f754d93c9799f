package assessor

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/reliefworks/floodscan/fault"
	"github.com/reliefworks/floodscan/model"
)

type MockFrameSampler struct {
	mock.Mock
}

func (m *MockFrameSampler) Sample(ctx context.Context, videoPath string) ([]model.Frame, error) {
	args := m.Called(ctx, videoPath)
	return args.Get(0).([]model.Frame), args.Error(1)
}

type MockDamageAnalyzer struct {
	mock.Mock
}

func (m *MockDamageAnalyzer) Assess(ctx context.Context, frames []model.Frame, loc *model.GeoPoint) (*model.AssessmentResult, error) {
	args := m.Called(ctx, frames, loc)
	return args.Get(0).(*model.AssessmentResult), args.Error(1)
}

type MockSpeechSynthesizer struct {
	mock.Mock
}

func (m *MockSpeechSynthesizer) Synthesize(ctx context.Context, text string) (string, error) {
	args := m.Called(ctx, text)
	return args.Get(0).(string), args.Error(1)
}

type MockLocator struct {
	mock.Mock
}

func (m *MockLocator) Locate(ctx context.Context) *model.GeoPoint {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*model.GeoPoint)
}

type MockRecordKeeper struct {
	mock.Mock
}

func (m *MockRecordKeeper) AddAssessment(ctx context.Context, videoPath string, result model.AssessmentResult) (string, error) {
	args := m.Called(ctx, videoPath, result)
	return args.Get(0).(string), args.Error(1)
}

func sampledFrames() []model.Frame {
	return []model.Frame{
		{Data: []byte{1}, MimeType: "image/jpeg", Position: 0.2},
		{Data: []byte{2}, MimeType: "image/jpeg", Position: 0.95},
	}
}

func clearResult() *model.AssessmentResult {
	return &model.AssessmentResult{
		PropertyID: "PD-1",
		StructuralDamages: []model.DamageDetail{
			{Location: "North wall", Description: "shear crack", Severity: model.SeverityCritical},
		},
		RequiredMaterials:    []model.MaterialEstimate{},
		UrduSummaryScript:    "...",
		PashtoSummaryScript:  "...",
		FormalTechnicalNotes: "...",
		SafetyScore:          22,
		IsClear:              true,
	}
}

func TestAnalyze(t *testing.T) {
	t.Run("exposes the exact result on success with no error set", func(t *testing.T) {
		result := clearResult()

		var a *Assessor
		mockSampler := new(MockFrameSampler)
		mockSampler.On("Sample", mock.Anything, "/tmp/clip.mp4").Return(sampledFrames(), nil).
			Run(func(args mock.Arguments) {
				assert.True(t, a.Session().IsAnalyzing, "pipeline must run with isAnalyzing set")
			})
		mockAnalyzer := new(MockDamageAnalyzer)
		mockAnalyzer.On("Assess", mock.Anything, sampledFrames(), (*model.GeoPoint)(nil)).Return(result, nil)
		mockLocator := new(MockLocator)
		mockLocator.On("Locate", mock.Anything).Return(nil)

		a = New(mockSampler, mockAnalyzer, new(MockSpeechSynthesizer), mockLocator, nil)

		assert.False(t, a.Session().IsAnalyzing)
		err := a.Analyze(context.Background(), "/tmp/clip.mp4")
		require.NoError(t, err)

		session := a.Session()
		assert.False(t, session.IsAnalyzing)
		assert.Same(t, result, session.Assessment)
		assert.Empty(t, session.Error)
		assert.Equal(t, "/tmp/clip.mp4", session.PreviewURL)
	})

	t.Run("passes the located point through to the analyzer", func(t *testing.T) {
		loc := &model.GeoPoint{Latitude: 33.68, Longitude: 73.04}

		mockSampler := new(MockFrameSampler)
		mockSampler.On("Sample", mock.Anything, mock.Anything).Return(sampledFrames(), nil)
		mockAnalyzer := new(MockDamageAnalyzer)
		mockAnalyzer.On("Assess", mock.Anything, sampledFrames(), loc).Return(clearResult(), nil)
		mockLocator := new(MockLocator)
		mockLocator.On("Locate", mock.Anything).Return(loc)

		a := New(mockSampler, mockAnalyzer, new(MockSpeechSynthesizer), mockLocator, nil)
		require.NoError(t, a.Analyze(context.Background(), "/tmp/clip.mp4"))
		mockAnalyzer.AssertNumberOfCalls(t, "Assess", 1)
	})

	t.Run("rejects an unclear result with no damages as unusable", func(t *testing.T) {
		unusable := clearResult()
		unusable.IsClear = false
		unusable.StructuralDamages = nil

		mockSampler := new(MockFrameSampler)
		mockSampler.On("Sample", mock.Anything, mock.Anything).Return(sampledFrames(), nil)
		mockAnalyzer := new(MockDamageAnalyzer)
		mockAnalyzer.On("Assess", mock.Anything, mock.Anything, (*model.GeoPoint)(nil)).Return(unusable, nil)
		mockLocator := new(MockLocator)
		mockLocator.On("Locate", mock.Anything).Return(nil)

		a := New(mockSampler, mockAnalyzer, new(MockSpeechSynthesizer), mockLocator, nil)
		err := a.Analyze(context.Background(), "/tmp/clip.mp4")
		require.Error(t, err)
		assert.True(t, fault.Is(err, fault.KindUnusableResult))

		session := a.Session()
		assert.False(t, session.IsAnalyzing)
		assert.Nil(t, session.Assessment)
		assert.Equal(t, "Visuals too unclear. Please film closer to the damage.", session.Error)
	})

	t.Run("a listed damage overrides the clarity flag", func(t *testing.T) {
		unclearButDamaged := clearResult()
		unclearButDamaged.IsClear = false // one damage entry remains

		mockSampler := new(MockFrameSampler)
		mockSampler.On("Sample", mock.Anything, mock.Anything).Return(sampledFrames(), nil)
		mockAnalyzer := new(MockDamageAnalyzer)
		mockAnalyzer.On("Assess", mock.Anything, mock.Anything, (*model.GeoPoint)(nil)).Return(unclearButDamaged, nil)
		mockLocator := new(MockLocator)
		mockLocator.On("Locate", mock.Anything).Return(nil)

		a := New(mockSampler, mockAnalyzer, new(MockSpeechSynthesizer), mockLocator, nil)
		require.NoError(t, a.Analyze(context.Background(), "/tmp/clip.mp4"))
		assert.NotNil(t, a.Session().Assessment)
	})

	t.Run("a sampling failure surfaces the frame extraction message", func(t *testing.T) {
		mockSampler := new(MockFrameSampler)
		mockSampler.On("Sample", mock.Anything, mock.Anything).
			Return([]model.Frame{}, fault.New(fault.KindFrameExtraction, "metadata never loaded"))

		a := New(mockSampler, new(MockDamageAnalyzer), new(MockSpeechSynthesizer), new(MockLocator), nil)
		err := a.Analyze(context.Background(), "/tmp/clip.mp4")
		require.Error(t, err)

		session := a.Session()
		assert.False(t, session.IsAnalyzing)
		assert.Contains(t, session.Error, "shorter, clearer clip")
	})

	t.Run("fills a missing property id", func(t *testing.T) {
		anonymous := clearResult()
		anonymous.PropertyID = ""

		mockSampler := new(MockFrameSampler)
		mockSampler.On("Sample", mock.Anything, mock.Anything).Return(sampledFrames(), nil)
		mockAnalyzer := new(MockDamageAnalyzer)
		mockAnalyzer.On("Assess", mock.Anything, mock.Anything, (*model.GeoPoint)(nil)).Return(anonymous, nil)
		mockLocator := new(MockLocator)
		mockLocator.On("Locate", mock.Anything).Return(nil)

		a := New(mockSampler, mockAnalyzer, new(MockSpeechSynthesizer), mockLocator, nil)
		require.NoError(t, a.Analyze(context.Background(), "/tmp/clip.mp4"))
		assert.NotEmpty(t, a.Session().Assessment.PropertyID)
	})

	t.Run("records the assessment when a record keeper is wired", func(t *testing.T) {
		result := clearResult()

		mockSampler := new(MockFrameSampler)
		mockSampler.On("Sample", mock.Anything, mock.Anything).Return(sampledFrames(), nil)
		mockAnalyzer := new(MockDamageAnalyzer)
		mockAnalyzer.On("Assess", mock.Anything, mock.Anything, (*model.GeoPoint)(nil)).Return(result, nil)
		mockLocator := new(MockLocator)
		mockLocator.On("Locate", mock.Anything).Return(nil)
		mockRecords := new(MockRecordKeeper)
		mockRecords.On("AddAssessment", mock.Anything, "/tmp/clip.mp4", *result).Return("rec-1", nil)

		a := New(mockSampler, mockAnalyzer, new(MockSpeechSynthesizer), mockLocator, mockRecords)
		require.NoError(t, a.Analyze(context.Background(), "/tmp/clip.mp4"))
		mockRecords.AssertNumberOfCalls(t, "AddAssessment", 1)
	})
}

func TestReset(t *testing.T) {
	t.Run("restores all session fields to their initial values", func(t *testing.T) {
		result := clearResult()

		mockSampler := new(MockFrameSampler)
		mockSampler.On("Sample", mock.Anything, mock.Anything).Return(sampledFrames(), nil)
		mockAnalyzer := new(MockDamageAnalyzer)
		mockAnalyzer.On("Assess", mock.Anything, mock.Anything, (*model.GeoPoint)(nil)).Return(result, nil)
		mockLocator := new(MockLocator)
		mockLocator.On("Locate", mock.Anything).Return(nil)

		a := New(mockSampler, mockAnalyzer, new(MockSpeechSynthesizer), mockLocator, nil)
		require.NoError(t, a.Analyze(context.Background(), "/tmp/clip.mp4"))
		require.NotNil(t, a.Session().Assessment)

		a.Reset()

		session := a.Session()
		assert.False(t, session.IsAnalyzing)
		assert.False(t, session.IsSynthesizingAudio)
		assert.Empty(t, session.PreviewURL)
		assert.Nil(t, session.Assessment)
		assert.Empty(t, session.Error)
	})
}

func TestSpeak(t *testing.T) {
	pcm := base64.StdEncoding.EncodeToString([]byte{0x00, 0x00, 0x00, 0x40})

	analyzed := func(synthesizer SpeechSynthesizer) *Assessor {
		mockSampler := new(MockFrameSampler)
		mockSampler.On("Sample", mock.Anything, mock.Anything).Return(sampledFrames(), nil)
		mockAnalyzer := new(MockDamageAnalyzer)
		mockAnalyzer.On("Assess", mock.Anything, mock.Anything, (*model.GeoPoint)(nil)).Return(clearResult(), nil)
		mockLocator := new(MockLocator)
		mockLocator.On("Locate", mock.Anything).Return(nil)

		a := New(mockSampler, mockAnalyzer, synthesizer, mockLocator, nil)
		if err := a.Analyze(context.Background(), "/tmp/clip.mp4"); err != nil {
			panic(err)
		}
		return a
	}

	t.Run("returns playable WAV bytes for the current summary", func(t *testing.T) {
		mockSynth := new(MockSpeechSynthesizer)
		mockSynth.On("Synthesize", mock.Anything, "...").Return(pcm, nil)

		a := analyzed(mockSynth)
		wav, err := a.Speak(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "RIFF", string(wav[0:4]))
		assert.False(t, a.Session().IsSynthesizingAudio)
	})

	t.Run("a synthesis failure leaves the assessment intact", func(t *testing.T) {
		mockSynth := new(MockSpeechSynthesizer)
		mockSynth.On("Synthesize", mock.Anything, mock.Anything).
			Return("", fault.New(fault.KindSynthesisEmpty, "no audio payload"))

		a := analyzed(mockSynth)
		_, err := a.Speak(context.Background())
		require.Error(t, err)
		assert.True(t, fault.Is(err, fault.KindSynthesisEmpty))

		session := a.Session()
		assert.NotNil(t, session.Assessment, "speech failure must not invalidate the assessment")
		assert.False(t, session.IsSynthesizingAudio)
	})

	t.Run("refuses to speak without an assessment", func(t *testing.T) {
		a := New(new(MockFrameSampler), new(MockDamageAnalyzer), new(MockSpeechSynthesizer), new(MockLocator), nil)
		_, err := a.Speak(context.Background())
		assert.Error(t, err)
	})
}
