package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/reliefworks/floodscan/fault"
	"github.com/reliefworks/floodscan/model"
)

type Client struct {
	baseURL    string
	apiKey     string
	model      string
	ttsModel   string
	HTTPClient *http.Client
}

func NewClient(apiKey string, baseURL url.URL, model, ttsModel string) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimSuffix(baseURL.String(), "/"),
		model:      model,
		ttsModel:   ttsModel,
		HTTPClient: http.DefaultClient,
	}
}

/*
Assess sends the ordered frame set plus the fixed instruction to the
multimodal endpoint and returns the typed assessment. When a location is
supplied, search and maps grounding are enabled and the reply's citation
chunks are folded into the result; without one, the grounding lists stay
absent.
*/
func (c Client) Assess(ctx context.Context, frms []model.Frame, loc *model.GeoPoint) (*model.AssessmentResult, error) {
	parts := make([]Part, 0, len(frms)+1)
	for _, f := range frms {
		parts = append(parts, Part{InlineData: &Blob{
			MimeType: f.MimeType,
			Data:     stripDataURIPrefix(base64.StdEncoding.EncodeToString(f.Data)),
		}})
	}
	parts = append(parts, Part{Text: buildAssessmentPrompt(loc)})

	req := generateContentRequest{
		Contents: []Content{{Parts: parts}},
	}
	if loc != nil {
		req.Tools = []Tool{{GoogleSearch: &GoogleSearch{}}, {GoogleMaps: &GoogleMaps{}}}
		req.ToolConfig = &ToolConfig{
			RetrievalConfig: &RetrievalConfig{
				LatLng: &LatLng{Latitude: loc.Latitude, Longitude: loc.Longitude},
			},
		}
	}

	resp, err := c.generateContent(ctx, c.model, req)
	if err != nil {
		return nil, err
	}

	text := candidateText(resp)
	if text == "" {
		return nil, fault.New(fault.KindInvalidResponse, "reply carried no text content")
	}

	result, err := ParseAssessment(text)
	if err != nil {
		return nil, err
	}

	if loc != nil {
		var md *GroundingMetadata
		if len(resp.Candidates) > 0 {
			md = resp.Candidates[0].GroundingMetadata
		}
		result.MarketSources, result.NearbyReliefCenters = partitionGrounding(md)
	}

	return result, nil
}

// Synthesize asks the speech endpoint to read the text with the fixed voice
// and returns the base64 PCM payload. An empty payload is a SynthesisEmpty
// fault; the caller treats it as audio-unavailable, not as a whole failure.
func (c Client) Synthesize(ctx context.Context, text string) (string, error) {
	req := generateContentRequest{
		Contents: []Content{{Parts: []Part{{Text: speechInstruction + text}}}},
		GenerationConfig: &GenerationConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: &SpeechConfig{
				VoiceConfig: &VoiceConfig{
					PrebuiltVoiceConfig: &PrebuiltVoiceConfig{VoiceName: "Kore"},
				},
			},
		},
	}

	resp, err := c.generateContent(ctx, c.ttsModel, req)
	if err != nil {
		return "", err
	}

	audio := candidateAudio(resp)
	if audio == "" {
		return "", fault.New(fault.KindSynthesisEmpty, "speech reply carried no audio payload")
	}
	return audio, nil
}

func (c Client) generateContent(ctx context.Context, modelName string, reqBody generateContentRequest) (*generateContentResponse, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fault.Wrap(fault.KindInvalidResponse, "marshaling request", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, modelName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fault.Wrap(fault.KindNetwork, "building request", err)
	}
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("x-goog-api-key", c.apiKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fault.Wrap(fault.KindNetwork, "calling "+endpoint, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fault.Wrap(fault.KindNetwork, "reading reply", err)
	}

	if resp.StatusCode != http.StatusOK {
		var envelope apiErrorEnvelope
		if err := json.Unmarshal(respBody, &envelope); err == nil && envelope.Error.Message != "" {
			return nil, fault.Newf(fault.KindServiceRejected, "service error %s (%d): %s",
				envelope.Error.Status, envelope.Error.Code, envelope.Error.Message)
		}
		return nil, fault.Newf(fault.KindNetwork, "unexpected status %d", resp.StatusCode)
	}

	var gcr generateContentResponse
	if err = json.Unmarshal(respBody, &gcr); err != nil {
		return nil, fault.Wrap(fault.KindInvalidResponse, "unmarshaling reply envelope", err)
	}

	if gcr.PromptFeedback != nil && gcr.PromptFeedback.BlockReason != "" {
		return nil, fault.New(fault.KindServiceRejected, "prompt blocked: "+gcr.PromptFeedback.BlockReason)
	}

	return &gcr, nil
}

// candidateText joins the text parts of the first candidate.
func candidateText(resp *generateContentResponse) string {
	if len(resp.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	return b.String()
}

// candidateAudio returns the inline payload of the first content part of
// the first candidate, which is where the speech endpoint puts its audio.
func candidateAudio(resp *generateContentResponse) string {
	if len(resp.Candidates) == 0 {
		return ""
	}
	parts := resp.Candidates[0].Content.Parts
	if len(parts) == 0 || parts[0].InlineData == nil {
		return ""
	}
	return parts[0].InlineData.Data
}

// stripDataURIPrefix drops a "data:...;base64," prefix if one is present.
// Inline parts must carry bare base64.
func stripDataURIPrefix(s string) string {
	if !strings.HasPrefix(s, "data:") {
		return s
	}
	if i := strings.Index(s, ","); i >= 0 {
		return s[i+1:]
	}
	return s
}
