package gemini

import (
	"encoding/json"
	"strings"

	"github.com/reliefworks/floodscan/fault"
	"github.com/reliefworks/floodscan/model"
)

// How much raw model text to keep in a diagnostic detail.
const rawTextDiagnosticLimit = 512

/*
ParseAssessment coerces the model's free-text reply into an AssessmentResult.
The reply may wrap the JSON object in prose or markdown fencing, so parsing
is tolerant, not strict: first the first '{' through the last '}' substring,
then the whole text, then failure. The raw text only travels inside the
fault detail, never to the user.
*/
func ParseAssessment(text string) (*model.AssessmentResult, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		var result model.AssessmentResult
		if err := json.Unmarshal([]byte(text[start:end+1]), &result); err == nil {
			return &result, nil
		}
	}

	var result model.AssessmentResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, fault.Wrap(fault.KindInvalidResponse, "reply was not valid assessment JSON: "+truncate(text, rawTextDiagnosticLimit), err)
	}
	return &result, nil
}

/*
partitionGrounding splits citation chunks into the two disjoint categories:
web citations back market pricing, map citations locate relief centers.
A map chunk with no title gets the generic fallback label. Both slices are
always non-nil so a located request yields empty, not missing, lists.
*/
func partitionGrounding(md *GroundingMetadata) (market, relief []model.GroundingLink) {
	market = []model.GroundingLink{}
	relief = []model.GroundingLink{}
	if md == nil {
		return market, relief
	}
	for _, chunk := range md.GroundingChunks {
		switch {
		case chunk.Web != nil:
			market = append(market, model.GroundingLink{Title: chunk.Web.Title, URI: chunk.Web.URI})
		case chunk.Maps != nil:
			title := chunk.Maps.Title
			if title == "" {
				title = "Relief Center"
			}
			relief = append(relief, model.GroundingLink{Title: title, URI: chunk.Maps.URI})
		}
	}
	return market, relief
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
