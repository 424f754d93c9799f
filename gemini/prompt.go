package gemini

import (
	"fmt"
	"strings"

	"github.com/reliefworks/floodscan/model"
)

// The instruction template is fixed and not user-editable. The JSON schema
// it dictates is the contract ParseAssessment decodes against.
const assessmentPromptBase = `You are 'FloodScan', a world-class UN Disaster Assessor and Civil Engineer.
Analyze these images from a flood-damaged house in Pakistan.

1. Technical Damage: Identify cracks, water lines, and structural failures. Be specific (e.g., "Horizontal crack in load-bearing masonry").
2. Safety: Provide a safetyScore (0-100) where 0 is collapsed and 100 is perfectly safe.
3. Market Pricing: Use Google Search to find current prices for construction materials (cement, bricks, steel) in Pakistan specifically for flood reconstruction today.`

const assessmentPromptSchema = `
You MUST respond with valid JSON only. Do not add explanations outside the JSON.
JSON structure:
{
  "propertyId": "string (unique code)",
  "structuralDamages": [{ "location": "string", "description": "string", "severity": "Minor|Moderate|Severe|Critical" }],
  "requiredMaterials": [{ "item": "string", "quantity": "string", "unit": "string", "estimatedPricePKR": "string" }],
  "urduSummaryScript": "string (A compassionate 2-sentence summary for the homeowner in Urdu script)",
  "pashtoSummaryScript": "string (A compassionate summary in Pashto script)",
  "formalTechnicalNotes": "string (Professional summary for government records)",
  "safetyScore": number,
  "isClear": boolean
}`

const speechInstruction = "Read this summary compassionately in Urdu: "

func buildAssessmentPrompt(loc *model.GeoPoint) string {
	var b strings.Builder
	b.WriteString(assessmentPromptBase)
	if loc != nil {
		b.WriteString(fmt.Sprintf(
			"\n4. Nearby Help: Use Google Maps to identify 3 real, active NDMA, PDMA, or UN relief centers or government offices near these coordinates: %f, %f.",
			loc.Latitude, loc.Longitude,
		))
	}
	b.WriteString("\n")
	b.WriteString(assessmentPromptSchema)
	return b.String()
}
