package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reliefworks/floodscan/fault"
	"github.com/reliefworks/floodscan/model"
)

const innerJSON = `{"propertyId":"PD-42","structuralDamages":[{"location":"North wall","description":"shear crack","severity":"Critical"}],"requiredMaterials":[],"urduSummaryScript":"...","pashtoSummaryScript":"...","formalTechnicalNotes":"...","safetyScore":22,"isClear":true}`

func TestParseAssessment(t *testing.T) {
	t.Run("parses a bare JSON object", func(t *testing.T) {
		result, err := ParseAssessment(innerJSON)
		require.NoError(t, err)
		assert.Equal(t, "PD-42", result.PropertyID)
		assert.Equal(t, 22, result.SafetyScore)
		assert.True(t, result.IsClear)
	})

	t.Run("parses JSON wrapped in prose and trailing text", func(t *testing.T) {
		wrapped := "Here is my assessment:\n" + innerJSON + "\nLet me know if you need more."
		fromWrapped, err := ParseAssessment(wrapped)
		require.NoError(t, err)
		fromBare, err := ParseAssessment(innerJSON)
		require.NoError(t, err)
		assert.Equal(t, fromBare, fromWrapped)
	})

	t.Run("parses JSON inside markdown fencing", func(t *testing.T) {
		fenced := "```json\n" + innerJSON + "\n```"
		result, err := ParseAssessment(fenced)
		require.NoError(t, err)
		assert.Equal(t, "PD-42", result.PropertyID)
	})

	t.Run("fails with InvalidResponse when no braces exist", func(t *testing.T) {
		_, err := ParseAssessment("I could not determine anything from these images.")
		require.Error(t, err)
		assert.True(t, fault.Is(err, fault.KindInvalidResponse))
	})

	t.Run("keeps the raw text in the diagnostic only", func(t *testing.T) {
		_, err := ParseAssessment("totally { not json }")
		require.Error(t, err)
		kind, ok := fault.KindOf(err)
		assert.True(t, ok)
		assert.Equal(t, fault.KindInvalidResponse, kind)
		// The user-facing message never includes the model text
		assert.NotContains(t, fault.UserMessage(err), "not json")
	})

	t.Run("maps severity values onto the ordered scale", func(t *testing.T) {
		result, err := ParseAssessment(innerJSON)
		require.NoError(t, err)
		require.Len(t, result.StructuralDamages, 1)
		assert.Equal(t, model.SeverityCritical, result.StructuralDamages[0].Severity)
	})
}

func TestPartitionGrounding(t *testing.T) {
	t.Run("splits web and map chunks into disjoint lists", func(t *testing.T) {
		md := &GroundingMetadata{GroundingChunks: []GroundingChunk{
			{Web: &WebChunk{URI: "https://example.com/prices", Title: "Cement Prices"}},
			{Maps: &MapsChunk{URI: "https://maps.example.com/ndma", Title: "NDMA Office"}},
		}}
		market, relief := partitionGrounding(md)
		require.Len(t, market, 1)
		require.Len(t, relief, 1)
		assert.Equal(t, model.GroundingLink{Title: "Cement Prices", URI: "https://example.com/prices"}, market[0])
		assert.Equal(t, model.GroundingLink{Title: "NDMA Office", URI: "https://maps.example.com/ndma"}, relief[0])
	})

	t.Run("labels an untitled map chunk as a relief center", func(t *testing.T) {
		md := &GroundingMetadata{GroundingChunks: []GroundingChunk{
			{Maps: &MapsChunk{URI: "https://maps.example.com/x"}},
		}}
		_, relief := partitionGrounding(md)
		require.Len(t, relief, 1)
		assert.Equal(t, "Relief Center", relief[0].Title)
	})

	t.Run("yields empty, not nil, lists for absent metadata", func(t *testing.T) {
		market, relief := partitionGrounding(nil)
		assert.NotNil(t, market)
		assert.NotNil(t, relief)
		assert.Empty(t, market)
		assert.Empty(t, relief)
	})
}
