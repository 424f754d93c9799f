package assessor

import (
	"fmt"
	"strings"
	"time"

	"github.com/reliefworks/floodscan/model"
)

/*
RenderClaimDocument lays out the formal claim record for printing or PDF
export. It is deliberately limited to the official-document subset of an
assessment: identification, damages, materials, technical notes and
citations. Interactive concerns (preview, playback, reset) never appear
here.
*/
func RenderClaimDocument(result model.AssessmentResult, generated time.Time) string {
	var b strings.Builder

	b.WriteString("OFFICIAL FLOOD DAMAGE ASSESSMENT\n")
	b.WriteString("================================\n")
	b.WriteString(fmt.Sprintf("Property ID:  %s\n", result.PropertyID))
	b.WriteString(fmt.Sprintf("Generated:    %s\n", generated.UTC().Format(time.RFC3339)))
	b.WriteString(fmt.Sprintf("Safety Score: %d/100\n", result.SafetyScore))
	if worst, ok := result.WorstSeverity(); ok {
		b.WriteString(fmt.Sprintf("Worst Damage: %s\n", worst))
	}

	b.WriteString("\nSTRUCTURAL DAMAGES\n")
	if len(result.StructuralDamages) == 0 {
		b.WriteString("- none recorded\n")
	}
	for _, d := range result.StructuralDamages {
		b.WriteString(fmt.Sprintf("- [%s] %s: %s\n", d.Severity, d.Location, d.Description))
	}

	b.WriteString("\nREQUIRED MATERIALS\n")
	if len(result.RequiredMaterials) == 0 {
		b.WriteString("- none recorded\n")
	}
	for _, m := range result.RequiredMaterials {
		line := fmt.Sprintf("- %s: %s %s", m.Item, m.Quantity, m.Unit)
		if m.EstimatedPricePKR != "" {
			line += fmt.Sprintf(" (est. %s PKR)", m.EstimatedPricePKR)
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\nTECHNICAL NOTES\n")
	b.WriteString(result.FormalTechnicalNotes + "\n")

	if len(result.NearbyReliefCenters) > 0 {
		b.WriteString("\nNEARBY RELIEF CENTERS\n")
		for _, link := range result.NearbyReliefCenters {
			b.WriteString(fmt.Sprintf("- %s (%s)\n", link.Title, link.URI))
		}
	}
	if len(result.MarketSources) > 0 {
		b.WriteString("\nMARKET PRICE SOURCES\n")
		for _, link := range result.MarketSources {
			b.WriteString(fmt.Sprintf("- %s (%s)\n", link.Title, link.URI))
		}
	}

	return b.String()
}
