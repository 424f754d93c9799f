package model

// GeoPoint is a best-effort device location attached to an analysis request.
// It is produced once per request and never persisted.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type DamageDetail struct {
	Location    string   `json:"location"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
}

type MaterialEstimate struct {
	Item              string `json:"item"`
	Quantity          string `json:"quantity"`
	Unit              string `json:"unit"`
	EstimatedPricePKR string `json:"estimatedPricePKR,omitempty"`
}

// GroundingLink is a citation the assessment service attached to its answer.
// Web citations back market pricing, map citations point at relief centers.
type GroundingLink struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

/*
AssessmentResult is the full structured reply for one analysis call.

MarketSources and NearbyReliefCenters are only present when the request
carried a location: in that case absent grounding metadata yields empty
(not nil) slices. Without a location both stay nil.
*/
type AssessmentResult struct {
	PropertyID           string             `json:"propertyId"`
	StructuralDamages    []DamageDetail     `json:"structuralDamages"`
	RequiredMaterials    []MaterialEstimate `json:"requiredMaterials"`
	UrduSummaryScript    string             `json:"urduSummaryScript"`
	PashtoSummaryScript  string             `json:"pashtoSummaryScript"`
	FormalTechnicalNotes string             `json:"formalTechnicalNotes"`
	SafetyScore          int                `json:"safetyScore"`
	IsClear              bool               `json:"isClear"`
	MarketSources        []GroundingLink    `json:"marketSources,omitempty"`
	NearbyReliefCenters  []GroundingLink    `json:"nearbyReliefCenters,omitempty"`
}

// Usable reports whether the reply carries enough visual evidence to show.
// A listed damage overrides the clarity flag; only an unclear reply with no
// damages at all is rejected.
func (a AssessmentResult) Usable() bool {
	return a.IsClear || len(a.StructuralDamages) > 0
}

// WorstSeverity returns the highest-ranked severity among the listed damages,
// or false if no damages are listed.
func (a AssessmentResult) WorstSeverity() (Severity, bool) {
	if len(a.StructuralDamages) == 0 {
		return "", false
	}
	worst := a.StructuralDamages[0].Severity
	for _, d := range a.StructuralDamages[1:] {
		if d.Severity.AtLeast(worst) {
			worst = d.Severity
		}
	}
	return worst, true
}
