package model

// ValidationResult is the outcome of validating a single entity description
// against its source fragments.
//
// Confidence is the probability that the description is fabricated, not the
// probability that it is correct: 0.0 means fully supported, 1.0 means
// definitely hallucinated.
type ValidationResult struct {
	EntityID       string   `json:"entity_id" csv:"entity_id"`
	EntityName     string   `json:"entity_name" csv:"entity_name"`
	EntityType     string   `json:"entity_type" csv:"entity_type"`
	Description    string   `json:"description" csv:"description"`
	Confidence     float64  `json:"confidence" csv:"confidence"`
	IsHallucinated bool     `json:"is_hallucinated" csv:"is_hallucinated"`
	Method         string   `json:"method" csv:"method"`
	Issues         []string `json:"issues" csv:"-"`
	ValidationTime float64  `json:"validation_time" csv:"validation_time"`
}

// Validation method tags. The hybrid scorer reports which of its two paths
// produced the result.
const (
	MethodLLM        = "llm"
	MethodNLI        = "nli"
	MethodHybrid     = "hybrid"
	MethodHybridText = "hybrid_text"
	MethodHybridLLM  = "hybrid_llm"
)

// ReportSummary aggregates a result collection.
type ReportSummary struct {
	Total             int     `json:"total"`
	Hallucinated      int     `json:"hallucinated"`
	HallucinatedPct   float64 `json:"hallucinated_pct"`
	MeanConfidence    float64 `json:"mean_confidence"`
	TotalTimeSeconds  float64 `json:"total_time_seconds"`
	MeanTimePerEntity float64 `json:"mean_time_per_entity"`

	// TopHallucinated holds up to 10 flagged results, highest confidence
	// first, ties kept in original order.
	TopHallucinated []ValidationResult `json:"top_hallucinated"`
}
