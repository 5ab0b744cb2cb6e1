package types

// FeatureRow is the derived, pre-scaling feature vector for one complex.
// BusMinutes/SubwayMinutes are nil when the store had no transit bucket for
// the complex; the scoring path fills them with a fixed penalty so "no data"
// never masquerades as fast access.
type FeatureRow struct {
	ComplexCode     string
	Name            string
	Address         string
	FacilityText    string
	AmenityCount    int
	EducationCount  int
	WelfareCount    int
	TotalHouseholds int
	AvgPrice        float64
	TotalParking    int
	BusMinutes      *float64
	SubwayMinutes   *float64
	SubwayLine      string
	SubwayStation   string
}

// ScoringRow extends a FeatureRow with the per-transaction fields the
// scoring model and preference blender consume. Transit minutes are already
// filled here.
type ScoringRow struct {
	FeatureRow
	District      string
	DealAmount    float64
	Area          float64
	Floor         int
	BusFilled     float64
	SubwayFilled  float64
}

// ScoredRow is one ranked candidate with its base and adjusted scores.
type ScoredRow struct {
	ComplexCode   string  `json:"complex_code"`
	Name          string  `json:"name"`
	Address       string  `json:"address"`
	District      string  `json:"district"`
	DealAmount    float64 `json:"deal_amount"`
	Area          float64 `json:"area"`
	BaseScore     float64 `json:"base_score"`
	AdjustedScore float64 `json:"adjusted_score"`
}

// Recommendation is one similarity-ranked candidate.
type Recommendation struct {
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Score   float64 `json:"score"`
}
