package types

import "fmt"

// WeightSchedule is the fixed, validated weight configuration used both to
// build the synthetic training target and to blend user preferences into the
// final score. The free-form mapping of the old service is rejected here:
// every key is required and unknown keys are an error.
type WeightSchedule struct {
	Amenity   float64 `json:"amenity"`
	Welfare   float64 `json:"welfare"`
	Education float64 `json:"education"`
	Subway    float64 `json:"subway"`
	Bus       float64 `json:"bus"`
	Location  float64 `json:"location"`
	Price     float64 `json:"price"`
	Area      float64 `json:"area"`
}

// weightKeys enumerates the complete key set, in schedule order.
var weightKeys = []string{"amenity", "welfare", "education", "subway", "bus", "location", "price", "area"}

// DefaultWeights is the schedule the base model is trained with. Location,
// price and area are scale factors reserved for the blended schedule; base
// training only consumes the first five.
var DefaultWeights = WeightSchedule{
	Amenity:   0.2,
	Welfare:   0.3,
	Education: 0.3,
	Subway:    1,
	Bus:       2,
	Location:  20,
	Price:     10,
	Area:      10,
}

// ParseWeightSchedule validates a caller-supplied weight mapping. Missing and
// unknown keys both fail with ErrInvalidPreference so a typo never silently
// zeroes a term.
func ParseWeightSchedule(raw map[string]float64) (WeightSchedule, error) {
	for _, key := range weightKeys {
		if _, ok := raw[key]; !ok {
			return WeightSchedule{}, fmt.Errorf("%w: missing weight %q", ErrInvalidPreference, key)
		}
	}
	for key := range raw {
		known := false
		for _, k := range weightKeys {
			if k == key {
				known = true
				break
			}
		}
		if !known {
			return WeightSchedule{}, fmt.Errorf("%w: unknown weight %q", ErrInvalidPreference, key)
		}
	}
	return WeightSchedule{
		Amenity:   raw["amenity"],
		Welfare:   raw["welfare"],
		Education: raw["education"],
		Subway:    raw["subway"],
		Bus:       raw["bus"],
		Location:  raw["location"],
		Price:     raw["price"],
		Area:      raw["area"],
	}, nil
}

// UserPreferences carries the target the blended score is adjusted towards.
type UserPreferences struct {
	District       string  `json:"district"`
	TargetPrice    float64 `json:"target_price"`
	PriceTolerance float64 `json:"price_tolerance"`
	TargetArea     float64 `json:"target_area"`
	AreaTolerance  float64 `json:"area_tolerance"`
}
