package types

import "fmt"

// Coordinate is a latitude/longitude pair. It doubles as the join key
// between the property and transaction collections, compared exactly.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Key returns the exact-match tuple representation used for joining.
func (c Coordinate) Key() string {
	return fmt.Sprintf("%v,%v", c.Lat, c.Lon)
}

// PropertyRecord is one residential complex in canonical form. Counts are
// already coerced to non-negative integers (unparseable raw values become 0);
// facility text and transit fields may be empty when the store has no data.
type PropertyRecord struct {
	ComplexCode         string      `json:"complex_code"`
	Name                string      `json:"name"`
	Address             string      `json:"address"`
	AvgPrice            float64     `json:"avg_price"`
	Coordinate          *Coordinate `json:"coordinate,omitempty"`
	Amenities           string      `json:"amenities"`
	EducationFacilities string      `json:"education_facilities"`
	WelfareFacilities   string      `json:"welfare_facilities"`
	GroundParking       int         `json:"ground_parking"`
	UndergroundParking  int         `json:"underground_parking"`
	Households60        int         `json:"households_60"`
	Households85        int         `json:"households_85"`
	Households135       int         `json:"households_135"`
	Households136       int         `json:"households_136"`
	BusTime             string      `json:"bus_time"`
	SubwayTime          string      `json:"subway_time"`
	SubwayLine          string      `json:"subway_line"`
	SubwayStation       string      `json:"subway_station"`
}

// TransactionRecord is one sale event in canonical form. Amount is in
// ten-thousand-won units with digit grouping stripped; floors that were
// blank, negative or non-numeric in the store are coerced to 0.
type TransactionRecord struct {
	AptName    string      `json:"apt_name"`
	Amount     int         `json:"amount"`
	Area       float64     `json:"area"`
	Floor      int         `json:"floor"`
	DealDate   string      `json:"deal_date"`
	Coordinate *Coordinate `json:"coordinate,omitempty"`
	Address    string      `json:"address"`
}

// Year returns the transaction year parsed from the leading four digits of
// the deal date, or 0 when the date is malformed.
func (t TransactionRecord) Year() int {
	if len(t.DealDate) < 4 {
		return 0
	}
	var y int
	if _, err := fmt.Sscanf(t.DealDate[:4], "%d", &y); err != nil {
		return 0
	}
	return y
}

// JoinedRecord pairs a transaction with the complex it belongs to, matched
// on the exact coordinate tuple.
type JoinedRecord struct {
	Property    PropertyRecord
	Transaction TransactionRecord
}
