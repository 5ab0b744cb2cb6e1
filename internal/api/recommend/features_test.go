package recommend

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zipte-app/zipte-server/internal/types"
)

func sampleProperty() types.PropertyRecord {
	return types.PropertyRecord{
		ComplexCode:         "A10024",
		Name:                "래미안",
		Address:             "서울특별시 강남구 개포동 12",
		AvgPrice:            3200.5,
		Amenities:           "편의점,세탁소",
		EducationFacilities: "초등학교",
		WelfareFacilities:   "",
		GroundParking:       3,
		UndergroundParking:  0,
		Households60:        120,
		Households85:        80,
		BusTime:             "5분이내",
		SubwayTime:          "10~15분이내",
		SubwayLine:          "3호선",
		SubwayStation:       "대청역",
	}
}

func TestBuildFeatures(t *testing.T) {
	rows := BuildFeatures([]types.PropertyRecord{sampleProperty()}, slog.Default())

	assert.Len(t, rows, 1)
	row := rows[0]
	assert.Equal(t, 2, row.AmenityCount)
	assert.Equal(t, 1, row.EducationCount)
	assert.Equal(t, 0, row.WelfareCount)
	assert.Equal(t, 200, row.TotalHouseholds)
	assert.Equal(t, 3, row.TotalParking)
	assert.Equal(t, "초등학교 편의점,세탁소 no-welfare-facility", row.FacilityText)
	if assert.NotNil(t, row.BusMinutes) {
		assert.Equal(t, 2.5, *row.BusMinutes)
	}
	if assert.NotNil(t, row.SubwayMinutes) {
		assert.Equal(t, 12.5, *row.SubwayMinutes)
	}
}

func TestBuildFeaturesMissingFacilityText(t *testing.T) {
	p := sampleProperty()
	p.Amenities = "  "
	p.EducationFacilities = ""
	p.WelfareFacilities = ""

	rows := BuildFeatures([]types.PropertyRecord{p}, slog.Default())

	assert.Equal(t, "no-education-facility no-amenity no-welfare-facility", rows[0].FacilityText)
	assert.Equal(t, 0, rows[0].AmenityCount)
}

func TestBuildFeaturesUnmappedTransit(t *testing.T) {
	p := sampleProperty()
	p.BusTime = "20분이상"
	p.SubwayTime = ""

	rows := BuildFeatures([]types.PropertyRecord{p}, slog.Default())

	assert.Nil(t, rows[0].BusMinutes)
	assert.Nil(t, rows[0].SubwayMinutes)
}

func TestBuildScoringRows(t *testing.T) {
	p := sampleProperty()
	p.SubwayTime = ""
	joined := []types.JoinedRecord{
		{
			Property: p,
			Transaction: types.TransactionRecord{
				AptName:  "래미안",
				Amount:   82500,
				Area:     84.99,
				Floor:    12,
				DealDate: "2024-03-15",
			},
		},
	}

	rows := BuildScoringRows(joined, slog.Default())

	assert.Len(t, rows, 1)
	row := rows[0]
	assert.Equal(t, "개포동", row.District)
	assert.Equal(t, 82500.0, row.DealAmount)
	assert.Equal(t, 84.99, row.Area)
	assert.Equal(t, 12, row.Floor)
	assert.Equal(t, 2.5, row.BusFilled)
	// Missing transit is filled with the 20 minute penalty
	assert.Equal(t, 20.0, row.SubwayFilled)
}

func TestCountFacilities(t *testing.T) {
	assert.Equal(t, 0, countFacilities(""))
	assert.Equal(t, 0, countFacilities("  "))
	assert.Equal(t, 1, countFacilities("초등학교"))
	assert.Equal(t, 3, countFacilities("편의점, 세탁소,피트니스"))
	assert.Equal(t, 2, countFacilities("편의점,,세탁소"))
}
