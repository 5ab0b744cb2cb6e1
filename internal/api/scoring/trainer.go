package scoring

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/zipte-app/zipte-server/internal/types"
)

// DefaultSeed keeps the 80/20 split reproducible: two runs over identical
// input report identical holdout RMSE.
const DefaultSeed int64 = 42

// TrainingResult carries the fitted artifact and its holdout evaluation.
type TrainingResult struct {
	Artifact  *Artifact
	RMSE      float64
	TrainRows int
	TestRows  int
}

// featureColumns is the fixed design-matrix schema, followed by one
// indicator column per observed district. Identifiers, facility text and raw
// categorical labels stay out of the matrix.
var featureColumns = []string{
	"amenity_count",
	"welfare_count",
	"education_count",
	"subway_minutes",
	"bus_minutes",
	"total_households",
	"avg_price",
	"total_parking",
	"deal_amount",
	"area",
	"floor",
}

// Train fits the boosted regressor on a synthetic target built from the
// weight schedule. An empty training set is fatal; training is an offline
// batch job and must not produce a silently useless artifact.
func Train(rows []types.ScoringRow, weights types.WeightSchedule, seed int64, logger *slog.Logger) (*TrainingResult, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("training set is empty")
	}

	districts := districtCategories(rows)
	x := designMatrix(rows, districts)
	y := syntheticTarget(rows, weights)

	// Fixed-seed shuffle, 80/20 train/holdout.
	perm := rand.New(rand.NewSource(seed)).Perm(len(rows))
	testCount := len(rows) / 5
	trainIdx := perm[testCount:]
	testIdx := perm[:testCount]
	if len(trainIdx) == 0 {
		return nil, fmt.Errorf("training set is empty after split")
	}

	trainX := make([][]float64, len(trainIdx))
	trainY := make([]float64, len(trainIdx))
	for i, idx := range trainIdx {
		trainX[i] = x[idx]
		trainY[i] = y[idx]
	}

	base, trees := fitGBDT(trainX, trainY, DefaultParams)
	model := &Model{
		Base:         base,
		LearningRate: DefaultParams.LearningRate,
		Trees:        trees,
		Columns:      featureColumns,
		Districts:    districts,
	}

	// Holdout RMSE; falls back to the training rows when the set is too
	// small to split.
	evalIdx := testIdx
	if len(evalIdx) == 0 {
		evalIdx = trainIdx
	}
	squared := make([]float64, len(evalIdx))
	for i, idx := range evalIdx {
		diff := model.predictVector(x[idx]) - y[idx]
		squared[i] = diff * diff
	}
	rmse := math.Sqrt(stat.Mean(squared, nil))

	if logger != nil {
		logger.Info("Base model trained",
			slog.Int("train_rows", len(trainIdx)),
			slog.Int("holdout_rows", len(testIdx)),
			slog.Float64("rmse", rmse),
		)
	}

	return &TrainingResult{
		Artifact: &Artifact{
			Version:   uuid.NewString(),
			TrainedAt: time.Now().UTC(),
			RMSE:      rmse,
			Model:     model,
		},
		RMSE:      rmse,
		TrainRows: len(trainIdx),
		TestRows:  len(testIdx),
	}, nil
}

// districtCategories returns the sorted distinct districts; sorted order
// keeps the one-hot columns stable between training and inference.
func districtCategories(rows []types.ScoringRow) []string {
	seen := make(map[string]struct{})
	for _, row := range rows {
		seen[row.District] = struct{}{}
	}
	districts := make([]string, 0, len(seen))
	for d := range seen {
		districts = append(districts, d)
	}
	sort.Strings(districts)
	return districts
}

// designMatrix builds one feature vector per row against a fixed district
// category order. Districts unseen at training time contribute an all-zero
// indicator block rather than an error.
func designMatrix(rows []types.ScoringRow, districts []string) [][]float64 {
	index := make(map[string]int, len(districts))
	for i, d := range districts {
		index[d] = i
	}

	x := make([][]float64, len(rows))
	for i, row := range rows {
		vector := make([]float64, len(featureColumns)+len(districts))
		vector[0] = float64(row.AmenityCount)
		vector[1] = float64(row.WelfareCount)
		vector[2] = float64(row.EducationCount)
		vector[3] = row.SubwayFilled
		vector[4] = row.BusFilled
		vector[5] = float64(row.TotalHouseholds)
		vector[6] = row.AvgPrice
		vector[7] = float64(row.TotalParking)
		vector[8] = row.DealAmount
		vector[9] = row.Area
		vector[10] = float64(row.Floor)
		if j, ok := index[row.District]; ok {
			vector[len(featureColumns)+j] = 1
		}
		x[i] = vector
	}
	return x
}

// syntheticTarget bootstraps a learned prior before real feedback exists:
// a fixed linear combination of facility counts and transit minutes.
func syntheticTarget(rows []types.ScoringRow, w types.WeightSchedule) []float64 {
	y := make([]float64, len(rows))
	for i, row := range rows {
		y[i] = float64(row.AmenityCount)*w.Amenity +
			float64(row.WelfareCount)*w.Welfare +
			float64(row.EducationCount)*w.Education +
			row.SubwayFilled*w.Subway +
			row.BusFilled*w.Bus
	}
	return y
}
