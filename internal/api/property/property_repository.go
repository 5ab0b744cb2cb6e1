package property

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/zipte-app/zipte-server/internal/types"
)

// Store is the read-only query surface of the document database. The engine
// never writes through it.
type Store interface {
	FindAll(ctx context.Context, collection string) ([]bson.M, error)
	FindOne(ctx context.Context, collection string, filter bson.M) (bson.M, error)
}

var _ Store = (*MongoStore)(nil)

// MongoStore implements Store on a mongo database handle.
type MongoStore struct {
	db *mongo.Database
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

func (s *MongoStore) FindAll(ctx context.Context, collection string) ([]bson.M, error) {
	cur, err := s.db.Collection(collection).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("%w: find on %s: %v", types.ErrDataUnavailable, collection, err)
	}
	defer cur.Close(ctx)

	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%w: cursor on %s: %v", types.ErrDataUnavailable, collection, err)
	}
	return docs, nil
}

func (s *MongoStore) FindOne(ctx context.Context, collection string, filter bson.M) (bson.M, error) {
	var doc bson.M
	err := s.db.Collection(collection).FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, types.ErrPropertyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find one on %s: %v", types.ErrDataUnavailable, collection, err)
	}
	return doc, nil
}

// Field mappings from raw store documents to canonical records. Required
// fields are validated against the first document of a load; a missing field
// fails the whole load fast instead of silently misaligning columns.
var (
	requiredTransactionFields = []string{"dealAmount", "dealDate", "aptName", "area", "floor", "location", "address"}
	requiredPropertyFields    = []string{"kaptCode", "kaptName", "avgPrice", "address", "location"}

	// Facility, parking, household and transit fields may be absent per
	// document; absence is data, not a schema error.
	optionalPropertyFields = []string{
		"amenities", "educationFacilities", "welfareFacilities",
		"groundParking", "undergroundParking",
		"households60", "households85", "households135", "households136",
		"busTime", "subwayTime", "subwayLine", "subwayStation",
	}
)

var _ Repository = (*MongoRepository)(nil)

// Repository loads canonical records from the store.
type Repository interface {
	LoadProperties(ctx context.Context) ([]types.PropertyRecord, error)
	LoadTransactions(ctx context.Context) ([]types.TransactionRecord, error)
	FindByName(ctx context.Context, name string) (types.PropertyRecord, error)
}

// MongoRepository renames raw store fields into the canonical schema and
// applies the documented coercion policies. The internal storage identifier
// is dropped on the way out.
type MongoRepository struct {
	logger                 *slog.Logger
	store                  Store
	transactionsCollection string
	propertiesCollection   string
}

func NewMongoRepository(store Store, transactionsCollection, propertiesCollection string, logger *slog.Logger) *MongoRepository {
	return &MongoRepository{
		logger:                 logger,
		store:                  store,
		transactionsCollection: transactionsCollection,
		propertiesCollection:   propertiesCollection,
	}
}

func (r *MongoRepository) LoadProperties(ctx context.Context) ([]types.PropertyRecord, error) {
	docs, err := r.store.FindAll(ctx, r.propertiesCollection)
	if err != nil {
		return nil, err
	}
	// An empty collection is not an error, just an empty result set.
	if len(docs) == 0 {
		return []types.PropertyRecord{}, nil
	}
	if err := validateSchema(docs[0], requiredPropertyFields, r.propertiesCollection); err != nil {
		return nil, err
	}

	records := make([]types.PropertyRecord, 0, len(docs))
	for i, doc := range docs {
		records = append(records, r.decodeProperty(doc, i))
	}
	return records, nil
}

func (r *MongoRepository) LoadTransactions(ctx context.Context) ([]types.TransactionRecord, error) {
	docs, err := r.store.FindAll(ctx, r.transactionsCollection)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return []types.TransactionRecord{}, nil
	}
	if err := validateSchema(docs[0], requiredTransactionFields, r.transactionsCollection); err != nil {
		return nil, err
	}

	records := make([]types.TransactionRecord, 0, len(docs))
	for i, doc := range docs {
		records = append(records, r.decodeTransaction(doc, i))
	}
	return records, nil
}

// FindByName returns the canonical record for one complex, or
// ErrPropertyNotFound when the name has no match.
func (r *MongoRepository) FindByName(ctx context.Context, name string) (types.PropertyRecord, error) {
	doc, err := r.store.FindOne(ctx, r.propertiesCollection, bson.M{"kaptName": name})
	if err != nil {
		return types.PropertyRecord{}, err
	}
	return r.decodeProperty(doc, 0), nil
}

func validateSchema(doc bson.M, required []string, collection string) error {
	for _, field := range required {
		if _, ok := doc[field]; !ok {
			return fmt.Errorf("%w: collection %s is missing field %q", types.ErrSchemaMismatch, collection, field)
		}
	}
	return nil
}

func (r *MongoRepository) decodeProperty(doc bson.M, row int) types.PropertyRecord {
	return types.PropertyRecord{
		ComplexCode:         asString(doc["kaptCode"]),
		Name:                asString(doc["kaptName"]),
		Address:             asString(doc["address"]),
		AvgPrice:            r.asFloat(doc["avgPrice"], "avgPrice", row),
		Coordinate:          parseCoordinate(doc["location"]),
		Amenities:           asString(doc["amenities"]),
		EducationFacilities: asString(doc["educationFacilities"]),
		WelfareFacilities:   asString(doc["welfareFacilities"]),
		GroundParking:       r.asCount(doc["groundParking"], "groundParking", row),
		UndergroundParking:  r.asCount(doc["undergroundParking"], "undergroundParking", row),
		Households60:        r.asCount(doc["households60"], "households60", row),
		Households85:        r.asCount(doc["households85"], "households85", row),
		Households135:       r.asCount(doc["households135"], "households135", row),
		Households136:       r.asCount(doc["households136"], "households136", row),
		BusTime:             asString(doc["busTime"]),
		SubwayTime:          asString(doc["subwayTime"]),
		SubwayLine:          asString(doc["subwayLine"]),
		SubwayStation:       asString(doc["subwayStation"]),
	}
}

func (r *MongoRepository) decodeTransaction(doc bson.M, row int) types.TransactionRecord {
	return types.TransactionRecord{
		AptName:    asString(doc["aptName"]),
		Amount:     r.parseAmount(doc["dealAmount"], row),
		Area:       r.asFloat(doc["area"], "area", row),
		Floor:      cleanFloor(doc["floor"]),
		DealDate:   asString(doc["dealDate"]),
		Coordinate: parseCoordinate(doc["location"]),
		Address:    asString(doc["address"]),
	}
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// asFloat coerces numeric-ish store values; unparseable values become 0 and
// are logged, never fatal for the batch.
func (r *MongoRepository) asFloat(v interface{}, field string, row int) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err == nil {
			return f
		}
	case nil:
		return 0
	}
	r.logger.Warn("Unparseable numeric field coerced to 0",
		slog.String("field", field), slog.Int("row", row), slog.Any("value", v))
	return 0
}

// asCount is asFloat restricted to non-negative integer counts.
func (r *MongoRepository) asCount(v interface{}, field string, row int) int {
	n := int(r.asFloat(v, field, row))
	if n < 0 {
		return 0
	}
	return n
}

// parseAmount strips digit grouping from a transaction amount ("82,500").
func (r *MongoRepository) parseAmount(v interface{}, row int) int {
	if s, ok := v.(string); ok {
		cleaned := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
		n, err := strconv.Atoi(cleaned)
		if err == nil {
			return n
		}
		r.logger.Warn("Unparseable deal amount coerced to 0",
			slog.String("field", "dealAmount"), slog.Int("row", row), slog.String("value", s))
		return 0
	}
	return r.asCount(v, "dealAmount", row)
}

// cleanFloor keeps positive integer floors; blank, negative or non-numeric
// raw values become 0. Documented lossy policy, not a crash.
func cleanFloor(v interface{}) int {
	switch n := v.(type) {
	case string:
		f, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil || f <= 0 {
			return 0
		}
		return f
	case int32:
		if n > 0 {
			return int(n)
		}
	case int64:
		if n > 0 {
			return int(n)
		}
	case int:
		if n > 0 {
			return n
		}
	case float64:
		if n > 0 {
			return int(n)
		}
	}
	return 0
}

// parseCoordinate unwraps a GeoJSON-style point ({"coordinates": [lon, lat]}).
func parseCoordinate(v interface{}) *types.Coordinate {
	var raw interface{}
	switch loc := v.(type) {
	case bson.M:
		raw = loc["coordinates"]
	case map[string]interface{}:
		raw = loc["coordinates"]
	default:
		return nil
	}

	pair, ok := rawPair(raw)
	if !ok {
		return nil
	}
	return &types.Coordinate{Lat: pair[1], Lon: pair[0]}
}

func rawPair(v interface{}) ([2]float64, bool) {
	var items []interface{}
	switch a := v.(type) {
	case bson.A:
		items = a
	case []interface{}:
		items = a
	default:
		return [2]float64{}, false
	}
	if len(items) != 2 {
		return [2]float64{}, false
	}
	var pair [2]float64
	for i, item := range items {
		switch n := item.(type) {
		case float64:
			pair[i] = n
		case float32:
			pair[i] = float64(n)
		case int32:
			pair[i] = float64(n)
		case int64:
			pair[i] = float64(n)
		default:
			return [2]float64{}, false
		}
	}
	return pair, true
}
