package property

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/zipte-app/zipte-server/internal/types"
)

// MockStore is a mock implementation of the Store interface
type MockStore struct {
	mock.Mock
}

func (m *MockStore) FindAll(ctx context.Context, collection string) ([]bson.M, error) {
	args := m.Called(ctx, collection)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]bson.M), args.Error(1)
}

func (m *MockStore) FindOne(ctx context.Context, collection string, filter bson.M) (bson.M, error) {
	args := m.Called(ctx, collection, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(bson.M), args.Error(1)
}

func newTestRepo(store Store) *MongoRepository {
	return NewMongoRepository(store, "price2", "db2", slog.Default())
}

func propertyDoc() bson.M {
	return bson.M{
		"kaptCode":            "A10024",
		"kaptName":            "래미안",
		"avgPrice":            "3200.5",
		"address":             "서울특별시 강남구 개포동 12",
		"location":            bson.M{"type": "Point", "coordinates": bson.A{127.06, 37.48}},
		"amenities":           "편의점,세탁소",
		"educationFacilities": "초등학교",
		"groundParking":       "3",
		"undergroundParking":  nil,
		"households60":        int32(120),
		"households85":        "80",
		"busTime":             "5분이내",
		"subwayTime":          "10~15분이내",
		"subwayLine":          "3호선",
		"subwayStation":       "대청역",
	}
}

func TestLoadPropertiesCoercion(t *testing.T) {
	store := new(MockStore)
	store.On("FindAll", mock.Anything, "db2").Return([]bson.M{propertyDoc()}, nil)

	records, err := newTestRepo(store).LoadProperties(context.Background())

	assert.NoError(t, err)
	assert.Len(t, records, 1)
	p := records[0]
	assert.Equal(t, "A10024", p.ComplexCode)
	assert.Equal(t, 3200.5, p.AvgPrice)
	assert.Equal(t, 3, p.GroundParking)
	assert.Equal(t, 0, p.UndergroundParking)
	assert.Equal(t, 120, p.Households60)
	assert.Equal(t, 80, p.Households85)
	assert.Equal(t, 0, p.Households135)
	if assert.NotNil(t, p.Coordinate) {
		assert.Equal(t, 37.48, p.Coordinate.Lat)
		assert.Equal(t, 127.06, p.Coordinate.Lon)
	}
}

func TestLoadPropertiesEmptyCollection(t *testing.T) {
	store := new(MockStore)
	store.On("FindAll", mock.Anything, "db2").Return([]bson.M{}, nil)

	records, err := newTestRepo(store).LoadProperties(context.Background())

	assert.NoError(t, err)
	assert.Empty(t, records)
}

func TestLoadPropertiesSchemaMismatch(t *testing.T) {
	doc := propertyDoc()
	delete(doc, "kaptCode")
	store := new(MockStore)
	store.On("FindAll", mock.Anything, "db2").Return([]bson.M{doc}, nil)

	_, err := newTestRepo(store).LoadProperties(context.Background())

	assert.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrSchemaMismatch))
	assert.Contains(t, err.Error(), "kaptCode")
}

func TestLoadTransactionsCoercion(t *testing.T) {
	docs := []bson.M{
		{
			"dealAmount": "82,500",
			"dealDate":   "2024-03-15",
			"aptName":    "래미안",
			"area":       "84.99",
			"floor":      "12",
			"location":   bson.M{"type": "Point", "coordinates": bson.A{127.06, 37.48}},
			"address":    "서울특별시 강남구 개포동 12",
		},
		{
			"dealAmount": "70,000",
			"dealDate":   "2023-11-02",
			"aptName":    "래미안",
			"area":       84.99,
			"floor":      "-5",
			"location":   bson.M{"type": "Point", "coordinates": bson.A{127.06, 37.48}},
			"address":    "서울특별시 강남구 개포동 12",
		},
	}
	store := new(MockStore)
	store.On("FindAll", mock.Anything, "price2").Return(docs, nil)

	records, err := newTestRepo(store).LoadTransactions(context.Background())

	assert.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, 82500, records[0].Amount)
	assert.Equal(t, 84.99, records[0].Area)
	assert.Equal(t, 12, records[0].Floor)
	assert.Equal(t, 2024, records[0].Year())
	// Negative floors are coerced to 0, not dropped
	assert.Equal(t, 0, records[1].Floor)
	assert.Equal(t, 70000, records[1].Amount)
}

func TestLoadTransactionsStoreUnavailable(t *testing.T) {
	store := new(MockStore)
	store.On("FindAll", mock.Anything, "price2").Return(nil, types.ErrDataUnavailable)

	_, err := newTestRepo(store).LoadTransactions(context.Background())

	assert.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrDataUnavailable))
}

func TestFindByNameNotFound(t *testing.T) {
	store := new(MockStore)
	store.On("FindOne", mock.Anything, "db2", bson.M{"kaptName": "없는단지"}).Return(nil, types.ErrPropertyNotFound)

	_, err := newTestRepo(store).FindByName(context.Background(), "없는단지")

	assert.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrPropertyNotFound))
}

func TestCleanFloor(t *testing.T) {
	assert.Equal(t, 12, cleanFloor("12"))
	assert.Equal(t, 0, cleanFloor("-5"))
	assert.Equal(t, 0, cleanFloor(""))
	assert.Equal(t, 0, cleanFloor("지하"))
	assert.Equal(t, 7, cleanFloor(int32(7)))
}
