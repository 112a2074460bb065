package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/skysweep/skysweep/internal/domain"
)

// memStore is an in-memory cache for tests.
type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *memStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.sets++
	return nil
}

func (m *memStore) Close() error { return nil }

func place(label string, codes ...string) domain.Place {
	airports := make([]domain.Airport, len(codes))
	for i, c := range codes {
		airports[i] = domain.Airport{IATA: c, Name: c + " Airport"}
	}
	return domain.Place{Label: label, Airports: airports}
}

func testPolicy() domain.Policy {
	return domain.Policy{
		Weights: domain.Weights{Price: 0.45, Duration: 0.3, Transfers: 0.15, ConnectionRisk: 0.1},
		Limits:  domain.Limits{MaxTransfersTotal: 2},
	}
}

func baseQuery() domain.SearchQuery {
	return domain.SearchQuery{
		Origin:        "Madrid",
		Destination:   "Barcelona",
		DepartureDate: "2026-10-01",
	}
}

func directRaw(id, price string) domain.RawOffer {
	return rawOffer(id, price, "EUR", itinerary("PT1H20M",
		[]string{"IB", "430", "MAD", "BCN", "2026-10-01T08:00:00", "2026-10-01T09:20:00"},
	))
}

func newSweep(t *testing.T, ctrl *gomock.Controller) (*domain.MockOfferSource, *domain.MockPlaceResolver, *memStore, SearchUseCase) {
	t.Helper()
	source := domain.NewMockOfferSource(ctrl)
	resolver := domain.NewMockPlaceResolver(ctrl)
	store := newMemStore()
	uc := NewSearchUseCase(source, resolver, store, testPolicy(), nil, zerolog.Nop())
	return source, resolver, store, uc
}

func TestSearchHappyPath(t *testing.T) {
	ctrl := gomock.NewController(t)
	source, resolver, store, uc := newSweep(t, ctrl)

	resolver.EXPECT().Resolve(gomock.Any(), "Madrid").Return(place("Madrid", "MAD"), nil)
	resolver.EXPECT().Resolve(gomock.Any(), "Barcelona").Return(place("Barcelona", "BCN"), nil)
	source.EXPECT().Search(gomock.Any(), domain.SearchLeg{
		Origin: "MAD", Destination: "BCN", DepartureDate: "2026-10-01", Adults: 1,
	}).Return([]domain.RawOffer{directRaw("a", "80"), directRaw("b", "60")}, nil)
	source.EXPECT().Name().Return("amadeus").AnyTimes()

	result, err := uc.Search(context.Background(), baseQuery())
	require.NoError(t, err)

	require.Len(t, result.Offers, 2)
	assert.Equal(t, "b", result.Offers[0].ID)
	assert.Equal(t, "a", result.Offers[1].ID)
	assert.Equal(t, "Ordered by price, weighing duration and connections.", result.Reason)

	meta := result.Metadata
	assert.Equal(t, "Madrid", meta.OriginPlace)
	assert.Equal(t, []string{"MAD"}, meta.OriginAirports)
	assert.Equal(t, []string{"BCN"}, meta.DestinationAirports)
	assert.Equal(t, 1, meta.LegsQueried)
	assert.Empty(t, meta.LegsFailed)
	assert.Equal(t, 2, meta.TotalOffers)
	assert.Equal(t, "amadeus", meta.Source)
	assert.False(t, meta.CacheHit)

	assert.Equal(t, 1, store.sets)
}

func TestSearchPartialFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	source, resolver, _, uc := newSweep(t, ctrl)

	resolver.EXPECT().Resolve(gomock.Any(), "Madrid").Return(place("Madrid", "MAD", "VLL"), nil)
	resolver.EXPECT().Resolve(gomock.Any(), "Barcelona").Return(place("Barcelona", "BCN"), nil)

	source.EXPECT().Search(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, leg domain.SearchLeg) ([]domain.RawOffer, error) {
			if leg.Origin == "VLL" {
				return nil, errors.New("provider unavailable")
			}
			return []domain.RawOffer{directRaw("a", "80")}, nil
		}).Times(2)
	source.EXPECT().Name().Return("amadeus").AnyTimes()

	result, err := uc.Search(context.Background(), baseQuery())
	require.NoError(t, err)

	assert.Len(t, result.Offers, 1)
	assert.Equal(t, 2, result.Metadata.LegsQueried)
	assert.Equal(t, []string{"VLL-BCN@2026-10-01"}, result.Metadata.LegsFailed)
}

func TestSearchAllLegsFailed(t *testing.T) {
	ctrl := gomock.NewController(t)
	source, resolver, store, uc := newSweep(t, ctrl)

	resolver.EXPECT().Resolve(gomock.Any(), "Madrid").Return(place("Madrid", "MAD"), nil)
	resolver.EXPECT().Resolve(gomock.Any(), "Barcelona").Return(place("Barcelona", "BCN"), nil)
	source.EXPECT().Search(gomock.Any(), gomock.Any()).Return(nil, errors.New("down")).Times(1)

	result, err := uc.Search(context.Background(), baseQuery())
	assert.ErrorIs(t, err, domain.ErrAllSearchesFailed)
	assert.Nil(t, result)
	assert.Equal(t, 0, store.sets)
}

func TestSearchLegPanicIsIsolated(t *testing.T) {
	ctrl := gomock.NewController(t)
	source, resolver, _, uc := newSweep(t, ctrl)

	resolver.EXPECT().Resolve(gomock.Any(), "Madrid").Return(place("Madrid", "MAD", "VLL"), nil)
	resolver.EXPECT().Resolve(gomock.Any(), "Barcelona").Return(place("Barcelona", "BCN"), nil)

	source.EXPECT().Search(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, leg domain.SearchLeg) ([]domain.RawOffer, error) {
			if leg.Origin == "VLL" {
				panic("boom")
			}
			return []domain.RawOffer{directRaw("a", "80")}, nil
		}).Times(2)
	source.EXPECT().Name().Return("amadeus").AnyTimes()

	result, err := uc.Search(context.Background(), baseQuery())
	require.NoError(t, err)

	assert.Len(t, result.Offers, 1)
	assert.Equal(t, []string{"VLL-BCN@2026-10-01"}, result.Metadata.LegsFailed)
}

func TestSearchResolverFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	_, resolver, _, uc := newSweep(t, ctrl)

	resolver.EXPECT().Resolve(gomock.Any(), "Madrid").Return(domain.Place{}, domain.ErrPlaceNotFound)

	result, err := uc.Search(context.Background(), baseQuery())
	assert.ErrorIs(t, err, domain.ErrPlaceNotFound)
	assert.Nil(t, result)
}

func TestSearchInvalidQuery(t *testing.T) {
	ctrl := gomock.NewController(t)
	_, _, _, uc := newSweep(t, ctrl)

	query := baseQuery()
	query.DepartureDate = "01/10/2026"

	result, err := uc.Search(context.Background(), query)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	assert.Nil(t, result)
}

func TestSearchInfeasibleOffersFiltered(t *testing.T) {
	ctrl := gomock.NewController(t)
	source, resolver, _, uc := newSweep(t, ctrl)

	// Three segments means two stops outbound plus anything inbound; with a
	// limit of 2 the three-stop offer must be dropped.
	multiStop := rawOffer("deep", "30", "EUR", itinerary("PT9H",
		[]string{"IB", "1", "MAD", "LIS", "2026-10-01T06:00:00", "2026-10-01T07:00:00"},
		[]string{"IB", "2", "LIS", "OPO", "2026-10-01T08:00:00", "2026-10-01T09:00:00"},
		[]string{"IB", "3", "OPO", "SVQ", "2026-10-01T10:00:00", "2026-10-01T11:00:00"},
		[]string{"IB", "4", "SVQ", "BCN", "2026-10-01T12:00:00", "2026-10-01T15:00:00"},
	))

	resolver.EXPECT().Resolve(gomock.Any(), "Madrid").Return(place("Madrid", "MAD"), nil)
	resolver.EXPECT().Resolve(gomock.Any(), "Barcelona").Return(place("Barcelona", "BCN"), nil)
	source.EXPECT().Search(gomock.Any(), gomock.Any()).
		Return([]domain.RawOffer{directRaw("ok", "80"), multiStop}, nil)
	source.EXPECT().Name().Return("amadeus").AnyTimes()

	result, err := uc.Search(context.Background(), baseQuery())
	require.NoError(t, err)

	require.Len(t, result.Offers, 1)
	assert.Equal(t, "ok", result.Offers[0].ID)
}

func TestSearchSecondCallHitsCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	source, resolver, store, uc := newSweep(t, ctrl)

	resolver.EXPECT().Resolve(gomock.Any(), "Madrid").Return(place("Madrid", "MAD"), nil).Times(1)
	resolver.EXPECT().Resolve(gomock.Any(), "Barcelona").Return(place("Barcelona", "BCN"), nil).Times(1)
	source.EXPECT().Search(gomock.Any(), gomock.Any()).
		Return([]domain.RawOffer{directRaw("a", "80")}, nil).Times(1)
	source.EXPECT().Name().Return("amadeus").AnyTimes()

	first, err := uc.Search(context.Background(), baseQuery())
	require.NoError(t, err)
	assert.False(t, first.Metadata.CacheHit)

	second, err := uc.Search(context.Background(), baseQuery())
	require.NoError(t, err)
	assert.True(t, second.Metadata.CacheHit)
	assert.Equal(t, first.Offers, second.Offers)
	assert.Equal(t, 1, store.sets)
}

func TestSearchFlexDatesExpandLegs(t *testing.T) {
	ctrl := gomock.NewController(t)
	source, resolver, _, uc := newSweep(t, ctrl)

	query := baseQuery()
	query.FlexDays = 1

	resolver.EXPECT().Resolve(gomock.Any(), "Madrid").Return(place("Madrid", "MAD"), nil)
	resolver.EXPECT().Resolve(gomock.Any(), "Barcelona").Return(place("Barcelona", "BCN"), nil)

	var mu sync.Mutex
	seen := map[string]bool{}
	source.EXPECT().Search(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, leg domain.SearchLeg) ([]domain.RawOffer, error) {
			mu.Lock()
			seen[leg.DepartureDate] = true
			mu.Unlock()
			return nil, nil
		}).Times(3)
	source.EXPECT().Name().Return("amadeus").AnyTimes()

	result, err := uc.Search(context.Background(), query)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Metadata.LegsQueried)
	assert.True(t, seen["2026-09-30"])
	assert.True(t, seen["2026-10-01"])
	assert.True(t, seen["2026-10-02"])
	assert.Empty(t, result.Offers)
}

func TestBuildLegsSkipsIdenticalAirports(t *testing.T) {
	query := baseQuery()
	query.SetDefaults()

	origin := place("Madrid", "MAD", "BCN")
	destination := place("Barcelona", "BCN")

	legs := buildLegs(query, origin, destination)

	require.Len(t, legs, 1)
	assert.Equal(t, "MAD", legs[0].Origin)
	assert.Equal(t, "BCN", legs[0].Destination)
}
