package indicator

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "adei.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seedTestData(t *testing.T, s *Store) {
	t.Helper()
	err := s.Seed(context.Background(), []Record{
		{Country: "Qatar", Year: 2022, Pillar: "Health & Survival", Value: 0.70},
		{Country: "Qatar", Year: 2023, Pillar: "Health & Survival", Value: 0.72},
		{Country: "Qatar", Year: 2023, Pillar: "Educational Attainment", Value: 0.88},
		{Country: "Jordan", Year: 2023, Pillar: "Health & Survival", Value: 0.61},
	})
	require.NoError(t, err)
}

func TestQuery_NoFilter(t *testing.T) {
	s := openTestStore(t)
	seedTestData(t, s)

	records, err := s.Query(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Len(t, records, 4)
}

func TestQuery_Filters(t *testing.T) {
	s := openTestStore(t)
	seedTestData(t, s)
	ctx := context.Background()

	byCountry, err := s.Query(ctx, Filter{Countries: []string{"Jordan"}})
	require.NoError(t, err)
	assert.Len(t, byCountry, 1)

	byYear, err := s.Query(ctx, Filter{YearFrom: 2023, YearTo: 2023})
	require.NoError(t, err)
	assert.Len(t, byYear, 3)

	byPillar, err := s.Query(ctx, Filter{Pillars: []string{"Educational Attainment"}})
	require.NoError(t, err)
	assert.Len(t, byPillar, 1)

	combined, err := s.Query(ctx, Filter{
		Countries: []string{"Qatar"},
		YearFrom:  2023,
		Pillars:   []string{"Health & Survival"},
	})
	require.NoError(t, err)
	require.Len(t, combined, 1)
	assert.Equal(t, 0.72, combined[0].Value)
}

func TestSeed_ReplacesExistingRows(t *testing.T) {
	s := openTestStore(t)
	seedTestData(t, s)
	ctx := context.Background()

	err := s.Seed(ctx, []Record{
		{Country: "Qatar", Year: 2023, Pillar: "Health & Survival", Value: 0.99},
	})
	require.NoError(t, err)

	records, err := s.Query(ctx, Filter{
		Countries: []string{"Qatar"}, YearFrom: 2023, YearTo: 2023,
		Pillars: []string{"Health & Survival"},
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 0.99, records[0].Value)
}

func TestCountriesAndYears(t *testing.T) {
	s := openTestStore(t)
	seedTestData(t, s)
	ctx := context.Background()

	countries, err := s.Countries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Jordan", "Qatar"}, countries)

	years, err := s.Years(ctx)
	require.NoError(t, err)
	assert.Equal(t, YearRange{Min: 2022, Max: 2023}, years)
}

func TestYears_EmptyStore(t *testing.T) {
	s := openTestStore(t)

	years, err := s.Years(context.Background())
	require.NoError(t, err)
	assert.Equal(t, YearRange{}, years)
}
