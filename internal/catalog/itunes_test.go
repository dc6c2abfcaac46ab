package catalog_test

import (
	"context"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricewatch/pricewatch/internal/catalog"
	"github.com/pricewatch/pricewatch/internal/pricing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testEstimator() *pricing.Estimator {
	cfg := pricing.DefaultConfig()
	cfg.MovieJitter = 0
	cfg.BookJitter = 0
	return pricing.NewEstimator(cfg, rand.New(rand.NewSource(1)), func() time.Time {
		return time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	})
}

func TestQueryVariants(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			"title_with_year_annotation",
			"The Matrix (1999)",
			[]string{"The Matrix (1999)", "The+Matrix+(1999)", "The Matrix"},
		},
		{
			"single_word_deduplicates",
			"Inception",
			[]string{"Inception"},
		},
		{
			"whitespace_trimmed",
			"  Heat  ",
			[]string{"Heat"},
		},
		{
			"duplicate_variants_collapse",
			"Alien",
			[]string{"Alien"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, catalog.QueryVariants(tt.raw))
		})
	}
}

func TestITunesSearch_MapsResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/search", request.URL.Path)
		assert.Equal(t, "movie", request.URL.Query().Get("media"))
		assert.Equal(t, "GB", request.URL.Query().Get("country"))
		assert.Equal(t, "15", request.URL.Query().Get("limit"))
		assert.Contains(t, request.Header.Get("User-Agent"), "Mozilla")

		writer.Header().Set("Content-Type", "application/json")
		writer.Write([]byte(`{
			"resultCount": 2,
			"results": [
				{
					"trackId": 12345,
					"trackName": "Heat",
					"artistName": "Michael Mann",
					"trackViewUrl": "https://itunes.example/heat",
					"releaseDate": "1995-12-15T00:00:00Z",
					"trackHdPrice": 13.99,
					"trackPrice": 9.99,
					"currency": "GBP"
				},
				{
					"trackName": "Heat (Bonus Edition)",
					"artistName": "",
					"trackViewUrl": "https://itunes.example/heat-bonus",
					"trackRentalPrice": 3.49,
					"currency": "GBP"
				}
			]
		}`))
	}))
	defer server.Close()

	client := catalog.NewITunesClient(server.URL, time.Second, testEstimator(), testLogger())

	candidates, err := client.Search(context.Background(), "Heat")
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	first := candidates[0]
	assert.Equal(t, "Heat", first.Title)
	assert.Equal(t, "Michael Mann", first.Creator)
	require.NotNil(t, first.Year)
	assert.Equal(t, 1995, *first.Year)
	assert.Equal(t, "12345", first.ExternalID)
	assert.Equal(t, 13.99, first.Price)
	assert.Equal(t, pricing.SourcePurchaseHD, first.Source)

	second := candidates[1]
	assert.Equal(t, "Unknown", second.Creator)
	assert.Empty(t, second.ExternalID)
	assert.Equal(t, 3.49, second.Price)
	assert.Equal(t, pricing.SourceRental, second.Source)
}

func TestITunesSearch_VariantFallback(t *testing.T) {
	var terms []string
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		term := request.URL.Query().Get("term")
		terms = append(terms, term)

		// Only the parenthesis-stripped variant finds anything.
		if term == "The Matrix" {
			writer.Write([]byte(`{"resultCount": 1, "results": [{"trackName": "The Matrix", "trackPrice": 7.99, "currency": "GBP"}]}`))
			return
		}
		writer.Write([]byte(`{"resultCount": 0, "results": []}`))
	}))
	defer server.Close()

	client := catalog.NewITunesClient(server.URL, time.Second, testEstimator(), testLogger())

	candidates, err := client.Search(context.Background(), "The Matrix (1999)")
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, []string{"The Matrix (1999)", "The+Matrix+(1999)", "The Matrix"}, terms)
}

func TestITunesSearch_RateLimitShortCircuit(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		calls++
		writer.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := catalog.NewITunesClient(server.URL, time.Second, testEstimator(), testLogger())

	_, err := client.Search(context.Background(), "The Matrix (1999)")
	require.ErrorIs(t, err, catalog.ErrRateLimited)
	assert.Equal(t, 1, calls, "no further variants after a 403")
}

func TestITunesSearch_TransportErrorAdvancesVariant(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		calls++
		if calls == 1 {
			writer.WriteHeader(http.StatusInternalServerError)
			return
		}
		writer.Write([]byte(`{"resultCount": 1, "results": [{"trackName": "Alien", "trackPrice": 5.99, "currency": "GBP"}]}`))
	}))
	defer server.Close()

	client := catalog.NewITunesClient(server.URL, time.Second, testEstimator(), testLogger())

	candidates, err := client.Search(context.Background(), "Alien (1979)")
	require.NoError(t, err)
	assert.Len(t, candidates, 1)
	assert.Equal(t, 2, calls)
}

func TestITunesSearch_NoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Write([]byte(`{"resultCount": 0, "results": []}`))
	}))
	defer server.Close()

	client := catalog.NewITunesClient(server.URL, time.Second, testEstimator(), testLogger())

	_, err := client.Search(context.Background(), "Nonexistent Film")
	require.ErrorIs(t, err, catalog.ErrNoResults)
}

func TestITunesSearch_CapsResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		payload := `{"resultCount": 15, "results": [`
		for i := 0; i < 15; i++ {
			if i > 0 {
				payload += ","
			}
			payload += `{"trackName": "Film", "trackPrice": 4.99, "currency": "GBP"}`
		}
		payload += `]}`
		writer.Write([]byte(payload))
	}))
	defer server.Close()

	client := catalog.NewITunesClient(server.URL, time.Second, testEstimator(), testLogger())

	candidates, err := client.Search(context.Background(), "Film")
	require.NoError(t, err)
	assert.Len(t, candidates, 10)
}

func TestITunesLookupByID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/lookup", request.URL.Path)
		assert.Equal(t, "12345", request.URL.Query().Get("id"))
		writer.Write([]byte(`{"resultCount": 1, "results": [{"trackId": 12345, "trackName": "Heat", "trackHdPrice": 11.99, "currency": "GBP"}]}`))
	}))
	defer server.Close()

	client := catalog.NewITunesClient(server.URL, time.Second, testEstimator(), testLogger())

	candidate, err := client.LookupByID(context.Background(), "12345")
	require.NoError(t, err)
	assert.Equal(t, "Heat", candidate.Title)
	assert.Equal(t, 11.99, candidate.Price)
}
