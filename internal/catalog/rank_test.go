package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricewatch/pricewatch/internal/catalog"
	"github.com/pricewatch/pricewatch/internal/pricing"
)

func TestRankMovies_StandaloneBeforeCollection(t *testing.T) {
	candidates := []catalog.Candidate{
		{Title: "Trilogy", URL: "https://itunes.example/heat-collection", Price: 19.99, Source: pricing.SourcePurchaseHD},
		{Title: "Bundle Deal", Description: "A three film bundle", Price: 14.99, Source: pricing.SourcePurchaseHD},
		{Title: "Single", URL: "https://itunes.example/heat", Price: 9.99, Source: pricing.SourceRental},
	}

	ranked := catalog.RankMovies(candidates)

	require.Len(t, ranked, 3)
	assert.Equal(t, "Single", ranked[0].Title, "standalone wins despite worse source and price")
	assert.Equal(t, "Trilogy", ranked[1].Title)
	assert.Equal(t, "Bundle Deal", ranked[2].Title)
}

func TestRankMovies_SourcePriority(t *testing.T) {
	candidates := []catalog.Candidate{
		{Title: "Estimated", Price: 3.49, Source: pricing.SourceEstimated},
		{Title: "Rental", Price: 3.49, Source: pricing.SourceRental},
		{Title: "Collection Tier", Price: 24.99, Source: pricing.SourceCollection},
		{Title: "Purchase", Price: 9.99, Source: pricing.SourcePurchase},
		{Title: "HD", Price: 13.99, Source: pricing.SourcePurchaseHD},
	}

	ranked := catalog.RankMovies(candidates)

	titles := make([]string, len(ranked))
	for i, candidate := range ranked {
		titles[i] = candidate.Title
	}
	assert.Equal(t, []string{"HD", "Purchase", "Collection Tier", "Rental", "Estimated"}, titles)
}

func TestRankMovies_PriceAscendingWithinTier(t *testing.T) {
	candidates := []catalog.Candidate{
		{Title: "Expensive", Price: 12.99, Source: pricing.SourcePurchase},
		{Title: "Cheap", Price: 6.99, Source: pricing.SourcePurchase},
		{Title: "Unpriced", Price: 0, Source: pricing.SourcePurchase},
	}

	ranked := catalog.RankMovies(candidates)

	assert.Equal(t, "Cheap", ranked[0].Title)
	assert.Equal(t, "Expensive", ranked[1].Title)
	assert.Equal(t, "Unpriced", ranked[2].Title, "missing price sorts last")
}

func TestRankMovies_StableForTies(t *testing.T) {
	candidates := []catalog.Candidate{
		{Title: "First", Price: 9.99, Source: pricing.SourcePurchase},
		{Title: "Second", Price: 9.99, Source: pricing.SourcePurchase},
	}

	ranked := catalog.RankMovies(candidates)

	assert.Equal(t, "First", ranked[0].Title)
	assert.Equal(t, "Second", ranked[1].Title)
}

func TestRankMovies_DoesNotMutateInput(t *testing.T) {
	candidates := []catalog.Candidate{
		{Title: "B", Price: 9.99, Source: pricing.SourceRental},
		{Title: "A", Price: 3.99, Source: pricing.SourcePurchaseHD},
	}

	catalog.RankMovies(candidates)

	assert.Equal(t, "B", candidates[0].Title)
}

func TestRankBooks_RealPriceFirst(t *testing.T) {
	candidates := []catalog.Candidate{
		{Title: "Estimated Cheap", Price: 4.99, Source: pricing.SourceEstimated},
		{Title: "Sample", Price: 9.99, Source: pricing.SourceSample},
		{Title: "Real Pricey", Price: 18.99, Source: pricing.SourcePurchase},
		{Title: "Real Cheap", Price: 7.99, Source: pricing.SourcePurchase},
	}

	ranked := catalog.RankBooks(candidates)

	titles := make([]string, len(ranked))
	for i, candidate := range ranked {
		titles[i] = candidate.Title
	}
	assert.Equal(t, []string{"Real Cheap", "Real Pricey", "Estimated Cheap", "Sample"}, titles)
}
