package pricing_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pricewatch/pricewatch/internal/pricing"
	"github.com/pricewatch/pricewatch/pkg/pointer"
)

// fixedNow pins the estimator clock so "recent release" logic is stable.
func fixedNow() time.Time {
	return time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
}

func newEstimator(seed int64) *pricing.Estimator {
	return pricing.NewEstimator(pricing.DefaultConfig(), rand.New(rand.NewSource(seed)), fixedNow)
}

func TestMoviePrice_TierPriority(t *testing.T) {
	estimator := newEstimator(1)

	tests := []struct {
		name       string
		tiers      pricing.MovieTiers
		wantPrice  float64
		wantSource pricing.Source
	}{
		{
			"hd_purchase_wins",
			pricing.MovieTiers{
				HDPrice:       pointer.To(13.99),
				PurchasePrice: pointer.To(9.99),
				RentalPrice:   pointer.To(3.49),
			},
			13.99, pricing.SourcePurchaseHD,
		},
		{
			"purchase_beats_collection_and_rental",
			pricing.MovieTiers{
				PurchasePrice:   pointer.To(9.99),
				CollectionPrice: pointer.To(24.99),
				RentalPrice:     pointer.To(3.49),
			},
			9.99, pricing.SourcePurchase,
		},
		{
			"collection_beats_rental",
			pricing.MovieTiers{
				CollectionPrice: pointer.To(24.99),
				RentalPrice:     pointer.To(3.49),
			},
			24.99, pricing.SourceCollection,
		},
		{
			"rental_last_real_tier",
			pricing.MovieTiers{RentalPrice: pointer.To(4.49)},
			4.49, pricing.SourceRental,
		},
		{
			"zero_tier_skipped",
			pricing.MovieTiers{
				HDPrice:     pointer.To(0.0),
				RentalPrice: pointer.To(3.49),
			},
			3.49, pricing.SourceRental,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote := estimator.MoviePrice(tt.tiers)
			assert.Equal(t, tt.wantPrice, quote.Price)
			assert.Equal(t, tt.wantSource, quote.Source)
		})
	}
}

func TestMoviePrice_EstimateBounds(t *testing.T) {
	estimator := newEstimator(42)

	for i := 0; i < 500; i++ {
		quote := estimator.MoviePrice(pricing.MovieTiers{Year: pointer.To(1999)})
		assert.Equal(t, pricing.SourceEstimated, quote.Source)
		assert.Equal(t, "GBP", quote.Currency)
		assert.GreaterOrEqual(t, quote.Price, 2.99)
	}
}

func TestMoviePrice_RecentReleaseRaisesBase(t *testing.T) {
	// Zero jitter makes the estimate fully deterministic.
	cfg := pricing.DefaultConfig()
	cfg.MovieJitter = 0
	estimator := pricing.NewEstimator(cfg, rand.New(rand.NewSource(1)), fixedNow)

	tests := []struct {
		name string
		year *int
		want float64
	}{
		{"this_year", pointer.To(2026), 4.99},
		{"last_year", pointer.To(2025), 4.99},
		{"three_years_ago", pointer.To(2023), 3.99},
		{"old_release", pointer.To(2001), 3.49},
		{"unknown_year", nil, 3.49},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote := estimator.MoviePrice(pricing.MovieTiers{Year: tt.year})
			assert.Equal(t, tt.want, quote.Price)
		})
	}
}

func TestBookPrice_RealListPriceConversion(t *testing.T) {
	// Jitter only applies to synthesized prices; conversion is deterministic
	// regardless of the seed.
	estimator := newEstimator(7)

	quote := estimator.BookPrice(&pricing.BookListPrice{Amount: 25.00, Currency: "USD"}, nil)

	assert.Equal(t, 19.75, quote.Price)
	assert.Equal(t, pricing.SourcePurchase, quote.Source)
	assert.Equal(t, "GBP", quote.Currency)
}

func TestBookPrice_GBPListPriceUnchanged(t *testing.T) {
	estimator := newEstimator(7)

	quote := estimator.BookPrice(&pricing.BookListPrice{Amount: 12.50, Currency: "GBP"}, nil)

	assert.Equal(t, 12.50, quote.Price)
	assert.Equal(t, pricing.SourcePurchase, quote.Source)
}

func TestBookPrice_EstimateBounds(t *testing.T) {
	estimator := newEstimator(99)

	pageCounts := []*int{nil, pointer.To(90), pointer.To(250), pointer.To(350), pointer.To(600)}
	for i := 0; i < 500; i++ {
		quote := estimator.BookPrice(nil, pageCounts[i%len(pageCounts)])
		assert.Equal(t, pricing.SourceEstimated, quote.Source)
		assert.GreaterOrEqual(t, quote.Price, 2.99)
		assert.LessOrEqual(t, quote.Price, 19.99)
	}
}

func TestBookPrice_PageCountSteps(t *testing.T) {
	cfg := pricing.DefaultConfig()
	cfg.BookJitter = 0
	estimator := pricing.NewEstimator(cfg, rand.New(rand.NewSource(1)), fixedNow)

	tests := []struct {
		name  string
		pages *int
		want  float64
	}{
		{"very_long", pointer.To(450), 12.99},
		{"long", pointer.To(350), 10.99},
		{"average", pointer.To(250), 8.99},
		{"short", pointer.To(120), 6.99},
		{"unknown_defaults_to_average", nil, 8.99},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote := estimator.BookPrice(nil, tt.pages)
			assert.Equal(t, tt.want, quote.Price)
		})
	}
}

func TestSourceIsReal(t *testing.T) {
	assert.True(t, pricing.SourcePurchaseHD.IsReal())
	assert.True(t, pricing.SourceRental.IsReal())
	assert.False(t, pricing.SourceEstimated.IsReal())
	assert.False(t, pricing.SourceSample.IsReal())
	assert.False(t, pricing.SourceManualEntry.IsReal())
}
