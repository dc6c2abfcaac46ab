// Package pricing derives a canonical, displayable price for a catalog result.
//
// Real marketplace prices are strongly preferred; synthesized prices exist only
// to give the UI something non-null to display and are tagged [SourceEstimated]
// so downstream consumers can distinguish fact from guess.
package pricing

import (
	"math"
	"math/rand"
	"time"
)

// Config holds every tunable constant used by the estimator. Tests inject a
// zero-jitter variant for deterministic assertions.
type Config struct {
	// USDToGBP is the fixed conversion multiplier applied to USD list prices.
	// There is no live FX lookup; all prices here are best-effort estimates.
	USDToGBP float64

	// Movie rental synthesis.
	MovieBaseRental   float64 // default estimate
	MovieRecentRental float64 // release within RecentWindowYears of now
	MovieModernRental float64 // release within ModernWindowYears of now
	MovieFloor        float64
	MovieJitter       float64 // half-width of the uniform jitter
	RecentWindowYears int
	ModernWindowYears int

	// Book price synthesis from page count.
	BookBase         float64
	BookLong         float64 // more than 300 pages
	BookVeryLong     float64 // more than 400 pages
	BookShort        float64 // fewer than 150 pages
	BookFloor        float64
	BookCeil         float64
	BookJitter       float64 // half-width of the uniform jitter
	DefaultPageCount int
}

// DefaultConfig returns the production pricing constants.
func DefaultConfig() Config {
	return Config{
		USDToGBP: 0.79,

		MovieBaseRental:   3.49,
		MovieRecentRental: 4.99,
		MovieModernRental: 3.99,
		MovieFloor:        2.99,
		MovieJitter:       0.5,
		RecentWindowYears: 1,
		ModernWindowYears: 3,

		BookBase:         8.99,
		BookLong:         10.99,
		BookVeryLong:     12.99,
		BookShort:        6.99,
		BookFloor:        2.99,
		BookCeil:         19.99,
		BookJitter:       1.0,
		DefaultPageCount: 250,
	}
}

// Quote is the derived canonical price for a single catalog result.
type Quote struct {
	Price    float64
	Source   Source
	Currency string
}

// MovieTiers carries the optional price tiers a movie catalog item may expose.
// Every field is optional; never assume presence.
type MovieTiers struct {
	HDPrice         *float64
	PurchasePrice   *float64
	CollectionPrice *float64
	RentalPrice     *float64
	Currency        string
	Year            *int
}

// BookListPrice is the optional real list price attached to a book result.
type BookListPrice struct {
	Amount   float64
	Currency string
}

// Estimator turns partial catalog pricing metadata into a [Quote].
//
// # Determinism
//
// Randomness (the uniform jitter on synthesized prices) is isolated behind the
// injected rand source; the clock behind the injected now func. Production
// passes nil for both and gets real entropy and real time.
type Estimator struct {
	cfg Config
	rng *rand.Rand
	now func() time.Time
}

// NewEstimator constructs an estimator. A nil rng gets a time-seeded source;
// a nil now defaults to [time.Now].
func NewEstimator(cfg Config, rng *rand.Rand, now func() time.Time) *Estimator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if now == nil {
		now = time.Now
	}
	return &Estimator{cfg: cfg, rng: rng, now: now}
}

// MoviePrice derives the canonical price for a movie result.
//
// The tiers are examined in strict priority order: HD purchase, standard
// purchase, collection, rental. The first positive value wins and determines
// both the price and its source. With no positive tier present, a rental
// estimate is synthesized from the release year.
func (estimator *Estimator) MoviePrice(tiers MovieTiers) Quote {
	currency := tiers.Currency
	if currency == "" {
		currency = "GBP"
	}

	type tier struct {
		value  *float64
		source Source
	}

	for _, t := range []tier{
		{tiers.HDPrice, SourcePurchaseHD},
		{tiers.PurchasePrice, SourcePurchase},
		{tiers.CollectionPrice, SourceCollection},
		{tiers.RentalPrice, SourceRental},
	} {
		if t.value != nil && *t.value > 0 {
			return Quote{Price: round2(*t.value), Source: t.source, Currency: currency}
		}
	}

	return Quote{
		Price:    estimator.estimateMovieRental(tiers.Year),
		Source:   SourceEstimated,
		Currency: "GBP",
	}
}

// estimateMovieRental synthesizes a plausible rental price. Newer releases
// rent for more.
func (estimator *Estimator) estimateMovieRental(year *int) float64 {
	cfg := estimator.cfg
	base := cfg.MovieBaseRental
	currentYear := estimator.now().Year()

	if year != nil && *year >= currentYear-cfg.RecentWindowYears {
		base = cfg.MovieRecentRental
	} else if year != nil && *year >= currentYear-cfg.ModernWindowYears {
		base = cfg.MovieModernRental
	}

	price := base + estimator.jitter(cfg.MovieJitter)
	return round2(math.Max(cfg.MovieFloor, price))
}

// BookPrice derives the canonical price for a book result.
//
// A real list price wins outright: USD amounts are converted with the fixed
// multiplier, everything else is taken at face value in GBP. Without a list
// price, an estimate is synthesized from the page count.
func (estimator *Estimator) BookPrice(list *BookListPrice, pageCount *int) Quote {
	if list != nil && list.Amount > 0 {
		price := list.Amount
		if list.Currency == "USD" {
			price *= estimator.cfg.USDToGBP
		}
		return Quote{Price: round2(price), Source: SourcePurchase, Currency: "GBP"}
	}

	return Quote{
		Price:    estimator.estimateBookPrice(pageCount),
		Source:   SourceEstimated,
		Currency: "GBP",
	}
}

// estimateBookPrice synthesizes a book price stepped by page count.
func (estimator *Estimator) estimateBookPrice(pageCount *int) float64 {
	cfg := estimator.cfg

	pages := cfg.DefaultPageCount
	if pageCount != nil && *pageCount > 0 {
		pages = *pageCount
	}

	base := cfg.BookBase
	switch {
	case pages > 400:
		base = cfg.BookVeryLong
	case pages > 300:
		base = cfg.BookLong
	case pages < 150:
		base = cfg.BookShort
	}

	price := base + estimator.jitter(cfg.BookJitter)
	price = math.Max(cfg.BookFloor, math.Min(cfg.BookCeil, price))
	return round2(price)
}

// jitter returns a uniform random value in [-half, +half].
func (estimator *Estimator) jitter(half float64) float64 {
	if half == 0 {
		return 0
	}
	return (estimator.rng.Float64()*2 - 1) * half
}

// round2 rounds to two decimal places, the precision of every stored price.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
