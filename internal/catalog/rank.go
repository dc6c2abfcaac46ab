package catalog

import (
	"sort"
	"strings"

	"github.com/pricewatch/pricewatch/internal/pricing"
)

// # Result Ranking

// missingPrice sorts an unpriced candidate behind every priced one.
const missingPrice = 999

// RankMovies orders movie candidates best-first:
//
//  1. Standalone titles before collection or bundle listings. Collections
//     are priced per-bundle, not per-title, so they are almost never the
//     match the user wanted.
//  2. Price-source priority: HD purchase, purchase, collection, rental,
//     then everything synthesized.
//  3. Numeric price ascending, with a missing price sorting last.
//
// The sort is stable so equal candidates keep their upstream relevance order.
func RankMovies(candidates []Candidate) []Candidate {
	ranked := make([]Candidate, len(candidates))
	copy(ranked, candidates)

	sort.SliceStable(ranked, func(i, j int) bool {
		left, right := movieRankKey(ranked[i]), movieRankKey(ranked[j])
		if left.collection != right.collection {
			return !left.collection
		}
		if left.priority != right.priority {
			return left.priority < right.priority
		}
		return left.price < right.price
	})
	return ranked
}

type movieKey struct {
	collection bool
	priority   int
	price      float64
}

func movieRankKey(candidate Candidate) movieKey {
	return movieKey{
		collection: isCollection(candidate),
		priority:   sourcePriority(candidate.Source),
		price:      effectivePrice(candidate.Price),
	}
}

// isCollection infers bundle listings from the candidate text; the store
// does not flag them explicitly.
func isCollection(candidate Candidate) bool {
	haystack := strings.ToLower(candidate.URL + " " + candidate.Description)
	return strings.Contains(haystack, "collection") || strings.Contains(haystack, "bundle")
}

func sourcePriority(source pricing.Source) int {
	switch source {
	case pricing.SourcePurchaseHD:
		return 0
	case pricing.SourcePurchase:
		return 1
	case pricing.SourceCollection:
		return 2
	case pricing.SourceRental:
		return 3
	default:
		return 4
	}
}

func effectivePrice(price float64) float64 {
	if price <= 0 {
		return missingPrice
	}
	return price
}

// RankBooks orders book candidates best-first: real list prices before
// synthesized or sample ones, then ascending price. Stable for ties.
func RankBooks(candidates []Candidate) []Candidate {
	ranked := make([]Candidate, len(candidates))
	copy(ranked, candidates)

	sort.SliceStable(ranked, func(i, j int) bool {
		leftReal, rightReal := ranked[i].HasRealPrice(), ranked[j].HasRealPrice()
		if leftReal != rightReal {
			return leftReal
		}
		return effectivePrice(ranked[i].Price) < effectivePrice(ranked[j].Price)
	})
	return ranked
}
