/*
Package catalog searches external marketplaces for purchasable media and
normalizes the results into a single [Candidate] shape.

Two upstreams are wired in: the iTunes Search API for movies and the Google
Books volumes API for books. Every upstream response is flattened into
candidates carrying a canonical price from [pricing], so callers never see
raw upstream payloads.

# Resilience

Both clients treat the upstream as hostile: every field of the raw response
is optional, HTTP 403 is surfaced as [ErrRateLimited] so batch callers can
stop hammering a throttled endpoint, and the movie client applies its own
client-side token bucket in front of the network call.
*/
package catalog

import "github.com/pricewatch/pricewatch/internal/pricing"

// # Result Model

// Candidate is one normalized search result from an external catalog.
type Candidate struct {
	Title       string         `json:"title"`
	Creator     string         `json:"creator,omitempty"`
	Year        *int           `json:"year,omitempty"`
	URL         string         `json:"url"`
	Price       float64        `json:"price"`
	Source      pricing.Source `json:"priceSource"`
	Currency    string         `json:"currency"`
	ExternalID  string         `json:"externalId,omitempty"`
	Artwork     string         `json:"artworkUrl,omitempty"`
	Description string         `json:"description,omitempty"`
	DisplayName string         `json:"displayName,omitempty"`
}

// HasRealPrice reports whether the candidate's price came from an actual
// marketplace tier rather than a synthesized estimate.
func (candidate Candidate) HasRealPrice() bool {
	return candidate.Source.IsReal()
}
