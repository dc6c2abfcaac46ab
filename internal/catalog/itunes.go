package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pricewatch/pricewatch/internal/platform/constants"
	"github.com/pricewatch/pricewatch/internal/pricing"
)

// # iTunes Client

const (
	itunesSearchPath = "/search"
	itunesLookupPath = "/lookup"

	itunesCountry    = "GB"
	itunesMedia      = "movie"
	itunesEntity     = "movie"
	itunesPageSize   = 15
	itunesMaxResults = 10

	// The search endpoint rejects non-browser agents.
	itunesUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// MovieSearcher is the read surface consumed by ranking, caching and the
// import pipeline. [ITunesClient] is the production implementation; the
// redis decorator in cache.go wraps it transparently.
type MovieSearcher interface {
	Search(ctx context.Context, query string) ([]Candidate, error)
	LookupByID(ctx context.Context, externalID string) (*Candidate, error)
}

// ITunesClient searches the iTunes Store for movies.
type ITunesClient struct {
	baseURL   string
	client    *http.Client
	limiter   *rate.Limiter
	estimator *pricing.Estimator
	logger    *slog.Logger
}

// NewITunesClient constructs a movie catalog client. The limiter mirrors the
// documented upstream quota of roughly twenty calls per minute, refusing
// locally before the upstream gets a chance to 403.
func NewITunesClient(baseURL string, timeout time.Duration, estimator *pricing.Estimator, logger *slog.Logger) *ITunesClient {
	if timeout <= 0 {
		timeout = constants.CatalogRequestTimeout
	}
	return &ITunesClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    &http.Client{Timeout: timeout},
		limiter:   rate.NewLimiter(rate.Limit(float64(constants.ITunesCallsPerMinute)/60.0), constants.ITunesCallsPerMinute),
		estimator: estimator,
		logger:    logger,
	}
}

// itunesResponse mirrors the wire format. Every price field is optional and
// frequently absent; never dereference without a nil check.
type itunesResponse struct {
	ResultCount int            `json:"resultCount"`
	Results     []itunesResult `json:"results"`
}

type itunesResult struct {
	TrackID           *int64   `json:"trackId"`
	TrackName         string   `json:"trackName"`
	ArtistName        string   `json:"artistName"`
	CollectionName    string   `json:"collectionName"`
	TrackViewURL      string   `json:"trackViewUrl"`
	CollectionViewURL string   `json:"collectionViewUrl"`
	ArtworkURL        string   `json:"artworkUrl100"`
	ReleaseDate       string   `json:"releaseDate"`
	LongDescription   string   `json:"longDescription"`
	ShortDescription  string   `json:"shortDescription"`
	TrackHDPrice      *float64 `json:"trackHdPrice"`
	TrackPrice        *float64 `json:"trackPrice"`
	CollectionPrice   *float64 `json:"collectionPrice"`
	TrackRentalPrice  *float64 `json:"trackRentalPrice"`
	Currency          string   `json:"currency"`
}

// QueryVariants builds the ordered fallback list for a raw title: the trimmed
// original, a plus-joined form, and the title cut at the first parenthesis to
// strip trailing year annotations. Duplicates are removed preserving order.
func QueryVariants(raw string) []string {
	trimmed := strings.TrimSpace(raw)

	candidates := []string{
		trimmed,
		strings.ReplaceAll(trimmed, " ", "+"),
		strings.TrimSpace(strings.SplitN(trimmed, "(", 2)[0]),
	}

	seen := make(map[string]struct{}, len(candidates))
	variants := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		if _, ok := seen[candidate]; ok {
			continue
		}
		seen[candidate] = struct{}{}
		variants = append(variants, candidate)
	}
	return variants
}

// Search runs the query variants against the store in order.
//
//  1. A variant that yields results ends the loop and its response is mapped.
//  2. HTTP 403 aborts the whole search with [ErrRateLimited]; the remaining
//     variants would only burn more quota.
//  3. Transport errors are logged and the next variant is attempted.
//  4. All variants empty means [ErrNoResults].
func (client *ITunesClient) Search(ctx context.Context, query string) ([]Candidate, error) {
	if !client.limiter.Allow() {
		client.logger.WarnContext(ctx, "itunes_local_rate_limit", slog.String("query", query))
		return nil, ErrRateLimited
	}

	var lastErr error
	for _, variant := range QueryVariants(query) {
		results, err := client.searchOnce(ctx, variant)
		if err != nil {
			if errors.Is(err, ErrRateLimited) {
				return nil, ErrRateLimited
			}
			client.logger.WarnContext(ctx, "itunes_variant_failed",
				slog.String("variant", variant),
				slog.String("error", err.Error()))
			lastErr = err
			continue
		}
		if len(results) > 0 {
			return results, nil
		}
	}

	if lastErr != nil {
		return nil, fmt.Errorf("movie search for %q failed: %w", query, lastErr)
	}
	return nil, fmt.Errorf("%w for movie query %q", ErrNoResults, query)
}

func (client *ITunesClient) searchOnce(ctx context.Context, variant string) ([]Candidate, error) {
	params := url.Values{}
	params.Set("term", variant)
	params.Set("media", itunesMedia)
	params.Set("entity", itunesEntity)
	params.Set("country", itunesCountry)
	params.Set("limit", fmt.Sprintf("%d", itunesPageSize))

	payload, err := client.get(ctx, itunesSearchPath, params)
	if err != nil {
		return nil, err
	}
	return client.mapResults(payload.Results), nil
}

// LookupByID fetches a single title by its store identifier. Used by the
// price-refresh path when an item carries an external id.
func (client *ITunesClient) LookupByID(ctx context.Context, externalID string) (*Candidate, error) {
	if !client.limiter.Allow() {
		return nil, ErrRateLimited
	}

	params := url.Values{}
	params.Set("id", externalID)
	params.Set("country", itunesCountry)

	payload, err := client.get(ctx, itunesLookupPath, params)
	if err != nil {
		return nil, err
	}

	candidates := client.mapResults(payload.Results)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w for store id %s", ErrNoResults, externalID)
	}
	return &candidates[0], nil
}

func (client *ITunesClient) get(ctx context.Context, path string, params url.Values) (*itunesResponse, error) {
	endpoint := client.baseURL + path + "?" + params.Encode()

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build itunes request: %w", err)
	}
	request.Header.Set("User-Agent", itunesUserAgent)

	response, err := client.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("itunes request: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode == http.StatusForbidden {
		return nil, ErrRateLimited
	}
	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("itunes returned status %d", response.StatusCode)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("read itunes response: %w", err)
	}

	var payload itunesResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode itunes response: %w", err)
	}
	return &payload, nil
}

// mapResults flattens raw store rows into candidates, capping the list so a
// broad term cannot flood downstream ranking.
func (client *ITunesClient) mapResults(results []itunesResult) []Candidate {
	if len(results) > itunesMaxResults {
		results = results[:itunesMaxResults]
	}

	candidates := make([]Candidate, 0, len(results))
	for _, result := range results {
		if result.TrackName == "" {
			continue
		}

		quote := client.estimator.MoviePrice(pricing.MovieTiers{
			HDPrice:         result.TrackHDPrice,
			PurchasePrice:   result.TrackPrice,
			CollectionPrice: result.CollectionPrice,
			RentalPrice:     result.TrackRentalPrice,
			Currency:        result.Currency,
			Year:            releaseYear(result.ReleaseDate),
		})

		description := result.LongDescription
		if description == "" {
			description = result.ShortDescription
		}

		viewURL := result.TrackViewURL
		if viewURL == "" {
			viewURL = result.CollectionViewURL
		}

		candidate := Candidate{
			Title:       result.TrackName,
			Creator:     creatorOrUnknown(result.ArtistName),
			Year:        releaseYear(result.ReleaseDate),
			URL:         viewURL,
			Price:       quote.Price,
			Source:      quote.Source,
			Currency:    quote.Currency,
			Artwork:     result.ArtworkURL,
			Description: description,
			DisplayName: result.CollectionName,
		}
		if result.TrackID != nil {
			candidate.ExternalID = fmt.Sprintf("%d", *result.TrackID)
		}
		candidates = append(candidates, candidate)
	}
	return candidates
}

func creatorOrUnknown(name string) string {
	if strings.TrimSpace(name) == "" {
		return "Unknown"
	}
	return name
}

// releaseYear extracts the year from an ISO 8601 release date. The store
// occasionally omits or truncates the field.
func releaseYear(releaseDate string) *int {
	if len(releaseDate) < 4 {
		return nil
	}
	parsed, err := time.Parse("2006", releaseDate[:4])
	if err != nil {
		return nil
	}
	year := parsed.Year()
	return &year
}
