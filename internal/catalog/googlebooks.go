package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pricewatch/pricewatch/internal/platform/constants"
	"github.com/pricewatch/pricewatch/internal/pricing"
)

// # Google Books Client

const (
	googleBooksVolumesPath = "/books/v1/volumes"
	googleBooksMaxResults  = 10
	googleBooksCountry     = "GB"

	// Storefront link template; the volumes API has no per-country buy URL.
	koboSearchURL = "https://www.kobo.com/gb/en/search?query="
)

// BookSearcher is the read surface for book catalog lookups.
type BookSearcher interface {
	SearchBooks(ctx context.Context, query string) ([]Candidate, error)
}

// GoogleBooksClient searches the Google Books volumes API.
//
// The client never returns an empty result to its caller: any upstream
// failure or empty response degrades to a small set of sample candidates
// tagged [pricing.SourceSample], so the browsing UI always has rows to show.
type GoogleBooksClient struct {
	baseURL   string
	client    *http.Client
	estimator *pricing.Estimator
	logger    *slog.Logger
}

// NewGoogleBooksClient constructs a book catalog client.
func NewGoogleBooksClient(baseURL string, timeout time.Duration, estimator *pricing.Estimator, logger *slog.Logger) *GoogleBooksClient {
	if timeout <= 0 {
		timeout = constants.CatalogRequestTimeout
	}
	return &GoogleBooksClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    &http.Client{Timeout: timeout},
		estimator: estimator,
		logger:    logger,
	}
}

type googleBooksResponse struct {
	Items []googleBooksItem `json:"items"`
}

type googleBooksItem struct {
	ID         string `json:"id"`
	VolumeInfo struct {
		Title         string   `json:"title"`
		Authors       []string `json:"authors"`
		PublishedDate string   `json:"publishedDate"`
		PageCount     *int     `json:"pageCount"`
		Description   string   `json:"description"`
		ImageLinks    struct {
			Thumbnail string `json:"thumbnail"`
		} `json:"imageLinks"`
	} `json:"volumeInfo"`
	SaleInfo struct {
		ListPrice *struct {
			Amount       float64 `json:"amount"`
			CurrencyCode string  `json:"currencyCode"`
		} `json:"listPrice"`
	} `json:"saleInfo"`
}

// SearchBooks queries the volumes API and maps each item into a [Candidate].
// Upstream failure, a non-2xx status or an empty item list all fall back to
// sample results rather than an error.
func (client *GoogleBooksClient) SearchBooks(ctx context.Context, query string) ([]Candidate, error) {
	params := url.Values{}
	params.Set("q", strings.TrimSpace(query))
	params.Set("maxResults", fmt.Sprintf("%d", googleBooksMaxResults))
	params.Set("printType", "books")
	params.Set("country", googleBooksCountry)

	endpoint := client.baseURL + googleBooksVolumesPath + "?" + params.Encode()

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build google books request: %w", err)
	}

	response, err := client.client.Do(request)
	if err != nil {
		client.logger.WarnContext(ctx, "google_books_request_failed",
			slog.String("query", query),
			slog.String("error", err.Error()))
		return client.sampleResults(query), nil
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		client.logger.WarnContext(ctx, "google_books_bad_status",
			slog.String("query", query),
			slog.Int("status", response.StatusCode))
		return client.sampleResults(query), nil
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return client.sampleResults(query), nil
	}

	var payload googleBooksResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		client.logger.WarnContext(ctx, "google_books_decode_failed",
			slog.String("error", err.Error()))
		return client.sampleResults(query), nil
	}

	if len(payload.Items) == 0 {
		return client.sampleResults(query), nil
	}

	candidates := client.mapItems(payload.Items)
	if len(candidates) == 0 {
		return client.sampleResults(query), nil
	}
	return candidates, nil
}

func (client *GoogleBooksClient) mapItems(items []googleBooksItem) []Candidate {
	if len(items) > googleBooksMaxResults {
		items = items[:googleBooksMaxResults]
	}

	candidates := make([]Candidate, 0, len(items))
	for _, item := range items {
		info := item.VolumeInfo
		if info.Title == "" {
			continue
		}

		var list *pricing.BookListPrice
		if item.SaleInfo.ListPrice != nil && item.SaleInfo.ListPrice.Amount > 0 {
			list = &pricing.BookListPrice{
				Amount:   item.SaleInfo.ListPrice.Amount,
				Currency: item.SaleInfo.ListPrice.CurrencyCode,
			}
		}
		quote := client.estimator.BookPrice(list, info.PageCount)

		author := strings.Join(info.Authors, ", ")
		if author == "" {
			author = "Unknown Author"
		}

		candidates = append(candidates, Candidate{
			Title:       info.Title,
			Creator:     author,
			Year:        releaseYear(info.PublishedDate),
			URL:         koboSearchURL + url.QueryEscape(info.Title),
			Price:       quote.Price,
			Source:      quote.Source,
			Currency:    quote.Currency,
			ExternalID:  item.ID,
			Artwork:     info.ImageLinks.Thumbnail,
			Description: info.Description,
			DisplayName: fmt.Sprintf("%s by %s", info.Title, author),
		})
	}
	return candidates
}

// sampleResults fabricates placeholder rows for a query the upstream could
// not serve. Prices are fixed and the source tag keeps them out of the
// real-price tier during ranking.
func (client *GoogleBooksClient) sampleResults(query string) []Candidate {
	searchURL := koboSearchURL + url.QueryEscape(query)

	samples := []struct {
		suffix string
		author string
		price  float64
	}{
		{"Sample Book 1", "Sample Author", 9.99},
		{"Sample Book 2", "Another Author", 12.99},
	}

	candidates := make([]Candidate, 0, len(samples))
	for _, sample := range samples {
		title := fmt.Sprintf("%s - %s", query, sample.suffix)
		candidates = append(candidates, Candidate{
			Title:       title,
			Creator:     sample.author,
			URL:         searchURL,
			Price:       sample.price,
			Source:      pricing.SourceSample,
			Currency:    "GBP",
			DisplayName: fmt.Sprintf("%s by %s", title, sample.author),
		})
	}
	return candidates
}
