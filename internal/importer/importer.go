package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/pricewatch/pricewatch/internal/catalog"
	"github.com/pricewatch/pricewatch/internal/inventory"
	"github.com/pricewatch/pricewatch/internal/platform/apperr"
	"github.com/pricewatch/pricewatch/internal/pricing"
	"github.com/pricewatch/pricewatch/pkg/convert"
	"github.com/pricewatch/pricewatch/pkg/pointer"
)

// # Batch Engine

// RowStatus classifies the disposition of one batch row.
type RowStatus string

const (
	RowFound     RowStatus = "found"
	RowNotFound  RowStatus = "not_found"
	RowDuplicate RowStatus = "duplicate"
	RowPending   RowStatus = "pending"
	RowError     RowStatus = "error"
)

// appleSearchURL is the constructed fallback link for items imported
// without a real storefront URL.
const appleSearchURL = "https://tv.apple.com/search?term="

// RowResult is the per-row outcome of a batch preview. The display fields
// echo the CSV input, overridden by the best match (or the existing item on
// a duplicate hit) when one is available.
type RowResult struct {
	RowIndex int       `json:"rowIndex"`
	Title    string    `json:"title"`
	Director string    `json:"director,omitempty"`
	Year     *int      `json:"year,omitempty"`
	Price    *float64  `json:"price,omitempty"`
	URL      string    `json:"url,omitempty"`
	Artwork  string    `json:"artwork,omitempty"`
	Currency string    `json:"currency,omitempty"`
	Status   RowStatus `json:"status"`
	Error    string    `json:"error,omitempty"`

	BestMatch     *catalog.Candidate  `json:"bestMatch,omitempty"`
	SearchResults []catalog.Candidate `json:"searchResults,omitempty"`

	ExistingItem    *inventory.Item `json:"existingItem,omitempty"`
	DuplicateReason string          `json:"duplicateReason,omitempty"`
}

// Summary aggregates row dispositions for the whole batch.
type Summary struct {
	Total      int `json:"total"`
	Found      int `json:"found"`
	NotFound   int `json:"not_found"`
	Pending    int `json:"pending"`
	Errors     int `json:"errors"`
	Duplicates int `json:"duplicates"`
}

// Preview is the full result of a classify-only batch run.
type Preview struct {
	CategoryID   int         `json:"categoryId"`
	CategoryName string      `json:"categoryName"`
	Results      []RowResult `json:"results"`
	Summary      Summary     `json:"summary"`
}

// Engine orchestrates CSV-driven batch reconciliation: classification
// against inventory and the external catalog, confirmed import, and manual
// additions. Batch import currently operates on movie categories only.
type Engine struct {
	items   inventory.Repository
	pending Repository
	movies  catalog.MovieSearcher
	logger  *slog.Logger
}

// NewEngine constructs a batch [Engine].
func NewEngine(items inventory.Repository, pending Repository, movies catalog.MovieSearcher, logger *slog.Logger) *Engine {
	return &Engine{
		items:   items,
		pending: pending,
		movies:  movies,
		logger:  logger,
	}
}

// movieCategory loads the category and rejects anything that is not a
// movie category.
func (engine *Engine) movieCategory(context context.Context, categoryID int) (*inventory.Category, error) {
	category, err := engine.items.GetCategoryByID(context, categoryID)
	if err != nil {
		return nil, err
	}
	if category.Type != inventory.TypeMovies {
		return nil, apperr.ValidationError(`Category must be of type "movies"`)
	}
	return category, nil
}

// PreviewBatch classifies every row without importing anything.
//
// Row order is preserved in the output. Rows are classified first; pending
// rows are persisted to the retry queue only after the whole batch has been
// walked, so a mid-batch failure cannot leave a half-queued preview.
func (engine *Engine) PreviewBatch(context context.Context, categoryID int, rows []Row) (*Preview, error) {
	category, err := engine.movieCategory(context, categoryID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperr.Unprocessable("CSV file is empty or has no valid rows")
	}

	existing, err := engine.items.ListItemsByCategory(context, categoryID)
	if err != nil {
		return nil, err
	}

	results := make([]RowResult, 0, len(rows))
	for index, row := range rows {
		results = append(results, engine.classifyRow(context, existing, index, row))
	}

	for _, result := range results {
		if result.Status != RowPending {
			continue
		}
		pending := &PendingSearch{
			CategoryID: categoryID,
			Title:      result.Title,
			Director:   optional(result.Director),
			Year:       result.Year,
			CSVRowData: EncodeRowPayload(result.Title, result.Director, result.Year),
		}
		if _, err := engine.pending.Insert(context, pending); err != nil {
			return nil, err
		}
	}

	preview := &Preview{
		CategoryID:   categoryID,
		CategoryName: category.Name,
		Results:      results,
		Summary:      summarize(results),
	}

	engine.logger.InfoContext(context, "batch_previewed",
		slog.Int("category_id", categoryID),
		slog.Int("total", preview.Summary.Total),
		slog.Int("found", preview.Summary.Found),
		slog.Int("pending", preview.Summary.Pending),
		slog.Int("duplicates", preview.Summary.Duplicates))
	return preview, nil
}

func (engine *Engine) classifyRow(context context.Context, existing []inventory.Item, index int, row Row) RowResult {
	result := RowResult{
		RowIndex: index,
		Title:    row.Title,
		Director: row.Director,
	}

	if row.Title == "" {
		result.Status = RowError
		result.Error = "Missing title"
		return result
	}

	// A malformed year is ignored, not fatal.
	if year := convert.ToInt(row.YearText); year != 0 {
		result.Year = &year
	}

	if match := inventory.FindDuplicate(existing, inventory.TypeMovies, row.Title, row.Director, result.Year, ""); match != nil {
		result.Status = RowDuplicate
		result.ExistingItem = &match.Item
		result.DuplicateReason = match.Reason
		result.Title = pointer.Fallback(match.Item.Title, row.Title)
		result.Director = pointer.Fallback(match.Item.Director, row.Director)
		result.Year = match.Item.Year
		result.Price = &match.Item.Price
		result.URL = match.Item.URL
		return result
	}

	candidates, err := engine.movies.Search(context, row.Title)
	switch {
	case err == nil && len(candidates) > 0:
		ranked := catalog.RankMovies(candidates)
		best := ranked[0]
		result.Status = RowFound
		result.BestMatch = &best
		result.SearchResults = ranked
		result.Title = best.Title
		if best.Creator != "" {
			result.Director = best.Creator
		}
		if best.Year != nil {
			result.Year = best.Year
		}
		result.Price = &best.Price
		result.URL = best.URL
		result.Artwork = best.Artwork
		result.Currency = best.Currency
	case errors.Is(err, catalog.ErrRateLimited):
		result.Status = RowPending
		result.Error = err.Error()
	default:
		result.Status = RowNotFound
		if err != nil {
			result.Error = err.Error()
		} else {
			result.Error = fmt.Sprintf("No results found for '%s'", row.Title)
		}
	}
	return result
}

func summarize(results []RowResult) Summary {
	summary := Summary{Total: len(results)}
	for _, result := range results {
		switch result.Status {
		case RowFound:
			summary.Found++
		case RowNotFound:
			summary.NotFound++
		case RowPending:
			summary.Pending++
		case RowError:
			summary.Errors++
		case RowDuplicate:
			summary.Duplicates++
		}
	}
	return summary
}

// # Confirmed Import

// ConfirmedRow is one user-approved preview row to import for real.
type ConfirmedRow struct {
	Name        string         `json:"name"`
	Title       string         `json:"title"`
	Director    string         `json:"director"`
	Year        *int           `json:"year"`
	URL         string         `json:"url"`
	Price       *float64       `json:"price"`
	PriceSource pricing.Source `json:"priceSource"`
}

// ImportedRow echoes what was actually written for one confirmed row.
type ImportedRow struct {
	Title       string         `json:"title"`
	Director    string         `json:"director"`
	Year        *int           `json:"year,omitempty"`
	Price       float64        `json:"price"`
	PriceSource pricing.Source `json:"priceSource"`
}

// ImportResult summarizes a confirmed import run.
type ImportResult struct {
	Total    int           `json:"total"`
	Imported int           `json:"imported"`
	Skipped  int           `json:"skipped"`
	Failed   int           `json:"failed"`
	Errors   []string      `json:"errors"`
	Rows     []ImportedRow `json:"importedMovies"`
}

// ImportConfirmed inserts each approved row as a real inventory item.
//
// Missing fields get defaults (director "Unknown Director", a constructed
// search URL, price 0.0) instead of failing the row. A fresh duplicate
// check guards every insert, which makes re-running the same confirmation
// idempotent: already-imported rows are skipped, not duplicated. Per-row
// failures are collected while the rest of the batch continues.
func (engine *Engine) ImportConfirmed(context context.Context, categoryID int, confirmed []ConfirmedRow) (*ImportResult, error) {
	if _, err := engine.movieCategory(context, categoryID); err != nil {
		return nil, err
	}
	if len(confirmed) == 0 {
		return nil, apperr.ValidationError("No rows to import")
	}

	existing, err := engine.items.ListItemsByCategory(context, categoryID)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Total: len(confirmed), Errors: make([]string, 0), Rows: make([]ImportedRow, 0)}
	for i, row := range confirmed {
		title := row.Title
		if title == "" {
			title = "Unknown Title"
		}
		director := row.Director
		if director == "" {
			director = "Unknown Director"
		}
		itemURL := row.URL
		if itemURL == "" {
			itemURL = appleSearchURL + url.QueryEscape(title)
		}
		price := pointer.Val(row.Price)

		if match := inventory.FindDuplicate(existing, inventory.TypeMovies, title, director, row.Year, ""); match != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Movie %d: already imported (%s)", i+1, match.Reason))
			continue
		}

		item := &inventory.Item{
			CategoryID: categoryID,
			Name:       displayName(row.Name, title, row.Year),
			Title:      &title,
			Director:   &director,
			Year:       row.Year,
			URL:        itemURL,
			Price:      price,
		}

		created, err := engine.items.CreateItem(context, item)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("Movie %d: %s", i+1, err.Error()))
			continue
		}

		existing = append(existing, *created)
		result.Imported++
		result.Rows = append(result.Rows, ImportedRow{
			Title:       title,
			Director:    director,
			Year:        row.Year,
			Price:       price,
			PriceSource: sourceOrDefault(row.PriceSource),
		})
	}

	engine.logger.InfoContext(context, "batch_imported",
		slog.Int("category_id", categoryID),
		slog.Int("imported", result.Imported),
		slog.Int("skipped", result.Skipped),
		slog.Int("failed", result.Failed))
	return result, nil
}

// # Manual Additions

// ManualMovie is a hand-entered item bypassing the catalog entirely.
type ManualMovie struct {
	Title    string   `json:"title"`
	Director string   `json:"director"`
	Year     *int     `json:"year"`
	URL      string   `json:"url"`
	Price    *float64 `json:"price"`
}

// AddManualMovie inserts a manually entered movie with the same field
// defaults as a confirmed import. Its price is tagged manual_entry.
func (engine *Engine) AddManualMovie(context context.Context, categoryID int, input ManualMovie) (*inventory.Item, error) {
	if _, err := engine.movieCategory(context, categoryID); err != nil {
		return nil, err
	}
	if input.Title == "" {
		return nil, apperr.ValidationError("Title is required")
	}

	director := input.Director
	if director == "" {
		director = "Unknown Director"
	}
	itemURL := input.URL
	if itemURL == "" {
		itemURL = appleSearchURL + url.QueryEscape(input.Title)
	}

	item := &inventory.Item{
		CategoryID: categoryID,
		Name:       displayName("", input.Title, input.Year),
		Title:      &input.Title,
		Director:   &director,
		Year:       input.Year,
		URL:        itemURL,
		Price:      pointer.Val(input.Price),
	}

	created, err := engine.items.CreateItem(context, item)
	if err != nil {
		return nil, err
	}

	engine.logger.InfoContext(context, "manual_movie_added",
		slog.Int("category_id", categoryID),
		slog.Int("item_id", created.ID))
	return created, nil
}

func displayName(name, title string, year *int) string {
	if name != "" {
		return name
	}
	if year != nil {
		return fmt.Sprintf("%s (%d)", title, *year)
	}
	return title
}

func sourceOrDefault(source pricing.Source) pricing.Source {
	if source == "" {
		return pricing.SourcePurchase
	}
	return source
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
