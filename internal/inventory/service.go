package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pricewatch/pricewatch/internal/catalog"
	"github.com/pricewatch/pricewatch/internal/platform/validate"
	"github.com/pricewatch/pricewatch/internal/pricing"
	"github.com/pricewatch/pricewatch/pkg/pointer"
)

// Service implements the inventory domain logic: category and item
// management plus single-item price refresh against the external catalogs.
type Service struct {
	repo   Repository
	movies catalog.MovieSearcher
	books  catalog.BookSearcher
	logger *slog.Logger
}

// NewService constructs an inventory [Service].
func NewService(repo Repository, movies catalog.MovieSearcher, books catalog.BookSearcher, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		movies: movies,
		books:  books,
		logger: logger,
	}
}

// # Categories

func (service *Service) ListCategories(context context.Context) ([]*Category, error) {
	return service.repo.ListCategories(context)
}

func (service *Service) GetCategory(context context.Context, id int) (*Category, error) {
	return service.repo.GetCategoryByID(context, id)
}

// CreateCategory validates and persists a new category. An empty type
// defaults to general.
func (service *Service) CreateCategory(context context.Context, category *Category) (*Category, error) {
	if category.Type == "" {
		category.Type = TypeGeneral
	}

	validator := &validate.Validator{}
	validator.Required("name", category.Name).
		MaxLen("name", category.Name, 120).
		Custom("type", !category.Type.Valid(), "Must be one of: books, movies, general")
	if err := validator.Err(); err != nil {
		return nil, err
	}

	created, err := service.repo.CreateCategory(context, category)
	if err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "category_created",
		slog.Int("category_id", created.ID),
		slog.String("type", string(created.Type)))
	return created, nil
}

func (service *Service) UpdateCategory(context context.Context, category *Category) (*Category, error) {
	if category.Type == "" {
		category.Type = TypeGeneral
	}

	validator := &validate.Validator{}
	validator.Required("name", category.Name).
		MaxLen("name", category.Name, 120).
		Custom("type", !category.Type.Valid(), "Must be one of: books, movies, general")
	if err := validator.Err(); err != nil {
		return nil, err
	}

	return service.repo.UpdateCategory(context, category)
}

func (service *Service) DeleteCategory(context context.Context, id int) error {
	return service.repo.DeleteCategory(context, id)
}

// # Items

func (service *Service) ListItems(context context.Context, categoryID int) ([]Item, error) {
	if _, err := service.repo.GetCategoryByID(context, categoryID); err != nil {
		return nil, err
	}
	return service.repo.ListItemsByCategory(context, categoryID)
}

func (service *Service) GetItem(context context.Context, id int) (*Item, error) {
	return service.repo.GetItemByID(context, id)
}

// CreateItem validates and persists a new item in the given category.
func (service *Service) CreateItem(context context.Context, item *Item) (*Item, error) {
	category, err := service.repo.GetCategoryByID(context, item.CategoryID)
	if err != nil {
		return nil, err
	}

	// Book names of the form "Title by Author" are split when neither part
	// was supplied explicitly.
	if category.Type == TypeBooks && item.Title == nil && item.Author == nil {
		if at := strings.LastIndex(item.Name, " by "); at > 0 {
			item.Title = pointer.To(item.Name[:at])
			item.Author = pointer.To(item.Name[at+len(" by "):])
		}
	}

	validator := &validate.Validator{}
	validator.Required("name", item.Name).
		NonNegative("price", item.Price)
	if item.URL != "" {
		validator.URL("url", item.URL)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	created, err := service.repo.CreateItem(context, item)
	if err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "item_created",
		slog.Int("item_id", created.ID),
		slog.Int("category_id", created.CategoryID))
	return created, nil
}

func (service *Service) UpdateItem(context context.Context, item *Item) (*Item, error) {
	validator := &validate.Validator{}
	validator.Required("name", item.Name).
		NonNegative("price", item.Price)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	return service.repo.UpdateItem(context, item)
}

func (service *Service) DeleteItem(context context.Context, id int) error {
	return service.repo.DeleteItem(context, id)
}

// ToggleBought flips the bought flag and returns the updated item.
func (service *Service) ToggleBought(context context.Context, id int) (*Item, error) {
	item, err := service.repo.GetItemByID(context, id)
	if err != nil {
		return nil, err
	}

	item.Bought = !item.Bought
	return service.repo.UpdateItem(context, item)
}

func (service *Service) PriceHistory(context context.Context, itemID int) ([]PriceHistoryEntry, error) {
	if _, err := service.repo.GetItemByID(context, itemID); err != nil {
		return nil, err
	}
	return service.repo.ListPriceHistory(context, itemID)
}

// # Price Refresh

// RefreshPrice re-queries the relevant catalog for a single item.
//
// For movies a stored external id takes an exact lookup first; on failure or
// absence the title is searched and the top-ranked candidate wins. Books
// always search by "title author" (falling back to the display name). When
// no catalog result is available the old price is kept and the summary is
// tagged no_update.
//
// A history row is written only when the price actually changed.
func (service *Service) RefreshPrice(context context.Context, itemID int) (*Item, *PriceRefresh, error) {
	item, err := service.repo.GetItemByID(context, itemID)
	if err != nil {
		return nil, nil, err
	}
	category, err := service.repo.GetCategoryByID(context, item.CategoryID)
	if err != nil {
		return nil, nil, err
	}

	oldPrice := item.Price
	var (
		newPrice    *float64
		source      pricing.Source
		searchQuery string
	)

	switch category.Type {
	case TypeMovies:
		newPrice, source, searchQuery = service.refreshMoviePrice(context, item)
	case TypeBooks:
		newPrice, source, searchQuery = service.refreshBookPrice(context, item)
	default:
		// General items have no catalog to ask.
	}

	if newPrice == nil {
		newPrice = &oldPrice
		source = pricing.SourceNoUpdate
	}

	updated := *newPrice != oldPrice
	if updated {
		entry := &PriceHistoryEntry{
			ItemID:      item.ID,
			OldPrice:    oldPrice,
			NewPrice:    *newPrice,
			PriceSource: source,
		}
		if searchQuery != "" {
			entry.SearchQuery = &searchQuery
		}
		if err := service.repo.InsertPriceHistory(context, entry); err != nil {
			return nil, nil, err
		}
	}

	item.Price = *newPrice
	item.LastUpdated = time.Now().UTC()
	item, err = service.repo.UpdateItem(context, item)
	if err != nil {
		return nil, nil, err
	}

	service.logger.InfoContext(context, "price_refreshed",
		slog.Int("item_id", item.ID),
		slog.Float64("old_price", oldPrice),
		slog.Float64("new_price", *newPrice),
		slog.Bool("updated", updated))

	refresh := &PriceRefresh{
		OldPrice:    oldPrice,
		NewPrice:    *newPrice,
		Source:      source,
		SearchQuery: searchQuery,
		Updated:     updated,
	}
	return item, refresh, nil
}

func (service *Service) refreshMoviePrice(context context.Context, item *Item) (*float64, pricing.Source, string) {
	if item.ExternalID != nil && *item.ExternalID != "" {
		candidate, err := service.movies.LookupByID(context, *item.ExternalID)
		if err == nil {
			return &candidate.Price, candidate.Source, fmt.Sprintf("Track ID: %s", *item.ExternalID)
		}
		service.logger.WarnContext(context, "external_id_lookup_failed",
			slog.Int("item_id", item.ID),
			slog.String("external_id", *item.ExternalID),
			slog.String("error", err.Error()))
		if errors.Is(err, catalog.ErrRateLimited) {
			return nil, "", ""
		}
	}

	query := pointer.Val(item.Title)
	if query == "" {
		query = item.Name
	}
	if query == "" {
		return nil, "", ""
	}

	candidates, err := service.movies.Search(context, query)
	if err != nil || len(candidates) == 0 {
		return nil, "", query
	}

	best := catalog.RankMovies(candidates)[0]
	return &best.Price, best.Source, query
}

func (service *Service) refreshBookPrice(context context.Context, item *Item) (*float64, pricing.Source, string) {
	var query string
	if item.Title != nil && item.Author != nil && *item.Title != "" && *item.Author != "" {
		query = fmt.Sprintf("%s %s", *item.Title, *item.Author)
	} else {
		query = item.Name
	}
	if query == "" {
		return nil, "", ""
	}

	candidates, err := service.books.SearchBooks(context, query)
	if err != nil || len(candidates) == 0 {
		return nil, "", query
	}

	best := catalog.RankBooks(candidates)[0]
	return &best.Price, best.Source, query
}
