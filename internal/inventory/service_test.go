package inventory_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricewatch/pricewatch/internal/catalog"
	"github.com/pricewatch/pricewatch/internal/inventory"
	"github.com/pricewatch/pricewatch/internal/platform/apperr"
	"github.com/pricewatch/pricewatch/internal/platform/dberr"
	"github.com/pricewatch/pricewatch/internal/pricing"
	"github.com/pricewatch/pricewatch/pkg/pointer"
)

// # Test Doubles

type fakeRepository struct {
	categories map[int]*inventory.Category
	items      map[int]*inventory.Item
	history    []inventory.PriceHistoryEntry
	nextID     int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		categories: make(map[int]*inventory.Category),
		items:      make(map[int]*inventory.Item),
		nextID:     1,
	}
}

func (repo *fakeRepository) addCategory(categoryType inventory.CategoryType) *inventory.Category {
	category := &inventory.Category{ID: repo.nextID, Name: string(categoryType), Type: categoryType, CreatedAt: time.Now()}
	repo.categories[category.ID] = category
	repo.nextID++
	return category
}

func (repo *fakeRepository) addItem(categoryID int, name string, price float64, externalID *string) *inventory.Item {
	item := &inventory.Item{
		ID:         repo.nextID,
		CategoryID: categoryID,
		Name:       name,
		Title:      pointer.To(name),
		Price:      price,
		ExternalID: externalID,
	}
	repo.items[item.ID] = item
	repo.nextID++
	return item
}

func (repo *fakeRepository) ListCategories(context.Context) ([]*inventory.Category, error) {
	out := make([]*inventory.Category, 0, len(repo.categories))
	for _, category := range repo.categories {
		out = append(out, category)
	}
	return out, nil
}

func (repo *fakeRepository) GetCategoryByID(_ context.Context, id int) (*inventory.Category, error) {
	category, ok := repo.categories[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	return category, nil
}

func (repo *fakeRepository) CreateCategory(_ context.Context, category *inventory.Category) (*inventory.Category, error) {
	category.ID = repo.nextID
	repo.nextID++
	category.CreatedAt = time.Now()
	repo.categories[category.ID] = category
	return category, nil
}

func (repo *fakeRepository) UpdateCategory(_ context.Context, category *inventory.Category) (*inventory.Category, error) {
	if _, ok := repo.categories[category.ID]; !ok {
		return nil, dberr.ErrNotFound
	}
	repo.categories[category.ID] = category
	return category, nil
}

func (repo *fakeRepository) DeleteCategory(_ context.Context, id int) error {
	if _, ok := repo.categories[id]; !ok {
		return dberr.ErrNotFound
	}
	delete(repo.categories, id)
	return nil
}

func (repo *fakeRepository) ListItemsByCategory(_ context.Context, categoryID int) ([]inventory.Item, error) {
	out := make([]inventory.Item, 0)
	for _, item := range repo.items {
		if item.CategoryID == categoryID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (repo *fakeRepository) GetItemByID(_ context.Context, id int) (*inventory.Item, error) {
	item, ok := repo.items[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	copied := *item
	return &copied, nil
}

func (repo *fakeRepository) CreateItem(_ context.Context, item *inventory.Item) (*inventory.Item, error) {
	item.ID = repo.nextID
	repo.nextID++
	item.CreatedAt = time.Now()
	item.LastUpdated = item.CreatedAt
	repo.items[item.ID] = item
	return item, nil
}

func (repo *fakeRepository) UpdateItem(_ context.Context, item *inventory.Item) (*inventory.Item, error) {
	if _, ok := repo.items[item.ID]; !ok {
		return nil, dberr.ErrNotFound
	}
	copied := *item
	repo.items[item.ID] = &copied
	return item, nil
}

func (repo *fakeRepository) DeleteItem(_ context.Context, id int) error {
	if _, ok := repo.items[id]; !ok {
		return dberr.ErrNotFound
	}
	delete(repo.items, id)
	return nil
}

func (repo *fakeRepository) InsertPriceHistory(_ context.Context, entry *inventory.PriceHistoryEntry) error {
	entry.ID = repo.nextID
	repo.nextID++
	entry.CreatedAt = time.Now()
	repo.history = append(repo.history, *entry)
	return nil
}

func (repo *fakeRepository) ListPriceHistory(_ context.Context, itemID int) ([]inventory.PriceHistoryEntry, error) {
	out := make([]inventory.PriceHistoryEntry, 0)
	for _, entry := range repo.history {
		if entry.ItemID == itemID {
			out = append(out, entry)
		}
	}
	return out, nil
}

type fakeMovieSearcher struct {
	searchResults []catalog.Candidate
	searchErr     error
	lookupResult  *catalog.Candidate
	lookupErr     error
	searchCalls   int
	lookupCalls   int
}

func (searcher *fakeMovieSearcher) Search(context.Context, string) ([]catalog.Candidate, error) {
	searcher.searchCalls++
	return searcher.searchResults, searcher.searchErr
}

func (searcher *fakeMovieSearcher) LookupByID(context.Context, string) (*catalog.Candidate, error) {
	searcher.lookupCalls++
	return searcher.lookupResult, searcher.lookupErr
}

type fakeBookSearcher struct {
	results []catalog.Candidate
	err     error
}

func (searcher *fakeBookSearcher) SearchBooks(context.Context, string) ([]catalog.Candidate, error) {
	return searcher.results, searcher.err
}

func newService(repo *fakeRepository, movies catalog.MovieSearcher, books catalog.BookSearcher) *inventory.Service {
	if movies == nil {
		movies = &fakeMovieSearcher{}
	}
	if books == nil {
		books = &fakeBookSearcher{}
	}
	return inventory.NewService(repo, movies, books, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// # Category Tests

func TestCreateCategory_DefaultsToGeneral(t *testing.T) {
	repo := newFakeRepository()
	service := newService(repo, nil, nil)

	category, err := service.CreateCategory(context.Background(), &inventory.Category{Name: "Stuff"})
	require.NoError(t, err)
	assert.Equal(t, inventory.TypeGeneral, category.Type)
}

func TestCreateCategory_RejectsUnknownType(t *testing.T) {
	repo := newFakeRepository()
	service := newService(repo, nil, nil)

	_, err := service.CreateCategory(context.Background(), &inventory.Category{Name: "Stuff", Type: "gadgets"})
	require.Error(t, err)
	assert.True(t, apperr.IsAppError(err))
}

func TestCreateCategory_RequiresName(t *testing.T) {
	repo := newFakeRepository()
	service := newService(repo, nil, nil)

	_, err := service.CreateCategory(context.Background(), &inventory.Category{Type: inventory.TypeMovies})
	require.Error(t, err)
}

// # Item Tests

func TestCreateItem_UnknownCategory(t *testing.T) {
	repo := newFakeRepository()
	service := newService(repo, nil, nil)

	_, err := service.CreateItem(context.Background(), &inventory.Item{CategoryID: 99, Name: "Heat"})
	require.Error(t, err)
}

func TestCreateItem_NegativePriceRejected(t *testing.T) {
	repo := newFakeRepository()
	category := repo.addCategory(inventory.TypeMovies)
	service := newService(repo, nil, nil)

	_, err := service.CreateItem(context.Background(), &inventory.Item{
		CategoryID: category.ID, Name: "Heat", Price: -1,
	})
	require.Error(t, err)
}

func TestCreateItem_ParsesBookNameIntoTitleAndAuthor(t *testing.T) {
	repo := newFakeRepository()
	category := repo.addCategory(inventory.TypeBooks)
	service := newService(repo, nil, nil)

	item, err := service.CreateItem(context.Background(), &inventory.Item{
		CategoryID: category.ID, Name: "Dune by Frank Herbert", Price: 9.99,
	})
	require.NoError(t, err)
	require.NotNil(t, item.Title)
	require.NotNil(t, item.Author)
	assert.Equal(t, "Dune", *item.Title)
	assert.Equal(t, "Frank Herbert", *item.Author)
}

func TestCreateItem_KeepsExplicitTitleAndAuthor(t *testing.T) {
	repo := newFakeRepository()
	category := repo.addCategory(inventory.TypeBooks)
	service := newService(repo, nil, nil)

	item, err := service.CreateItem(context.Background(), &inventory.Item{
		CategoryID: category.ID,
		Name:       "Stories of Your Life by Ted Chiang",
		Title:      pointer.To("Stories of Your Life and Others"),
		Author:     pointer.To("Ted Chiang"),
		Price:      7.99,
	})
	require.NoError(t, err)
	assert.Equal(t, "Stories of Your Life and Others", *item.Title)
}

func TestToggleBought(t *testing.T) {
	repo := newFakeRepository()
	category := repo.addCategory(inventory.TypeMovies)
	item := repo.addItem(category.ID, "Heat", 9.99, nil)
	service := newService(repo, nil, nil)

	toggled, err := service.ToggleBought(context.Background(), item.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Bought)

	toggled, err = service.ToggleBought(context.Background(), item.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Bought)
}

// # Price Refresh Tests

func TestRefreshPrice_ExternalIDLookupWins(t *testing.T) {
	repo := newFakeRepository()
	category := repo.addCategory(inventory.TypeMovies)
	item := repo.addItem(category.ID, "Heat", 9.99, pointer.To("12345"))

	movies := &fakeMovieSearcher{
		lookupResult: &catalog.Candidate{Title: "Heat", Price: 7.99, Source: pricing.SourcePurchaseHD},
	}
	service := newService(repo, movies, nil)

	updated, refresh, err := service.RefreshPrice(context.Background(), item.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, movies.lookupCalls)
	assert.Equal(t, 0, movies.searchCalls)
	assert.Equal(t, 7.99, updated.Price)
	assert.True(t, refresh.Updated)
	assert.Equal(t, 9.99, refresh.OldPrice)
	assert.Equal(t, 7.99, refresh.NewPrice)
	assert.Equal(t, pricing.SourcePurchaseHD, refresh.Source)
	assert.Equal(t, "Track ID: 12345", refresh.SearchQuery)

	require.Len(t, repo.history, 1)
	assert.Equal(t, 9.99, repo.history[0].OldPrice)
	assert.Equal(t, 7.99, repo.history[0].NewPrice)
}

func TestRefreshPrice_LookupFailureFallsBackToSearch(t *testing.T) {
	repo := newFakeRepository()
	category := repo.addCategory(inventory.TypeMovies)
	item := repo.addItem(category.ID, "Heat", 9.99, pointer.To("12345"))

	movies := &fakeMovieSearcher{
		lookupErr: catalog.ErrNoResults,
		searchResults: []catalog.Candidate{
			{Title: "Heat", Price: 6.99, Source: pricing.SourceRental},
		},
	}
	service := newService(repo, movies, nil)

	updated, refresh, err := service.RefreshPrice(context.Background(), item.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, movies.lookupCalls)
	assert.Equal(t, 1, movies.searchCalls)
	assert.Equal(t, 6.99, updated.Price)
	assert.Equal(t, "Heat", refresh.SearchQuery)
}

func TestRefreshPrice_TopRankedCandidateWins(t *testing.T) {
	repo := newFakeRepository()
	category := repo.addCategory(inventory.TypeMovies)
	item := repo.addItem(category.ID, "Heat", 9.99, nil)

	// The service must rank before picking, so the HD purchase beats the
	// cheaper rental listed first.
	movies := &fakeMovieSearcher{
		searchResults: []catalog.Candidate{
			{Title: "Heat", Price: 3.49, Source: pricing.SourceRental},
			{Title: "Heat", Price: 13.99, Source: pricing.SourcePurchaseHD},
		},
	}
	service := newService(repo, movies, nil)

	updated, refresh, err := service.RefreshPrice(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, 13.99, updated.Price)
	assert.Equal(t, pricing.SourcePurchaseHD, refresh.Source)
}

func TestRefreshPrice_NoResultsKeepsOldPrice(t *testing.T) {
	repo := newFakeRepository()
	category := repo.addCategory(inventory.TypeMovies)
	item := repo.addItem(category.ID, "Heat", 9.99, nil)

	movies := &fakeMovieSearcher{searchErr: catalog.ErrNoResults}
	service := newService(repo, movies, nil)

	updated, refresh, err := service.RefreshPrice(context.Background(), item.ID)
	require.NoError(t, err)

	assert.Equal(t, 9.99, updated.Price)
	assert.False(t, refresh.Updated)
	assert.Equal(t, pricing.SourceNoUpdate, refresh.Source)
	assert.Empty(t, repo.history, "unchanged price writes no history")
}

func TestRefreshPrice_UnchangedPriceWritesNoHistory(t *testing.T) {
	repo := newFakeRepository()
	category := repo.addCategory(inventory.TypeMovies)
	item := repo.addItem(category.ID, "Heat", 9.99, nil)

	movies := &fakeMovieSearcher{
		searchResults: []catalog.Candidate{
			{Title: "Heat", Price: 9.99, Source: pricing.SourcePurchase},
		},
	}
	service := newService(repo, movies, nil)

	_, refresh, err := service.RefreshPrice(context.Background(), item.ID)
	require.NoError(t, err)
	assert.False(t, refresh.Updated)
	assert.Empty(t, repo.history)
}

func TestRefreshPrice_BookSearchesTitleAndAuthor(t *testing.T) {
	repo := newFakeRepository()
	category := repo.addCategory(inventory.TypeBooks)
	item := repo.addItem(category.ID, "Dune", 10.00, nil)
	repo.items[item.ID].Author = pointer.To("Frank Herbert")

	books := &fakeBookSearcher{
		results: []catalog.Candidate{
			{Title: "Dune", Price: 8.49, Source: pricing.SourcePurchase},
		},
	}
	service := newService(repo, nil, books)

	updated, refresh, err := service.RefreshPrice(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, 8.49, updated.Price)
	assert.Equal(t, "Dune Frank Herbert", refresh.SearchQuery)
}

func TestRefreshPrice_GeneralCategoryNeverSearches(t *testing.T) {
	repo := newFakeRepository()
	category := repo.addCategory(inventory.TypeGeneral)
	item := repo.addItem(category.ID, "Standing Desk", 199.00, nil)

	movies := &fakeMovieSearcher{}
	service := newService(repo, movies, nil)

	updated, refresh, err := service.RefreshPrice(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, movies.searchCalls)
	assert.Equal(t, 199.00, updated.Price)
	assert.Equal(t, pricing.SourceNoUpdate, refresh.Source)
}
