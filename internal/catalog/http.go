package catalog

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pricewatch/pricewatch/internal/platform/apperr"
	"github.com/pricewatch/pricewatch/internal/platform/respond"
	"github.com/pricewatch/pricewatch/internal/platform/validate"
)

// # Handler Implementation

// Handler exposes book catalog search over HTTP. Movie search is served by
// the importer handler, which owns the whole movie import surface.
type Handler struct {
	books BookSearcher
}

// NewHandler constructs a catalog [Handler].
func NewHandler(books BookSearcher) *Handler {
	return &Handler{books: books}
}

// Routes returns a [chi.Router] with the book search endpoint. Mounted
// under /books.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/search", handler.searchBooks)

	return router
}

// SearchResponse is the wire shape shared by the book and movie search
// endpoints.
type SearchResponse struct {
	Results []Candidate `json:"results"`
	Total   int         `json:"total"`
}

/*
GET /api/v1/books/search.

Description: Searches the book catalog and returns the ranked candidate
list, best match first. Always returns results; when the upstream is
unavailable the rows are placeholder samples.

Request:
  - query: string (required, "q" accepted as an alias)

Response:
  - 200: []Candidate ranked best-first
*/
func (handler *Handler) searchBooks(writer http.ResponseWriter, request *http.Request) {
	query := request.URL.Query().Get("query")
	if query == "" {
		query = request.URL.Query().Get("q")
	}

	validator := &validate.Validator{}
	if err := validator.Required("query", query).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	candidates, err := handler.books.SearchBooks(request.Context(), query)
	if err != nil {
		respond.Error(writer, request, SearchError(err))
		return
	}

	ranked := RankBooks(candidates)
	respond.OK(writer, SearchResponse{Results: ranked, Total: len(ranked)})
}

// SearchError translates catalog sentinels into the API error envelope.
func SearchError(err error) error {
	switch {
	case errors.Is(err, ErrRateLimited):
		return apperr.RateLimited("Catalog is rate limited, try again shortly")
	case errors.Is(err, ErrNoResults):
		return apperr.NotFound("No catalog results found")
	default:
		return apperr.Upstream("Catalog search failed", err)
	}
}
