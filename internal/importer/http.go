/*
Package importer implements the CSV-driven batch import pipeline for movie
categories: two-phase preview/confirm reconciliation against the external
catalog, a persistent pending-retry queue for rate-limited lookups, and
manual additions.

# Routing Strategy

All routes mount under /movies because the batch pipeline currently
operates on movie categories only. The direct search endpoint lives here
too, matching the import surface it supports.

  - POST /search: direct catalog search with ranked results.
  - POST /preview-csv: classify a CSV without importing (multipart).
  - POST /import-confirmed: import a user-approved preview subset.
  - POST /process-pending: drain one batch of the retry queue.
  - POST /manual: add a hand-entered movie.
  - GET /pending: inspect the retry queue.
*/
package importer

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pricewatch/pricewatch/internal/catalog"
	"github.com/pricewatch/pricewatch/internal/platform/apperr"
	requestutil "github.com/pricewatch/pricewatch/internal/platform/request"
	"github.com/pricewatch/pricewatch/internal/platform/respond"
	"github.com/pricewatch/pricewatch/internal/platform/validate"
	"github.com/pricewatch/pricewatch/pkg/pagination"
)

// maxCSVUploadBytes bounds the multipart form held in memory per request.
const maxCSVUploadBytes = 5 << 20

// # Handler Implementation

// Handler implements the HTTP layer for the movie import pipeline.
type Handler struct {
	engine    *Engine
	processor *Processor
	movies    catalog.MovieSearcher
	pending   Repository
}

// NewHandler constructs an importer [Handler].
func NewHandler(engine *Engine, processor *Processor, movies catalog.MovieSearcher, pending Repository) *Handler {
	return &Handler{
		engine:    engine,
		processor: processor,
		movies:    movies,
		pending:   pending,
	}
}

// Routes returns a [chi.Router] with the movie import endpoints. Mounted
// under /movies.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/search", handler.search)
	router.Post("/preview-csv", handler.previewCSV)
	router.Post("/import-confirmed", handler.importConfirmed)
	router.Post("/process-pending", handler.processPending)
	router.Post("/manual", handler.addManual)
	router.Get("/pending", handler.listPending)

	return router
}

// # Search

type searchRequest struct {
	Query string `json:"query"`
}

/*
POST /api/v1/movies/search.

Description: Searches the movie storefront with query-variant fallback and
returns the ranked candidate list, best match first.

Request:
  - query: string (required)

Response:
  - 200: []Candidate ranked best-first
  - 404: No variant yielded a result
  - 429: Upstream or local rate limit hit
*/
func (handler *Handler) search(writer http.ResponseWriter, request *http.Request) {
	var input searchRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	if err := validator.Required("query", input.Query).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	candidates, err := handler.movies.Search(request.Context(), input.Query)
	if err != nil {
		respond.Error(writer, request, catalog.SearchError(err))
		return
	}

	ranked := catalog.RankMovies(candidates)
	respond.OK(writer, catalog.SearchResponse{Results: ranked, Total: len(ranked)})
}

// # Batch Import

/*
POST /api/v1/movies/preview-csv.

Description: Parses an uploaded CSV and classifies every row against
inventory and the external catalog without importing anything. Rate-limited
rows are queued for background retry.

Request (multipart/form-data):
  - file: CSV with a title column, optional director and year
  - category_id: int (must reference a movies category)

Response:
  - 200: Preview with per-row results and a summary
  - 404: Category not found
  - 422: Unusable CSV
*/
func (handler *Handler) previewCSV(writer http.ResponseWriter, request *http.Request) {
	if err := request.ParseMultipartForm(maxCSVUploadBytes); err != nil {
		respond.Error(writer, request, apperr.ValidationError("No file uploaded"))
		return
	}

	file, _, err := request.FormFile("file")
	if err != nil {
		respond.Error(writer, request, apperr.ValidationError("No file uploaded"))
		return
	}
	defer file.Close()

	categoryID, err := formInt(request, "category_id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	rows, err := ParseCSV(file)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	preview, err := handler.engine.PreviewBatch(request.Context(), categoryID, rows)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, preview)
}

type importConfirmedRequest struct {
	CategoryID int            `json:"category_id"`
	Confirmed  []ConfirmedRow `json:"confirmed_movies"`
}

/*
POST /api/v1/movies/import-confirmed.

Description: Imports a user-approved subset of preview rows. Missing fields
get defaults; per-row failures are collected while the rest of the batch
commits. Re-running the same confirmation skips already-imported rows.

Request:
  - category_id: int
  - confirmed_movies: []ConfirmedRow

Response:
  - 200: ImportResult
  - 404: Category not found
*/
func (handler *Handler) importConfirmed(writer http.ResponseWriter, request *http.Request) {
	var input importConfirmedRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.engine.ImportConfirmed(request.Context(), input.CategoryID, input.Confirmed)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, result)
}

// # Pending Queue

/*
POST /api/v1/movies/process-pending.

Description: Drains one batch of the pending-retry queue. The background
ticker calls the same path; this route exists for manual triggering.

Response:
  - 200: {processed, imported, failed}
*/
func (handler *Handler) processPending(writer http.ResponseWriter, request *http.Request) {
	result, err := handler.processor.ProcessBatch(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, result)
}

/*
GET /api/v1/movies/pending.

Description: Lists queued pending searches, oldest first.

Request:
  - status: string (pending | completed | failed, default pending)
  - limit: int

Response:
  - 200: []PendingSearch
*/
func (handler *Handler) listPending(writer http.ResponseWriter, request *http.Request) {
	status := PendingStatus(request.URL.Query().Get("status"))
	if status == "" {
		status = StatusPending
	}

	params := pagination.FromRequest(request)
	searches, err := handler.pending.ListByStatus(request.Context(), status, params.Limit)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, searches)
}

// # Manual Additions

type manualMovieRequest struct {
	CategoryID int      `json:"category_id"`
	Title      string   `json:"title"`
	Director   string   `json:"director"`
	Year       *int     `json:"year"`
	URL        string   `json:"url"`
	Price      *float64 `json:"price"`
}

/*
POST /api/v1/movies/manual.

Description: Adds a hand-entered movie, bypassing the catalog. Missing
fields get the same defaults as a confirmed import.

Request:
  - category_id: int
  - title: string (required)
  - director, year, url, price: optional

Response:
  - 201: Item
  - 404: Category not found
*/
func (handler *Handler) addManual(writer http.ResponseWriter, request *http.Request) {
	var input manualMovieRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	item, err := handler.engine.AddManualMovie(request.Context(), input.CategoryID, ManualMovie{
		Title:    input.Title,
		Director: input.Director,
		Year:     input.Year,
		URL:      input.URL,
		Price:    input.Price,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, item)
}

func formInt(request *http.Request, field string) (int, error) {
	raw := request.FormValue(field)
	if raw == "" {
		return 0, validate.RequiredError(field, "This field is required")
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, validate.RequiredError(field, "Must be an integer")
	}
	return value, nil
}
