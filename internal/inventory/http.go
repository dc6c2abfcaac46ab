/*
Package inventory manages the tracked categories and items, their price
history, and the single-item price refresh path.

# Routing Strategy

  - Categories: CRUD plus per-category item listing.
  - Items: CRUD, a bought toggle, price history, and a refresh endpoint
    that re-queries the external catalog for the current price.

The handler translates between the web/JSON layer and the internal domain
[Service].
*/
package inventory

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/pricewatch/pricewatch/internal/platform/request"
	"github.com/pricewatch/pricewatch/internal/platform/respond"
)

// # Handler Implementation

// Handler implements the HTTP layer for category and item management.
type Handler struct {
	service *Service
}

// NewHandler constructs an inventory [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with the inventory endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// ## Categories
	router.Get("/categories", handler.listCategories)
	router.Post("/categories", handler.createCategory)
	router.Get("/categories/{id}", handler.getCategory)
	router.Put("/categories/{id}", handler.updateCategory)
	router.Delete("/categories/{id}", handler.deleteCategory)
	router.Get("/categories/{id}/items", handler.listItems)
	router.Post("/categories/{id}/items", handler.createItem)

	// ## Items
	router.Get("/items/{id}", handler.getItem)
	router.Put("/items/{id}", handler.updateItem)
	router.Delete("/items/{id}", handler.deleteItem)
	router.Patch("/items/{id}/bought", handler.toggleBought)
	router.Patch("/items/{id}/refresh-price", handler.refreshPrice)
	router.Get("/items/{id}/price-history", handler.priceHistory)

	return router
}

// # Category Endpoints

type categoryRequest struct {
	Name              string `json:"name"`
	Type              string `json:"type"`
	BookLookupEnabled bool   `json:"bookLookupEnabled"`
	BookLookupSource  string `json:"bookLookupSource"`
}

/*
GET /api/v1/categories.

Description: Lists all categories with their item counts.

Response:
  - 200: []Category
*/
func (handler *Handler) listCategories(writer http.ResponseWriter, request *http.Request) {
	categories, err := handler.service.ListCategories(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, categories)
}

/*
POST /api/v1/categories.

Description: Creates a new category. Type defaults to general.

Request:
  - name: string (required)
  - type: string (books | movies | general)
  - bookLookupEnabled: bool
  - bookLookupSource: string

Response:
  - 201: Category
*/
func (handler *Handler) createCategory(writer http.ResponseWriter, request *http.Request) {
	var input categoryRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	category, err := handler.service.CreateCategory(request.Context(), &Category{
		Name:              input.Name,
		Type:              CategoryType(input.Type),
		BookLookupEnabled: input.BookLookupEnabled,
		BookLookupSource:  input.BookLookupSource,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, category)
}

func (handler *Handler) getCategory(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	category, err := handler.service.GetCategory(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, category)
}

func (handler *Handler) updateCategory(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input categoryRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	category, err := handler.service.UpdateCategory(request.Context(), &Category{
		ID:                id,
		Name:              input.Name,
		Type:              CategoryType(input.Type),
		BookLookupEnabled: input.BookLookupEnabled,
		BookLookupSource:  input.BookLookupSource,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, category)
}

func (handler *Handler) deleteCategory(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteCategory(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// # Item Endpoints

type itemRequest struct {
	Name       string  `json:"name"`
	Title      *string `json:"title"`
	Author     *string `json:"author"`
	Director   *string `json:"director"`
	Year       *int    `json:"year"`
	URL        string  `json:"url"`
	Price      float64 `json:"price"`
	Bought     bool    `json:"bought"`
	ExternalID *string `json:"externalId"`
	// TrackID mirrors the raw field some clients still send.
	TrackID *string `json:"trackId"`
}

func (input itemRequest) externalID() *string {
	if input.ExternalID != nil {
		return input.ExternalID
	}
	return input.TrackID
}

/*
GET /api/v1/categories/{id}/items.

Description: Lists all items in a category, oldest first.

Response:
  - 200: []Item
  - 404: Category not found
*/
func (handler *Handler) listItems(writer http.ResponseWriter, request *http.Request) {
	categoryID, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	items, err := handler.service.ListItems(request.Context(), categoryID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, items)
}

/*
POST /api/v1/categories/{id}/items.

Description: Adds an item to a category. Either externalId or trackId may
carry the catalog identifier.

Response:
  - 201: Item
  - 404: Category not found
*/
func (handler *Handler) createItem(writer http.ResponseWriter, request *http.Request) {
	categoryID, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input itemRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	item, err := handler.service.CreateItem(request.Context(), &Item{
		CategoryID: categoryID,
		Name:       input.Name,
		Title:      input.Title,
		Author:     input.Author,
		Director:   input.Director,
		Year:       input.Year,
		URL:        input.URL,
		Price:      input.Price,
		ExternalID: input.externalID(),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, item)
}

func (handler *Handler) getItem(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	item, err := handler.service.GetItem(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, item)
}

func (handler *Handler) updateItem(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	existing, err := handler.service.GetItem(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input itemRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	existing.Name = input.Name
	existing.Title = input.Title
	existing.Author = input.Author
	existing.Director = input.Director
	existing.Year = input.Year
	existing.URL = input.URL
	existing.Price = input.Price
	existing.Bought = input.Bought
	existing.ExternalID = input.externalID()

	item, err := handler.service.UpdateItem(request.Context(), existing)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, item)
}

func (handler *Handler) deleteItem(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteItem(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

/*
PATCH /api/v1/items/{id}/bought.

Description: Toggles the bought flag.

Response:
  - 200: Item
  - 404: Item not found
*/
func (handler *Handler) toggleBought(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	item, err := handler.service.ToggleBought(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, item)
}

type refreshResponse struct {
	*Item
	PriceRefresh *PriceRefresh `json:"priceRefresh"`
}

/*
PATCH /api/v1/items/{id}/refresh-price.

Description: Re-queries the external catalog for the item's current price.
A stored external id takes an exact lookup; otherwise the title is searched
and the top-ranked candidate wins. The response always includes a refresh
summary, even when nothing changed.

Response:
  - 200: Item with priceRefresh summary
  - 404: Item not found
*/
func (handler *Handler) refreshPrice(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	item, refresh, err := handler.service.RefreshPrice(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, refreshResponse{Item: item, PriceRefresh: refresh})
}

/*
GET /api/v1/items/{id}/price-history.

Description: Returns the item's recorded price changes, newest first.

Response:
  - 200: []PriceHistoryEntry
  - 404: Item not found
*/
func (handler *Handler) priceHistory(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	history, err := handler.service.PriceHistory(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, history)
}
