package inventory

import (
	"time"

	"github.com/pricewatch/pricewatch/internal/pricing"
)

// Item is a tracked inventory record. Title, author, director and year are
// only meaningful for book and movie categories; general items carry just a
// name.
//
// When ExternalID is set it is the authoritative key for exact catalog
// re-lookup and supersedes title-based search during price refresh.
type Item struct {
	ID          int       `json:"id"`
	CategoryID  int       `json:"categoryId"`
	Name        string    `json:"name"`
	Title       *string   `json:"title,omitempty"`
	Author      *string   `json:"author,omitempty"`
	Director    *string   `json:"director,omitempty"`
	Year        *int      `json:"year,omitempty"`
	URL         string    `json:"url"`
	Price       float64   `json:"price"`
	Bought      bool      `json:"bought"`
	ExternalID  *string   `json:"externalId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// PriceHistoryEntry records one observed price change for an item. Entries
// are written only when a refresh actually changes the price.
type PriceHistoryEntry struct {
	ID          int            `json:"id"`
	ItemID      int            `json:"itemId"`
	OldPrice    float64        `json:"oldPrice"`
	NewPrice    float64        `json:"newPrice"`
	PriceSource pricing.Source `json:"priceSource"`
	SearchQuery *string        `json:"searchQuery,omitempty"`
	CreatedAt   time.Time      `json:"date"`
}

// PriceRefresh summarizes a single refresh attempt for display, whether or
// not the price moved.
type PriceRefresh struct {
	OldPrice    float64        `json:"oldPrice"`
	NewPrice    float64        `json:"newPrice"`
	Source      pricing.Source `json:"source"`
	SearchQuery string         `json:"searchQuery,omitempty"`
	Updated     bool           `json:"updated"`
}
