package schema

// RefPriceHistoryTable represents the 'price_history' table
type RefPriceHistoryTable struct {
	Table       string
	ID          string
	ItemID      string
	OldPrice    string
	NewPrice    string
	PriceSource string
	SearchQuery string
	CreatedAt   string
}

// RefPriceHistory is the schema definition for price_history
var RefPriceHistory = RefPriceHistoryTable{
	Table:       "price_history",
	ID:          "id",
	ItemID:      "item_id",
	OldPrice:    "old_price",
	NewPrice:    "new_price",
	PriceSource: "price_source",
	SearchQuery: "search_query",
	CreatedAt:   "created_at",
}

func (t RefPriceHistoryTable) Columns() []string {
	return []string{t.ID, t.ItemID, t.OldPrice, t.NewPrice, t.PriceSource, t.SearchQuery, t.CreatedAt}
}
