package schema

// RefItemTable represents the 'items' table
type RefItemTable struct {
	Table       string
	ID          string
	CategoryID  string
	Name        string
	Title       string
	Author      string
	Director    string
	Year        string
	URL         string
	Price       string
	Bought      string
	ExternalID  string
	CreatedAt   string
	LastUpdated string
}

// RefItem is the schema definition for items
var RefItem = RefItemTable{
	Table:       "items",
	ID:          "id",
	CategoryID:  "category_id",
	Name:        "name",
	Title:       "title",
	Author:      "author",
	Director:    "director",
	Year:        "year",
	URL:         "url",
	Price:       "price",
	Bought:      "bought",
	ExternalID:  "external_id",
	CreatedAt:   "created_at",
	LastUpdated: "last_updated",
}

func (t RefItemTable) Columns() []string {
	return []string{
		t.ID, t.CategoryID, t.Name, t.Title, t.Author, t.Director, t.Year,
		t.URL, t.Price, t.Bought, t.ExternalID, t.CreatedAt, t.LastUpdated,
	}
}
