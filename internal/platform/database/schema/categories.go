package schema

// RefCategoryTable represents the 'categories' table
type RefCategoryTable struct {
	Table            string
	ID               string
	Name             string
	Type             string
	BookLookupOn     string
	BookLookupSource string
	CreatedAt        string
}

// RefCategory is the schema definition for categories
var RefCategory = RefCategoryTable{
	Table:            "categories",
	ID:               "id",
	Name:             "name",
	Type:             "type",
	BookLookupOn:     "book_lookup_enabled",
	BookLookupSource: "book_lookup_source",
	CreatedAt:        "created_at",
}

func (t RefCategoryTable) Columns() []string {
	return []string{t.ID, t.Name, t.Type, t.BookLookupOn, t.BookLookupSource, t.CreatedAt}
}
