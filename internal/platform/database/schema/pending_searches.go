package schema

// RefPendingSearchTable represents the 'pending_searches' table
type RefPendingSearchTable struct {
	Table         string
	ID            string
	CategoryID    string
	Title         string
	Director      string
	Year          string
	CSVRowData    string
	Status        string
	RetryCount    string
	LastAttempted string
	CreatedAt     string
}

// RefPendingSearch is the schema definition for pending_searches
var RefPendingSearch = RefPendingSearchTable{
	Table:         "pending_searches",
	ID:            "id",
	CategoryID:    "category_id",
	Title:         "title",
	Director:      "director",
	Year:          "year",
	CSVRowData:    "csv_row_data",
	Status:        "status",
	RetryCount:    "retry_count",
	LastAttempted: "last_attempted",
	CreatedAt:     "created_at",
}

func (t RefPendingSearchTable) Columns() []string {
	return []string{
		t.ID, t.CategoryID, t.Title, t.Director, t.Year, t.CSVRowData,
		t.Status, t.RetryCount, t.LastAttempted, t.CreatedAt,
	}
}
