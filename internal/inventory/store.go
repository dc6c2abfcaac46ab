package inventory

import "context"

// Repository is the persistence surface for categories, items and price
// history. PostgresRepository is the production implementation.
type Repository interface {
	// Categories
	ListCategories(context context.Context) ([]*Category, error)
	GetCategoryByID(context context.Context, id int) (*Category, error)
	CreateCategory(context context.Context, category *Category) (*Category, error)
	UpdateCategory(context context.Context, category *Category) (*Category, error)
	DeleteCategory(context context.Context, id int) error

	// Items
	ListItemsByCategory(context context.Context, categoryID int) ([]Item, error)
	GetItemByID(context context.Context, id int) (*Item, error)
	CreateItem(context context.Context, item *Item) (*Item, error)
	UpdateItem(context context.Context, item *Item) (*Item, error)
	DeleteItem(context context.Context, id int) error

	// Price history
	InsertPriceHistory(context context.Context, entry *PriceHistoryEntry) error
	ListPriceHistory(context context.Context, itemID int) ([]PriceHistoryEntry, error)
}
