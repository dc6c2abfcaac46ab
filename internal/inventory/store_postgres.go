package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pricewatch/pricewatch/internal/platform/database/schema"
	"github.com/pricewatch/pricewatch/internal/platform/dberr"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// # Categories

func (repository *PostgresRepository) ListCategories(context context.Context) ([]*Category, error) {
	query := fmt.Sprintf(`
		SELECT c.%s, c.%s, c.%s, c.%s, c.%s, c.%s, COUNT(i.%s)
		FROM %s c
		LEFT JOIN %s i ON i.%s = c.%s
		GROUP BY c.%s
		ORDER BY c.%s ASC
	`,
		schema.RefCategory.ID, schema.RefCategory.Name, schema.RefCategory.Type,
		schema.RefCategory.BookLookupOn, schema.RefCategory.BookLookupSource, schema.RefCategory.CreatedAt,
		schema.RefItem.ID,
		schema.RefCategory.Table, schema.RefItem.Table,
		schema.RefItem.CategoryID, schema.RefCategory.ID,
		schema.RefCategory.ID, schema.RefCategory.Name,
	)

	rows, err := repository.db.Query(context, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list_categories")
	}
	defer rows.Close()

	categories := make([]*Category, 0)
	for rows.Next() {
		category := &Category{}
		if err := rows.Scan(
			&category.ID, &category.Name, &category.Type,
			&category.BookLookupEnabled, &category.BookLookupSource, &category.CreatedAt,
			&category.ItemCount,
		); err != nil {
			return nil, dberr.Wrap(err, "scan_category")
		}
		categories = append(categories, category)
	}
	return categories, nil
}

func (repository *PostgresRepository) GetCategoryByID(context context.Context, id int) (*Category, error) {
	query := fmt.Sprintf(`SELECT %s, %s, %s, %s, %s, %s FROM %s WHERE %s = $1`,
		schema.RefCategory.ID, schema.RefCategory.Name, schema.RefCategory.Type,
		schema.RefCategory.BookLookupOn, schema.RefCategory.BookLookupSource, schema.RefCategory.CreatedAt,
		schema.RefCategory.Table, schema.RefCategory.ID,
	)

	category := &Category{}
	err := repository.db.QueryRow(context, query, id).Scan(
		&category.ID, &category.Name, &category.Type,
		&category.BookLookupEnabled, &category.BookLookupSource, &category.CreatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "get_category_by_id")
	}
	return category, nil
}

func (repository *PostgresRepository) CreateCategory(context context.Context, category *Category) (*Category, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, $4)
		RETURNING %s, %s
	`,
		schema.RefCategory.Table,
		schema.RefCategory.Name, schema.RefCategory.Type,
		schema.RefCategory.BookLookupOn, schema.RefCategory.BookLookupSource,
		schema.RefCategory.ID, schema.RefCategory.CreatedAt,
	)

	err := repository.db.QueryRow(context, query,
		category.Name, category.Type, category.BookLookupEnabled, category.BookLookupSource,
	).Scan(&category.ID, &category.CreatedAt)
	if err != nil {
		return nil, dberr.Wrap(err, "create_category")
	}
	return category, nil
}

func (repository *PostgresRepository) UpdateCategory(context context.Context, category *Category) (*Category, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $1, %s = $2, %s = $3, %s = $4
		WHERE %s = $5
		RETURNING %s
	`,
		schema.RefCategory.Table,
		schema.RefCategory.Name, schema.RefCategory.Type,
		schema.RefCategory.BookLookupOn, schema.RefCategory.BookLookupSource,
		schema.RefCategory.ID, schema.RefCategory.CreatedAt,
	)

	err := repository.db.QueryRow(context, query,
		category.Name, category.Type, category.BookLookupEnabled, category.BookLookupSource, category.ID,
	).Scan(&category.CreatedAt)
	if err != nil {
		return nil, dberr.Wrap(err, "update_category")
	}
	return category, nil
}

func (repository *PostgresRepository) DeleteCategory(context context.Context, id int) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		schema.RefCategory.Table, schema.RefCategory.ID)

	tag, err := repository.db.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_category")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

// # Items

func itemColumns() string {
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s",
		schema.RefItem.ID, schema.RefItem.CategoryID, schema.RefItem.Name,
		schema.RefItem.Title, schema.RefItem.Author, schema.RefItem.Director, schema.RefItem.Year,
		schema.RefItem.URL, schema.RefItem.Price, schema.RefItem.Bought, schema.RefItem.ExternalID,
		schema.RefItem.CreatedAt, schema.RefItem.LastUpdated,
	)
}

func scanItem(row interface{ Scan(dest ...any) error }, item *Item) error {
	return row.Scan(
		&item.ID, &item.CategoryID, &item.Name,
		&item.Title, &item.Author, &item.Director, &item.Year,
		&item.URL, &item.Price, &item.Bought, &item.ExternalID,
		&item.CreatedAt, &item.LastUpdated,
	)
}

func (repository *PostgresRepository) ListItemsByCategory(context context.Context, categoryID int) ([]Item, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY %s ASC`,
		itemColumns(), schema.RefItem.Table, schema.RefItem.CategoryID, schema.RefItem.CreatedAt)

	rows, err := repository.db.Query(context, query, categoryID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_items_by_category")
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		var item Item
		if err := scanItem(rows, &item); err != nil {
			return nil, dberr.Wrap(err, "scan_item")
		}
		items = append(items, item)
	}
	return items, nil
}

func (repository *PostgresRepository) GetItemByID(context context.Context, id int) (*Item, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		itemColumns(), schema.RefItem.Table, schema.RefItem.ID)

	item := &Item{}
	if err := scanItem(repository.db.QueryRow(context, query, id), item); err != nil {
		return nil, dberr.Wrap(err, "get_item_by_id")
	}
	return item, nil
}

func (repository *PostgresRepository) CreateItem(context context.Context, item *Item) (*Item, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING %s, %s, %s
	`,
		schema.RefItem.Table,
		schema.RefItem.CategoryID, schema.RefItem.Name,
		schema.RefItem.Title, schema.RefItem.Author, schema.RefItem.Director, schema.RefItem.Year,
		schema.RefItem.URL, schema.RefItem.Price, schema.RefItem.Bought, schema.RefItem.ExternalID,
		schema.RefItem.ID, schema.RefItem.CreatedAt, schema.RefItem.LastUpdated,
	)

	err := repository.db.QueryRow(context, query,
		item.CategoryID, item.Name,
		item.Title, item.Author, item.Director, item.Year,
		item.URL, item.Price, item.Bought, item.ExternalID,
	).Scan(&item.ID, &item.CreatedAt, &item.LastUpdated)
	if err != nil {
		return nil, dberr.Wrap(err, "create_item")
	}
	return item, nil
}

func (repository *PostgresRepository) UpdateItem(context context.Context, item *Item) (*Item, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $1, %s = $2, %s = $3, %s = $4, %s = $5,
		    %s = $6, %s = $7, %s = $8, %s = $9, %s = $10
		WHERE %s = $11
		RETURNING %s
	`,
		schema.RefItem.Table,
		schema.RefItem.Name, schema.RefItem.Title, schema.RefItem.Author,
		schema.RefItem.Director, schema.RefItem.Year,
		schema.RefItem.URL, schema.RefItem.Price, schema.RefItem.Bought,
		schema.RefItem.ExternalID, schema.RefItem.LastUpdated,
		schema.RefItem.ID, schema.RefItem.CreatedAt,
	)

	item.LastUpdated = time.Now().UTC()
	err := repository.db.QueryRow(context, query,
		item.Name, item.Title, item.Author, item.Director, item.Year,
		item.URL, item.Price, item.Bought, item.ExternalID, item.LastUpdated,
		item.ID,
	).Scan(&item.CreatedAt)
	if err != nil {
		return nil, dberr.Wrap(err, "update_item")
	}
	return item, nil
}

func (repository *PostgresRepository) DeleteItem(context context.Context, id int) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		schema.RefItem.Table, schema.RefItem.ID)

	tag, err := repository.db.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_item")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

// # Price History

func (repository *PostgresRepository) InsertPriceHistory(context context.Context, entry *PriceHistoryEntry) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING %s, %s
	`,
		schema.RefPriceHistory.Table,
		schema.RefPriceHistory.ItemID, schema.RefPriceHistory.OldPrice, schema.RefPriceHistory.NewPrice,
		schema.RefPriceHistory.PriceSource, schema.RefPriceHistory.SearchQuery,
		schema.RefPriceHistory.ID, schema.RefPriceHistory.CreatedAt,
	)

	err := repository.db.QueryRow(context, query,
		entry.ItemID, entry.OldPrice, entry.NewPrice, entry.PriceSource, entry.SearchQuery,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return dberr.Wrap(err, "insert_price_history")
	}
	return nil
}

func (repository *PostgresRepository) ListPriceHistory(context context.Context, itemID int) ([]PriceHistoryEntry, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
		ORDER BY %s DESC
	`,
		schema.RefPriceHistory.ID, schema.RefPriceHistory.ItemID,
		schema.RefPriceHistory.OldPrice, schema.RefPriceHistory.NewPrice,
		schema.RefPriceHistory.PriceSource, schema.RefPriceHistory.SearchQuery, schema.RefPriceHistory.CreatedAt,
		schema.RefPriceHistory.Table, schema.RefPriceHistory.ItemID, schema.RefPriceHistory.CreatedAt,
	)

	rows, err := repository.db.Query(context, query, itemID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_price_history")
	}
	defer rows.Close()

	entries := make([]PriceHistoryEntry, 0)
	for rows.Next() {
		var entry PriceHistoryEntry
		if err := rows.Scan(
			&entry.ID, &entry.ItemID, &entry.OldPrice, &entry.NewPrice,
			&entry.PriceSource, &entry.SearchQuery, &entry.CreatedAt,
		); err != nil {
			return nil, dberr.Wrap(err, "scan_price_history")
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
