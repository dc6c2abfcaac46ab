package importer

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

func (repository *PostgresRepository) ListByStatus(context context.Context, status PendingStatus, limit int) ([]PendingSearch, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
		ORDER BY %s ASC
		LIMIT $2
	`,
		schema.RefPendingSearch.ID, schema.RefPendingSearch.CategoryID,
		schema.RefPendingSearch.Title, schema.RefPendingSearch.Director, schema.RefPendingSearch.Year,
		schema.RefPendingSearch.CSVRowData, schema.RefPendingSearch.Status, schema.RefPendingSearch.RetryCount,
		schema.RefPendingSearch.LastAttempted, schema.RefPendingSearch.CreatedAt,
		schema.RefPendingSearch.Table, schema.RefPendingSearch.Status, schema.RefPendingSearch.CreatedAt,
	)

	rows, err := repository.db.Query(context, query, status, limit)
	if err != nil {
		return nil, dberr.Wrap(err, "list_pending_by_status")
	}
	defer rows.Close()

	searches := make([]PendingSearch, 0)
	for rows.Next() {
		var search PendingSearch
		if err := rows.Scan(
			&search.ID, &search.CategoryID,
			&search.Title, &search.Director, &search.Year,
			&search.CSVRowData, &search.Status, &search.RetryCount,
			&search.LastAttempted, &search.CreatedAt,
		); err != nil {
			return nil, dberr.Wrap(err, "scan_pending_search")
		}
		searches = append(searches, search)
	}
	return searches, nil
}

func (repository *PostgresRepository) Insert(context context.Context, search *PendingSearch) (*PendingSearch, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING %s, %s
	`,
		schema.RefPendingSearch.Table,
		schema.RefPendingSearch.CategoryID, schema.RefPendingSearch.Title,
		schema.RefPendingSearch.Director, schema.RefPendingSearch.Year,
		schema.RefPendingSearch.CSVRowData, schema.RefPendingSearch.Status, schema.RefPendingSearch.RetryCount,
		schema.RefPendingSearch.ID, schema.RefPendingSearch.CreatedAt,
	)

	if search.Status == "" {
		search.Status = StatusPending
	}
	err := repository.db.QueryRow(context, query,
		search.CategoryID, search.Title, search.Director, search.Year,
		search.CSVRowData, search.Status, search.RetryCount,
	).Scan(&search.ID, &search.CreatedAt)
	if err != nil {
		return nil, dberr.Wrap(err, "insert_pending_search")
	}
	return search, nil
}

func (repository *PostgresRepository) MarkAttempt(context context.Context, id int, at time.Time) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $1, %s = %s + 1
		WHERE %s = $2
	`,
		schema.RefPendingSearch.Table,
		schema.RefPendingSearch.LastAttempted,
		schema.RefPendingSearch.RetryCount, schema.RefPendingSearch.RetryCount,
		schema.RefPendingSearch.ID,
	)

	tag, err := repository.db.Exec(context, query, at, id)
	if err != nil {
		return dberr.Wrap(err, "mark_pending_attempt")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (repository *PostgresRepository) SetStatus(context context.Context, id int, status PendingStatus) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $1 WHERE %s = $2`,
		schema.RefPendingSearch.Table, schema.RefPendingSearch.Status, schema.RefPendingSearch.ID)

	tag, err := repository.db.Exec(context, query, status, id)
	if err != nil {
		return dberr.Wrap(err, "set_pending_status")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}
