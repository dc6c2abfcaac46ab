package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pricewatch/pricewatch/internal/catalog"
	"github.com/pricewatch/pricewatch/internal/inventory"
	"github.com/pricewatch/pricewatch/internal/platform/constants"
	"github.com/pricewatch/pricewatch/pkg/pointer"
)

// # Pending-Retry Processor

// PendingRunResult reports one drain of the retry queue.
type PendingRunResult struct {
	Processed int `json:"processed"`
	Imported  int `json:"imported"`
	Failed    int `json:"failed"`
}

// Processor drains the pending-search queue in small batches, re-attempting
// catalog lookups that were previously rate limited.
type Processor struct {
	pending Repository
	items   inventory.Repository
	movies  catalog.MovieSearcher
	logger  *slog.Logger
	now     func() time.Time
}

// NewProcessor constructs a pending [Processor]. A nil now defaults to
// [time.Now].
func NewProcessor(pending Repository, items inventory.Repository, movies catalog.MovieSearcher, logger *slog.Logger, now func() time.Time) *Processor {
	if now == nil {
		now = time.Now
	}
	return &Processor{
		pending: pending,
		items:   items,
		movies:  movies,
		logger:  logger,
		now:     now,
	}
}

// ProcessBatch drains up to five of the oldest pending rows, oldest first.
// The small batch bounds per-run catalog call volume against the upstream
// quota.
//
// Per row: the attempt is stamped and the retry counter incremented before
// the search, so every attempt counts even if it fails. A hit promotes the
// row to a real inventory item (stored CSV director/year fill any gaps in
// the catalog response) and marks it completed. A rate-limit stops the whole
// run immediately. A repeated miss fails the row permanently once it has
// exhausted its retries, otherwise it stays queued for the next run.
func (processor *Processor) ProcessBatch(context context.Context) (*PendingRunResult, error) {
	searches, err := processor.pending.ListByStatus(context, StatusPending, constants.PendingBatchSize)
	if err != nil {
		return nil, err
	}

	result := &PendingRunResult{}
	for _, search := range searches {
		if err := processor.pending.MarkAttempt(context, search.ID, processor.now().UTC()); err != nil {
			processor.logger.ErrorContext(context, "pending_mark_attempt_failed",
				slog.Int("pending_id", search.ID),
				slog.String("error", err.Error()))
			continue
		}

		candidates, err := processor.movies.Search(context, search.Title)
		switch {
		case err == nil && len(candidates) > 0:
			best := catalog.RankMovies(candidates)[0]
			if err := processor.importCandidate(context, search, best); err != nil {
				processor.logger.ErrorContext(context, "pending_import_failed",
					slog.Int("pending_id", search.ID),
					slog.String("error", err.Error()))
				continue
			}
			result.Imported++
			processor.logger.InfoContext(context, "pending_search_completed",
				slog.Int("pending_id", search.ID),
				slog.String("title", search.Title))

		case errors.Is(err, catalog.ErrRateLimited):
			// Still throttled. Burning the rest of the batch would only
			// waste quota, so end the run here.
			processor.logger.WarnContext(context, "pending_run_rate_limited",
				slog.Int("pending_id", search.ID))
			result.Processed++
			return result, nil

		case search.RetryCount >= constants.PendingMaxRetries:
			if err := processor.pending.SetStatus(context, search.ID, StatusFailed); err != nil {
				return result, err
			}
			result.Failed++
			processor.logger.InfoContext(context, "pending_search_failed",
				slog.Int("pending_id", search.ID),
				slog.String("title", search.Title),
				slog.Int("retry_count", search.RetryCount+1))

		default:
			processor.logger.InfoContext(context, "pending_search_retained",
				slog.Int("pending_id", search.ID),
				slog.String("title", search.Title))
		}

		result.Processed++
	}
	return result, nil
}

// importCandidate promotes the best match into inventory and completes the
// pending row.
func (processor *Processor) importCandidate(context context.Context, search PendingSearch, best catalog.Candidate) error {
	director := best.Creator
	if director == "" || director == "Unknown" {
		director = pointer.Fallback(search.Director, "Unknown Director")
	}
	year := best.Year
	if year == nil {
		year = search.Year
	}

	name := best.DisplayName
	if name == "" {
		if year != nil {
			name = fmt.Sprintf("%s (%d)", best.Title, *year)
		} else {
			name = best.Title
		}
	}

	item := &inventory.Item{
		CategoryID: search.CategoryID,
		Name:       name,
		Title:      &best.Title,
		Director:   &director,
		Year:       year,
		URL:        best.URL,
		Price:      best.Price,
	}
	if best.ExternalID != "" {
		item.ExternalID = &best.ExternalID
	}

	if _, err := processor.items.CreateItem(context, item); err != nil {
		return err
	}
	return processor.pending.SetStatus(context, search.ID, StatusCompleted)
}
