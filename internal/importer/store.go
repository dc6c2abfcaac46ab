package importer

import (
	"context"
	"time"
)

// Repository is the persistence surface for the pending-search queue.
type Repository interface {
	// ListByStatus returns up to limit rows in the given status, oldest first.
	ListByStatus(context context.Context, status PendingStatus, limit int) ([]PendingSearch, error)
	Insert(context context.Context, search *PendingSearch) (*PendingSearch, error)
	// MarkAttempt stamps last_attempted and increments the retry counter.
	MarkAttempt(context context.Context, id int, at time.Time) error
	SetStatus(context context.Context, id int, status PendingStatus) error
}
