package importer

import (
	"fmt"
	"net/url"
	"time"
)

// PendingStatus is the lifecycle state of a deferred catalog lookup.
type PendingStatus string

const (
	StatusPending   PendingStatus = "pending"
	StatusCompleted PendingStatus = "completed"
	StatusFailed    PendingStatus = "failed"
)

// PendingSearch is a catalog lookup deferred by rate limiting, queued for a
// future retry run. RetryCount strictly increases on every attempt; the row
// fails permanently once it exceeds the retry ceiling without a hit, and
// completes the moment a search yields any result.
type PendingSearch struct {
	ID            int           `json:"id"`
	CategoryID    int           `json:"categoryId"`
	Title         string        `json:"title"`
	Director      *string       `json:"director,omitempty"`
	Year          *int          `json:"year,omitempty"`
	CSVRowData    string        `json:"csvRowData"`
	Status        PendingStatus `json:"status"`
	RetryCount    int           `json:"retryCount"`
	LastAttempted *time.Time    `json:"lastAttemptedAt,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// EncodeRowPayload packs the original CSV cells into the URL-encoded
// pipe-joined form stored alongside the pending row, so the raw input
// survives even if it contained delimiters.
func EncodeRowPayload(title, director string, year *int) string {
	yearText := ""
	if year != nil {
		yearText = fmt.Sprintf("%d", *year)
	}
	return url.QueryEscape(fmt.Sprintf("%s|%s|%s", title, director, yearText))
}
