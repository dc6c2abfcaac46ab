package catalog

import "errors"

// ErrRateLimited indicates the upstream catalog rejected the request with a
// throttling response, or the local token bucket refused to send it at all.
// Batch callers check for it with [errors.Is] and stop their run early.
var ErrRateLimited = errors.New("catalog: upstream rate limited")

// ErrNoResults indicates every query variation came back empty.
var ErrNoResults = errors.New("catalog: no results found")
