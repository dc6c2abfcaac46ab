package inventory

import (
	"fmt"

	"github.com/pricewatch/pricewatch/pkg/normalize"
	"github.com/pricewatch/pricewatch/pkg/pointer"
)

// # Duplicate Detection

// DuplicateMatch pairs the existing item with a human-readable explanation
// of why the incoming row was considered the same thing.
type DuplicateMatch struct {
	Item   Item   `json:"existingItem"`
	Reason string `json:"matchReason"`
}

// yearFloor guards against junk years from CSV cells; anything at or below
// it never participates in year matching.
const yearFloor = 1900

// FindDuplicate checks an incoming row against the category's current items.
// All text comparison is normalized (trimmed, case- and accent-insensitive).
// A blank title never matches anything.
//
// Strategies run most-specific first and the first hit wins. The title-only
// fallbacks deliberately over-match: a soft "same title" hit is surfaced for
// user review instead of being silently imported twice.
func FindDuplicate(items []Item, categoryType CategoryType, title, director string, year *int, author string) *DuplicateMatch {
	titleNorm := normalize.Title(title)
	if titleNorm == "" {
		return nil
	}

	switch categoryType {
	case TypeMovies:
		return findMovieDuplicate(items, titleNorm, director, year)
	case TypeBooks:
		return findBookDuplicate(items, titleNorm, author)
	default:
		return findGeneralDuplicate(items, titleNorm)
	}
}

func findMovieDuplicate(items []Item, titleNorm, director string, year *int) *DuplicateMatch {
	// Strategy 1: title + year
	if year != nil && *year > yearFloor {
		for _, item := range items {
			if normalize.Title(pointer.Val(item.Title)) == titleNorm && item.Year != nil && *item.Year == *year {
				return &DuplicateMatch{Item: item, Reason: fmt.Sprintf("Same title and year (%d)", *year)}
			}
		}
	}

	// Strategy 2: title + director
	if directorNorm := normalize.Title(director); directorNorm != "" {
		for _, item := range items {
			if normalize.Title(pointer.Val(item.Title)) == titleNorm && normalize.Title(pointer.Val(item.Director)) == directorNorm {
				return &DuplicateMatch{Item: item, Reason: fmt.Sprintf("Same title and director (%s)", director)}
			}
		}
	}

	// Strategy 3: title only
	for _, item := range items {
		if normalize.Title(pointer.Val(item.Title)) == titleNorm {
			return &DuplicateMatch{Item: item, Reason: "Same title (but different details)"}
		}
	}
	return nil
}

func findBookDuplicate(items []Item, titleNorm, author string) *DuplicateMatch {
	if authorNorm := normalize.Title(author); authorNorm != "" {
		for _, item := range items {
			if normalize.Title(pointer.Val(item.Title)) == titleNorm && normalize.Title(pointer.Val(item.Author)) == authorNorm {
				return &DuplicateMatch{Item: item, Reason: fmt.Sprintf("Same title and author (%s)", author)}
			}
		}
	}

	for _, item := range items {
		if normalize.Title(pointer.Val(item.Title)) == titleNorm {
			return &DuplicateMatch{Item: item, Reason: "Same title (but potentially different author)"}
		}
	}
	return nil
}

func findGeneralDuplicate(items []Item, titleNorm string) *DuplicateMatch {
	for _, item := range items {
		if normalize.Title(item.Name) == titleNorm {
			return &DuplicateMatch{Item: item, Reason: "Same name"}
		}
	}
	return nil
}
