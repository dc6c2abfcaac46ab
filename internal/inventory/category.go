package inventory

import "time"

// CategoryType gates which catalog and duplicate-matching strategy applies
// to items in a category.
type CategoryType string

const (
	TypeBooks   CategoryType = "books"
	TypeMovies  CategoryType = "movies"
	TypeGeneral CategoryType = "general"
)

// Valid reports whether the type is one of the known category kinds.
func (categoryType CategoryType) Valid() bool {
	switch categoryType {
	case TypeBooks, TypeMovies, TypeGeneral:
		return true
	}
	return false
}

// Category groups items and selects their search behaviour.
type Category struct {
	ID                int          `json:"id"`
	Name              string       `json:"name"`
	Type              CategoryType `json:"type"`
	BookLookupEnabled bool         `json:"bookLookupEnabled"`
	BookLookupSource  string       `json:"bookLookupSource,omitempty"`
	CreatedAt         time.Time    `json:"createdAt"`

	// ItemCount is populated on list queries only.
	ItemCount int `json:"itemCount"`
}
