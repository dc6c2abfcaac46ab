package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricewatch/pricewatch/internal/inventory"
	"github.com/pricewatch/pricewatch/pkg/pointer"
)

func movieItem(id int, title string, director string, year *int) inventory.Item {
	item := inventory.Item{ID: id, CategoryID: 1, Name: title, Title: pointer.To(title), Year: year}
	if director != "" {
		item.Director = pointer.To(director)
	}
	return item
}

func TestFindDuplicate_MovieTitleAndYear(t *testing.T) {
	items := []inventory.Item{
		movieItem(1, "Heat", "Michael Mann", pointer.To(1995)),
		movieItem(2, "Heat", "Unknown", pointer.To(2013)),
	}

	match := inventory.FindDuplicate(items, inventory.TypeMovies, "  HEAT ", "", pointer.To(2013), "")

	require.NotNil(t, match)
	assert.Equal(t, 2, match.Item.ID)
	assert.Equal(t, "Same title and year (2013)", match.Reason)
}

func TestFindDuplicate_MovieYearFloorIgnored(t *testing.T) {
	items := []inventory.Item{
		movieItem(1, "Heat", "Michael Mann", pointer.To(1800)),
	}

	// A junk year skips strategy 1 but the title-only fallback still fires.
	match := inventory.FindDuplicate(items, inventory.TypeMovies, "Heat", "", pointer.To(1800), "")

	require.NotNil(t, match)
	assert.Equal(t, "Same title (but different details)", match.Reason)
}

func TestFindDuplicate_MovieTitleAndDirector(t *testing.T) {
	items := []inventory.Item{
		movieItem(1, "Heat", "Michael Mann", nil),
	}

	match := inventory.FindDuplicate(items, inventory.TypeMovies, "Heat", "michael mann", nil, "")

	require.NotNil(t, match)
	assert.Equal(t, "Same title and director (michael mann)", match.Reason)
}

func TestFindDuplicate_MovieTitleOnly(t *testing.T) {
	items := []inventory.Item{
		movieItem(1, "Heat", "Michael Mann", pointer.To(1995)),
	}

	match := inventory.FindDuplicate(items, inventory.TypeMovies, "Heat", "Someone Else", pointer.To(2020), "")

	require.NotNil(t, match)
	assert.Equal(t, "Same title (but different details)", match.Reason)
}

func TestFindDuplicate_MovieStrategyPrecedence(t *testing.T) {
	// Year match must win over director match even when both would hit.
	items := []inventory.Item{
		movieItem(1, "Heat", "Michael Mann", nil),
		movieItem(2, "Heat", "Someone Else", pointer.To(1995)),
	}

	match := inventory.FindDuplicate(items, inventory.TypeMovies, "Heat", "Michael Mann", pointer.To(1995), "")

	require.NotNil(t, match)
	assert.Equal(t, 2, match.Item.ID)
	assert.Equal(t, "Same title and year (1995)", match.Reason)
}

func TestFindDuplicate_NoMatch(t *testing.T) {
	items := []inventory.Item{
		movieItem(1, "Heat", "Michael Mann", pointer.To(1995)),
	}

	assert.Nil(t, inventory.FindDuplicate(items, inventory.TypeMovies, "Alien", "", nil, ""))
}

func TestFindDuplicate_BlankTitle(t *testing.T) {
	items := []inventory.Item{
		movieItem(1, "Heat", "Michael Mann", pointer.To(1995)),
	}

	assert.Nil(t, inventory.FindDuplicate(items, inventory.TypeMovies, "   ", "Michael Mann", pointer.To(1995), ""))
}

func TestFindDuplicate_BookTitleAndAuthor(t *testing.T) {
	items := []inventory.Item{
		{ID: 1, Name: "Dune", Title: pointer.To("Dune"), Author: pointer.To("Frank Herbert")},
	}

	match := inventory.FindDuplicate(items, inventory.TypeBooks, "dune", "", nil, "FRANK HERBERT")

	require.NotNil(t, match)
	assert.Equal(t, "Same title and author (FRANK HERBERT)", match.Reason)
}

func TestFindDuplicate_BookTitleOnly(t *testing.T) {
	items := []inventory.Item{
		{ID: 1, Name: "Dune", Title: pointer.To("Dune"), Author: pointer.To("Frank Herbert")},
	}

	match := inventory.FindDuplicate(items, inventory.TypeBooks, "Dune", "", nil, "Brian Herbert")

	require.NotNil(t, match)
	assert.Equal(t, "Same title (but potentially different author)", match.Reason)
}

func TestFindDuplicate_GeneralByName(t *testing.T) {
	items := []inventory.Item{
		{ID: 1, Name: "Standing Desk"},
	}

	match := inventory.FindDuplicate(items, inventory.TypeGeneral, "standing desk", "", nil, "")

	require.NotNil(t, match)
	assert.Equal(t, "Same name", match.Reason)
}

func TestFindDuplicate_AccentInsensitive(t *testing.T) {
	items := []inventory.Item{
		movieItem(1, "Amélie", "Jean-Pierre Jeunet", pointer.To(2001)),
	}

	match := inventory.FindDuplicate(items, inventory.TypeMovies, "Amelie", "", pointer.To(2001), "")

	require.NotNil(t, match)
	assert.Equal(t, "Same title and year (2001)", match.Reason)
}
