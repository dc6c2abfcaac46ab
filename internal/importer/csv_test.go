package importer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricewatch/pricewatch/internal/importer"
)

func TestParseCSV_FullRows(t *testing.T) {
	input := "title,director,year\nHeat,Michael Mann,1995\nAlien,Ridley Scott,1979\n"

	rows, err := importer.ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, importer.Row{Title: "Heat", Director: "Michael Mann", YearText: "1995"}, rows[0])
	assert.Equal(t, importer.Row{Title: "Alien", Director: "Ridley Scott", YearText: "1979"}, rows[1])
}

func TestParseCSV_TitleOnlyColumn(t *testing.T) {
	input := "title\nHeat\nAlien\n"

	rows, err := importer.ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Heat", rows[0].Title)
	assert.Empty(t, rows[0].Director)
}

func TestParseCSV_HeaderCaseInsensitive(t *testing.T) {
	input := "Title,Director\nHeat,Michael Mann\n"

	rows, err := importer.ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, "Heat", rows[0].Title)
	assert.Equal(t, "Michael Mann", rows[0].Director)
}

func TestParseCSV_MissingTitleColumn(t *testing.T) {
	input := "name,director\nHeat,Michael Mann\n"

	_, err := importer.ParseCSV(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title")
}

func TestParseCSV_EmptyFile(t *testing.T) {
	_, err := importer.ParseCSV(strings.NewReader(""))
	require.Error(t, err)
}

func TestParseCSV_HeaderOnly(t *testing.T) {
	_, err := importer.ParseCSV(strings.NewReader("title,director,year\n"))
	require.Error(t, err)
}

func TestParseCSV_ShortRecordsTolerated(t *testing.T) {
	input := "title,director,year\nHeat\n"

	rows, err := importer.ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Heat", rows[0].Title)
	assert.Empty(t, rows[0].Director)
	assert.Empty(t, rows[0].YearText)
}

func TestParseCSV_CellsTrimmed(t *testing.T) {
	input := "title,director\n  Heat  , Michael Mann \n"

	rows, err := importer.ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, "Heat", rows[0].Title)
	assert.Equal(t, "Michael Mann", rows[0].Director)
}
