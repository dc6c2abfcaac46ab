package importer

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/pricewatch/pricewatch/internal/platform/apperr"
)

// Row is one parsed CSV line. Year stays as raw text here; the engine
// parses it defensively so a malformed year degrades instead of failing
// the row.
type Row struct {
	Title    string `json:"title"`
	Director string `json:"director,omitempty"`
	YearText string `json:"year,omitempty"`
}

// ParseCSV reads a header-led CSV stream into rows. The title column is
// mandatory; director and year are optional and matched case-insensitively.
func ParseCSV(reader io.Reader) ([]Row, error) {
	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	// Rows with missing trailing cells are common in hand-edited files.
	csvReader.FieldsPerRecord = -1

	header, err := csvReader.Read()
	if err != nil {
		return nil, apperr.Unprocessable("CSV file is empty or has no valid rows")
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	titleIdx, ok := columns["title"]
	if !ok {
		return nil, apperr.Unprocessable(`CSV must have at least a "title" column. Optional: "director", "year"`)
	}
	directorIdx, hasDirector := columns["director"]
	yearIdx, hasYear := columns["year"]

	rows := make([]Row, 0)
	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperr.Unprocessable("Failed to parse CSV file")
		}

		row := Row{Title: cell(record, titleIdx)}
		if hasDirector {
			row.Director = cell(record, directorIdx)
		}
		if hasYear {
			row.YearText = cell(record, yearIdx)
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, apperr.Unprocessable("CSV file is empty or has no valid rows")
	}
	return rows, nil
}

func cell(record []string, index int) string {
	if index < 0 || index >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[index])
}
