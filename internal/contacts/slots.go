package contacts

import (
	"strings"

	"leadkit/internal/core/domain"
)

// Slot locates one partner on a positional calling sheet.
// Columns are 1-based.
type Slot struct {
	Name     int
	Phone1   int
	Phone2   int
	Business int
}

// CallingSlots are the three partner slots of the company export sheet.
var CallingSlots = []Slot{
	{Name: 23, Phone1: 26, Phone2: 27, Business: 1},
	{Name: 29, Phone1: 32, Phone2: 33, Business: 1},
	{Name: 35, Phone1: 38, Phone2: 39, Business: 1},
}

// preambleRows precede the data on a calling sheet.
const preambleRows = 2

// ExtractSlots builds one contact list per CallingSlots entry from a
// positional grid. The first two rows are title rows and are skipped.
func ExtractSlots(grid [][]string) ([][]domain.ContactRecord, error) {
	if len(grid) <= preambleRows {
		return nil, &domain.EmptyInputError{Detail: "calling sheet has no data rows"}
	}
	data := grid[preambleRows:]

	lists := make([][]domain.ContactRecord, len(CallingSlots))
	for i, s := range CallingSlots {
		var out []domain.ContactRecord
		for _, row := range data {
			out = appendContacts(out, cell(row, s.Name), cell(row, s.Business), cell(row, s.Phone1), cell(row, s.Phone2))
		}
		lists[i] = out
	}
	return lists, nil
}

func cell(row []string, col int) string {
	if col < 1 || col > len(row) {
		return ""
	}
	return strings.TrimSpace(row[col-1])
}
