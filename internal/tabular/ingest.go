package tabular

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"leadkit/internal/core/domain"
	"leadkit/internal/core/ports"
)

// Decode parses an input file, choosing the decoder by extension.
//
//	.csv, .txt   delimited text
//	.xml         partner record markup
//	.xlsx, .xlsm spreadsheet container, decoded by codec
func Decode(filename string, data []byte, codec ports.SpreadsheetCodec) (*Table, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".csv", ".txt":
		return Parse(string(data))

	case ".xml":
		rows, err := PartnerMarkup.Parse(string(data))
		if err != nil {
			return nil, err
		}
		return &Table{
			Header: Header(rows, domain.PartnerContract.Keys()),
			Rows:   rows,
			Lines:  len(rows),
		}, nil

	case ".xlsx", ".xlsm":
		if codec == nil {
			return nil, &domain.ConfigError{Detail: "no spreadsheet codec configured for " + ext + " files"}
		}
		grid, err := codec.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decode spreadsheet %s: %w", filename, err)
		}
		return FromGrid(grid)

	default:
		return nil, &domain.UnsupportedFormatError{Name: filename}
	}
}
