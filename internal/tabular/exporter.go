package tabular

import (
	"encoding/json"
	"fmt"
	"strings"

	"leadkit/internal/core/domain"
)

// ColumnSpec maps a record key to the label shown in the header row.
type ColumnSpec struct {
	Key   string
	Label string
}

// Record is one exported row. Numeric values render as Number cells,
// everything else as String cells.
type Record map[string]any

// ValidationColumns is the column layout of the validation results export.
var ValidationColumns = []ColumnSpec{
	{Key: "email", Label: "E-mail"},
	{Key: "status", Label: "Status"},
	{Key: "sub_status", Label: "Sub-Status"},
}

// DefaultSheetName is the worksheet name used by RenderSpreadsheet.
const DefaultSheetName = "Validation Results"

var markupEscaper = strings.NewReplacer(
	"<", "&lt;",
	">", "&gt;",
	"&", "&amp;",
	"'", "&apos;",
	`"`, "&quot;",
)

// EscapeMarkup replaces the five reserved markup characters with entities.
func EscapeMarkup(s string) string {
	return markupEscaper.Replace(s)
}

// ValidationRecords converts validation records into exporter records.
func ValidationRecords(records []domain.ValidationRecord) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = Record{
			"email":      r.Address,
			"status":     string(r.Status),
			"sub_status": r.SubStatus,
		}
	}
	return out
}

// RenderSpreadsheet renders records as an XML Spreadsheet 2003 document.
func RenderSpreadsheet(records []Record, columns []ColumnSpec) []byte {
	return RenderSheet(DefaultSheetName, records, columns)
}

// RenderSheet is RenderSpreadsheet with an explicit worksheet name.
func RenderSheet(name string, records []Record, columns []ColumnSpec) []byte {
	var b strings.Builder

	b.WriteString(`<?xml version="1.0"?>
<?mso-application progid="Excel.Sheet"?>
<Workbook xmlns="urn:schemas-microsoft-com:office:spreadsheet"
  xmlns:o="urn:schemas-microsoft-com:office:office"
  xmlns:x="urn:schemas-microsoft-com:office:excel"
  xmlns:ss="urn:schemas-microsoft-com:office:spreadsheet"
  xmlns:html="http://www.w3.org/TR/REC-html40">
  <Styles>
    <Style ss:ID="s62">
      <Font ss:Bold="1"/>
    </Style>
  </Styles>
`)
	fmt.Fprintf(&b, "  <Worksheet ss:Name=\"%s\">\n    <Table>\n      ", EscapeMarkup(name))

	b.WriteString("<Row>")
	for _, col := range columns {
		fmt.Fprintf(&b, `<Cell ss:StyleID="s62"><Data ss:Type="String">%s</Data></Cell>`, EscapeMarkup(col.Label))
	}
	b.WriteString("</Row>\n      ")

	for _, rec := range records {
		b.WriteString("<Row>")
		for _, col := range columns {
			kind, text := cellValue(rec[col.Key])
			fmt.Fprintf(&b, `<Cell><Data ss:Type="%s">%s</Data></Cell>`, kind, EscapeMarkup(text))
		}
		b.WriteString("</Row>")
	}

	b.WriteString("\n    </Table>\n  </Worksheet>\n</Workbook>")
	return []byte(b.String())
}

// cellValue returns the cell type and text for a value.
func cellValue(v any) (string, string) {
	switch n := v.(type) {
	case nil:
		return "String", ""
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return "Number", fmt.Sprint(n)
	case json.Number:
		return "Number", n.String()
	case string:
		return "String", n
	case fmt.Stringer:
		return "String", n.String()
	default:
		return "String", fmt.Sprint(n)
	}
}
