package tabular

import (
	"encoding/xml"
	"errors"
	"io"
	"slices"
	"strings"

	"leadkit/internal/core/domain"
)

// MarkupParser reads record markup of the form
//
//	<records>
//	  <record><field_a>...</field_a><field_b>...</field_b></record>
//	</records>
//
// Element names are not fixed: every child of the root is a record and every
// child of a record is a field keyed by its local name.
type MarkupParser struct {
	IdentityField string   // must be non-empty
	NameField     string   // must be non-empty
	ContactFields []string // at least one must be non-empty
}

// PartnerMarkup accepts partner records that name a company and a partner
// and carry an email or a phone.
var PartnerMarkup = &MarkupParser{
	IdentityField: domain.ColCompanyName,
	NameField:     domain.ColPartnerName,
	ContactFields: []string{domain.ColPartnerEmail, domain.ColPartnerPhone},
}

// Parse returns the accepted records of text. Records that fail the
// acceptance rule are dropped; if none is accepted Parse fails with a
// SchemaError.
func (p *MarkupParser) Parse(text string) ([]domain.Row, error) {
	records, err := p.scan(strings.NewReader(text))
	if err != nil {
		return nil, &domain.MalformedMarkupError{Err: err}
	}

	var rows []domain.Row
	for _, r := range records {
		if p.accept(r) {
			rows = append(rows, r)
		}
	}
	if len(rows) == 0 {
		return nil, &domain.SchemaError{
			Contract: "markup records",
			Detail:   "no record with " + p.IdentityField + ", " + p.NameField + " and one of " + strings.Join(p.ContactFields, "/"),
		}
	}
	return rows, nil
}

// Header returns the field keys seen across rows, in first-seen order.
func Header(rows []domain.Row, preferred []string) []string {
	seen := make(map[string]bool)
	var header []string
	for _, key := range preferred {
		for _, r := range rows {
			if _, ok := r[key]; ok {
				header = append(header, key)
				seen[key] = true
				break
			}
		}
	}
	for _, r := range rows {
		var extra []string
		for key := range r {
			if !seen[key] {
				extra = append(extra, key)
				seen[key] = true
			}
		}
		// Map iteration order is random; keep the output stable.
		slices.Sort(extra)
		header = append(header, extra...)
	}
	return header
}

func (p *MarkupParser) accept(r domain.Row) bool {
	if r[p.IdentityField] == "" || r[p.NameField] == "" {
		return false
	}
	for _, f := range p.ContactFields {
		if r[f] != "" {
			return true
		}
	}
	return false
}

// scan walks the token stream and collects one Row per record element.
func (p *MarkupParser) scan(r io.Reader) ([]domain.Row, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = true

	var (
		records []domain.Row
		current domain.Row
		field   string
		text    strings.Builder
		depth   int
		root    bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch depth {
			case 1:
				if root {
					return nil, errors.New("multiple root elements")
				}
				root = true
			case 2:
				current = make(domain.Row)
			case 3:
				field = t.Name.Local
				text.Reset()
			}
		case xml.CharData:
			if depth >= 3 {
				text.Write(t)
			}
		case xml.EndElement:
			switch depth {
			case 2:
				records = append(records, current)
				current = nil
			case 3:
				current[field] = strings.TrimSpace(text.String())
			}
			depth--
		}
	}
	if !root {
		return nil, errors.New("no root element")
	}
	return records, nil
}
