package service

import (
	"strings"

	"leadkit/internal/core/domain"
	"leadkit/internal/core/ports"
	"leadkit/internal/tabular"
)

// addressHeaders are the column names recognized as holding addresses, in
// order of preference.
var addressHeaders = []string{"email", "e-mail", domain.ColResultEmail, domain.ColPartnerEmail}

// AddressesFromFile reads the addresses to validate from an uploaded file.
// The column named like an address column is used when present, otherwise
// the first column. A first line that is itself an address is kept.
func AddressesFromFile(filename string, data []byte, codec ports.SpreadsheetCodec) ([]string, error) {
	table, err := tabular.Decode(filename, data, codec)
	if err != nil {
		return nil, err
	}
	if len(table.Header) == 0 {
		return nil, &domain.EmptyInputError{Detail: "the file has no rows"}
	}

	key, named := addressColumn(table.Header)
	var out []string
	if !named && strings.Contains(key, "@") {
		out = append(out, strings.TrimSpace(key))
	}
	for _, v := range table.Column(key) {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil, &domain.EmptyInputError{Detail: "no email addresses found in " + filename}
	}
	return out, nil
}

func addressColumn(header []string) (string, bool) {
	for _, want := range addressHeaders {
		for _, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), want) {
				return h, true
			}
		}
	}
	return header[0], false
}
