package tabular

import (
	"strings"

	"leadkit/internal/core/domain"
)

// MissingHeaders returns the required keys absent from header, in the order
// they are listed in required. Header keys are compared after trimming;
// matching is exact and case-sensitive.
func MissingHeaders(header []string, required []string) []string {
	seen := make(map[string]struct{}, len(header))
	for _, h := range header {
		seen[strings.TrimSpace(h)] = struct{}{}
	}
	var missing []string
	for _, key := range required {
		if _, ok := seen[key]; !ok {
			missing = append(missing, key)
		}
	}
	return missing
}

// RequireColumns checks rows against contract and returns canonical rows.
//
// The observed keys are the trimmed keys of every row. If any required key
// is absent the whole set is rejected with a SchemaError naming each missing
// column. Canonical rows carry exactly the contract's keys, with trimmed
// values; optional keys that were not supplied are empty.
func RequireColumns(rows []domain.Row, contract domain.ColumnContract) ([]domain.Row, error) {
	if len(rows) == 0 {
		return nil, &domain.EmptyInputError{Detail: "no rows to map for " + contract.Name}
	}

	var observed []string
	trimmed := make([]domain.Row, len(rows))
	for i, r := range rows {
		t := make(domain.Row, len(r))
		for k, v := range r {
			key := strings.TrimSpace(k)
			if _, dup := t[key]; !dup {
				observed = append(observed, key)
			}
			t[key] = strings.TrimSpace(v)
		}
		trimmed[i] = t
	}

	if missing := MissingHeaders(observed, contract.Required); len(missing) > 0 {
		return nil, &domain.SchemaError{Contract: contract.Name, Missing: missing}
	}

	keys := contract.Keys()
	out := make([]domain.Row, len(trimmed))
	for i, t := range trimmed {
		row := make(domain.Row, len(keys))
		for _, key := range keys {
			row[key] = t[key]
		}
		out[i] = row
	}
	return out, nil
}
