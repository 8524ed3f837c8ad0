package service

import (
	"errors"
	"strings"

	"leadkit/internal/core/domain"
	"leadkit/internal/tabular"
)

// DecodeResults parses a batch result payload into validation records.
// A payload without the result columns is a SchemaError even when the
// remote service reported success.
func DecodeResults(payload []byte) ([]domain.ValidationRecord, error) {
	rows, err := tabular.ParseTable(string(payload), domain.ResultContract.Required)
	if err != nil {
		var schemaErr *domain.SchemaError
		if errors.As(err, &schemaErr) && schemaErr.Contract == "" {
			schemaErr.Contract = domain.ResultContract.Name
		}
		return nil, err
	}

	records := make([]domain.ValidationRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, domain.ValidationRecord{
			Address:   strings.TrimSpace(r[domain.ColResultEmail]),
			Status:    domain.ParseStatusCode(r[domain.ColResultStatus]),
			SubStatus: strings.TrimSpace(r[domain.ColResultSubStatus]),
		})
	}
	return records, nil
}
