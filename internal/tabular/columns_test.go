package tabular

import (
	"errors"
	"reflect"
	"testing"

	"leadkit/internal/core/domain"
)

func TestRequireColumns(t *testing.T) {
	t.Run("canonicalizes keys and values", func(t *testing.T) {
		rows := []domain.Row{
			{
				" razao_social ": " Acme Ltda ",
				"nome_socio":     "Ana",
				"email_socio":    "ana@acme.com ",
				"telefone_socio": "11 99999-8888",
				"ignored":        "x",
			},
		}

		got, err := RequireColumns(rows, domain.PartnerContract)
		if err != nil {
			t.Fatalf("RequireColumns() error = %v", err)
		}
		want := domain.Row{
			"razao_social":     "Acme Ltda",
			"nome_socio":       "Ana",
			"email_socio":      "ana@acme.com",
			"telefone_socio":   "11 99999-8888",
			"telefone_socio_2": "",
		}
		if !reflect.DeepEqual(got[0], want) {
			t.Errorf("row = %v, want %v", got[0], want)
		}
	})

	t.Run("names every missing column", func(t *testing.T) {
		rows := []domain.Row{{"razao_social": "Acme", "Nome_Socio": "Ana"}}

		_, err := RequireColumns(rows, domain.PartnerContract)
		var schemaErr *domain.SchemaError
		if !errors.As(err, &schemaErr) {
			t.Fatalf("RequireColumns() error = %v, want SchemaError", err)
		}
		want := []string{"nome_socio", "email_socio", "telefone_socio"}
		if !reflect.DeepEqual(schemaErr.Missing, want) {
			t.Errorf("Missing = %q, want %q", schemaErr.Missing, want)
		}
		if schemaErr.Contract != domain.PartnerContract.Name {
			t.Errorf("Contract = %q", schemaErr.Contract)
		}
	})

	t.Run("no rows", func(t *testing.T) {
		_, err := RequireColumns(nil, domain.PartnerContract)
		var emptyErr *domain.EmptyInputError
		if !errors.As(err, &emptyErr) {
			t.Errorf("RequireColumns() error = %v, want EmptyInputError", err)
		}
	})
}

func TestMissingHeaders(t *testing.T) {
	got := MissingHeaders([]string{" a", "b "}, []string{"a", "b", "c"})
	if !reflect.DeepEqual(got, []string{"c"}) {
		t.Errorf("MissingHeaders() = %q, want [c]", got)
	}
	if got := MissingHeaders([]string{"a"}, nil); got != nil {
		t.Errorf("MissingHeaders() with no requirements = %q, want nil", got)
	}
}
