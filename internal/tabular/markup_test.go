package tabular

import (
	"errors"
	"testing"

	"leadkit/internal/core/domain"
)

const partnerXML = `<?xml version="1.0" encoding="UTF-8"?>
<socios>
  <socio>
    <razao_social>Acme &amp; Filhos</razao_social>
    <nome_socio>Ana</nome_socio>
    <email_socio>ana@acme.com</email_socio>
    <telefone_socio></telefone_socio>
  </socio>
  <socio>
    <razao_social>Beta</razao_social>
    <nome_socio></nome_socio>
    <email_socio>x@beta.com</email_socio>
    <telefone_socio>11999998888</telefone_socio>
  </socio>
  <socio>
    <razao_social>Gama</razao_social>
    <nome_socio>Gil</nome_socio>
    <email_socio/>
    <telefone_socio> 21988887777 </telefone_socio>
  </socio>
  <socio>
    <razao_social>Delta</razao_social>
    <nome_socio>Duda</nome_socio>
    <email_socio></email_socio>
    <telefone_socio></telefone_socio>
  </socio>
</socios>`

func TestMarkupParser_Parse(t *testing.T) {
	rows, err := PartnerMarkup.Parse(partnerXML)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	if rows[0][domain.ColCompanyName] != "Acme & Filhos" {
		t.Errorf("company = %q, want entity decoded", rows[0][domain.ColCompanyName])
	}
	if rows[1][domain.ColPartnerPhone] != "21988887777" {
		t.Errorf("phone = %q, want trimmed", rows[1][domain.ColPartnerPhone])
	}
	if _, ok := rows[1][domain.ColPartnerEmail]; !ok {
		t.Error("self-closing field should be present with an empty value")
	}
}

func TestMarkupParser_Errors(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		malformed bool
	}{
		{"unclosed element", "<socios><socio><nome_socio>Ana</socio></socios>", true},
		{"truncated", "<socios><socio>", true},
		{"not markup", "razao_social,nome_socio", true},
		{"two roots", "<a></a><b></b>", true},
		{"no accepted records", "<socios><socio><razao_social>X</razao_social></socio></socios>", false},
		{"empty root", "<socios/>", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PartnerMarkup.Parse(tt.text)
			var markupErr *domain.MalformedMarkupError
			var schemaErr *domain.SchemaError
			switch {
			case tt.malformed && !errors.As(err, &markupErr):
				t.Errorf("Parse() error = %v, want MalformedMarkupError", err)
			case !tt.malformed && !errors.As(err, &schemaErr):
				t.Errorf("Parse() error = %v, want SchemaError", err)
			}
		})
	}
}

func TestHeader_PreferredOrderFirst(t *testing.T) {
	rows := []domain.Row{{"b": "1", "z": "2", "a": "3"}}
	got := Header(rows, []string{"a", "b", "missing"})
	want := []string{"a", "b", "z"}
	if len(got) != len(want) {
		t.Fatalf("Header() = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Header()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
