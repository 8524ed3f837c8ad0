// Package contacts derives calling lists and mailing lists from canonical
// partner-contact rows.
package contacts

import (
	_ "embed"
	"strings"
	"text/template"
	"unicode"

	"leadkit/internal/core/domain"
	"leadkit/internal/tabular"
)

// Artifact headers.
var (
	EmailsHeader   = []string{"email"}
	ContactsHeader = []string{"name", "phone_number", "business", "prompt"}
)

// countryCode is prepended to national numbers.
const countryCode = "55"

//go:embed script_prompt.txt
var scriptSource string

var scriptTemplate = template.Must(template.New("script").Parse(scriptSource))

// FormatPhone normalizes a phone number to international form.
//
// Numbers already starting with "+" keep their digits as given. Otherwise
// non-digits are stripped and a 10 or 11 digit national number gets the
// country code. Input with no digits yields "".
func FormatPhone(raw string) string {
	raw = strings.TrimSpace(raw)
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)
	if digits == "" {
		return ""
	}
	if strings.HasPrefix(raw, "+") {
		return "+" + digits
	}
	if n := len(digits); (n == 10 || n == 11) && !strings.HasPrefix(digits, countryCode) {
		digits = countryCode + digits
	}
	return "+" + digits
}

// Canonicalize maps rows onto the partner contract.
func Canonicalize(rows []domain.Row) ([]domain.PartnerRow, error) {
	mapped, err := tabular.RequireColumns(rows, domain.PartnerContract)
	if err != nil {
		return nil, err
	}
	out := make([]domain.PartnerRow, len(mapped))
	for i, r := range mapped {
		out[i] = domain.PartnerFromRow(r)
	}
	return out, nil
}

// ExtractContacts emits one contact per non-empty phone of every row that
// has a partner name and a company name.
func ExtractContacts(rows []domain.PartnerRow) []domain.ContactRecord {
	var out []domain.ContactRecord
	for _, r := range rows {
		out = appendContacts(out, r.PartnerName, r.CompanyName, r.Phone, r.Phone2)
	}
	return out
}

func appendContacts(out []domain.ContactRecord, name, business string, phones ...string) []domain.ContactRecord {
	name = strings.TrimSpace(name)
	business = strings.TrimSpace(business)
	if name == "" || business == "" {
		return out
	}
	for _, p := range phones {
		phone := FormatPhone(p)
		if phone == "" {
			continue
		}
		out = append(out, domain.ContactRecord{
			Name:         name,
			PhoneNumber:  phone,
			Business:     business,
			ScriptPrompt: ScriptPrompt(name, business),
		})
	}
	return out
}

// ExtractEmails returns the distinct partner emails in first-seen order.
// Duplicates are detected case-insensitively.
func ExtractEmails(rows []domain.PartnerRow) []string {
	seen := make(map[string]struct{}, len(rows))
	var out []string
	for _, r := range rows {
		email := strings.TrimSpace(r.Email)
		if email == "" {
			continue
		}
		key := strings.ToLower(email)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, email)
	}
	return out
}

// ScriptPrompt renders the call script for one contact.
func ScriptPrompt(name, business string) string {
	var b strings.Builder
	data := struct{ Name, Business string }{name, business}
	if err := scriptTemplate.Execute(&b, data); err != nil {
		// The template only reads two string fields.
		panic(err)
	}
	return strings.TrimRightFunc(b.String(), unicode.IsSpace)
}

// ContactRows flattens contacts in ContactsHeader column order.
func ContactRows(records []domain.ContactRecord) [][]string {
	out := make([][]string, len(records))
	for i, c := range records {
		out[i] = []string{c.Name, c.PhoneNumber, c.Business, c.ScriptPrompt}
	}
	return out
}

// EmailRows wraps each address in a single-column row.
func EmailRows(emails []string) [][]string {
	out := make([][]string, len(emails))
	for i, e := range emails {
		out[i] = []string{e}
	}
	return out
}
