package domain

import "strings"

// Row maps a column key to its string value.
type Row map[string]string

// Partner input column keys.
const (
	ColCompanyName  = "razao_social"
	ColPartnerName  = "nome_socio"
	ColPartnerEmail = "email_socio"
	ColPartnerPhone = "telefone_socio"
	// ColPartnerPhone2 is an optional second phone column.
	ColPartnerPhone2 = "telefone_socio_2"
)

// Batch result column keys as returned by the remote service.
const (
	ColResultEmail     = "Email Address"
	ColResultStatus    = "ZB Status"
	ColResultSubStatus = "ZB Sub Status"
)

// ColumnContract is the set of columns a row set must carry.
// Optional columns are kept when present and default to empty otherwise.
type ColumnContract struct {
	Name     string
	Required []string
	Optional []string
}

// Keys returns the required keys followed by the optional keys.
func (c ColumnContract) Keys() []string {
	keys := make([]string, 0, len(c.Required)+len(c.Optional))
	keys = append(keys, c.Required...)
	return append(keys, c.Optional...)
}

// PartnerContract is the contract for partner-contact input files.
var PartnerContract = ColumnContract{
	Name:     "partner contacts",
	Required: []string{ColCompanyName, ColPartnerName, ColPartnerEmail, ColPartnerPhone},
	Optional: []string{ColPartnerPhone2},
}

// ResultContract is the contract for batch validation result payloads.
var ResultContract = ColumnContract{
	Name:     "batch result",
	Required: []string{ColResultEmail, ColResultStatus, ColResultSubStatus},
}

// PartnerRow is a canonical partner-contact row.
type PartnerRow struct {
	CompanyName string
	PartnerName string
	Email       string
	Phone       string
	Phone2      string
}

// PartnerFromRow builds a PartnerRow from a row that satisfies PartnerContract.
func PartnerFromRow(r Row) PartnerRow {
	return PartnerRow{
		CompanyName: r[ColCompanyName],
		PartnerName: r[ColPartnerName],
		Email:       r[ColPartnerEmail],
		Phone:       r[ColPartnerPhone],
		Phone2:      r[ColPartnerPhone2],
	}
}

// StatusCode is the validation outcome reported for an address.
type StatusCode string

const (
	StatusValid     StatusCode = "valid"
	StatusInvalid   StatusCode = "invalid"
	StatusCatchAll  StatusCode = "catch-all"
	StatusUnknown   StatusCode = "unknown"
	StatusSpamtrap  StatusCode = "spamtrap"
	StatusAbuse     StatusCode = "abuse"
	StatusDoNotMail StatusCode = "do_not_mail"
)

var statusCodes = map[string]StatusCode{
	"valid":       StatusValid,
	"invalid":     StatusInvalid,
	"catch-all":   StatusCatchAll,
	"catch_all":   StatusCatchAll,
	"catchall":    StatusCatchAll,
	"unknown":     StatusUnknown,
	"spamtrap":    StatusSpamtrap,
	"abuse":       StatusAbuse,
	"do_not_mail": StatusDoNotMail,
	"do-not-mail": StatusDoNotMail,
}

// ParseStatusCode maps a remote status string onto StatusCode.
// Unrecognized values map to StatusUnknown.
func ParseStatusCode(s string) StatusCode {
	if code, ok := statusCodes[strings.ToLower(strings.TrimSpace(s))]; ok {
		return code
	}
	return StatusUnknown
}

// Label returns a short human-readable label for the status.
func (s StatusCode) Label() string {
	switch s {
	case StatusValid:
		return "Valid"
	case StatusInvalid:
		return "Invalid"
	case StatusCatchAll:
		return "Catch-all"
	case StatusSpamtrap:
		return "Spamtrap"
	case StatusAbuse:
		return "Abuse"
	case StatusDoNotMail:
		return "Do not mail"
	default:
		return "Unknown"
	}
}

// ValidationRecord is the validation outcome of a single address.
type ValidationRecord struct {
	Address   string     `json:"email"`
	Status    StatusCode `json:"status"`
	SubStatus string     `json:"sub_status"`
}

// ContactRecord is a derived calling-list entry.
type ContactRecord struct {
	Name         string `json:"name"`
	PhoneNumber  string `json:"phone_number"`
	Business     string `json:"business"`
	ScriptPrompt string `json:"prompt"`
}
