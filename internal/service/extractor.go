package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"leadkit/internal/contacts"
	"leadkit/internal/core/domain"
	"leadkit/internal/core/ports"
	"leadkit/internal/tabular"
)

// Artifact file names.
const (
	EmailsArtifact       = "emails_socios.csv"
	ContactsArtifact     = "contatos_socios_formatado.csv"
	ContactsXLSXArtifact = "contatos_socios_formatado.xlsx"
	ManifestArtifact     = "manifest.json"

	contactsSheet = "Processed Data"
)

// Content types of the rendered artifacts.
const (
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeXLS  = "application/vnd.ms-excel"
)

// Artifact is one rendered output file.
type Artifact struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"-"`
}

// ExtractionResult is the outcome of one extraction run.
type ExtractionResult struct {
	RunID     string                 `json:"run_id,omitempty"`
	Source    string                 `json:"source"`
	Partners  int                    `json:"partners"`
	Dropped   int                    `json:"dropped_rows"`
	Emails    []string               `json:"-"`
	Contacts  []domain.ContactRecord `json:"-"`
	Artifacts []Artifact             `json:"artifacts"`
	Path      string                 `json:"path,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// Artifact returns the named artifact, if it was rendered.
func (r *ExtractionResult) Artifact(name string) (Artifact, bool) {
	for _, a := range r.Artifacts {
		if a.Name == name {
			return a, true
		}
	}
	return Artifact{}, false
}

// Extractor turns partner-contact files into mailing and calling lists.
// The codec and storage are optional: without a codec no .xlsx files are
// read or written, and without storage nothing is persisted.
type Extractor struct {
	codec   ports.SpreadsheetCodec
	storage ports.Storage
	logger  *slog.Logger
}

// NewExtractor creates a new Extractor.
func NewExtractor(codec ports.SpreadsheetCodec, storage ports.Storage, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{codec: codec, storage: storage, logger: logger}
}

// Extract decodes a partner-contact file and renders the emails and
// contacts artifacts.
func (e *Extractor) Extract(ctx context.Context, filename string, data []byte) (*ExtractionResult, error) {
	table, err := tabular.Decode(filename, data, e.codec)
	if err != nil {
		return nil, err
	}
	if missing := tabular.MissingHeaders(table.Header, domain.PartnerContract.Required); len(missing) > 0 {
		return nil, &domain.SchemaError{Contract: domain.PartnerContract.Name, Missing: missing}
	}
	if err := table.RequireData(); err != nil {
		return nil, err
	}
	partners, err := contacts.Canonicalize(table.Rows)
	if err != nil {
		return nil, err
	}

	res := &ExtractionResult{
		Source:    filepath.Base(filename),
		Partners:  len(partners),
		Dropped:   table.Dropped,
		Emails:    contacts.ExtractEmails(partners),
		Contacts:  contacts.ExtractContacts(partners),
		CreatedAt: time.Now().UTC(),
	}
	if len(res.Emails) == 0 && len(res.Contacts) == 0 {
		return nil, &domain.EmptyInputError{Detail: "no partner has an email or a usable phone"}
	}

	contactRows := contacts.ContactRows(res.Contacts)
	renders := []func() (Artifact, error){
		func() (Artifact, error) {
			b, err := tabular.EncodeDelimited(contacts.EmailsHeader, contacts.EmailRows(res.Emails))
			return Artifact{Name: EmailsArtifact, ContentType: ContentTypeCSV, Data: b}, err
		},
		func() (Artifact, error) {
			b, err := tabular.EncodeDelimited(contacts.ContactsHeader, contactRows)
			return Artifact{Name: ContactsArtifact, ContentType: ContentTypeCSV, Data: b}, err
		},
	}
	if e.codec != nil {
		renders = append(renders, func() (Artifact, error) {
			b, err := e.codec.Encode(contactsSheet, contacts.ContactsHeader, anyRows(contactRows))
			return Artifact{Name: ContactsXLSXArtifact, ContentType: ContentTypeXLSX, Data: b}, err
		})
	}

	res.Artifacts, err = renderAll(ctx, renders)
	if err != nil {
		return nil, err
	}

	logger := e.logger.With("source", res.Source)
	logger.Info("extraction complete",
		"partners", res.Partners,
		"emails", len(res.Emails),
		"contacts", len(res.Contacts),
		"dropped_rows", res.Dropped,
	)
	if err := e.persist(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

// ExtractSlots builds the three positional calling lists from a company
// export spreadsheet.
func (e *Extractor) ExtractSlots(ctx context.Context, filename string, data []byte) (*ExtractionResult, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".xlsx", ".xlsm":
	default:
		return nil, &domain.UnsupportedFormatError{Name: filename}
	}
	if e.codec == nil {
		return nil, &domain.ConfigError{Detail: "no spreadsheet codec configured"}
	}

	grid, err := e.codec.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode spreadsheet %s: %w", filename, err)
	}
	lists, err := contacts.ExtractSlots(grid)
	if err != nil {
		return nil, err
	}

	res := &ExtractionResult{
		Source:    filepath.Base(filename),
		CreatedAt: time.Now().UTC(),
	}
	renders := make([]func() (Artifact, error), len(lists))
	for i, list := range lists {
		res.Contacts = append(res.Contacts, list...)
		name := fmt.Sprintf("output_%d.xlsx", i+1)
		rows := anyRows(contacts.ContactRows(list))
		renders[i] = func() (Artifact, error) {
			b, err := e.codec.Encode(contactsSheet, contacts.ContactsHeader, rows)
			return Artifact{Name: name, ContentType: ContentTypeXLSX, Data: b}, err
		}
	}

	res.Artifacts, err = renderAll(ctx, renders)
	if err != nil {
		return nil, err
	}

	e.logger.Info("calling lists built", "source", res.Source, "contacts", len(res.Contacts))
	if err := e.persist(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

// renderAll runs the renders concurrently and keeps their order.
func renderAll(ctx context.Context, renders []func() (Artifact, error)) ([]Artifact, error) {
	out := make([]Artifact, len(renders))
	g, gctx := errgroup.WithContext(ctx)
	for i, render := range renders {
		i, render := i, render
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			a, err := render()
			if err != nil {
				return fmt.Errorf("render %s: %w", a.Name, err)
			}
			out[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// persist saves the artifacts and a manifest under a fresh run id.
func (e *Extractor) persist(ctx context.Context, res *ExtractionResult) error {
	if e.storage == nil {
		return nil
	}
	res.RunID = uuid.NewString()
	logger := e.logger.With("run_id", res.RunID)

	if err := e.storage.InitRun(ctx, res.RunID); err != nil {
		return fmt.Errorf("init run: %w", err)
	}
	for _, a := range res.Artifacts {
		if err := e.storage.SaveArtifact(ctx, res.RunID, a.Name, bytes.NewReader(a.Data)); err != nil {
			return fmt.Errorf("save %s: %w", a.Name, err)
		}
		logger.Debug("artifact saved", "name", a.Name, "bytes", len(a.Data))
	}
	res.Path = e.storage.GetRunPath(res.RunID)

	manifest, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := e.storage.SaveArtifact(ctx, res.RunID, ManifestArtifact, bytes.NewReader(manifest)); err != nil {
		return fmt.Errorf("save %s: %w", ManifestArtifact, err)
	}
	logger.Info("artifacts saved", "path", res.Path, "count", len(res.Artifacts))
	return nil
}

func anyRows(rows [][]string) [][]any {
	out := make([][]any, len(rows))
	for i, r := range rows {
		row := make([]any, len(r))
		for j, v := range r {
			row[j] = v
		}
		out[i] = row
	}
	return out
}
