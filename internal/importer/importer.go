package importer

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-cli/internal/model"
)

// DefaultPreviewRows is how many parsed rows the preview shows by default.
const DefaultPreviewRows = 30

// Session owns the working set of one upload-preview-confirm cycle. It is
// created per import, holds the parsed rows until the caller confirms or
// discards, and is dropped afterwards; nothing in this package is global.
type Session struct {
	FileName string
	Headers  []CanonicalField
	Rows     []ParsedRow

	refs *RefSet
}

// NewSession creates an import session resolving against refs.
func NewSession(refs *RefSet) *Session {
	return &Session{refs: refs}
}

// ParseFile reads and parses a lead file. CSV, TSV, and plain text go
// through the tokenizer; XLSX is read from its first sheet. Any other
// extension is rejected before the file is read.
func (s *Session) ParseFile(path string) error {
	s.FileName = filepath.Base(path)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv", ".txt":
		text, err := os.ReadFile(path)
		if err != nil {
			return eris.Wrapf(err, "importer: read %s", path)
		}
		return s.Parse(string(text))
	case ".xlsx":
		rows, err := ReadXLSX(path)
		if err != nil {
			return err
		}
		return s.consume(rows)
	default:
		return eris.Errorf("importer: unsupported file type %q (expected .csv, .tsv, .txt, or .xlsx)", filepath.Ext(path))
	}
}

// Parse tokenizes raw delimited text and builds the session's rows.
func (s *Session) Parse(text string) error {
	return s.consume(Tokenize(text))
}

func (s *Session) consume(raw [][]string) error {
	if len(raw) < 2 {
		return eris.New("importer: no data rows found")
	}

	s.Headers = make([]CanonicalField, len(raw[0]))
	for i, h := range raw[0] {
		s.Headers[i] = NormalizeHeader(h)
	}

	s.Rows = make([]ParsedRow, 0, len(raw)-1)
	for i, cells := range raw[1:] {
		s.Rows = append(s.Rows, BuildRow(i+2, s.Headers, cells, s.refs))
	}
	return nil
}

// Valid returns the rows eligible for submission.
func (s *Session) Valid() []ParsedRow {
	var valid []ParsedRow
	for _, r := range s.Rows {
		if r.Valid() {
			valid = append(valid, r)
		}
	}
	return valid
}

// Skipped returns the count of rows excluded by validation.
func (s *Session) Skipped() int {
	return len(s.Rows) - len(s.Valid())
}

// Payload maps the valid rows to insert records, defaulting ownership to
// defaultOwnerID where row-level resolution found none.
func (s *Session) Payload(defaultOwnerID string) []model.LeadRecord {
	valid := s.Valid()
	records := make([]model.LeadRecord, 0, len(valid))
	for _, r := range valid {
		records = append(records, r.Record(defaultOwnerID))
	}
	return records
}

// PreviewRow is one display row of the pre-submission preview. Unresolved
// references render as "?" and a missing owner as "Unassigned".
type PreviewRow struct {
	Company string `json:"company"`
	Country string `json:"country"`
	Status  string `json:"status"`
	Owner   string `json:"owner"`
	Email   string `json:"email"`
	Score   int    `json:"score"`
	Error   string `json:"error,omitempty"`
}

// Preview summarizes the parse for user confirmation.
type Preview struct {
	Rows      []PreviewRow `json:"rows"`
	Total     int          `json:"total"`
	Valid     int          `json:"valid"`
	Skipped   int          `json:"skipped"`
	Truncated bool         `json:"truncated"`
}

// Preview renders up to limit rows. All rows, not just the shown ones,
// count toward the totals.
func (s *Session) Preview(limit int) Preview {
	if limit <= 0 {
		limit = DefaultPreviewRows
	}

	p := Preview{Total: len(s.Rows)}
	for _, r := range s.Rows {
		if r.Valid() {
			p.Valid++
		}

		if len(p.Rows) >= limit {
			continue
		}
		pr := PreviewRow{
			Company: r.CompanyName,
			Country: s.refs.CountryName(r.CountryID),
			Status:  s.refs.StatusName(r.StatusID),
			Owner:   s.refs.OwnerName(r.OwnerID),
			Score:   r.LeadScore,
			Error:   r.Err,
		}
		if pr.Country == "" {
			pr.Country = "?"
		}
		if pr.Owner == "" {
			pr.Owner = "Unassigned"
		}
		if r.Email != nil {
			pr.Email = *r.Email
		}
		p.Rows = append(p.Rows, pr)
	}
	p.Skipped = p.Total - p.Valid
	p.Truncated = p.Total > len(p.Rows)
	return p
}
