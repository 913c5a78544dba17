package importer

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sells-group/lead-cli/internal/model"
)

// Score bounds and default for imported leads.
const (
	ScoreMin     = 1
	ScoreMax     = 100
	ScoreDefault = 50
)

// UnknownCompany is the display label for rows missing a company name.
// Such rows are still flagged invalid and excluded from submission.
const UnknownCompany = "(Unknown)"

// emailPattern is the pragmatic format check: exactly one @, at least one
// dot after it, no whitespace anywhere.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ParsedRow is the validated, typed result of one CSV row. Rows are always
// produced, never rejected outright: a validation failure sets Err and the
// row stays visible in the preview while being excluded from submission.
type ParsedRow struct {
	Line               int     `json:"line"`
	CompanyName        string  `json:"company_name"`
	Website            *string `json:"website"`
	Email              *string `json:"email"`
	Phone              *string `json:"phone"`
	ContactName        *string `json:"contact_name"`
	ContactDesignation *string `json:"contact_designation"`
	CountryID          *string `json:"country_id"`
	StatusID           *string `json:"status_id"`
	LeadScore          int     `json:"lead_score"`
	Notes              *string `json:"notes"`
	OwnerID            *string `json:"owner_id"`
	Err                string  `json:"error,omitempty"`
}

// Valid reports whether the row passed validation and may be submitted.
func (r ParsedRow) Valid() bool { return r.Err == "" }

// Record maps the row to its insert payload. defaultOwnerID fills OwnerID
// when the row's own owner resolution came up empty.
func (r ParsedRow) Record(defaultOwnerID string) model.LeadRecord {
	owner := r.OwnerID
	if owner == nil && defaultOwnerID != "" {
		owner = &defaultOwnerID
	}
	return model.LeadRecord{
		CompanyName:        r.CompanyName,
		Website:            r.Website,
		Email:              r.Email,
		Phone:              r.Phone,
		ContactName:        r.ContactName,
		ContactDesignation: r.ContactDesignation,
		CountryID:          r.CountryID,
		StatusID:           r.StatusID,
		LeadScore:          r.LeadScore,
		Notes:              r.Notes,
		OwnerID:            owner,
	}
}

// BuildRow transforms one tokenized row into a ParsedRow using the
// normalized header list and the session's reference tables. Only the
// first validation failure is recorded; later checks never overwrite it.
func BuildRow(line int, headers []CanonicalField, cells []string, refs *RefSet) ParsedRow {
	get := func(key CanonicalField) string {
		for i, h := range headers {
			if h == key {
				if i < len(cells) {
					return strings.TrimSpace(cells[i])
				}
				return ""
			}
		}
		return ""
	}

	row := ParsedRow{Line: line}

	company := get(FieldCompanyName)
	if company == "" {
		row.CompanyName = UnknownCompany
		row.Err = "Company name is required"
	} else {
		row.CompanyName = company
	}

	if email := get(FieldEmail); email != "" {
		if !emailPattern.MatchString(email) || strings.Contains(email, "?") {
			if row.Err == "" {
				row.Err = "Invalid email address"
			}
			// Discard the bad value; the rest of the row survives.
		} else {
			row.Email = &email
		}
	}

	row.Website = optional(get(FieldWebsite))
	row.Phone = optional(get(FieldPhone))
	row.ContactName = optional(get(FieldContactName))
	row.ContactDesignation = optional(get(FieldContactDesignation))

	row.Notes = composeNotes(get(FieldFollowupStage), get(FieldCallBooked), get(FieldNotes))

	row.CountryID = refs.ResolveCountry(get(FieldCountry))
	row.StatusID = refs.ResolveStatus(get(FieldStatus))
	row.OwnerID = refs.ResolveOwner(get(FieldLeadOwner))
	row.LeadScore = ParseScore(get(FieldLeadScore))

	return row
}

// ParseScore parses a lead score, defaulting to ScoreDefault on absent or
// non-numeric input and clamping the result to [ScoreMin, ScoreMax].
func ParseScore(text string) int {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return ScoreDefault
	}
	if n < ScoreMin {
		return ScoreMin
	}
	if n > ScoreMax {
		return ScoreMax
	}
	return n
}

// composeNotes builds the notes field from the follow-up stage, call
// booked, and raw notes columns, one line each. Empty result is nil.
func composeNotes(followup, call, notes string) *string {
	var lines []string
	if followup != "" {
		lines = append(lines, "Follow-up: "+followup)
	}
	if call != "" {
		lines = append(lines, "Call: "+call)
	}
	if notes != "" {
		lines = append(lines, notes)
	}
	if len(lines) == 0 {
		return nil
	}
	joined := strings.Join(lines, "\n")
	return &joined
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
