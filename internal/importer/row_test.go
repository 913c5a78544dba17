package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func headersOf(raw ...string) []CanonicalField {
	hs := make([]CanonicalField, len(raw))
	for i, h := range raw {
		hs[i] = NormalizeHeader(h)
	}
	return hs
}

func TestParseScore(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"85", 85},
		{"150", 100},
		{"0", 1},
		{"-5", 1},
		{"abc", 50},
		{"", 50},
		{" 42 ", 42},
		{"3.7", 50},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseScore(tt.input), "input %q", tt.input)
	}
}

func TestBuildRow_CompanyRequired(t *testing.T) {
	refs := testRefs()
	headers := headersOf("Company Name", "Email")

	row := BuildRow(2, headers, []string{"", "good@example.com"}, refs)
	assert.Equal(t, UnknownCompany, row.CompanyName)
	assert.Equal(t, "Company name is required", row.Err)
	assert.False(t, row.Valid())

	// Other fields in the same row survive validation failure.
	require.NotNil(t, row.Email)
	assert.Equal(t, "good@example.com", *row.Email)
}

func TestBuildRow_EmailValidation(t *testing.T) {
	refs := testRefs()
	headers := headersOf("Company Name", "Email")

	tests := []struct {
		email   string
		wantErr bool
	}{
		{"a@b.co", false},
		{"first.last@sub.example.com", false},
		{"bad-email", true},
		{"two@@signs.com", true},
		{"no@dot", true},
		{"space in@mail.com", true},
		{"redacted?@example.com", true}, // placeholder heuristic
		{"", false},                     // absent email is fine
	}
	for _, tt := range tests {
		row := BuildRow(2, headers, []string{"Acme", tt.email}, refs)
		if tt.wantErr {
			assert.NotEmpty(t, row.Err, "email %q", tt.email)
			assert.Nil(t, row.Email, "invalid value must be discarded: %q", tt.email)
		} else {
			assert.Empty(t, row.Err, "email %q", tt.email)
			if tt.email != "" {
				require.NotNil(t, row.Email)
				assert.Equal(t, tt.email, *row.Email)
			} else {
				assert.Nil(t, row.Email)
			}
		}
	}
}

func TestBuildRow_FirstFailureWins(t *testing.T) {
	refs := testRefs()
	headers := headersOf("Company Name", "Email")

	row := BuildRow(2, headers, []string{"", "bad-email"}, refs)
	assert.Equal(t, "Company name is required", row.Err)
}

func TestBuildRow_NotesComposition(t *testing.T) {
	refs := testRefs()
	headers := headersOf("Company Name", "Followup Stage", "Call Booked", "Notes")

	row := BuildRow(2, headers, []string{"Acme", "Second touch", "Yes", "met at expo"}, refs)
	require.NotNil(t, row.Notes)
	assert.Equal(t, "Follow-up: Second touch\nCall: Yes\nmet at expo", *row.Notes)

	row = BuildRow(3, headers, []string{"Acme", "", "", ""}, refs)
	assert.Nil(t, row.Notes)

	row = BuildRow(4, headers, []string{"Acme", "", "No", ""}, refs)
	require.NotNil(t, row.Notes)
	assert.Equal(t, "Call: No", *row.Notes)
}

func TestBuildRow_DuplicateHeaderFirstColumnWins(t *testing.T) {
	refs := testRefs()
	headers := headersOf("Company", "Vendor Name")

	row := BuildRow(2, headers, []string{"First Co", "Second Co"}, refs)
	assert.Equal(t, "First Co", row.CompanyName)
}

func TestBuildRow_ShortRow(t *testing.T) {
	refs := testRefs()
	headers := headersOf("Company Name", "Country", "Email")

	// Row shorter than the header list: missing cells read as empty.
	row := BuildRow(2, headers, []string{"Acme"}, refs)
	assert.True(t, row.Valid())
	assert.Nil(t, row.CountryID)
	assert.Nil(t, row.Email)
}

func TestBuildRow_References(t *testing.T) {
	refs := testRefs()
	headers := headersOf("Company Name", "Country", "Status", "Lead Owner", "Lead Score")

	row := BuildRow(2, headers, []string{"Acme", "IN", "contacted", "Jane Doe", "85"}, refs)
	require.True(t, row.Valid())
	require.NotNil(t, row.CountryID)
	assert.Equal(t, "c1", *row.CountryID)
	require.NotNil(t, row.StatusID)
	assert.Equal(t, "s2", *row.StatusID)
	require.NotNil(t, row.OwnerID)
	assert.Equal(t, "u1", *row.OwnerID)
	assert.Equal(t, 85, row.LeadScore)
}

func TestRecord_DefaultOwner(t *testing.T) {
	refs := testRefs()
	headers := headersOf("Company Name")

	row := BuildRow(2, headers, []string{"Acme"}, refs)
	require.Nil(t, row.OwnerID)

	rec := row.Record("u9")
	require.NotNil(t, rec.OwnerID)
	assert.Equal(t, "u9", *rec.OwnerID)

	// Row-level resolution wins over the default.
	row.OwnerID = strPtr("u1")
	rec = row.Record("u9")
	assert.Equal(t, "u1", *rec.OwnerID)

	// Empty default leaves the lead unassigned.
	row.OwnerID = nil
	rec = row.Record("")
	assert.Nil(t, rec.OwnerID)
}
