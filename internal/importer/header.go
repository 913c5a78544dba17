package importer

import "strings"

// CanonicalField is a normalized lead field name. Every raw header maps to
// exactly one CanonicalField; headers outside the recognized set keep
// their lowercased, underscored form and are ignored by row extraction.
type CanonicalField string

// Recognized lead fields.
const (
	FieldCompanyName        CanonicalField = "company_name"
	FieldCountry            CanonicalField = "country"
	FieldWebsite            CanonicalField = "website"
	FieldEmail              CanonicalField = "email"
	FieldPhone              CanonicalField = "phone"
	FieldContactName        CanonicalField = "contact_name"
	FieldContactDesignation CanonicalField = "contact_designation"
	FieldStatus             CanonicalField = "status"
	FieldLeadScore          CanonicalField = "lead_score"
	FieldNotes              CanonicalField = "notes"
	FieldFollowupStage      CanonicalField = "followup_stage"
	FieldCallBooked         CanonicalField = "call_booked"
	FieldLeadOwner          CanonicalField = "lead_owner"
)

// headerAliases maps normalized header text to canonical fields. Keys are
// lowercase with internal whitespace collapsed to single spaces.
var headerAliases = map[string]CanonicalField{
	"company_name": FieldCompanyName,
	"company":      FieldCompanyName,
	"vendor name":  FieldCompanyName,
	"vendorname":   FieldCompanyName,
	"name":         FieldCompanyName,

	"country":      FieldCountry,
	"country name": FieldCountry,

	"website": FieldWebsite,
	"url":     FieldWebsite,

	"email":         FieldEmail,
	"contact mail":  FieldEmail,
	"contactmail":   FieldEmail,
	"contact email": FieldEmail,

	"phone":          FieldPhone,
	"contact number": FieldPhone,
	"contactnumber":  FieldPhone,
	"contact phone":  FieldPhone,

	"contact_name": FieldContactName,
	"contact name": FieldContactName,
	"contactname":  FieldContactName,

	"contact_designation": FieldContactDesignation,
	"contact designation": FieldContactDesignation,
	"designation":         FieldContactDesignation,

	"status":      FieldStatus,
	"lead status": FieldStatus,

	"lead_score": FieldLeadScore,
	"score":      FieldLeadScore,
	"lead score": FieldLeadScore,

	"notes": FieldNotes,
	"note":  FieldNotes,

	"followup stage":  FieldFollowupStage,
	"followup_stage":  FieldFollowupStage,
	"follow-up stage": FieldFollowupStage,

	"call booked": FieldCallBooked,
	"call_booked": FieldCallBooked,

	"lead_owner":  FieldLeadOwner,
	"lead owner":  FieldLeadOwner,
	"owner":       FieldLeadOwner,
	"assigned to": FieldLeadOwner,
}

// NormalizeHeader maps one raw header cell to its canonical field name.
// Lookup is case-insensitive with whitespace runs collapsed; unmatched
// headers fall back to their lowercased form with whitespace runs replaced
// by single underscores. Total: every input yields exactly one output.
func NormalizeHeader(raw string) CanonicalField {
	words := strings.Fields(strings.ToLower(raw))
	if canon, ok := headerAliases[strings.Join(words, " ")]; ok {
		return canon
	}
	return CanonicalField(strings.Join(words, "_"))
}

// Recognized reports whether f is one of the canonical lead fields, as
// opposed to a passed-through unrecognized header.
func Recognized(f CanonicalField) bool {
	switch f {
	case FieldCompanyName, FieldCountry, FieldWebsite, FieldEmail, FieldPhone,
		FieldContactName, FieldContactDesignation, FieldStatus, FieldLeadScore,
		FieldNotes, FieldFollowupStage, FieldCallBooked, FieldLeadOwner:
		return true
	}
	return false
}
