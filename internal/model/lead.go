package model

import "time"

// Country is a reference-table entry leads resolve their country text against.
type Country struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// Status is a pipeline stage a lead can sit in. SortOrder defines the
// kanban column order; the first status by ascending sort order is the
// default for imported leads.
type Status struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
}

// User is a directory entry. Only users holding an assignable role can be
// set as a lead owner.
type User struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// AssignableRoles lists the roles whose holders may own leads.
var AssignableRoles = []string{"admin", "employee"}

// LeadRecord is the insert payload for one lead. Nullable fields are
// pointers; nil means the column stays NULL in the store.
type LeadRecord struct {
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
}

// ImportBatch records the outcome of one confirmed import.
type ImportBatch struct {
	ID        string    `json:"id"`
	FileName  string    `json:"file_name"`
	Total     int       `json:"total"`
	Inserted  int       `json:"inserted"`
	Skipped   int       `json:"skipped"`
	Outcome   string    `json:"outcome"`
	CreatedAt time.Time `json:"created_at"`
}

// Import batch outcomes.
const (
	BatchOutcomeComplete = "complete"
	BatchOutcomePartial  = "partial"
)
