package store

import (
	"context"

	"github.com/sells-group/lead-cli/internal/model"
)

// Store defines the persistence interface for the lead importer.
type Store interface {
	// Leads
	InsertLeads(ctx context.Context, leads []model.LeadRecord) (int, error)

	// Reference tables
	ListCountries(ctx context.Context) ([]model.Country, error)
	ListStatuses(ctx context.Context) ([]model.Status, error)
	ListAssignableUsers(ctx context.Context) ([]model.User, error)

	// Import audit
	RecordImportBatch(ctx context.Context, batch model.ImportBatch) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
