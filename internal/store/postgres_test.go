package store

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lead-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS countries`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_InsertLeads(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectCopyFrom(pgx.Identifier{"leads"}, leadColumns).WillReturnResult(2)

	web := "https://acme.example.com"
	n, err := s.InsertLeads(context.Background(), []model.LeadRecord{
		{CompanyName: "Acme", Website: &web, LeadScore: 85},
		{CompanyName: "Beta", LeadScore: 50},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_InsertLeads_Empty(t *testing.T) {
	s, _ := newMockPostgresStore(t)

	n, err := s.InsertLeads(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPostgresStore_InsertLeads_Error(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectCopyFrom(pgx.Identifier{"leads"}, leadColumns).
		WillReturnError(pgx.ErrTxClosed)

	_, err := s.InsertLeads(context.Background(), []model.LeadRecord{{CompanyName: "Acme"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert leads")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListCountries(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, name, code FROM countries ORDER BY name`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "code"}).
			AddRow("c1", "Germany", "DE").
			AddRow("c2", "India", "IN"))

	countries, err := s.ListCountries(context.Background())
	require.NoError(t, err)
	require.Len(t, countries, 2)
	assert.Equal(t, model.Country{ID: "c2", Name: "India", Code: "IN"}, countries[1])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListStatuses(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, name, sort_order FROM lead_statuses ORDER BY sort_order`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "sort_order"}).
			AddRow("s1", "New", 0).
			AddRow("s2", "Contacted", 1))

	statuses, err := s.ListStatuses(context.Background())
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.Equal(t, "New", statuses[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListAssignableUsers(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, full_name, role FROM users WHERE role = ANY`).
		WithArgs(model.AssignableRoles).
		WillReturnRows(pgxmock.NewRows([]string{"id", "full_name", "role"}).
			AddRow("u1", "Jane Doe", "admin"))

	users, err := s.ListAssignableUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Jane Doe", users[0].FullName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_RecordImportBatch(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO import_batches`).
		WithArgs(pgxmock.AnyArg(), "leads.csv", 3, 2, 1, model.BatchOutcomeComplete, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.RecordImportBatch(context.Background(), model.ImportBatch{
		FileName: "leads.csv",
		Total:    3,
		Inserted: 2,
		Skipped:  1,
		Outcome:  model.BatchOutcomeComplete,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListCountries_QueryError(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, name, code FROM countries`).
		WillReturnError(pgx.ErrTxClosed)

	_, err := s.ListCountries(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list countries")
}
