package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/lead-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. It backs offline
// and single-user deployments where running Postgres is overkill.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS countries (
	id   TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	code TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS lead_statuses (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL UNIQUE,
	sort_order INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS users (
	id        TEXT PRIMARY KEY,
	full_name TEXT NOT NULL,
	role      TEXT NOT NULL DEFAULT 'employee'
);

CREATE TABLE IF NOT EXISTS leads (
	id                  TEXT PRIMARY KEY,
	company_name        TEXT NOT NULL,
	website             TEXT,
	email               TEXT,
	phone               TEXT,
	contact_name        TEXT,
	contact_designation TEXT,
	country_id          TEXT REFERENCES countries(id),
	status_id           TEXT REFERENCES lead_statuses(id),
	lead_score          INTEGER NOT NULL DEFAULT 50,
	notes               TEXT,
	owner_id            TEXT REFERENCES users(id),
	created_at          DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_leads_status_id ON leads(status_id);
CREATE INDEX IF NOT EXISTS idx_leads_owner_id ON leads(owner_id);
CREATE INDEX IF NOT EXISTS idx_leads_country_id ON leads(country_id);

CREATE TABLE IF NOT EXISTS import_batches (
	id         TEXT PRIMARY KEY,
	file_name  TEXT NOT NULL,
	total      INTEGER NOT NULL,
	inserted   INTEGER NOT NULL,
	skipped    INTEGER NOT NULL,
	outcome    TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);
`

// defaultStatuses seeds the pipeline stages on first migration.
var defaultStatuses = []model.Status{
	{Name: "New", SortOrder: 0},
	{Name: "Contacted", SortOrder: 1},
	{Name: "NDA Signed", SortOrder: 2},
	{Name: "Qualified", SortOrder: 3},
	{Name: "Won", SortOrder: 4},
	{Name: "Lost", SortOrder: 5},
}

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteMigration); err != nil {
		return eris.Wrap(err, "sqlite: migrate")
	}
	for _, st := range defaultStatuses {
		_, err := s.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO lead_statuses (id, name, sort_order) VALUES (?, ?, ?)`,
			uuid.New().String(), st.Name, st.SortOrder,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: seed status %s", st.Name)
		}
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// InsertLeads inserts one import chunk inside a transaction so a chunk
// either lands whole or not at all.
func (s *SQLiteStore) InsertLeads(ctx context.Context, leads []model.LeadRecord) (int, error) {
	if len(leads) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO leads (id, company_name, website, email, phone, contact_name, contact_designation, country_id, status_id, lead_score, notes, owner_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare insert lead")
	}
	defer stmt.Close() //nolint:errcheck

	now := time.Now().UTC()
	for _, l := range leads {
		_, err := stmt.ExecContext(ctx,
			uuid.New().String(), l.CompanyName, l.Website, l.Email, l.Phone,
			l.ContactName, l.ContactDesignation, l.CountryID, l.StatusID,
			l.LeadScore, l.Notes, l.OwnerID, now,
		)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert lead %s", l.CompanyName)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit tx")
	}
	return len(leads), nil
}

func (s *SQLiteStore) ListCountries(ctx context.Context) ([]model.Country, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, code FROM countries ORDER BY name`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list countries")
	}
	defer rows.Close() //nolint:errcheck

	var countries []model.Country
	for rows.Next() {
		var c model.Country
		if err := rows.Scan(&c.ID, &c.Name, &c.Code); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan country")
		}
		countries = append(countries, c)
	}
	return countries, eris.Wrap(rows.Err(), "sqlite: list countries iterate")
}

func (s *SQLiteStore) ListStatuses(ctx context.Context) ([]model.Status, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, sort_order FROM lead_statuses ORDER BY sort_order`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list statuses")
	}
	defer rows.Close() //nolint:errcheck

	var statuses []model.Status
	for rows.Next() {
		var st model.Status
		if err := rows.Scan(&st.ID, &st.Name, &st.SortOrder); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan status")
		}
		statuses = append(statuses, st)
	}
	return statuses, eris.Wrap(rows.Err(), "sqlite: list statuses iterate")
}

func (s *SQLiteStore) ListAssignableUsers(ctx context.Context) ([]model.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, full_name, role FROM users WHERE role IN (?, ?) ORDER BY full_name`,
		model.AssignableRoles[0], model.AssignableRoles[1],
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list assignable users")
	}
	defer rows.Close() //nolint:errcheck

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.FullName, &u.Role); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan user")
		}
		users = append(users, u)
	}
	return users, eris.Wrap(rows.Err(), "sqlite: list users iterate")
}

func (s *SQLiteStore) RecordImportBatch(ctx context.Context, batch model.ImportBatch) error {
	id := batch.ID
	if id == "" {
		id = uuid.New().String()
	}
	createdAt := batch.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO import_batches (id, file_name, total, inserted, skipped, outcome, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, batch.FileName, batch.Total, batch.Inserted, batch.Skipped, batch.Outcome, createdAt,
	)
	return eris.Wrap(err, "sqlite: record import batch")
}
