package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-cli/internal/db"
	"github.com/sells-group/lead-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// the reference-table reads issued at the start of every import session.
var preparedStatements = map[string]string{
	"list_countries":      `SELECT id, name, code FROM countries ORDER BY name`,
	"list_statuses":       `SELECT id, name, sort_order FROM lead_statuses ORDER BY sort_order`,
	"list_assignable":     `SELECT id, full_name, role FROM users WHERE role = ANY($1) ORDER BY full_name`,
	"insert_import_batch": `INSERT INTO import_batches (id, file_name, total, inserted, skipped, outcome, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS countries (
	id   TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name TEXT NOT NULL UNIQUE,
	code TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS lead_statuses (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name       TEXT NOT NULL UNIQUE,
	sort_order INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS users (
	id        TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
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
	created_at          TIMESTAMPTZ NOT NULL DEFAULT now()
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
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

INSERT INTO lead_statuses (id, name, sort_order) VALUES
	(gen_random_uuid()::text, 'New', 0),
	(gen_random_uuid()::text, 'Contacted', 1),
	(gen_random_uuid()::text, 'NDA Signed', 2),
	(gen_random_uuid()::text, 'Qualified', 3),
	(gen_random_uuid()::text, 'Won', 4),
	(gen_random_uuid()::text, 'Lost', 5)
ON CONFLICT (name) DO NOTHING;
`

// leadColumns is the COPY column list for bulk lead inserts.
var leadColumns = []string{
	"id", "company_name", "website", "email", "phone", "contact_name",
	"contact_designation", "country_id", "status_id", "lead_score",
	"notes", "owner_id", "created_at",
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// InsertLeads lands one import chunk via the COPY protocol.
func (s *PostgresStore) InsertLeads(ctx context.Context, leads []model.LeadRecord) (int, error) {
	now := time.Now().UTC()

	rows := make([][]any, 0, len(leads))
	for _, l := range leads {
		rows = append(rows, []any{
			uuid.New().String(), l.CompanyName, l.Website, l.Email, l.Phone,
			l.ContactName, l.ContactDesignation, l.CountryID, l.StatusID,
			l.LeadScore, l.Notes, l.OwnerID, now,
		})
	}

	n, err := db.CopyFrom(ctx, s.pool, "leads", leadColumns, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: insert leads")
	}
	return int(n), nil
}

func (s *PostgresStore) ListCountries(ctx context.Context) ([]model.Country, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, code FROM countries ORDER BY name`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list countries")
	}
	defer rows.Close()

	var countries []model.Country
	for rows.Next() {
		var c model.Country
		if err := rows.Scan(&c.ID, &c.Name, &c.Code); err != nil {
			return nil, eris.Wrap(err, "postgres: scan country")
		}
		countries = append(countries, c)
	}
	return countries, eris.Wrap(rows.Err(), "postgres: list countries iterate")
}

func (s *PostgresStore) ListStatuses(ctx context.Context) ([]model.Status, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, sort_order FROM lead_statuses ORDER BY sort_order`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list statuses")
	}
	defer rows.Close()

	var statuses []model.Status
	for rows.Next() {
		var st model.Status
		if err := rows.Scan(&st.ID, &st.Name, &st.SortOrder); err != nil {
			return nil, eris.Wrap(err, "postgres: scan status")
		}
		statuses = append(statuses, st)
	}
	return statuses, eris.Wrap(rows.Err(), "postgres: list statuses iterate")
}

func (s *PostgresStore) ListAssignableUsers(ctx context.Context) ([]model.User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, full_name, role FROM users WHERE role = ANY($1) ORDER BY full_name`,
		model.AssignableRoles,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list assignable users")
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.FullName, &u.Role); err != nil {
			return nil, eris.Wrap(err, "postgres: scan user")
		}
		users = append(users, u)
	}
	return users, eris.Wrap(rows.Err(), "postgres: list users iterate")
}

func (s *PostgresStore) RecordImportBatch(ctx context.Context, batch model.ImportBatch) error {
	id := batch.ID
	if id == "" {
		id = uuid.New().String()
	}
	createdAt := batch.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO import_batches (id, file_name, total, inserted, skipped, outcome, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, batch.FileName, batch.Total, batch.Inserted, batch.Skipped, batch.Outcome, createdAt,
	)
	return eris.Wrap(err, "postgres: record import batch")
}
