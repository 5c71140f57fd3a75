package project

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"projectdir/pkg/platform/sentinel"
)

// uniqueViolation is the PostgreSQL SQLSTATE for a unique constraint error.
const uniqueViolation = "23505"

// schema is applied at startup. The group_id indexes are deliberately
// non-unique: many country and key rows share one group id.
const schema = `
CREATE TABLE IF NOT EXISTS projects (
	id            BIGINT PRIMARY KEY,
	project_name  TEXT NOT NULL,
	creation_date TIMESTAMPTZ NOT NULL,
	expiry_date   TIMESTAMPTZ NOT NULL,
	enabled       BOOLEAN NOT NULL,
	project_cost  DOUBLE PRECISION NOT NULL,
	project_url   TEXT
);

CREATE TABLE IF NOT EXISTS countries (
	id       BIGSERIAL PRIMARY KEY,
	group_id BIGINT NOT NULL,
	country  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS countries_group_id_idx ON countries (group_id);

CREATE TABLE IF NOT EXISTS keys (
	id       BIGSERIAL PRIMARY KEY,
	group_id BIGINT NOT NULL,
	number   BIGINT NOT NULL,
	keyword  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS keys_group_id_idx ON keys (group_id);
`

// PostgresStore persists project groups in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the tables and indexes if they do not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateGroup(ctx context.Context, group Group) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create group tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	p := group.Project
	_, err = tx.ExecContext(ctx, `
		INSERT INTO projects (id, project_name, creation_date, expiry_date, enabled, project_cost, project_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, p.ID, p.Name, p.CreationDate, p.ExpiryDate, p.Enabled, p.Cost, p.URL)
	if err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert project: %w", err)
	}

	for _, c := range group.Countries {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO countries (group_id, country) VALUES ($1, $2)
		`, p.ID, c.Country); err != nil {
			return fmt.Errorf("insert country: %w", err)
		}
	}
	for _, k := range group.Keys {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO keys (group_id, number, keyword) VALUES ($1, $2, $3)
		`, p.ID, k.Number, k.Keyword); err != nil {
			return fmt.Errorf("insert key: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create group tx: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id int64) (*Project, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, project_name, creation_date, expiry_date, enabled, project_cost, project_url
		FROM projects
		WHERE id = $1
	`, id)
	return scanProject(row)
}

func (s *PostgresStore) BestMatch(ctx context.Context, match Match) (*Project, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT p.id, p.project_name, p.creation_date, p.expiry_date, p.enabled, p.project_cost, p.project_url
		FROM projects p
		WHERE p.expiry_date > $1
		  AND p.enabled
		  AND p.project_url IS NOT NULL
		  AND p.project_url <> ''
	`)
	args := []any{match.Now}

	if match.Country != nil {
		args = append(args, *match.Country)
		fmt.Fprintf(&sb, `
		  AND EXISTS (SELECT 1 FROM countries c WHERE c.group_id = p.id AND c.country = $%d)`, len(args))
	}
	if match.MinNumber != nil {
		args = append(args, *match.MinNumber)
		fmt.Fprintf(&sb, `
		  AND EXISTS (SELECT 1 FROM keys k WHERE k.group_id = p.id AND k.number >= $%d)`, len(args))
	}
	if match.Keyword != nil {
		args = append(args, *match.Keyword)
		fmt.Fprintf(&sb, `
		  AND EXISTS (SELECT 1 FROM keys k WHERE k.group_id = p.id AND k.keyword = $%d)`, len(args))
	}

	// Equal costs break toward the lowest id so selection stays
	// deterministic regardless of storage order.
	sb.WriteString(`
		ORDER BY p.project_cost DESC, p.id ASC
		LIMIT 1
	`)

	row := s.db.QueryRowContext(ctx, sb.String(), args...)
	return scanProject(row)
}

func scanProject(row *sql.Row) (*Project, error) {
	var p Project
	var url sql.NullString
	err := row.Scan(&p.ID, &p.Name, &p.CreationDate, &p.ExpiryDate, &p.Enabled, &p.Cost, &url)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan project: %w", err)
	}
	if url.Valid {
		p.URL = &url.String
	}
	return &p, nil
}
