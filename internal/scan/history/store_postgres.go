package history

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"twigascan/internal/scan/payload"
	"twigascan/pkg/platform/sentinel"
)

//go:embed schema.sql
var schema string

const uniqueViolation = "23505"

const recordColumns = `
	scan_id, scanned_at, raw_content, content_type, parsed_data, provider,
	auth_status, verification_results, warnings, normalized_identifier,
	first_seen, usage_count, device_id, ip_address, user_agent, browser, os,
	mobile, user_action, outcome`

// PostgresStore persists scan records in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the scan_logs table and its indexes if missing.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate scan history: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindEarliest(ctx context.Context, identifier string) (*Entry, error) {
	query := `
		SELECT scan_id, scanned_at, first_seen
		FROM scan_logs
		WHERE normalized_identifier = $1
		ORDER BY scanned_at ASC
		LIMIT 1
	`
	var e Entry
	err := s.db.QueryRowContext(ctx, query, pgText(identifier)).Scan(&e.ScanID, &e.Timestamp, &e.FirstSeen)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("identifier %q: %w", identifier, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find earliest scan: %w", err)
	}
	return &e, nil
}

func (s *PostgresStore) Count(ctx context.Context, identifier string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM scan_logs WHERE normalized_identifier = $1`, pgText(identifier),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count scans: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) Append(ctx context.Context, r *Record) error {
	if r == nil {
		return fmt.Errorf("scan record is required")
	}
	verification, err := json.Marshal(r.Verification)
	if err != nil {
		return fmt.Errorf("encode verification results: %w", err)
	}
	warnings := r.Warnings
	if warnings == nil {
		warnings = []string{}
	}

	query := `INSERT INTO scan_logs (` + recordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`
	_, err = s.db.ExecContext(ctx, query,
		r.ScanID,
		r.Timestamp,
		pgText(r.RawContent),
		string(r.ContentType),
		nullJSON(r.ParsedData),
		pgText(r.Provider),
		string(r.AuthStatus),
		pgJSON(verification),
		pq.Array(pgTexts(warnings)),
		nullString(pgText(r.NormalizedIdentifier)),
		r.FirstSeen,
		r.UsageCount,
		pgText(r.Device.DeviceID),
		pgText(r.Device.IPAddress),
		pgText(r.Device.UserAgent),
		pgText(r.Device.Browser),
		pgText(r.Device.OS),
		r.Device.Mobile,
		string(r.UserAction),
		pgText(r.Outcome),
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("scan %s: %w", r.ScanID, sentinel.ErrConflict)
		}
		return fmt.Errorf("append scan: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, scanID uuid.UUID) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM scan_logs WHERE scan_id = $1`, scanID)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("scan %s: %w", scanID, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get scan: %w", err)
	}
	return r, nil
}

func (s *PostgresStore) List(ctx context.Context, limit, offset int) ([]*Record, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM scan_logs`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count scan history: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM scan_logs ORDER BY scanned_at DESC, scan_id LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list scan history: %w", err)
	}
	defer rows.Close()

	records := make([]*Record, 0, limit)
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan history row: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list scan history: %w", err)
	}
	return records, total, nil
}

func (s *PostgresStore) UpdateAction(ctx context.Context, scanID uuid.UUID, action UserAction, outcome string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`UPDATE scan_logs SET user_action = $2, outcome = $3 WHERE scan_id = $1 RETURNING `+recordColumns,
		scanID, string(action), pgText(outcome),
	)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("scan %s: %w", scanID, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update scan action: %w", err)
	}
	return r, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var (
		r            Record
		contentType  string
		authStatus   string
		parsedData   []byte
		verification []byte
		identifier   sql.NullString
		userAction   string
	)
	err := row.Scan(
		&r.ScanID,
		&r.Timestamp,
		&r.RawContent,
		&contentType,
		&parsedData,
		&r.Provider,
		&authStatus,
		&verification,
		pq.Array(&r.Warnings),
		&identifier,
		&r.FirstSeen,
		&r.UsageCount,
		&r.Device.DeviceID,
		&r.Device.IPAddress,
		&r.Device.UserAgent,
		&r.Device.Browser,
		&r.Device.OS,
		&r.Device.Mobile,
		&userAction,
		&r.Outcome,
	)
	if err != nil {
		return nil, err
	}
	r.ContentType = payload.ContentType(contentType)
	r.AuthStatus = payload.AuthStatus(authStatus)
	r.NormalizedIdentifier = identifier.String
	r.UserAction = UserAction(userAction)
	if len(parsedData) > 0 {
		r.ParsedData = json.RawMessage(parsedData)
	}
	if err := json.Unmarshal(verification, &r.Verification); err != nil {
		return nil, fmt.Errorf("decode verification results: %w", err)
	}
	return &r, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return pgJSON(raw)
}
