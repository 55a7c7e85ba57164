package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/url-hashprefix/internal/analytics"
)

const auditSchema = `
	CREATE TABLE IF NOT EXISTS lookup_audit (
		id               BIGSERIAL PRIMARY KEY,
		request_id       TEXT NOT NULL,
		raw_url          TEXT NOT NULL,
		canonical        TEXT,
		bits             INTEGER NOT NULL,
		expression_count INTEGER NOT NULL,
		cache_hit        BOOLEAN NOT NULL DEFAULT FALSE,
		client_ip        TEXT,
		user_agent       TEXT,
		computed_at      TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS lookup_audit_canonical_idx ON lookup_audit (canonical);
	CREATE INDEX IF NOT EXISTS lookup_audit_computed_at_idx ON lookup_audit (computed_at);
`

// AuditRecord is one row of the lookup audit trail.
type AuditRecord struct {
	RequestID       string
	RawURL          string
	Canonical       string
	Bits            int
	ExpressionCount int
	CacheHit        bool
	ComputedAt      time.Time
}

// PostgresAuditStore is a PostgreSQL implementation of analytics.Store.
type PostgresAuditStore struct {
	pool *pgxpool.Pool
}

// NewPostgresAuditStore creates a new PostgreSQL-backed audit store.
func NewPostgresAuditStore(pool *pgxpool.Pool) *PostgresAuditStore {
	return &PostgresAuditStore{pool: pool}
}

// Migrate creates the audit table when it does not exist yet.
func (p *PostgresAuditStore) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, auditSchema); err != nil {
		return fmt.Errorf("migrate lookup_audit: %w", err)
	}

	return nil
}

func (p *PostgresAuditStore) SavePrefixesComputed(ctx context.Context, event *analytics.PrefixesComputedEvent) error {
	query := `
		INSERT INTO lookup_audit
			(request_id, raw_url, canonical, bits, expression_count, cache_hit, client_ip, user_agent, computed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := p.pool.Exec(ctx, query,
		event.RequestID,
		event.RawURL,
		nullableString(event.Canonical),
		event.Bits,
		event.ExpressionCount,
		event.CacheHit,
		nullableString(event.ClientIP),
		nullableString(event.UserAgent),
		event.ComputedAt,
	)

	return err
}

// RecentByCanonical returns the latest audit records for a canonical URL, newest first.
func (p *PostgresAuditStore) RecentByCanonical(ctx context.Context, canonical string, limit int) ([]AuditRecord, error) {
	query := `
		SELECT request_id, raw_url, canonical, bits, expression_count, cache_hit, computed_at
		FROM lookup_audit
		WHERE canonical = $1
		ORDER BY computed_at DESC
		LIMIT $2
	`

	rows, err := p.pool.Query(ctx, query, canonical, limit)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (AuditRecord, error) {
		var (
			rec   AuditRecord
			canon *string
		)

		err := row.Scan(
			&rec.RequestID,
			&rec.RawURL,
			&canon,
			&rec.Bits,
			&rec.ExpressionCount,
			&rec.CacheHit,
			&rec.ComputedAt,
		)
		if canon != nil {
			rec.Canonical = *canon
		}

		return rec, err
	})
}

// Ping checks database connectivity.
func (p *PostgresAuditStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

// Compile-time check.
var _ analytics.Store = (*PostgresAuditStore)(nil)
