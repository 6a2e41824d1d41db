package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nandanihada/Survey-AI-sub001/internal/models"
)

// schemaSQL is embedded so the service can self-bootstrap its database schema.
//
//go:embed schema.sql
var schemaSQL string

// Sentinel errors surfaced to callers; pgx driver errors never leak past
// this package for these two conditions.
var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicateName = errors.New("partner name already exists")
)

// uniqueViolation is the Postgres SQLSTATE for a unique-index conflict.
const uniqueViolation = "23505"

// PostgresStore is the durable persistence layer for partners, shares,
// survey-response enrichment and the postback audit logs. It is constructed
// once in main and handed to each component explicitly.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a connection pool and fails fast if DB is unreachable.
func NewPostgresStore(dbURL string) (*PostgresStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

// EnsureSchema applies schema.sql. Safe to run multiple times.
func (p *PostgresStore) EnsureSchema() error {
	_, err := p.pool.Exec(context.Background(), schemaSQL)
	return err
}

// Ping is used by the readiness endpoint to validate DB connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close shuts down the connection pool.
func (p *PostgresStore) Close() {
	p.pool.Close()
}

// FindResponseByID resolves a survey response by its id (the click id
// carried on inbound postbacks). Returns ErrNotFound when no row exists.
func (p *PostgresStore) FindResponseByID(ctx context.Context, id string) (models.SurveyResponse, error) {
	var resp models.SurveyResponse
	err := p.pool.QueryRow(ctx, `
		SELECT id, account_id, survey_id, email, username
		FROM survey_responses
		WHERE id = $1
	`, id).Scan(&resp.ID, &resp.AccountID, &resp.SurveyID, &resp.Email, &resp.Username)

	if errors.Is(err, pgx.ErrNoRows) {
		return models.SurveyResponse{}, ErrNotFound
	}
	if err != nil {
		return models.SurveyResponse{}, err
	}
	return resp, nil
}

// EnrichResponse writes the postback_* columns onto a matched response.
// Only the enrichment columns are touched; the rest of the row is owned by
// the survey pipeline.
func (p *PostgresStore) EnrichResponse(ctx context.Context, id string, event models.ConversionEvent) error {
	tag, err := p.pool.Exec(ctx, `
		UPDATE survey_responses
		SET postback_status         = $2,
		    postback_reward         = $3,
		    postback_currency       = $4,
		    postback_transaction_id = $5,
		    postback_received_at    = $6
		WHERE id = $1
	`, id, event.ConversionStatus, event.Payout, event.Currency, event.TransactionID, event.Timestamp)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CreatePartner inserts a new partner. The unique index on name is the
// enforcement point for name uniqueness; a conflict maps to ErrDuplicateName.
func (p *PostgresStore) CreatePartner(ctx context.Context, partner models.Partner) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO partners (name, url, status, created_at)
		VALUES ($1, $2, $3, $4)
	`, partner.Name, partner.URL, partner.Status, partner.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicateName
	}
	return err
}

// FindPartnerByName returns ErrNotFound for unknown names; callers on the
// dispatch path treat that as a skip, not a failure.
func (p *PostgresStore) FindPartnerByName(ctx context.Context, name string) (models.Partner, error) {
	var partner models.Partner
	err := p.pool.QueryRow(ctx, `
		SELECT name, url, status, created_at
		FROM partners
		WHERE name = $1
	`, name).Scan(&partner.Name, &partner.URL, &partner.Status, &partner.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return models.Partner{}, ErrNotFound
	}
	if err != nil {
		return models.Partner{}, err
	}
	return partner, nil
}

// ListPartners returns every configured partner, newest first.
func (p *PostgresStore) ListPartners(ctx context.Context) ([]models.Partner, error) {
	return p.scanPartners(ctx, `
		SELECT name, url, status, created_at
		FROM partners
		ORDER BY created_at DESC
	`)
}

// ListActivePartners returns only partners eligible for dispatch.
func (p *PostgresStore) ListActivePartners(ctx context.Context) ([]models.Partner, error) {
	return p.scanPartners(ctx, `
		SELECT name, url, status, created_at
		FROM partners
		WHERE status = 'active'
		ORDER BY created_at DESC
	`)
}

func (p *PostgresStore) scanPartners(ctx context.Context, query string) ([]models.Partner, error) {
	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var partners []models.Partner
	for rows.Next() {
		var partner models.Partner
		if err := rows.Scan(&partner.Name, &partner.URL, &partner.Status, &partner.CreatedAt); err != nil {
			return nil, err
		}
		partners = append(partners, partner)
	}
	return partners, rows.Err()
}

// UpdatePartnerStatus flips a partner between active and inactive.
func (p *PostgresStore) UpdatePartnerStatus(ctx context.Context, name, status string) error {
	tag, err := p.pool.Exec(ctx, `
		UPDATE partners SET status = $2 WHERE name = $1
	`, name, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateShare configures an account → partner forwarding mapping. The
// partner name is deliberately not foreign-keyed: a dangling name is
// tolerated at dispatch time rather than rejected at write time, matching
// how operators stage configuration.
func (p *PostgresStore) CreateShare(ctx context.Context, share models.PostbackShare) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO postback_shares (account_id, partner_name, created_at)
		VALUES ($1, $2, $3)
	`, share.AccountID, share.PartnerName, share.CreatedAt)
	return err
}

// ListSharesForAccount returns the forwarding configuration for one account.
func (p *PostgresStore) ListSharesForAccount(ctx context.Context, accountID string) ([]models.PostbackShare, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT account_id, partner_name, created_at
		FROM postback_shares
		WHERE account_id = $1
		ORDER BY created_at
	`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shares []models.PostbackShare
	for rows.Next() {
		var share models.PostbackShare
		if err := rows.Scan(&share.AccountID, &share.PartnerName, &share.CreatedAt); err != nil {
			return nil, err
		}
		shares = append(shares, share)
	}
	return shares, rows.Err()
}

// AppendInbound records one inbound postback receipt. Append-only.
func (p *PostgresStore) AppendInbound(ctx context.Context, entry models.InboundLog) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO inbound_logs (event_id, log_type, success, click_id, source_ip, ts)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, entry.EventID, entry.Type, entry.Success, entry.ClickID, entry.SourceIP, entry.Timestamp)
	return err
}

// AppendOutbound records one dispatch attempt. Exactly one row per attempt
// is the audit contract, so this is called regardless of outcome.
func (p *PostgresStore) AppendOutbound(ctx context.Context, attempt models.PostbackAttempt) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO outbound_logs (event_id, partner_name, url, success, response_code, ts)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, attempt.EventID, attempt.PartnerName, attempt.URL, attempt.Success, attempt.ResponseCode, attempt.Timestamp)
	return err
}

// clampLimit applies the default and cap for audit queries.
func clampLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > 500 {
		return 500
	}
	return limit
}

// ListInbound returns inbound receipts newest-first, optionally filtered by
// click id or event id.
func (p *PostgresStore) ListInbound(ctx context.Context, filter models.LogFilter) ([]models.InboundLog, error) {
	query := `
		SELECT event_id, log_type, success, click_id, source_ip, ts
		FROM inbound_logs
		WHERE 1=1`
	args := []any{}

	if filter.ClickID != "" {
		args = append(args, filter.ClickID)
		query += fmt.Sprintf(" AND click_id = $%d", len(args))
	}
	if filter.EventID != "" {
		args = append(args, filter.EventID)
		query += fmt.Sprintf(" AND event_id = $%d", len(args))
	}
	args = append(args, clampLimit(filter.Limit))
	query += fmt.Sprintf(" ORDER BY ts DESC LIMIT $%d", len(args))

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.InboundLog
	for rows.Next() {
		var entry models.InboundLog
		if err := rows.Scan(&entry.EventID, &entry.Type, &entry.Success, &entry.ClickID, &entry.SourceIP, &entry.Timestamp); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// ListOutbound returns dispatch attempts newest-first, optionally filtered
// by partner name or event id.
func (p *PostgresStore) ListOutbound(ctx context.Context, filter models.LogFilter) ([]models.PostbackAttempt, error) {
	query := `
		SELECT event_id, partner_name, url, success, response_code, ts
		FROM outbound_logs
		WHERE 1=1`
	args := []any{}

	if filter.PartnerName != "" {
		args = append(args, filter.PartnerName)
		query += fmt.Sprintf(" AND partner_name = $%d", len(args))
	}
	if filter.EventID != "" {
		args = append(args, filter.EventID)
		query += fmt.Sprintf(" AND event_id = $%d", len(args))
	}
	args = append(args, clampLimit(filter.Limit))
	query += fmt.Sprintf(" ORDER BY ts DESC LIMIT $%d", len(args))

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []models.PostbackAttempt
	for rows.Next() {
		var attempt models.PostbackAttempt
		if err := rows.Scan(&attempt.EventID, &attempt.PartnerName, &attempt.URL, &attempt.Success, &attempt.ResponseCode, &attempt.Timestamp); err != nil {
			return nil, err
		}
		attempts = append(attempts, attempt)
	}
	return attempts, rows.Err()
}
