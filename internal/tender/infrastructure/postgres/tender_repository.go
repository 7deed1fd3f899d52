package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"

	tender "procurement-core/internal/tender/domain"
)

// TenderRepository persists tender aggregates as whole JSON documents guarded
// by a version column. The version doubles as the revision token handed to
// callers; a stale token makes Save fail with a conflict.
type TenderRepository struct {
	db *sql.DB
}

// NewTenderRepository constructs a repository.
func NewTenderRepository(db *sql.DB) *TenderRepository {
	return &TenderRepository{db: db}
}

// EnsureSchema creates the tenders table when missing.
func (r *TenderRepository) EnsureSchema(ctx context.Context) error {
	if r == nil || r.db == nil {
		return errors.New("tender repo: nil db")
	}
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS tenders (
	id            TEXT PRIMARY KEY,
	doc           JSONB NOT NULL,
	owner_token   TEXT NOT NULL DEFAULT '',
	version       BIGINT NOT NULL,
	date_modified TIMESTAMPTZ NOT NULL DEFAULT now()
)`)
	return err
}

// Create inserts a new tender document at version 1.
func (r *TenderRepository) Create(ctx context.Context, t *tender.Tender) error {
	if r == nil || r.db == nil {
		return errors.New("tender repo: nil db")
	}
	if t == nil {
		return tender.ErrNilTender
	}
	doc, err := json.Marshal(t)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO tenders (id, doc, owner_token, version, date_modified)
VALUES ($1, $2, $3, 1, $4)`,
		t.ID, doc, t.OwnerToken, t.DateModified)
	return err
}

// Load returns the aggregate and its revision token.
func (r *TenderRepository) Load(ctx context.Context, tenderID string) (*tender.Tender, string, error) {
	if r == nil || r.db == nil {
		return nil, "", errors.New("tender repo: nil db")
	}
	var (
		doc        []byte
		ownerToken string
		version    int64
	)
	err := r.db.QueryRowContext(ctx, `
SELECT doc, owner_token, version
FROM tenders
WHERE id = $1`, tenderID).Scan(&doc, &ownerToken, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", tender.NewNotFound("tender_id")
	}
	if err != nil {
		return nil, "", err
	}
	var t tender.Tender
	if err := json.Unmarshal(doc, &t); err != nil {
		return nil, "", err
	}
	t.OwnerToken = ownerToken
	return &t, strconv.FormatInt(version, 10), nil
}

// Save writes the aggregate back, failing with a conflict when the revision
// token is stale. The conflict is retryable only by reloading first.
func (r *TenderRepository) Save(ctx context.Context, t *tender.Tender, revision string) error {
	if r == nil || r.db == nil {
		return errors.New("tender repo: nil db")
	}
	if t == nil {
		return tender.ErrNilTender
	}
	version, err := strconv.ParseInt(revision, 10, 64)
	if err != nil {
		return tender.NewConflict("invalid revision token")
	}
	doc, err := json.Marshal(t)
	if err != nil {
		return err
	}
	result, err := r.db.ExecContext(ctx, `
UPDATE tenders
SET doc = $2, owner_token = $3, version = version + 1, date_modified = $4
WHERE id = $1 AND version = $5`,
		t.ID, doc, t.OwnerToken, t.DateModified, version)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return tender.NewConflict("tender was modified concurrently, please retry with a fresh read")
	}
	return nil
}
