package memory

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"

	tender "procurement-core/internal/tender/domain"
)

type record struct {
	doc        []byte
	ownerToken string
	version    int64
}

// TenderRepository is an in-memory document store for demo/testing. Documents
// round-trip through JSON so each Load hands out a detached copy, matching
// the value semantics of the real store.
type TenderRepository struct {
	mu   sync.RWMutex
	data map[string]*record
}

// NewTenderRepository constructs a repository.
func NewTenderRepository() *TenderRepository {
	return &TenderRepository{data: make(map[string]*record)}
}

// Create inserts a new tender document at version 1.
func (r *TenderRepository) Create(ctx context.Context, t *tender.Tender) error {
	_ = ctx
	if t == nil {
		return tender.ErrNilTender
	}
	doc, err := json.Marshal(t)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[t.ID] = &record{doc: doc, ownerToken: t.OwnerToken, version: 1}
	return nil
}

// Load returns a detached aggregate copy and its revision token.
func (r *TenderRepository) Load(ctx context.Context, tenderID string) (*tender.Tender, string, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec := r.data[tenderID]
	if rec == nil {
		return nil, "", tender.NewNotFound("tender_id")
	}
	var t tender.Tender
	if err := json.Unmarshal(rec.doc, &t); err != nil {
		return nil, "", err
	}
	t.OwnerToken = rec.ownerToken
	return &t, strconv.FormatInt(rec.version, 10), nil
}

// Save writes the aggregate back, failing with a conflict on a stale revision.
func (r *TenderRepository) Save(ctx context.Context, t *tender.Tender, revision string) error {
	_ = ctx
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
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := r.data[t.ID]
	if rec == nil {
		return tender.NewNotFound("tender_id")
	}
	if rec.version != version {
		return tender.NewConflict("tender was modified concurrently, please retry with a fresh read")
	}
	rec.doc = doc
	rec.ownerToken = t.OwnerToken
	rec.version++
	return nil
}
