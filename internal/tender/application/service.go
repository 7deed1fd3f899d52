package application

import (
	"context"
	"errors"
	"log"
	"time"

	"procurement-core/internal/auth"
	"procurement-core/internal/observability/metrics"
	tender "procurement-core/internal/tender/domain"
)

// Storage loads and persists whole tender aggregates. Save must fail with a
// conflict error when the revision no longer matches the stored document;
// the conflict is surfaced to the caller, never retried here.
type Storage interface {
	Load(ctx context.Context, tenderID string) (*tender.Tender, string, error)
	Save(ctx context.Context, t *tender.Tender, revision string) error
}

// Clock provides time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// Service orchestrates award/contract requests: load the aggregate, enforce
// permissions and invariants, mutate, recompute tender status, save once.
type Service struct {
	store    Storage
	clock    Clock
	variants map[string]tender.ProcedureVariant
	logger   *log.Logger
}

// ServiceOption customizes the service.
type ServiceOption func(*Service)

// WithClock assigns a clock.
func WithClock(clock Clock) ServiceOption {
	return func(s *Service) {
		s.clock = clock
	}
}

// WithLogger assigns a logger.
func WithLogger(logger *log.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService constructs a tender service.
func NewService(store Storage, variants map[string]tender.ProcedureVariant, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, errors.New("tender service: nil storage")
	}
	if len(variants) == 0 {
		return nil, errors.New("tender service: no procedure variants")
	}
	service := &Service{
		store:    store,
		clock:    systemClock{},
		variants: variants,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

func (s *Service) variantFor(t *tender.Tender) tender.ProcedureVariant {
	if v, ok := s.variants[t.ProcurementMethodType]; ok {
		return v
	}
	return tender.Reporting()
}

func (s *Service) load(ctx context.Context, tenderID string) (*tender.Tender, string, error) {
	t, revision, err := s.store.Load(ctx, tenderID)
	if err != nil {
		return nil, "", err
	}
	if err := t.CheckInvariants(); err != nil {
		if s.logger != nil {
			s.logger.Printf("tender %s failed invariant check: %v", tenderID, err)
		}
		return nil, "", err
	}
	return t, revision, nil
}

func (s *Service) save(ctx context.Context, t *tender.Tender, revision string, now time.Time) error {
	t.DateModified = now
	err := s.store.Save(ctx, t, revision)
	if tender.KindOf(err) == tender.KindConflict {
		metrics.IncSaveConflict()
	}
	return err
}

var errForbidden = &tender.Error{
	Kind:        tender.KindPreconditionFailed,
	Location:    "url",
	Name:        "permission",
	Description: "Forbidden",
}

func ensureEditPermission(ctx context.Context, t *tender.Tender) error {
	if auth.CanEdit(ctx, t.Owner) {
		return nil
	}
	return errForbidden
}

// GetTender returns the aggregate for read access.
func (s *Service) GetTender(ctx context.Context, tenderID string) (*tender.Tender, error) {
	t, _, err := s.load(ctx, tenderID)
	return t, err
}

// ListContracts returns the tender's contracts in creation order.
func (s *Service) ListContracts(ctx context.Context, tenderID string) ([]*tender.Contract, error) {
	t, _, err := s.load(ctx, tenderID)
	if err != nil {
		return nil, err
	}
	return t.Contracts, nil
}

// GetContract returns one contract.
func (s *Service) GetContract(ctx context.Context, tenderID, contractID string) (*tender.Contract, error) {
	t, _, err := s.load(ctx, tenderID)
	if err != nil {
		return nil, err
	}
	c := t.ContractByID(contractID)
	if c == nil {
		return nil, tender.NewNotFound("contract_id")
	}
	return c, nil
}

// GetContractGroup returns a contract together with its merge group awards,
// as needed by the export renderers.
func (s *Service) GetContractGroup(ctx context.Context, tenderID, contractID string) (*tender.Tender, *tender.Contract, error) {
	t, _, err := s.load(ctx, tenderID)
	if err != nil {
		return nil, nil, err
	}
	c := t.ContractByID(contractID)
	if c == nil {
		return nil, nil, tender.NewNotFound("contract_id")
	}
	return t, c, nil
}

// ListAwards returns the tender's awards in creation order.
func (s *Service) ListAwards(ctx context.Context, tenderID string) ([]*tender.Award, error) {
	t, _, err := s.load(ctx, tenderID)
	if err != nil {
		return nil, err
	}
	return t.Awards, nil
}

// AwardRequest carries the accepted fields for award creation.
type AwardRequest struct {
	Title       string                `json:"title,omitempty"`
	Description string                `json:"description,omitempty"`
	LotID       string                `json:"lotID,omitempty"`
	Qualified   bool                  `json:"qualified,omitempty"`
	Suppliers   []tender.Organization `json:"suppliers"`
	Value       *tender.Value         `json:"value,omitempty"`
}

// CreateAward appends a pending award to the tender.
func (s *Service) CreateAward(ctx context.Context, tenderID string, req AwardRequest) (*tender.Award, error) {
	started := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveRequest("award_create", result, time.Since(started))
	}()

	t, revision, err := s.load(ctx, tenderID)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	if err := ensureEditPermission(ctx, t); err != nil {
		result = metrics.ResultError
		return nil, err
	}
	now := s.clock.Now()
	award := &tender.Award{
		Title:       req.Title,
		Description: req.Description,
		LotID:       req.LotID,
		Qualified:   req.Qualified,
		Suppliers:   req.Suppliers,
		Value:       req.Value,
	}
	if err := t.AddAward(award, now); err != nil {
		result = metrics.ResultError
		return nil, err
	}
	t.RecomputeStatus()
	if err := s.save(ctx, t, revision, now); err != nil {
		result = metrics.ResultError
		return nil, err
	}
	return award, nil
}

// PatchAward applies a typed award patch, including status transitions.
func (s *Service) PatchAward(ctx context.Context, tenderID, awardID string, patch tender.AwardPatch) (*tender.Award, error) {
	started := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveRequest("award_patch", result, time.Since(started))
	}()

	t, revision, err := s.load(ctx, tenderID)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	if err := ensureEditPermission(ctx, t); err != nil {
		result = metrics.ResultError
		return nil, err
	}
	now := s.clock.Now()
	award, err := t.ApplyAwardPatch(awardID, patch, s.variantFor(t), now)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	if patch.Status != nil {
		metrics.IncAwardTransition(*patch.Status)
	}
	if err := s.save(ctx, t, revision, now); err != nil {
		result = metrics.ResultError
		return nil, err
	}
	return award, nil
}

// PatchContract applies a typed contract patch: value updates, merge-list
// changes, signature date and the status=active signing path.
func (s *Service) PatchContract(ctx context.Context, tenderID, contractID string, patch tender.ContractPatch) (*tender.Contract, error) {
	started := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveRequest("contract_patch", result, time.Since(started))
	}()

	t, revision, err := s.load(ctx, tenderID)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	if err := ensureEditPermission(ctx, t); err != nil {
		result = metrics.ResultError
		return nil, err
	}
	now := s.clock.Now()
	contract, err := t.ApplyContractPatch(contractID, patch, s.variantFor(t), now)
	if err != nil {
		result = metrics.ResultError
		if patch.AdditionalAwardIDs != nil {
			metrics.IncContractMerge(metrics.ResultError)
		}
		if patch.Status != nil && *patch.Status == tender.ContractStatusActive {
			metrics.IncContractSigning(metrics.ResultError)
		}
		return nil, err
	}
	if patch.AdditionalAwardIDs != nil {
		metrics.IncContractMerge(metrics.ResultSuccess)
	}
	if patch.Status != nil && *patch.Status == tender.ContractStatusActive {
		metrics.IncContractSigning(metrics.ResultSuccess)
	}
	if err := s.save(ctx, t, revision, now); err != nil {
		result = metrics.ResultError
		return nil, err
	}
	return contract, nil
}

// ComplaintRequest carries the accepted fields for filing a complaint.
type ComplaintRequest struct {
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	Author      tender.Organization `json:"author"`
	Status      string              `json:"status,omitempty"`
}

// CreateComplaint files a complaint against an award.
func (s *Service) CreateComplaint(ctx context.Context, tenderID, awardID string, req ComplaintRequest) (*tender.Complaint, error) {
	started := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveRequest("complaint_create", result, time.Since(started))
	}()

	t, revision, err := s.load(ctx, tenderID)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	now := s.clock.Now()
	complaint := &tender.Complaint{
		Title:       req.Title,
		Description: req.Description,
		Author:      req.Author,
		Status:      req.Status,
	}
	if err := t.AddAwardComplaint(awardID, complaint, now); err != nil {
		result = metrics.ResultError
		return nil, err
	}
	if err := s.save(ctx, t, revision, now); err != nil {
		result = metrics.ResultError
		return nil, err
	}
	return complaint, nil
}

// ComplaintPatch carries the accepted fields for resolving a complaint.
type ComplaintPatch struct {
	Status     *string `json:"status,omitempty"`
	Resolution *string `json:"resolution,omitempty"`
}

// PatchComplaint moves a complaint along its lifecycle.
func (s *Service) PatchComplaint(ctx context.Context, tenderID, awardID, complaintID string, patch ComplaintPatch) error {
	started := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveRequest("complaint_patch", result, time.Since(started))
	}()

	t, revision, err := s.load(ctx, tenderID)
	if err != nil {
		result = metrics.ResultError
		return err
	}
	if patch.Status == nil {
		return nil
	}
	// Resolution-side transitions belong to the procuring entity.
	switch *patch.Status {
	case tender.ComplaintStatusAnswered, tender.ComplaintStatusResolved, tender.ComplaintStatusDeclined:
		if err := ensureEditPermission(ctx, t); err != nil {
			result = metrics.ResultError
			return err
		}
	}
	now := s.clock.Now()
	resolution := ""
	if patch.Resolution != nil {
		resolution = *patch.Resolution
	}
	if err := t.SetComplaintStatus(awardID, complaintID, *patch.Status, resolution, now); err != nil {
		result = metrics.ResultError
		return err
	}
	if err := s.save(ctx, t, revision, now); err != nil {
		result = metrics.ResultError
		return err
	}
	return nil
}

// DocumentRequest carries the accepted fields for attaching document
// metadata. The document body is stored outside this service.
type DocumentRequest struct {
	Title string `json:"title"`
	URL   string `json:"url,omitempty"`
}

// CreateAwardDocument attaches document metadata to an award.
func (s *Service) CreateAwardDocument(ctx context.Context, tenderID, awardID string, req DocumentRequest) (*tender.Document, error) {
	started := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveRequest("award_document_create", result, time.Since(started))
	}()

	t, revision, err := s.load(ctx, tenderID)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	if err := ensureEditPermission(ctx, t); err != nil {
		result = metrics.ResultError
		return nil, err
	}
	now := s.clock.Now()
	doc, err := t.AddAwardDocument(awardID, tender.Document{Title: req.Title, URL: req.URL}, now)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	if err := s.save(ctx, t, revision, now); err != nil {
		result = metrics.ResultError
		return nil, err
	}
	return doc, nil
}

// CreateContractDocument attaches document metadata to a contract.
func (s *Service) CreateContractDocument(ctx context.Context, tenderID, contractID string, req DocumentRequest) (*tender.Document, error) {
	started := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveRequest("contract_document_create", result, time.Since(started))
	}()

	t, revision, err := s.load(ctx, tenderID)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	if err := ensureEditPermission(ctx, t); err != nil {
		result = metrics.ResultError
		return nil, err
	}
	now := s.clock.Now()
	doc, err := t.AddContractDocument(contractID, tender.Document{Title: req.Title, URL: req.URL}, now)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	if err := s.save(ctx, t, revision, now); err != nil {
		result = metrics.ResultError
		return nil, err
	}
	return doc, nil
}

// CancellationRequest carries the accepted fields for a cancellation.
type CancellationRequest struct {
	Reason         string `json:"reason"`
	Status         string `json:"status,omitempty"`
	CancellationOf string `json:"cancellationOf,omitempty"`
	RelatedLot     string `json:"relatedLot,omitempty"`
}

// CreateCancellation records a tender or lot cancellation; an active
// tender-level cancellation freezes the whole tender.
func (s *Service) CreateCancellation(ctx context.Context, tenderID string, req CancellationRequest) (*tender.Cancellation, error) {
	started := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveRequest("cancellation_create", result, time.Since(started))
	}()

	t, revision, err := s.load(ctx, tenderID)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	if err := ensureEditPermission(ctx, t); err != nil {
		result = metrics.ResultError
		return nil, err
	}
	now := s.clock.Now()
	cancellation := tender.Cancellation{
		ID:             tender.NewID(),
		Reason:         req.Reason,
		Status:         req.Status,
		CancellationOf: req.CancellationOf,
		RelatedLot:     req.RelatedLot,
		Date:           now,
	}
	if cancellation.Status == "" {
		cancellation.Status = tender.StatusActive
	}
	if cancellation.CancellationOf == "" {
		cancellation.CancellationOf = tender.CancellationOfTender
	}
	if err := t.AddCancellation(cancellation); err != nil {
		result = metrics.ResultError
		return nil, err
	}
	t.RecomputeStatus()
	if err := s.save(ctx, t, revision, now); err != nil {
		result = metrics.ResultError
		return nil, err
	}
	return &t.Cancellations[len(t.Cancellations)-1], nil
}
