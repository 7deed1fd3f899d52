package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"procurement-core/internal/audit"
	"procurement-core/internal/auth"
	"procurement-core/internal/observability/metrics"
	tenderapp "procurement-core/internal/tender/application"
	tender "procurement-core/internal/tender/domain"
)

// Handler serves tender award and contract endpoints.
type Handler struct {
	service     *tenderapp.Service
	auditLogger audit.Logger
}

// NewHandler constructs a Handler.
func NewHandler(service *tenderapp.Service, auditLogger audit.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("tender handler: nil service")
	}
	return &Handler{service: service, auditLogger: auditLogger}, nil
}

// ServeHTTP routes tender requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.URL.Path, "/tenders/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/tenders/")
	parts := strings.Split(path, "/")
	if len(parts) < 1 || parts[0] == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	tenderID := parts[0]

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.handleGetTender(w, r, tenderID)
	case len(parts) == 2 && parts[1] == "awards" && r.Method == http.MethodGet:
		h.handleListAwards(w, r, tenderID)
	case len(parts) == 2 && parts[1] == "awards" && r.Method == http.MethodPost:
		h.handleCreateAward(w, r, tenderID)
	case len(parts) == 3 && parts[1] == "awards" && r.Method == http.MethodPatch:
		h.handlePatchAward(w, r, tenderID, parts[2])
	case len(parts) == 4 && parts[1] == "awards" && parts[3] == "documents" && r.Method == http.MethodPost:
		h.handleCreateAwardDocument(w, r, tenderID, parts[2])
	case len(parts) == 4 && parts[1] == "awards" && parts[3] == "complaints" && r.Method == http.MethodPost:
		h.handleCreateComplaint(w, r, tenderID, parts[2])
	case len(parts) == 5 && parts[1] == "awards" && parts[3] == "complaints" && r.Method == http.MethodPatch:
		h.handlePatchComplaint(w, r, tenderID, parts[2], parts[4])
	case len(parts) == 2 && parts[1] == "contracts" && r.Method == http.MethodGet:
		h.handleListContracts(w, r, tenderID)
	case len(parts) == 3 && parts[1] == "contracts" && r.Method == http.MethodGet:
		h.handleGetContract(w, r, tenderID, parts[2])
	case len(parts) == 3 && parts[1] == "contracts" && r.Method == http.MethodPatch:
		h.handlePatchContract(w, r, tenderID, parts[2])
	case len(parts) == 4 && parts[1] == "contracts" && parts[3] == "documents" && r.Method == http.MethodPost:
		h.handleCreateContractDocument(w, r, tenderID, parts[2])
	case len(parts) == 4 && parts[1] == "contracts" && parts[3] == "export" && r.Method == http.MethodGet:
		h.handleExportContract(w, r, tenderID, parts[2])
	case len(parts) == 2 && parts[1] == "cancellations" && r.Method == http.MethodPost:
		h.handleCreateCancellation(w, r, tenderID)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleGetTender(w http.ResponseWriter, r *http.Request, tenderID string) {
	t, err := h.service.GetTender(r.Context(), tenderID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, t)
}

func (h *Handler) handleListAwards(w http.ResponseWriter, r *http.Request, tenderID string) {
	awards, err := h.service.ListAwards(r.Context(), tenderID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, awards)
}

func (h *Handler) handleCreateAward(w http.ResponseWriter, r *http.Request, tenderID string) {
	var req tenderapp.AwardRequest
	body, err := decodeData(r, &req)
	if err != nil {
		writeValidationError(w, err)
		return
	}
	award, err := h.service.CreateAward(r.Context(), tenderID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, award)
	h.logAudit(r, tenderID, "award.create", "award", award.ID, body)
}

func (h *Handler) handlePatchAward(w http.ResponseWriter, r *http.Request, tenderID, awardID string) {
	var patch tender.AwardPatch
	body, err := decodeData(r, &patch)
	if err != nil {
		writeValidationError(w, err)
		return
	}
	award, err := h.service.PatchAward(r.Context(), tenderID, awardID, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, award)
	h.logAudit(r, tenderID, "award.patch", "award", awardID, body)
}

func (h *Handler) handleCreateAwardDocument(w http.ResponseWriter, r *http.Request, tenderID, awardID string) {
	var req tenderapp.DocumentRequest
	body, err := decodeData(r, &req)
	if err != nil {
		writeValidationError(w, err)
		return
	}
	doc, err := h.service.CreateAwardDocument(r.Context(), tenderID, awardID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, doc)
	h.logAudit(r, tenderID, "award.document.create", "document", doc.ID, body)
}

func (h *Handler) handleCreateContractDocument(w http.ResponseWriter, r *http.Request, tenderID, contractID string) {
	var req tenderapp.DocumentRequest
	body, err := decodeData(r, &req)
	if err != nil {
		writeValidationError(w, err)
		return
	}
	doc, err := h.service.CreateContractDocument(r.Context(), tenderID, contractID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, doc)
	h.logAudit(r, tenderID, "contract.document.create", "document", doc.ID, body)
}

func (h *Handler) handleCreateComplaint(w http.ResponseWriter, r *http.Request, tenderID, awardID string) {
	var req tenderapp.ComplaintRequest
	body, err := decodeData(r, &req)
	if err != nil {
		writeValidationError(w, err)
		return
	}
	complaint, err := h.service.CreateComplaint(r.Context(), tenderID, awardID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, complaint)
	h.logAudit(r, tenderID, "complaint.create", "complaint", complaint.ID, body)
}

func (h *Handler) handlePatchComplaint(w http.ResponseWriter, r *http.Request, tenderID, awardID, complaintID string) {
	var patch tenderapp.ComplaintPatch
	body, err := decodeData(r, &patch)
	if err != nil {
		writeValidationError(w, err)
		return
	}
	if err := h.service.PatchComplaint(r.Context(), tenderID, awardID, complaintID, patch); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
	h.logAudit(r, tenderID, "complaint.patch", "complaint", complaintID, body)
}

func (h *Handler) handleListContracts(w http.ResponseWriter, r *http.Request, tenderID string) {
	contracts, err := h.service.ListContracts(r.Context(), tenderID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, contracts)
}

func (h *Handler) handleGetContract(w http.ResponseWriter, r *http.Request, tenderID, contractID string) {
	contract, err := h.service.GetContract(r.Context(), tenderID, contractID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, contract)
}

func (h *Handler) handlePatchContract(w http.ResponseWriter, r *http.Request, tenderID, contractID string) {
	var patch tender.ContractPatch
	body, err := decodeData(r, &patch)
	if err != nil {
		writeValidationError(w, err)
		return
	}
	contract, err := h.service.PatchContract(r.Context(), tenderID, contractID, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, contract)
	h.logAudit(r, tenderID, "contract.patch", "contract", contractID, body)
}

func (h *Handler) handleExportContract(w http.ResponseWriter, r *http.Request, tenderID, contractID string) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "pdf"
	}
	started := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveExport(format, result, time.Since(started))
	}()
	t, contract, err := h.service.GetContractGroup(r.Context(), tenderID, contractID)
	if err != nil {
		result = metrics.ResultError
		writeError(w, err)
		return
	}
	switch format {
	case "pdf":
		data, err := BuildContractPDF(t, contract)
		if err != nil {
			result = metrics.ResultError
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="contract-`+contract.ID+`.pdf"`)
		_, _ = w.Write(data)
	case "xlsx":
		data, err := BuildContractXLSX(t, contract)
		if err != nil {
			result = metrics.ResultError
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="contract-`+contract.ID+`.xlsx"`)
		_, _ = w.Write(data)
	default:
		result = metrics.ResultError
		writeError(w, tender.NewValidation("format", "format must be pdf or xlsx"))
	}
}

func (h *Handler) handleCreateCancellation(w http.ResponseWriter, r *http.Request, tenderID string) {
	var req tenderapp.CancellationRequest
	body, err := decodeData(r, &req)
	if err != nil {
		writeValidationError(w, err)
		return
	}
	cancellation, err := h.service.CreateCancellation(r.Context(), tenderID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, cancellation)
	h.logAudit(r, tenderID, "cancellation.create", "cancellation", cancellation.ID, body)
}

func (h *Handler) logAudit(r *http.Request, tenderID, action, resourceType, resourceID string, payload []byte) {
	if h.auditLogger == nil {
		return
	}
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		Actor:         auth.OwnerFromContext(r.Context()),
		Role:          string(auth.RoleFromContext(r.Context())),
		Action:        action,
		ResourceType:  resourceType,
		ResourceID:    resourceID,
		TenderID:      tenderID,
		PayloadDigest: audit.DigestJSON(payload),
		IP:            audit.ClientIP(r),
		UserAgent:     r.UserAgent(),
	})
}

// decodeData reads a {"data": ...} envelope into dst, rejecting unknown
// fields, and returns the raw body for audit digests.
func decodeData(r *http.Request, dst any) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return nil, errors.New("can't read request body")
	}
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, errors.New("Expecting value: line 1 column 1 (char 0)")
	}
	if len(envelope.Data) == 0 {
		return nil, errors.New("Data not available")
	}
	decoder := json.NewDecoder(bytes.NewReader(envelope.Data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return nil, err
	}
	return body, nil
}

func writeData(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"data": payload})
}

type errorItem struct {
	Location    string `json:"location"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func writeErrors(w http.ResponseWriter, status int, items []errorItem) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status": "error",
		"errors": items,
	})
}

func writeValidationError(w http.ResponseWriter, err error) {
	writeErrors(w, http.StatusUnprocessableEntity, []errorItem{{
		Location:    "body",
		Name:        "data",
		Description: err.Error(),
	}})
}

func writeError(w http.ResponseWriter, err error) {
	var domainErr *tender.Error
	if errors.As(err, &domainErr) {
		writeErrors(w, statusForKind(domainErr.Kind), []errorItem{{
			Location:    domainErr.Location,
			Name:        domainErr.Name,
			Description: domainErr.Description,
		}})
		return
	}
	writeErrors(w, http.StatusInternalServerError, []errorItem{{
		Location:    "body",
		Name:        "data",
		Description: "internal server error",
	}})
}

func statusForKind(kind tender.Kind) int {
	switch kind {
	case tender.KindNotFound:
		return http.StatusNotFound
	case tender.KindValidation:
		return http.StatusUnprocessableEntity
	case tender.KindInvalidTransition, tender.KindPreconditionFailed:
		return http.StatusForbidden
	case tender.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
