package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"procurement-core/internal/auth"
	tenderapp "procurement-core/internal/tender/application"
	tender "procurement-core/internal/tender/domain"
	"procurement-core/internal/tender/infrastructure/memory"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type stubClock struct {
	now time.Time
}

func (c *stubClock) Now() time.Time { return c.now }

func newTestHandler(t *testing.T) (*Handler, *memory.TenderRepository) {
	t.Helper()
	repo := memory.NewTenderRepository()
	variants := map[string]tender.ProcedureVariant{
		tender.VariantReporting: tender.Reporting(),
	}
	service, err := tenderapp.NewService(repo, variants, tenderapp.WithClock(&stubClock{now: testNow}))
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	handler, err := NewHandler(service, nil)
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	return handler, repo
}

func seedTender(t *testing.T, repo *memory.TenderRepository) {
	t.Helper()
	tn := &tender.Tender{
		ID:                    "tender-1",
		Title:                 "Office supplies",
		Status:                tender.StatusActive,
		ProcurementMethodType: tender.VariantReporting,
		Owner:                 "broker-1",
		Value:                 &tender.Value{Amount: 1000, Currency: "UAH", ValueAddedTaxIncluded: true},
		Items:                 []tender.Item{{ID: "item-1", Quantity: 5}},
	}
	if err := repo.Create(context.Background(), tn); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func doRequest(handler *Handler, method, path, body string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	req = req.WithContext(auth.WithIdentity(req.Context(), "broker-1", auth.RoleBroker))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func dataField(t *testing.T, resp *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, resp.Body.String())
	}
	return envelope.Data
}

func errorField(t *testing.T, resp *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope struct {
		Status string           `json:"status"`
		Errors []map[string]any `json:"errors"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode error envelope: %v (%s)", err, resp.Body.String())
	}
	if envelope.Status != "error" || len(envelope.Errors) == 0 {
		t.Fatalf("unexpected error envelope: %s", resp.Body.String())
	}
	return envelope.Errors[0]
}

func TestHandler_GetTender(t *testing.T) {
	handler, repo := newTestHandler(t)
	seedTender(t, repo)

	resp := doRequest(handler, http.MethodGet, "/tenders/tender-1", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	data := dataField(t, resp)
	if data["id"] != "tender-1" {
		t.Fatalf("expected tender-1, got %v", data["id"])
	}
}

func TestHandler_GetTenderNotFound(t *testing.T) {
	handler, _ := newTestHandler(t)

	resp := doRequest(handler, http.MethodGet, "/tenders/missing", "")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	item := errorField(t, resp)
	if item["location"] != "url" || item["name"] != "tender_id" {
		t.Fatalf("unexpected error item: %v", item)
	}
}

func TestHandler_AwardLifecycle(t *testing.T) {
	handler, repo := newTestHandler(t)
	seedTender(t, repo)

	body := `{"data":{"suppliers":[{"name":"Supplier 111","identifier":{"scheme":"UA-EDR","id":"111","legalName":"Supplier 111"}}],"value":{"amount":469,"currency":"UAH","valueAddedTaxIncluded":true}}}`
	resp := doRequest(handler, http.MethodPost, "/tenders/tender-1/awards", body)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	awardID, _ := dataField(t, resp)["id"].(string)
	if awardID == "" {
		t.Fatal("expected award id")
	}

	resp = doRequest(handler, http.MethodPatch, "/tenders/tender-1/awards/"+awardID, `{"data":{"status":"active"}}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = doRequest(handler, http.MethodGet, "/tenders/tender-1/contracts", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var contractsEnvelope struct {
		Data []map[string]any `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &contractsEnvelope); err != nil {
		t.Fatalf("decode contracts: %v", err)
	}
	if len(contractsEnvelope.Data) != 1 {
		t.Fatalf("expected one contract, got %d", len(contractsEnvelope.Data))
	}
	contractID, _ := contractsEnvelope.Data[0]["id"].(string)

	resp = doRequest(handler, http.MethodPatch, "/tenders/tender-1/contracts/"+contractID, `{"data":{"status":"active"}}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if status := dataField(t, resp)["status"]; status != "active" {
		t.Fatalf("expected active contract, got %v", status)
	}
}

func TestHandler_AwardDocuments(t *testing.T) {
	handler, repo := newTestHandler(t)
	seedTender(t, repo)

	body := `{"data":{"suppliers":[{"name":"Supplier 111","identifier":{"scheme":"UA-EDR","id":"111","legalName":"Supplier 111"}}],"value":{"amount":469,"currency":"UAH","valueAddedTaxIncluded":true}}}`
	resp := doRequest(handler, http.MethodPost, "/tenders/tender-1/awards", body)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	awardID, _ := dataField(t, resp)["id"].(string)

	resp = doRequest(handler, http.MethodPost, "/tenders/tender-1/awards/"+awardID+"/documents",
		`{"data":{"title":"qualification.pdf","url":"https://docs/1"}}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	if id, _ := dataField(t, resp)["id"].(string); id == "" {
		t.Fatal("expected document id")
	}

	resp = doRequest(handler, http.MethodPatch, "/tenders/tender-1/awards/"+awardID, `{"data":{"status":"unsuccessful"}}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = doRequest(handler, http.MethodPost, "/tenders/tender-1/awards/"+awardID+"/documents",
		`{"data":{"title":"late.pdf"}}`)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for terminal award, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestHandler_UnknownFieldRejected(t *testing.T) {
	handler, repo := newTestHandler(t)
	seedTender(t, repo)

	body := `{"data":{"bogus":true}}`
	resp := doRequest(handler, http.MethodPost, "/tenders/tender-1/awards", body)
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestHandler_MissingDataEnvelopeRejected(t *testing.T) {
	handler, repo := newTestHandler(t)
	seedTender(t, repo)

	resp := doRequest(handler, http.MethodPost, "/tenders/tender-1/awards", `{"suppliers":[]}`)
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.Code)
	}
	item := errorField(t, resp)
	if item["description"] != "Data not available" {
		t.Fatalf("unexpected description: %v", item["description"])
	}
}

func TestHandler_ValidationErrorMapsTo422(t *testing.T) {
	handler, repo := newTestHandler(t)
	seedTender(t, repo)

	body := `{"data":{"suppliers":[]}}`
	resp := doRequest(handler, http.MethodPost, "/tenders/tender-1/awards", body)
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.Code)
	}
	item := errorField(t, resp)
	if item["description"] != "Please provide exactly 1 item." {
		t.Fatalf("unexpected description: %v", item["description"])
	}
}

func TestHandler_ForbiddenMapsTo403(t *testing.T) {
	handler, repo := newTestHandler(t)
	seedTender(t, repo)

	body := `{"data":{"suppliers":[{"name":"S","identifier":{"scheme":"UA-EDR","id":"111"}}]}}`
	req := httptest.NewRequest(http.MethodPost, "/tenders/tender-1/awards", strings.NewReader(body))
	req = req.WithContext(auth.WithIdentity(req.Context(), "broker-2", auth.RoleBroker))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestHandler_UnknownRoute(t *testing.T) {
	handler, _ := newTestHandler(t)
	resp := doRequest(handler, http.MethodGet, "/tenders/tender-1/unknown", "")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestHandler_ExportPDF(t *testing.T) {
	handler, repo := newTestHandler(t)
	seedTender(t, repo)

	body := `{"data":{"suppliers":[{"name":"Supplier 111","identifier":{"scheme":"UA-EDR","id":"111","legalName":"Supplier 111"}}],"value":{"amount":469,"currency":"UAH","valueAddedTaxIncluded":true}}}`
	resp := doRequest(handler, http.MethodPost, "/tenders/tender-1/awards", body)
	awardID, _ := dataField(t, resp)["id"].(string)
	doRequest(handler, http.MethodPatch, "/tenders/tender-1/awards/"+awardID, `{"data":{"status":"active"}}`)

	resp = doRequest(handler, http.MethodGet, "/tenders/tender-1/contracts", "")
	var contractsEnvelope struct {
		Data []map[string]any `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &contractsEnvelope); err != nil {
		t.Fatalf("decode contracts: %v", err)
	}
	contractID, _ := contractsEnvelope.Data[0]["id"].(string)

	resp = doRequest(handler, http.MethodGet, "/tenders/tender-1/contracts/"+contractID+"/export?format=pdf", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if got := resp.Header().Get("Content-Type"); got != "application/pdf" {
		t.Fatalf("expected pdf content type, got %s", got)
	}
	if resp.Body.Len() == 0 {
		t.Fatal("expected non-empty pdf body")
	}

	resp = doRequest(handler, http.MethodGet, "/tenders/tender-1/contracts/"+contractID+"/export?format=xlsx", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if resp.Body.Len() == 0 {
		t.Fatal("expected non-empty xlsx body")
	}
}
