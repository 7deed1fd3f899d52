package tender

import (
	"testing"
	"time"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func supplier(scheme, id string) Organization {
	return Organization{
		Name: "Supplier " + id,
		Identifier: Identifier{
			Scheme:    scheme,
			ID:        id,
			LegalName: "Supplier " + id,
		},
	}
}

func money(amount float64) *Value {
	return &Value{Amount: amount, Currency: "UAH", ValueAddedTaxIncluded: true}
}

func newTestTender() *Tender {
	return &Tender{
		ID:                    "tender-1",
		Title:                 "Office supplies",
		Status:                StatusActive,
		ProcurementMethodType: VariantReporting,
		Owner:                 "broker-1",
		Value:                 money(1000),
		Items:                 []Item{{ID: "item-1", Quantity: 5}},
	}
}

func newLottedTender(lotIDs ...string) *Tender {
	tn := newTestTender()
	tn.Items = nil
	for _, id := range lotIDs {
		tn.Lots = append(tn.Lots, Lot{ID: id, Status: StatusActive})
		tn.Items = append(tn.Items, Item{ID: "item-" + id, RelatedLot: id})
	}
	return tn
}

func mustAddAward(t *testing.T, tn *Tender, lotID string, org Organization, amount float64) *Award {
	t.Helper()
	a := &Award{
		LotID:     lotID,
		Qualified: true,
		Suppliers: []Organization{org},
		Value:     money(amount),
	}
	if err := tn.AddAward(a, testNow); err != nil {
		t.Fatalf("add award: %v", err)
	}
	return a
}

func mustActivate(t *testing.T, tn *Tender, a *Award, v ProcedureVariant) *Contract {
	t.Helper()
	if err := tn.SetAwardStatus(a.ID, AwardStatusActive, v, testNow); err != nil {
		t.Fatalf("activate award %s: %v", a.ID, err)
	}
	c := tn.ContractByAwardID(a.ID)
	if c == nil {
		t.Fatalf("no contract generated for award %s", a.ID)
	}
	return c
}

func mustActiveAward(t *testing.T, tn *Tender, lotID string, org Organization, amount float64, v ProcedureVariant) (*Award, *Contract) {
	t.Helper()
	a := mustAddAward(t, tn, lotID, org, amount)
	c := mustActivate(t, tn, a, v)
	return a, c
}

func wantKind(t *testing.T, err error, kind Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	if got := KindOf(err); got != kind {
		t.Fatalf("expected %s error, got %s (%v)", kind, got, err)
	}
}

func wantDescription(t *testing.T, err error, description string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error %q, got nil", description)
	}
	de, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected domain error %q, got %v", description, err)
	}
	if de.Description != description {
		t.Fatalf("expected description %q, got %q", description, de.Description)
	}
}
