package memory

import (
	"context"
	"testing"

	tender "procurement-core/internal/tender/domain"
)

func seedTender(t *testing.T, repo *TenderRepository) *tender.Tender {
	t.Helper()
	tn := &tender.Tender{
		ID:                    "tender-1",
		Title:                 "Office supplies",
		Status:                tender.StatusActive,
		ProcurementMethodType: tender.VariantReporting,
		Owner:                 "broker-1",
		OwnerToken:            "token-1",
	}
	if err := repo.Create(context.Background(), tn); err != nil {
		t.Fatalf("create: %v", err)
	}
	return tn
}

func TestMemoryRepository_RoundTrip(t *testing.T) {
	repo := NewTenderRepository()
	seedTender(t, repo)

	loaded, revision, err := repo.Load(context.Background(), "tender-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if revision != "1" {
		t.Fatalf("expected revision 1, got %s", revision)
	}
	if loaded.Title != "Office supplies" || loaded.OwnerToken != "token-1" {
		t.Fatalf("unexpected loaded tender: %+v", loaded)
	}
}

func TestMemoryRepository_LoadMissing(t *testing.T) {
	repo := NewTenderRepository()
	_, _, err := repo.Load(context.Background(), "missing")
	if tender.KindOf(err) != tender.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMemoryRepository_SaveBumpsRevision(t *testing.T) {
	repo := NewTenderRepository()
	seedTender(t, repo)

	loaded, revision, err := repo.Load(context.Background(), "tender-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	loaded.Title = "Renamed"
	if err := repo.Save(context.Background(), loaded, revision); err != nil {
		t.Fatalf("save: %v", err)
	}

	reloaded, revision, err := repo.Load(context.Background(), "tender-1")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if revision != "2" {
		t.Fatalf("expected revision 2, got %s", revision)
	}
	if reloaded.Title != "Renamed" {
		t.Fatalf("expected renamed tender, got %s", reloaded.Title)
	}
}

func TestMemoryRepository_StaleRevisionConflict(t *testing.T) {
	repo := NewTenderRepository()
	seedTender(t, repo)

	first, revision, err := repo.Load(context.Background(), "tender-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	second, _, err := repo.Load(context.Background(), "tender-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if err := repo.Save(context.Background(), first, revision); err != nil {
		t.Fatalf("first save: %v", err)
	}
	err = repo.Save(context.Background(), second, revision)
	if tender.KindOf(err) != tender.KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestMemoryRepository_LoadedCopyDetached(t *testing.T) {
	repo := NewTenderRepository()
	seedTender(t, repo)

	first, _, err := repo.Load(context.Background(), "tender-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	first.Title = "Mutated"

	second, _, err := repo.Load(context.Background(), "tender-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if second.Title != "Office supplies" {
		t.Fatalf("stored document mutated through loaded copy: %s", second.Title)
	}
}
