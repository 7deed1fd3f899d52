package tender

import "testing"

func mergedPair(t *testing.T) (*Tender, *Award, *Contract, *Award, *Contract) {
	t.Helper()
	tn := newLottedTender("lot-1", "lot-2")
	org := supplier("UA-EDR", "111")
	a1, c1 := mustActiveAward(t, tn, "lot-1", org, 300, Reporting())
	a2, c2 := mustActiveAward(t, tn, "lot-2", org, 169, Reporting())
	return tn, a1, c1, a2, c2
}

func TestMerge_LinksBothSides(t *testing.T) {
	tn, _, c1, a2, c2 := mergedPair(t)

	if err := tn.SetAdditionalAwardIDs(c1.ID, []string{a2.ID}); err != nil {
		t.Fatalf("merge: %v", err)
	}
	if len(c1.AdditionalAwardIDs) != 1 || c1.AdditionalAwardIDs[0] != a2.ID {
		t.Fatalf("expected merge list [%s], got %v", a2.ID, c1.AdditionalAwardIDs)
	}
	if c2.Status != ContractStatusMerged {
		t.Fatalf("expected merged target, got %s", c2.Status)
	}
	if c2.MergedInto != c1.ID {
		t.Fatalf("expected back-reference %s, got %s", c1.ID, c2.MergedInto)
	}
	if err := tn.CheckInvariants(); err != nil {
		t.Fatalf("invariants after merge: %v", err)
	}
}

func TestMerge_Idempotent(t *testing.T) {
	tn, _, c1, a2, c2 := mergedPair(t)

	for i := 0; i < 2; i++ {
		if err := tn.SetAdditionalAwardIDs(c1.ID, []string{a2.ID}); err != nil {
			t.Fatalf("merge round %d: %v", i, err)
		}
	}
	if c2.Status != ContractStatusMerged || c2.MergedInto != c1.ID {
		t.Fatalf("expected stable merged state, got status=%s mergedInto=%s", c2.Status, c2.MergedInto)
	}
}

func TestMerge_EmptyListUnmerges(t *testing.T) {
	tn, _, c1, a2, c2 := mergedPair(t)

	if err := tn.SetAdditionalAwardIDs(c1.ID, []string{a2.ID}); err != nil {
		t.Fatalf("merge: %v", err)
	}
	if err := tn.SetAdditionalAwardIDs(c1.ID, nil); err != nil {
		t.Fatalf("unmerge: %v", err)
	}
	if c2.Status != ContractStatusPending || c2.MergedInto != "" {
		t.Fatalf("expected restored target, got status=%s mergedInto=%s", c2.Status, c2.MergedInto)
	}
	if len(c1.AdditionalAwardIDs) != 0 {
		t.Fatalf("expected empty merge list, got %v", c1.AdditionalAwardIDs)
	}
}

func TestMerge_SelfRejected(t *testing.T) {
	tn, a1, c1, _, _ := mergedPair(t)
	err := tn.SetAdditionalAwardIDs(c1.ID, []string{a1.ID})
	wantDescription(t, err, "Can't merge itself")
}

func TestMerge_UnknownAwardRejected(t *testing.T) {
	tn, _, c1, _, _ := mergedPair(t)
	err := tn.SetAdditionalAwardIDs(c1.ID, []string{"missing"})
	wantDescription(t, err, "id must be one of award id")
}

func TestMerge_DuplicateIDRejected(t *testing.T) {
	tn, _, c1, a2, _ := mergedPair(t)
	err := tn.SetAdditionalAwardIDs(c1.ID, []string{a2.ID, a2.ID})
	wantDescription(t, err, "id must be one of award id")
}

func TestMerge_InactiveAwardRejected(t *testing.T) {
	tn := newLottedTender("lot-1", "lot-2")
	org := supplier("UA-EDR", "111")
	_, c1 := mustActiveAward(t, tn, "lot-1", org, 300, Reporting())
	a2 := mustAddAward(t, tn, "lot-2", org, 169)

	err := tn.SetAdditionalAwardIDs(c1.ID, []string{a2.ID})
	wantDescription(t, err, "awards must has status active")
}

func TestMerge_DifferentSupplierSchemeRejected(t *testing.T) {
	tn := newLottedTender("lot-1", "lot-2")
	_, c1 := mustActiveAward(t, tn, "lot-1", supplier("UA-EDR", "111"), 300, Reporting())
	a2, _ := mustActiveAward(t, tn, "lot-2", supplier("UA-IPN", "111"), 169, Reporting())

	err := tn.SetAdditionalAwardIDs(c1.ID, []string{a2.ID})
	wantDescription(t, err, "Awards must have same suppliers schema")
}

func TestMerge_DifferentSupplierIDRejected(t *testing.T) {
	tn := newLottedTender("lot-1", "lot-2")
	_, c1 := mustActiveAward(t, tn, "lot-1", supplier("UA-EDR", "111"), 300, Reporting())
	a2, _ := mustActiveAward(t, tn, "lot-2", supplier("UA-EDR", "222"), 169, Reporting())

	err := tn.SetAdditionalAwardIDs(c1.ID, []string{a2.ID})
	wantDescription(t, err, "Awards must have same suppliers id")
}

func TestMerge_IntoMergedContractRejected(t *testing.T) {
	tn := newLottedTender("lot-1", "lot-2", "lot-3")
	org := supplier("UA-EDR", "111")
	_, c1 := mustActiveAward(t, tn, "lot-1", org, 300, Reporting())
	a2, c2 := mustActiveAward(t, tn, "lot-2", org, 169, Reporting())
	a3, _ := mustActiveAward(t, tn, "lot-3", org, 50, Reporting())

	if err := tn.SetAdditionalAwardIDs(c1.ID, []string{a2.ID}); err != nil {
		t.Fatalf("merge: %v", err)
	}
	// The merged contract can no longer act as a primary.
	err := tn.SetAdditionalAwardIDs(c2.ID, []string{a3.ID})
	wantDescription(t, err, "Can't merge contract in status merged")
}

func TestMerge_TargetAlreadyMergedElsewhereRejected(t *testing.T) {
	tn := newLottedTender("lot-1", "lot-2", "lot-3")
	org := supplier("UA-EDR", "111")
	_, c1 := mustActiveAward(t, tn, "lot-1", org, 300, Reporting())
	a2, _ := mustActiveAward(t, tn, "lot-2", org, 169, Reporting())
	_, c3 := mustActiveAward(t, tn, "lot-3", org, 50, Reporting())

	if err := tn.SetAdditionalAwardIDs(c1.ID, []string{a2.ID}); err != nil {
		t.Fatalf("merge: %v", err)
	}
	err := tn.SetAdditionalAwardIDs(c3.ID, []string{a2.ID})
	wantDescription(t, err, "Can't merge contract in status merged")
}

func TestMerge_PrimaryCannotBeMergedIntoAnother(t *testing.T) {
	tn := newLottedTender("lot-1", "lot-2", "lot-3")
	org := supplier("UA-EDR", "111")
	a1, c1 := mustActiveAward(t, tn, "lot-1", org, 300, Reporting())
	a2, _ := mustActiveAward(t, tn, "lot-2", org, 169, Reporting())
	_, c3 := mustActiveAward(t, tn, "lot-3", org, 50, Reporting())

	if err := tn.SetAdditionalAwardIDs(c1.ID, []string{a2.ID}); err != nil {
		t.Fatalf("merge: %v", err)
	}
	// c1 is a primary with its own merge list; no chains allowed.
	err := tn.SetAdditionalAwardIDs(c3.ID, []string{a1.ID})
	wantDescription(t, err, "Can't merge contract in status merged")
}

func TestMerge_MissingContractForAward(t *testing.T) {
	tn := newLottedTender("lot-1", "lot-2")
	org := supplier("UA-EDR", "111")
	_, c1 := mustActiveAward(t, tn, "lot-1", org, 300, Reporting())
	a2, _ := mustActiveAward(t, tn, "lot-2", org, 169, Reporting())

	// Simulate a stored aggregate missing the generated contract.
	for i, c := range tn.Contracts {
		if c.AwardID == a2.ID {
			tn.Contracts = append(tn.Contracts[:i], tn.Contracts[i+1:]...)
			break
		}
	}
	err := tn.SetAdditionalAwardIDs(c1.ID, []string{a2.ID})
	wantDescription(t, err, "Can't found contract for award "+a2.ID)
}

func TestAwardedAmount_SumsMergeGroup(t *testing.T) {
	tn, _, c1, a2, _ := mergedPair(t)
	if err := tn.SetAdditionalAwardIDs(c1.ID, []string{a2.ID}); err != nil {
		t.Fatalf("merge: %v", err)
	}
	if got := tn.AwardedAmount(c1); got != 469 {
		t.Fatalf("expected awarded amount 469, got %v", got)
	}
	if group := tn.MergeGroup(c1); len(group) != 2 {
		t.Fatalf("expected merge group of 2, got %d", len(group))
	}
}
