package tender

const (
	groupOpen      = "open"
	groupComplete  = "complete"
	groupCancelled = "cancelled"
)

// RecomputeStatus derives the tender status from the aggregate state of all
// lots' awards and contracts. It runs after every accepted mutation.
func (t *Tender) RecomputeStatus() {
	if t == nil {
		return
	}
	if t.Status == StatusCancelled {
		return
	}
	for _, c := range t.Cancellations {
		if c.Status == StatusActive && c.CancellationOf == CancellationOfTender {
			t.Status = StatusCancelled
			return
		}
	}

	groups := t.awardGroups()
	if len(groups) == 0 {
		t.Status = StatusActive
		return
	}

	anyOpen, anyComplete := false, false
	for _, lotID := range groups {
		switch t.groupState(lotID) {
		case groupOpen:
			anyOpen = true
		case groupComplete:
			anyComplete = true
		}
	}
	switch {
	case anyOpen:
		t.Status = StatusActive
	case anyComplete:
		t.Status = StatusComplete
	default:
		// Only cancelled lots remain.
		t.Status = StatusCancelled
	}
}

// awardGroups returns the lot ids, or the single lot-less group.
func (t *Tender) awardGroups() []string {
	if len(t.Lots) == 0 {
		return []string{""}
	}
	groups := make([]string, 0, len(t.Lots))
	for _, lot := range t.Lots {
		groups = append(groups, lot.ID)
	}
	return groups
}

func (t *Tender) groupState(lotID string) string {
	if lotID != "" {
		if lot := t.LotByID(lotID); lot != nil && lot.Status == StatusCancelled {
			return groupCancelled
		}
	}

	// A group whose awards are all unsuccessful or cancelled stays open so a
	// replacement award can be created for it.
	for _, a := range t.Awards {
		if a.LotID != lotID || a.Status != AwardStatusActive {
			continue
		}
		if c := t.ContractByAwardID(a.ID); c != nil && t.contractSigned(c) {
			return groupComplete
		}
	}
	return groupOpen
}

// contractSigned follows a single merge hop to decide whether the contract
// covering the award is active.
func (t *Tender) contractSigned(c *Contract) bool {
	if c.Status == ContractStatusActive {
		return true
	}
	if c.Status == ContractStatusMerged && c.MergedInto != "" {
		if primary := t.ContractByID(c.MergedInto); primary != nil {
			return primary.Status == ContractStatusActive
		}
	}
	return false
}
