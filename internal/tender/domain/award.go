package tender

import "time"

const (
	AwardStatusPending      = "pending"
	AwardStatusUnsuccessful = "unsuccessful"
	AwardStatusActive       = "active"
	AwardStatusCancelled    = "cancelled"
)

// Award is a decision naming a winning supplier for the tender or one lot.
type Award struct {
	ID              string         `json:"id"`
	Title           string         `json:"title,omitempty"`
	Description     string         `json:"description,omitempty"`
	Status          string         `json:"status"`
	Date            time.Time      `json:"date"`
	LotID           string         `json:"lotID,omitempty"`
	Qualified       bool           `json:"qualified,omitempty"`
	Suppliers       []Organization `json:"suppliers"`
	Value           *Value         `json:"value,omitempty"`
	ComplaintPeriod *Period        `json:"complaintPeriod,omitempty"`
	Complaints      []*Complaint   `json:"complaints,omitempty"`
	Documents       []Document     `json:"documents,omitempty"`
}

func awardTerminal(status string) bool {
	return status == AwardStatusUnsuccessful || status == AwardStatusCancelled
}

// AddAward appends a new pending award after validating the one-award-per-lot
// rule. Missing id, status and date are filled in.
func (t *Tender) AddAward(a *Award, now time.Time) error {
	if t == nil {
		return ErrNilTender
	}
	if !t.Editable() {
		return NewPreconditionFailed("data",
			"Can't create award in current ("+t.Status+") tender status")
	}
	if len(a.Suppliers) != 1 {
		return NewValidation("suppliers", "Please provide exactly 1 item.")
	}
	if a.LotID != "" && t.LotByID(a.LotID) == nil {
		return NewValidation("lotID", "lotID should be one of lots")
	}
	if t.HasActiveCancellation(a.LotID) {
		return NewPreconditionFailed("data",
			"Can't create award while cancellation for corresponding lot exists")
	}
	for _, existing := range t.Awards {
		if existing.LotID != a.LotID || awardTerminal(existing.Status) {
			continue
		}
		return NewPreconditionFailed("data",
			"Can't create new award while any ("+existing.Status+") award exists")
	}
	if a.ID == "" {
		a.ID = NewID()
	}
	if a.Status == "" {
		a.Status = AwardStatusPending
	}
	if a.Status != AwardStatusPending {
		return NewValidation("status", "status should be pending")
	}
	a.Date = now
	t.Awards = append(t.Awards, a)
	return nil
}

// SetAwardStatus drives the award state machine. Activating an award is the
// sole trigger for contract generation; cancelling an active award cascades
// onto its contract and regenerates a replacement award for the lot.
func (t *Tender) SetAwardStatus(awardID, next string, v ProcedureVariant, now time.Time) error {
	if t == nil {
		return ErrNilTender
	}
	a := t.AwardByID(awardID)
	if a == nil {
		return NewNotFound("award_id")
	}
	if !t.Editable() {
		return NewPreconditionFailed("data",
			"Can't update award in current ("+t.Status+") tender status")
	}
	if next == a.Status {
		return nil
	}
	if awardTerminal(a.Status) {
		return NewInvalidTransition("data",
			"Can't update award in current ("+a.Status+") status")
	}

	switch next {
	case AwardStatusActive:
		if a.Status != AwardStatusPending {
			return NewInvalidTransition("data",
				"Can't switch award ("+a.Status+") status to ("+next+") status")
		}
		return t.activateAward(a, v, now)
	case AwardStatusUnsuccessful:
		if a.Status != AwardStatusPending {
			return NewInvalidTransition("data",
				"Can't switch award ("+a.Status+") status to ("+next+") status")
		}
		if v.HasStandStill() {
			period := v.StandStillPeriod(now)
			a.ComplaintPeriod = &period
		}
		a.Status = AwardStatusUnsuccessful
		return nil
	case AwardStatusCancelled:
		return t.cancelAward(a, now)
	default:
		return NewValidation("status",
			"Value must be one of ['pending', 'unsuccessful', 'active', 'cancelled'].")
	}
}

func (t *Tender) activateAward(a *Award, v ProcedureVariant, now time.Time) error {
	if v.RequiresQualification && !a.Qualified {
		return NewPreconditionFailed("qualified",
			"Can't update award to active status while award is not qualified")
	}
	if t.HasActiveCancellation(a.LotID) {
		return NewPreconditionFailed("data",
			"Can't update award while cancellation for corresponding lot exists")
	}
	for _, other := range t.Awards {
		if other.ID != a.ID && other.LotID == a.LotID && other.Status == AwardStatusActive {
			return NewPreconditionFailed("data",
				"Can't create new award while any (active) award exists")
		}
	}
	if t.ContractByAwardID(a.ID) != nil {
		return ErrCorruptAggregate
	}
	a.Status = AwardStatusActive
	if v.HasStandStill() {
		period := v.StandStillPeriod(now)
		a.ComplaintPeriod = &period
	}
	t.Contracts = append(t.Contracts, t.newContractFor(a, now))
	return nil
}

func (t *Tender) cancelAward(a *Award, now time.Time) error {
	if target := t.mergeTargetFor(a.ID); target != nil {
		// Referenced by a live merge; the merge must be dissolved first.
		return NewValidation("additionalAwardIDs", "awards must has status active")
	}
	wasActive := a.Status == AwardStatusActive
	a.Status = AwardStatusCancelled
	if a.ComplaintPeriod != nil && a.ComplaintPeriod.EndDate.After(now) {
		a.ComplaintPeriod.EndDate = now
	}

	if c := t.ContractByAwardID(a.ID); c != nil && c.Status != ContractStatusCancelled {
		for _, mergedID := range c.AdditionalAwardIDs {
			if sibling := t.ContractByAwardID(mergedID); sibling != nil && sibling.Status == ContractStatusMerged {
				sibling.Status = ContractStatusPending
				sibling.MergedInto = ""
			}
		}
		c.AdditionalAwardIDs = nil
		c.Status = ContractStatusCancelled
	}

	if wasActive {
		t.Awards = append(t.Awards, &Award{
			ID:        NewID(),
			Title:     a.Title,
			Status:    AwardStatusPending,
			Date:      now,
			LotID:     a.LotID,
			Suppliers: append([]Organization(nil), a.Suppliers...),
			Value:     cloneValue(a.Value),
		})
	}
	return nil
}

func cloneValue(v *Value) *Value {
	if v == nil {
		return nil
	}
	clone := *v
	return &clone
}
