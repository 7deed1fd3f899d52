package tender

import "time"

const (
	ContractStatusPending    = "pending"
	ContractStatusActive     = "active"
	ContractStatusCancelled  = "cancelled"
	ContractStatusTerminated = "terminated"
	ContractStatusMerged     = "merged"
)

// Contract is the artifact generated from an award. A contract is primary
// unless mergedInto points at the contract it was consolidated into.
type Contract struct {
	ID          string     `json:"id"`
	AwardID     string     `json:"awardID"`
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	Date        time.Time  `json:"date"`
	Value       *Value     `json:"value,omitempty"`
	Items       []Item     `json:"items,omitempty"`
	DateSigned  *time.Time `json:"dateSigned,omitempty"`

	// AdditionalAwardIDs lists awards merged into this contract, in the
	// order they were supplied.
	AdditionalAwardIDs []string `json:"additionalAwardIDs,omitempty"`

	// MergedInto is set iff Status == merged.
	MergedInto string `json:"mergedInto,omitempty"`

	Documents []Document `json:"documents,omitempty"`
}

func contractTerminal(status string) bool {
	return status == ContractStatusCancelled || status == ContractStatusTerminated
}

// newContractFor builds the pending contract for a freshly activated award.
// Items are filtered to the award's lot; a lot-less tender contributes all items.
func (t *Tender) newContractFor(a *Award, now time.Time) *Contract {
	var items []Item
	for _, item := range t.Items {
		if a.LotID == "" || item.RelatedLot == a.LotID {
			items = append(items, item)
		}
	}
	return &Contract{
		ID:      NewID(),
		AwardID: a.ID,
		Status:  ContractStatusPending,
		Date:    now,
		Value:   cloneValue(a.Value),
		Items:   items,
	}
}

// AwardedAmount is the value ceiling for the contract: the sum of the owning
// award's amount and every merged award's amount.
func (t *Tender) AwardedAmount(c *Contract) float64 {
	var sum float64
	if a := t.AwardByID(c.AwardID); a != nil && a.Value != nil {
		sum += a.Value.Amount
	}
	for _, id := range c.AdditionalAwardIDs {
		if a := t.AwardByID(id); a != nil && a.Value != nil {
			sum += a.Value.Amount
		}
	}
	return sum
}

// MergeGroup returns the owning award plus every merged award of the contract.
func (t *Tender) MergeGroup(c *Contract) []*Award {
	group := make([]*Award, 0, 1+len(c.AdditionalAwardIDs))
	if a := t.AwardByID(c.AwardID); a != nil {
		group = append(group, a)
	}
	for _, id := range c.AdditionalAwardIDs {
		if a := t.AwardByID(id); a != nil {
			group = append(group, a)
		}
	}
	return group
}
