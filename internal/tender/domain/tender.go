package tender

import "time"

const (
	StatusActive       = "active"
	StatusComplete     = "complete"
	StatusUnsuccessful = "unsuccessful"
	StatusCancelled    = "cancelled"
)

// Value is a monetary amount attached to tenders, awards and contracts.
type Value struct {
	Amount                float64 `json:"amount"`
	AmountNet             float64 `json:"amountNet,omitempty"`
	Currency              string  `json:"currency"`
	ValueAddedTaxIncluded bool    `json:"valueAddedTaxIncluded"`
}

// Identifier identifies an organization within a scheme.
type Identifier struct {
	Scheme    string `json:"scheme"`
	ID        string `json:"id"`
	LegalName string `json:"legalName,omitempty"`
}

// Organization is a supplier or procuring entity.
type Organization struct {
	Name       string     `json:"name"`
	Identifier Identifier `json:"identifier"`
}

// Period is a bounded time window.
type Period struct {
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

// Item is a line item to be procured, optionally scoped to a lot.
type Item struct {
	ID          string  `json:"id"`
	Description string  `json:"description,omitempty"`
	Quantity    float64 `json:"quantity,omitempty"`
	Unit        string  `json:"unit,omitempty"`
	RelatedLot  string  `json:"relatedLot,omitempty"`
}

// Lot is an independently awardable subdivision of the tender.
type Lot struct {
	ID     string `json:"id"`
	Title  string `json:"title,omitempty"`
	Status string `json:"status"`
}

// Document is attachment metadata; storage of the file itself is external.
type Document struct {
	ID           string    `json:"id"`
	Title        string    `json:"title,omitempty"`
	URL          string    `json:"url,omitempty"`
	DateModified time.Time `json:"dateModified"`
}

const (
	CancellationOfTender = "tender"
	CancellationOfLot    = "lot"
)

// Cancellation voids a tender or one of its lots when active.
type Cancellation struct {
	ID             string    `json:"id"`
	Reason         string    `json:"reason"`
	Status         string    `json:"status"`
	CancellationOf string    `json:"cancellationOf"`
	RelatedLot     string    `json:"relatedLot,omitempty"`
	Date           time.Time `json:"date"`
}

// Tender is the aggregate root owning awards, contracts and cancellations.
// It is loaded, mutated by a single request and persisted as one unit.
type Tender struct {
	ID                    string         `json:"id"`
	TenderID              string         `json:"tenderID,omitempty"`
	Title                 string         `json:"title"`
	Status                string         `json:"status"`
	ProcurementMethodType string         `json:"procurementMethodType"`
	Owner                 string         `json:"owner,omitempty"`
	OwnerToken            string         `json:"-"`
	Value                 *Value         `json:"value,omitempty"`
	Items                 []Item         `json:"items,omitempty"`
	Lots                  []Lot          `json:"lots,omitempty"`
	Awards                []*Award       `json:"awards,omitempty"`
	Contracts             []*Contract    `json:"contracts,omitempty"`
	Cancellations         []Cancellation `json:"cancellations,omitempty"`
	DateModified          time.Time      `json:"dateModified"`
}

// Editable reports whether award/contract mutation is still allowed.
func (t *Tender) Editable() bool {
	return t.Status == StatusActive
}

// AwardByID returns the award or nil.
func (t *Tender) AwardByID(id string) *Award {
	for _, a := range t.Awards {
		if a.ID == id {
			return a
		}
	}
	return nil
}

// ContractByID returns the contract or nil.
func (t *Tender) ContractByID(id string) *Contract {
	for _, c := range t.Contracts {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// ContractByAwardID returns the contract generated from the given award, or nil.
func (t *Tender) ContractByAwardID(awardID string) *Contract {
	for _, c := range t.Contracts {
		if c.AwardID == awardID {
			return c
		}
	}
	return nil
}

// LotByID returns the lot or nil.
func (t *Tender) LotByID(id string) *Lot {
	for i := range t.Lots {
		if t.Lots[i].ID == id {
			return &t.Lots[i]
		}
	}
	return nil
}

// mergeTargetFor returns the live primary contract whose additionalAwardIDs
// references the given award, or nil.
func (t *Tender) mergeTargetFor(awardID string) *Contract {
	for _, c := range t.Contracts {
		if c.Status == ContractStatusCancelled {
			continue
		}
		for _, id := range c.AdditionalAwardIDs {
			if id == awardID {
				return c
			}
		}
	}
	return nil
}

// HasActiveCancellation reports an active cancellation covering the given lot.
// An empty lotID matches tender-level cancellations only.
func (t *Tender) HasActiveCancellation(lotID string) bool {
	for _, c := range t.Cancellations {
		if c.Status != StatusActive {
			continue
		}
		if c.CancellationOf == CancellationOfTender {
			return true
		}
		if lotID != "" && c.RelatedLot == lotID {
			return true
		}
	}
	return false
}

// AddCancellation records a cancellation and applies its scope when active.
func (t *Tender) AddCancellation(c Cancellation) error {
	if !t.Editable() {
		return NewPreconditionFailed("data",
			"Can't add cancellation in current ("+t.Status+") tender status")
	}
	if c.CancellationOf == CancellationOfLot {
		if t.LotByID(c.RelatedLot) == nil {
			return NewValidation("relatedLot", "relatedLot should be one of lots")
		}
	}
	t.Cancellations = append(t.Cancellations, c)
	if c.Status == StatusActive {
		if c.CancellationOf == CancellationOfTender {
			t.Status = StatusCancelled
		} else if lot := t.LotByID(c.RelatedLot); lot != nil {
			lot.Status = StatusCancelled
		}
	}
	return nil
}
