package tender

import "time"

// AddAwardDocument attaches document metadata to an award. The file itself
// lives elsewhere; only the reference is kept here. Terminal awards are
// frozen together with their document lists.
func (t *Tender) AddAwardDocument(awardID string, d Document, now time.Time) (*Document, error) {
	if t == nil {
		return nil, ErrNilTender
	}
	a := t.AwardByID(awardID)
	if a == nil {
		return nil, NewNotFound("award_id")
	}
	if !t.Editable() {
		return nil, NewPreconditionFailed("data",
			"Can't add document in current ("+t.Status+") tender status")
	}
	if awardTerminal(a.Status) {
		return nil, NewInvalidTransition("data",
			"Can't add document in current ("+a.Status+") award status")
	}
	if d.Title == "" {
		return nil, NewValidation("title", "This field is required.")
	}
	if d.ID == "" {
		d.ID = NewID()
	}
	d.DateModified = now
	a.Documents = append(a.Documents, d)
	return &a.Documents[len(a.Documents)-1], nil
}

// AddContractDocument attaches document metadata to a contract. Cancelled,
// terminated and merged contracts no longer accept documents.
func (t *Tender) AddContractDocument(contractID string, d Document, now time.Time) (*Document, error) {
	if t == nil {
		return nil, ErrNilTender
	}
	c := t.ContractByID(contractID)
	if c == nil {
		return nil, NewNotFound("contract_id")
	}
	if !t.Editable() {
		return nil, NewPreconditionFailed("data",
			"Can't add document in current ("+t.Status+") tender status")
	}
	if contractTerminal(c.Status) || c.Status == ContractStatusMerged {
		return nil, NewInvalidTransition("data",
			"Can't add document in current ("+c.Status+") contract status")
	}
	if d.Title == "" {
		return nil, NewValidation("title", "This field is required.")
	}
	if d.ID == "" {
		d.ID = NewID()
	}
	d.DateModified = now
	c.Documents = append(c.Documents, d)
	return &c.Documents[len(c.Documents)-1], nil
}
