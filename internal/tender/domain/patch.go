package tender

import "time"

// AwardPatch is the typed partial update accepted for an award. Unknown
// fields are rejected at the transport layer before a patch is built.
type AwardPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Qualified   *bool   `json:"qualified,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// ContractPatch is the typed partial update accepted for a contract.
type ContractPatch struct {
	Title              *string     `json:"title,omitempty"`
	Description        *string     `json:"description,omitempty"`
	Value              *ValuePatch `json:"value,omitempty"`
	AdditionalAwardIDs *[]string   `json:"additionalAwardIDs,omitempty"`
	DateSigned         *time.Time  `json:"dateSigned,omitempty"`
	Status             *string     `json:"status,omitempty"`
}

// ApplyAwardPatch validates and applies an award patch, running the status
// transition last so descriptive fields land before any cascade.
func (t *Tender) ApplyAwardPatch(awardID string, patch AwardPatch, v ProcedureVariant, now time.Time) (*Award, error) {
	if t == nil {
		return nil, ErrNilTender
	}
	a := t.AwardByID(awardID)
	if a == nil {
		return nil, NewNotFound("award_id")
	}
	if !t.Editable() {
		return nil, NewPreconditionFailed("data",
			"Can't update award in current ("+t.Status+") tender status")
	}
	if awardTerminal(a.Status) {
		return nil, NewInvalidTransition("data",
			"Can't update award in current ("+a.Status+") status")
	}
	if patch.Qualified != nil && a.Status != AwardStatusPending {
		return nil, NewPreconditionFailed("qualified",
			"Can't update qualified in current ("+a.Status+") award status")
	}

	if patch.Title != nil {
		a.Title = *patch.Title
	}
	if patch.Description != nil {
		a.Description = *patch.Description
	}
	if patch.Qualified != nil {
		a.Qualified = *patch.Qualified
	}
	if patch.Status != nil {
		if err := t.SetAwardStatus(awardID, *patch.Status, v, now); err != nil {
			return nil, err
		}
	}
	t.RecomputeStatus()
	return a, nil
}

// ApplyContractPatch validates and applies a contract patch. Merge-list and
// value changes apply first; a status change to active runs the signing gate.
func (t *Tender) ApplyContractPatch(contractID string, patch ContractPatch, v ProcedureVariant, now time.Time) (*Contract, error) {
	if t == nil {
		return nil, ErrNilTender
	}
	c := t.ContractByID(contractID)
	if c == nil {
		return nil, NewNotFound("contract_id")
	}
	if !t.Editable() {
		return nil, NewPreconditionFailed("data",
			"Can't update contract in current ("+t.Status+") tender status")
	}
	if contractTerminal(c.Status) || c.Status == ContractStatusMerged {
		return nil, NewInvalidTransition("data", "Can't update contract status")
	}

	if patch.AdditionalAwardIDs != nil {
		if err := t.SetAdditionalAwardIDs(contractID, *patch.AdditionalAwardIDs); err != nil {
			return nil, err
		}
	}
	if patch.Value != nil {
		if c.Status != ContractStatusPending {
			return nil, NewInvalidTransition("data", "Can't update contract status")
		}
		if err := t.ApplyContractValue(c, *patch.Value, v); err != nil {
			return nil, err
		}
	}
	if patch.DateSigned != nil {
		if c.Status != ContractStatusPending {
			return nil, NewInvalidTransition("data", "Can't update contract status")
		}
		if err := t.ValidateSignatureDate(c, *patch.DateSigned, v, now); err != nil {
			return nil, err
		}
		c.DateSigned = patch.DateSigned
	}
	if patch.Title != nil {
		c.Title = *patch.Title
	}
	if patch.Description != nil {
		c.Description = *patch.Description
	}

	if patch.Status != nil && *patch.Status != c.Status {
		if *patch.Status != ContractStatusActive {
			return nil, NewInvalidTransition("data", "Can't update contract status")
		}
		if err := t.Sign(contractID, patch.DateSigned, v, now); err != nil {
			return nil, err
		}
	}
	t.RecomputeStatus()
	return c, nil
}
