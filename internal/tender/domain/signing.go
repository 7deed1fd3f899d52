package tender

import "time"

// Sign is the only path by which a contract reaches status active. Checks run
// in a fixed order so callers see deterministic failures: tender status,
// contract status, lot cancellation, stand-still periods, open complaints,
// signature date. A nil dateSigned defaults to now.
func (t *Tender) Sign(contractID string, dateSigned *time.Time, v ProcedureVariant, now time.Time) error {
	if t == nil {
		return ErrNilTender
	}
	c := t.ContractByID(contractID)
	if c == nil {
		return NewNotFound("contract_id")
	}
	if !t.Editable() {
		return NewPreconditionFailed("data",
			"Can't update contract in current ("+t.Status+") tender status")
	}
	if c.Status != ContractStatusPending {
		return NewInvalidTransition("data", "Can't update contract status")
	}
	own := t.AwardByID(c.AwardID)
	if own == nil {
		return ErrCorruptAggregate
	}
	if t.HasActiveCancellation(own.LotID) {
		return NewPreconditionFailed("data",
			"Can't update contract while cancellation for corresponding lot exists")
	}

	if v.HasStandStill() {
		if own.ComplaintPeriod != nil && now.Before(own.ComplaintPeriod.EndDate) {
			return NewPreconditionFailed("data",
				"Can't sign contract before stand-still period end ("+
					own.ComplaintPeriod.EndDate.Format(time.RFC3339)+")")
		}
		for _, id := range c.AdditionalAwardIDs {
			a := t.AwardByID(id)
			if a != nil && a.ComplaintPeriod != nil && now.Before(a.ComplaintPeriod.EndDate) {
				return NewPreconditionFailed("data",
					"Can't sign contract before additional awards stand-still period end ("+
						a.ComplaintPeriod.EndDate.Format(time.RFC3339)+")")
			}
		}
	}

	for _, complaint := range own.Complaints {
		if complaint.Open() {
			return NewPreconditionFailed("data",
				"Can't sign contract before reviewing all complaints")
		}
	}
	for _, id := range c.AdditionalAwardIDs {
		a := t.AwardByID(id)
		if a == nil {
			continue
		}
		for _, complaint := range a.Complaints {
			if complaint.Open() {
				return NewPreconditionFailed("data",
					"Can't sign contract before reviewing all additional complaints")
			}
		}
	}

	signed := now
	if dateSigned != nil {
		if err := t.ValidateSignatureDate(c, *dateSigned, v, now); err != nil {
			return err
		}
		signed = *dateSigned
	} else if c.DateSigned != nil {
		signed = *c.DateSigned
	}

	c.Status = ContractStatusActive
	c.DateSigned = &signed
	return nil
}

// ValidateSignatureDate enforces the bounds on an explicit dateSigned: not in
// the future and past every complaint period in the merge group.
func (t *Tender) ValidateSignatureDate(c *Contract, dateSigned time.Time, v ProcedureVariant, now time.Time) error {
	if dateSigned.After(now) {
		return NewValidation("dateSigned", "Contract signature date can't be in the future")
	}
	if !v.HasStandStill() {
		return nil
	}
	if own := t.AwardByID(c.AwardID); own != nil && own.ComplaintPeriod != nil {
		if dateSigned.Before(own.ComplaintPeriod.EndDate) {
			return NewValidation("dateSigned",
				"Contract signature date should be after award complaint period end date ("+
					own.ComplaintPeriod.EndDate.Format(time.RFC3339)+")")
		}
	}
	for _, id := range c.AdditionalAwardIDs {
		a := t.AwardByID(id)
		if a == nil || a.ComplaintPeriod == nil {
			continue
		}
		if dateSigned.Before(a.ComplaintPeriod.EndDate) {
			return NewValidation("dateSigned",
				"Contract signature date should be after additional awards complaint period end date ("+
					a.ComplaintPeriod.EndDate.Format(time.RFC3339)+")")
		}
	}
	return nil
}
