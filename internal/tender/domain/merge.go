package tender

// SetAdditionalAwardIDs replaces the merge list of a primary contract.
// Newly listed awards get their contract flipped to merged with a
// back-reference to the primary; awards dropped from the list are unmerged.
// The operation is a diff against the previous list, so repeated calls with
// the same final list are idempotent.
func (t *Tender) SetAdditionalAwardIDs(contractID string, ids []string) error {
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
	if c.Status == ContractStatusMerged || c.MergedInto != "" {
		return NewValidation("additionalAwardIDs", "Can't merge contract in status merged")
	}
	if c.Status != ContractStatusPending {
		return NewInvalidTransition("data", "Can't update contract status")
	}

	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return NewValidation("additionalAwardIDs", "id must be one of award id")
		}
		seen[id] = struct{}{}

		a := t.AwardByID(id)
		if a == nil {
			return NewValidation("additionalAwardIDs", "id must be one of award id")
		}
		if id == c.AwardID {
			return NewValidation("additionalAwardIDs", "Can't merge itself")
		}
		if a.Status != AwardStatusActive {
			return NewValidation("additionalAwardIDs", "awards must has status active")
		}
		target := t.ContractByAwardID(id)
		if target == nil {
			return NewValidation("additionalAwardIDs", "Can't found contract for award "+id)
		}
		if target.MergedInto != "" && target.MergedInto != c.ID {
			return NewValidation("additionalAwardIDs", "Can't merge contract in status merged")
		}
		if len(target.AdditionalAwardIDs) > 0 {
			// No chains of merges-into-merges.
			return NewValidation("additionalAwardIDs", "Can't merge contract in status merged")
		}
	}
	if err := t.validateMergeSuppliers(c, ids); err != nil {
		return err
	}

	previous := make(map[string]struct{}, len(c.AdditionalAwardIDs))
	for _, id := range c.AdditionalAwardIDs {
		previous[id] = struct{}{}
	}

	for _, id := range ids {
		if _, ok := previous[id]; ok {
			delete(previous, id)
			continue
		}
		target := t.ContractByAwardID(id)
		target.Status = ContractStatusMerged
		target.MergedInto = c.ID
	}
	for id := range previous {
		if target := t.ContractByAwardID(id); target != nil && target.MergedInto == c.ID {
			target.Status = ContractStatusPending
			target.MergedInto = ""
		}
	}

	if len(ids) == 0 {
		c.AdditionalAwardIDs = nil
	} else {
		c.AdditionalAwardIDs = append([]string(nil), ids...)
	}
	return nil
}

// validateMergeSuppliers requires one supplier identity across the group.
func (t *Tender) validateMergeSuppliers(c *Contract, ids []string) error {
	own := t.AwardByID(c.AwardID)
	if own == nil || len(own.Suppliers) == 0 {
		return ErrCorruptAggregate
	}
	ref := own.Suppliers[0].Identifier
	for _, id := range ids {
		a := t.AwardByID(id)
		if a == nil || len(a.Suppliers) == 0 {
			return ErrCorruptAggregate
		}
		ident := a.Suppliers[0].Identifier
		if ident.Scheme != ref.Scheme {
			return NewValidation("additionalAwardIDs", "Awards must have same suppliers schema")
		}
		if ident.ID != ref.ID {
			return NewValidation("additionalAwardIDs", "Awards must have same suppliers id")
		}
	}
	return nil
}
