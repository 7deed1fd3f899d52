package tender

import "fmt"

// CheckInvariants re-validates the structural invariants of the aggregate.
// It runs against freshly loaded state at the start of each request; a
// failure means the stored document was corrupted outside this core and is
// reported as a fatal error, not a user-facing validation.
func (t *Tender) CheckInvariants() error {
	if t == nil {
		return ErrNilTender
	}

	// Every active award owns exactly one contract.
	for _, a := range t.Awards {
		if a.Status != AwardStatusActive {
			continue
		}
		count := 0
		for _, c := range t.Contracts {
			if c.AwardID == a.ID {
				count++
			}
		}
		if count != 1 {
			return fmt.Errorf("%w: award %s has %d contracts", ErrCorruptAggregate, a.ID, count)
		}
	}

	referenced := make(map[string]string)
	for _, c := range t.Contracts {
		if len(c.AdditionalAwardIDs) > 0 && c.MergedInto != "" {
			return fmt.Errorf("%w: contract %s is both primary and merged", ErrCorruptAggregate, c.ID)
		}
		if c.Status == ContractStatusCancelled {
			continue
		}
		for _, id := range c.AdditionalAwardIDs {
			if owner, dup := referenced[id]; dup {
				return fmt.Errorf("%w: award %s merged into contracts %s and %s",
					ErrCorruptAggregate, id, owner, c.ID)
			}
			referenced[id] = c.ID
		}
	}

	// A contract is merged iff its back-reference and the primary's forward
	// reference agree.
	for _, c := range t.Contracts {
		merged := c.Status == ContractStatusMerged
		if merged != (c.MergedInto != "") {
			return fmt.Errorf("%w: contract %s merged flag mismatch", ErrCorruptAggregate, c.ID)
		}
		if !merged {
			continue
		}
		primary := t.ContractByID(c.MergedInto)
		if primary == nil {
			return fmt.Errorf("%w: contract %s merged into missing contract %s",
				ErrCorruptAggregate, c.ID, c.MergedInto)
		}
		found := false
		for _, id := range primary.AdditionalAwardIDs {
			if id == c.AwardID {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: contract %s not listed by primary %s",
				ErrCorruptAggregate, c.ID, primary.ID)
		}
	}

	// Contract values stay within the awarded ceiling of the merge group.
	for _, c := range t.Contracts {
		if c.MergedInto != "" || c.Value == nil || contractTerminal(c.Status) {
			continue
		}
		if max := t.AwardedAmount(c); c.Value.Amount > max {
			return fmt.Errorf("%w: contract %s amount %.2f exceeds awarded %.2f",
				ErrCorruptAggregate, c.ID, c.Value.Amount, max)
		}
	}
	return nil
}
