package tender

import "fmt"

// ValuePatch is a partial update of a contract value. Nil fields are kept.
type ValuePatch struct {
	Amount                *float64 `json:"amount,omitempty"`
	AmountNet             *float64 `json:"amountNet,omitempty"`
	Currency              *string  `json:"currency,omitempty"`
	ValueAddedTaxIncluded *bool    `json:"valueAddedTaxIncluded,omitempty"`
}

// ApplyContractValue validates and applies a value patch on the contract.
// Currency and the VAT flag are inherited from the award and immutable; the
// amount must not exceed the summed awarded amounts of the merge group, and
// amountNet must stay within the variant's tolerance band below amount.
func (t *Tender) ApplyContractValue(c *Contract, patch ValuePatch, v ProcedureVariant) error {
	if c.Value == nil {
		return ErrCorruptAggregate
	}
	if patch.Currency != nil && *patch.Currency != c.Value.Currency {
		return NewPreconditionFailed("value", "Can't update currency for contract value")
	}
	if patch.ValueAddedTaxIncluded != nil && *patch.ValueAddedTaxIncluded != c.Value.ValueAddedTaxIncluded {
		return NewPreconditionFailed("value", "Can't update valueAddedTaxIncluded for contract value")
	}

	amount := c.Value.Amount
	if patch.Amount != nil {
		amount = *patch.Amount
	}
	amountNet := c.Value.AmountNet
	if patch.AmountNet != nil {
		amountNet = *patch.AmountNet
	}

	max := t.AwardedAmount(c)
	if amount > max {
		return NewValidation("value",
			fmt.Sprintf("Value amount should be less or equal to awarded amount (%.1f)", max))
	}
	if amountNet != 0 {
		if amount < amountNet {
			return NewValidation("value",
				fmt.Sprintf("Value amount should be greater or equal to amountNet (%.1f)", amountNet))
		}
		if v.AmountNetTolerance > 0 {
			floor := amount * (1 - v.AmountNetTolerance)
			if amountNet < floor {
				return NewValidation("value",
					fmt.Sprintf("Value amountNet should be greater or equal to %.1f (amount less %.0f percent)",
						floor, v.AmountNetTolerance*100))
			}
		}
	}

	c.Value.Amount = amount
	c.Value.AmountNet = amountNet
	return nil
}
