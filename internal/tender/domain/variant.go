package tender

import "time"

const (
	VariantReporting        = "reporting"
	VariantNegotiation      = "negotiation"
	VariantNegotiationQuick = "negotiation.quick"
)

// ProcedureVariant carries the constants that differ between procedure types.
// It replaces the inheritance chain of the tender variants with plain data
// selected once at construction.
type ProcedureVariant struct {
	Name string

	// StandStillDays is the complaint period length granted on award
	// activation. Zero disables the stand-still gate entirely.
	StandStillDays int

	// RequiresQualification demands qualified == true before activation.
	RequiresQualification bool

	// AmountNetTolerance is the allowed fractional gap between a contract's
	// amount and amountNet. Zero disables the band check.
	AmountNetTolerance float64

	// AcceleratorDivisor shortens stand-still periods in sandbox mode.
	// Values below 2 leave periods untouched.
	AcceleratorDivisor int
}

// Reporting returns the variant without stand-still or qualification gates.
func Reporting() ProcedureVariant {
	return ProcedureVariant{
		Name:               VariantReporting,
		AmountNetTolerance: 0.20,
	}
}

// Negotiation returns the default negotiation variant.
func Negotiation() ProcedureVariant {
	return ProcedureVariant{
		Name:                  VariantNegotiation,
		StandStillDays:        10,
		RequiresQualification: true,
		AmountNetTolerance:    0.20,
	}
}

// NegotiationQuick returns the shortened negotiation variant.
func NegotiationQuick() ProcedureVariant {
	return ProcedureVariant{
		Name:                  VariantNegotiationQuick,
		StandStillDays:        5,
		RequiresQualification: true,
		AmountNetTolerance:    0.20,
	}
}

// HasStandStill reports whether awards carry a complaint period.
func (v ProcedureVariant) HasStandStill() bool {
	return v.StandStillDays > 0
}

// StandStillPeriod computes the complaint period starting at now.
func (v ProcedureVariant) StandStillPeriod(now time.Time) Period {
	length := time.Duration(v.StandStillDays) * 24 * time.Hour
	if v.AcceleratorDivisor > 1 {
		length /= time.Duration(v.AcceleratorDivisor)
	}
	return Period{StartDate: now, EndDate: now.Add(length)}
}
