package valueobject

import "fmt"

// ---------------------------------------------------------------------------
// Outcome – immutable value object
// ---------------------------------------------------------------------------

// Outcome represents the historical repayment outcome of a loan. New
// applications carry OutcomeUnknown; historical records carry either
// OutcomeRepaid or OutcomeDefaulted, never both states at once.
type Outcome struct {
	value string
}

const (
	outcomeUnknown   = "UNKNOWN"
	outcomeRepaid    = "REPAID"
	outcomeDefaulted = "DEFAULTED"
)

var (
	OutcomeUnknown   = Outcome{value: outcomeUnknown}
	OutcomeRepaid    = Outcome{value: outcomeRepaid}
	OutcomeDefaulted = Outcome{value: outcomeDefaulted}
)

var validOutcomes = map[string]Outcome{
	outcomeUnknown:   OutcomeUnknown,
	outcomeRepaid:    OutcomeRepaid,
	outcomeDefaulted: OutcomeDefaulted,
}

// NewOutcome creates an Outcome from a raw string.
func NewOutcome(s string) (Outcome, error) {
	v, ok := validOutcomes[s]
	if !ok {
		return Outcome{}, fmt.Errorf("invalid outcome: %q", s)
	}
	return v, nil
}

// OutcomeFromLabel builds a known outcome from a binary default label.
func OutcomeFromLabel(defaulted bool) Outcome {
	if defaulted {
		return OutcomeDefaulted
	}
	return OutcomeRepaid
}

// Known reports whether the outcome has been observed.
func (o Outcome) Known() bool { return o.value == outcomeRepaid || o.value == outcomeDefaulted }

// Defaulted reports whether the borrower defaulted. Only meaningful when Known.
func (o Outcome) Defaulted() bool { return o.value == outcomeDefaulted }

// String returns the string representation of the outcome.
func (o Outcome) String() string { return o.value }

// IsZero returns true if the outcome has not been initialised.
func (o Outcome) IsZero() bool { return o.value == "" }

// Equal returns true when both outcomes carry the same value.
func (o Outcome) Equal(other Outcome) bool { return o.value == other.value }
