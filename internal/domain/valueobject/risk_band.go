package valueobject

import "fmt"

// ---------------------------------------------------------------------------
// RiskBand – immutable value object
// ---------------------------------------------------------------------------

// RiskBand buckets a default probability into a coarse operator-facing band.
type RiskBand struct {
	value string
}

const (
	riskBandLow    = "LOW"
	riskBandMedium = "MEDIUM"
	riskBandHigh   = "HIGH"
)

var (
	RiskBandLow    = RiskBand{value: riskBandLow}
	RiskBandMedium = RiskBand{value: riskBandMedium}
	RiskBandHigh   = RiskBand{value: riskBandHigh}
)

var validRiskBands = map[string]RiskBand{
	riskBandLow:    RiskBandLow,
	riskBandMedium: RiskBandMedium,
	riskBandHigh:   RiskBandHigh,
}

// Band boundaries on the default probability.
const (
	riskBandMediumFloor = 0.33
	riskBandHighFloor   = 0.66
)

// NewRiskBand creates a RiskBand from a raw string.
func NewRiskBand(s string) (RiskBand, error) {
	v, ok := validRiskBands[s]
	if !ok {
		return RiskBand{}, fmt.Errorf("invalid risk band: %q", s)
	}
	return v, nil
}

// RiskBandFromProbability maps a default probability onto its band.
func RiskBandFromProbability(p float64) RiskBand {
	switch {
	case p < riskBandMediumFloor:
		return RiskBandLow
	case p < riskBandHighFloor:
		return RiskBandMedium
	default:
		return RiskBandHigh
	}
}

// String returns the string representation of the band.
func (b RiskBand) String() string { return b.value }

// IsZero returns true if the band has not been initialised.
func (b RiskBand) IsZero() bool { return b.value == "" }

// Equal returns true when both bands carry the same value.
func (b RiskBand) Equal(other RiskBand) bool { return b.value == other.value }
