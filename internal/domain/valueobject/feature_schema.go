package valueobject

import "fmt"

// ---------------------------------------------------------------------------
// FeatureSchema – versioned, ordered feature specification
// ---------------------------------------------------------------------------

// TransformKind enumerates the transforms a schema may declare on a feature.
type TransformKind string

const (
	// TransformIdentity passes the raw value through unchanged.
	TransformIdentity TransformKind = "identity"
	// TransformLog1p applies ln(1+x) to the raw value.
	TransformLog1p TransformKind = "log1p"
	// TransformRatio derives the feature as Numerator / max(Denominator, 1).
	TransformRatio TransformKind = "ratio"
)

// FeatureSpec describes one position in a feature vector: its name, the
// valid range for the raw input, and the declared transform.
type FeatureSpec struct {
	Name        string
	Min         float64
	Max         float64
	Transform   TransformKind
	Numerator   string // ratio transform only
	Denominator string // ratio transform only
}

// Derived reports whether the feature is computed from other raw fields
// rather than read directly from the record.
func (s FeatureSpec) Derived() bool { return s.Transform == TransformRatio }

// FeatureSchema is the versioned, ordered specification of how a raw loan
// record maps to a numeric feature vector. A vector built under one schema
// version must never be scored by an artifact trained under another.
type FeatureSchema struct {
	version int
	specs   []FeatureSpec
}

// Canonical feature names, in schema order.
const (
	FeatureAnnualIncome    = "annual_income"
	FeatureEmploymentYears = "employment_years"
	FeatureCreditScore     = "credit_score"
	FeatureExistingDebt    = "existing_debt"
	FeatureLoanAmount      = "loan_amount"
	FeatureLoanTermMonths  = "loan_term_months"
	FeatureInterestRate    = "interest_rate"
	FeatureDebtToIncome    = "dti"
	FeatureLoanToIncome    = "lti"
)

// FeatureSchemaV1 returns version 1 of the schema: the seven raw financial
// fields plus two declared ratio derivations.
func FeatureSchemaV1() FeatureSchema {
	return FeatureSchema{
		version: 1,
		specs: []FeatureSpec{
			{Name: FeatureAnnualIncome, Min: 0, Max: 1_000_000_000, Transform: TransformIdentity},
			{Name: FeatureEmploymentYears, Min: 0, Max: 60, Transform: TransformIdentity},
			{Name: FeatureCreditScore, Min: 300, Max: 900, Transform: TransformIdentity},
			{Name: FeatureExistingDebt, Min: 0, Max: 1_000_000_000, Transform: TransformIdentity},
			{Name: FeatureLoanAmount, Min: 1, Max: 1_000_000_000, Transform: TransformIdentity},
			{Name: FeatureLoanTermMonths, Min: 1, Max: 480, Transform: TransformIdentity},
			{Name: FeatureInterestRate, Min: 0, Max: 100, Transform: TransformIdentity},
			{Name: FeatureDebtToIncome, Transform: TransformRatio, Numerator: FeatureExistingDebt, Denominator: FeatureAnnualIncome},
			{Name: FeatureLoanToIncome, Transform: TransformRatio, Numerator: FeatureLoanAmount, Denominator: FeatureAnnualIncome},
		},
	}
}

// SchemaByVersion resolves a schema version recorded in an artifact.
func SchemaByVersion(version int) (FeatureSchema, error) {
	switch version {
	case 1:
		return FeatureSchemaV1(), nil
	default:
		return FeatureSchema{}, fmt.Errorf("unknown feature schema version: %d", version)
	}
}

// Version returns the schema version.
func (s FeatureSchema) Version() int { return s.version }

// Len returns the number of features in the schema.
func (s FeatureSchema) Len() int { return len(s.specs) }

// Specs returns a copy of the ordered feature specifications.
func (s FeatureSchema) Specs() []FeatureSpec {
	out := make([]FeatureSpec, len(s.specs))
	copy(out, s.specs)
	return out
}

// FeatureNames returns the feature names in schema order.
func (s FeatureSchema) FeatureNames() []string {
	names := make([]string, len(s.specs))
	for i, spec := range s.specs {
		names[i] = spec.Name
	}
	return names
}
