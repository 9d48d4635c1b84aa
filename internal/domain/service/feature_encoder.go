package service

import (
	"fmt"
	"math"

	"github.com/bibbank/creditrisk/internal/domain/model"
	"github.com/bibbank/creditrisk/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// FeatureEncoder – domain service
// ---------------------------------------------------------------------------

// FeatureEncoder maps a raw loan record onto a fixed-length numeric vector
// under a versioned schema. Encoding is pure and deterministic: the same
// record and schema always produce an identical vector.
type FeatureEncoder struct{}

// NewFeatureEncoder returns a new encoder instance.
func NewFeatureEncoder() *FeatureEncoder {
	return &FeatureEncoder{}
}

// Encode validates each raw field against the schema's declared range and
// applies the declared transforms in schema order. A value outside its range
// fails with *EncodingError; no vector is produced.
func (e *FeatureEncoder) Encode(rec model.LoanRecord, schema valueobject.FeatureSchema) (valueobject.FeatureVector, error) {
	raw := map[string]float64{
		valueobject.FeatureAnnualIncome:    rec.AnnualIncome().InexactFloat64(),
		valueobject.FeatureEmploymentYears: float64(rec.EmploymentYears()),
		valueobject.FeatureCreditScore:     float64(rec.CreditScore()),
		valueobject.FeatureExistingDebt:    rec.ExistingDebt().InexactFloat64(),
		valueobject.FeatureLoanAmount:      rec.LoanAmount().InexactFloat64(),
		valueobject.FeatureLoanTermMonths:  float64(rec.TermMonths()),
		valueobject.FeatureInterestRate:    rec.InterestRate().InexactFloat64(),
	}

	specs := schema.Specs()
	values := make([]float64, 0, len(specs))

	for _, spec := range specs {
		switch spec.Transform {
		case valueobject.TransformIdentity, valueobject.TransformLog1p:
			v, ok := raw[spec.Name]
			if !ok {
				return valueobject.FeatureVector{}, fmt.Errorf("schema v%d names unmapped feature %q", schema.Version(), spec.Name)
			}
			if v < spec.Min || v > spec.Max {
				return valueobject.FeatureVector{}, &EncodingError{
					Field: spec.Name,
					Value: v,
					Min:   spec.Min,
					Max:   spec.Max,
				}
			}
			if spec.Transform == valueobject.TransformLog1p {
				v = math.Log1p(v)
			}
			values = append(values, v)

		case valueobject.TransformRatio:
			num, ok := raw[spec.Numerator]
			if !ok {
				return valueobject.FeatureVector{}, fmt.Errorf("ratio feature %q references unmapped numerator %q", spec.Name, spec.Numerator)
			}
			denom, ok := raw[spec.Denominator]
			if !ok {
				return valueobject.FeatureVector{}, fmt.Errorf("ratio feature %q references unmapped denominator %q", spec.Name, spec.Denominator)
			}
			values = append(values, num/math.Max(denom, 1))

		default:
			return valueobject.FeatureVector{}, fmt.Errorf("unknown transform %q on feature %q", spec.Transform, spec.Name)
		}
	}

	return valueobject.NewFeatureVector(schema.Version(), values), nil
}
