package service

import "fmt"

// EncodingError reports a raw feature value outside its declared range.
// The caller must reject the record; values are never silently clamped.
type EncodingError struct {
	Field string
	Value float64
	Min   float64
	Max   float64
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("feature %q out of range: got %v, expected [%v, %v]", e.Field, e.Value, e.Min, e.Max)
}

// SchemaMismatchError reports a feature vector scored against an artifact
// trained under a different schema version. The caller must re-encode or
// retrain; compatibility is never guessed.
type SchemaMismatchError struct {
	VectorVersion   int
	ArtifactVersion int
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf(
		"feature schema mismatch: vector encoded under v%d, artifact trained under v%d",
		e.VectorVersion, e.ArtifactVersion,
	)
}

// InsufficientDataError reports a training set below the configured minimum.
type InsufficientDataError struct {
	Records    int
	MinRecords int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient training data: %d labeled records, need at least %d", e.Records, e.MinRecords)
}

// LabelImbalanceError reports a training set where one outcome class is
// entirely absent; a classifier cannot be fit on a single class.
type LabelImbalanceError struct {
	Defaulted int
	Repaid    int
}

func (e *LabelImbalanceError) Error() string {
	return fmt.Sprintf("label imbalance: %d defaulted vs %d repaid records; both classes are required", e.Defaulted, e.Repaid)
}
