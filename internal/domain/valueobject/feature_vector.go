package valueobject

// FeatureVector is an ordered numeric tuple keyed to the schema version it
// was encoded under. Its length and ordering always match that schema.
type FeatureVector struct {
	schemaVersion int
	values        []float64
}

// NewFeatureVector builds a vector from already-encoded values.
func NewFeatureVector(schemaVersion int, values []float64) FeatureVector {
	copied := make([]float64, len(values))
	copy(copied, values)
	return FeatureVector{schemaVersion: schemaVersion, values: copied}
}

// SchemaVersion returns the schema version the vector was encoded under.
func (v FeatureVector) SchemaVersion() int { return v.schemaVersion }

// Len returns the number of values in the vector.
func (v FeatureVector) Len() int { return len(v.values) }

// Values returns a copy of the ordered feature values.
func (v FeatureVector) Values() []float64 {
	out := make([]float64, len(v.values))
	copy(out, v.values)
	return out
}
