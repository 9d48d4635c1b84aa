package valueobject

import "fmt"

// ---------------------------------------------------------------------------
// OverwritePolicy – immutable value object
// ---------------------------------------------------------------------------

// OverwritePolicy controls whether an already-scored loan record may be
// rescored. Under REJECT a second scoring attempt fails; under
// VERSION_AND_REPLACE the new result supersedes the prior one entirely.
type OverwritePolicy struct {
	value string
}

const (
	overwritePolicyReject            = "REJECT"
	overwritePolicyVersionAndReplace = "VERSION_AND_REPLACE"
)

var (
	OverwritePolicyReject            = OverwritePolicy{value: overwritePolicyReject}
	OverwritePolicyVersionAndReplace = OverwritePolicy{value: overwritePolicyVersionAndReplace}
)

var validOverwritePolicies = map[string]OverwritePolicy{
	overwritePolicyReject:            OverwritePolicyReject,
	overwritePolicyVersionAndReplace: OverwritePolicyVersionAndReplace,
}

// NewOverwritePolicy creates an OverwritePolicy from a raw string.
func NewOverwritePolicy(s string) (OverwritePolicy, error) {
	v, ok := validOverwritePolicies[s]
	if !ok {
		return OverwritePolicy{}, fmt.Errorf("invalid overwrite policy: %q", s)
	}
	return v, nil
}

// AllowsOverwrite reports whether rescoring an already-scored record is permitted.
func (p OverwritePolicy) AllowsOverwrite() bool {
	return p.value == overwritePolicyVersionAndReplace
}

// String returns the string representation of the policy.
func (p OverwritePolicy) String() string { return p.value }

// IsZero returns true if the policy has not been initialised.
func (p OverwritePolicy) IsZero() bool { return p.value == "" }
