// Package dataset writes label-partitioned training samples and the
// normalization artifact they were produced with.
package dataset

import "github.com/banshee-data/wifiprep/internal/capture"

// DefaultLabel receives every entry whose label is not in Labels.
const DefaultLabel = "normal"

// Labels is the closed label set of the classifier, in output order.
var Labels = []string{"normal", "rogue_ap", "evil_twin", "deauth_target", "vulnerable"}

// IsKnownLabel reports whether label belongs to Labels.
func IsKnownLabel(label string) bool {
	for _, l := range Labels {
		if l == label {
			return true
		}
	}
	return false
}

// ResolveLabel maps label onto the fixed set. Unknown labels become
// DefaultLabel; coerced reports whether that happened.
func ResolveLabel(label string) (resolved string, coerced bool) {
	if IsKnownLabel(label) {
		return label, false
	}
	return DefaultLabel, true
}

// ApplyDefaultLabel returns a copy of entries where records without a label
// field carry label. Records with a label, known or not, are left alone.
func ApplyDefaultLabel(entries []capture.Entry, label string) []capture.Entry {
	out := make([]capture.Entry, len(entries))
	for i, e := range entries {
		if !e.HasLabel() {
			e.Label = capture.StringPtr(label)
		}
		out[i] = e
	}
	return out
}
