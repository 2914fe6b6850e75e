package classify

import (
	"sort"
	"strings"

	"github.com/bugmatrix/bugmatrix/collector/internal/jira"
	"github.com/bugmatrix/bugmatrix/internal/matrix"
)

// Status maps an upstream status name onto the recognized enumeration.
// The lookup is exact after trimming and upper-casing. ok is false for any
// other value, which means the record is excluded from aggregation
// entirely — not counted as unclassified.
func Status(name string) (matrix.Status, bool) {
	s := matrix.Status(strings.ToUpper(strings.TrimSpace(name)))
	if matrix.KnownStatus(s) {
		return s, true
	}
	return "", false
}

// Platform detects the issue's platform by evaluating the rule set against
// the issue's text sources in priority order: components, then labels,
// then summary, then custom field values. Within each source the rules run
// in their declared order; the first case-insensitive substring match
// wins. No match across all sources yields PlatformUnclassified.
func (rs *RuleSet) Platform(is jira.Issue) matrix.Platform {
	for _, text := range sourceTiers(is) {
		if text == "" {
			continue
		}
		for _, rule := range rs.Rules {
			for _, pattern := range rule.Patterns {
				if strings.Contains(text, pattern) {
					return rule.Platform
				}
			}
		}
	}
	return matrix.PlatformUnclassified
}

// sourceTiers returns the issue's lower-cased text sources in detection
// priority order.
func sourceTiers(is jira.Issue) [4]string {
	var custom string
	if len(is.CustomFields) > 0 {
		// Map iteration order is unspecified; sort the keys so the custom
		// tier's text is the same on every run.
		keys := make([]string, 0, len(is.CustomFields))
		for k := range is.CustomFields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		vals := make([]string, 0, len(keys))
		for _, k := range keys {
			vals = append(vals, is.CustomFields[k])
		}
		custom = strings.Join(vals, " ")
	}
	return [4]string{
		strings.ToLower(strings.Join(is.Components, " ")),
		strings.ToLower(strings.Join(is.Labels, " ")),
		strings.ToLower(is.Summary),
		strings.ToLower(custom),
	}
}
