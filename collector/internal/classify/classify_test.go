package classify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bugmatrix/bugmatrix/collector/internal/jira"
	"github.com/bugmatrix/bugmatrix/internal/matrix"
)

// --- status lookup -----------------------------------------------------------

func TestStatus_RecognizedValues(t *testing.T) {
	cases := []struct {
		in   string
		want matrix.Status
	}{
		{"OPEN", matrix.StatusOpen},
		{"open", matrix.StatusOpen},
		{"  In Progress ", matrix.StatusInProgress},
		{"Reopened", matrix.StatusReopened},
		{"in review", matrix.StatusInReview},
		{"Issue Accepted", matrix.StatusIssueAccepted},
		{"PARKED", matrix.StatusParked},
	}
	for _, tc := range cases {
		got, ok := Status(tc.in)
		if !ok || got != tc.want {
			t.Errorf("Status(%q) = (%q, %v), want (%q, true)", tc.in, got, ok, tc.want)
		}
	}
}

func TestStatus_UnrecognizedValuesExcluded(t *testing.T) {
	for _, in := range []string{"Closed", "Done", "Backlog", "", "OPENED"} {
		if _, ok := Status(in); ok {
			t.Errorf("Status(%q) recognized, want excluded", in)
		}
	}
}

// --- platform detection ------------------------------------------------------

func TestPlatform_MatchesEachKnownPlatform(t *testing.T) {
	rs := DefaultRuleSet()
	cases := []struct {
		label string
		want  matrix.Platform
	}{
		{"ANDROID", matrix.PlatformAndroid},
		{"android_mobile", matrix.PlatformAndroid},
		{"Apple TV", matrix.PlatformATV},
		{"ANDROID_TV", matrix.PlatformATV},
		{"CMS_Adaptor", matrix.PlatformCMSAdaptor},
		{"cms dashboard", matrix.PlatformCMSDashboard},
		{"DishIT", matrix.PlatformDishIT},
		{"iOS", matrix.PlatformIOS},
		{"iphone", matrix.PlatformIOS},
		{"LGTV", matrix.PlatformLGTV},
		{"webOS", matrix.PlatformLGTV},
		{"Samsung TV", matrix.PlatformSamsungTV},
		{"tizen", matrix.PlatformSamsungTV},
		{"web", matrix.PlatformWeb},
	}
	for _, tc := range cases {
		got := rs.Platform(jira.Issue{Labels: []string{tc.label}})
		if got != tc.want {
			t.Errorf("Platform(label=%q) = %s, want %s", tc.label, got, tc.want)
		}
	}
}

func TestPlatform_NoMatchIsUnclassified(t *testing.T) {
	rs := DefaultRuleSet()
	is := jira.Issue{
		Summary:    "intermittent login failure",
		Labels:     []string{"auth", "flaky"},
		Components: []string{"Backend"},
	}
	if got := rs.Platform(is); got != matrix.PlatformUnclassified {
		t.Errorf("Platform = %s, want UNCLASSIFIED", got)
	}
	if got := rs.Platform(jira.Issue{}); got != matrix.PlatformUnclassified {
		t.Errorf("Platform of empty issue = %s, want UNCLASSIFIED", got)
	}
}

// Compound platform names must be checked before the single tokens they
// contain — the rule order is part of the contract.
func TestPlatform_SpecificRulesWinOverContainedTokens(t *testing.T) {
	rs := DefaultRuleSet()
	cases := []struct {
		name string
		is   jira.Issue
		want matrix.Platform
	}{
		{
			"cms adaptor beats android in summary",
			jira.Issue{Summary: "CMS Adaptor issue on Android build"},
			matrix.PlatformCMSAdaptor,
		},
		{
			"webos beats web",
			jira.Issue{Labels: []string{"webOS"}},
			matrix.PlatformLGTV,
		},
		{
			"android tv beats android",
			jira.Issue{Labels: []string{"Android TV"}},
			matrix.PlatformATV,
		},
		{
			"samsung tv beats web in same text",
			jira.Issue{Summary: "Samsung TV web view hangs"},
			matrix.PlatformSamsungTV,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := rs.Platform(tc.is); got != tc.want {
				t.Errorf("Platform = %s, want %s", got, tc.want)
			}
		})
	}
}

// Components outrank labels, labels outrank summary, summary outranks
// custom fields.
func TestPlatform_SourceTierPriority(t *testing.T) {
	rs := DefaultRuleSet()

	is := jira.Issue{
		Components: []string{"IOS"},
		Labels:     []string{"ANDROID"},
		Summary:    "broken on web",
	}
	if got := rs.Platform(is); got != matrix.PlatformIOS {
		t.Errorf("components should win, got %s", got)
	}

	is.Components = nil
	if got := rs.Platform(is); got != matrix.PlatformAndroid {
		t.Errorf("labels should win over summary, got %s", got)
	}

	is.Labels = nil
	if got := rs.Platform(is); got != matrix.PlatformWeb {
		t.Errorf("summary should win over custom fields, got %s", got)
	}
}

func TestPlatform_CustomFieldsAreLastResort(t *testing.T) {
	rs := DefaultRuleSet()
	is := jira.Issue{
		Summary:      "playback stutter",
		CustomFields: map[string]string{"customfield_10020": "webOS 6.0"},
	}
	if got := rs.Platform(is); got != matrix.PlatformLGTV {
		t.Errorf("Platform = %s, want LG_TV from custom field", got)
	}
}

func TestPlatform_Deterministic(t *testing.T) {
	rs := DefaultRuleSet()
	// Two custom fields matching different rules; the sorted-key text must
	// make the outcome identical on every call.
	is := jira.Issue{CustomFields: map[string]string{
		"customfield_10001": "DishIT rollout",
		"customfield_10002": "Samsung firmware",
	}}
	want := rs.Platform(is)
	for i := 0; i < 50; i++ {
		if got := rs.Platform(is); got != want {
			t.Fatalf("Platform flapped between %s and %s", want, got)
		}
	}
}

// --- rule set loading --------------------------------------------------------

func TestDefaultRuleSet_Valid(t *testing.T) {
	rs := DefaultRuleSet()
	if rs.Version != 1 {
		t.Errorf("Version = %d, want 1", rs.Version)
	}
	if err := rs.validate(); err != nil {
		t.Errorf("built-in rule set invalid: %v", err)
	}
	covered := map[matrix.Platform]bool{}
	for _, r := range rs.Rules {
		covered[r.Platform] = true
	}
	for _, p := range matrix.Platforms() {
		if !covered[p] {
			t.Errorf("no rule covers platform %s", p)
		}
	}
}

func TestLoadRuleSet_OverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	body := `
version: 2
rules:
  - platform: WEB
    patterns: ["kiosk"]
  - platform: ANDROID
    patterns: ["android"]
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	rs, err := LoadRuleSet(path)
	if err != nil {
		t.Fatalf("LoadRuleSet: %v", err)
	}
	if rs.Version != 2 || len(rs.Rules) != 2 {
		t.Fatalf("loaded rule set = %+v", rs)
	}
	if got := rs.Platform(jira.Issue{Summary: "kiosk mode crash"}); got != matrix.PlatformWeb {
		t.Errorf("override rule not applied, got %s", got)
	}
}

func TestLoadRuleSet_Invalid(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"no version", "rules:\n  - platform: WEB\n    patterns: [web]\n"},
		{"unknown platform", "version: 1\nrules:\n  - platform: PS5\n    patterns: [ps5]\n"},
		{"empty patterns", "version: 1\nrules:\n  - platform: WEB\n    patterns: []\n"},
		{"empty pattern string", "version: 1\nrules:\n  - platform: WEB\n    patterns: [\"\"]\n"},
		{"no rules", "version: 1\nrules: []\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "rules.yaml")
			if err := os.WriteFile(path, []byte(tc.body), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadRuleSet(path); err == nil {
				t.Error("LoadRuleSet should fail")
			}
		})
	}
}
