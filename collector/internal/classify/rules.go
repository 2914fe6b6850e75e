package classify

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bugmatrix/bugmatrix/internal/matrix"
)

// Rule binds one platform to the patterns that identify it. Patterns are
// case-insensitive substrings matched against an issue's text sources.
type Rule struct {
	Platform matrix.Platform `yaml:"platform"`
	Patterns []string        `yaml:"patterns"`
}

// RuleSet is a versioned, ordered list of classification rules. Rules are
// evaluated top to bottom; the first match wins.
type RuleSet struct {
	Version int    `yaml:"version"`
	Rules   []Rule `yaml:"rules"`
}

// DefaultRuleSet returns the built-in rules, version 1.
//
// Ordering is most-specific-first and load-bearing:
//   - "cms adaptor" / "cms dashboard" before ANDROID, so a summary like
//     "CMS Adaptor issue on Android build" lands on the adaptor;
//   - TV platforms before ANDROID and WEB, because "android tv" contains
//     "android" and "webos" contains "web".
func DefaultRuleSet() *RuleSet {
	return &RuleSet{
		Version: 1,
		Rules: []Rule{
			{matrix.PlatformCMSAdaptor, []string{"cms adaptor", "cms_adaptor", "cms-adaptor", "cmsadaptor"}},
			{matrix.PlatformCMSDashboard, []string{"cms dashboard", "cms_dashboard", "cms-dashboard", "cmsdashboard"}},
			{matrix.PlatformATV, []string{"apple tv", "apple_tv", "appletv", "android tv", "android_tv", "androidtv", "atv"}},
			{matrix.PlatformSamsungTV, []string{"sam_tv", "sam tv", "samsung tv", "samsung_tv", "samsung", "tizen"}},
			{matrix.PlatformLGTV, []string{"lg_tv", "lg tv", "lgtv", "webos", "lg"}},
			{matrix.PlatformDishIT, []string{"dishit", "dish_it", "dish it", "dish"}},
			{matrix.PlatformAndroid, []string{"android_mobile", "android mobile", "android"}},
			{matrix.PlatformIOS, []string{"ios", "iphone", "ipad"}},
			{matrix.PlatformWeb, []string{"web", "browser"}},
		},
	}
}

// LoadRuleSet reads an alternate rule set from a YAML file, for
// deterministic testing and operational tuning without a rebuild.
func LoadRuleSet(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("classify: read rules: %w", err)
	}
	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("classify: parse rules: %w", err)
	}
	if err := rs.validate(); err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}
	// Matching lower-cases the issue text, so patterns must be lower-case too.
	for _, r := range rs.Rules {
		for j, p := range r.Patterns {
			r.Patterns[j] = strings.ToLower(p)
		}
	}
	return &rs, nil
}

func (rs *RuleSet) validate() error {
	if rs.Version <= 0 {
		return fmt.Errorf("rule set must declare a positive version")
	}
	if len(rs.Rules) == 0 {
		return fmt.Errorf("rule set has no rules")
	}
	for i, r := range rs.Rules {
		if !matrix.KnownPlatform(r.Platform) {
			return fmt.Errorf("rules[%d]: unknown platform %q", i, r.Platform)
		}
		if len(r.Patterns) == 0 {
			return fmt.Errorf("rules[%d] %s: no patterns", i, r.Platform)
		}
		for j, p := range r.Patterns {
			if p == "" {
				return fmt.Errorf("rules[%d] %s: patterns[%d] is empty", i, r.Platform, j)
			}
		}
	}
	return nil
}
