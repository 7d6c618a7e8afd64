package rules

import (
	"errors"
	"testing"

	"mercator-hq/clausewatch/pkg/contract"
)

func sampleRules() []Rule {
	return []Rule{
		liabilityRule(),
		{ID: "rule-2", Name: "Data Protection", Severity: "High", Active: true,
			Regulation: "UK GDPR", Pattern: `\bpersonal\s+data\b|\bdata\s+processing\b`},
		{ID: "rule-7", Name: "Confidentiality Duration", Severity: "Low", Active: true,
			Pattern: `\bconfidential\s+information\b|\bconfidentiality\b`},
		{ID: "rule-9", Name: "Governing Law", Severity: "Medium", Active: true,
			Pattern: `\bgoverning\s+law\b|\bjurisdiction\b`},
		{ID: "rule-10", Name: "Insurance Requirements", Severity: "Medium", Active: false,
			Pattern: `\binsurance\b|\bindemnity\b|\bindemnification\b`},
	}
}

func ids(rs []*CompiledRule) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.ID()
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNewRuleSet_Order(t *testing.T) {
	set, err := NewRuleSet(sampleRules(), DefaultCompileOptions())
	if err != nil {
		t.Fatalf("NewRuleSet() error = %v", err)
	}

	if got, want := ids(set.All()), []string{"rule-1", "rule-2", "rule-7", "rule-9", "rule-10"}; !equalStrings(got, want) {
		t.Errorf("All() = %v, want %v", got, want)
	}
	if got, want := ids(set.ListActive()), []string{"rule-1", "rule-2", "rule-7", "rule-9"}; !equalStrings(got, want) {
		t.Errorf("ListActive() = %v, want %v", got, want)
	}
	if set.Len() != 5 || set.ActiveLen() != 4 {
		t.Errorf("Len() = %d, ActiveLen() = %d", set.Len(), set.ActiveLen())
	}
}

func TestNewRuleSet_CollectsAllErrors(t *testing.T) {
	input := sampleRules()
	input[1].Pattern = `(personal data`
	input[3].Severity = "urgent"
	input = append(input, Rule{ID: "rule-1", Severity: "Low", Active: true, Pattern: "duplicate"})

	set, err := NewRuleSet(input, DefaultCompileOptions())
	if set != nil {
		t.Fatal("NewRuleSet() returned a rule set despite invalid rules")
	}

	var list *ErrorList
	if !errors.As(err, &list) {
		t.Fatalf("error = %T, want *ErrorList", err)
	}
	if len(list.Errors) != 3 {
		t.Fatalf("got %d errors, want 3: %v", len(list.Errors), err)
	}

	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatal("errors.As() could not reach *ConfigurationError through the list")
	}
	if cfgErr.RuleID != "rule-2" || cfgErr.Index != 1 {
		t.Errorf("first error = %+v, want rule-2 at index 1", cfgErr)
	}
	if !errors.Is(err, ErrDuplicateRule) {
		t.Error("duplicate id not reported with ErrDuplicateRule")
	}
}

func TestNewRuleSet_SingleInvalidPattern(t *testing.T) {
	_, err := NewRuleSet([]Rule{{ID: "bad", Severity: "High", Active: true, Pattern: `[unclosed`}}, DefaultCompileOptions())

	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("error = %v, want *ConfigurationError", err)
	}
	if cfgErr.RuleID != "bad" || cfgErr.Field != "pattern" {
		t.Errorf("error = %+v", cfgErr)
	}
}

func TestRuleSet_Get(t *testing.T) {
	set, _ := NewRuleSet(sampleRules(), DefaultCompileOptions())

	r, err := set.Get("rule-10")
	if err != nil {
		t.Fatalf("Get(inactive) error = %v", err)
	}
	if r.Active() {
		t.Error("rule-10 should be inactive")
	}

	_, err = set.Get("rule-404")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestRuleSet_Version(t *testing.T) {
	a, _ := NewRuleSet(sampleRules(), DefaultCompileOptions())
	b, _ := NewRuleSet(sampleRules(), DefaultCompileOptions())
	if a.Version() != b.Version() {
		t.Errorf("identical rules produced versions %q and %q", a.Version(), b.Version())
	}
	if len(a.Version()) != 16 {
		t.Errorf("Version() = %q, want 16 hex chars", a.Version())
	}

	changed := sampleRules()
	changed[2].Severity = "High"
	c, _ := NewRuleSet(changed, DefaultCompileOptions())
	if c.Version() == a.Version() {
		t.Error("severity change did not change version")
	}

	sensitive, _ := NewRuleSet(sampleRules(), CompileOptions{CaseInsensitive: false})
	if sensitive.Version() == a.Version() {
		t.Error("case option did not change version")
	}
}

func TestRuleSet_ListActiveReturnsCopy(t *testing.T) {
	set, _ := NewRuleSet(sampleRules(), DefaultCompileOptions())

	active := set.ListActive()
	active[0] = nil

	if set.ListActive()[0] == nil {
		t.Error("ListActive() exposed internal slice")
	}
}

func TestRuleSet_Stats(t *testing.T) {
	set, _ := NewRuleSet(sampleRules(), DefaultCompileOptions())
	stats := set.Stats()

	if stats.Rules != 5 || stats.Active != 4 {
		t.Errorf("Stats() = %+v", stats)
	}
	if stats.BySeverity[contract.SeverityHigh] != 2 ||
		stats.BySeverity[contract.SeverityMedium] != 1 ||
		stats.BySeverity[contract.SeverityLow] != 1 {
		t.Errorf("BySeverity = %v", stats.BySeverity)
	}
}
