package version

import "fmt"

// ruleOperators maps rule operators to the Compare results that satisfy
// them. Order matters: ">=" must be tested before a bare ">" would be.
var ruleOperators = []struct {
	op      string
	results []int
}{
	{">=", []int{1, 0}},
	{"<", []int{-1}},
}

// MatchRule reports whether v satisfies a rule like ">=1.0.0" or "<6.0".
// It is used for configuration range checks, not for dependency
// resolution (dependency version constraints are matched by name only).
func MatchRule(v, rule string) (bool, error) {
	for _, r := range ruleOperators {
		if len(rule) <= len(r.op) || rule[:len(r.op)] != r.op {
			continue
		}
		result := Compare(v, rule[len(r.op):])
		for _, want := range r.results {
			if result == want {
				return true, nil
			}
		}
		return false, nil
	}
	return false, fmt.Errorf("no known operator in version rule %q", rule)
}
