package audit

import "regexp"

// Category labels the concern a rule defends against. Scans iterate
// categories in a fixed order so findings are deterministic.
type Category string

const (
	CategoryInjection   Category = "injection"
	CategoryDestructive Category = "destructive"
	CategoryCredential  Category = "credential"
	CategoryTraversal   Category = "traversal"
)

// Verdict is the three-level outcome of a security scan.
type Verdict string

const (
	VerdictPass Verdict = "PASS"
	VerdictWarn Verdict = "WARN"
	VerdictFail Verdict = "FAIL"
)

func (v Verdict) rank() int {
	switch v {
	case VerdictFail:
		return 2
	case VerdictWarn:
		return 1
	default:
		return 0
	}
}

// Max returns the more severe of the two verdicts.
func (v Verdict) Max(other Verdict) Verdict {
	if other.rank() > v.rank() {
		return other
	}
	return v
}

// Rule is one compiled detection rule from the registry.
type Rule struct {
	Name     string
	Category Category
	Severity Verdict
	re       *regexp.Regexp
}

// Match reports the first matched substring in text, if any.
func (r Rule) Match(text string) (string, bool) {
	m := r.re.FindString(text)
	if m == "" {
		return "", false
	}
	return m, true
}

// Pattern returns the rule's regular expression source.
func (r Rule) Pattern() string {
	return r.re.String()
}

type ruleSpec struct {
	name     string
	category Category
	severity Verdict
	pattern  string
}

// The registry is declared as data and compiled once at process start.
// Severity is a load-bearing design choice: injection and destructive
// matches block the pipeline, credential and traversal matches are
// informational because they can be redacted without danger.
var ruleTable = []ruleSpec{
	{"prompt_override", CategoryInjection, VerdictFail, `(?i)ignore\s+(all\s+)?previous\s+instructions`},
	{"prompt_override", CategoryInjection, VerdictFail, `(?i)disregard\s+(all\s+)?(prior|above)`},
	{"role_hijack", CategoryInjection, VerdictFail, `(?i)you\s+are\s+now\s+(a|an)\s+`},
	{"data_exfil", CategoryInjection, VerdictFail, `(?i)(curl|wget|fetch)\s+https?://`},

	{"destructive_shell", CategoryDestructive, VerdictFail, `(?i)rm\s+-rf\s+/`},
	{"destructive_sql", CategoryDestructive, VerdictFail, `(?i)DROP\s+(TABLE|DATABASE|SCHEMA)`},
	{"destructive_shell", CategoryDestructive, VerdictFail, `(?i)format\s+[a-z]:`},
	{"privilege_escalation", CategoryDestructive, VerdictFail, `(?i)(sudo|su\s+root|chmod\s+777)`},

	// Vendor key prefixes are case-sensitive on purpose: AKIA and sk-
	// shapes lose their meaning when case-folded.
	{"api_key_leak", CategoryCredential, VerdictWarn, `sk-[a-zA-Z0-9]{20,}`},
	{"password_literal", CategoryCredential, VerdictWarn, `(?i)password\s*[:=]\s*['"][^'"]{4,}`},
	{"aws_key", CategoryCredential, VerdictWarn, `AKIA[0-9A-Z]{16}`},
	{"private_key", CategoryCredential, VerdictWarn, `(?i)-----BEGIN\s+(RSA|EC|DSA|OPENSSH)\s+PRIVATE\s+KEY`},
	{"github_token", CategoryCredential, VerdictWarn, `gh[ps]_[A-Za-z0-9_]{36,}`},
	{"jwt_token", CategoryCredential, VerdictWarn, `eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}\.`},

	{"path_traversal", CategoryTraversal, VerdictWarn, `\.\.[/\\]`},
	{"absolute_path", CategoryTraversal, VerdictWarn, `(?i)(^|[\s;|])(/etc/passwd|/etc/shadow|C:\\Windows\\System32)`},
}

// CategoryOrder is the fixed order categories are scanned in.
var CategoryOrder = []Category{
	CategoryInjection,
	CategoryDestructive,
	CategoryCredential,
	CategoryTraversal,
}

var rulesByCategory = compileRules(ruleTable)

func compileRules(specs []ruleSpec) map[Category][]Rule {
	out := make(map[Category][]Rule)
	for _, spec := range specs {
		out[spec.category] = append(out[spec.category], Rule{
			Name:     spec.name,
			Category: spec.category,
			Severity: spec.severity,
			re:       regexp.MustCompile(spec.pattern),
		})
	}
	return out
}

// RulesFor returns the registered rules of a category in registration order.
func RulesFor(category Category) []Rule {
	rules := rulesByCategory[category]
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// AllRules returns every registered rule, grouped and ordered by category.
func AllRules() []Rule {
	out := make([]Rule, 0, len(ruleTable))
	for _, category := range CategoryOrder {
		out = append(out, rulesByCategory[category]...)
	}
	return out
}
