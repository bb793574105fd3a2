package sanitization

import "regexp"

type (
	// Sanitizer applies an ordered list of regexp rewrite rules to produce a
	// name acceptable to a specific AWS service, truncating to maxLength
	// (0 means unlimited) afterwards.
	Sanitizer struct {
		rules     []Rule
		maxLength int
	}

	Rule struct {
		Pattern     *regexp.Regexp
		Replacement string
	}
)

func NewSanitizer(rules []Rule, maxLength int) *Sanitizer {
	return &Sanitizer{rules: rules, maxLength: maxLength}
}

func (s *Sanitizer) Apply(input string) string {
	output := input
	for _, rule := range s.rules {
		output = rule.Pattern.ReplaceAllString(output, rule.Replacement)
	}
	if s.maxLength > 0 && len(output) > s.maxLength {
		output = output[:s.maxLength]
	}
	return output
}
