package router

import (
	"fmt"
	"regexp"
	"strings"
)

// placeholderPattern finds {name} placeholders in a route pattern.
var placeholderPattern = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Matcher is a compiled route pattern. It is immutable once built.
type Matcher struct {
	pattern string
	names   []string
	regex   *regexp.Regexp
}

// CompilePattern compiles a pattern such as /api/users/{id}. Literal
// text is matched case-insensitively and each placeholder captures one
// path segment.
func CompilePattern(pattern string) (*Matcher, error) {
	if !strings.HasPrefix(pattern, "/") {
		return nil, fmt.Errorf("pattern %q must start with /", pattern)
	}

	var (
		expr  strings.Builder
		names []string
		last  int
	)
	seen := make(map[string]bool)

	expr.WriteString("(?i)^")
	for _, loc := range placeholderPattern.FindAllStringSubmatchIndex(pattern, -1) {
		literal := pattern[last:loc[0]]
		if strings.ContainsAny(literal, "{}") {
			return nil, fmt.Errorf("pattern %q has a malformed placeholder", pattern)
		}
		name := pattern[loc[2]:loc[3]]
		if seen[name] {
			return nil, fmt.Errorf("pattern %q repeats placeholder %q", pattern, name)
		}
		seen[name] = true

		expr.WriteString(regexp.QuoteMeta(literal))
		expr.WriteString("([^/]+)")
		names = append(names, name)
		last = loc[1]
	}

	tail := pattern[last:]
	if strings.ContainsAny(tail, "{}") {
		return nil, fmt.Errorf("pattern %q has a malformed placeholder", pattern)
	}
	expr.WriteString(regexp.QuoteMeta(tail))
	expr.WriteString("$")

	regex, err := regexp.Compile(expr.String())
	if err != nil {
		return nil, fmt.Errorf("compile pattern %q: %w", pattern, err)
	}

	return &Matcher{pattern: pattern, names: names, regex: regex}, nil
}

// Match reports whether path matches and returns the captures zipped
// with the placeholder names in left-to-right order.
func (m *Matcher) Match(path string) ([]Param, bool) {
	groups := m.regex.FindStringSubmatch(path)
	if groups == nil {
		return nil, false
	}

	params := make([]Param, len(m.names))
	for i, name := range m.names {
		params[i] = Param{Name: name, Value: groups[i+1]}
	}
	return params, true
}

// Pattern returns the source pattern.
func (m *Matcher) Pattern() string {
	return m.pattern
}

// Names returns the placeholder names in order.
func (m *Matcher) Names() []string {
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}
