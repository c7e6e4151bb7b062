package domain

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
)

// BoundVariable is the variable of a shape function template.
const BoundVariable = "x"

// Equation describes the built expression of one target.
type Equation struct {
	Target      string `json:"target"`
	Symbolic    string `json:"symbolic"`
	Expression  string `json:"expression"`
	Fingerprint string `json:"fingerprint"`
}

// BuildEquation builds the evaluable expression for target. It reports false
// when the target has no assigned features left after main_id is skipped.
// A feature whose function is not in the catalog contributes its bare name.
func BuildEquation(target string, assignments FittingAssignment, functions map[string]ShapeFunction, method CombinationMethod) (string, bool) {
	features := assignments[target]
	if len(features) == 0 {
		return "", false
	}

	var parts []string
	for _, feature := range sortedFeatures(features) {
		fn, ok := functions[features[feature]]
		if !ok {
			parts = append(parts, feature)
			continue
		}
		parts = append(parts, SubstituteFunction(fn, feature))
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, method.Operator()), true
}

// SubstituteFunction inlines the parameter values of fn and the feature name
// into its parenthesised template.
func SubstituteFunction(fn ShapeFunction, feature string) string {
	equation := fn.Equation
	if strings.TrimSpace(equation) == "" {
		equation = BoundVariable
	}
	sub := "(" + equation + ")"
	for _, param := range ParseParams(fn.Parameters).LongestFirst() {
		sub = ReplaceWord(sub, param.Name, param.Value)
	}
	return ReplaceWord(sub, BoundVariable, feature)
}

// SymbolicEquation renders the assignment of target without substitution,
// e.g. "Z" = "Linear"("X1") + "Exp"("X2").
func SymbolicEquation(target string, assignments FittingAssignment, method CombinationMethod) (string, bool) {
	features := assignments[target]
	var parts []string
	for _, feature := range sortedFeatures(features) {
		parts = append(parts, fmt.Sprintf("%q(%q)", features[feature], feature))
	}
	if len(parts) == 0 {
		return "", false
	}
	return fmt.Sprintf("%q = %s", target, strings.Join(parts, method.Operator())), true
}

// DescribeEquations builds every target of cfg in sorted order. Targets
// without an equation are left out.
func DescribeEquations(cfg *ModelConfiguration) []Equation {
	functions := cfg.FunctionsByName()
	var equations []Equation
	for _, target := range cfg.Assignments.Targets() {
		expression, ok := BuildEquation(target, cfg.Assignments, functions, cfg.FittingMethod)
		if !ok {
			continue
		}
		symbolic, _ := SymbolicEquation(target, cfg.Assignments, cfg.FittingMethod)
		equations = append(equations, Equation{
			Target:      target,
			Symbolic:    symbolic,
			Expression:  expression,
			Fingerprint: Fingerprint(expression),
		})
	}
	return equations
}

// Fingerprint hashes an expression string.
func Fingerprint(expression string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(expression))
}

func sortedFeatures(features map[string]string) []string {
	names := make([]string, 0, len(features))
	for feature := range features {
		if IsReserved(feature) {
			continue
		}
		names = append(names, feature)
	}
	sort.Strings(names)
	return names
}

// ReplaceWord replaces whole-word occurrences of word in s with replacement.
// An occurrence counts only when it starts and ends on a word boundary, where
// word characters are letters, numbers and '_'. The replacement is literal.
func ReplaceWord(s, word, replacement string) string {
	if word == "" {
		return s
	}

	var b strings.Builder
	last, i := 0, 0
	for i <= len(s)-len(word) {
		j := strings.Index(s[i:], word)
		if j < 0 {
			break
		}
		start := i + j
		end := start + len(word)
		if isBoundary(s, start) && isBoundary(s, end) {
			b.WriteString(s[last:start])
			b.WriteString(replacement)
			last, i = end, end
			continue
		}
		_, size := utf8.DecodeRuneInString(s[start:])
		i = start + size
	}
	if last == 0 {
		return s
	}
	b.WriteString(s[last:])
	return b.String()
}

func isBoundary(s string, i int) bool {
	before := false
	if i > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:i])
		before = isWordRune(r)
	}
	after := false
	if i < len(s) {
		r, _ := utf8.DecodeRuneInString(s[i:])
		after = isWordRune(r)
	}
	return before != after
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}
