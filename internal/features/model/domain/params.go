package domain

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// Param is one "name=value" pair of a shape function.
type Param struct {
	Name  string
	Value string
}

// Params keeps parameters in the order they first appear.
type Params []Param

// ParseParams turns "k=2, b=1" into parameters. Segments are split on the
// first '=' only, so a value keeps any further '='. Segments without '='
// are dropped. A repeated name keeps its first position and its last value.
func ParseParams(s string) Params {
	var params Params
	if s == "" {
		return params
	}

	index := make(map[string]int)
	for _, part := range strings.Split(s, ",") {
		name, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if i, seen := index[name]; seen {
			params[i].Value = value
			continue
		}
		index[name] = len(params)
		params = append(params, Param{Name: name, Value: value})
	}
	return params
}

// Map returns the parameters as name -> value.
func (p Params) Map() map[string]string {
	m := make(map[string]string, len(p))
	for _, param := range p {
		m[param.Name] = param.Value
	}
	return m
}

// LongestFirst returns a copy ordered by name length, longest first.
// Names of equal length keep their parse order.
func (p Params) LongestFirst() Params {
	sorted := make(Params, len(p))
	copy(sorted, p)
	sort.SliceStable(sorted, func(i, j int) bool {
		return utf8.RuneCountInString(sorted[i].Name) > utf8.RuneCountInString(sorted[j].Name)
	})
	return sorted
}

// ValidateParams is the strict form of ParseParams used when a configuration
// is accepted: every non-blank segment needs a '=' and a non-empty name.
func ValidateParams(s string) error {
	if s == "" {
		return nil
	}
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		name, _, ok := strings.Cut(part, "=")
		if !ok {
			return fmt.Errorf("parameter segment %q has no '='", strings.TrimSpace(part))
		}
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("parameter segment %q has no name", strings.TrimSpace(part))
		}
	}
	return nil
}
