package domain

import (
	"fmt"
	"strings"
)

// Validate rejects a configuration that cannot be built: no functions, no
// fitting_config, unnamed or duplicate functions, or malformed parameter
// strings. Unresolved function names are not rejected; the builder falls
// back to the bare feature name for them.
func (c *ModelConfiguration) Validate() error {
	var problems []string
	if len(c.Functions) == 0 {
		problems = append(problems, "no functions defined")
	}
	if c.Assignments == nil {
		problems = append(problems, "fitting_config is missing")
	}

	seen := make(map[string]bool, len(c.Functions))
	for i, fn := range c.Functions {
		name := strings.TrimSpace(fn.Name)
		switch {
		case name == "":
			problems = append(problems, fmt.Sprintf("function #%d has no name", i+1))
			continue
		case seen[fn.Name]:
			problems = append(problems, fmt.Sprintf("function %q is defined more than once", fn.Name))
		}
		seen[fn.Name] = true
		if err := ValidateParams(fn.Parameters); err != nil {
			problems = append(problems, fmt.Sprintf("function %q: %v", fn.Name, err))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfiguration, strings.Join(problems, "; "))
	}
	return nil
}
