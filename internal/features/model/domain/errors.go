package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidConfiguration is wrapped by every configuration validation failure.
var ErrInvalidConfiguration = errors.New("invalid model configuration")

// EvaluationError reports a built expression that could not be evaluated.
type EvaluationError struct {
	Target     string
	Expression string
	Err        error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("failed to evaluate expression for '%s': %s: %v", e.Target, e.Expression, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}
