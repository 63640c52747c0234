package evals

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/stretchr/testify/assert"
)

// AssertionError reports a failed check on a provider response
type AssertionError struct {
	Message  string
	Actual   any
	Expected any
}

func (e *AssertionError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Actual != nil {
		fmt.Fprintf(&b, "\n  actual:   %#v", e.Actual)
	}
	if e.Expected != nil {
		fmt.Fprintf(&b, "\n  expected: %#v", e.Expected)
	}
	return b.String()
}

func failf(actual, expected any, format string, args ...any) error {
	return &AssertionError{
		Message:  fmt.Sprintf(format, args...),
		Actual:   actual,
		Expected: expected,
	}
}

// IsNotNil fails when v is a nil pointer
func IsNotNil[T any](v *T, what string) error {
	if v == nil {
		return failf(nil, nil, "expected %s to be present", what)
	}
	return nil
}

// IsNotEmpty fails when items has no elements
func IsNotEmpty[T any](items []T, what string) error {
	if len(items) == 0 {
		return failf(items, nil, "expected %s to be a non-empty array", what)
	}
	return nil
}

// Equal fails unless actual and expected are equal
func Equal(actual, expected any, what string) error {
	if !assert.ObjectsAreEqual(expected, actual) {
		return failf(actual, expected, "expected %s to be equal", what)
	}
	return nil
}

// GTE fails unless n >= min
func GTE(n, min int, what string) error {
	if n < min {
		return failf(n, nil, "expected %s: %d >= %d", what, n, min)
	}
	return nil
}

// Matches fails unless s matches the pattern
func Matches(s string, pattern *regexp.Regexp) error {
	if !pattern.MatchString(s) {
		return failf(s, nil, "expected input to match %s", pattern)
	}
	return nil
}

// DoesNotMatch fails when s matches the pattern
func DoesNotMatch(s string, pattern *regexp.Regexp) error {
	if pattern.MatchString(s) {
		return failf(s, nil, "expected input not to match %s", pattern)
	}
	return nil
}

// StringContains fails unless v is a string containing substr
func StringContains(v any, substr string) error {
	s, ok := v.(string)
	if !ok {
		return failf(fmt.Sprintf("%T", v), nil, "expected input to be of type string")
	}
	if !strings.Contains(s, substr) {
		return failf(s, nil, "expected string to contain: %q", substr)
	}
	return nil
}

// Or runs checks in order and succeeds as soon as one passes. When all fail
// the errors are reported together.
func Or(checks ...func() error) error {
	var errs []error
	for _, check := range checks {
		err := check()
		if err == nil {
			return nil
		}
		errs = append(errs, err)
	}
	return &AssertionError{
		Message: fmt.Sprintf("tried multiple asserts, but they all failed.\n%s", errors.Join(errs...)),
	}
}

// ParseArguments decodes the JSON arguments of a tool call
func ParseArguments(arguments string) (map[string]any, error) {
	var args map[string]any
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return nil, failf(arguments, nil, "tool call arguments are not a JSON object: %v", err)
	}
	return args, nil
}

// Check returns the first error among errs, or nil
func Check(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
