package scenario

import (
	"fmt"

	"github.com/rogerio-castellano/eshop/internal/browser"
)

// ReachabilityError reports a navigation, session or driver fault.
type ReachabilityError struct {
	Step string
	URL  string
	Err  error
}

func (e *ReachabilityError) Error() string {
	return fmt.Sprintf("%s: browser could not complete the step at %s: %v", e.Step, e.URL, e.Err)
}

func (e *ReachabilityError) Unwrap() error { return e.Err }

// MissingElementError reports an expected link, input, button or cell that
// the page does not contain.
type MissingElementError struct {
	Step  string
	By    browser.By
	Value string
	Err   error
}

func (e *MissingElementError) Error() string {
	return fmt.Sprintf("%s: element %s=%q not found", e.Step, e.By, e.Value)
}

func (e *MissingElementError) Unwrap() error { return e.Err }

// AssertionError reports an observed page that differs from the expected
// outcome.
type AssertionError struct {
	Step     string
	Check    string
	Expected string
	Actual   string
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("%s: %s: expected %q, got %q", e.Step, e.Check, e.Expected, e.Actual)
}
