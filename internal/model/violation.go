package model

import (
	"fmt"
	"strings"
)

// Violation codes
const (
	CodeMultipleCurrent  = "multiple_current"
	CodeMissingEndYear   = "missing_end_year"
	CodeMissingStartYear = "missing_start_year"
	CodeInvalidYear      = "invalid_year"
	CodeEndBeforeStart   = "end_before_start"
	CodeInvalidDate      = "invalid_date"
	CodeFutureDate       = "future_date"
	CodeRequired         = "required"
	CodeInvalidValue     = "invalid_value"
	CodeRoleMismatch     = "role_mismatch"
)

// Violation is one broken invariant found before anything is persisted
type Violation struct {
	Field   string `json:"field"`
	Index   *int   `json:"index,omitempty"` // position in a list field, if any
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	if v.Index != nil {
		return fmt.Sprintf("%s[%d]: %s", v.Field, *v.Index, v.Message)
	}
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

// ValidationError wraps the full set of violations for one submission
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Is lets errors.Is match ErrValidationFailed
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}
