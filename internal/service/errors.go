package service

import (
	"errors"

	"github.com/mario1918/testCaseGenie-NG/internal/normalize"
)

var (
	ErrEmptyPrompt = errors.New("prompt or description is required")
	ErrLogDisabled = errors.New("generation log is not configured")
)

// ModelOutputError reports model text that could not be turned into test cases.
// Raw carries the untouched output for diagnosis.
type ModelOutputError struct {
	Raw    string
	Reason error
}

func (e *ModelOutputError) Error() string {
	return e.Message() + ": " + e.Reason.Error()
}

func (e *ModelOutputError) Unwrap() error {
	return e.Reason
}

// Message is the short client-facing description.
func (e *ModelOutputError) Message() string {
	if errors.Is(e.Reason, normalize.ErrNoTestCases) {
		return "Model returned no test cases"
	}
	return "Model did not return valid JSON"
}
