package model

import "strings"

// ExecutionStatus is the local label for a test run outcome.
type ExecutionStatus string

const (
	StatusUnexecuted ExecutionStatus = "UNEXECUTED"
	StatusPass       ExecutionStatus = "PASS"
	StatusFail       ExecutionStatus = "FAIL"
	StatusWIP        ExecutionStatus = "WIP"
	StatusBlocked    ExecutionStatus = "BLOCKED"
)

// statusCodes is the one table mapping local labels to the test-management
// numeric codes. Export and push both read it.
var statusCodes = map[ExecutionStatus]int{
	StatusUnexecuted: -1,
	StatusPass:       1,
	StatusFail:       2,
	StatusWIP:        3,
	StatusBlocked:    4,
}

var statusAliases = map[string]ExecutionStatus{
	"":             StatusUnexecuted,
	"not-executed": StatusUnexecuted,
	"unexecuted":   StatusUnexecuted,
	"passed":       StatusPass,
	"pass":         StatusPass,
	"failed":       StatusFail,
	"fail":         StatusFail,
	"wip":          StatusWIP,
	"in-progress":  StatusWIP,
	"blocked":      StatusBlocked,
}

// AllStatuses lists statuses in display order.
func AllStatuses() []ExecutionStatus {
	return []ExecutionStatus{StatusUnexecuted, StatusPass, StatusFail, StatusWIP, StatusBlocked}
}

// ParseExecutionStatus accepts canonical labels and the lowercase aliases used by
// older clients. ok is false for anything unrecognised.
func ParseExecutionStatus(s string) (ExecutionStatus, bool) {
	st, ok := statusAliases[strings.ToLower(strings.TrimSpace(s))]
	return st, ok
}

// Normalize maps aliases onto canonical labels; unknown values become UNEXECUTED.
func (s ExecutionStatus) Normalize() ExecutionStatus {
	if st, ok := ParseExecutionStatus(string(s)); ok {
		return st
	}
	return StatusUnexecuted
}

// Code returns the numeric test-management code.
func (s ExecutionStatus) Code() int {
	return statusCodes[s.Normalize()]
}

// StatusFromCode is the inverse of Code. Unknown codes map to UNEXECUTED.
func StatusFromCode(code int) ExecutionStatus {
	for st, c := range statusCodes {
		if c == code {
			return st
		}
	}
	return StatusUnexecuted
}
