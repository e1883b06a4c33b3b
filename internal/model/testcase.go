package model

import (
	"encoding/json"
	"fmt"
	"strconv"
)

const DefaultPriority = "Medium"

// TestCase lives only in client state; the relay never stores the list.
type TestCase struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Preconditions   string          `json:"preconditions"`
	Steps           string          `json:"steps"`
	ExpectedResult  string          `json:"expectedResult"`
	Priority        string          `json:"priority"`
	ExecutionStatus ExecutionStatus `json:"executionStatus,omitempty"`
}

// UnmarshalJSON accepts ids sent as JSON numbers as well as strings.
func (tc *TestCase) UnmarshalJSON(data []byte) error {
	type alias TestCase
	aux := struct {
		ID any `json:"id"`
		*alias
	}{alias: (*alias)(tc)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	id, err := IDString(aux.ID)
	if err != nil {
		return err
	}
	tc.ID = id
	return nil
}

// IDString renders a decoded JSON id value as a string. Nil yields "".
func IDString(v any) (string, error) {
	switch id := v.(type) {
	case nil:
		return "", nil
	case string:
		return id, nil
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64), nil
	case json.Number:
		return id.String(), nil
	default:
		return "", fmt.Errorf("unsupported test case id type %T", v)
	}
}

// ConversationMessage is one turn of the running generation log echoed to the relay.
type ConversationMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// NumericID reads the trailing number of an id: "7", "test-case-7" and "TC7"
// all give 7.
func NumericID(id string) (int64, bool) {
	start := len(id)
	for start > 0 && id[start-1] >= '0' && id[start-1] <= '9' {
		start--
	}
	if start == len(id) {
		return 0, false
	}
	n, err := strconv.ParseInt(id[start:], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// MaxNumericID is the highest NumericID among cases, 0 when none has one.
func MaxNumericID(cases []TestCase) int64 {
	var highest int64
	for _, tc := range cases {
		if n, ok := NumericID(tc.ID); ok && n > highest {
			highest = n
		}
	}
	return highest
}
