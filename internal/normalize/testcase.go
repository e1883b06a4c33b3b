package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mario1918/testCaseGenie-NG/internal/model"
)

var (
	ErrInvalidJSON = errors.New("model did not return valid JSON")
	ErrNoTestCases = errors.New("model returned no test cases")
)

// Field aliases in lookup order. The first list entry of each group is the
// current output shape; the rest cover the legacy shape and common variants.
var (
	titleKeys         = []string{"testCase", "title", "Title", "TestCase", "name"}
	descriptionKeys   = []string{"description", "Description"}
	preconditionKeys  = []string{"preconditions", "Preconditions", "precondition"}
	stepsKeys         = []string{"steps", "Steps"}
	expectedKeys      = []string{"expectedResult", "ExpectedResult", "expected_result", "expected"}
	priorityKeys      = []string{"priority", "Priority"}
	stepTextKeys      = []string{"step", "action", "description", "stepDescription"}
	listWrapperKeys   = []string{"testCases", "test_cases", "data", "items"}
	executionStateKey = "executionStatus"
)

// ParseOutput decodes raw model text into item objects. Markdown code fences
// are stripped first. A single object becomes a one-element list, and an
// object whose only job is to wrap the list (e.g. {"testCases": [...]}) is
// unwrapped.
func ParseOutput(raw string) ([]map[string]any, error) {
	var decoded any
	if err := json.Unmarshal([]byte(StripFences(raw)), &decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	if obj, ok := decoded.(map[string]any); ok {
		if list, ok := unwrapList(obj); ok {
			decoded = list
		} else {
			return []map[string]any{obj}, nil
		}
	}

	list, ok := decoded.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected an object or array, got %T", ErrInvalidJSON, decoded)
	}
	if len(list) == 0 {
		return nil, ErrNoTestCases
	}

	items := make([]map[string]any, 0, len(list))
	for i, v := range list {
		obj, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: item %d is %T, not an object", ErrInvalidJSON, i, v)
		}
		items = append(items, obj)
	}
	return items, nil
}

func unwrapList(obj map[string]any) ([]any, bool) {
	if len(obj) != 1 {
		return nil, false
	}
	for _, key := range listWrapperKeys {
		if list, ok := obj[key].([]any); ok {
			return list, true
		}
	}
	return nil, false
}

// StripFences removes a surrounding ```json ... ``` block.
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}

// TestCase maps one decoded item onto a TestCase. Missing text fields are
// empty strings, priority defaults to "Medium" and the id is left as sent
// (possibly empty) for the caller to settle.
func TestCase(item map[string]any) model.TestCase {
	tc := model.TestCase{
		Title:          lookup(item, titleKeys),
		Description:    lookup(item, descriptionKeys),
		Preconditions:  lookup(item, preconditionKeys),
		Steps:          Steps(first(item, stepsKeys)),
		ExpectedResult: lookup(item, expectedKeys),
		Priority:       lookup(item, priorityKeys),
	}
	if tc.Priority == "" {
		tc.Priority = model.DefaultPriority
	}
	if id, err := model.IDString(item["id"]); err == nil {
		tc.ID = id
	}
	if st, ok := model.ParseExecutionStatus(scalar(item[executionStateKey])); ok {
		tc.ExecutionStatus = st
	} else {
		tc.ExecutionStatus = model.StatusUnexecuted
	}
	return tc
}

// Steps renders the steps value of an item. Lists are numbered from 1;
// strings go through NormalizeSteps.
func Steps(v any) string {
	switch steps := v.(type) {
	case nil:
		return ""
	case []any:
		texts := make([]string, len(steps))
		for i, step := range steps {
			texts[i] = stepText(step)
		}
		return FormatStepList(texts)
	case string:
		return NormalizeSteps(steps)
	default:
		return scalar(v)
	}
}

func stepText(v any) string {
	if obj, ok := v.(map[string]any); ok {
		if text := lookup(obj, stepTextKeys); text != "" {
			return text
		}
		data, _ := json.Marshal(obj)
		return string(data)
	}
	return scalar(v)
}

func first(item map[string]any, keys []string) any {
	for _, key := range keys {
		if v, ok := item[key]; ok && !isBlank(v) {
			return v
		}
	}
	return nil
}

func lookup(item map[string]any, keys []string) string {
	return scalar(first(item, keys))
}

func isBlank(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case bool:
		return !val
	}
	return false
}

// scalar stringifies JSON scalars; composite values are re-encoded.
func scalar(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(data)
	}
}
