package main

import (
	"fmt"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/mario1918/testCaseGenie-NG/internal/model"
)

// splitArgs splits a command line the way a shell would, so
// jql="sprint in openSprints()" stays one argument.
func splitArgs(line string) ([]string, error) {
	args, err := shellquote.Split(line)
	if err != nil {
		return nil, fmt.Errorf("parsing command: %w", err)
	}
	return args, nil
}

// parseOptions reads key=value arguments. Anything else is returned as a
// positional argument.
func parseOptions(args []string) (opts map[string]string, rest []string) {
	opts = make(map[string]string)
	for _, a := range args {
		k, v, ok := strings.Cut(a, "=")
		if !ok || k == "" {
			rest = append(rest, a)
			continue
		}
		opts[strings.ToLower(k)] = v
	}
	return opts, rest
}

func parseFilter(args []string) (model.IssueFilter, error) {
	opts, rest := parseOptions(args)
	if len(rest) > 0 {
		return model.IssueFilter{}, fmt.Errorf("unexpected argument %q (use type=, component=, sprint= or jql=)", rest[0])
	}

	var f model.IssueFilter
	for k, v := range opts {
		switch k {
		case "type":
			f.IssueType = v
		case "component":
			f.Component = v
		case "sprint":
			f.Sprint = v
		case "jql":
			f.JQL = v
		default:
			return model.IssueFilter{}, fmt.Errorf("unknown filter %q", k)
		}
	}
	return f, nil
}

// parseCaseFields reads "title | steps | expected result | priority" where
// trailing fields may be left out. Blank fields stay blank.
func parseCaseFields(s string) model.TestCase {
	parts := strings.Split(s, "|")
	field := func(i int) string {
		if i < len(parts) {
			return strings.TrimSpace(parts[i])
		}
		return ""
	}
	return model.TestCase{
		Title:          field(0),
		Steps:          field(1),
		ExpectedResult: field(2),
		Priority:       field(3),
	}
}

// mergeCase fills the blank fields of edit from current.
func mergeCase(current, edit model.TestCase) model.TestCase {
	out := current
	if edit.Title != "" {
		out.Title = edit.Title
	}
	if edit.Steps != "" {
		out.Steps = edit.Steps
	}
	if edit.ExpectedResult != "" {
		out.ExpectedResult = edit.ExpectedResult
	}
	if edit.Priority != "" {
		out.Priority = edit.Priority
	}
	return out
}
