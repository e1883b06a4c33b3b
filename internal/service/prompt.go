package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mario1918/testCaseGenie-NG/common/llm"
	"github.com/mario1918/testCaseGenie-NG/internal/model"
)

// generatedCase is the item shape the model is asked to produce.
type generatedCase struct {
	TestCase       string   `json:"testCase" jsonschema:"description=Short title of the test case"`
	Description    string   `json:"description" jsonschema:"description=What the test verifies"`
	Preconditions  string   `json:"preconditions" jsonschema:"description=State required before the first step"`
	Steps          []string `json:"steps" jsonschema:"description=Ordered actions without numbering"`
	ExpectedResult string   `json:"expectedResult"`
	Priority       string   `json:"priority" jsonschema:"enum=High,enum=Medium,enum=Low"`
}

const systemPromptTemplate = `You are a senior QA engineer writing manual test cases for a user story.
Cover the happy path, validation failures and edge cases that the story implies.
Respond with a JSON array only, no prose and no markdown. Each element must match this JSON schema:
%s`

func buildSystemPrompt() string {
	schema, err := json.Marshal(llm.GenerateSchemaFrom(generatedCase{}))
	if err != nil {
		// reflection output always marshals; keep a readable fallback anyway
		schema = []byte(`{"type":"object"}`)
	}
	return fmt.Sprintf(systemPromptTemplate, schema)
}

// storyText is the prompt with the special instructions appended.
func storyText(params GenerateParams) string {
	text := strings.TrimSpace(params.Prompt)
	if text == "" {
		text = strings.TrimSpace(params.Description)
	}
	if extra := strings.TrimSpace(params.SpecialComments); extra != "" {
		text += "\n\nSpecial instructions:\n" + extra
	}
	return text
}

func buildUserPrompt(params GenerateParams) string {
	var b strings.Builder

	if params.IssueKey != "" || params.Summary != "" {
		fmt.Fprintf(&b, "Issue: %s\n", strings.TrimSpace(params.IssueKey+" "+params.Summary))
	}
	if params.IssueType != "" {
		fmt.Fprintf(&b, "Type: %s\n", params.IssueType)
	}
	if params.Status != "" {
		fmt.Fprintf(&b, "Status: %s\n", params.Status)
	}
	if b.Len() > 0 {
		b.WriteString("\n")
	}

	b.WriteString("Story:\n")
	b.WriteString(storyText(params))

	if params.IsAdditional {
		b.WriteString("\n\nThese test cases already exist. Write new ones covering scenarios they miss, do not repeat them:\n")
		for _, tc := range params.ExistingTestCases {
			fmt.Fprintf(&b, "- %s\n", oneLine(tc.Title))
		}
	}

	return b.String()
}

func buildMessages(params GenerateParams, userPrompt string) []llm.Message {
	messages := make([]llm.Message, 0, len(params.History)+1)
	for _, m := range params.History {
		role := llm.RoleUser
		if m.Role == model.RoleAssistant {
			role = llm.RoleAssistant
		}
		messages = append(messages, llm.Message{Role: role, Content: m.Content})
	}
	return append(messages, llm.Message{Role: llm.RoleUser, Content: userPrompt})
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
