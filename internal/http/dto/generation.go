package dto

import (
	"github.com/mario1918/testCaseGenie-NG/internal/model"
)

type GenerateRequest struct {
	Prompt              string                      `json:"prompt"`
	Description         string                      `json:"description"`
	ExistingTestCases   []model.TestCase            `json:"existing_test_cases"`
	IsAdditional        bool                        `json:"is_additional_generation"`
	Summary             string                      `json:"summary"`
	IssueKey            string                      `json:"issue_key"`
	IssueType           string                      `json:"issue_type"`
	Status              string                      `json:"status"`
	ConversationHistory []model.ConversationMessage `json:"conversation_history"`
	SpecialComments     string                      `json:"special_comments"`
}

type GenerateResponse struct {
	TestCases           []model.TestCase            `json:"testCases"`
	ConversationHistory []model.ConversationMessage `json:"conversation_history"`
}

type ListGenerationsRequest struct {
	IssueKey string `form:"issue_key" binding:"required"`
	Limit    int32  `form:"limit" binding:"omitempty,min=1,max=100"`
}

type ListGenerationsResponse struct {
	Generations []model.GenerationRun `json:"generations"`
}
