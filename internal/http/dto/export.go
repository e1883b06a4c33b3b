package dto

import "github.com/mario1918/testCaseGenie-NG/internal/model"

type ExportRequest struct {
	IssueKey  string           `json:"issue_key"`
	TestCases []model.TestCase `json:"test_cases"`
}
