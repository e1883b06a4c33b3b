package model

import "time"

// GenerationRun is the audit record of one relay generation call.
type GenerationRun struct {
	ID               int64     `json:"id,string"`
	IssueKey         string    `json:"issue_key"`
	Provider         string    `json:"provider"`
	Model            string    `json:"model"`
	Additional       bool      `json:"is_additional_generation"`
	Prompt           string    `json:"prompt"`
	RawOutput        string    `json:"raw_output"`
	CaseCount        int       `json:"case_count"`
	LatencyMs        int64     `json:"latency_ms"`
	PromptTokens     int       `json:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens"`
	Error            *string   `json:"error,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}
