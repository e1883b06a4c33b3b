package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mario1918/testCaseGenie-NG/internal/http/dto"
	"github.com/mario1918/testCaseGenie-NG/internal/model"
	"github.com/mario1918/testCaseGenie-NG/internal/service"
)

const defaultGenerationsLimit = 20

type GenerationHandler struct {
	generationService service.GenerationService
}

func NewGenerationHandler(generationService service.GenerationService) *GenerationHandler {
	return &GenerationHandler{generationService: generationService}
}

func (h *GenerationHandler) Generate(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	result, err := h.generationService.Generate(ctx, service.GenerateParams{
		Prompt:            req.Prompt,
		Description:       req.Description,
		SpecialComments:   req.SpecialComments,
		Summary:           req.Summary,
		IssueKey:          req.IssueKey,
		IssueType:         req.IssueType,
		Status:            req.Status,
		ExistingTestCases: req.ExistingTestCases,
		History:           req.ConversationHistory,
		IsAdditional:      req.IsAdditional,
	})
	if err != nil {
		var outErr *service.ModelOutputError
		switch {
		case errors.Is(err, service.ErrEmptyPrompt):
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		case errors.As(err, &outErr):
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: outErr.Message(), Raw: outErr.Raw})
		default:
			slog.ErrorContext(ctx, "generation failed", "error", err)
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		}
		return
	}

	history := result.History
	if history == nil {
		history = []model.ConversationMessage{}
	}
	c.JSON(http.StatusOK, dto.GenerateResponse{
		TestCases:           result.TestCases,
		ConversationHistory: history,
	})
}

func (h *GenerationHandler) ListRuns(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ListGenerationsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	if req.Limit == 0 {
		req.Limit = defaultGenerationsLimit
	}

	runs, err := h.generationService.ListRuns(ctx, req.IssueKey, req.Limit)
	if err != nil {
		if errors.Is(err, service.ErrLogDisabled) {
			c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: err.Error()})
			return
		}
		slog.ErrorContext(ctx, "failed to list generation runs", "error", err, "issue_key", req.IssueKey)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "failed to list generation runs"})
		return
	}
	if runs == nil {
		runs = []model.GenerationRun{}
	}

	c.JSON(http.StatusOK, dto.ListGenerationsResponse{Generations: runs})
}
