package handler

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mario1918/testCaseGenie-NG/internal/export"
	"github.com/mario1918/testCaseGenie-NG/internal/http/dto"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ExportHandler struct {
	now func() time.Time
}

func NewExportHandler(now func() time.Time) *ExportHandler {
	if now == nil {
		now = time.Now
	}
	return &ExportHandler{now: now}
}

// Export answers with the workbook as an attachment.
func (h *ExportHandler) Export(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, req.TestCases); err != nil {
		slog.ErrorContext(ctx, "failed to build workbook", "error", err, "rows", len(req.TestCases))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "failed to build workbook"})
		return
	}

	filename := export.Filename(req.IssueKey, h.now())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
