package handler

import (
	"fmt"
	"net/http"

	"github.com/AndreCode112/FinanceMartins/internal/middleware"
	"github.com/AndreCode112/FinanceMartins/internal/report"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ReportHandler serves report exports as file downloads.
type ReportHandler struct {
	Reports *report.Service
	Log     *zap.Logger
}

func NewReportHandler(svc *report.Service, log *zap.Logger) *ReportHandler {
	return &ReportHandler{Reports: svc, Log: log}
}

// Export renders a report in the requested format and streams it as an
// attachment. Parameters arrive as query strings so the frontend can use
// a plain link.
func (h *ReportHandler) Export(c *gin.Context) {
	user := middleware.CurrentUser(c)

	result, err := h.Reports.Export(user.ID, report.ExportRequest{
		Kind:      c.Query("report_type"),
		Format:    c.Query("format"),
		BankParam: c.DefaultQuery("bank", "all"),
		Detail:    c.Query("detail_level"),
		StartRaw:  c.Query("start_date"),
		EndRaw:    c.Query("end_date"),
	})
	if err != nil {
		writeServiceError(c, h.Log, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
