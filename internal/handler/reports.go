package handler

import (
	"fmt"
	"net/http"

	"stockroom/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportsHandler struct{ svc service.ReportService }

func NewReportsHandler(svc service.ReportService) *ReportsHandler {
	return &ReportsHandler{svc: svc}
}

func (h *ReportsHandler) Summary(c *gin.Context) {
	summary, err := h.svc.Summary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *ReportsHandler) ExportCSV(c *gin.Context) {
	f, err := h.svc.ExportCSV(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	attachment(c, f)
}

func (h *ReportsHandler) ExportPDF(c *gin.Context) {
	f, err := h.svc.ExportPDF(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	attachment(c, f)
}

func attachment(c *gin.Context, f *service.ExportFile) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, f.Filename))
	c.Data(http.StatusOK, f.ContentType, f.Body)
}
