package handler

import (
	"net/http"

	"burgerpos/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportsHandler struct{ svc service.ReportService }

func NewReportsHandler(svc service.ReportService) *ReportsHandler { return &ReportsHandler{svc: svc} }

// Summary aggregates sales for ?period=today|week|month|all (default today).
func (h *ReportsHandler) Summary(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Summary(c.Request.Context(), c.Query("period")))
}

func (h *ReportsHandler) ShiftHistory(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.ShiftHistory(c.Request.Context()))
}
