package handlers

import (
	"net/http"

	"repairbox/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	dashboard services.DashboardService
	log       *zap.Logger
}

func NewDashboardHandler(dashboard services.DashboardService, log *zap.Logger) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, log: log}
}

func (h *DashboardHandler) Chart(c *gin.Context) {
	data, err := h.dashboard.ChartData(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

func (h *DashboardHandler) Workspace(c *gin.Context) {
	view, err := h.dashboard.Workspace(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
