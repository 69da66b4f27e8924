package handlers

import (
	"net/http"

	"repairbox/internal/models"
	"repairbox/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CatalogHandler serves brands, devices, defects, statuses, priorities,
// checklist templates and quick replies.
type CatalogHandler struct {
	catalog    services.CatalogService
	settings   services.RepairSettingsService
	checklists services.ChecklistService
	log        *zap.Logger
}

func NewCatalogHandler(catalog services.CatalogService, settings services.RepairSettingsService, checklists services.ChecklistService, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, settings: settings, checklists: checklists, log: log}
}

func (h *CatalogHandler) ListBrands(c *gin.Context) {
	list, err := h.catalog.ListBrands(c.Request.Context())
	h.respondList(c, list, err)
}

func (h *CatalogHandler) SaveBrand(c *gin.Context) {
	var brand models.Brand
	if !bind(c, &brand) {
		return
	}
	h.respondSaved(c, &brand, h.catalog.SaveBrand(c.Request.Context(), &brand))
}

func (h *CatalogHandler) ListDevices(c *gin.Context) {
	list, err := h.catalog.ListDevices(c.Request.Context(), c.Query("brand"))
	h.respondList(c, list, err)
}

func (h *CatalogHandler) SaveDevice(c *gin.Context) {
	var device models.Device
	if !bind(c, &device) {
		return
	}
	h.respondSaved(c, &device, h.catalog.SaveDevice(c.Request.Context(), &device))
}

func (h *CatalogHandler) ListDefects(c *gin.Context) {
	list, err := h.catalog.ListDefects(c.Request.Context(), c.Query("device"))
	h.respondList(c, list, err)
}

func (h *CatalogHandler) SaveDefect(c *gin.Context) {
	var defect models.Defect
	defect.IsActive = true
	if !bind(c, &defect) {
		return
	}
	h.respondSaved(c, &defect, h.catalog.SaveDefect(c.Request.Context(), &defect))
}

func (h *CatalogHandler) ListStatuses(c *gin.Context) {
	list, err := h.settings.ListStatuses(c.Request.Context())
	h.respondList(c, list, err)
}

func (h *CatalogHandler) SaveStatus(c *gin.Context) {
	var status models.RepairStatus
	if !bind(c, &status) {
		return
	}
	h.respondSaved(c, &status, h.settings.SaveStatus(c.Request.Context(), &status))
}

func (h *CatalogHandler) ListPriorities(c *gin.Context) {
	list, err := h.settings.ListPriorities(c.Request.Context())
	h.respondList(c, list, err)
}

func (h *CatalogHandler) SavePriority(c *gin.Context) {
	var priority models.RepairPriority
	if !bind(c, &priority) {
		return
	}
	h.respondSaved(c, &priority, h.settings.SavePriority(c.Request.Context(), &priority))
}

func (h *CatalogHandler) ListChecklistTemplates(c *gin.Context) {
	list, err := h.checklists.ListTemplates(c.Request.Context())
	h.respondList(c, list, err)
}

func (h *CatalogHandler) SaveChecklistTemplate(c *gin.Context) {
	var tpl models.InspectionChecklistTemplate
	tpl.IsActive = true
	if !bind(c, &tpl) {
		return
	}
	h.respondSaved(c, &tpl, h.checklists.SaveTemplate(c.Request.Context(), &tpl))
}

// ChecklistForDevice returns the template a new order for the device gets,
// or null.
func (h *CatalogHandler) ChecklistForDevice(c *gin.Context) {
	tpl, err := h.checklists.FindForDevice(c.Request.Context(), c.Param("device"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"template": tpl})
}

func (h *CatalogHandler) ListQuickReplies(c *gin.Context) {
	list, err := h.catalog.ListQuickReplies(c.Request.Context())
	h.respondList(c, list, err)
}

func (h *CatalogHandler) SaveQuickReply(c *gin.Context) {
	var reply models.QuickReply
	if !bind(c, &reply) {
		return
	}
	h.respondSaved(c, &reply, h.catalog.SaveQuickReply(c.Request.Context(), &reply))
}

func bind(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		badRequest(c, "Invalid request format")
		return false
	}
	return true
}

func (h *CatalogHandler) respondList(c *gin.Context, list interface{}, err error) {
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": list})
}

func (h *CatalogHandler) respondSaved(c *gin.Context, record interface{}, err error) {
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, record)
}
