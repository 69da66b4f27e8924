package handlers

import (
	"net/http"
	"strconv"
	"time"

	"repairbox/internal/models"
	"repairbox/internal/repository"
	"repairbox/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type RepairOrderHandler struct {
	orders services.RepairOrderService
	logs   services.RepairLogService
	repo   repository.RepairOrderRepository
	log    *zap.Logger
}

func NewRepairOrderHandler(orders services.RepairOrderService, logs services.RepairLogService, repo repository.RepairOrderRepository, log *zap.Logger) *RepairOrderHandler {
	return &RepairOrderHandler{orders: orders, logs: logs, repo: repo, log: log}
}

type repairLineRequest struct {
	Defect       string          `json:"defect"`
	Description  string          `json:"description"`
	SellingPrice decimal.Decimal `json:"selling_price"`
}

type inspectionRowRequest struct {
	ItemName    string `json:"item_name"`
	Category    string `json:"category"`
	IsMandatory bool   `json:"is_mandatory"`
	Status      string `json:"status"`
	IsDefective bool   `json:"is_defective"`
	Notes       string `json:"notes"`
}

// RepairOrderRequest carries the editable fields of a repair order. Totals,
// payment status and the tracking id are always computed.
type RepairOrderRequest struct {
	CustomerID         *uint                  `json:"customer_id"`
	CustomerName       string                 `json:"customer_name"`
	ContactNumber      string                 `json:"contact_number"`
	Email              string                 `json:"email"`
	Brand              string                 `json:"brand"`
	Device             string                 `json:"device"`
	DeviceModel        string                 `json:"device_model"`
	SerialNumber       string                 `json:"serial_number"`
	DevicePassword     string                 `json:"device_password"`
	Status             string                 `json:"status"`
	Priority           string                 `json:"priority"`
	AssignedTo         *uint                  `json:"assigned_to"`
	BookingDate        *time.Time             `json:"booking_date"`
	ExpectedCompletion *time.Time             `json:"expected_completion"`
	PaidAmount         decimal.Decimal        `json:"paid_amount"`
	Defects            []repairLineRequest    `json:"defects"`
	DeviceInspection   []inspectionRowRequest `json:"device_inspection"`
	TechnicianNotes    string                 `json:"technician_notes"`
	AdditionalNotes    string                 `json:"additional_notes"`
}

func (r *RepairOrderRequest) toModel() *models.RepairOrder {
	order := &models.RepairOrder{
		CustomerID:         r.CustomerID,
		CustomerName:       r.CustomerName,
		ContactNumber:      r.ContactNumber,
		Email:              r.Email,
		BrandName:          r.Brand,
		DeviceName:         r.Device,
		DeviceModel:        r.DeviceModel,
		SerialNumber:       r.SerialNumber,
		DevicePassword:     r.DevicePassword,
		Status:             r.Status,
		Priority:           r.Priority,
		AssignedTo:         r.AssignedTo,
		ExpectedCompletion: r.ExpectedCompletion,
		PaidAmount:         r.PaidAmount,
		TechnicianNotes:    r.TechnicianNotes,
		AdditionalNotes:    r.AdditionalNotes,
	}
	if r.BookingDate != nil {
		order.BookingDate = *r.BookingDate
	}
	for _, l := range r.Defects {
		order.Defects = append(order.Defects, models.RepairOrderDefect{
			DefectName:   l.Defect,
			Description:  l.Description,
			SellingPrice: l.SellingPrice,
		})
	}
	for _, row := range r.DeviceInspection {
		status := row.Status
		if status == "" {
			status = models.InspectionNotTested
		}
		order.Inspection = append(order.Inspection, models.DeviceInspectionItem{
			ItemName:    row.ItemName,
			Category:    row.Category,
			IsMandatory: row.IsMandatory,
			Status:      status,
			IsDefective: row.IsDefective,
			Notes:       row.Notes,
		})
	}
	return order
}

func (h *RepairOrderHandler) Create(c *gin.Context) {
	var req RepairOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}
	order := req.toModel()
	if err := h.orders.Create(c.Request.Context(), actor(c), order); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *RepairOrderHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req RepairOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}
	order, err := h.orders.Update(c.Request.Context(), actor(c), id, req.toModel())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *RepairOrderHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *RepairOrderHandler) List(c *gin.Context) {
	filter, ok := parseFilter(c)
	if !ok {
		return
	}
	orders, total, err := h.orders.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items":     orders,
		"total":     total,
		"page":      filter.Page,
		"page_size": filter.PageSize,
	})
}

// Mine lists the caller's open repairs, earliest due first.
func (h *RepairOrderHandler) Mine(c *gin.Context) {
	orders, err := h.orders.ListAssigned(c.Request.Context(), actor(c).UserID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": orders})
}

func (h *RepairOrderHandler) Overdue(c *gin.Context) {
	orders, err := h.orders.ListOverdue(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": orders})
}

func (h *RepairOrderHandler) RecordPayment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}
	order, err := h.orders.RecordPayment(c.Request.Context(), actor(c), id, req.Amount)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *RepairOrderHandler) Track(c *gin.Context) {
	snap, err := h.orders.Track(c.Request.Context(), c.Param("tracking_id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Export GET /api/repair-orders/export
func (h *RepairOrderHandler) Export(c *gin.Context) {
	filter, ok := parseFilter(c)
	if !ok {
		return
	}
	f, filename, err := services.ExportRepairOrders(c.Request.Context(), h.repo, filter)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Header("Content-Transfer-Encoding", "binary")

	if err := f.Write(c.Writer); err != nil {
		h.log.Error("Failed to write export", zap.Error(err))
	}
}

func (h *RepairOrderHandler) ListLogs(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	logs, err := h.logs.ListByOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": logs})
}

func (h *RepairOrderHandler) CreateLog(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Status         string `json:"status"`
		Notes          string `json:"notes"`
		NotifyCustomer bool   `json:"notify_customer"`
		UpdatedBy      string `json:"updated_by"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}
	entry := &models.RepairLog{
		RepairOrderID:  id,
		Status:         req.Status,
		Notes:          req.Notes,
		NotifyCustomer: req.NotifyCustomer,
		UpdatedBy:      req.UpdatedBy,
	}
	if err := h.logs.Create(c.Request.Context(), actor(c), entry); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func parseFilter(c *gin.Context) (repository.RepairOrderFilter, bool) {
	filter := repository.RepairOrderFilter{
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
		Device:   c.Query("device"),
		Search:   c.Query("search"),
		Page:     1,
		PageSize: 20,
	}
	if v := c.Query("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			badRequest(c, "Invalid page")
			return filter, false
		}
		filter.Page = n
	}
	if v := c.Query("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 200 {
			badRequest(c, "Invalid page_size")
			return filter, false
		}
		filter.PageSize = n
	}
	for key, dst := range map[string]**uint{"assigned_to": &filter.AssignedTo, "customer_id": &filter.CustomerID} {
		if v := c.Query(key); v != "" {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				badRequest(c, "Invalid "+key)
				return filter, false
			}
			id := uint(n)
			*dst = &id
		}
	}
	for key, dst := range map[string]**time.Time{"from": &filter.From, "to": &filter.To} {
		if v := c.Query(key); v != "" {
			t, err := time.Parse("2006-01-02", v)
			if err != nil {
				badRequest(c, "Invalid "+key+", expected YYYY-MM-DD")
				return filter, false
			}
			*dst = &t
		}
	}
	return filter, true
}
