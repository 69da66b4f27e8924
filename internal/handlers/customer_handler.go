package handlers

import (
	"net/http"

	"repairbox/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CustomerHandler struct {
	customers services.CustomerService
	log       *zap.Logger
}

func NewCustomerHandler(customers services.CustomerService, log *zap.Logger) *CustomerHandler {
	return &CustomerHandler{customers: customers, log: log}
}

type quickCustomerRequest struct {
	CustomerName  string `json:"customer_name"`
	ContactNumber string `json:"contact_number"`
	Email         string `json:"email"`
}

// QuickCreate POST /api/customers/quick
func (h *CustomerHandler) QuickCreate(c *gin.Context) {
	var req quickCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}
	customer, err := h.customers.QuickCreate(c.Request.Context(), req.CustomerName, req.ContactNumber, req.Email)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}

func (h *CustomerHandler) Search(c *gin.Context) {
	list, err := h.customers.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": list})
}
