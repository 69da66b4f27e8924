package handlers

import (
	"net/http"
	"strings"

	"repairbox/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type WhatsAppHandler struct {
	whatsappService services.WhatsAppService
	log             *zap.Logger
}

func NewWhatsAppHandler(whatsappService services.WhatsAppService, log *zap.Logger) *WhatsAppHandler {
	return &WhatsAppHandler{whatsappService: whatsappService, log: log}
}

type WebhookRequest struct {
	SenderID  string `json:"sender_id"`
	ChatID    string `json:"chat_id"`
	From      string `json:"from"`
	Timestamp string `json:"timestamp"`
	Pushname  string `json:"pushname"`
	Message   struct {
		Text string `json:"text"`
		ID   string `json:"id"`
	} `json:"message"`
}

// HandleWebhook answers incoming customer messages with the status of the
// repair whose tracking id they contain.
func (h *WhatsAppHandler) HandleWebhook(c *gin.Context) {
	var req WebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}

	phoneNumber := req.From
	if phoneNumber == "" {
		phoneNumber = req.SenderID
	}
	// group chats and status broadcasts are ignored
	if phoneNumber == "" || strings.HasSuffix(phoneNumber, "@g.us") || strings.Contains(phoneNumber, "status@broadcast") {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}
	phoneNumber = strings.TrimSuffix(phoneNumber, "@s.whatsapp.net")

	reply, err := h.whatsappService.HandleIncoming(c.Request.Context(), phoneNumber, req.Message.Text)
	if err != nil {
		h.log.Error("Failed to answer WhatsApp message",
			zap.String("phone", phoneNumber),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorBody("Server Error", "Failed to send message"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "reply": reply})
}
