package controllers

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"

	"renovapro-backend/config"
	"renovapro-backend/models"
	"renovapro-backend/services"
	"renovapro-backend/utils"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/time/rate"
)

// testSendLimiter throttles the operator test-send endpoint: one message
// every 10 seconds with a small burst.
var testSendLimiter = rate.NewLimiter(rate.Every(10*time.Second), 3)

// GetWhatsAppStatus reports transport and scheduler state
func GetWhatsAppStatus(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	status := svc.Transport.Status(ctx)

	c.JSON(http.StatusOK, gin.H{
		"schedulerState": svc.Notifier.State(),
		"running":        svc.Notifier.IsRunning(),
		"connected":      status.Connected,
		"pairingPending": status.HasPairing,
	})
}

// StartScheduler moves the notification scheduler to Running
func StartScheduler(c *gin.Context) {
	if err := svc.Notifier.Start(); err != nil {
		if errors.Is(err, services.ErrAlreadyRunning) {
			c.JSON(http.StatusOK, gin.H{"message": "Scheduler is already running"})
			return
		}
		if errors.Is(err, services.ErrTransportNotConnected) {
			utils.RespondWithError(c, http.StatusBadRequest, "WhatsApp is not connected")
			return
		}
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to start scheduler: "+err.Error())
		return
	}

	_, _ = models.SetSetting(config.DB, "whatsapp_enabled", true,
		models.SettingTypeBoolean, models.SettingCategoryWhatsApp, "Notification scheduler enabled")

	c.JSON(http.StatusOK, gin.H{"message": "Scheduler started successfully"})
}

// StopScheduler moves the notification scheduler back to Idle
func StopScheduler(c *gin.Context) {
	if err := svc.Notifier.Stop(); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to stop scheduler: "+err.Error())
		return
	}

	_, _ = models.SetSetting(config.DB, "whatsapp_enabled", false,
		models.SettingTypeBoolean, models.SettingCategoryWhatsApp, "Notification scheduler enabled")

	c.JSON(http.StatusOK, gin.H{"message": "Scheduler stopped successfully"})
}

// GetPairingCode returns the pairing QR as a PNG data URL
func GetPairingCode(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	code, err := svc.Transport.PairingCode(ctx)
	if err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "Pairing code not available")
		return
	}

	// The sidecar usually hands back a ready data URL; render raw codes
	// into one ourselves.
	if !strings.HasPrefix(code, "data:image/") {
		png, err := qrcode.Encode(code, qrcode.Medium, 256)
		if err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to render pairing QR")
			return
		}
		code = "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
	}

	c.JSON(http.StatusOK, gin.H{
		"qrCode":       code,
		"instructions": "Scan this QR code with WhatsApp to pair the session",
	})
}

// SendTestMessageInput defines the expected JSON structure
type SendTestMessageInput struct {
	Phone   string `json:"phone" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// SendTestMessage sends one ad hoc message through the delivery pipeline
func SendTestMessage(c *gin.Context) {
	if !testSendLimiter.Allow() {
		utils.RespondWithError(c, http.StatusTooManyRequests, "Too many test messages, slow down")
		return
	}

	var input SendTestMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()
	if !svc.Transport.Status(ctx).Connected {
		utils.RespondWithError(c, http.StatusBadRequest, "WhatsApp is not connected")
		return
	}

	// A known customer goes through the full pipeline so the attempt is
	// logged against them. Unknown targets talk to the transport directly,
	// the message log only holds rows tied to a customer.
	var customer models.Customer
	if err := config.DB.Where("phone = ?", input.Phone).First(&customer).Error; err == nil {
		outcome := svc.Deliverer.Deliver(c.Request.Context(), &customer, input.Message, models.NoticeKindManual)
		if !outcome.Sent() {
			utils.RespondWithError(c, http.StatusBadGateway, "Failed to send test message: "+outcome.ErrorDetail)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Test message sent successfully"})
		return
	}

	digits := utils.NormalizePhone(input.Phone)
	sendCtx, sendCancel := context.WithTimeout(c.Request.Context(), services.SendTimeout)
	defer sendCancel()
	result := svc.Transport.Send(sendCtx, svc.Transport.FormatDestination(digits), input.Message)
	if !result.OK {
		utils.RespondWithError(c, http.StatusBadGateway, "Failed to send test message: "+result.Detail)
		return
	}
	svc.DeliveryLog.Append("test message sent to %s", digits)

	c.JSON(http.StatusOK, gin.H{"message": "Test message sent successfully"})
}

// ProcessNoticesNow triggers one manual notification pass. A pass already
// in flight makes this a no-op.
func ProcessNoticesNow(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()
	if !svc.Transport.Status(ctx).Connected {
		utils.RespondWithError(c, http.StatusBadRequest, "WhatsApp is not connected")
		return
	}

	go svc.Notifier.ProcessDueNotices()

	c.JSON(http.StatusOK, gin.H{"message": "Notice processing started"})
}

// GetWhatsAppSettings returns the whatsapp-category settings with defaults
func GetWhatsAppSettings(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"enabled":         models.GetSetting(config.DB, "whatsapp_enabled", false),
		"messageInterval": models.GetSetting(config.DB, services.SettingMessageInterval, 60),
		"windowStart":     models.GetSetting(config.DB, services.SettingWindowStart, "08:00"),
		"windowEnd":       models.GetSetting(config.DB, services.SettingWindowEnd, "22:00"),
		"weekdays": models.GetSetting(config.DB, services.SettingWeekdays,
			[]string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}),
	})
}

// UpdateWhatsAppSettingsInput defines the expected JSON structure
type UpdateWhatsAppSettingsInput struct {
	MessageInterval *int      `json:"messageInterval"`
	WindowStart     *string   `json:"windowStart"`
	WindowEnd       *string   `json:"windowEnd"`
	Weekdays        *[]string `json:"weekdays"`
}

// UpdateWhatsAppSettings writes the provided whatsapp-category settings
func UpdateWhatsAppSettings(c *gin.Context) {
	var input UpdateWhatsAppSettingsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	count := 0
	if input.MessageInterval != nil {
		if _, err := models.SetSetting(config.DB, services.SettingMessageInterval, *input.MessageInterval,
			models.SettingTypeInteger, models.SettingCategoryWhatsApp,
			"Seconds between outbound messages"); err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update message interval")
			return
		}
		count++
	}
	if input.WindowStart != nil {
		if _, err := models.SetSetting(config.DB, services.SettingWindowStart, *input.WindowStart,
			models.SettingTypeString, models.SettingCategoryWhatsApp,
			"Operating window start (HH:MM)"); err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update window start")
			return
		}
		count++
	}
	if input.WindowEnd != nil {
		if _, err := models.SetSetting(config.DB, services.SettingWindowEnd, *input.WindowEnd,
			models.SettingTypeString, models.SettingCategoryWhatsApp,
			"Operating window end (HH:MM)"); err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update window end")
			return
		}
		count++
	}
	if input.Weekdays != nil {
		if _, err := models.SetSetting(config.DB, services.SettingWeekdays, *input.Weekdays,
			models.SettingTypeJSON, models.SettingCategoryWhatsApp,
			"Weekdays automated sends are allowed"); err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update weekdays")
			return
		}
		count++
	}

	c.JSON(http.StatusOK, gin.H{"message": "WhatsApp settings updated", "updated": count})
}

// GetDeliveryLogs tails the delivery log file
func GetDeliveryLogs(c *gin.Context) {
	lines, err := svc.DeliveryLog.Tail(100)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to read delivery log")
		return
	}

	c.JSON(http.StatusOK, gin.H{"logs": lines, "total": len(lines)})
}

// ClearDeliveryLogs truncates the delivery log file
func ClearDeliveryLogs(c *gin.Context) {
	if err := svc.DeliveryLog.Clear(); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to clear delivery log")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Delivery log cleared"})
}
