package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"renovapro-backend/config"
	"renovapro-backend/models"
	"renovapro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetMessageLogs lists delivery attempts with optional filters
func GetMessageLogs(c *gin.Context) {
	query := config.DB.Model(&models.MessageLog{})

	if customerID := c.Query("customerId"); customerID != "" {
		id, err := uuid.Parse(customerID)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid customer ID format")
			return
		}
		query = query.Where("customer_id = ?", id)
	}
	if status := c.Query("status"); status != "" {
		if !models.ValidLogStatus(status) {
			utils.RespondWithError(c, http.StatusBadRequest, "Status must be sent, failed or pending")
			return
		}
		query = query.Where("status = ?", status)
	}
	if kind := c.Query("kind"); kind != "" {
		query = query.Where("kind = ?", kind)
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(c.DefaultQuery("perPage", "50"))
	if perPage < 1 || perPage > 200 {
		perPage = 50
	}

	var total int64
	query.Count(&total)

	var logs []models.MessageLog
	if err := query.Order("created_at desc").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&logs).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve message logs")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":    logs,
		"total":   total,
		"page":    page,
		"perPage": perPage,
	})
}

// GetMessageLogStats returns counts per delivery status
func GetMessageLogStats(c *gin.Context) {
	var sent, failed, pending int64
	config.DB.Model(&models.MessageLog{}).Where("status = ?", models.LogStatusSent).Count(&sent)
	config.DB.Model(&models.MessageLog{}).Where("status = ?", models.LogStatusFailed).Count(&failed)
	config.DB.Model(&models.MessageLog{}).Where("status = ?", models.LogStatusPending).Count(&pending)

	c.JSON(http.StatusOK, gin.H{
		"sent":    sent,
		"failed":  failed,
		"pending": pending,
		"total":   sent + failed + pending,
	})
}

// ResubmitMessageLog queues a failed attempt for another delivery: status
// moves to pending and the attempt count goes up. Only failed attempts can
// be resubmitted.
func ResubmitMessageLog(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid log ID format")
		return
	}

	var entry models.MessageLog
	if err := config.DB.First(&entry, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Message log not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if entry.Status != models.LogStatusFailed {
		utils.RespondWithError(c, http.StatusBadRequest, "Only failed messages can be resubmitted")
		return
	}

	entry.Status = models.LogStatusPending
	entry.ErrorDetail = ""
	entry.Attempts++
	if err := config.DB.Save(&entry).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to resubmit message")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Message queued for resubmission",
		"log":     entry,
	})
}
