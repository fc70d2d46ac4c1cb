package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"renovapro-backend/config"
	"renovapro-backend/models"
	"renovapro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateCustomerInput defines the expected JSON structure for creating a customer
type CreateCustomerInput struct {
	Name           string     `json:"name" binding:"required"`
	Phone          string     `json:"phone" binding:"required"`
	ProductType    string     `json:"productType" binding:"required"`
	PlanName       string     `json:"planName" binding:"required"`
	PlanPrice      float64    `json:"planPrice" binding:"required"`
	ExpirationDate string     `json:"expirationDate" binding:"required"` // YYYY-MM-DD
	SendTime       string     `json:"sendTime" binding:"required"`       // HH:MM
	TemplateID     *uuid.UUID `json:"templateId"`
	CustomMessage  string     `json:"customMessage"`
	LeadNotice     *bool      `json:"leadNoticeEnabled"`
	LeadDays       *int       `json:"leadDays"`
	LeadSendTime   *string    `json:"leadSendTime"`
	Comment        string     `json:"comment"`
	IsActive       *bool      `json:"isActive"`
}

// UpdateCustomerInput defines the expected JSON structure for updating a customer
type UpdateCustomerInput struct {
	Name           *string    `json:"name"`
	Phone          *string    `json:"phone"`
	ProductType    *string    `json:"productType"`
	PlanName       *string    `json:"planName"`
	PlanPrice      *float64   `json:"planPrice"`
	ExpirationDate *string    `json:"expirationDate"`
	SendTime       *string    `json:"sendTime"`
	TemplateID     *uuid.UUID `json:"templateId"`
	ClearTemplate  bool       `json:"clearTemplate"`
	CustomMessage  *string    `json:"customMessage"`
	LeadNotice     *bool      `json:"leadNoticeEnabled"`
	LeadDays       *int       `json:"leadDays"`
	LeadSendTime   *string    `json:"leadSendTime"`
	Comment        *string    `json:"comment"`
	IsActive       *bool      `json:"isActive"`
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", strings.TrimSpace(s))
}

func validClock(s string) bool {
	_, err := time.Parse("15:04", strings.TrimSpace(s))
	return err == nil
}

// CreateCustomer creates a new subscription customer
func CreateCustomer(c *gin.Context) {
	var input CreateCustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	productType := strings.ToUpper(input.ProductType)
	if !models.ValidProductType(productType) {
		utils.RespondWithError(c, http.StatusBadRequest, "Product type must be IPTV, VPN or OTHER")
		return
	}

	expiration, err := parseDate(input.ExpirationDate)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid expiration date. Use YYYY-MM-DD")
		return
	}
	if !validClock(input.SendTime) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid send time. Use HH:MM")
		return
	}
	if input.LeadSendTime != nil && *input.LeadSendTime != "" && !validClock(*input.LeadSendTime) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid lead send time. Use HH:MM")
		return
	}
	if input.LeadDays != nil && *input.LeadDays < 0 {
		utils.RespondWithError(c, http.StatusBadRequest, "Lead days must not be negative")
		return
	}

	if input.TemplateID != nil {
		var template models.MessageTemplate
		if err := config.DB.First(&template, "id = ?", *input.TemplateID).Error; err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Message template not found")
			return
		}
	}

	defaultLeadDays, _ := models.GetSetting(config.DB, "notification_default_lead_days", 3).(int)
	if defaultLeadDays <= 0 {
		defaultLeadDays = 3
	}

	customer := models.Customer{
		Name:              input.Name,
		Phone:             input.Phone,
		ProductType:       productType,
		PlanName:          input.PlanName,
		PlanPrice:         input.PlanPrice,
		ExpirationDate:    expiration,
		SendTime:          input.SendTime,
		TemplateID:        input.TemplateID,
		CustomMessage:     input.CustomMessage,
		LeadNoticeEnabled: true,
		LeadDays:          defaultLeadDays,
		LeadSendTime:      input.LeadSendTime,
		Comment:           input.Comment,
		IsActive:          true,
	}
	if input.LeadNotice != nil {
		customer.LeadNoticeEnabled = *input.LeadNotice
	}
	if input.LeadDays != nil {
		customer.LeadDays = *input.LeadDays
	}
	if input.IsActive != nil {
		customer.IsActive = *input.IsActive
	}
	if input.Comment != "" {
		now := time.Now()
		customer.LastCommentAt = &now
	}

	if err := config.DB.Create(&customer).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create customer")
		return
	}

	c.JSON(http.StatusCreated, customer)
}

// GetCustomers lists customers with optional filters
func GetCustomers(c *gin.Context) {
	query := config.DB.Model(&models.Customer{})

	if productType := c.Query("productType"); productType != "" {
		query = query.Where("product_type = ?", strings.ToUpper(productType))
	}
	if active := c.Query("active"); active != "" {
		query = query.Where("is_active = ?", active == "true" || active == "1")
	}
	if until := c.Query("expiringUntil"); until != "" {
		limit, err := parseDate(until)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid expiringUntil date. Use YYYY-MM-DD")
			return
		}
		query = query.Where("expiration_date <= ?", limit)
	}

	var customers []models.Customer
	if err := query.Order("expiration_date asc").Find(&customers).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve customers")
		return
	}

	c.JSON(http.StatusOK, gin.H{"customers": customers, "total": len(customers)})
}

// GetCustomer retrieves a specific customer
func GetCustomer(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid customer ID format")
		return
	}

	var customer models.Customer
	if err := config.DB.Preload("Renewals").First(&customer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"customer": customer, "renewals": customer.Renewals})
}

// UpdateCustomer updates an existing customer
func UpdateCustomer(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid customer ID format")
		return
	}

	var customer models.Customer
	if err := config.DB.First(&customer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	var input UpdateCustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if input.Name != nil {
		customer.Name = *input.Name
	}
	if input.Phone != nil {
		customer.Phone = *input.Phone
	}
	if input.ProductType != nil {
		productType := strings.ToUpper(*input.ProductType)
		if !models.ValidProductType(productType) {
			utils.RespondWithError(c, http.StatusBadRequest, "Product type must be IPTV, VPN or OTHER")
			return
		}
		customer.ProductType = productType
	}
	if input.PlanName != nil {
		customer.PlanName = *input.PlanName
	}
	if input.PlanPrice != nil {
		customer.PlanPrice = *input.PlanPrice
	}
	if input.ExpirationDate != nil {
		expiration, err := parseDate(*input.ExpirationDate)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid expiration date. Use YYYY-MM-DD")
			return
		}
		customer.ExpirationDate = expiration
	}
	if input.SendTime != nil {
		if !validClock(*input.SendTime) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid send time. Use HH:MM")
			return
		}
		customer.SendTime = *input.SendTime
	}
	if input.ClearTemplate {
		customer.TemplateID = nil
	} else if input.TemplateID != nil {
		var template models.MessageTemplate
		if err := config.DB.First(&template, "id = ?", *input.TemplateID).Error; err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Message template not found")
			return
		}
		customer.TemplateID = input.TemplateID
	}
	if input.CustomMessage != nil {
		customer.CustomMessage = *input.CustomMessage
	}
	if input.LeadNotice != nil {
		customer.LeadNoticeEnabled = *input.LeadNotice
	}
	if input.LeadDays != nil {
		if *input.LeadDays < 0 {
			utils.RespondWithError(c, http.StatusBadRequest, "Lead days must not be negative")
			return
		}
		customer.LeadDays = *input.LeadDays
	}
	if input.LeadSendTime != nil {
		if *input.LeadSendTime == "" {
			customer.LeadSendTime = nil
		} else {
			if !validClock(*input.LeadSendTime) {
				utils.RespondWithError(c, http.StatusBadRequest, "Invalid lead send time. Use HH:MM")
				return
			}
			customer.LeadSendTime = input.LeadSendTime
		}
	}
	if input.Comment != nil {
		customer.Comment = *input.Comment
		now := time.Now()
		customer.LastCommentAt = &now
	}
	if input.IsActive != nil {
		customer.IsActive = *input.IsActive
	}

	if err := config.DB.Save(&customer).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update customer")
		return
	}

	c.JSON(http.StatusOK, customer)
}

// DeleteCustomer deletes a customer along with its renewals and logs
func DeleteCustomer(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid customer ID format")
		return
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("customer_id = ?", id).Delete(&models.Renewal{}).Error; err != nil {
			return err
		}
		if err := tx.Where("customer_id = ?", id).Delete(&models.MessageLog{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Customer{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		return
	}
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete customer")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Customer deleted successfully"})
}

// RenewCustomerInput defines the expected JSON structure for a renewal
type RenewCustomerInput struct {
	Days       int      `json:"days" binding:"required"`
	AmountPaid *float64 `json:"amountPaid"`
	Note       string   `json:"note"`
}

// RenewCustomer extends a customer's expiration and records the renewal
func RenewCustomer(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid customer ID format")
		return
	}

	var input RenewCustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if !models.ValidRenewalPeriod(input.Days) {
		utils.RespondWithError(c, http.StatusBadRequest, "Renewal period must be 30, 60, 90, 180 or 365 days")
		return
	}

	var customer models.Customer
	if err := config.DB.First(&customer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	amount := customer.PlanPrice
	if input.AmountPaid != nil {
		amount = *input.AmountPaid
	}

	renewal, err := models.ApplyRenewal(&customer, input.Days, amount, input.Note, time.Now())
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&customer).Error; err != nil {
			return err
		}
		return tx.Create(renewal).Error
	})
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to renew customer")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Customer renewed successfully",
		"customer": customer,
		"renewal":  renewal,
	})
}

// GetCustomerDashboard returns per-product aggregates
func GetCustomerDashboard(c *gin.Context) {
	productType := strings.ToUpper(c.Param("productType"))
	if !models.ValidProductType(productType) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid product type")
		return
	}

	today := utils.BeginningOfDay(time.Now())
	weekAhead := today.AddDate(0, 0, 7)

	var activeCount, expiredCount, expiringCount int64
	config.DB.Model(&models.Customer{}).
		Where("product_type = ? AND is_active = ?", productType, true).
		Count(&activeCount)
	config.DB.Model(&models.Customer{}).
		Where("product_type = ? AND is_active = ? AND expiration_date < ?", productType, true, today).
		Count(&expiredCount)
	config.DB.Model(&models.Customer{}).
		Where("product_type = ? AND is_active = ? AND expiration_date >= ? AND expiration_date <= ?",
			productType, true, today, weekAhead).
		Count(&expiringCount)

	var revenue float64
	config.DB.Model(&models.Customer{}).
		Where("product_type = ? AND is_active = ?", productType, true).
		Select("COALESCE(SUM(plan_price), 0)").Scan(&revenue)

	firstOfMonth := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
	var renewalsThisMonth int64
	config.DB.Model(&models.Renewal{}).
		Joins("JOIN customers ON customers.id = renewals.customer_id").
		Where("customers.product_type = ? AND renewals.renewal_date >= ?", productType, firstOfMonth).
		Count(&renewalsThisMonth)

	c.JSON(http.StatusOK, gin.H{
		"productType":       productType,
		"activeCustomers":   activeCount,
		"expiredCustomers":  expiredCount,
		"expiringCustomers": expiringCount,
		"totalRevenue":      revenue,
		"renewalsThisMonth": renewalsThisMonth,
	})
}

// UpdateCustomerComment replaces the customer's free-text comment
func UpdateCustomerComment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid customer ID format")
		return
	}

	var input struct {
		Comment string `json:"comment" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Comment is required")
		return
	}

	var customer models.Customer
	if err := config.DB.First(&customer, "id = ?", id).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		return
	}

	now := time.Now()
	customer.Comment = input.Comment
	customer.LastCommentAt = &now
	if err := config.DB.Save(&customer).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update comment")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"comment":       customer.Comment,
		"lastCommentAt": customer.LastCommentAt,
	})
}

// DeleteCustomerComment removes the customer's comment
func DeleteCustomerComment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid customer ID format")
		return
	}

	result := config.DB.Model(&models.Customer{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"comment": "", "last_comment_at": nil})
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete comment")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment removed successfully"})
}

// GetPendingNotices lists what the next scheduler pass would send
func GetPendingNotices(c *gin.Context) {
	notices, err := svc.Notifier.PendingNotices(time.Now())
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to compute pending notices")
		return
	}

	type noticeView struct {
		Customer      models.Customer `json:"customer"`
		Kind          string          `json:"kind"`
		DaysRemaining int             `json:"daysRemaining"`
		SendTime      string          `json:"sendTime"`
	}
	views := make([]noticeView, 0, len(notices))
	for _, n := range notices {
		views = append(views, noticeView{
			Customer:      n.Customer,
			Kind:          n.Kind,
			DaysRemaining: n.DaysRemaining,
			SendTime:      n.SendTime,
		})
	}

	c.JSON(http.StatusOK, gin.H{"notices": views, "total": len(views)})
}

// MarkMessageSent stamps the customer's last-sent time
func MarkMessageSent(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid customer ID format")
		return
	}

	now := time.Now()
	result := config.DB.Model(&models.Customer{}).
		Where("id = ?", id).
		Update("last_sent_at", &now)
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to mark message sent")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"lastSentAt": now})
}
