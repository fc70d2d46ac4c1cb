package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"renovapro-backend/config"
	"renovapro-backend/models"
	"renovapro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetRenewals lists renewals with optional filters and pagination
func GetRenewals(c *gin.Context) {
	query := config.DB.Model(&models.Renewal{})

	if customerID := c.Query("customerId"); customerID != "" {
		id, err := uuid.Parse(customerID)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid customer ID format")
			return
		}
		query = query.Where("customer_id = ?", id)
	}
	if from := c.Query("from"); from != "" {
		date, err := parseDate(from)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid from date. Use YYYY-MM-DD")
			return
		}
		query = query.Where("renewal_date >= ?", date)
	}
	if to := c.Query("to"); to != "" {
		date, err := parseDate(to)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid to date. Use YYYY-MM-DD")
			return
		}
		query = query.Where("renewal_date <= ?", date)
	}
	if days := c.Query("days"); days != "" {
		n, err := strconv.Atoi(days)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid days filter")
			return
		}
		query = query.Where("days_renewed = ?", n)
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

	var renewals []models.Renewal
	if err := query.Order("renewal_date desc, created_at desc").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&renewals).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve renewals")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"renewals": renewals,
		"total":    total,
		"page":     page,
		"perPage":  perPage,
	})
}

// GetRenewal retrieves a renewal along with its customer
func GetRenewal(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid renewal ID format")
		return
	}

	var renewal models.Renewal
	if err := config.DB.First(&renewal, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Renewal not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	var customer models.Customer
	_ = config.DB.First(&customer, "id = ?", renewal.CustomerID).Error

	c.JSON(http.StatusOK, gin.H{"renewal": renewal, "customer": customer})
}

// UpdateRenewalInput defines the editable renewal fields
type UpdateRenewalInput struct {
	AmountPaid *float64 `json:"amountPaid"`
	Note       *string  `json:"note"`
}

// UpdateRenewal edits the amount or note of a renewal
func UpdateRenewal(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid renewal ID format")
		return
	}

	var renewal models.Renewal
	if err := config.DB.First(&renewal, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Renewal not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	var input UpdateRenewalInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if input.AmountPaid != nil {
		renewal.AmountPaid = *input.AmountPaid
	}
	if input.Note != nil {
		renewal.Note = *input.Note
	}

	if err := config.DB.Save(&renewal).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update renewal")
		return
	}

	c.JSON(http.StatusOK, renewal)
}

// DeleteRenewal removes a renewal. Deleting the customer's latest renewal
// reverts the expiration to what it was before that renewal.
func DeleteRenewal(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid renewal ID format")
		return
	}

	var renewal models.Renewal
	if err := config.DB.First(&renewal, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Renewal not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		var latest models.Renewal
		if err := tx.Where("customer_id = ?", renewal.CustomerID).
			Order("renewal_date desc, created_at desc").
			First(&latest).Error; err == nil && latest.ID == renewal.ID {
			if err := tx.Model(&models.Customer{}).
				Where("id = ?", renewal.CustomerID).
				Update("expiration_date", renewal.PreviousExpiration).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&renewal).Error
	})
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete renewal")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Renewal deleted successfully"})
}

// GetRenewalStats returns totals overall, per renewal duration, and per product
func GetRenewalStats(c *gin.Context) {
	query := config.DB.Model(&models.Renewal{})

	if from := c.Query("from"); from != "" {
		date, err := parseDate(from)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid from date")
			return
		}
		query = query.Where("renewal_date >= ?", date)
	}
	if to := c.Query("to"); to != "" {
		date, err := parseDate(to)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid to date")
			return
		}
		query = query.Where("renewal_date <= ?", date)
	}

	var total int64
	var revenue float64
	query.Count(&total)
	query.Select("COALESCE(SUM(amount_paid), 0)").Scan(&revenue)

	byPeriod := gin.H{}
	for _, period := range models.RenewalPeriods {
		var count int64
		var periodRevenue float64
		periodQuery := query.Session(&gorm.Session{}).Where("days_renewed = ?", period)
		periodQuery.Count(&count)
		periodQuery.Select("COALESCE(SUM(amount_paid), 0)").Scan(&periodRevenue)
		byPeriod[strconv.Itoa(period)+"_days"] = gin.H{"count": count, "revenue": periodRevenue}
	}

	byProduct := gin.H{}
	for _, product := range []string{models.ProductIPTV, models.ProductVPN, models.ProductOther} {
		var count int64
		var productRevenue float64
		productQuery := query.Session(&gorm.Session{}).
			Joins("JOIN customers ON customers.id = renewals.customer_id").
			Where("customers.product_type = ?", product)
		productQuery.Count(&count)
		productQuery.Select("COALESCE(SUM(renewals.amount_paid), 0)").Scan(&productRevenue)
		byProduct[strings.ToLower(product)] = gin.H{"count": count, "revenue": productRevenue}
	}

	c.JSON(http.StatusOK, gin.H{
		"totalRenewals": total,
		"totalRevenue":  revenue,
		"byPeriod":      byPeriod,
		"byProduct":     byProduct,
	})
}
