package controllers

import (
	"errors"
	"net/http"
	"strings"

	"renovapro-backend/config"
	"renovapro-backend/models"
	"renovapro-backend/services"
	"renovapro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateTemplateInput defines the expected JSON structure
type CreateTemplateInput struct {
	Name         string   `json:"name" binding:"required"`
	ProductType  string   `json:"productType" binding:"required"`
	Kind         string   `json:"kind" binding:"required"`
	Body         string   `json:"body" binding:"required"`
	Placeholders []string `json:"placeholders"`
	IsDefault    bool     `json:"isDefault"`
}

// UpdateTemplateInput defines the expected JSON structure
type UpdateTemplateInput struct {
	Name         *string   `json:"name"`
	ProductType  *string   `json:"productType"`
	Kind         *string   `json:"kind"`
	Body         *string   `json:"body"`
	Placeholders *[]string `json:"placeholders"`
	IsActive     *bool     `json:"isActive"`
	IsDefault    *bool     `json:"isDefault"`
}

// CreateTemplate creates a new message template
func CreateTemplate(c *gin.Context) {
	var input CreateTemplateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	productType := strings.ToUpper(input.ProductType)
	if !models.ValidTemplateProductType(productType) {
		utils.RespondWithError(c, http.StatusBadRequest, "Product type must be IPTV, VPN, OTHER or GENERAL")
		return
	}
	if !models.ValidTemplateKind(input.Kind) {
		utils.RespondWithError(c, http.StatusBadRequest, "Kind must be expiration, renewal or custom")
		return
	}

	placeholders := input.Placeholders
	if placeholders == nil {
		placeholders = []string{"name", "plan", "amount", "days"}
	}

	template := models.MessageTemplate{
		Name:         input.Name,
		ProductType:  productType,
		Kind:         input.Kind,
		Body:         input.Body,
		Placeholders: placeholders,
		IsActive:     true,
		IsDefault:    input.IsDefault,
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&template).Error; err != nil {
			return err
		}
		if template.IsDefault {
			return models.ClearOtherDefaults(tx, &template)
		}
		return nil
	})
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create template")
		return
	}

	c.JSON(http.StatusCreated, template)
}

// GetTemplates lists templates with optional filters
func GetTemplates(c *gin.Context) {
	query := config.DB.Model(&models.MessageTemplate{})

	if productType := c.Query("productType"); productType != "" {
		query = query.Where("product_type = ?", strings.ToUpper(productType))
	}
	if kind := c.Query("kind"); kind != "" {
		query = query.Where("kind = ?", kind)
	}
	if active := c.Query("active"); active != "" {
		query = query.Where("is_active = ?", active == "true" || active == "1")
	}

	var templates []models.MessageTemplate
	if err := query.Order("product_type asc, kind asc, name asc").Find(&templates).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve templates")
		return
	}

	c.JSON(http.StatusOK, gin.H{"templates": templates, "total": len(templates)})
}

// GetTemplate retrieves a specific template
func GetTemplate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid template ID format")
		return
	}

	var template models.MessageTemplate
	if err := config.DB.First(&template, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Template not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"template": template})
}

// UpdateTemplate updates an existing template
func UpdateTemplate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid template ID format")
		return
	}

	var template models.MessageTemplate
	if err := config.DB.First(&template, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Template not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	var input UpdateTemplateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if input.Name != nil {
		template.Name = *input.Name
	}
	if input.ProductType != nil {
		productType := strings.ToUpper(*input.ProductType)
		if !models.ValidTemplateProductType(productType) {
			utils.RespondWithError(c, http.StatusBadRequest, "Product type must be IPTV, VPN, OTHER or GENERAL")
			return
		}
		template.ProductType = productType
	}
	if input.Kind != nil {
		if !models.ValidTemplateKind(*input.Kind) {
			utils.RespondWithError(c, http.StatusBadRequest, "Kind must be expiration, renewal or custom")
			return
		}
		template.Kind = *input.Kind
	}
	if input.Body != nil {
		template.Body = *input.Body
	}
	if input.Placeholders != nil {
		template.Placeholders = *input.Placeholders
	}
	if input.IsActive != nil {
		template.IsActive = *input.IsActive
	}
	if input.IsDefault != nil {
		template.IsDefault = *input.IsDefault
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&template).Error; err != nil {
			return err
		}
		if template.IsDefault {
			return models.ClearOtherDefaults(tx, &template)
		}
		return nil
	})
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update template")
		return
	}

	c.JSON(http.StatusOK, template)
}

// DeleteTemplate deletes a template unless customers reference it
func DeleteTemplate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid template ID format")
		return
	}

	var inUse int64
	config.DB.Model(&models.Customer{}).Where("template_id = ?", id).Count(&inUse)
	if inUse > 0 {
		utils.RespondWithError(c, http.StatusBadRequest, "Template is assigned to customers and cannot be deleted")
		return
	}

	result := config.DB.Delete(&models.MessageTemplate{}, "id = ?", id)
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete template")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Template not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Template deleted successfully"})
}

// PreviewTemplateInput are the sample values for a preview render
type PreviewTemplateInput struct {
	Name   string   `json:"name"`
	Plan   string   `json:"plan"`
	Amount *float64 `json:"amount"`
	Days   *int     `json:"days"`
}

// PreviewTemplate renders a template with sample values
func PreviewTemplate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid template ID format")
		return
	}

	var template models.MessageTemplate
	if err := config.DB.First(&template, "id = ?", id).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "Template not found")
		return
	}

	var input PreviewTemplateInput
	_ = c.ShouldBindJSON(&input)

	vars := services.TemplateVars{
		Name:   "João Silva",
		Plan:   "Plano Premium",
		Amount: 29.90,
		Days:   3,
	}
	if input.Name != "" {
		vars.Name = input.Name
	}
	if input.Plan != "" {
		vars.Plan = input.Plan
	}
	if input.Amount != nil {
		vars.Amount = *input.Amount
	}
	if input.Days != nil {
		vars.Days = *input.Days
	}

	c.JSON(http.StatusOK, gin.H{
		"template": template.Body,
		"rendered": services.Render(template.Body, vars),
	})
}

// GetDefaultTemplate fetches the default template for (product, kind),
// falling back to the GENERAL default
func GetDefaultTemplate(c *gin.Context) {
	productType := strings.ToUpper(c.Param("productType"))
	kind := c.Param("kind")

	if !models.ValidTemplateProductType(productType) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid product type")
		return
	}
	if !models.ValidTemplateKind(kind) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid template kind")
		return
	}

	template, err := svc.Store.GetDefaultTemplate(productType, kind)
	if err != nil {
		template, err = svc.Store.GetDefaultTemplate(models.ProductGeneral, kind)
	}
	if err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "No default template found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"template": template})
}
