package controllers

import (
	"net/http"

	"renovapro-backend/config"
	"renovapro-backend/models"
	"renovapro-backend/utils"

	"github.com/gin-gonic/gin"
)

// GetSettings lists settings, optionally one category
func GetSettings(c *gin.Context) {
	query := config.DB.Model(&models.Setting{})
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var settings []models.Setting
	if err := query.Order("category asc, key asc").Find(&settings).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve settings")
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": settings, "total": len(settings)})
}

// UpdateSettingInput is one setting write
type UpdateSettingInput struct {
	Key         string      `json:"key" binding:"required"`
	Value       interface{} `json:"value" binding:"required"`
	Type        string      `json:"type"`
	Category    string      `json:"category"`
	Description string      `json:"description"`
}

// UpdateSettings upserts a batch of settings
func UpdateSettings(c *gin.Context) {
	var inputs []UpdateSettingInput
	if err := c.ShouldBindJSON(&inputs); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	updated := make([]models.Setting, 0, len(inputs))
	for _, input := range inputs {
		typ := input.Type
		if typ == "" {
			typ = models.SettingTypeString
		}
		category := input.Category
		if category == "" {
			category = models.SettingCategorySystem
		}
		setting, err := models.SetSetting(config.DB, input.Key, input.Value, typ, category, input.Description)
		if err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update setting "+input.Key)
			return
		}
		updated = append(updated, *setting)
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Settings updated",
		"settings": updated,
	})
}
