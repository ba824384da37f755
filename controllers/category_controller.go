package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tertulia/meeting-server/config"
	"github.com/tertulia/meeting-server/models"
	"github.com/tertulia/meeting-server/utils"
)

// ListCategories returns active categories in display order. Public.
func ListCategories(c *gin.Context) {
	var categories []models.Category
	if err := config.DB.Where("is_active = ?", true).
		Order("display_order asc, name asc").
		Find(&categories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not list categories"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": categories})
}

func GetCategory(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid category ID"})
		return
	}

	var category models.Category
	if err := config.DB.Where("id = ? AND is_active = ?", id, true).First(&category).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Category not found"})
		return
	}

	var meetings int64
	config.DB.Model(&models.Meeting{}).
		Where("category_id = ? AND status = ?", category.ID, models.MeetingPublished).
		Count(&meetings)

	c.JSON(http.StatusOK, gin.H{"data": category, "published_meetings": meetings})
}

type CategoryReq struct {
	Name         string `json:"name" binding:"required,max=40"`
	Description  string `json:"description" binding:"max=200"`
	Color        string `json:"color"`
	Icon         string `json:"icon"`
	DisplayOrder *uint  `json:"display_order"`
	IsActive     *bool  `json:"is_active"`
}

// CreateCategory is admin only (enforced in routes).
func CreateCategory(c *gin.Context) {
	var req CategoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	category := models.Category{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
		IsActive:    true,
	}
	if category.Color == "" {
		category.Color = "#007bff"
	}
	if req.DisplayOrder != nil {
		category.DisplayOrder = *req.DisplayOrder
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	if err := config.DB.Create(&category).Error; err != nil {
		if utils.IsDuplicateErr(err) {
			c.JSON(http.StatusConflict, gin.H{"message": "Category name already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not create category"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": category})
}

// UpdateCategory is admin only (enforced in routes).
func UpdateCategory(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid category ID"})
		return
	}

	var category models.Category
	if err := config.DB.First(&category, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Category not found"})
		return
	}

	var req CategoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	category.Name = req.Name
	category.Description = req.Description
	if req.Color != "" {
		category.Color = req.Color
	}
	category.Icon = req.Icon
	if req.DisplayOrder != nil {
		category.DisplayOrder = *req.DisplayOrder
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	if err := config.DB.Save(&category).Error; err != nil {
		if utils.IsDuplicateErr(err) {
			c.JSON(http.StatusConflict, gin.H{"message": "Category name already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not update category"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": category})
}

// DeleteCategory refuses while meetings still reference the category.
func DeleteCategory(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid category ID"})
		return
	}

	var category models.Category
	if err := config.DB.First(&category, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Category not found"})
		return
	}

	var inUse int64
	config.DB.Model(&models.Meeting{}).Where("category_id = ?", category.ID).Count(&inUse)
	if inUse > 0 {
		c.JSON(http.StatusConflict, gin.H{"message": "Category is referenced by meetings"})
		return
	}

	if err := config.DB.Delete(&category).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not delete category"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}
