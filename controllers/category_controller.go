package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/aridlab/labsite/models"
	"github.com/aridlab/labsite/utils"
)

// CategoryController lists and creates post categories.
type CategoryController struct {
	db *gorm.DB
}

// NewCategoryController creates a CategoryController.
func NewCategoryController(db *gorm.DB) *CategoryController {
	return &CategoryController{db: db}
}

// ListCategories returns all categories ordered by name.
func (c *CategoryController) ListCategories(ctx *gin.Context) {
	var categories []models.Category
	if err := c.db.Order("name ASC").Find(&categories).Error; err != nil {
		serverError(ctx, 50040, msgServerError, err)
		return
	}
	utils.Success(ctx, gin.H{"categories": categories})
}

// CreateCategory creates a category; a clash on name or slug is a conflict.
func (c *CategoryController) CreateCategory(ctx *gin.Context) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Color       string `json:"color"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, msgBadRequest)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		utils.Error(ctx, http.StatusBadRequest, 40041, "分类名称不能为空")
		return
	}
	slug := utils.Slugify(req.Name)

	var n int64
	if err := c.db.Model(&models.Category{}).Where("name = ? OR slug = ?", req.Name, slug).Count(&n).Error; err != nil {
		serverError(ctx, 50041, msgServerError, err)
		return
	}
	if n > 0 {
		utils.Error(ctx, http.StatusConflict, 40940, "分类已存在")
		return
	}

	category := models.Category{
		Name:        req.Name,
		Slug:        slug,
		Description: strings.TrimSpace(req.Description),
		Color:       strings.TrimSpace(req.Color),
	}
	if err := c.db.Create(&category).Error; err != nil {
		if isDuplicate(err) {
			utils.Error(ctx, http.StatusConflict, 40940, "分类已存在")
			return
		}
		serverError(ctx, 50042, msgServerError, err)
		return
	}

	utils.InvalidateByPrefix(cachePublicPosts)
	utils.SuccessMsg(ctx, "分类创建成功", gin.H{"category": category})
}
