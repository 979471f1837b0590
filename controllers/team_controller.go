package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/aridlab/labsite/models"
	"github.com/aridlab/labsite/utils"
)

// TeamController serves the team page.
type TeamController struct {
	db *gorm.DB
}

// NewTeamController creates a TeamController.
func NewTeamController(db *gorm.DB) *TeamController {
	return &TeamController{db: db}
}

// ListTeamMembers returns members by display order; ?active=true hides inactive ones.
func (t *TeamController) ListTeamMembers(ctx *gin.Context) {
	activeOnly := strings.EqualFold(strings.TrimSpace(ctx.Query("active")), "true")

	cacheKey := cacheTeam + "all"
	if activeOnly {
		cacheKey = cacheTeam + "active"
	}
	if utils.ServeCached(ctx, cacheKey) {
		return
	}

	query := t.db.Model(&models.TeamMember{}).Order("sort_order ASC").Order("id ASC")
	if activeOnly {
		query = query.Where("active = ?", true)
	}

	var members []models.TeamMember
	if err := query.Find(&members).Error; err != nil {
		serverError(ctx, 50060, "获取团队成员失败", err)
		return
	}

	utils.SuccessCached(ctx, cacheKey, gin.H{"teamMembers": members})
}

// CreateTeamMember adds a member; active defaults to true.
func (t *TeamController) CreateTeamMember(ctx *gin.Context) {
	var req struct {
		Name      string `json:"name"`
		Title     string `json:"title"`
		Avatar    string `json:"avatar"`
		Bio       string `json:"bio"`
		Email     string `json:"email"`
		Phone     string `json:"phone"`
		Research  string `json:"research"`
		Education string `json:"education"`
		Order     int    `json:"order"`
		Active    *bool  `json:"active"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40060, msgBadRequest)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Title = strings.TrimSpace(req.Title)
	if req.Name == "" || req.Title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40061, "姓名和职位为必填项")
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	member := models.TeamMember{
		Name:      req.Name,
		Title:     req.Title,
		Avatar:    strings.TrimSpace(req.Avatar),
		Bio:       utils.SanitizeText(req.Bio),
		Email:     strings.TrimSpace(req.Email),
		Phone:     strings.TrimSpace(req.Phone),
		Research:  utils.SanitizeText(req.Research),
		Education: utils.SanitizeText(req.Education),
		Order:     req.Order,
		Active:    active,
	}
	if err := t.db.Create(&member).Error; err != nil {
		serverError(ctx, 50061, "创建团队成员失败", err)
		return
	}

	utils.InvalidateByPrefix(cacheTeam)
	utils.SuccessMsg(ctx, "团队成员创建成功", gin.H{"teamMember": member})
}
