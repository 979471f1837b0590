package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/aridlab/labsite/models"
	"github.com/aridlab/labsite/utils"
)

// ProjectController lists and records research projects.
type ProjectController struct {
	db *gorm.DB
}

// NewProjectController creates a ProjectController.
func NewProjectController(db *gorm.DB) *ProjectController {
	return &ProjectController{db: db}
}

// ListProjects returns projects by start date, newest first, filtered by ?status and ?search.
func (p *ProjectController) ListProjects(ctx *gin.Context) {
	status := strings.ToUpper(strings.TrimSpace(ctx.Query("status")))
	search := strings.TrimSpace(ctx.Query("search"))

	if status != "" && !models.ValidProjectStatus(status) {
		utils.Error(ctx, http.StatusBadRequest, 40081, "无效的项目状态")
		return
	}

	cacheKey := fmt.Sprintf("%sstatus=%s", cacheProjects, status)
	if search == "" && utils.ServeCached(ctx, cacheKey) {
		return
	}

	query := p.db.Model(&models.ResearchProject{}).
		Preload("Author", selectAuthor).
		Order("start_date DESC").Order("id DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if search != "" {
		like := likePattern(search)
		query = query.Where(likeClause("title", "description", "funding"), like, like, like)
	}

	var projects []models.ResearchProject
	if err := query.Find(&projects).Error; err != nil {
		serverError(ctx, 50080, msgServerError, err)
		return
	}

	payload := gin.H{"projects": projects}
	if search != "" {
		utils.Success(ctx, payload)
		return
	}
	utils.SuccessCached(ctx, cacheKey, payload)
}

// CreateProject records a project; dates are YYYY-MM-DD or RFC 3339.
func (p *ProjectController) CreateProject(ctx *gin.Context) {
	var req struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		StartDate   string   `json:"startDate"`
		EndDate     string   `json:"endDate"`
		Status      string   `json:"status"`
		Funding     string   `json:"funding"`
		Budget      *float64 `json:"budget"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40080, msgBadRequest)
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || strings.TrimSpace(req.StartDate) == "" {
		utils.Error(ctx, http.StatusBadRequest, 40080, "标题和开始日期不能为空")
		return
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40082, "日期格式错误")
		return
	}
	var end *time.Time
	if strings.TrimSpace(req.EndDate) != "" {
		t, err := parseDate(req.EndDate)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40082, "日期格式错误")
			return
		}
		end = &t
	}

	status := strings.ToUpper(strings.TrimSpace(req.Status))
	if status == "" {
		status = models.ProjectPlanning
	}
	if !models.ValidProjectStatus(status) {
		utils.Error(ctx, http.StatusBadRequest, 40081, "无效的项目状态")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40101, "未授权访问")
		return
	}

	project := models.ResearchProject{
		Title:       req.Title,
		Description: utils.SanitizeText(req.Description),
		StartDate:   start,
		EndDate:     end,
		Status:      status,
		Funding:     strings.TrimSpace(req.Funding),
		Budget:      req.Budget,
		AuthorID:    userID,
	}
	if err := p.db.Create(&project).Error; err != nil {
		serverError(ctx, 50081, msgServerError, err)
		return
	}
	if err := p.db.Preload("Author", selectAuthor).First(&project, project.ID).Error; err != nil {
		serverError(ctx, 50082, msgServerError, err)
		return
	}

	utils.InvalidateByPrefix(cacheProjects)
	utils.SuccessMsg(ctx, "项目创建成功", gin.H{"project": project})
}
