package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/aridlab/labsite/models"
	"github.com/aridlab/labsite/utils"
)

// PublicationController lists and records the lab's publications.
type PublicationController struct {
	db *gorm.DB
}

// NewPublicationController creates a PublicationController.
func NewPublicationController(db *gorm.DB) *PublicationController {
	return &PublicationController{db: db}
}

// ListPublications returns publications newest year first, filtered by ?year and ?search.
func (p *PublicationController) ListPublications(ctx *gin.Context) {
	yearStr := strings.TrimSpace(ctx.Query("year"))
	search := strings.TrimSpace(ctx.Query("search"))

	var year int
	if yearStr != "" {
		y, err := strconv.Atoi(yearStr)
		if err != nil || y <= 0 {
			utils.Error(ctx, http.StatusBadRequest, 40071, "无效的年份")
			return
		}
		year = y
	}

	// searches are not cached
	cacheKey := fmt.Sprintf("%syear=%d", cachePublications, year)
	if search == "" && utils.ServeCached(ctx, cacheKey) {
		return
	}

	query := p.db.Model(&models.Publication{}).
		Preload("Author", selectAuthor).
		Order("year DESC").Order("id DESC")
	if year != 0 {
		query = query.Where("year = ?", year)
	}
	if search != "" {
		like := likePattern(search)
		query = query.Where(likeClause("title", "authors", "journal"), like, like, like)
	}

	var publications []models.Publication
	if err := query.Find(&publications).Error; err != nil {
		serverError(ctx, 50070, msgServerError, err)
		return
	}

	payload := gin.H{"publications": publications}
	if search != "" {
		utils.Success(ctx, payload)
		return
	}
	utils.SuccessCached(ctx, cacheKey, payload)
}

// CreatePublication records a publication authored by the current user.
func (p *PublicationController) CreatePublication(ctx *gin.Context) {
	var req struct {
		Title    string `json:"title"`
		Abstract string `json:"abstract"`
		Authors  string `json:"authors"`
		Journal  string `json:"journal"`
		Year     int    `json:"year"`
		Volume   string `json:"volume"`
		Issue    string `json:"issue"`
		Pages    string `json:"pages"`
		DOI      string `json:"doi"`
		URL      string `json:"url"`
		PDFURL   string `json:"pdfUrl"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40070, "标题、作者、期刊和年份不能为空")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Authors = strings.TrimSpace(req.Authors)
	req.Journal = strings.TrimSpace(req.Journal)
	if req.Title == "" || req.Authors == "" || req.Journal == "" || req.Year <= 0 {
		utils.Error(ctx, http.StatusBadRequest, 40070, "标题、作者、期刊和年份不能为空")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40101, "未授权访问")
		return
	}

	publication := models.Publication{
		Title:    req.Title,
		Abstract: utils.SanitizeText(req.Abstract),
		Authors:  req.Authors,
		Journal:  req.Journal,
		Year:     req.Year,
		Volume:   strings.TrimSpace(req.Volume),
		Issue:    strings.TrimSpace(req.Issue),
		Pages:    strings.TrimSpace(req.Pages),
		DOI:      strings.TrimSpace(req.DOI),
		URL:      strings.TrimSpace(req.URL),
		PDFURL:   strings.TrimSpace(req.PDFURL),
		AuthorID: userID,
	}
	if err := p.db.Create(&publication).Error; err != nil {
		serverError(ctx, 50071, msgServerError, err)
		return
	}
	if err := p.db.Preload("Author", selectAuthor).First(&publication, publication.ID).Error; err != nil {
		serverError(ctx, 50072, msgServerError, err)
		return
	}

	utils.InvalidateByPrefix(cachePublications)
	utils.SuccessMsg(ctx, "论著创建成功", gin.H{"publication": publication})
}
