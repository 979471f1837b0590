package controllers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/aridlab/labsite/models"
	"github.com/aridlab/labsite/utils"
)

// StatsController provides the dashboard counters.
type StatsController struct {
	db *gorm.DB
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

// GetStats returns record counts per table. A failed count reports 0 instead of failing the endpoint.
func (s *StatsController) GetStats(ctx *gin.Context) {
	count := func(name string, model interface{}, conds ...interface{}) int64 {
		var n int64
		q := s.db.Model(model)
		if len(conds) > 0 {
			q = q.Where(conds[0], conds[1:]...)
		}
		if err := q.Count(&n).Error; err != nil {
			utils.Logger.Warn("stats count failed", zap.String("table", name), zap.Error(err))
			return 0
		}
		return n
	}

	utils.Success(ctx, gin.H{
		"posts":          count("posts", &models.Post{}),
		"publishedPosts": count("posts", &models.Post{}, "published = ?", true),
		"categories":     count("categories", &models.Category{}),
		"files":          count("files", &models.File{}),
		"teamMembers":    count("team_members", &models.TeamMember{}),
		"publications":   count("publications", &models.Publication{}),
		"projects":       count("research_projects", &models.ResearchProject{}),
		"users":          count("users", &models.User{}),
	})
}
