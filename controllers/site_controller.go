package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/aridlab/labsite/config"
	"github.com/aridlab/labsite/utils"
)

// SiteController serves environment-driven site information.
type SiteController struct{}

func NewSiteController() *SiteController { return &SiteController{} }

// GetSite returns the site name, description and contact block.
func (c *SiteController) GetSite(ctx *gin.Context) {
	cfg := config.Get()
	utils.Success(ctx, gin.H{
		"name":        cfg.SiteName,
		"description": cfg.SiteDescription,
		"contact": gin.H{
			"email":   cfg.ContactEmail,
			"phone":   cfg.ContactPhone,
			"address": cfg.ContactAddress,
		},
	})
}

// Health reports liveness.
func (c *SiteController) Health(ctx *gin.Context) {
	utils.Success(ctx, gin.H{"status": "ok"})
}
