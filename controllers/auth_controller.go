package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/aridlab/labsite/middleware"
	"github.com/aridlab/labsite/models"
	"github.com/aridlab/labsite/utils"
)

// AuthController handles registration, login and the current account.
type AuthController struct {
	db *gorm.DB
}

// NewAuthController creates an AuthController.
func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{db: db}
}

// Register creates a USER account.
func (a *AuthController) Register(ctx *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40000, msgBadRequest)
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Email == "" || req.Password == "" {
		utils.Error(ctx, http.StatusBadRequest, 40001, "用户名、邮箱和密码不能为空")
		return
	}

	var count int64
	if err := a.db.Model(&models.User{}).
		Where("username = ? OR email = ?", req.Username, req.Email).
		Count(&count).Error; err != nil {
		serverError(ctx, 50001, msgServerError, err)
		return
	}
	if count > 0 {
		utils.Error(ctx, http.StatusConflict, 40901, "用户名或邮箱已存在")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		serverError(ctx, 50002, msgServerError, err)
		return
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(req.Name),
		Role:         models.RoleUser,
	}
	if err := a.db.Create(&user).Error; err != nil {
		if isDuplicate(err) {
			utils.Error(ctx, http.StatusConflict, 40901, "用户名或邮箱已存在")
			return
		}
		serverError(ctx, 50003, msgServerError, err)
		return
	}

	utils.SuccessMsg(ctx, "注册成功", gin.H{"user": user})
}

// Login verifies credentials and issues a JWT.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40000, msgBadRequest)
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		utils.Error(ctx, http.StatusBadRequest, 40002, "用户名和密码不能为空")
		return
	}

	var user models.User
	if err := a.db.Where("username = ?", req.Username).First(&user).Error; err != nil {
		if !isNotFound(err) {
			serverError(ctx, 50004, msgServerError, err)
			return
		}
		utils.Error(ctx, http.StatusUnauthorized, 40106, "用户名或密码错误")
		return
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "用户名或密码错误")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Username, user.Role, utils.TokenTTL())
	if err != nil {
		serverError(ctx, 50005, msgServerError, err)
		return
	}

	utils.SuccessMsg(ctx, "登录成功", gin.H{
		"token": token,
		"user":  user,
	})
}

// Logout revokes the presented token until it would have expired.
func (a *AuthController) Logout(ctx *gin.Context) {
	token := ctx.GetString(middleware.ContextTokenKey)
	if token == "" {
		utils.Error(ctx, http.StatusUnauthorized, 40101, "未授权访问")
		return
	}

	expiresAt := time.Now().Add(utils.TokenTTL())
	if claims, ok := ctx.Get(middleware.ContextClaimsKey); ok {
		if c, ok := claims.(*utils.Claims); ok && c.ExpiresAt != nil {
			expiresAt = c.ExpiresAt.Time
		}
	}

	utils.RevokeToken(token, expiresAt)
	utils.SuccessMsg(ctx, "退出成功", nil)
}

// Me returns the authenticated user.
func (a *AuthController) Me(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40101, "未授权访问")
		return
	}

	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		if isNotFound(err) {
			utils.Error(ctx, http.StatusNotFound, 40401, "用户不存在")
			return
		}
		serverError(ctx, 50006, msgServerError, err)
		return
	}

	utils.Success(ctx, gin.H{"user": user})
}

// ListUsers returns paginated users, newest first.
func (a *AuthController) ListUsers(ctx *gin.Context) {
	var users []models.User
	var total int64

	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"), 10)

	if err := a.db.Model(&models.User{}).Count(&total).Error; err != nil {
		serverError(ctx, 50007, msgServerError, err)
		return
	}

	if err := a.db.Order("created_at DESC").Order("id DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&users).Error; err != nil {
		serverError(ctx, 50008, msgServerError, err)
		return
	}

	utils.Success(ctx, gin.H{
		"users": users,
		"pagination": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": totalPages(total, pageSize),
		},
	})
}
