package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/aridlab/labsite/middleware"
	"github.com/aridlab/labsite/utils"
)

// Cache key prefixes for the public listings; writes invalidate by prefix.
const (
	cachePublicPosts  = "posts:public:"
	cacheTeam         = "team:"
	cachePublications = "publications:"
	cacheProjects     = "projects:"
)

const maxPageSize = 100

const (
	msgBadRequest  = "请求参数错误"
	msgServerError = "服务器错误"
)

func parsePagination(pageStr, sizeStr string, defSize int) (int, int) {
	page := 1
	pageSize := defSize
	if p, err := strconv.Atoi(strings.TrimSpace(pageStr)); err == nil && p > 0 {
		page = p
	}
	if s, err := strconv.Atoi(strings.TrimSpace(sizeStr)); err == nil && s > 0 {
		pageSize = min(s, maxPageSize)
	}
	return page, pageSize
}

func totalPages(total int64, size int) int {
	if size <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}

func getUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		return uint(v), true
	case int64:
		return uint(v), true
	case float64:
		return uint(v), true
	default:
		return 0, false
	}
}

// parseID reads the :id path parameter, answering 400 with code on failure.
func parseID(ctx *gin.Context, code int, message string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil || id == 0 {
		utils.Error(ctx, http.StatusBadRequest, code, message)
		return 0, false
	}
	return uint(id), true
}

func serverError(ctx *gin.Context, code int, message string, err error) {
	utils.Logger.Error(message,
		zap.Int("code", code),
		zap.String("method", ctx.Request.Method),
		zap.String("path", ctx.Request.URL.Path),
		zap.Error(err),
	)
	utils.Error(ctx, http.StatusInternalServerError, code, message)
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// selectAuthor limits preloaded users to their public columns.
func selectAuthor(tx *gorm.DB) *gorm.DB {
	return tx.Select("id", "username", "name", "avatar")
}

func selectUploader(tx *gorm.DB) *gorm.DB {
	return tx.Select("id", "username", "name", "email")
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// likePattern builds a contains-pattern for likeClause; wildcards in s match literally.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(s))) + "%"
}

// likeClause ORs a case-insensitive LIKE over columns using '!' as the escape character.
func likeClause(columns ...string) string {
	parts := make([]string, len(columns))
	for i, c := range columns {
		parts[i] = "LOWER(" + c + ") LIKE ? ESCAPE '!'"
	}
	return strings.Join(parts, " OR ")
}

// parseDate accepts YYYY-MM-DD or RFC 3339.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
