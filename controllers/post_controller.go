package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/aridlab/labsite/models"
	"github.com/aridlab/labsite/storage"
	"github.com/aridlab/labsite/utils"
)

// PostController manages news posts in the back-office and serves published ones publicly.
type PostController struct {
	db    *gorm.DB
	store storage.Store
}

// NewPostController creates a PostController. store removes attached files on delete.
func NewPostController(db *gorm.DB, store storage.Store) *PostController {
	return &PostController{db: db, store: store}
}

type postRequest struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	Excerpt    string `json:"excerpt"`
	Published  bool   `json:"published"`
	CategoryID *uint  `json:"categoryId"`
	CoverImage string `json:"coverImage"`
	FileIDs    []uint `json:"fileIds"`
}

// bind parses and validates the body; it answers the request itself on failure.
func (p *PostController) bind(ctx *gin.Context) (postRequest, bool) {
	var req postRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, msgBadRequest)
		return req, false
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40021, "标题不能为空")
		return req, false
	}
	req.Content = utils.Sanitize(req.Content)
	req.Excerpt = utils.SanitizeText(strings.TrimSpace(req.Excerpt))
	req.CoverImage = strings.TrimSpace(req.CoverImage)

	if req.CategoryID != nil && *req.CategoryID == 0 {
		req.CategoryID = nil
	}
	if req.CategoryID != nil {
		var n int64
		if err := p.db.Model(&models.Category{}).Where("id = ?", *req.CategoryID).Count(&n).Error; err != nil {
			serverError(ctx, 50020, msgServerError, err)
			return req, false
		}
		if n == 0 {
			utils.Error(ctx, http.StatusBadRequest, 40022, "分类不存在")
			return req, false
		}
	}
	return req, true
}

// CreatePost creates a post with a unique slug derived from its title.
func (p *PostController) CreatePost(ctx *gin.Context) {
	req, ok := p.bind(ctx)
	if !ok {
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40101, "未授权访问")
		return
	}

	post := models.Post{
		Title:      req.Title,
		Content:    req.Content,
		Excerpt:    req.Excerpt,
		CoverImage: req.CoverImage,
		Published:  req.Published,
		AuthorID:   userID,
		CategoryID: req.CategoryID,
	}
	if req.Published {
		now := time.Now()
		post.PublishedAt = &now
	}

	err := p.db.Transaction(func(tx *gorm.DB) error {
		slug, err := uniquePostSlug(tx, utils.Slugify(req.Title), 0)
		if err != nil {
			return err
		}
		post.Slug = slug
		if err := tx.Create(&post).Error; err != nil {
			return err
		}
		return attachFiles(tx, post.ID, req.FileIDs, false)
	})
	if err != nil {
		if attachError(ctx, err) {
			return
		}
		if isDuplicate(err) {
			utils.Error(ctx, http.StatusConflict, 40920, "文章链接已存在")
			return
		}
		serverError(ctx, 50021, msgServerError, err)
		return
	}

	if err := p.loadDetail(&post, post.ID); err != nil {
		serverError(ctx, 50022, msgServerError, err)
		return
	}

	utils.InvalidateByPrefix(cachePublicPosts)
	utils.SuccessMsg(ctx, "文章创建成功", gin.H{"post": post})
}

// ListPosts returns every post for the back-office, newest first.
func (p *PostController) ListPosts(ctx *gin.Context) {
	query := p.db.Model(&models.Post{}).
		Preload("Author", selectAuthor).
		Preload("Category").
		Order("created_at DESC").Order("id DESC")

	switch strings.ToLower(strings.TrimSpace(ctx.Query("published"))) {
	case "true":
		query = query.Where("published = ?", true)
	case "false":
		query = query.Where("published = ?", false)
	}
	if slug := strings.TrimSpace(ctx.Query("category")); slug != "" {
		query = query.Where("category_id IN (?)", p.db.Model(&models.Category{}).Select("id").Where("slug = ?", slug))
	}

	var posts []models.Post
	if err := query.Find(&posts).Error; err != nil {
		serverError(ctx, 50023, msgServerError, err)
		return
	}

	utils.Success(ctx, gin.H{"posts": posts})
}

// GetPost returns a single post with its author, category and files.
func (p *PostController) GetPost(ctx *gin.Context) {
	id, ok := parseID(ctx, 40023, "无效的文章ID")
	if !ok {
		return
	}

	var post models.Post
	if err := p.loadDetail(&post, id); err != nil {
		if isNotFound(err) {
			utils.Error(ctx, http.StatusNotFound, 40420, "文章不存在")
			return
		}
		serverError(ctx, 50024, msgServerError, err)
		return
	}

	utils.Success(ctx, gin.H{"post": post})
}

// UpdatePost replaces the editable fields and regenerates the slug.
func (p *PostController) UpdatePost(ctx *gin.Context) {
	id, ok := parseID(ctx, 40023, "无效的文章ID")
	if !ok {
		return
	}

	req, ok := p.bind(ctx)
	if !ok {
		return
	}

	var post models.Post
	if err := p.db.First(&post, id).Error; err != nil {
		if isNotFound(err) {
			utils.Error(ctx, http.StatusNotFound, 40420, "文章不存在")
			return
		}
		serverError(ctx, 50025, msgServerError, err)
		return
	}

	// keep the original publish time while a post stays published
	publishedAt := post.PublishedAt
	switch {
	case !req.Published:
		publishedAt = nil
	case !post.Published || publishedAt == nil:
		now := time.Now()
		publishedAt = &now
	}

	err := p.db.Transaction(func(tx *gorm.DB) error {
		slug, err := uniquePostSlug(tx, utils.Slugify(req.Title), post.ID)
		if err != nil {
			return err
		}
		if err := tx.Model(&post).Updates(map[string]interface{}{
			"title":        req.Title,
			"slug":         slug,
			"content":      req.Content,
			"excerpt":      req.Excerpt,
			"cover_image":  req.CoverImage,
			"published":    req.Published,
			"published_at": publishedAt,
			"category_id":  req.CategoryID,
		}).Error; err != nil {
			return err
		}
		if req.FileIDs == nil {
			return nil
		}
		return attachFiles(tx, post.ID, req.FileIDs, true)
	})
	if err != nil {
		if attachError(ctx, err) {
			return
		}
		if isDuplicate(err) {
			utils.Error(ctx, http.StatusConflict, 40920, "文章链接已存在")
			return
		}
		serverError(ctx, 50026, msgServerError, err)
		return
	}

	var updated models.Post
	if err := p.loadDetail(&updated, post.ID); err != nil {
		serverError(ctx, 50027, msgServerError, err)
		return
	}

	utils.InvalidateByPrefix(cachePublicPosts)
	utils.SuccessMsg(ctx, "文章更新成功", gin.H{"post": updated})
}

// DeletePost removes a post and the files attached to it.
func (p *PostController) DeletePost(ctx *gin.Context) {
	id, ok := parseID(ctx, 40023, "无效的文章ID")
	if !ok {
		return
	}

	var post models.Post
	if err := p.db.First(&post, id).Error; err != nil {
		if isNotFound(err) {
			utils.Error(ctx, http.StatusNotFound, 40420, "文章不存在")
			return
		}
		serverError(ctx, 50028, msgServerError, err)
		return
	}

	var files []models.File
	err := p.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Find(&files).Error; err != nil {
			return err
		}
		if len(files) > 0 {
			if err := tx.Delete(&files).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&post).Error
	})
	if err != nil {
		serverError(ctx, 50029, msgServerError, err)
		return
	}

	for _, f := range files {
		if err := p.store.Delete(ctx.Request.Context(), f.Filename); err != nil {
			utils.Logger.Warn("remove stored file failed",
				zap.Uint("post_id", post.ID),
				zap.String("filename", f.Filename),
				zap.Error(err),
			)
		}
	}

	utils.InvalidateByPrefix(cachePublicPosts)
	utils.SuccessMsg(ctx, "文章删除成功", nil)
}

// ListPublishedPosts is the public, paginated listing of published posts.
func (p *PostController) ListPublishedPosts(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"), 10)
	category := strings.TrimSpace(ctx.Query("category"))

	cacheKey := fmt.Sprintf("%scat=%s:page=%d:size=%d", cachePublicPosts, category, page, pageSize)
	if utils.ServeCached(ctx, cacheKey) {
		return
	}

	query := p.db.Model(&models.Post{}).Where("published = ?", true)
	if category != "" {
		query = query.Where("category_id IN (?)", p.db.Model(&models.Category{}).Select("id").Where("slug = ?", category))
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		serverError(ctx, 50030, msgServerError, err)
		return
	}

	var posts []models.Post
	if err := query.
		Preload("Author", selectAuthor).
		Preload("Category").
		Order("published_at DESC").Order("id DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&posts).Error; err != nil {
		serverError(ctx, 50031, msgServerError, err)
		return
	}

	utils.SuccessCached(ctx, cacheKey, gin.H{
		"posts": posts,
		"pagination": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": totalPages(total, pageSize),
		},
	})
}

// GetPublishedPost returns a published post by slug.
func (p *PostController) GetPublishedPost(ctx *gin.Context) {
	slug := strings.TrimSpace(ctx.Param("slug"))

	var post models.Post
	err := p.db.Where("slug = ? AND published = ?", slug, true).
		Preload("Author", selectAuthor).
		Preload("Category").
		Preload("Files").
		First(&post).Error
	if err != nil {
		if isNotFound(err) {
			utils.Error(ctx, http.StatusNotFound, 40420, "文章不存在")
			return
		}
		serverError(ctx, 50032, msgServerError, err)
		return
	}

	utils.Success(ctx, gin.H{"post": post})
}

func (p *PostController) loadDetail(post *models.Post, id uint) error {
	return p.db.
		Preload("Author", selectAuthor).
		Preload("Category").
		Preload("Files", func(tx *gorm.DB) *gorm.DB { return tx.Order("id ASC") }).
		First(post, id).Error
}

// uniquePostSlug returns base, or base-2, base-3, ... when another post holds it.
// excludeID is the post being updated, 0 on create.
func uniquePostSlug(tx *gorm.DB, base string, excludeID uint) (string, error) {
	slug := base
	for i := 2; ; i++ {
		q := tx.Model(&models.Post{}).Where("slug = ?", slug)
		if excludeID != 0 {
			q = q.Where("id <> ?", excludeID)
		}
		var n int64
		if err := q.Count(&n).Error; err != nil {
			return "", err
		}
		if n == 0 {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

var (
	errUnknownFiles  = errors.New("unknown file ids")
	errFilesAttached = errors.New("files attached to another post")
)

// attachFiles points the given files at postID. With replace, files no longer
// listed are detached first. Every id must exist and be free or already ours.
func attachFiles(tx *gorm.DB, postID uint, fileIDs []uint, replace bool) error {
	ids := uniqueIDs(fileIDs)
	if len(ids) > 0 {
		var found int64
		if err := tx.Model(&models.File{}).Where("id IN ?", ids).Count(&found).Error; err != nil {
			return err
		}
		if found != int64(len(ids)) {
			return errUnknownFiles
		}
		var taken int64
		if err := tx.Model(&models.File{}).
			Where("id IN ? AND post_id IS NOT NULL AND post_id <> ?", ids, postID).
			Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return errFilesAttached
		}
	}

	if replace {
		detach := tx.Model(&models.File{}).Where("post_id = ?", postID)
		if len(ids) > 0 {
			detach = detach.Where("id NOT IN ?", ids)
		}
		if err := detach.Update("post_id", nil).Error; err != nil {
			return err
		}
	}
	if len(ids) == 0 {
		return nil
	}
	return tx.Model(&models.File{}).Where("id IN ?", ids).Update("post_id", postID).Error
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// attachError answers the client-side attachFiles failures; it reports whether it wrote a response.
func attachError(ctx *gin.Context, err error) bool {
	switch {
	case errors.Is(err, errUnknownFiles):
		utils.Error(ctx, http.StatusBadRequest, 40024, "附件文件不存在")
	case errors.Is(err, errFilesAttached):
		utils.Error(ctx, http.StatusConflict, 40921, "文件已关联其他文章")
	default:
		return false
	}
	return true
}
