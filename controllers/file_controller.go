package controllers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/aridlab/labsite/models"
	"github.com/aridlab/labsite/storage"
	"github.com/aridlab/labsite/utils"
)

// FileController manages the upload library.
type FileController struct {
	db       *gorm.DB
	store    storage.Store
	maxBytes int64
}

// NewFileController creates a FileController; maxBytes <= 0 disables the size limit.
func NewFileController(db *gorm.DB, store storage.Store, maxBytes int64) *FileController {
	return &FileController{db: db, store: store, maxBytes: maxBytes}
}

// ListFiles returns a page of uploads, optionally filtered by a case-insensitive search.
func (f *FileController) ListFiles(ctx *gin.Context) {
	page, limit := parsePagination(ctx.Query("page"), ctx.Query("limit"), 10)
	search := strings.TrimSpace(ctx.Query("search"))

	query := f.db.Model(&models.File{})
	if search != "" {
		like := likePattern(search)
		query = query.Where(likeClause("filename", "original_name", "mimetype"), like, like, like)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		serverError(ctx, 50050, "获取文件失败", err)
		return
	}

	var files []models.File
	if err := query.
		Preload("UploadedBy", selectUploader).
		Order("created_at DESC").Order("id DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&files).Error; err != nil {
		serverError(ctx, 50051, "获取文件失败", err)
		return
	}

	utils.Success(ctx, gin.H{
		"files": files,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
			"pages": totalPages(total, limit),
		},
	})
}

// UploadFile stores the multipart "file" field and records it in the library.
func (f *FileController) UploadFile(ctx *gin.Context) {
	file, ok := f.receive(ctx, "未找到文件")
	if !ok {
		return
	}
	utils.SuccessMsg(ctx, "文件上传成功", gin.H{"file": file})
}

// UploadAsset is UploadFile for the editor, also returning the public URL.
func (f *FileController) UploadAsset(ctx *gin.Context) {
	file, ok := f.receive(ctx, "没有找到文件")
	if !ok {
		return
	}
	utils.SuccessMsg(ctx, "文件上传成功", gin.H{
		"url":  f.store.URL(file.Path),
		"file": file,
	})
}

// DeleteFile removes the stored object, tolerating one that is already gone, then the row.
func (f *FileController) DeleteFile(ctx *gin.Context) {
	id, ok := parseID(ctx, 40053, "无效的文件ID")
	if !ok {
		return
	}

	var file models.File
	if err := f.db.First(&file, id).Error; err != nil {
		if isNotFound(err) {
			utils.Error(ctx, http.StatusNotFound, 40450, "文件不存在")
			return
		}
		serverError(ctx, 50052, msgServerError, err)
		return
	}

	if err := f.store.Delete(ctx.Request.Context(), file.Filename); err != nil {
		utils.Logger.Warn("remove stored file failed, deleting record anyway",
			zap.Uint("file_id", file.ID),
			zap.String("filename", file.Filename),
			zap.Error(err),
		)
	}

	if err := f.db.Delete(&file).Error; err != nil {
		serverError(ctx, 50053, msgServerError, err)
		return
	}

	utils.SuccessMsg(ctx, "文件删除成功", nil)
}

// receive handles the shared part of both upload endpoints and answers the request on failure.
func (f *FileController) receive(ctx *gin.Context, missingMsg string) (*models.File, bool) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40101, "未授权访问")
		return nil, false
	}

	if f.maxBytes > 0 {
		// room for the multipart envelope around the file itself
		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, f.maxBytes+1<<20)
	}

	header, err := ctx.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.Error(ctx, http.StatusBadRequest, 40052, "文件大小超过限制")
			return nil, false
		}
		utils.Error(ctx, http.StatusBadRequest, 40050, missingMsg)
		return nil, false
	}
	if f.maxBytes > 0 && header.Size > f.maxBytes {
		utils.Error(ctx, http.StatusBadRequest, 40052, "文件大小超过限制")
		return nil, false
	}

	src, err := header.Open()
	if err != nil {
		serverError(ctx, 50054, "文件上传失败", err)
		return nil, false
	}
	defer src.Close()

	mtype, err := detectMimetype(header, src)
	if err != nil {
		serverError(ctx, 50055, "文件上传失败", err)
		return nil, false
	}

	name := storage.NewFilename(header.Filename)
	publicPath, err := f.store.Save(ctx.Request.Context(), name, src)
	if err != nil {
		serverError(ctx, 50056, "文件上传失败", err)
		return nil, false
	}

	record := models.File{
		Filename:     name,
		OriginalName: filepath.Base(header.Filename),
		Path:         publicPath,
		Size:         header.Size,
		Mimetype:     mtype,
		UploadedByID: userID,
	}
	if err := f.db.Create(&record).Error; err != nil {
		if delErr := f.store.Delete(ctx.Request.Context(), name); delErr != nil {
			utils.Logger.Warn("remove orphaned upload failed", zap.String("filename", name), zap.Error(delErr))
		}
		serverError(ctx, 50057, "文件上传失败", err)
		return nil, false
	}

	if err := f.db.Preload("UploadedBy", selectUploader).First(&record, record.ID).Error; err != nil {
		serverError(ctx, 50058, "文件上传失败", err)
		return nil, false
	}
	return &record, true
}

// detectMimetype trusts the client's Content-Type unless it is missing or generic,
// in which case the content is sniffed and src rewound.
func detectMimetype(header *multipart.FileHeader, src multipart.File) (string, error) {
	declared := strings.TrimSpace(header.Header.Get("Content-Type"))
	if declared != "" && declared != "application/octet-stream" {
		return declared, nil
	}

	mt, err := mimetype.DetectReader(src)
	if err != nil {
		return "", err
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return mt.String(), nil
}
