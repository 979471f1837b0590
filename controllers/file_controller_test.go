package controllers

import (
	"bytes"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aridlab/labsite/models"
)

type fileEnvelope struct {
	URL  string      `json:"url"`
	File models.File `json:"file"`
}

func TestUploadFile(t *testing.T) {
	env := newTestEnv(t)

	var out fileEnvelope
	body := decode(t, env.upload("/api/files", "Soil Report.PDF", "application/pdf", []byte("%PDF-1.4 test")), http.StatusOK, &out)
	assert.Equal(t, "文件上传成功", body.Message)
	assert.Equal(t, "Soil Report.PDF", out.File.OriginalName)
	assert.True(t, strings.HasSuffix(out.File.Filename, ".pdf"))
	assert.Equal(t, "/uploads/"+out.File.Filename, out.File.Path)
	assert.EqualValues(t, len("%PDF-1.4 test"), out.File.Size)
	assert.Equal(t, "application/pdf", out.File.Mimetype)
	assert.Equal(t, env.admin.ID, out.File.UploadedByID)
	assert.Equal(t, "admin@example.com", out.File.UploadedBy.Email)

	b, err := os.ReadFile(filepath.Join(env.dir, out.File.Filename))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 test", string(b))
}

func TestUploadAsset_ReturnsURLAndSniffsType(t *testing.T) {
	env := newTestEnv(t)

	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}
	var out fileEnvelope
	decode(t, env.upload("/api/upload", "cover.png", "", png), http.StatusOK, &out)
	assert.Equal(t, "https://lab.example.com/uploads/"+out.File.Filename, out.URL)
	assert.Equal(t, "image/png", out.File.Mimetype)
}

func TestUpload_Rejects(t *testing.T) {
	env := newTestEnv(t)

	body := decode(t, env.do(http.MethodPost, "/api/upload", nil, env.token), http.StatusBadRequest, nil)
	assert.Equal(t, "没有找到文件", body.Message)
	body = decode(t, env.do(http.MethodPost, "/api/files", nil, env.token), http.StatusBadRequest, nil)
	assert.Equal(t, "未找到文件", body.Message)

	big := bytes.Repeat([]byte("x"), 1<<20+1)
	body = decode(t, env.upload("/api/files", "big.bin", "application/octet-stream", big), http.StatusBadRequest, nil)
	assert.Equal(t, 40052, body.Code)

	var n int64
	require.NoError(t, env.db.Model(&models.File{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestListFiles_SearchAndPaginate(t *testing.T) {
	env := newTestEnv(t)

	for _, name := range []string{"alpha.txt", "beta.txt", "Gamma.csv"} {
		decode(t, env.upload("/api/files", name, "text/plain", []byte(name)), http.StatusOK, nil)
	}

	var page struct {
		Files      []models.File `json:"files"`
		Pagination struct {
			Page  int   `json:"page"`
			Limit int   `json:"limit"`
			Total int64 `json:"total"`
			Pages int   `json:"pages"`
		} `json:"pagination"`
	}
	decode(t, env.do(http.MethodGet, "/api/files?limit=2", nil, ""), http.StatusOK, &page)
	assert.Len(t, page.Files, 2)
	assert.Equal(t, 1, page.Pagination.Page)
	assert.Equal(t, 2, page.Pagination.Limit)
	assert.EqualValues(t, 3, page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.Pages)

	var second struct {
		Files []models.File `json:"files"`
	}
	decode(t, env.do(http.MethodGet, "/api/files?limit=2&page=2", nil, ""), http.StatusOK, &second)
	assert.Len(t, second.Files, 1)

	var found struct {
		Files []models.File `json:"files"`
	}
	decode(t, env.do(http.MethodGet, "/api/files?search=GAMMA", nil, ""), http.StatusOK, &found)
	require.Len(t, found.Files, 1)
	assert.Equal(t, "Gamma.csv", found.Files[0].OriginalName)
}

func TestDeleteFile(t *testing.T) {
	env := newTestEnv(t)

	var a, b fileEnvelope
	decode(t, env.upload("/api/files", "a.txt", "text/plain", []byte("a")), http.StatusOK, &a)
	decode(t, env.upload("/api/files", "b.txt", "text/plain", []byte("b")), http.StatusOK, &b)

	body := decode(t, env.do(http.MethodDelete, "/api/files/"+strconv.Itoa(int(a.File.ID)), nil, env.token), http.StatusOK, nil)
	assert.Equal(t, "文件删除成功", body.Message)
	_, err := os.Stat(filepath.Join(env.dir, a.File.Filename))
	assert.True(t, os.IsNotExist(err))

	// stored object already gone: the row is still removed
	require.NoError(t, os.Remove(filepath.Join(env.dir, b.File.Filename)))
	decode(t, env.do(http.MethodDelete, "/api/files/"+strconv.Itoa(int(b.File.ID)), nil, env.token), http.StatusOK, nil)

	var n int64
	require.NoError(t, env.db.Model(&models.File{}).Count(&n).Error)
	assert.Zero(t, n)

	body = decode(t, env.do(http.MethodDelete, "/api/files/"+strconv.Itoa(int(a.File.ID)), nil, env.token), http.StatusNotFound, nil)
	assert.Equal(t, "文件不存在", body.Message)
}

func TestListFiles_ClampsLimitAndMatchesWildcardsLiterally(t *testing.T) {
	env := newTestEnv(t)

	for _, name := range []string{"raw_data.txt", "notes.txt", "100%.txt"} {
		decode(t, env.upload("/api/files", name, "text/plain", []byte(name)), http.StatusOK, nil)
	}

	var page struct {
		Files      []models.File `json:"files"`
		Pagination struct {
			Limit int `json:"limit"`
		} `json:"pagination"`
	}
	decode(t, env.do(http.MethodGet, "/api/files?limit=500", nil, ""), http.StatusOK, &page)
	assert.Equal(t, 100, page.Pagination.Limit)
	assert.Len(t, page.Files, 3)

	for search, want := range map[string]string{"_": "raw_data.txt", "%25": "100%.txt"} {
		var found struct {
			Files []models.File `json:"files"`
		}
		decode(t, env.do(http.MethodGet, "/api/files?search="+search, nil, ""), http.StatusOK, &found)
		require.Len(t, found.Files, 1, search)
		assert.Equal(t, want, found.Files[0].OriginalName)
	}
}
