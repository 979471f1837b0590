package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/aridlab/labsite/config"
	"github.com/aridlab/labsite/middleware"
	"github.com/aridlab/labsite/models"
	"github.com/aridlab/labsite/storage"
	"github.com/aridlab/labsite/utils"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	config.Set(config.AppConfig{
		JWTSecret:       "controllers-test-secret",
		TokenTTLHours:   24,
		SiteName:        "Test Lab",
		ContactEmail:    "lab@example.com",
		UploadURLPrefix: "/uploads",
	})
	os.Exit(m.Run())
}

type testEnv struct {
	t      *testing.T
	db     *gorm.DB
	dir    string
	router *gin.Engine
	admin  models.User
	token  string
}

// newTestEnv wires every controller onto a fresh in-memory database and upload dir.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := config.OpenDatabase(config.AppConfig{
		DBDriver:    "sqlite",
		DatabaseURI: fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
		LogLevel:    "silent",
	}, models.All()...)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	dir := t.TempDir()
	store, err := storage.NewLocalStore(dir, "/uploads", "https://lab.example.com")
	require.NoError(t, err)

	env := &testEnv{t: t, db: db, dir: dir, router: gin.New()}
	env.mount(store)

	hash, err := utils.HashPassword("admin123")
	require.NoError(t, err)
	env.admin = models.User{Username: "admin", Email: "admin@example.com", PasswordHash: hash, Name: "Admin", Role: models.RoleAdmin}
	require.NoError(t, db.Create(&env.admin).Error)
	env.token = env.tokenFor(env.admin)
	return env
}

func (e *testEnv) mount(store storage.Store) {
	authC := NewAuthController(e.db)
	postC := NewPostController(e.db, store)
	catC := NewCategoryController(e.db)
	fileC := NewFileController(e.db, store, 1<<20)
	teamC := NewTeamController(e.db)
	pubC := NewPublicationController(e.db)
	projC := NewProjectController(e.db)
	statsC := NewStatsController(e.db)
	siteC := NewSiteController()

	auth := middleware.AuthRequired()
	api := e.router.Group("/api")
	api.POST("/auth/register", authC.Register)
	api.POST("/auth/login", authC.Login)
	api.POST("/auth/logout", auth, authC.Logout)
	api.GET("/auth/me", auth, authC.Me)
	api.GET("/users", auth, middleware.RequireRole(models.RoleAdmin), authC.ListUsers)

	api.GET("/posts", auth, postC.ListPosts)
	api.POST("/posts", auth, postC.CreatePost)
	api.GET("/posts/:id", auth, postC.GetPost)
	api.PUT("/posts/:id", auth, postC.UpdatePost)
	api.DELETE("/posts/:id", auth, postC.DeletePost)
	api.GET("/public/posts", postC.ListPublishedPosts)
	api.GET("/public/posts/:slug", postC.GetPublishedPost)

	api.GET("/categories", auth, catC.ListCategories)
	api.POST("/categories", auth, catC.CreateCategory)

	api.GET("/files", fileC.ListFiles)
	api.POST("/files", auth, fileC.UploadFile)
	api.DELETE("/files/:id", auth, fileC.DeleteFile)
	api.POST("/upload", auth, fileC.UploadAsset)

	api.GET("/team-members", teamC.ListTeamMembers)
	api.POST("/team-members", auth, teamC.CreateTeamMember)
	api.GET("/publications", pubC.ListPublications)
	api.POST("/publications", auth, pubC.CreatePublication)
	api.GET("/projects", projC.ListProjects)
	api.POST("/projects", auth, projC.CreateProject)

	api.GET("/stats", auth, statsC.GetStats)
	api.GET("/site", siteC.GetSite)
	e.router.GET("/health", siteC.Health)
}

func (e *testEnv) tokenFor(u models.User) string {
	e.t.Helper()
	token, err := utils.GenerateToken(u.ID, u.Username, u.Role, time.Hour)
	require.NoError(e.t, err)
	return token
}

// do sends body as JSON (nil for none) with an optional bearer token.
func (e *testEnv) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	e.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(e.t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// upload posts content as the multipart "file" field; an empty contentType lets the server sniff.
func (e *testEnv) upload(path, filename, contentType string, content []byte) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(map[string][]string)
	h["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename)}
	if contentType != "" {
		h["Content-Type"] = []string{contentType}
	}
	part, err := mw.CreatePart(h)
	require.NoError(e.t, err)
	_, err = part.Write(content)
	require.NoError(e.t, err)
	require.NoError(e.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+e.token)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// decode checks the HTTP status and unmarshals the envelope's data into out (if non-nil).
func decode(t *testing.T, w *httptest.ResponseRecorder, status int, out interface{}) envelope {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	if out != nil {
		require.NoError(t, json.Unmarshal(env.Data, out))
	}
	return env
}
