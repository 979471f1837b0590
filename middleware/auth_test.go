package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aridlab/labsite/models"
	"github.com/aridlab/labsite/utils"
)

func authEngine(extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers := append([]gin.HandlerFunc{AuthRequired()}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"uid":  c.MustGet(ContextUserIDKey),
			"name": c.GetString(ContextUsernameKey),
			"role": c.GetString(ContextRoleKey),
		})
	})
	r.GET("/p", handlers...)
	return r
}

func doGet(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func businessCode(t *testing.T, w *httptest.ResponseRecorder) int {
	t.Helper()
	var body utils.JSONResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Code
}

func TestAuthRequired_Accepts(t *testing.T) {
	token, err := utils.GenerateToken(7, "alice", models.RoleEditor, time.Hour)
	require.NoError(t, err)

	w := doGet(authEngine(), "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"uid":7,"name":"alice","role":"EDITOR"}`, w.Body.String())
}

func TestAuthRequired_Rejects(t *testing.T) {
	expired, err := utils.GenerateToken(1, "bob", models.RoleUser, -time.Minute)
	require.NoError(t, err)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, utils.Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("someone-else"))
	require.NoError(t, err)

	revoked, err := utils.GenerateToken(2, "carol", models.RoleUser, time.Hour)
	require.NoError(t, err)
	utils.RevokeToken(revoked, time.Now().Add(time.Hour))

	cases := []struct {
		name   string
		header string
		code   int
	}{
		{"missing", "", 40101},
		{"no scheme", "abc", 40102},
		{"wrong scheme", "Basic abc", 40102},
		{"empty token", "Bearer  ", 40103},
		{"revoked", "Bearer " + revoked, 40104},
		{"expired", "Bearer " + expired, 40105},
		{"wrong secret", "Bearer " + forged, 40105},
		{"garbage", "Bearer not.a.jwt", 40105},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doGet(authEngine(), tc.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, tc.code, businessCode(t, w))
		})
	}
}

func TestRequireRole(t *testing.T) {
	r := authEngine(RequireRole(models.RoleAdmin))

	admin, err := utils.GenerateToken(1, "root", models.RoleAdmin, time.Hour)
	require.NoError(t, err)
	editor, err := utils.GenerateToken(2, "ed", models.RoleEditor, time.Hour)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, doGet(r, "Bearer "+admin).Code)

	w := doGet(r, "Bearer "+editor)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, 40301, businessCode(t, w))
}
