package controllers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aridlab/labsite/models"
)

func TestPublications(t *testing.T) {
	env := newTestEnv(t)

	var created struct {
		Publication models.Publication `json:"publication"`
	}
	body := decode(t, env.do(http.MethodPost, "/api/publications", map[string]interface{}{
		"title": "Water use efficiency of jujube", "authors": "Zhang S, Li M", "journal": "Agricultural Water Management",
		"year": 2022, "doi": "10.1000/awm.2022.1", "pdfUrl": "/uploads/awm.pdf",
	}, env.token), http.StatusOK, &created)
	assert.Equal(t, "论著创建成功", body.Message)
	assert.Equal(t, "/uploads/awm.pdf", created.Publication.PDFURL)
	assert.Equal(t, "admin", created.Publication.Author.Username)

	decode(t, env.do(http.MethodPost, "/api/publications", map[string]interface{}{
		"title": "Apple root hydraulics", "authors": "Wang L", "journal": "Tree Physiology", "year": 2024,
	}, env.token), http.StatusOK, nil)

	var list struct {
		Publications []models.Publication `json:"publications"`
	}
	decode(t, env.do(http.MethodGet, "/api/publications", nil, ""), http.StatusOK, &list)
	require.Len(t, list.Publications, 2)
	assert.Equal(t, 2024, list.Publications[0].Year)

	var byYear struct {
		Publications []models.Publication `json:"publications"`
	}
	decode(t, env.do(http.MethodGet, "/api/publications?year=2022", nil, ""), http.StatusOK, &byYear)
	require.Len(t, byYear.Publications, 1)
	assert.Equal(t, "Water use efficiency of jujube", byYear.Publications[0].Title)

	var searched struct {
		Publications []models.Publication `json:"publications"`
	}
	decode(t, env.do(http.MethodGet, "/api/publications?search=tree", nil, ""), http.StatusOK, &searched)
	require.Len(t, searched.Publications, 1)
	assert.Equal(t, 2024, searched.Publications[0].Year)

	decode(t, env.do(http.MethodGet, "/api/publications?year=abc", nil, ""), http.StatusBadRequest, nil)
}

func TestCreatePublication_RequiresFields(t *testing.T) {
	env := newTestEnv(t)

	for _, req := range []map[string]interface{}{
		{"title": "t", "authors": "a", "journal": "j"},
		{"title": "t", "authors": "a", "year": 2020},
		{"authors": "a", "journal": "j", "year": 2020},
	} {
		body := decode(t, env.do(http.MethodPost, "/api/publications", req, env.token), http.StatusBadRequest, nil)
		assert.Equal(t, "标题、作者、期刊和年份不能为空", body.Message)
	}
}
