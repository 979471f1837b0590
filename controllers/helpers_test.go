package controllers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		page, size   string
		wantPage     int
		wantPageSize int
	}{
		{"", "", 1, 10},
		{"3", "20", 3, 20},
		{"0", "-5", 1, 10},
		{"x", "500", 1, maxPageSize},
	}
	for _, tt := range tests {
		page, size := parsePagination(tt.page, tt.size, 10)
		assert.Equal(t, tt.wantPage, page)
		assert.Equal(t, tt.wantPageSize, size)
	}
}

func TestLikePattern_EscapesWildcards(t *testing.T) {
	assert.Equal(t, "%abc%", likePattern(" ABC "))
	assert.Equal(t, "%!_!%!!%", likePattern("_%!"))
	assert.Equal(t, "LOWER(a) LIKE ? ESCAPE '!' OR LOWER(b) LIKE ? ESCAPE '!'", likeClause("a", "b"))
}
