package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeText_KeepsPlainText(t *testing.T) {
	in := `O'Brien & Smith's lab, "R&D" 5 < 6`
	assert.Equal(t, in, SanitizeText(in))
	assert.Equal(t, in, SanitizeText(SanitizeText(in)))
}

func TestSanitizeText_StripsTags(t *testing.T) {
	assert.Equal(t, "Q&A: bold", SanitizeText(`Q&A: <b>bold</b><script>alert(1)</script>`))
}

func TestSanitize_RemovesScripts(t *testing.T) {
	assert.Equal(t, "<p>ok</p>", Sanitize(`<p>ok</p><script>alert(1)</script>`))
}
