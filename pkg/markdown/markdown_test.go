package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToHTMLRendersTables(t *testing.T) {
	html := ToHTML("## [GAP ANALYSIS]\n\n| Misconception | Corrective Strategy |\n|---|---|\n| a | b |\n")

	assert.Contains(t, html, "<h2>")
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "<td>a</td>")
}

func TestToHTMLEscapesRawHTML(t *testing.T) {
	html := ToHTML("hello <script>alert(1)</script>")

	assert.NotContains(t, html, "<script>")
	assert.Empty(t, ToHTML(""))
}
