package sanitize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/baharkarakas/asso-backend/internal/sanitize"
)

func TestText(t *testing.T) {
	assert.Equal(t, "", sanitize.Text(""))
	assert.Equal(t, "Assemblée générale", sanitize.Text("  Assemblée générale "))
	assert.Equal(t, "Bold title", sanitize.Text("<b>Bold</b> title"))
	assert.Equal(t, "Tom & Jerry", sanitize.Text("Tom & Jerry"))
	assert.NotContains(t, sanitize.Text(`<script>alert(1)</script>x`), "<script>")
}

func TestContent(t *testing.T) {
	assert.Equal(t, "<p>Hello</p>", sanitize.Content("<p>Hello</p><script>alert('xss')</script>"))
	assert.Equal(t, "<p><strong>Bold</strong> and <em>italic</em></p>",
		sanitize.Content("<p><strong>Bold</strong> and <em>italic</em></p>"))

	out := sanitize.Content(`<a href="javascript:alert('xss')">Click</a>`)
	assert.NotContains(t, out, "javascript:")

	out = sanitize.Content(`<button onclick="alert('xss')">Click</button>`)
	assert.NotContains(t, out, "onclick")
}
