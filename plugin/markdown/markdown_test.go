package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToHTML(t *testing.T) {
	html, err := ToHTML("**weekly** sync")
	require.NoError(t, err)
	assert.Contains(t, html, "<strong>weekly</strong>")
}
