package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderFileTreeWithAnnotations(t *testing.T) {
	paths := []string{
		"Services/OrderService.cs",
		"Services/WidgetService.cs",
		"Models/Order.cs",
	}
	tree := BuildFileTree(paths)
	require.NotNil(t, tree)

	out := RenderFileTree(tree, "", false, true, func(path string) string {
		if path == "Services/OrderService.cs" {
			return "merged"
		}
		return ""
	})

	assert.Contains(t, out, "OrderService.cs (merged)")
	assert.Contains(t, out, "WidgetService.cs\n")
	assert.NotContains(t, out, "WidgetService.cs (")

	// Directories come out sorted.
	assert.Less(t, strings.Index(out, "Models"), strings.Index(out, "Services"))
}
