package scaffold

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestScanPairClassification(t *testing.T) {
	templateRoot := t.TempDir()
	targetRoot := t.TempDir()

	writeTree(t, templateRoot, map[string]string{
		"Services/OrderService.cs":  "generated order",
		"Services/WidgetService.cs": "generated widget",
		"Views/Page.Designer.cs":    "designer generated",
		"obj/Debug/Temp.cs":         "build artifact",
		"README.md":                 "docs",
	})
	writeTree(t, targetRoot, map[string]string{
		"Services/OrderService.cs": "hand edited order",
	})

	walker := NewWalker(nil, nil)
	pairs, err := walker.ScanPair(templateRoot, targetRoot)
	require.NoError(t, err)

	byRel := map[string]Pair{}
	for _, pair := range pairs {
		byRel[pair.RelPath] = pair
	}

	order, ok := byRel["Services/OrderService.cs"]
	require.True(t, ok)
	assert.Equal(t, FileMergeCandidate, order.Class)
	assert.Equal(t, filepath.Join(targetRoot, "Services", "OrderService.cs"), order.TargetPath)

	widget, ok := byRel["Services/WidgetService.cs"]
	require.True(t, ok)
	assert.Equal(t, FileNew, widget.Class)

	readme, ok := byRel["README.md"]
	require.True(t, ok)
	assert.Equal(t, FileIgnored, readme.Class)

	designer, ok := byRel["Views/Page.Designer.cs"]
	require.True(t, ok)
	assert.Equal(t, FileIgnored, designer.Class)

	// Build output never becomes a merge or copy candidate, whether the
	// directory was pruned or its files were matched individually.
	if temp, ok := byRel["obj/Debug/Temp.cs"]; ok {
		assert.Equal(t, FileIgnored, temp.Class)
	}
}

func TestScanPairCustomGlobs(t *testing.T) {
	templateRoot := t.TempDir()
	targetRoot := t.TempDir()

	writeTree(t, templateRoot, map[string]string{
		"Models/User.cs":      "model",
		"Controllers/User.cs": "controller",
	})

	walker := NewWalker([]string{"Models/**"}, []string{})
	pairs, err := walker.ScanPair(templateRoot, targetRoot)
	require.NoError(t, err)

	byRel := map[string]FileClass{}
	for _, pair := range pairs {
		byRel[pair.RelPath] = pair.Class
	}
	assert.Equal(t, FileNew, byRel["Models/User.cs"])
	assert.Equal(t, FileIgnored, byRel["Controllers/User.cs"])
}

func TestScanPairDeterministicOrder(t *testing.T) {
	templateRoot := t.TempDir()
	targetRoot := t.TempDir()

	writeTree(t, templateRoot, map[string]string{
		"B.cs": "b",
		"A.cs": "a",
		"C.cs": "c",
	})

	walker := NewWalker(nil, nil)
	first, err := walker.ScanPair(templateRoot, targetRoot)
	require.NoError(t, err)
	second, err := walker.ScanPair(templateRoot, targetRoot)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	var rels []string
	for _, pair := range first {
		rels = append(rels, pair.RelPath)
	}
	assert.Equal(t, []string{"A.cs", "B.cs", "C.cs"}, rels)
}

func TestCopyNew(t *testing.T) {
	templateRoot := t.TempDir()
	targetRoot := t.TempDir()

	writeTree(t, templateRoot, map[string]string{
		"Deep/Nested/Fresh.cs": "fresh file",
	})

	pair := Pair{
		RelPath:       "Deep/Nested/Fresh.cs",
		GeneratedPath: filepath.Join(templateRoot, "Deep", "Nested", "Fresh.cs"),
		TargetPath:    filepath.Join(targetRoot, "Deep", "Nested", "Fresh.cs"),
		Class:         FileNew,
	}
	require.NoError(t, CopyNew(pair))

	data, err := os.ReadFile(pair.TargetPath)
	require.NoError(t, err)
	assert.Equal(t, "fresh file", string(data))
}

func TestCopyNewMissingSource(t *testing.T) {
	pair := Pair{
		GeneratedPath: filepath.Join(t.TempDir(), "missing.cs"),
		TargetPath:    filepath.Join(t.TempDir(), "out.cs"),
	}
	assert.Error(t, CopyNew(pair))
}
