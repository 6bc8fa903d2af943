package csharp

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func splitSourceLines(src string) []string { return strings.Split(src, "\n") }

const widgetServiceSource = `using System;
using System.Threading.Tasks;

namespace Demo.Services
{
    [ApiController]
    public class WidgetService
    {
        public string Name { get; set; }

        [Obsolete]
        public int Count { get; } = 0;

        public required List<string> Tags { get; init; }

        [HttpGet]
        public async Task<string> GetAll(int page, int size)
        {
            if (page > 0)
            {
                return "paged";
            }
            return "all";
        }

        public static void Reset()
        {
            Cache.Clear();
        }

        public int Fast() => 1;
    }
}
`

func TestParseUnitShape(t *testing.T) {
	unit := Parse(widgetServiceSource)

	assert.Equal(t, "Demo.Services", unit.Namespace)
	assert.Equal(t, "WidgetService", unit.TypeName)
	assert.Equal(t, []string{"System", "System.Threading.Tasks"}, unit.Usings)
}

func TestParseProperties(t *testing.T) {
	unit := Parse(widgetServiceSource)
	require.Len(t, unit.Properties, 3)

	name := unit.Properties[0]
	assert.Equal(t, "Name", name.Name)
	assert.Equal(t, "string", name.Type)
	assert.Equal(t, "public", name.Accessibility)
	assert.True(t, name.HasSetter)
	assert.False(t, name.ReadOnly)
	assert.Empty(t, name.Attributes)

	count := unit.Properties[1]
	assert.Equal(t, "Count", count.Name)
	assert.Equal(t, "int", count.Type)
	assert.True(t, count.ReadOnly)
	assert.False(t, count.HasSetter)
	assert.Equal(t, []string{"[Obsolete]"}, count.Attributes)
	assert.Contains(t, count.FullText, "[Obsolete]")

	tags := unit.Properties[2]
	assert.Equal(t, "Tags", tags.Name)
	assert.Equal(t, "List<string>", tags.Type)
	assert.True(t, tags.HasSetter)
}

func TestParseMethods(t *testing.T) {
	unit := Parse(widgetServiceSource)
	require.Len(t, unit.Methods, 2)

	getAll := unit.Methods[0]
	assert.Equal(t, "GetAll", getAll.Name)
	assert.Equal(t, "Task<string>", getAll.ReturnType)
	assert.Equal(t, "int page, int size", getAll.Parameters)
	assert.True(t, getAll.IsAsync)
	assert.False(t, getAll.IsStatic)
	assert.Equal(t, []string{"[HttpGet]"}, getAll.Attributes)
	assert.Contains(t, getAll.FullText, "[HttpGet]")
	assert.Contains(t, getAll.FullText, `return "all";`)
	assert.Equal(t, MemberSignature("Task<string>GetAll(intpage,intsize)"), getAll.Normalized)

	reset := unit.Methods[1]
	assert.Equal(t, "Reset", reset.Name)
	assert.Equal(t, "void", reset.ReturnType)
	assert.True(t, reset.IsStatic)
	assert.False(t, reset.IsAsync)
}

func TestParseMethodLineSpan(t *testing.T) {
	unit := Parse(widgetServiceSource)
	getAll, found := unit.MethodByName("GetAll")
	require.True(t, found)

	lines := splitSourceLines(widgetServiceSource)
	assert.Contains(t, lines[getAll.StartLine-1], "GetAll")
	assert.Contains(t, lines[getAll.FullStartLine()-1], "[HttpGet]")
	assert.Equal(t, "        }", lines[getAll.EndLine-1])
}

func TestParseSkipsExpressionBodiedMembers(t *testing.T) {
	unit := Parse(widgetServiceSource)
	_, found := unit.MethodByName("Fast")
	assert.False(t, found)
}

func TestParseBodyStatementsNotDiscovered(t *testing.T) {
	src := `public class C
{
    public string Outer()
    {
        return
            Inner(x);
    }
}
`
	unit := Parse(src)
	require.Len(t, unit.Methods, 1)
	assert.Equal(t, "Outer", unit.Methods[0].Name)
}

func TestParseDenyListedNames(t *testing.T) {
	src := `public class C
{
    public IActionResult NotFound(string key)
    {
        return null;
    }

    public IActionResult Lookup(string key)
    {
        return null;
    }
}
`
	unit := Parse(src)
	require.Len(t, unit.Methods, 1)
	assert.Equal(t, "Lookup", unit.Methods[0].Name)
}

func TestParseFileScopedNamespace(t *testing.T) {
	src := `namespace Demo.Flat;

public class FlatService
{
    public void Touch()
    {
    }
}
`
	unit := Parse(src)
	assert.Equal(t, "Demo.Flat", unit.Namespace)
	assert.Equal(t, "FlatService", unit.TypeName)
	require.Len(t, unit.Methods, 1)
}

func TestParseMultiLineParameterListNotDiscovered(t *testing.T) {
	src := `public class C
{
    public void Configure(
        string name,
        int value)
    {
    }
}
`
	unit := Parse(src)
	assert.Empty(t, unit.Methods)
}

func TestParseUnbalancedBracesLeaveMemberUndiscovered(t *testing.T) {
	src := `public class C
{
    public void Broken()
    {
        if (x) {
`
	unit := Parse(src)
	assert.Empty(t, unit.Methods)
}

func TestParseNeverFails(t *testing.T) {
	for _, src := range []string{"", "not c# at all", "}}}{{{"} {
		unit := Parse(src)
		require.NotNil(t, unit)
		assert.Equal(t, src, unit.Source)
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "WidgetService.cs")
	require.NoError(t, os.WriteFile(path, []byte(widgetServiceSource), 0o644))

	unit, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, "WidgetService", unit.TypeName)

	_, err = ParseFile(filepath.Join(dir, "missing.cs"))
	assert.Error(t, err)
}

func TestTypeBodySpan(t *testing.T) {
	unit := Parse(widgetServiceSource)
	open, close, ok := unit.TypeBodySpan()
	require.True(t, ok)
	assert.Equal(t, byte('{'), widgetServiceSource[open])
	assert.Equal(t, byte('}'), widgetServiceSource[close])
	assert.Greater(t, close, open)
}
