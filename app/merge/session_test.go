package merge

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharpsmith/sharpmerge-cli/app/csharp"
)

const existingUserService = `namespace Demo
{
    public class UserService
    {
        public string Name { get; set; }

        public string GetAll()
        {
            return "all";
        }

        public string Legacy()
        {
            return "legacy";
        }
    }
}
`

const generatedUserService = `namespace Demo
{
    public class UserService
    {
        public string Name { get; set; }
        public int Count { get; set; }

        public string GetAll(int page)
        {
            return "paged";
        }

        public string Archive(int id)
        {
            return "archived";
        }
    }
}
`

func writeTempPair(t *testing.T, generated, existing string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	genPath := filepath.Join(dir, "generated", "UserService.cs")
	existPath := filepath.Join(dir, "target", "UserService.cs")
	require.NoError(t, os.MkdirAll(filepath.Dir(genPath), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Dir(existPath), 0o755))
	require.NoError(t, os.WriteFile(genPath, []byte(generated), 0o644))
	require.NoError(t, os.WriteFile(existPath, []byte(existing), 0o644))
	return genPath, existPath
}

func TestSessionQueueOrder(t *testing.T) {
	s := NewSession(generatedUserService, existingUserService, "UserService.cs")

	done, total := s.Progress()
	assert.Equal(t, 0, done)
	require.Equal(t, 3, total)

	item, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, KindConflict, item.Kind)
	assert.Equal(t, "GetAll", item.Title())
	assert.Contains(t, item.Existing, `return "all";`)

	require.NoError(t, s.Apply(DecisionSkip))
	item, ok = s.Current()
	require.True(t, ok)
	assert.Equal(t, KindNewMethod, item.Kind)
	assert.Equal(t, "Archive", item.Title())

	require.NoError(t, s.Apply(DecisionSkip))
	item, ok = s.Current()
	require.True(t, ok)
	assert.Equal(t, KindNewProperty, item.Kind)
	assert.Equal(t, "Count", item.Title())

	require.NoError(t, s.Apply(DecisionSkip))
	assert.True(t, s.Done())
	assert.Equal(t, 0, s.AppliedCount())
}

func TestSessionAcceptAndReplace(t *testing.T) {
	s := NewSession(generatedUserService, existingUserService, "UserService.cs")

	require.NoError(t, s.Apply(DecisionReplace)) // GetAll conflict
	require.NoError(t, s.Apply(DecisionAccept))  // Archive
	require.NoError(t, s.Apply(DecisionAccept))  // Count
	require.True(t, s.Done())
	assert.Equal(t, 3, s.AppliedCount())

	merged := csharp.Parse(s.Text())
	getAll, found := merged.MethodByName("GetAll")
	require.True(t, found)
	assert.Equal(t, "int page", getAll.Parameters)

	_, found = merged.MethodByName("Archive")
	assert.True(t, found)

	legacy, found := merged.MethodByName("Legacy")
	require.True(t, found, "hand-written method must survive the merge")
	assert.Contains(t, legacy.FullText, `return "legacy";`)

	_, found = merged.PropertyByName("Count")
	assert.True(t, found)
}

const existingTotals = `public class Invoice
{
    public double Total { get; set; }

    public void Touch()
    {
    }
}
`

const generatedTotals = `public class Invoice
{
    public decimal Total { get; set; }

    public void Touch()
    {
    }
}
`

func TestSessionQueuesPropertyConflict(t *testing.T) {
	s := NewSession(generatedTotals, existingTotals, "Invoice.cs")

	item, ok := s.Current()
	require.True(t, ok, "the conflicting property must await a decision")
	assert.Equal(t, KindPropertyConflict, item.Kind)
	assert.True(t, item.IsConflict())
	assert.Equal(t, "Total", item.Title())
	assert.Contains(t, item.Existing, "double Total")

	_, total := s.Progress()
	assert.Equal(t, 1, total)
}

func TestSessionReplacesConflictingProperty(t *testing.T) {
	s := NewSession(generatedTotals, existingTotals, "Invoice.cs")

	require.NoError(t, s.Apply(DecisionReplace))
	require.True(t, s.Done())
	assert.Equal(t, 1, s.AppliedCount())

	merged := csharp.Parse(s.Text())
	prop, found := merged.PropertyByName("Total")
	require.True(t, found)
	assert.Equal(t, "decimal", prop.Type)
	assert.NotContains(t, s.Text(), "double Total")

	// Only the property line moved.
	_, found = merged.MethodByName("Touch")
	assert.True(t, found)
}

func TestSessionKeepsExistingProperty(t *testing.T) {
	s := NewSession(generatedTotals, existingTotals, "Invoice.cs")

	require.NoError(t, s.Apply(DecisionKeepExisting))
	require.True(t, s.Done())
	assert.Equal(t, 0, s.AppliedCount())
	assert.Equal(t, existingTotals, s.Text())
}

func TestAcceptNewOnlyKeepsPropertyConflicts(t *testing.T) {
	genPath, existPath := writeTempPair(t, generatedTotals, existingTotals)

	result := MergeFile(genPath, existPath, AcceptNewOnly)
	assert.Equal(t, StatusSkipped, result.Status)

	data, err := os.ReadFile(existPath)
	require.NoError(t, err)
	assert.Equal(t, existingTotals, string(data))
	require.Len(t, result.Conflicts, 1)
	assert.Contains(t, result.Conflicts[0], "Total")
}

func TestSessionQuitSkipsRemainder(t *testing.T) {
	s := NewSession(generatedUserService, existingUserService, "UserService.cs")

	require.NoError(t, s.Apply(DecisionQuit))
	assert.True(t, s.Done())
	assert.Equal(t, 0, s.AppliedCount())
	assert.Equal(t, existingUserService, s.Text())
}

func TestSessionInsertionLocality(t *testing.T) {
	existing := `namespace Demo
{
    public class ThingService
    {
        public string GetAll()
        {
            return "all";
        }
    }
}
`
	generated := `namespace Demo
{
    public class ThingService
    {
        public string GetAll()
        {
            return "all";
        }

        public string Archive(int id)
        {
            return "archived";
        }
    }
}
`
	s := NewSession(generated, existing, "ThingService.cs")
	require.NoError(t, s.Apply(DecisionAccept))
	require.True(t, s.Done())

	want := `namespace Demo
{
    public class ThingService
    {
        public string GetAll()
        {
            return "all";
        }

        public string Archive(int id)
        {
            return "archived";
        }
    }
}
`
	assert.Equal(t, want, s.Text())

	// Everything before the insertion point is byte-identical to the input.
	prefix := existing[:strings.Index(existing, "    }")]
	assert.True(t, strings.HasPrefix(s.Text(), prefix))
}

func TestMergeFileAcceptAll(t *testing.T) {
	genPath, existPath := writeTempPair(t, generatedUserService, existingUserService)

	result := MergeFile(genPath, existPath, AcceptAll)
	assert.Equal(t, StatusMerged, result.Status)
	assert.Equal(t, 2, result.Inserted)
	assert.Equal(t, 1, result.Replaced)
	assert.Equal(t, 0, result.Skipped)
	assert.Equal(t, []string{"Legacy"}, result.Preserved)
	require.Len(t, result.Conflicts, 1)

	// Backup holds the pre-merge bytes.
	require.Equal(t, existPath+".backup", result.BackupPath)
	backup, err := os.ReadFile(result.BackupPath)
	require.NoError(t, err)
	assert.Equal(t, existingUserService, string(backup))

	mergedData, err := os.ReadFile(existPath)
	require.NoError(t, err)
	merged := csharp.Parse(string(mergedData))
	_, found := merged.MethodByName("Archive")
	assert.True(t, found)
	_, found = merged.MethodByName("Legacy")
	assert.True(t, found)
}

func TestMergeFileIdempotent(t *testing.T) {
	genPath, existPath := writeTempPair(t, generatedUserService, existingUserService)

	first := MergeFile(genPath, existPath, AcceptAll)
	require.Equal(t, StatusMerged, first.Status)
	afterFirst, err := os.ReadFile(existPath)
	require.NoError(t, err)

	second := MergeFile(genPath, existPath, AcceptAll)
	assert.Equal(t, StatusSkipped, second.Status)
	assert.Equal(t, "already up to date", second.Message)

	afterSecond, err := os.ReadFile(existPath)
	require.NoError(t, err)
	assert.Equal(t, string(afterFirst), string(afterSecond))
}

func TestMergeFileSkipConflictsPolicy(t *testing.T) {
	genPath, existPath := writeTempPair(t, generatedUserService, existingUserService)

	result := MergeFile(genPath, existPath, AcceptNewOnly)
	assert.Equal(t, StatusMerged, result.Status)
	assert.Equal(t, 2, result.Inserted)
	assert.Equal(t, 0, result.Replaced)
	assert.Equal(t, 1, result.Skipped)

	mergedData, err := os.ReadFile(existPath)
	require.NoError(t, err)
	merged := csharp.Parse(string(mergedData))
	getAll, found := merged.MethodByName("GetAll")
	require.True(t, found)
	assert.Equal(t, "", getAll.Parameters, "conflicting method must keep its existing signature")
}

func TestMergeFileNothingAppliedLeavesNoBackup(t *testing.T) {
	genPath, existPath := writeTempPair(t, generatedUserService, existingUserService)

	result := MergeFile(genPath, existPath, func(Item) Decision { return DecisionSkip })
	assert.Equal(t, StatusSkipped, result.Status)
	assert.Equal(t, "", result.BackupPath)

	_, err := os.Stat(existPath + ".backup")
	assert.True(t, os.IsNotExist(err))

	data, err := os.ReadFile(existPath)
	require.NoError(t, err)
	assert.Equal(t, existingUserService, string(data))
}

func TestMergeFileUnreadableGenerated(t *testing.T) {
	_, existPath := writeTempPair(t, generatedUserService, existingUserService)

	result := MergeFile(filepath.Join(t.TempDir(), "missing.cs"), existPath, AcceptAll)
	assert.Equal(t, StatusError, result.Status)
	assert.NotEmpty(t, result.Message)
}
