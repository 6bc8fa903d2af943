package screens

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sharpsmith/sharpmerge-cli/app"
	"github.com/sharpsmith/sharpmerge-cli/app/merge"
	"github.com/sharpsmith/sharpmerge-cli/app/utils"
)

// UpdateScreenSummary handles input for the end-of-run summary.
func UpdateScreenSummary(m app.Model, msg tea.KeyMsg) (app.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "enter", "esc":
		return m, tea.Quit
	}
	return m, nil
}

// ViewSummaryScreen renders the per-file outcomes as a tree plus totals.
func ViewSummaryScreen(m app.Model) string {
	body := app.TitleStyle.Render("=== Merge complete ===") + "\n\n"

	statusByPath := map[string]string{}
	var paths []string
	for _, path := range m.CopiedFiles {
		paths = append(paths, path)
		statusByPath[path] = "new"
	}
	var merged, skipped, failed int
	var backups []string
	for _, result := range m.Results {
		paths = append(paths, result.ExistingPath)
		statusByPath[result.ExistingPath] = result.Status.String()
		switch result.Status {
		case merge.StatusMerged:
			merged++
		case merge.StatusSkipped:
			skipped++
		case merge.StatusError:
			failed++
		}
		if result.BackupPath != "" {
			backups = append(backups, result.BackupPath)
		}
	}

	if len(paths) == 0 {
		body += app.ChoiceStyle.Render("Nothing to merge: no C# files matched.") + "\n"
	} else {
		tree := utils.BuildFileTree(paths)
		body += utils.RenderFileTree(tree, "", false, true, func(path string) string {
			return statusByPath[path]
		})
	}

	body += "\n" + app.SubtitleStyle.Render(fmt.Sprintf(
		"%d copied, %d merged, %d skipped, %d failed", len(m.CopiedFiles), merged, skipped, failed)) + "\n"

	for _, result := range m.Results {
		if result.Status == merge.StatusError {
			body += app.ConflictStyle.Render(fmt.Sprintf("  %s: %s", result.ExistingPath, result.Message)) + "\n"
		}
	}

	var conflictLines []string
	for _, result := range m.Results {
		for _, conflict := range result.Conflicts {
			conflictLines = append(conflictLines, fmt.Sprintf("  %s: %s", filepath.Base(result.ExistingPath), conflict))
		}
	}
	if len(conflictLines) > 0 {
		body += "\n" + app.ConflictStyle.Render("Conflicts reviewed:") + "\n"
		body += strings.Join(conflictLines, "\n") + "\n"
	}

	if len(backups) > 0 {
		body += "\n" + app.ChoiceStyle.Render("Backups (restore with `sharpmerge rollback`, remove with `sharpmerge clean`):") + "\n"
		body += app.PathStyle.Render("  "+strings.Join(backups, "\n  ")) + "\n"
	}

	body += "\n" + app.HelpStyle.Render("(press q or enter to exit.)")
	return baseContainer(body)
}
