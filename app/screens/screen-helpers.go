package screens

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sharpsmith/sharpmerge-cli/app"
	"github.com/sharpsmith/sharpmerge-cli/app/merge"
	"github.com/sharpsmith/sharpmerge-cli/app/scaffold"
)

// baseContainer wraps the provided content in padding so every screen sits in
// the same frame.
func baseContainer(content string) string {
	containerStyle := lipgloss.NewStyle().
		Padding(1, 2).
		Margin(1)
	return containerStyle.Render(content)
}

// AdvanceToNextSession moves the run forward from the current pair: ignored
// pairs are skipped, new files are copied straight into the target tree, and
// the first merge candidate with pending work becomes the active Session on
// the review screen. When no pairs remain the run finishes on the summary
// screen.
func AdvanceToNextSession(m app.Model) app.Model {
	for m.PairIndex < len(m.Pairs) {
		pair := m.Pairs[m.PairIndex]

		switch pair.Class {
		case scaffold.FileIgnored:
			m.PairIndex++

		case scaffold.FileNew:
			if err := scaffold.CopyNew(pair); err != nil {
				m.Results = append(m.Results, merge.FileResult{
					GeneratedPath: pair.GeneratedPath,
					ExistingPath:  pair.TargetPath,
					Status:        merge.StatusError,
					Message:       err.Error(),
				})
			} else {
				m.CopiedFiles = append(m.CopiedFiles, pair.TargetPath)
			}
			m.PairIndex++

		case scaffold.FileMergeCandidate:
			session, err := merge.OpenSession(pair.GeneratedPath, pair.TargetPath)
			if err != nil {
				m.Results = append(m.Results, merge.FileResult{
					GeneratedPath: pair.GeneratedPath,
					ExistingPath:  pair.TargetPath,
					Status:        merge.StatusError,
					Message:       err.Error(),
				})
				m.PairIndex++
				continue
			}
			if session.Done() {
				result := session.Commit()
				if !session.Analysis().HasPendingWork() {
					result.Message = "already up to date"
				}
				m.Results = append(m.Results, result)
				m.PairIndex++
				continue
			}
			m.Session = session
			m.ReviewIndex = 0
			m.StatusMessage = ""
			m.CurrentScreen = app.ScreenReview
			return m
		}
	}

	m.Session = nil
	m.CurrentScreen = app.ScreenSummary
	return m
}

// finishSession commits the active session, records the result, and moves on
// to the next pair.
func finishSession(m app.Model) app.Model {
	if m.Session != nil {
		m.Results = append(m.Results, m.Session.Commit())
		m.Session = nil
	}
	m.PairIndex++
	return AdvanceToNextSession(m)
}

// applyDecision applies one decision to the active session, keeping the
// backup snapshot ahead of the first mutation. Failures surface on the
// status line rather than aborting the run.
func applyDecision(m app.Model, d merge.Decision) app.Model {
	if m.Session == nil {
		return m
	}
	if d == merge.DecisionAccept || d == merge.DecisionReplace {
		if err := m.Session.EnsureBackup(); err != nil {
			m.StatusMessage = fmt.Sprintf("backup failed, decision not applied: %v", err)
			return m
		}
	}
	if err := m.Session.Apply(d); err != nil {
		m.StatusMessage = err.Error()
		return m
	}
	m.StatusMessage = ""
	m.ReviewIndex = 0
	if m.Session.Done() {
		return finishSession(m)
	}
	return m
}

// itemBody returns the incoming member's source for display.
func itemBody(item merge.Item) string {
	if item.Kind == merge.KindNewProperty || item.Kind == merge.KindPropertyConflict {
		return item.Property.FullText
	}
	return item.Method.FullText
}

// indentLines prefixes every line for block display inside a screen.
func indentLines(text, prefix string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

// truncateLines caps a code block at max lines for inline preview.
func truncateLines(text string, max int) string {
	lines := strings.Split(text, "\n")
	if len(lines) <= max {
		return text
	}
	return strings.Join(lines[:max], "\n") + "\n…"
}
