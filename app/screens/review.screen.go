package screens

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sharpsmith/sharpmerge-cli/app"
	"github.com/sharpsmith/sharpmerge-cli/app/merge"
)

// reviewAction is one selectable row on the review screen.
type reviewAction struct {
	label    string
	hotkey   string
	decision merge.Decision
	viewDiff bool // switches to the diff screen instead of deciding
}

// reviewActions returns the action list for the current item kind.
func reviewActions(item merge.Item) []reviewAction {
	if item.IsConflict() {
		return []reviewAction{
			{label: "Replace existing", hotkey: "r", decision: merge.DecisionReplace},
			{label: "Keep existing", hotkey: "k", decision: merge.DecisionKeepExisting},
			{label: "View diff", hotkey: "v", viewDiff: true},
			{label: "Quit this file", hotkey: "q", decision: merge.DecisionQuit},
		}
	}
	return []reviewAction{
		{label: "Accept", hotkey: "a", decision: merge.DecisionAccept},
		{label: "Skip", hotkey: "s", decision: merge.DecisionSkip},
		{label: "View code", hotkey: "v", viewDiff: true},
		{label: "Accept all remaining", hotkey: "A"},
		{label: "Quit this file", hotkey: "q", decision: merge.DecisionQuit},
	}
}

// UpdateScreenReview handles input for the per-member review screen.
func UpdateScreenReview(m app.Model, msg tea.KeyMsg) (app.Model, tea.Cmd) {
	if m.Session == nil {
		return AdvanceToNextSession(m), nil
	}
	item, ok := m.Session.Current()
	if !ok {
		return finishSession(m), nil
	}
	actions := reviewActions(item)

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		// "k" doubles as the keep-existing hotkey on conflicts.
		if item.IsConflict() && msg.String() == "k" {
			return applyDecision(m, merge.DecisionKeepExisting), nil
		}
		if m.ReviewIndex > 0 {
			m.ReviewIndex--
		} else {
			m.ReviewIndex = len(actions) - 1
		}

	case "down", "j":
		m.ReviewIndex = (m.ReviewIndex + 1) % len(actions)

	case "enter":
		return runReviewAction(m, actions[m.ReviewIndex]), nil

	case "A":
		return acceptAllRemaining(m), nil

	default:
		for _, action := range actions {
			if msg.String() == action.hotkey {
				return runReviewAction(m, action), nil
			}
		}
	}
	return m, nil
}

func runReviewAction(m app.Model, action reviewAction) app.Model {
	if action.viewDiff {
		return enterDiffScreen(m)
	}
	if action.label == "Accept all remaining" {
		return acceptAllRemaining(m)
	}
	return applyDecision(m, action.decision)
}

// acceptAllRemaining drains the queue, accepting every new member and
// replacing every conflict.
func acceptAllRemaining(m app.Model) app.Model {
	for m.Session != nil && !m.Session.Done() {
		m = applyDecision(m, merge.DecisionAccept)
		if m.StatusMessage != "" {
			// Decision failed; stop draining so the user sees the error.
			return m
		}
	}
	return m
}

// ViewReviewScreen renders the pending item with its action list.
func ViewReviewScreen(m app.Model) string {
	if m.Session == nil {
		return baseContainer("No file under review.")
	}
	item, ok := m.Session.Current()
	if !ok {
		return baseContainer("No pending items.")
	}

	done, total := m.Session.Progress()
	header := app.TitleStyle.Render("=== Reviewing "+filepath.Base(m.Session.ExistingPath)+" ===") + "\n"
	header += app.PathStyle.Render(m.Session.ExistingPath) + "\n"
	header += app.SubtitleStyle.Render(fmt.Sprintf("Item %d of %d", done+1, total)) + "\n\n"

	var kindLine string
	switch item.Kind {
	case merge.KindConflict:
		kindLine = app.ConflictStyle.Render("CONFLICT") + "  method " + app.HighlightStyle.Render(item.Title())
	case merge.KindPropertyConflict:
		kindLine = app.ConflictStyle.Render("CONFLICT") + "  property " + app.HighlightStyle.Render(item.Title())
	case merge.KindNewProperty:
		kindLine = app.AddedStyle.Render("NEW") + "  property " + app.HighlightStyle.Render(item.Title())
	default:
		kindLine = app.AddedStyle.Render("NEW") + "  method " + app.HighlightStyle.Render(item.Title())
	}
	body := kindLine + "\n\n"

	preview := truncateLines(itemBody(item), 12)
	body += app.ChoiceStyle.Render(indentLines(preview, "    ")) + "\n\n"

	actions := reviewActions(item)
	var rows []string
	for i, action := range actions {
		cursor := "  "
		label := fmt.Sprintf("%s [%s]", action.label, action.hotkey)
		if i == m.ReviewIndex {
			cursor = "> "
			label = app.HighlightStyle.Render(label)
		} else {
			label = app.ChoiceStyle.Render(label)
		}
		rows = append(rows, cursor+label)
	}
	body += strings.Join(rows, "\n") + "\n"

	if m.StatusMessage != "" {
		body += "\n" + app.ConflictStyle.Render(m.StatusMessage) + "\n"
	}
	body += "\n" + app.HelpStyle.Render("(arrow keys or hotkeys; enter confirms; ctrl+c quits.)")

	return baseContainer(header + body)
}
