package screens

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sharpsmith/sharpmerge-cli/app"
	"github.com/sharpsmith/sharpmerge-cli/app/merge"
)

// enterDiffScreen builds the viewport content for the current item and
// switches to the diff screen.
func enterDiffScreen(m app.Model) app.Model {
	if m.Session == nil {
		return m
	}
	item, ok := m.Session.Current()
	if !ok {
		return m
	}

	width := m.TerminalWidth
	if width <= 0 {
		width = 80
	}
	height := m.TerminalHeight - 8
	if height < 5 {
		height = 5
	}

	m.DiffViewport = viewport.New(width-6, height)
	m.DiffViewport.SetContent(diffContent(item))
	m.DiffReady = true
	m.StatusMessage = ""
	m.CurrentScreen = app.ScreenDiff
	return m
}

// diffContent renders both sides of a conflict, or just the incoming code
// for a new member.
func diffContent(item merge.Item) string {
	incoming := itemBody(item)
	if !item.IsConflict() {
		return app.AddedStyle.Render("Incoming "+item.Kind.String()) + "\n\n" + incoming
	}

	var b strings.Builder
	b.WriteString(app.ConflictStyle.Render("Existing (will be replaced)") + "\n\n")
	b.WriteString(prefixLines(item.Existing, "- "))
	b.WriteString("\n\n")
	b.WriteString(app.AddedStyle.Render("Incoming (from generated file)") + "\n\n")
	b.WriteString(prefixLines(incoming, "+ "))
	return b.String()
}

func prefixLines(text, prefix string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

// UpdateScreenDiff handles input for the diff viewer.
func UpdateScreenDiff(m app.Model, msg tea.KeyMsg) (app.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc", "backspace", "q":
		m.DiffReady = false
		m.CurrentScreen = app.ScreenReview
		return m, nil

	case "c":
		if m.Session != nil {
			if item, ok := m.Session.Current(); ok {
				if err := clipboard.WriteAll(itemBody(item)); err != nil {
					m.StatusMessage = fmt.Sprintf("clipboard copy failed: %v", err)
				} else {
					m.StatusMessage = "Incoming code copied to clipboard."
				}
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.DiffViewport, cmd = m.DiffViewport.Update(msg)
	return m, cmd
}

// ViewDiffScreen renders the scrollable diff.
func ViewDiffScreen(m app.Model) string {
	if !m.DiffReady || m.Session == nil {
		return baseContainer("Nothing to show.")
	}
	item, _ := m.Session.Current()

	header := app.TitleStyle.Render("=== "+item.Kind.String()+": "+item.Title()+" ===") + "\n"
	header += app.PathStyle.Render(m.Session.ExistingPath) + "\n\n"

	footer := "\n" + app.HelpStyle.Render(fmt.Sprintf(
		"%3.0f%%  (scroll with arrows/pgup/pgdn; c copies incoming; esc returns.)",
		m.DiffViewport.ScrollPercent()*100))
	if m.StatusMessage != "" {
		footer += "\n" + app.SubtitleStyle.Render(m.StatusMessage)
	}

	return baseContainer(header + m.DiffViewport.View() + footer)
}
