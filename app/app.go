package app

import (
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/sharpsmith/sharpmerge-cli/app/merge"
	"github.com/sharpsmith/sharpmerge-cli/app/scaffold"
)

// Screen indicates which screen is currently shown.
type Screen int

const (
	ScreenReview Screen = iota
	ScreenDiff
	ScreenSummary
)

// Model is the primary application state shared by all screens.
type Model struct {
	CurrentScreen Screen

	// The scanned template/target pairs for this run and the index of the
	// pair currently being merged.
	Pairs     []scaffold.Pair
	PairIndex int

	// Session for the pair currently under review; nil between files.
	Session *merge.Session

	// Results accumulated across the run, shown on the summary screen.
	Results []merge.FileResult

	// Copied new files (FileNew pairs), for the summary tree.
	CopiedFiles []string

	// Selected action index on the review screen.
	ReviewIndex int

	// Viewport for the diff screen; DiffReady guards against rendering
	// before the first WindowSizeMsg arrives.
	DiffViewport viewport.Model
	DiffReady    bool

	// Status line shown under the current screen (clipboard copies,
	// backup failures, and similar one-shot notices).
	StatusMessage string

	TerminalWidth  int
	TerminalHeight int
}

// CurrentPair returns the pair under review, if any.
func (m Model) CurrentPair() (scaffold.Pair, bool) {
	if m.PairIndex < 0 || m.PairIndex >= len(m.Pairs) {
		return scaffold.Pair{}, false
	}
	return m.Pairs[m.PairIndex], true
}

// Shared lipgloss styles.
var (
	TitleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).MarginTop(1)
	SubtitleStyle  = lipgloss.NewStyle().Bold(true)
	HighlightStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFA500"))
	ChoiceStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	ConflictStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF5F5F"))
	AddedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FD75F"))
	DocStyle       = lipgloss.NewStyle().Padding(1, 2).Margin(1, 2)
	HelpStyle      = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#888888"))
	PathStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)
