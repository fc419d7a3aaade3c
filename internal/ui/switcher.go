package ui

import (
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/atomicstack/tmux-control-attach/internal/orchestrator"
	"github.com/atomicstack/tmux-control-attach/internal/theme"
)

// switcher is the fuzzy window picker overlay.
type switcher struct {
	input    textinput.Model
	items    []orchestrator.WindowInfo
	filtered []orchestrator.WindowInfo
	cursor   int
}

func newSwitcher(items []orchestrator.WindowInfo) *switcher {
	input := textinput.New()
	input.Prompt = "» "
	input.Placeholder = "window name"
	input.Focus()
	s := &switcher{input: input, items: items}
	s.refilter()
	return s
}

// setItems refreshes the candidate list when windows change mid-search.
func (s *switcher) setItems(items []orchestrator.WindowInfo) {
	s.items = items
	s.refilter()
}

func (s *switcher) update(msg tea.Msg) tea.Cmd {
	before := s.input.Value()
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	if s.input.Value() != before {
		s.refilter()
	}
	return cmd
}

// refilter ranks windows by fuzzy match against their names; an empty
// query keeps the natural tab order.
func (s *switcher) refilter() {
	query := s.input.Value()
	if query == "" {
		s.filtered = append([]orchestrator.WindowInfo(nil), s.items...)
	} else {
		names := make([]string, len(s.items))
		for i, item := range s.items {
			names[i] = item.Name
		}
		ranks := fuzzy.RankFindFold(query, names)
		sort.Sort(ranks)
		s.filtered = s.filtered[:0]
		for _, rank := range ranks {
			s.filtered = append(s.filtered, s.items[rank.OriginalIndex])
		}
	}
	if s.cursor >= len(s.filtered) {
		s.cursor = len(s.filtered) - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
}

func (s *switcher) move(delta int) {
	if len(s.filtered) == 0 {
		return
	}
	s.cursor = (s.cursor + delta + len(s.filtered)) % len(s.filtered)
}

func (s *switcher) selected() (orchestrator.WindowInfo, bool) {
	if s.cursor < 0 || s.cursor >= len(s.filtered) {
		return orchestrator.WindowInfo{}, false
	}
	return s.filtered[s.cursor], true
}

func (s *switcher) view(styles *theme.Styles) string {
	var b strings.Builder
	if styles.SwitcherPrompt != nil {
		s.input.PromptStyle = *styles.SwitcherPrompt
	}
	if styles.SwitcherPlaceholder != nil {
		s.input.PlaceholderStyle = *styles.SwitcherPlaceholder
	}
	b.WriteString(s.input.View())
	b.WriteString("\n")
	for i, item := range s.filtered {
		line := item.ID.String() + " " + item.Name
		if i == s.cursor {
			if styles.SwitcherSelected != nil {
				line = styles.SwitcherSelected.Render("> " + line)
			}
		} else if styles.SwitcherItem != nil {
			line = styles.SwitcherItem.Render("  " + line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
