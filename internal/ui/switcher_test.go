package ui

import (
	"testing"

	"github.com/atomicstack/tmux-control-attach/internal/orchestrator"
	"github.com/atomicstack/tmux-control-attach/internal/protocol"
)

func windowList() []orchestrator.WindowInfo {
	return []orchestrator.WindowInfo{
		{ID: protocol.WindowID(1), Name: "editor"},
		{ID: protocol.WindowID(2), Name: "logs"},
		{ID: protocol.WindowID(3), Name: "long-runner"},
	}
}

func TestSwitcherEmptyQueryKeepsTabOrder(t *testing.T) {
	s := newSwitcher(windowList())
	if len(s.filtered) != 3 {
		t.Fatalf("filtered %d items, want 3", len(s.filtered))
	}
	for i, want := range []string{"editor", "logs", "long-runner"} {
		if s.filtered[i].Name != want {
			t.Errorf("item %d = %q, want %q", i, s.filtered[i].Name, want)
		}
	}
}

func TestSwitcherFuzzyFilterRanksMatches(t *testing.T) {
	s := newSwitcher(windowList())
	s.input.SetValue("log")
	s.refilter()

	if len(s.filtered) == 0 {
		t.Fatal("no matches for log")
	}
	if s.filtered[0].Name != "logs" {
		t.Errorf("best match = %q, want logs", s.filtered[0].Name)
	}
	for _, item := range s.filtered {
		if item.Name == "editor" {
			t.Error("editor matched query log")
		}
	}
}

func TestSwitcherCursorWrapsAndSelects(t *testing.T) {
	s := newSwitcher(windowList())
	s.move(-1)
	item, ok := s.selected()
	if !ok || item.Name != "long-runner" {
		t.Fatalf("selected %+v after wrap up", item)
	}
	s.move(1)
	s.move(1)
	item, _ = s.selected()
	if item.Name != "logs" {
		t.Fatalf("selected %q, want logs", item.Name)
	}
}

func TestSwitcherRefilterClampsCursor(t *testing.T) {
	s := newSwitcher(windowList())
	s.move(-1) // last item
	s.input.SetValue("logs")
	s.refilter()
	if _, ok := s.selected(); !ok {
		t.Fatal("cursor left dangling after refilter")
	}
}

func TestSwitcherSetItemsRefreshes(t *testing.T) {
	s := newSwitcher(windowList())
	s.setItems(windowList()[:1])
	if len(s.filtered) != 1 || s.filtered[0].Name != "editor" {
		t.Fatalf("filtered = %+v", s.filtered)
	}
}
