package space

import (
	"bytes"
	"strconv"
)

// Snapshot is the persisted form of a Store.
type Snapshot struct {
	Spaces            []Space `json:"spaces"`
	CurrentSpaceIndex int     `json:"currentSpaceIndex"`
	FocusedWidgetID   string  `json:"focusedWidgetId,omitempty"`
	Version           int64   `json:"version"`
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := s
	if s.Spaces != nil {
		out.Spaces = cloneSpaces(s.Spaces)
	}
	return out
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Spaces:            cloneSpaces(s.spaces),
		CurrentSpaceIndex: s.currentIndex,
		FocusedWidgetID:   s.focusedID,
		Version:           s.version,
	}
}

// FromSnapshot builds a store from snap. A snapshot without spaces yields the
// default state and an index outside the space list points at the last space.
func FromSnapshot(snap Snapshot) *Store {
	s := New()
	s.spaces, s.currentIndex, s.focusedID = normalizeSnapshot(snap)
	s.version = snap.Version
	return s
}

// Restore replaces the state with snap and notifies subscribers. The version
// only moves forward: a stale snapshot still bumps it past the current one.
// A snapshot that is not newer and holds the live state already is a no-op.
func (s *Store) Restore(snap Snapshot) {
	s.mu.Lock()
	spaces, idx, focused := normalizeSnapshot(snap)
	if snap.Version <= s.version && idx == s.currentIndex && focused == s.focusedID && spacesEqual(spaces, s.spaces) {
		s.mu.Unlock()
		return
	}
	s.spaces, s.currentIndex, s.focusedID = spaces, idx, focused
	if snap.Version > s.version {
		s.version = snap.Version - 1
	}
	ch, subs := s.commitLocked(ChangeRestored, "")
	s.mu.Unlock()
	notify(subs, ch)
}

func normalizeSnapshot(snap Snapshot) ([]Space, int, string) {
	if len(snap.Spaces) == 0 {
		return []Space{newSpace(DefaultSpaceID)}, 0, ""
	}
	spaces := cloneSpaces(snap.Spaces)
	for i := range spaces {
		if spaces[i].ID == "" {
			spaces[i].ID = strconv.Itoa(i + 1)
		}
	}
	idx := snap.CurrentSpaceIndex
	if idx < 0 {
		idx = 0
	}
	if idx >= len(spaces) {
		idx = len(spaces) - 1
	}
	return spaces, idx, snap.FocusedWidgetID
}

// spacesEqual treats nil and empty lists alike, since snapshots that went
// through JSON may carry either.
func spacesEqual(a, b []Space) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		x, y := a[i], b[i]
		if x.ID != y.ID || x.Name != y.Name ||
			len(x.Widgets) != len(y.Widgets) || len(x.ChatHistory) != len(y.ChatHistory) {
			return false
		}
		for j := range x.Widgets {
			if !widgetEqual(x.Widgets[j], y.Widgets[j]) {
				return false
			}
		}
		for j := range x.ChatHistory {
			if x.ChatHistory[j] != y.ChatHistory[j] {
				return false
			}
		}
	}
	return true
}

func widgetEqual(a, b Widget) bool {
	return a.ID == b.ID && a.Type == b.Type &&
		a.Position == b.Position && a.Size == b.Size &&
		bytes.Equal(a.Content, b.Content)
}
