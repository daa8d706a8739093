// Package space holds the state of a workspace: an ordered list of spaces,
// the index of the current one and the id of the focused widget, if any.
//
// Every mutator is total. Inputs that cannot be applied (an index out of
// range, an unknown widget id, an unknown chat role) leave the state and the
// version untouched and emit no change.
package space

import (
	"strconv"
	"sync"
)

const DefaultSpaceID = "1"

type Store struct {
	mu sync.Mutex

	spaces       []Space
	currentIndex int
	focusedID    string
	version      int64

	nextSubID   int
	subscribers []subscriber
}

// New returns a store holding the single default space.
func New() *Store {
	return &Store{
		spaces: []Space{newSpace(DefaultSpaceID)},
	}
}

// Subscribe registers fn to be called after every effective mutation.
// Callbacks run on the mutating goroutine, after the lock is released, in
// registration order.
func (s *Store) Subscribe(fn func(Change)) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	s.nextSubID++
	id := s.nextSubID
	s.subscribers = append(s.subscribers, subscriber{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.subscribers {
				if sub.id == id {
					s.subscribers = append(s.subscribers[:i:i], s.subscribers[i+1:]...)
					return
				}
			}
		})
	}
}

// AddSpace appends a new empty space and makes it current. Focus is cleared
// as on every change of the current space, so the focused id never refers to
// a widget of another space.
func (s *Store) AddSpace() {
	s.mu.Lock()
	id := strconv.Itoa(len(s.spaces) + 1)
	s.spaces = append(s.spaces, newSpace(id))
	s.currentIndex = len(s.spaces) - 1
	s.focusedID = ""
	ch, subs := s.commitLocked(ChangeSpaceAdded, "")
	s.mu.Unlock()
	notify(subs, ch)
}

func (s *Store) NavigateToSpace(index int) {
	s.mu.Lock()
	if index < 0 || index >= len(s.spaces) {
		s.mu.Unlock()
		return
	}
	s.currentIndex = index
	s.focusedID = ""
	ch, subs := s.commitLocked(ChangeSpaceNavigated, "")
	s.mu.Unlock()
	notify(subs, ch)
}

func (s *Store) AddChatMessage(role Role, content string) {
	if !role.valid() {
		return
	}
	s.mu.Lock()
	ch, subs := s.addChatMessageLocked(s.currentIndex, role, content)
	s.mu.Unlock()
	notify(subs, ch)
}

// AddChatMessageAt appends to the space at index whether or not it is
// current. An index out of range is a no-op like an unknown role.
func (s *Store) AddChatMessageAt(index int, role Role, content string) {
	if !role.valid() {
		return
	}
	s.mu.Lock()
	if index < 0 || index >= len(s.spaces) {
		s.mu.Unlock()
		return
	}
	ch, subs := s.addChatMessageLocked(index, role, content)
	s.mu.Unlock()
	notify(subs, ch)
}

func (s *Store) addChatMessageLocked(index int, role Role, content string) (Change, []subscriber) {
	sp := &s.spaces[index]
	sp.ChatHistory = append(sp.ChatHistory, ChatMessage{Role: role, Content: content})
	ch, subs := s.commitLocked(ChangeChatMessageAdded, "")
	ch.SpaceIndex = index
	return ch, subs
}

// AddWidget appends w to the current space. Ids are not checked for
// uniqueness; lookups resolve to the first widget with a matching id.
func (s *Store) AddWidget(w Widget) {
	s.mu.Lock()
	cur := &s.spaces[s.currentIndex]
	cur.Widgets = append(cur.Widgets, w.clone())
	ch, subs := s.commitLocked(ChangeWidgetAdded, w.ID)
	s.mu.Unlock()
	notify(subs, ch)
}

// ToggleWidgetFocus focuses id, or clears the focus when id is already
// focused. The id is not resolved against the current space.
func (s *Store) ToggleWidgetFocus(id string) {
	s.mu.Lock()
	next := id
	if s.focusedID == id {
		next = ""
	}
	if next == s.focusedID {
		// toggling "" while nothing is focused
		s.mu.Unlock()
		return
	}
	s.focusedID = next
	ch, subs := s.commitLocked(ChangeWidgetFocusToggled, id)
	s.mu.Unlock()
	notify(subs, ch)
}

func (s *Store) UpdateWidgetPosition(id string, x, y float64) {
	s.mu.Lock()
	idx := findWidget(s.spaces[s.currentIndex].Widgets, id)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	s.spaces[s.currentIndex].Widgets[idx].Position = Position{X: x, Y: y}
	ch, subs := s.commitLocked(ChangeWidgetMoved, id)
	s.mu.Unlock()
	notify(subs, ch)
}

func (s *Store) Spaces() []Space {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneSpaces(s.spaces)
}

func (s *Store) CurrentSpaceIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentIndex
}

func (s *Store) CurrentSpace() Space {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spaces[s.currentIndex].clone()
}

func (s *Store) FocusedWidgetID() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.focusedID, s.focusedID != ""
}

// FocusedWidget resolves the focused id against the current space.
func (s *Store) FocusedWidget() (Widget, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.focusedWidgetLocked()
}

func (s *Store) Version() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

func (s *Store) focusedWidgetLocked() (Widget, bool) {
	if s.focusedID == "" {
		return Widget{}, false
	}
	widgets := s.spaces[s.currentIndex].Widgets
	idx := findWidget(widgets, s.focusedID)
	if idx < 0 {
		return Widget{}, false
	}
	return widgets[idx].clone(), true
}

func (s *Store) commitLocked(kind ChangeKind, widgetID string) (Change, []subscriber) {
	s.version++
	ch := Change{
		Kind:       kind,
		Version:    s.version,
		SpaceIndex: s.currentIndex,
		WidgetID:   widgetID,
	}
	return ch, append([]subscriber(nil), s.subscribers...)
}

func notify(subs []subscriber, ch Change) {
	for _, sub := range subs {
		sub.fn(ch)
	}
}

func findWidget(widgets []Widget, id string) int {
	for i := range widgets {
		if widgets[i].ID == id {
			return i
		}
	}
	return -1
}
