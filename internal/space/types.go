package space

import (
	"encoding/json"
	"strings"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ParseRole accepts "user" or "assistant" in any case.
func ParseRole(v string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(v))) {
	case RoleUser:
		return RoleUser, true
	case RoleAssistant:
		return RoleAssistant, true
	}
	return "", false
}

func (r Role) valid() bool {
	return r == RoleUser || r == RoleAssistant
}

type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Widget is a positioned, sized UI element. Content is opaque to the store.
type Widget struct {
	ID       string          `json:"id"`
	Type     string          `json:"type"`
	Content  json.RawMessage `json:"content,omitempty"`
	Position Position        `json:"position"`
	Size     Size            `json:"size"`
}

// Space is a workspace container holding widgets and a chat history.
type Space struct {
	ID          string        `json:"id"`
	Name        string        `json:"name,omitempty"`
	Widgets     []Widget      `json:"widgets"`
	ChatHistory []ChatMessage `json:"chatHistory"`
}

func newSpace(id string) Space {
	return Space{
		ID:          id,
		Widgets:     []Widget{},
		ChatHistory: []ChatMessage{},
	}
}

func (w Widget) clone() Widget {
	if w.Content != nil {
		w.Content = append(json.RawMessage(nil), w.Content...)
	}
	return w
}

func (s Space) clone() Space {
	out := Space{
		ID:          s.ID,
		Name:        s.Name,
		Widgets:     make([]Widget, len(s.Widgets)),
		ChatHistory: make([]ChatMessage, len(s.ChatHistory)),
	}
	for i, w := range s.Widgets {
		out.Widgets[i] = w.clone()
	}
	copy(out.ChatHistory, s.ChatHistory)
	return out
}

func cloneSpaces(in []Space) []Space {
	out := make([]Space, len(in))
	for i, s := range in {
		out[i] = s.clone()
	}
	return out
}
