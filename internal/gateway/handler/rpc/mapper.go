package rpc

import (
	"encoding/json"

	spacedeskv1 "spacedesk/internal/api/spacedeskv1"
	gatewayworkspace "spacedesk/internal/gateway/service/workspace"
	"spacedesk/internal/space"
)

func toProtoState(v gatewayworkspace.View) spacedeskv1.State {
	out := spacedeskv1.State{
		WorkspaceId:       v.WorkspaceID,
		Spaces:            make([]spacedeskv1.Space, len(v.Spaces)),
		CurrentSpaceIndex: int32(v.CurrentSpaceIndex),
		FocusedWidgetId:   v.FocusedWidgetID,
		Version:           v.Version,
	}
	for i, s := range v.Spaces {
		out.Spaces[i] = toProtoSpace(s)
	}
	cur := toProtoSpace(v.CurrentSpace)
	out.CurrentSpace = &cur
	if v.FocusedWidget != nil {
		w := toProtoWidget(*v.FocusedWidget)
		out.FocusedWidget = &w
	}
	return out
}

func toProtoSpace(s space.Space) spacedeskv1.Space {
	out := spacedeskv1.Space{
		Id:          s.ID,
		Name:        s.Name,
		Widgets:     make([]spacedeskv1.Widget, len(s.Widgets)),
		ChatHistory: make([]spacedeskv1.ChatMessage, len(s.ChatHistory)),
	}
	for i, w := range s.Widgets {
		out.Widgets[i] = toProtoWidget(w)
	}
	for i, m := range s.ChatHistory {
		out.ChatHistory[i] = spacedeskv1.ChatMessage{Role: string(m.Role), Content: m.Content}
	}
	return out
}

func toProtoWidget(w space.Widget) spacedeskv1.Widget {
	return spacedeskv1.Widget{
		Id:       w.ID,
		Type:     w.Type,
		Content:  w.Content,
		Position: spacedeskv1.Position{X: w.Position.X, Y: w.Position.Y},
		Size:     spacedeskv1.Size{Width: w.Size.Width, Height: w.Size.Height},
	}
}

func fromProtoWidget(w spacedeskv1.Widget) space.Widget {
	var content json.RawMessage
	if len(w.Content) > 0 {
		content = append(json.RawMessage(nil), w.Content...)
	}
	return space.Widget{
		ID:       w.Id,
		Type:     w.Type,
		Content:  content,
		Position: space.Position{X: w.Position.X, Y: w.Position.Y},
		Size:     space.Size{Width: w.Size.Width, Height: w.Size.Height},
	}
}

func toProtoChange(c space.Change) spacedeskv1.Change {
	return spacedeskv1.Change{
		Kind:       string(c.Kind),
		Version:    c.Version,
		SpaceIndex: int32(c.SpaceIndex),
		WidgetId:   c.WidgetID,
	}
}
