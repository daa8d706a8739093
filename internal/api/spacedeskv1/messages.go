// Package spacedeskv1 defines the wire messages of spacedesk.v1.SpaceService.
// Messages are plain structs carried by connect with the JSON codec in this
// package.
package spacedeskv1

import "encoding/json"

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type Widget struct {
	Id       string          `json:"id"`
	Type     string          `json:"type"`
	Content  json.RawMessage `json:"content,omitempty"`
	Position Position        `json:"position"`
	Size     Size            `json:"size"`
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Space struct {
	Id          string        `json:"id"`
	Name        string        `json:"name,omitempty"`
	Widgets     []Widget      `json:"widgets"`
	ChatHistory []ChatMessage `json:"chatHistory"`
}

type State struct {
	WorkspaceId       string  `json:"workspaceId"`
	Spaces            []Space `json:"spaces"`
	CurrentSpaceIndex int32   `json:"currentSpaceIndex"`
	CurrentSpace      *Space  `json:"currentSpace,omitempty"`
	FocusedWidgetId   string  `json:"focusedWidgetId,omitempty"`
	FocusedWidget     *Widget `json:"focusedWidget,omitempty"`
	Version           int64   `json:"version"`
}

type Change struct {
	Kind       string `json:"kind"`
	Version    int64  `json:"version"`
	SpaceIndex int32  `json:"spaceIndex"`
	WidgetId   string `json:"widgetId,omitempty"`
}

type GetStateRequest struct {
	WorkspaceId string `json:"workspaceId"`
	// Reload re-reads the persisted snapshot before answering.
	Reload bool `json:"reload,omitempty"`
}

type ListWorkspacesRequest struct{}

type ListWorkspacesResponse struct {
	WorkspaceIds []string `json:"workspaceIds"`
}

type AddSpaceRequest struct {
	WorkspaceId string `json:"workspaceId"`
}

type NavigateToSpaceRequest struct {
	WorkspaceId string `json:"workspaceId"`
	Index       int32  `json:"index"`
}

type AddChatMessageRequest struct {
	WorkspaceId string `json:"workspaceId"`
	Role        string `json:"role"`
	Content     string `json:"content"`
}

type AddWidgetRequest struct {
	WorkspaceId string `json:"workspaceId"`
	Widget      Widget `json:"widget"`
}

type ToggleWidgetFocusRequest struct {
	WorkspaceId string `json:"workspaceId"`
	WidgetId    string `json:"widgetId"`
}

type UpdateWidgetPositionRequest struct {
	WorkspaceId string  `json:"workspaceId"`
	WidgetId    string  `json:"widgetId"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
}

type SendChatRequest struct {
	WorkspaceId string `json:"workspaceId"`
	Content     string `json:"content"`
}

// StateResponse is returned by GetState and every mutating procedure.
type StateResponse struct {
	State State `json:"state"`
}
