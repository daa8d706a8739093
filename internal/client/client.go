// Package client is the CLI-facing wrapper over the generated-style connect
// client for spacedesk.v1.SpaceService.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"connectrpc.com/connect"

	spacedeskv1 "spacedesk/internal/api/spacedeskv1"
	"spacedesk/internal/api/spacedeskv1/spacedeskv1connect"
)

const (
	DefaultServer      = "http://localhost:8081"
	DefaultWorkspaceID = "default"
)

type Client struct {
	rpc         *spacedeskv1connect.SpaceServiceClient
	workspaceID string
}

type Option func(*options)

type options struct {
	httpClient connect.HTTPClient
	timeout    time.Duration
}

func WithHTTPClient(c connect.HTTPClient) Option {
	return func(o *options) { o.httpClient = c }
}

func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

func New(server, workspaceID string, opts ...Option) *Client {
	o := options{timeout: 30 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: o.timeout}
	}
	server = strings.TrimSpace(server)
	if server == "" {
		server = DefaultServer
	}
	workspaceID = strings.TrimSpace(workspaceID)
	if workspaceID == "" {
		workspaceID = DefaultWorkspaceID
	}
	return &Client{
		rpc:         spacedeskv1connect.NewSpaceServiceClient(o.httpClient, server),
		workspaceID: workspaceID,
	}
}

func (c *Client) WorkspaceID() string { return c.workspaceID }

func (c *Client) State(ctx context.Context, reload bool) (spacedeskv1.State, error) {
	return unwrap(c.rpc.GetState(ctx, connect.NewRequest(&spacedeskv1.GetStateRequest{
		WorkspaceId: c.workspaceID,
		Reload:      reload,
	})))
}

func (c *Client) Workspaces(ctx context.Context) ([]string, error) {
	res, err := c.rpc.ListWorkspaces(ctx, connect.NewRequest(&spacedeskv1.ListWorkspacesRequest{}))
	if err != nil {
		return nil, err
	}
	return res.Msg.WorkspaceIds, nil
}

func (c *Client) AddSpace(ctx context.Context) (spacedeskv1.State, error) {
	return unwrap(c.rpc.AddSpace(ctx, connect.NewRequest(&spacedeskv1.AddSpaceRequest{WorkspaceId: c.workspaceID})))
}

func (c *Client) NavigateToSpace(ctx context.Context, index int) (spacedeskv1.State, error) {
	return unwrap(c.rpc.NavigateToSpace(ctx, connect.NewRequest(&spacedeskv1.NavigateToSpaceRequest{
		WorkspaceId: c.workspaceID,
		Index:       int32(index),
	})))
}

func (c *Client) AddChatMessage(ctx context.Context, role, content string) (spacedeskv1.State, error) {
	return unwrap(c.rpc.AddChatMessage(ctx, connect.NewRequest(&spacedeskv1.AddChatMessageRequest{
		WorkspaceId: c.workspaceID,
		Role:        role,
		Content:     content,
	})))
}

func (c *Client) SendChat(ctx context.Context, content string) (spacedeskv1.State, error) {
	return unwrap(c.rpc.SendChat(ctx, connect.NewRequest(&spacedeskv1.SendChatRequest{
		WorkspaceId: c.workspaceID,
		Content:     content,
	})))
}

// AddWidget sends w as-is; content must already be valid JSON when set.
func (c *Client) AddWidget(ctx context.Context, w spacedeskv1.Widget) (spacedeskv1.State, error) {
	if len(w.Content) > 0 && !json.Valid(w.Content) {
		return spacedeskv1.State{}, fmt.Errorf("widget content is invalid json")
	}
	return unwrap(c.rpc.AddWidget(ctx, connect.NewRequest(&spacedeskv1.AddWidgetRequest{
		WorkspaceId: c.workspaceID,
		Widget:      w,
	})))
}

func (c *Client) ToggleWidgetFocus(ctx context.Context, widgetID string) (spacedeskv1.State, error) {
	return unwrap(c.rpc.ToggleWidgetFocus(ctx, connect.NewRequest(&spacedeskv1.ToggleWidgetFocusRequest{
		WorkspaceId: c.workspaceID,
		WidgetId:    widgetID,
	})))
}

func (c *Client) UpdateWidgetPosition(ctx context.Context, widgetID string, x, y float64) (spacedeskv1.State, error) {
	return unwrap(c.rpc.UpdateWidgetPosition(ctx, connect.NewRequest(&spacedeskv1.UpdateWidgetPositionRequest{
		WorkspaceId: c.workspaceID,
		WidgetId:    widgetID,
		X:           x,
		Y:           y,
	})))
}

func unwrap(res *connect.Response[spacedeskv1.StateResponse], err error) (spacedeskv1.State, error) {
	if err != nil {
		return spacedeskv1.State{}, err
	}
	return res.Msg.State, nil
}
