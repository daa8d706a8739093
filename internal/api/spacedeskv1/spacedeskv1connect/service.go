// Package spacedeskv1connect wires spacedesk.v1.SpaceService to connect
// handlers and clients.
package spacedeskv1connect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	spacedeskv1 "spacedesk/internal/api/spacedeskv1"
)

// SpaceServiceHandler is implemented by the gateway.
type SpaceServiceHandler interface {
	GetState(context.Context, *connect.Request[spacedeskv1.GetStateRequest]) (*connect.Response[spacedeskv1.StateResponse], error)
	ListWorkspaces(context.Context, *connect.Request[spacedeskv1.ListWorkspacesRequest]) (*connect.Response[spacedeskv1.ListWorkspacesResponse], error)
	AddSpace(context.Context, *connect.Request[spacedeskv1.AddSpaceRequest]) (*connect.Response[spacedeskv1.StateResponse], error)
	NavigateToSpace(context.Context, *connect.Request[spacedeskv1.NavigateToSpaceRequest]) (*connect.Response[spacedeskv1.StateResponse], error)
	AddChatMessage(context.Context, *connect.Request[spacedeskv1.AddChatMessageRequest]) (*connect.Response[spacedeskv1.StateResponse], error)
	AddWidget(context.Context, *connect.Request[spacedeskv1.AddWidgetRequest]) (*connect.Response[spacedeskv1.StateResponse], error)
	ToggleWidgetFocus(context.Context, *connect.Request[spacedeskv1.ToggleWidgetFocusRequest]) (*connect.Response[spacedeskv1.StateResponse], error)
	UpdateWidgetPosition(context.Context, *connect.Request[spacedeskv1.UpdateWidgetPositionRequest]) (*connect.Response[spacedeskv1.StateResponse], error)
	SendChat(context.Context, *connect.Request[spacedeskv1.SendChatRequest]) (*connect.Response[spacedeskv1.StateResponse], error)
}

// NewSpaceServiceHandler returns the mount path and handler for svc. The JSON
// codec is always installed.
func NewSpaceServiceHandler(svc SpaceServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{spacedeskv1.WithJSON()}, opts...)
	routes := map[string]http.Handler{
		spacedeskv1.SpaceServiceGetStateProcedure:             connect.NewUnaryHandler(spacedeskv1.SpaceServiceGetStateProcedure, svc.GetState, opts...),
		spacedeskv1.SpaceServiceListWorkspacesProcedure:       connect.NewUnaryHandler(spacedeskv1.SpaceServiceListWorkspacesProcedure, svc.ListWorkspaces, opts...),
		spacedeskv1.SpaceServiceAddSpaceProcedure:             connect.NewUnaryHandler(spacedeskv1.SpaceServiceAddSpaceProcedure, svc.AddSpace, opts...),
		spacedeskv1.SpaceServiceNavigateToSpaceProcedure:      connect.NewUnaryHandler(spacedeskv1.SpaceServiceNavigateToSpaceProcedure, svc.NavigateToSpace, opts...),
		spacedeskv1.SpaceServiceAddChatMessageProcedure:       connect.NewUnaryHandler(spacedeskv1.SpaceServiceAddChatMessageProcedure, svc.AddChatMessage, opts...),
		spacedeskv1.SpaceServiceAddWidgetProcedure:            connect.NewUnaryHandler(spacedeskv1.SpaceServiceAddWidgetProcedure, svc.AddWidget, opts...),
		spacedeskv1.SpaceServiceToggleWidgetFocusProcedure:    connect.NewUnaryHandler(spacedeskv1.SpaceServiceToggleWidgetFocusProcedure, svc.ToggleWidgetFocus, opts...),
		spacedeskv1.SpaceServiceUpdateWidgetPositionProcedure: connect.NewUnaryHandler(spacedeskv1.SpaceServiceUpdateWidgetPositionProcedure, svc.UpdateWidgetPosition, opts...),
		spacedeskv1.SpaceServiceSendChatProcedure:             connect.NewUnaryHandler(spacedeskv1.SpaceServiceSendChatProcedure, svc.SendChat, opts...),
	}
	return "/" + spacedeskv1.ServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := routes[r.URL.Path]; ok {
			h.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}

// SpaceServiceClient calls spacedesk.v1.SpaceService over connect.
type SpaceServiceClient struct {
	getState             *connect.Client[spacedeskv1.GetStateRequest, spacedeskv1.StateResponse]
	listWorkspaces       *connect.Client[spacedeskv1.ListWorkspacesRequest, spacedeskv1.ListWorkspacesResponse]
	addSpace             *connect.Client[spacedeskv1.AddSpaceRequest, spacedeskv1.StateResponse]
	navigateToSpace      *connect.Client[spacedeskv1.NavigateToSpaceRequest, spacedeskv1.StateResponse]
	addChatMessage       *connect.Client[spacedeskv1.AddChatMessageRequest, spacedeskv1.StateResponse]
	addWidget            *connect.Client[spacedeskv1.AddWidgetRequest, spacedeskv1.StateResponse]
	toggleWidgetFocus    *connect.Client[spacedeskv1.ToggleWidgetFocusRequest, spacedeskv1.StateResponse]
	updateWidgetPosition *connect.Client[spacedeskv1.UpdateWidgetPositionRequest, spacedeskv1.StateResponse]
	sendChat             *connect.Client[spacedeskv1.SendChatRequest, spacedeskv1.StateResponse]
}

func NewSpaceServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *SpaceServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{spacedeskv1.WithJSON()}, opts...)
	return &SpaceServiceClient{
		getState:             connect.NewClient[spacedeskv1.GetStateRequest, spacedeskv1.StateResponse](httpClient, baseURL+spacedeskv1.SpaceServiceGetStateProcedure, opts...),
		listWorkspaces:       connect.NewClient[spacedeskv1.ListWorkspacesRequest, spacedeskv1.ListWorkspacesResponse](httpClient, baseURL+spacedeskv1.SpaceServiceListWorkspacesProcedure, opts...),
		addSpace:             connect.NewClient[spacedeskv1.AddSpaceRequest, spacedeskv1.StateResponse](httpClient, baseURL+spacedeskv1.SpaceServiceAddSpaceProcedure, opts...),
		navigateToSpace:      connect.NewClient[spacedeskv1.NavigateToSpaceRequest, spacedeskv1.StateResponse](httpClient, baseURL+spacedeskv1.SpaceServiceNavigateToSpaceProcedure, opts...),
		addChatMessage:       connect.NewClient[spacedeskv1.AddChatMessageRequest, spacedeskv1.StateResponse](httpClient, baseURL+spacedeskv1.SpaceServiceAddChatMessageProcedure, opts...),
		addWidget:            connect.NewClient[spacedeskv1.AddWidgetRequest, spacedeskv1.StateResponse](httpClient, baseURL+spacedeskv1.SpaceServiceAddWidgetProcedure, opts...),
		toggleWidgetFocus:    connect.NewClient[spacedeskv1.ToggleWidgetFocusRequest, spacedeskv1.StateResponse](httpClient, baseURL+spacedeskv1.SpaceServiceToggleWidgetFocusProcedure, opts...),
		updateWidgetPosition: connect.NewClient[spacedeskv1.UpdateWidgetPositionRequest, spacedeskv1.StateResponse](httpClient, baseURL+spacedeskv1.SpaceServiceUpdateWidgetPositionProcedure, opts...),
		sendChat:             connect.NewClient[spacedeskv1.SendChatRequest, spacedeskv1.StateResponse](httpClient, baseURL+spacedeskv1.SpaceServiceSendChatProcedure, opts...),
	}
}

func (c *SpaceServiceClient) GetState(ctx context.Context, req *connect.Request[spacedeskv1.GetStateRequest]) (*connect.Response[spacedeskv1.StateResponse], error) {
	return c.getState.CallUnary(ctx, req)
}

func (c *SpaceServiceClient) ListWorkspaces(ctx context.Context, req *connect.Request[spacedeskv1.ListWorkspacesRequest]) (*connect.Response[spacedeskv1.ListWorkspacesResponse], error) {
	return c.listWorkspaces.CallUnary(ctx, req)
}

func (c *SpaceServiceClient) AddSpace(ctx context.Context, req *connect.Request[spacedeskv1.AddSpaceRequest]) (*connect.Response[spacedeskv1.StateResponse], error) {
	return c.addSpace.CallUnary(ctx, req)
}

func (c *SpaceServiceClient) NavigateToSpace(ctx context.Context, req *connect.Request[spacedeskv1.NavigateToSpaceRequest]) (*connect.Response[spacedeskv1.StateResponse], error) {
	return c.navigateToSpace.CallUnary(ctx, req)
}

func (c *SpaceServiceClient) AddChatMessage(ctx context.Context, req *connect.Request[spacedeskv1.AddChatMessageRequest]) (*connect.Response[spacedeskv1.StateResponse], error) {
	return c.addChatMessage.CallUnary(ctx, req)
}

func (c *SpaceServiceClient) AddWidget(ctx context.Context, req *connect.Request[spacedeskv1.AddWidgetRequest]) (*connect.Response[spacedeskv1.StateResponse], error) {
	return c.addWidget.CallUnary(ctx, req)
}

func (c *SpaceServiceClient) ToggleWidgetFocus(ctx context.Context, req *connect.Request[spacedeskv1.ToggleWidgetFocusRequest]) (*connect.Response[spacedeskv1.StateResponse], error) {
	return c.toggleWidgetFocus.CallUnary(ctx, req)
}

func (c *SpaceServiceClient) UpdateWidgetPosition(ctx context.Context, req *connect.Request[spacedeskv1.UpdateWidgetPositionRequest]) (*connect.Response[spacedeskv1.StateResponse], error) {
	return c.updateWidgetPosition.CallUnary(ctx, req)
}

func (c *SpaceServiceClient) SendChat(ctx context.Context, req *connect.Request[spacedeskv1.SendChatRequest]) (*connect.Response[spacedeskv1.StateResponse], error) {
	return c.sendChat.CallUnary(ctx, req)
}
