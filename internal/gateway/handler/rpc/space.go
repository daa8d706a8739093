package rpc

import (
	"context"
	"fmt"
	"strings"

	"connectrpc.com/connect"
	"go.uber.org/zap"

	spacedeskv1 "spacedesk/internal/api/spacedeskv1"
	"spacedesk/internal/api/spacedeskv1/spacedeskv1connect"
	gatewayworkspace "spacedesk/internal/gateway/service/workspace"
	"spacedesk/internal/space"
)

var _ spacedeskv1connect.SpaceServiceHandler = (*SpaceHandler)(nil)

type SpaceHandler struct {
	svc    *gatewayworkspace.Service
	logger *zap.Logger
}

func NewSpaceHandler(svc *gatewayworkspace.Service, logger *zap.Logger) *SpaceHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SpaceHandler{svc: svc, logger: logger}
}

func (h *SpaceHandler) GetState(ctx context.Context, req *connect.Request[spacedeskv1.GetStateRequest]) (*connect.Response[spacedeskv1.StateResponse], error) {
	if req.Msg.Reload {
		return h.respond(h.svc.Reload(ctx, req.Msg.WorkspaceId))
	}
	return h.respond(h.svc.State(ctx, req.Msg.WorkspaceId))
}

func (h *SpaceHandler) ListWorkspaces(ctx context.Context, _ *connect.Request[spacedeskv1.ListWorkspacesRequest]) (*connect.Response[spacedeskv1.ListWorkspacesResponse], error) {
	ids, err := h.svc.List(ctx)
	if err != nil {
		return nil, h.toSpaceError(err)
	}
	if ids == nil {
		ids = []string{}
	}
	return connect.NewResponse(&spacedeskv1.ListWorkspacesResponse{WorkspaceIds: ids}), nil
}

func (h *SpaceHandler) AddSpace(ctx context.Context, req *connect.Request[spacedeskv1.AddSpaceRequest]) (*connect.Response[spacedeskv1.StateResponse], error) {
	return h.respond(h.svc.AddSpace(ctx, req.Msg.WorkspaceId))
}

func (h *SpaceHandler) NavigateToSpace(ctx context.Context, req *connect.Request[spacedeskv1.NavigateToSpaceRequest]) (*connect.Response[spacedeskv1.StateResponse], error) {
	return h.respond(h.svc.NavigateToSpace(ctx, req.Msg.WorkspaceId, int(req.Msg.Index)))
}

// AddChatMessage keeps the store's policy for unknown roles: the request
// succeeds and the state is unchanged.
func (h *SpaceHandler) AddChatMessage(ctx context.Context, req *connect.Request[spacedeskv1.AddChatMessageRequest]) (*connect.Response[spacedeskv1.StateResponse], error) {
	role, _ := space.ParseRole(req.Msg.Role)
	return h.respond(h.svc.AddChatMessage(ctx, req.Msg.WorkspaceId, role, req.Msg.Content))
}

func (h *SpaceHandler) AddWidget(ctx context.Context, req *connect.Request[spacedeskv1.AddWidgetRequest]) (*connect.Response[spacedeskv1.StateResponse], error) {
	return h.respond(h.svc.AddWidget(ctx, req.Msg.WorkspaceId, fromProtoWidget(req.Msg.Widget)))
}

func (h *SpaceHandler) ToggleWidgetFocus(ctx context.Context, req *connect.Request[spacedeskv1.ToggleWidgetFocusRequest]) (*connect.Response[spacedeskv1.StateResponse], error) {
	return h.respond(h.svc.ToggleWidgetFocus(ctx, req.Msg.WorkspaceId, req.Msg.WidgetId))
}

func (h *SpaceHandler) UpdateWidgetPosition(ctx context.Context, req *connect.Request[spacedeskv1.UpdateWidgetPositionRequest]) (*connect.Response[spacedeskv1.StateResponse], error) {
	return h.respond(h.svc.UpdateWidgetPosition(ctx, req.Msg.WorkspaceId, req.Msg.WidgetId, req.Msg.X, req.Msg.Y))
}

func (h *SpaceHandler) SendChat(ctx context.Context, req *connect.Request[spacedeskv1.SendChatRequest]) (*connect.Response[spacedeskv1.StateResponse], error) {
	if strings.TrimSpace(req.Msg.Content) == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("content is required"))
	}
	return h.respond(h.svc.SendChat(ctx, req.Msg.WorkspaceId, req.Msg.Content))
}

func (h *SpaceHandler) respond(view gatewayworkspace.View, err error) (*connect.Response[spacedeskv1.StateResponse], error) {
	if err != nil {
		return nil, h.toSpaceError(err)
	}
	return connect.NewResponse(&spacedeskv1.StateResponse{State: toProtoState(view)}), nil
}

func (h *SpaceHandler) toSpaceError(err error) error {
	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	if strings.Contains(msg, "required") || strings.Contains(msg, "unsupported") || strings.Contains(msg, "invalid") {
		return connect.NewError(connect.CodeInvalidArgument, err)
	}
	h.logger.Error("space rpc failed", zap.Error(err))
	return connect.NewError(connect.CodeInternal, fmt.Errorf("space service failed: %w", err))
}
