package rpc

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	spacedeskv1 "spacedesk/internal/api/spacedeskv1"
	"spacedesk/internal/gateway/middleware"
	gatewayworkspace "spacedesk/internal/gateway/service/workspace"
)

const (
	workspaceWSWriteWait = 10 * time.Second
	workspaceWSPongWait  = 60 * time.Second
	workspaceWSPingEvery = (workspaceWSPongWait * 9) / 10
)

type workspaceWSInbound struct {
	Type string `json:"type"`
}

type workspaceWSOutbound struct {
	Type    string              `json:"type"`
	State   *spacedeskv1.State  `json:"state,omitempty"`
	Change  *spacedeskv1.Change `json:"change,omitempty"`
	Code    string              `json:"code,omitempty"`
	Message string              `json:"message,omitempty"`
}

// WorkspaceWatchHandler streams workspace state over a websocket.
// Browser origins are checked against the same policy as CORS.
type WorkspaceWatchHandler struct {
	svc      *gatewayworkspace.Service
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func NewWorkspaceWatchHandler(svc *gatewayworkspace.Service, origins middleware.OriginPolicy, logger *zap.Logger) *WorkspaceWatchHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &WorkspaceWatchHandler{svc: svc, logger: logger}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origins.Allows(origin) {
				return true
			}
			logger.Warn("workspace ws origin rejected", zap.String("origin", origin))
			return false
		},
	}
	return h
}

func (h *WorkspaceWatchHandler) HandleWorkspaceWS(w http.ResponseWriter, r *http.Request) {
	workspaceID := strings.TrimSpace(r.URL.Query().Get("workspace_id"))
	if workspaceID == "" {
		http.Error(w, "workspace_id is required", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(workspaceWSPongWait)); err != nil {
		h.logger.Warn("workspace ws set read deadline failed", zap.Error(err))
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(workspaceWSPongWait))
	})

	changes, err := h.svc.Watch(ctx, workspaceID)
	if err != nil {
		writeWorkspaceWSError(conn, "internal", err.Error())
		return
	}
	view, err := h.svc.State(ctx, workspaceID)
	if err != nil {
		writeWorkspaceWSError(conn, "internal", err.Error())
		return
	}
	state := toProtoState(view)

	writeCh := make(chan workspaceWSOutbound, 32)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(workspaceWSPingEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(workspaceWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(workspaceWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	pushWorkspaceWS(writeCh, workspaceWSOutbound{Type: "state", State: &state})

	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			select {
			case <-ctx.Done():
				return
			case c, ok := <-changes:
				if !ok {
					return
				}
				view, err := h.svc.State(ctx, workspaceID)
				if err != nil {
					continue
				}
				change := toProtoChange(c)
				state := toProtoState(view)
				pushWorkspaceWS(writeCh, workspaceWSOutbound{
					Type:   "change",
					Change: &change,
					State:  &state,
				})
			}
		}
	}()

	for {
		var in workspaceWSInbound
		if err := conn.ReadJSON(&in); err != nil {
			cancel()
			<-writerDone
			<-readerDone
			return
		}
		switch msgType := strings.ToLower(strings.TrimSpace(in.Type)); msgType {
		case "ping":
			pushWorkspaceWS(writeCh, workspaceWSOutbound{Type: "pong"})
		case "":
			pushWorkspaceWS(writeCh, workspaceWSOutbound{
				Type:    "error",
				Code:    "invalid_argument",
				Message: "type is required",
			})
		default:
			pushWorkspaceWS(writeCh, workspaceWSOutbound{
				Type:    "error",
				Code:    "invalid_argument",
				Message: "unsupported type: " + msgType,
			})
		}
	}
}

func pushWorkspaceWS(writeCh chan workspaceWSOutbound, out workspaceWSOutbound) {
	if writeCh == nil {
		return
	}
	select {
	case writeCh <- out:
		return
	default:
	}
	select {
	case <-writeCh:
	default:
	}
	select {
	case writeCh <- out:
	default:
	}
}

func writeWorkspaceWSError(conn *websocket.Conn, code, msg string) {
	_ = conn.SetWriteDeadline(time.Now().Add(workspaceWSWriteWait))
	_ = conn.WriteJSON(workspaceWSOutbound{Type: "error", Code: code, Message: msg})
}
