package server

import (
	"net/http"

	"spacedesk/internal/api/spacedeskv1/spacedeskv1connect"
	"spacedesk/internal/gateway/handler/rpc"
	"spacedesk/internal/gateway/middleware"
)

func NewMux(
	spaceHandler *rpc.SpaceHandler,
	watchHandler *rpc.WorkspaceWatchHandler,
	origins middleware.OriginPolicy,
) http.Handler {
	mux := http.NewServeMux()

	// RPC
	mux.Handle(spacedeskv1connect.NewSpaceServiceHandler(spaceHandler))

	// Streaming
	mux.HandleFunc("/ws/workspace", watchHandler.HandleWorkspaceWS)

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	return middleware.CORS(origins)(mux)
}
