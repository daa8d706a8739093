package spacedeskv1

import (
	"encoding/json"
	"fmt"

	"connectrpc.com/connect"
)

const ServiceName = "spacedesk.v1.SpaceService"

const (
	SpaceServiceGetStateProcedure             = "/" + ServiceName + "/GetState"
	SpaceServiceListWorkspacesProcedure       = "/" + ServiceName + "/ListWorkspaces"
	SpaceServiceAddSpaceProcedure             = "/" + ServiceName + "/AddSpace"
	SpaceServiceNavigateToSpaceProcedure      = "/" + ServiceName + "/NavigateToSpace"
	SpaceServiceAddChatMessageProcedure       = "/" + ServiceName + "/AddChatMessage"
	SpaceServiceAddWidgetProcedure            = "/" + ServiceName + "/AddWidget"
	SpaceServiceToggleWidgetFocusProcedure    = "/" + ServiceName + "/ToggleWidgetFocus"
	SpaceServiceUpdateWidgetPositionProcedure = "/" + ServiceName + "/UpdateWidgetPosition"
	SpaceServiceSendChatProcedure             = "/" + ServiceName + "/SendChat"
)

// JSONCodec replaces connect's protojson codec so plain structs can travel as
// application/json.
type JSONCodec struct{}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (JSONCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("decode %T: %w", msg, err)
	}
	return nil
}

// WithJSON is the connect option both handlers and clients must use.
func WithJSON() connect.Option {
	return connect.WithCodec(JSONCodec{})
}
