package space

// ChangeKind names the mutation that produced a Change.
type ChangeKind string

const (
	ChangeSpaceAdded         ChangeKind = "space_added"
	ChangeSpaceNavigated     ChangeKind = "space_navigated"
	ChangeChatMessageAdded   ChangeKind = "chat_message_added"
	ChangeWidgetAdded        ChangeKind = "widget_added"
	ChangeWidgetFocusToggled ChangeKind = "widget_focus_toggled"
	ChangeWidgetMoved        ChangeKind = "widget_moved"
	ChangeRestored           ChangeKind = "restored"
)

// Change describes one effective mutation of a Store.
type Change struct {
	Kind       ChangeKind `json:"kind"`
	Version    int64      `json:"version"`
	SpaceIndex int        `json:"spaceIndex"`
	WidgetID   string     `json:"widgetId,omitempty"`
}

type subscriber struct {
	id int
	fn func(Change)
}
