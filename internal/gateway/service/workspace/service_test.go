package workspace

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cache "spacedesk/internal/cache/workspace"
	"spacedesk/internal/space"
)

type countingStore struct {
	*cache.MemoryStore
	saves   int
	saveErr error
}

func (c *countingStore) Save(ctx context.Context, workspaceID string, snap space.Snapshot) error {
	c.saves++
	if c.saveErr != nil {
		return c.saveErr
	}
	return c.MemoryStore.Save(ctx, workspaceID, snap)
}

type fakeResponder struct {
	reply   string
	err     error
	history []space.ChatMessage
}

func (f *fakeResponder) Reply(_ context.Context, history []space.ChatMessage) (string, error) {
	f.history = history
	return f.reply, f.err
}

func newTestService(opts ...Option) (*Service, *countingStore) {
	store := &countingStore{MemoryStore: cache.NewMemoryStore()}
	return New(store, opts...), store
}

func TestServiceStateStartsWithDefaultSpace(t *testing.T) {
	svc, store := newTestService()
	view, err := svc.State(context.Background(), "ws")
	require.NoError(t, err)

	assert.Equal(t, "ws", view.WorkspaceID)
	require.Len(t, view.Spaces, 1)
	assert.Equal(t, space.DefaultSpaceID, view.CurrentSpace.ID)
	assert.Equal(t, 0, view.CurrentSpaceIndex)
	assert.Empty(t, view.FocusedWidgetID)
	assert.Nil(t, view.FocusedWidget)
	assert.Equal(t, 0, store.saves)
}

func TestServiceRequiresWorkspaceID(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.AddSpace(context.Background(), "  ")
	assert.ErrorContains(t, err, "workspace_id is required")
}

func TestServicePersistsOnlyEffectiveChanges(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	_, err := svc.AddSpace(ctx, "ws")
	require.NoError(t, err)
	assert.Equal(t, 1, store.saves)

	view, err := svc.NavigateToSpace(ctx, "ws", 9)
	require.NoError(t, err)
	assert.Equal(t, 1, view.CurrentSpaceIndex)
	assert.Equal(t, 1, store.saves, "out-of-range navigation must not persist")

	_, err = svc.UpdateWidgetPosition(ctx, "ws", "missing", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, store.saves)

	snap, ok, err := store.Load(ctx, "ws")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, view.Version, snap.Version)
	assert.Len(t, snap.Spaces, 2)
}

func TestServiceEndToEnd(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	view, err := svc.AddSpace(ctx, "ws")
	require.NoError(t, err)
	assert.Equal(t, 1, view.CurrentSpaceIndex)
	assert.Len(t, view.Spaces, 2)

	view, err = svc.AddWidget(ctx, "ws", space.Widget{ID: "w1", Type: "note"})
	require.NoError(t, err)
	assert.Len(t, view.CurrentSpace.Widgets, 1)

	view, err = svc.ToggleWidgetFocus(ctx, "ws", "w1")
	require.NoError(t, err)
	assert.Equal(t, "w1", view.FocusedWidgetID)
	require.NotNil(t, view.FocusedWidget)
	assert.Equal(t, "note", view.FocusedWidget.Type)

	view, err = svc.UpdateWidgetPosition(ctx, "ws", "w1", 30, 40)
	require.NoError(t, err)
	assert.Equal(t, space.Position{X: 30, Y: 40}, view.FocusedWidget.Position)

	view, err = svc.NavigateToSpace(ctx, "ws", 0)
	require.NoError(t, err)
	assert.Empty(t, view.FocusedWidgetID)
	assert.Equal(t, 0, view.CurrentSpaceIndex)
}

func TestServiceRestoresFromRepository(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{MemoryStore: cache.NewMemoryStore()}

	first := New(store)
	_, err := first.AddSpace(ctx, "ws")
	require.NoError(t, err)
	_, err = first.AddChatMessage(ctx, "ws", space.RoleUser, "hello")
	require.NoError(t, err)

	second := New(store)
	view, err := second.State(ctx, "ws")
	require.NoError(t, err)
	assert.Equal(t, 1, view.CurrentSpaceIndex)
	require.Len(t, view.CurrentSpace.ChatHistory, 1)
	assert.Equal(t, "hello", view.CurrentSpace.ChatHistory[0].Content)
	assert.Equal(t, int64(2), view.Version)
}

func TestServicePersistFailureIsReported(t *testing.T) {
	svc, store := newTestService()
	store.saveErr = errors.New("disk full")

	_, err := svc.AddSpace(context.Background(), "ws")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestServiceSendChatWithAssistant(t *testing.T) {
	responder := &fakeResponder{reply: "done"}
	svc, _ := newTestService(WithAssistant(responder))

	view, err := svc.SendChat(context.Background(), "ws", "make a chart")
	require.NoError(t, err)
	require.Len(t, view.CurrentSpace.ChatHistory, 2)
	assert.Equal(t, space.ChatMessage{Role: space.RoleUser, Content: "make a chart"}, view.CurrentSpace.ChatHistory[0])
	assert.Equal(t, space.ChatMessage{Role: space.RoleAssistant, Content: "done"}, view.CurrentSpace.ChatHistory[1])
	require.Len(t, responder.history, 1)
}

func TestServiceSendChatKeepsUserMessageOnAssistantError(t *testing.T) {
	responder := &fakeResponder{err: errors.New("quota")}
	svc, _ := newTestService(WithAssistant(responder))
	ctx := context.Background()

	_, err := svc.SendChat(ctx, "ws", "hi")
	require.Error(t, err)

	view, err := svc.State(ctx, "ws")
	require.NoError(t, err)
	require.Len(t, view.CurrentSpace.ChatHistory, 1)
	assert.Equal(t, space.RoleUser, view.CurrentSpace.ChatHistory[0].Role)
}

func TestServiceSendChatWithoutAssistant(t *testing.T) {
	svc, _ := newTestService()
	view, err := svc.SendChat(context.Background(), "ws", "hi")
	require.NoError(t, err)
	assert.Len(t, view.CurrentSpace.ChatHistory, 1)
}

func TestServiceWatch(t *testing.T) {
	svc, _ := newTestService()
	ctx, cancel := context.WithCancel(context.Background())

	changes, err := svc.Watch(ctx, "ws")
	require.NoError(t, err)

	_, err = svc.AddSpace(context.Background(), "ws")
	require.NoError(t, err)
	_, err = svc.NavigateToSpace(context.Background(), "ws", 42)
	require.NoError(t, err)
	_, err = svc.ToggleWidgetFocus(context.Background(), "ws", "w1")
	require.NoError(t, err)

	got := []space.Change{receive(t, changes), receive(t, changes)}
	assert.Equal(t, space.ChangeSpaceAdded, got[0].Kind)
	assert.Equal(t, space.ChangeWidgetFocusToggled, got[1].Kind)
	assert.Equal(t, "w1", got[1].WidgetID)

	cancel()
	select {
	case _, ok := <-changes:
		assert.False(t, ok, "expected channel to close")
	case <-time.After(time.Second):
		t.Fatal("watch channel not closed after cancel")
	}
}

func TestServiceReload(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{MemoryStore: cache.NewMemoryStore()}
	svc := New(store)
	_, err := svc.State(ctx, "ws")
	require.NoError(t, err)

	other := space.New()
	other.AddSpace()
	other.AddSpace()
	require.NoError(t, store.MemoryStore.Save(ctx, "ws", other.Snapshot()))

	view, err := svc.Reload(ctx, "ws")
	require.NoError(t, err)
	assert.Len(t, view.Spaces, 3)
	assert.Equal(t, 2, view.CurrentSpaceIndex)
	assert.Equal(t, int64(2), view.Version)
}

func TestServiceList(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	_, err := svc.AddSpace(ctx, "b")
	require.NoError(t, err)
	_, err = svc.AddSpace(ctx, "a")
	require.NoError(t, err)

	ids, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
}

func receive(t *testing.T, ch <-chan space.Change) space.Change {
	t.Helper()
	select {
	case c := <-ch:
		return c
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for change")
	}
	return space.Change{}
}

func TestServiceReloadSeesOtherInstanceThroughCache(t *testing.T) {
	ctx := context.Background()
	origin := cache.NewMemoryStore()
	a := New(cache.NewCachedStore(origin, cache.DefaultCacheConfig()))
	b := New(cache.NewCachedStore(origin, cache.DefaultCacheConfig()))

	_, err := a.AddSpace(ctx, "ws")
	require.NoError(t, err)
	_, err = b.AddWidget(ctx, "ws", space.Widget{ID: "fromB", Type: "note"})
	require.NoError(t, err)

	view, err := a.Reload(ctx, "ws")
	require.NoError(t, err)
	require.Len(t, view.CurrentSpace.Widgets, 1)
	assert.Equal(t, "fromB", view.CurrentSpace.Widgets[0].ID)
}

// navigatingResponder moves the workspace to another space while it answers.
type navigatingResponder struct {
	svc   *Service
	index int
}

func (n *navigatingResponder) Reply(ctx context.Context, _ []space.ChatMessage) (string, error) {
	if _, err := n.svc.NavigateToSpace(ctx, "ws", n.index); err != nil {
		return "", err
	}
	return "answer", nil
}

func TestServiceSendChatReplyStaysInAskingSpace(t *testing.T) {
	ctx := context.Background()
	responder := &navigatingResponder{index: 0}
	svc, _ := newTestService(WithAssistant(responder))
	responder.svc = svc

	_, err := svc.AddSpace(ctx, "ws")
	require.NoError(t, err)

	view, err := svc.SendChat(ctx, "ws", "question")
	require.NoError(t, err)
	assert.Equal(t, 0, view.CurrentSpaceIndex)
	assert.Empty(t, view.Spaces[0].ChatHistory)
	assert.Equal(t, []space.ChatMessage{
		{Role: space.RoleUser, Content: "question"},
		{Role: space.RoleAssistant, Content: "answer"},
	}, view.Spaces[1].ChatHistory)
}

type blockingStore struct {
	*cache.MemoryStore
	slowID  string
	started chan struct{}
	release chan struct{}
}

func (b *blockingStore) Load(ctx context.Context, workspaceID string) (space.Snapshot, bool, error) {
	if workspaceID == b.slowID {
		close(b.started)
		<-b.release
	}
	return b.MemoryStore.Load(ctx, workspaceID)
}

func TestServiceSlowLoadDoesNotBlockOtherWorkspaces(t *testing.T) {
	store := &blockingStore{
		MemoryStore: cache.NewMemoryStore(),
		slowID:      "slow",
		started:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	svc := New(store)

	slowDone := make(chan error, 1)
	go func() {
		_, err := svc.State(context.Background(), "slow")
		slowDone <- err
	}()
	<-store.started

	fastDone := make(chan error, 1)
	go func() {
		_, err := svc.AddSpace(context.Background(), "fast")
		fastDone <- err
	}()
	select {
	case err := <-fastDone:
		require.NoError(t, err)
	case <-time.After(time.Second):
		close(store.release)
		t.Fatal("fast workspace blocked behind slow load")
	}

	close(store.release)
	require.NoError(t, <-slowDone)
}
