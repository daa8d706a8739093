package workspace

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	repo "spacedesk/internal/gateway/repository/workspace"
	"spacedesk/internal/gateway/service/assistant"
	"spacedesk/internal/space"
)

const watchBuffer = 32

// View is the read model returned after every operation.
type View struct {
	WorkspaceID       string        `json:"workspaceId"`
	Spaces            []space.Space `json:"spaces"`
	CurrentSpaceIndex int           `json:"currentSpaceIndex"`
	CurrentSpace      space.Space   `json:"currentSpace"`
	FocusedWidgetID   string        `json:"focusedWidgetId,omitempty"`
	FocusedWidget     *space.Widget `json:"focusedWidget,omitempty"`
	Version           int64         `json:"version"`
}

// Service keeps one live space.Store per workspace and persists its snapshot
// after every effective mutation.
type Service struct {
	store     repo.Store
	assistant assistant.Responder
	logger    *zap.Logger

	mu       sync.Mutex
	sessions map[string]*session
	// first loads run outside mu, one per workspace id
	loads singleflight.Group
}

type session struct {
	store *space.Store
	// serializes mutate+persist so snapshots reach the repository in version order
	writeMu sync.Mutex
}

// invalidator is implemented by caching stores; Reload drops the cached
// entry so the read reaches the origin.
type invalidator interface {
	Invalidate(workspaceID string)
}

type Option func(*Service)

func WithAssistant(r assistant.Responder) Option {
	return func(s *Service) { s.assistant = r }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func New(store repo.Store, opts ...Option) *Service {
	s := &Service{
		store:    store,
		logger:   zap.NewNop(),
		sessions: make(map[string]*session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open returns the live store of a workspace, loading its snapshot on first
// access or starting from the default state.
func (s *Service) Open(ctx context.Context, workspaceID string) (*space.Store, error) {
	sess, _, err := s.session(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	return sess.store, nil
}

func (s *Service) session(ctx context.Context, workspaceID string) (*session, string, error) {
	if s == nil || s.store == nil {
		return nil, "", fmt.Errorf("space service is not available")
	}
	wid, err := repo.RequireWorkspaceID(workspaceID)
	if err != nil {
		return nil, "", err
	}
	if sess, ok := s.lookup(wid); ok {
		return sess, wid, nil
	}
	v, err, _ := s.loads.Do(wid, func() (any, error) {
		if sess, ok := s.lookup(wid); ok {
			return sess, nil
		}
		snap, ok, err := s.store.Load(ctx, wid)
		if err != nil {
			return nil, fmt.Errorf("load workspace %s: %w", wid, err)
		}
		st := space.New()
		if ok {
			st = space.FromSnapshot(snap)
			s.logger.Debug("workspace restored", zap.String("workspace_id", wid), zap.Int64("version", st.Version()))
		} else {
			s.logger.Debug("workspace created", zap.String("workspace_id", wid))
		}
		sess := &session{store: st}
		s.mu.Lock()
		s.sessions[wid] = sess
		s.mu.Unlock()
		return sess, nil
	})
	if err != nil {
		return nil, "", err
	}
	return v.(*session), wid, nil
}

func (s *Service) lookup(wid string) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[wid]
	return sess, ok
}

func (s *Service) State(ctx context.Context, workspaceID string) (View, error) {
	sess, wid, err := s.session(ctx, workspaceID)
	if err != nil {
		return View{}, err
	}
	return viewOf(wid, sess.store), nil
}

func (s *Service) List(ctx context.Context) ([]string, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("space service is not available")
	}
	return s.store.List(ctx)
}

func (s *Service) AddSpace(ctx context.Context, workspaceID string) (View, error) {
	return s.mutate(ctx, workspaceID, func(st *space.Store) { st.AddSpace() })
}

func (s *Service) NavigateToSpace(ctx context.Context, workspaceID string, index int) (View, error) {
	return s.mutate(ctx, workspaceID, func(st *space.Store) { st.NavigateToSpace(index) })
}

func (s *Service) AddChatMessage(ctx context.Context, workspaceID string, role space.Role, content string) (View, error) {
	return s.mutate(ctx, workspaceID, func(st *space.Store) { st.AddChatMessage(role, content) })
}

func (s *Service) AddWidget(ctx context.Context, workspaceID string, w space.Widget) (View, error) {
	return s.mutate(ctx, workspaceID, func(st *space.Store) { st.AddWidget(w) })
}

func (s *Service) ToggleWidgetFocus(ctx context.Context, workspaceID, widgetID string) (View, error) {
	return s.mutate(ctx, workspaceID, func(st *space.Store) { st.ToggleWidgetFocus(widgetID) })
}

func (s *Service) UpdateWidgetPosition(ctx context.Context, workspaceID, widgetID string, x, y float64) (View, error) {
	return s.mutate(ctx, workspaceID, func(st *space.Store) { st.UpdateWidgetPosition(widgetID, x, y) })
}

// SendChat records a user message and, when an assistant is configured,
// appends its reply to the same space, even if another client navigated away
// while the model was answering. The user message is kept if the assistant
// fails.
func (s *Service) SendChat(ctx context.Context, workspaceID, content string) (View, error) {
	view, err := s.AddChatMessage(ctx, workspaceID, space.RoleUser, content)
	if err != nil || s.assistant == nil {
		return view, err
	}
	target := view.CurrentSpaceIndex
	reply, err := s.assistant.Reply(ctx, view.CurrentSpace.ChatHistory)
	if err != nil {
		s.logger.Warn("assistant reply failed", zap.String("workspace_id", view.WorkspaceID), zap.Error(err))
		return view, fmt.Errorf("assistant reply: %w", err)
	}
	return s.mutate(ctx, workspaceID, func(st *space.Store) {
		st.AddChatMessageAt(target, space.RoleAssistant, reply)
	})
}

// Reload replaces the live state with the repository snapshot, for instance
// after another gateway instance wrote it.
func (s *Service) Reload(ctx context.Context, workspaceID string) (View, error) {
	sess, wid, err := s.session(ctx, workspaceID)
	if err != nil {
		return View{}, err
	}
	sess.writeMu.Lock()
	defer sess.writeMu.Unlock()
	if c, ok := s.store.(invalidator); ok {
		c.Invalidate(wid)
	}
	snap, ok, err := s.store.Load(ctx, wid)
	if err != nil {
		return View{}, fmt.Errorf("load workspace %s: %w", wid, err)
	}
	if ok {
		sess.store.Restore(snap)
	}
	return viewOf(wid, sess.store), nil
}

// Watch streams the changes of a workspace until ctx is done. When the
// consumer falls behind, the oldest pending change is dropped.
func (s *Service) Watch(ctx context.Context, workspaceID string) (<-chan space.Change, error) {
	sess, wid, err := s.session(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	ch := make(chan space.Change, watchBuffer)
	var mu sync.Mutex
	closed := false
	unsubscribe := sess.store.Subscribe(func(c space.Change) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		pushChange(ch, c)
	})
	go func() {
		<-ctx.Done()
		unsubscribe()
		mu.Lock()
		closed = true
		close(ch)
		mu.Unlock()
		s.logger.Debug("watch closed", zap.String("workspace_id", wid))
	}()
	return ch, nil
}

func (s *Service) mutate(ctx context.Context, workspaceID string, op func(*space.Store)) (View, error) {
	sess, wid, err := s.session(ctx, workspaceID)
	if err != nil {
		return View{}, err
	}
	sess.writeMu.Lock()
	defer sess.writeMu.Unlock()

	before := sess.store.Version()
	op(sess.store)
	view := viewOf(wid, sess.store)
	if view.Version == before {
		return view, nil
	}
	if err := s.store.Save(ctx, wid, sess.store.Snapshot()); err != nil {
		s.logger.Error("persist workspace failed",
			zap.String("workspace_id", wid),
			zap.Int64("version", view.Version),
			zap.Error(err))
		return view, fmt.Errorf("persist workspace %s: %w", wid, err)
	}
	return view, nil
}

func viewOf(workspaceID string, st *space.Store) View {
	snap := st.Snapshot()
	v := View{
		WorkspaceID:       workspaceID,
		Spaces:            snap.Spaces,
		CurrentSpaceIndex: snap.CurrentSpaceIndex,
		CurrentSpace:      snap.Spaces[snap.CurrentSpaceIndex],
		FocusedWidgetID:   snap.FocusedWidgetID,
		Version:           snap.Version,
	}
	if w, ok := findWidget(v.CurrentSpace.Widgets, snap.FocusedWidgetID); ok {
		v.FocusedWidget = &w
	}
	return v
}

func findWidget(widgets []space.Widget, id string) (space.Widget, bool) {
	if id == "" {
		return space.Widget{}, false
	}
	for _, w := range widgets {
		if w.ID == id {
			return w, true
		}
	}
	return space.Widget{}, false
}

func pushChange(ch chan space.Change, c space.Change) {
	select {
	case ch <- c:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- c:
	default:
	}
}
