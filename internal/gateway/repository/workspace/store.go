package workspace

import (
	"context"
	"fmt"
	"strings"

	"spacedesk/internal/space"
)

// Store persists workspace snapshots keyed by workspace id.
type Store interface {
	Load(ctx context.Context, workspaceID string) (space.Snapshot, bool, error)
	Save(ctx context.Context, workspaceID string, snap space.Snapshot) error
	List(ctx context.Context) ([]string, error)
}

func NormalizeWorkspaceID(v string) string { return strings.TrimSpace(v) }

// RequireWorkspaceID trims v and rejects empty ids.
func RequireWorkspaceID(v string) (string, error) {
	id := NormalizeWorkspaceID(v)
	if id == "" {
		return "", fmt.Errorf("workspace_id is required")
	}
	return id, nil
}
