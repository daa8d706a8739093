package app

import (
	"context"
	"io"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"spacedesk/internal/client"
	"spacedesk/internal/gateway/config"
)

func TestAppServesHealthAndRPC(t *testing.T) {
	cfg := &config.Config{
		Port:      ":0",
		StorePath: filepath.Join(t.TempDir(), "workspaces.json"),
	}
	a, err := New(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	done := make(chan error, 1)
	go func() { done <- a.Serve(ln) }()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		require.NoError(t, a.Shutdown(ctx))
		require.NoError(t, <-done)
	})

	base := "http://" + ln.Addr().String()
	resp, err := http.Get(base + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))

	c := client.New(base, "app")
	st, err := c.AddSpace(context.Background())
	require.NoError(t, err)
	assert.Len(t, st.Spaces, 2)

	ids, err := c.Workspaces(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"app"}, ids)
}

func TestChooseOriginFallsBackToMemory(t *testing.T) {
	stores, err := initStores(context.Background(), &config.Config{}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "in-memory", stores.backend)
	assert.NoError(t, stores.Close())
}

func TestChooseOriginPrefersS3OverDisk(t *testing.T) {
	cfg := &config.Config{
		StorePath: filepath.Join(t.TempDir(), "ws.json"),
		Snapshot: config.SnapshotS3Config{
			Endpoint:  "127.0.0.1:9",
			AccessKey: "ak",
			SecretKey: "sk",
			Bucket:    "spacedesk-snapshots",
		},
	}
	stores, err := initStores(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "s3:spacedesk-snapshots", stores.backend)
}
