package workspace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"spacedesk/internal/space"
)

const snapshotPrefix = "workspaces/"

type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// S3Store keeps one JSON object per workspace.
type S3Store struct {
	client     *minio.Client
	bucketName string
	region     string
	bucket     initGate
}

func NewS3Store(cfg S3Config) (*S3Store, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("s3 access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}
	return &S3Store{
		client:     client,
		bucketName: bucket,
		region:     region,
	}, nil
}

func (s *S3Store) ensureBucket(ctx context.Context) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("store is nil")
	}
	return s.bucket.Do(ctx, func(ctx context.Context) error {
		exists, err := s.client.BucketExists(ctx, s.bucketName)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
		return s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{Region: s.region})
	})
}

func (s *S3Store) Load(ctx context.Context, workspaceID string) (space.Snapshot, bool, error) {
	if s == nil {
		return space.Snapshot{}, false, fmt.Errorf("store is nil")
	}
	wid, err := RequireWorkspaceID(workspaceID)
	if err != nil {
		return space.Snapshot{}, false, err
	}
	if err := s.ensureBucket(ctx); err != nil {
		return space.Snapshot{}, false, fmt.Errorf("ensure bucket: %w", err)
	}

	obj, err := s.client.GetObject(ctx, s.bucketName, objectKey(wid), minio.GetObjectOptions{})
	if err != nil {
		return space.Snapshot{}, false, err
	}
	defer obj.Close()

	raw, err := io.ReadAll(obj)
	if err != nil {
		if isNotFound(err) {
			return space.Snapshot{}, false, nil
		}
		return space.Snapshot{}, false, err
	}
	var snap space.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return space.Snapshot{}, false, fmt.Errorf("decode snapshot %s: %w", wid, err)
	}
	return snap, true, nil
}

func (s *S3Store) Save(ctx context.Context, workspaceID string, snap space.Snapshot) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	wid, err := RequireWorkspaceID(workspaceID)
	if err != nil {
		return err
	}
	if err := s.ensureBucket(ctx); err != nil {
		return fmt.Errorf("ensure bucket: %w", err)
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	_, err = s.client.PutObject(ctx, s.bucketName, objectKey(wid), bytes.NewReader(raw), int64(len(raw)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	return err
}

func (s *S3Store) List(ctx context.Context) ([]string, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	if err := s.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("ensure bucket: %w", err)
	}
	// stops the lister goroutine when we return early on an error
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ids := make([]string, 0, 16)
	for obj := range s.client.ListObjects(ctx, s.bucketName, minio.ListObjectsOptions{
		Prefix:    snapshotPrefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		if id, ok := workspaceIDFromKey(obj.Key); ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func isNotFound(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NoSuchBucket"
}

func objectKey(workspaceID string) string {
	return snapshotPrefix + strings.TrimSpace(workspaceID) + ".json"
}

func workspaceIDFromKey(key string) (string, bool) {
	if !strings.HasPrefix(key, snapshotPrefix) || !strings.HasSuffix(key, ".json") {
		return "", false
	}
	id := strings.TrimSuffix(strings.TrimPrefix(key, snapshotPrefix), ".json")
	if id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}
