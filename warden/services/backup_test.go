package services

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wardenbot/warden/internal/clock"
	"github.com/wardenbot/warden/internal/domain/models"
	"github.com/wardenbot/warden/internal/store"
)

// memoryBucket is an in-memory ObjectStore.
type memoryBucket struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemoryBucket() *memoryBucket {
	return &memoryBucket{objects: map[string][]byte{}}
}

func (m *memoryBucket) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[*in.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (m *memoryBucket) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (m *memoryBucket) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	for _, k := range keys {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	return out, nil
}

func (m *memoryBucket) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func openFile(t *testing.T) *store.FileBackend {
	t.Helper()
	b, err := store.OpenFile(filepath.Join(t.TempDir(), "data.json"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestBackupRunAndPrune(t *testing.T) {
	ctx := context.Background()
	backend := openFile(t)
	require.NoError(t, backend.SaveGuild(ctx, models.DefaultGuildConfig(1)))

	bucket := newMemoryBucket()
	c := clock.NewManual(time.Date(2024, 3, 1, 4, 0, 0, 0, time.UTC))
	svc := NewBackupService(bucket, backend, c, SpacesOptions{Bucket: "b", Prefix: "/backups/", Keep: 2})

	var keys []string
	for range 3 {
		key, err := svc.Run(ctx)
		require.NoError(t, err)
		keys = append(keys, key)
		c.Advance(24 * time.Hour)
	}

	assert.Equal(t, "backups/warden-20240301T040000Z.json", keys[0])
	listed, err := svc.Backups(ctx)
	require.NoError(t, err)
	assert.Equal(t, keys[1:], listed, "oldest backup pruned, remaining sorted oldest first")
}

func TestBackupRestoreNewest(t *testing.T) {
	ctx := context.Background()
	source := openFile(t)
	require.NoError(t, source.SaveGuild(ctx, models.DefaultGuildConfig(7)))
	require.NoError(t, source.SaveUser(ctx, models.NewUserRecord(models.UserKey{GuildID: 7, UserID: 8})))

	bucket := newMemoryBucket()
	c := clock.NewManual(time.Date(2024, 3, 1, 4, 0, 0, 0, time.UTC))
	key, err := NewBackupService(bucket, source, c, SpacesOptions{Bucket: "b", Prefix: "backups"}).Run(ctx)
	require.NoError(t, err)

	target := openFile(t)
	restored, err := NewBackupService(bucket, target, c, SpacesOptions{Bucket: "b", Prefix: "backups"}).Restore(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, key, restored)

	cfg, err := target.LoadGuild(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultPrefix, cfg.Prefix)
	_, err = target.LoadUser(ctx, models.UserKey{GuildID: 7, UserID: 8})
	assert.NoError(t, err)
}

func TestBackupRestoreWithoutBackups(t *testing.T) {
	svc := NewBackupService(newMemoryBucket(), openFile(t), nil, SpacesOptions{Bucket: "b"})
	_, err := svc.Restore(context.Background(), "")
	assert.Error(t, err)
}
