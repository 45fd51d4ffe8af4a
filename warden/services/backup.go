package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/wardenbot/warden/internal/clock"
	"github.com/wardenbot/warden/internal/store"
)

const (
	DefaultKeepBackups = 14
	backupTimeLayout   = "20060102T150405Z"
)

// ObjectStore is the part of the S3 client backups use.
type ObjectStore interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type SpacesOptions struct {
	Key      string
	Secret   string
	Region   string
	Bucket   string
	Endpoint string
	Prefix   string
	Keep     int
}

// NewSpacesClient builds an S3 client for DigitalOcean Spaces or any other
// S3 compatible endpoint. Without an endpoint the Spaces URL of the region is
// used.
func NewSpacesClient(ctx context.Context, opts SpacesOptions) (*s3.Client, error) {
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s.digitaloceanspaces.com", opts.Region)
	}

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(opts.Key, opts.Secret, "")),
		config.WithRegion(opts.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load spaces config: %w", err)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	}), nil
}

// BackupService uploads snapshots of the storage backend and prunes old ones.
type BackupService struct {
	client  ObjectStore
	backend store.Backend
	clock   clock.Clock
	bucket  string
	prefix  string
	keep    int
}

func NewBackupService(client ObjectStore, backend store.Backend, c clock.Clock, opts SpacesOptions) *BackupService {
	if c == nil {
		c = clock.Real{}
	}
	keep := opts.Keep
	if keep <= 0 {
		keep = DefaultKeepBackups
	}
	return &BackupService{
		client:  client,
		backend: backend,
		clock:   c,
		bucket:  opts.Bucket,
		prefix:  strings.Trim(opts.Prefix, "/"),
		keep:    keep,
	}
}

func (s *BackupService) keyFor(t time.Time) string {
	return path.Join(s.prefix, "warden-"+t.UTC().Format(backupTimeLayout)+".json")
}

// Run uploads one snapshot and returns its object key.
func (s *BackupService) Run(ctx context.Context) (string, error) {
	snap, err := s.backend.Snapshot(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to snapshot store: %w", err)
	}
	body, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}

	key := s.keyFor(s.clock.Now())
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload backup %s: %w", key, err)
	}

	slog.Info("Backup uploaded",
		slog.String("type", "sys"),
		slog.String("key", key),
		slog.Int("bytes", len(body)),
		slog.Int("guilds", len(snap.Guilds)),
		slog.Int("users", len(snap.Users)),
	)

	if err := s.prune(ctx); err != nil {
		slog.Warn("Failed to prune old backups", slog.String("type", "sys"), slog.Any("error", err))
	}
	return key, nil
}

// Backups lists backup keys, oldest first.
func (s *BackupService) Backups(ctx context.Context) ([]string, error) {
	var (
		keys  []string
		token *string
	)
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(path.Join(s.prefix, "warden-")),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list backups: %w", err)
		}
		for _, obj := range out.Contents {
			if obj.Key != nil {
				keys = append(keys, *obj.Key)
			}
		}
		if out.IsTruncated == nil || !*out.IsTruncated {
			break
		}
		token = out.NextContinuationToken
	}
	// timestamped names sort chronologically
	sort.Strings(keys)
	return keys, nil
}

func (s *BackupService) prune(ctx context.Context) error {
	keys, err := s.Backups(ctx)
	if err != nil {
		return err
	}
	if len(keys) <= s.keep {
		return nil
	}
	for _, key := range keys[:len(keys)-s.keep] {
		if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		}); err != nil {
			return fmt.Errorf("failed to delete backup %s: %w", key, err)
		}
	}
	return nil
}

// Restore replaces the backend's content with the backup at key. An empty
// key selects the newest backup.
func (s *BackupService) Restore(ctx context.Context, key string) (string, error) {
	if key == "" {
		keys, err := s.Backups(ctx)
		if err != nil {
			return "", err
		}
		if len(keys) == 0 {
			return "", fmt.Errorf("no backups under %q", s.prefix)
		}
		key = keys[len(keys)-1]
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("failed to download backup %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read backup %s: %w", key, err)
	}
	var snap store.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return "", fmt.Errorf("failed to decode backup %s: %w", key, err)
	}
	snap.Normalize()
	if err := s.backend.Restore(ctx, snap); err != nil {
		return "", fmt.Errorf("failed to restore backup %s: %w", key, err)
	}
	return key, nil
}
