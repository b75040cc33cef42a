package spaces

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/ellavondegurechaff/holopack/holopack"
	"github.com/ellavondegurechaff/holopack/holopack/config"
	"github.com/ellavondegurechaff/holopack/internal/domain/catalog"
)

// ObjectAPI is the slice of the S3 client the snapshot store uses.
type ObjectAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type snapshotFile struct {
	SavedAt time.Time      `json:"savedAt"`
	Cards   []catalog.Card `json:"cards"`
}

// SnapshotStore keeps the catalog snapshot as one JSON object in a Spaces
// (S3-compatible) bucket.
type SnapshotStore struct {
	client ObjectAPI
	bucket string
	key    string
}

// NewSnapshotStore builds an S3 client against DigitalOcean Spaces, or the
// configured endpoint when one is set.
func NewSnapshotStore(ctx context.Context, cfg holopack.SpacesConfig) (*SnapshotStore, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s.digitaloceanspaces.com", cfg.Region)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.Key, cfg.Secret, "")),
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load Spaces config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = cfg.Endpoint != ""
	})

	return NewSnapshotStoreWithClient(client, cfg.Bucket, cfg.SnapshotKey), nil
}

func NewSnapshotStoreWithClient(client ObjectAPI, bucket, key string) *SnapshotStore {
	key = strings.TrimPrefix(key, "/")
	if key == "" {
		key = config.DefaultSnapshotKey
	}
	return &SnapshotStore{client: client, bucket: bucket, key: key}
}

// LoadSnapshot returns no cards and no error when the object does not exist yet.
func (s *SnapshotStore) LoadSnapshot(ctx context.Context) ([]catalog.Card, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get snapshot %s/%s: %w", s.bucket, s.key, err)
	}
	defer out.Body.Close()

	var file snapshotFile
	if err := json.NewDecoder(out.Body).Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}

	slog.Debug("Loaded catalog snapshot",
		slog.String("type", "feed"),
		slog.String("key", s.key),
		slog.Int("cards", len(file.Cards)),
		slog.Time("saved_at", file.SavedAt))
	return file.Cards, nil
}

func (s *SnapshotStore) SaveSnapshot(ctx context.Context, cards []catalog.Card) error {
	body, err := json.Marshal(snapshotFile{SavedAt: time.Now().UTC(), Cards: cards})
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
		ACL:         types.ObjectCannedACLPrivate,
	})
	if err != nil {
		return fmt.Errorf("failed to put snapshot %s/%s: %w", s.bucket, s.key, err)
	}
	return nil
}
