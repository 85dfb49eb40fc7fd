package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

const tempDir = "tmp"

// LocalStore keeps assets on the local filesystem under a root directory
// and serves them from a base URL. Writes are retried with backoff so a
// swap to a network-backed store keeps the same failure behavior.
type LocalStore struct {
	root    string
	baseURL string
	logger  *slog.Logger
}

func NewLocalStore(root, baseURL string, logger *slog.Logger) (*LocalStore, error) {
	if root == "" {
		return nil, errors.New("storage root is required")
	}
	if err := os.MkdirAll(filepath.Join(root, tempDir), 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &LocalStore{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}, nil
}

func (s *LocalStore) retryPolicy(ctx context.Context) backoff.BackOff {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 50 * time.Millisecond
	policy.MaxElapsedTime = 3 * time.Second
	return backoff.WithContext(backoff.WithMaxRetries(policy, 3), ctx)
}

func (s *LocalStore) SaveTemp(ctx context.Context, content []byte, mimeType string) (string, error) {
	assetID := uuid.New().String()
	path := s.tempPath(assetID)

	err := backoff.Retry(func() error {
		if err := os.WriteFile(path, content, 0o644); err != nil {
			return err
		}
		return os.WriteFile(path+".mime", []byte(mimeType), 0o644)
	}, s.retryPolicy(ctx))
	if err != nil {
		return "", fmt.Errorf("save temp asset: %w", err)
	}

	s.logger.Debug("temp asset saved", "asset_id", assetID, "bytes", len(content))
	return assetID, nil
}

func (s *LocalStore) MoveFromTemp(ctx context.Context, tempAssetID, permanentKey string) (string, error) {
	src := s.tempPath(tempAssetID)
	if _, err := os.Stat(src); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("temp asset %s not found", tempAssetID)
		}
		return "", fmt.Errorf("stat temp asset: %w", err)
	}

	dst := s.permanentPath(permanentKey)
	err := backoff.Retry(func() error {
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		return os.Rename(src, dst)
	}, s.retryPolicy(ctx))
	if err != nil {
		return "", fmt.Errorf("commit temp asset %s: %w", tempAssetID, err)
	}
	os.Remove(src + ".mime")

	s.logger.Debug("temp asset committed", "asset_id", tempAssetID, "key", permanentKey)
	return s.urlFor(permanentKey), nil
}

func (s *LocalStore) UploadContent(ctx context.Context, key string, content []byte, mimeType string) (string, error) {
	dst := s.permanentPath(key)
	err := backoff.Retry(func() error {
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		return os.WriteFile(dst, content, 0o644)
	}, s.retryPolicy(ctx))
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return s.urlFor(key), nil
}

func (s *LocalStore) DeleteTemp(_ context.Context, tempAssetID string) error {
	path := s.tempPath(tempAssetID)
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete temp asset %s: %w", tempAssetID, err)
	}
	os.Remove(path + ".mime")
	return nil
}

// tempPath sanitizes the asset ID so it cannot escape the temp directory.
func (s *LocalStore) tempPath(assetID string) string {
	return filepath.Join(s.root, tempDir, filepath.Base(assetID))
}

func (s *LocalStore) permanentPath(key string) string {
	clean := filepath.Clean("/" + key)
	return filepath.Join(s.root, clean)
}

func (s *LocalStore) urlFor(key string) string {
	return s.baseURL + "/" + strings.TrimLeft(key, "/")
}
