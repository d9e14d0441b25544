// Package storage implements asset storage on S3-compatible object stores.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/hszk-dev/vidhub/internal/domain/model"
	"github.com/hszk-dev/vidhub/internal/domain/repository"
)

// objectBackend is implemented by Client (MinIO) and S3Client.
type objectBackend interface {
	Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

// AssetStore implements repository.AssetStore on top of an object backend.
// References it hands out are public URLs of the form {baseURL}/{key}.
type AssetStore struct {
	backend objectBackend
	baseURL string
}

var _ repository.AssetStore = (*AssetStore)(nil)

// NewAssetStore creates an AssetStore. baseURL is the public prefix under which
// the backend's bucket is served, e.g. http://localhost:9000/vidhub-assets.
func NewAssetStore(backend objectBackend, baseURL string) *AssetStore {
	return &AssetStore{
		backend: backend,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// UploadAsset stores the payload under {kind}s/{uuid}/{basename} and returns its public URL.
func (s *AssetStore) UploadAsset(ctx context.Context, asset *model.Asset) (string, error) {
	key := objectKey(asset)

	contentType := asset.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if err := s.backend.Put(ctx, key, asset.Body, asset.Size, contentType); err != nil {
		return "", err
	}

	return s.baseURL + "/" + key, nil
}

// DeleteAsset removes the object behind a reference previously returned by UploadAsset.
func (s *AssetStore) DeleteAsset(ctx context.Context, ref string) error {
	key, ok := strings.CutPrefix(ref, s.baseURL+"/")
	if !ok || key == "" {
		return fmt.Errorf("reference %q is not served from %s", ref, s.baseURL)
	}
	return s.backend.Remove(ctx, key)
}

// Ping verifies the backend is reachable.
func (s *AssetStore) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

func objectKey(asset *model.Asset) string {
	return asset.Kind.String() + "s/" + uuid.NewString() + "/" + asset.BaseName()
}
