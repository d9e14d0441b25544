package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/minio/minio-go/v7"

	"github.com/hszk-dev/vidhub/internal/domain/repository"
)

// mockMinioClient implements minioClient interface for testing.
type mockMinioClient struct {
	bucketExistsFunc func(ctx context.Context, bucketName string) (bool, error)
	putObjectFunc    func(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	removeObjectFunc func(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	statObjectFunc   func(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
}

func (m *mockMinioClient) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	if m.bucketExistsFunc != nil {
		return m.bucketExistsFunc(ctx, bucketName)
	}
	return true, nil
}

func (m *mockMinioClient) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if m.putObjectFunc != nil {
		return m.putObjectFunc(ctx, bucketName, objectName, reader, objectSize, opts)
	}
	return minio.UploadInfo{}, nil
}

func (m *mockMinioClient) RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error {
	if m.removeObjectFunc != nil {
		return m.removeObjectFunc(ctx, bucketName, objectName, opts)
	}
	return nil
}

func (m *mockMinioClient) StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	if m.statObjectFunc != nil {
		return m.statObjectFunc(ctx, bucketName, objectName, opts)
	}
	return minio.ObjectInfo{}, nil
}

func TestNewClientWithMinioClient(t *testing.T) {
	tests := []struct {
		name       string
		bucket     string
		mockClient *mockMinioClient
		wantErr    error
	}{
		{
			name:       "bucket exists",
			bucket:     "assets",
			mockClient: &mockMinioClient{},
		},
		{
			name:   "bucket missing",
			bucket: "assets",
			mockClient: &mockMinioClient{
				bucketExistsFunc: func(ctx context.Context, bucketName string) (bool, error) {
					return false, nil
				},
			},
			wantErr: repository.ErrBucketNotFound,
		},
		{
			name:   "connection error",
			bucket: "assets",
			mockClient: &mockMinioClient{
				bucketExistsFunc: func(ctx context.Context, bucketName string) (bool, error) {
					return false, errors.New("connection refused")
				},
			},
			wantErr: errors.New("failed to check bucket existence"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := newClientWithMinioClient(context.Background(), tt.mockClient, tt.bucket)

			if tt.wantErr != nil {
				if err == nil {
					t.Fatal("newClientWithMinioClient() expected error, got nil")
				}
				if !errors.Is(err, tt.wantErr) && !strings.Contains(err.Error(), tt.wantErr.Error()) {
					t.Errorf("newClientWithMinioClient() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("newClientWithMinioClient() unexpected error = %v", err)
			}
			if client.Bucket() != tt.bucket {
				t.Errorf("Bucket() = %v, want %v", client.Bucket(), tt.bucket)
			}
		})
	}
}

func TestClient_Put(t *testing.T) {
	tests := []struct {
		name        string
		key         string
		content     string
		size        int64
		contentType string
		mockClient  *mockMinioClient
		wantErr     bool
	}{
		{
			name:        "successful upload",
			key:         "videos/123/clip.mp4",
			content:     "video content",
			size:        13,
			contentType: "video/mp4",
			mockClient: &mockMinioClient{
				putObjectFunc: func(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
					if opts.ContentType != "video/mp4" {
						t.Errorf("expected content type video/mp4, got %s", opts.ContentType)
					}
					if objectSize != 13 {
						t.Errorf("objectSize = %d, want 13", objectSize)
					}
					if bucketName != "assets" || objectName != "videos/123/clip.mp4" {
						t.Errorf("unexpected target %s/%s", bucketName, objectName)
					}
					return minio.UploadInfo{Bucket: bucketName, Key: objectName}, nil
				},
			},
		},
		{
			name:        "upload error",
			key:         "videos/123/clip.mp4",
			content:     "video content",
			size:        -1,
			contentType: "video/mp4",
			mockClient: &mockMinioClient{
				putObjectFunc: func(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
					return minio.UploadInfo{}, errors.New("upload failed")
				},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &Client{
				client: tt.mockClient,
				bucket: "assets",
			}

			reader := bytes.NewReader([]byte(tt.content))
			err := client.Put(context.Background(), tt.key, reader, tt.size, tt.contentType)

			if (err != nil) != tt.wantErr {
				t.Errorf("Put() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestClient_Remove(t *testing.T) {
	tests := []struct {
		name        string
		mockClient  *mockMinioClient
		wantErr     error
		wantRemoved bool
	}{
		{
			name:        "successful delete",
			mockClient:  &mockMinioClient{},
			wantRemoved: true,
		},
		{
			name: "missing object",
			mockClient: &mockMinioClient{
				statObjectFunc: func(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
					return minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey"}
				},
			},
			wantErr: repository.ErrObjectNotFound,
		},
		{
			name: "delete error",
			mockClient: &mockMinioClient{
				removeObjectFunc: func(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error {
					return errors.New("delete failed")
				},
			},
			wantErr:     errors.New("failed to delete object"),
			wantRemoved: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			removed := false
			remove := tt.mockClient.removeObjectFunc
			tt.mockClient.removeObjectFunc = func(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error {
				removed = true
				if remove != nil {
					return remove(ctx, bucketName, objectName, opts)
				}
				return nil
			}

			client := &Client{
				client: tt.mockClient,
				bucket: "assets",
			}

			err := client.Remove(context.Background(), "videos/123/clip.mp4")

			if tt.wantErr == nil && err != nil {
				t.Fatalf("Remove() unexpected error = %v", err)
			}
			if tt.wantErr != nil {
				if err == nil {
					t.Fatal("Remove() expected error, got nil")
				}
				if !errors.Is(err, tt.wantErr) && !strings.Contains(err.Error(), tt.wantErr.Error()) {
					t.Errorf("Remove() error = %v, wantErr %v", err, tt.wantErr)
				}
			}
			if removed != tt.wantRemoved {
				t.Errorf("RemoveObject called = %v, want %v", removed, tt.wantRemoved)
			}
		})
	}
}

func TestClient_Exists(t *testing.T) {
	tests := []struct {
		name       string
		mockClient *mockMinioClient
		want       bool
		wantErr    bool
	}{
		{
			name: "object exists",
			mockClient: &mockMinioClient{
				statObjectFunc: func(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
					return minio.ObjectInfo{Key: objectName, Size: 1024}, nil
				},
			},
			want: true,
		},
		{
			name: "object does not exist",
			mockClient: &mockMinioClient{
				statObjectFunc: func(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
					return minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey"}
				},
			},
			want: false,
		},
		{
			name: "stat error",
			mockClient: &mockMinioClient{
				statObjectFunc: func(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
					return minio.ObjectInfo{}, errors.New("connection error")
				},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &Client{
				client: tt.mockClient,
				bucket: "assets",
			}

			got, err := client.Exists(context.Background(), "thumbnails/123/cover.jpg")

			if (err != nil) != tt.wantErr {
				t.Errorf("Exists() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if got != tt.want {
				t.Errorf("Exists() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClient_Ping(t *testing.T) {
	tests := []struct {
		name       string
		mockClient *mockMinioClient
		wantErr    bool
	}{
		{
			name: "successful ping",
			mockClient: &mockMinioClient{
				bucketExistsFunc: func(ctx context.Context, bucketName string) (bool, error) {
					return true, nil
				},
			},
		},
		{
			name: "ping error",
			mockClient: &mockMinioClient{
				bucketExistsFunc: func(ctx context.Context, bucketName string) (bool, error) {
					return false, errors.New("connection refused")
				},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &Client{
				client: tt.mockClient,
				bucket: "assets",
			}

			err := client.Ping(context.Background())

			if (err != nil) != tt.wantErr {
				t.Errorf("Ping() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
