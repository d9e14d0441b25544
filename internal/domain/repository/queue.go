package repository

import (
	"context"

	"github.com/google/uuid"
)

// Cleanup reasons carried by AssetCleanupTask.
const (
	CleanupReasonPublishFailed     = "publish_failed"
	CleanupReasonUpdateFailed      = "update_failed"
	CleanupReasonThumbnailReplaced = "thumbnail_replaced"
	CleanupReasonVideoDeleted      = "video_deleted"
)

// AssetCleanupTask asks the worker to remove assets no video references anymore.
type AssetCleanupTask struct {
	VideoID    uuid.UUID `json:"video_id"`
	AssetURLs  []string  `json:"asset_urls"`
	Reason     string    `json:"reason"`
	RetryCount int       `json:"retry_count"`
}

// MessageQueue defines the interface for message queue operations.
// Implementations should be provided by the infrastructure layer (e.g., RabbitMQ).
type MessageQueue interface {
	// PublishCleanupTask sends an orphan-asset cleanup task to the queue.
	// Used by the API server after a failed publish or a delete.
	PublishCleanupTask(ctx context.Context, task AssetCleanupTask) error

	// ConsumeCleanupTasks consumes cleanup tasks until ctx is cancelled.
	// The handler function is called for each received task.
	// Used by the worker service.
	ConsumeCleanupTasks(ctx context.Context, handler func(task AssetCleanupTask) error) error

	// Close gracefully closes the connection to the message queue.
	Close() error
}
