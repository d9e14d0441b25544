package model

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Video represents a video entity in the domain.
type Video struct {
	ID           uuid.UUID
	OwnerID      uuid.UUID
	Title        string
	Description  string
	VideoURL     string
	ThumbnailURL string
	IsPublished  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// OwnerSummary is the public projection of a user attached to a video.
type OwnerSummary struct {
	ID       uuid.UUID
	Username string
	Avatar   string
}

// VideoWithOwner is a video enriched with its owner's summary.
// Owner is never nil; if the user record is missing only ID is set.
type VideoWithOwner struct {
	*Video
	Owner OwnerSummary
}

var (
	ErrEmptyTitle         = errors.New("title cannot be empty")
	ErrEmptyDescription   = errors.New("description cannot be empty")
	ErrInvalidOwnerID     = errors.New("owner ID cannot be nil")
	ErrTitleTooLong       = errors.New("title exceeds maximum length of 255 characters")
	ErrMissingVideoURL    = errors.New("video asset reference is required")
	ErrMissingThumbnail   = errors.New("thumbnail asset reference is required")
	ErrInvalidIdentityRef = errors.New("invalid identity reference")
)

const maxTitleLength = 255

// NewVideo creates a published Video owned by ownerID.
// Both asset references must already point at uploaded content.
func NewVideo(ownerID uuid.UUID, title, description, videoURL, thumbnailURL string) (*Video, error) {
	if ownerID == uuid.Nil {
		return nil, ErrInvalidOwnerID
	}
	if err := ValidateDetails(title, description); err != nil {
		return nil, err
	}
	if videoURL == "" {
		return nil, ErrMissingVideoURL
	}
	if thumbnailURL == "" {
		return nil, ErrMissingThumbnail
	}

	now := time.Now()
	return &Video{
		ID:           uuid.New(),
		OwnerID:      ownerID,
		Title:        title,
		Description:  description,
		VideoURL:     videoURL,
		ThumbnailURL: thumbnailURL,
		IsPublished:  true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ValidateDetails checks the owner-editable text fields.
func ValidateDetails(title, description string) error {
	if strings.TrimSpace(title) == "" {
		return ErrEmptyTitle
	}
	if len(title) > maxTitleLength {
		return ErrTitleTooLong
	}
	if strings.TrimSpace(description) == "" {
		return ErrEmptyDescription
	}
	return nil
}

// ParseID parses an identity reference. Video and user ids share the format.
func ParseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, ErrInvalidIdentityRef
	}
	return id, nil
}

// IsOwnedBy reports whether userID owns the video.
func (v *Video) IsOwnedBy(userID uuid.UUID) bool {
	return v.OwnerID == userID
}

// UpdateDetails sets title and/or description.
// Blank values mean "not provided" and leave the field unchanged.
func (v *Video) UpdateDetails(title, description string) error {
	if strings.TrimSpace(title) != "" {
		if len(title) > maxTitleLength {
			return ErrTitleTooLong
		}
		v.Title = title
	}
	if strings.TrimSpace(description) != "" {
		v.Description = description
	}
	v.UpdatedAt = time.Now()
	return nil
}

// SetThumbnailURL replaces the thumbnail reference after a successful upload.
func (v *Video) SetThumbnailURL(url string) {
	v.ThumbnailURL = url
	v.UpdatedAt = time.Now()
}

// TogglePublished flips the publication flag.
func (v *Video) TogglePublished() {
	v.IsPublished = !v.IsPublished
	v.UpdatedAt = time.Now()
}
