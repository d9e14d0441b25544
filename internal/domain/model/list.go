package model

import (
	"errors"
	"math"

	"github.com/google/uuid"
)

// SortField is a whitelisted video attribute usable as a listing sort key.
type SortField string

const (
	SortByCreatedAt SortField = "createdAt"
	SortByUpdatedAt SortField = "updatedAt"
	SortByTitle     SortField = "title"
)

func (f SortField) IsValid() bool {
	switch f {
	case SortByCreatedAt, SortByUpdatedAt, SortByTitle:
		return true
	default:
		return false
	}
}

// SortDirection orders listing results.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

func (d SortDirection) IsValid() bool {
	return d == SortAsc || d == SortDesc
}

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

var (
	ErrInvalidPage          = errors.New("page must be a positive integer")
	ErrInvalidLimit         = errors.New("limit must be a positive integer")
	ErrInvalidSortField     = errors.New("unsupported sort field")
	ErrInvalidSortDirection = errors.New("sort direction must be asc or desc")
)

// ListCriteria is the filter, sort and page specification of a listing.
// Published-only filtering is implicit and cannot be disabled.
type ListCriteria struct {
	Page          int
	Limit         int
	Search        string
	SortField     SortField
	SortDirection SortDirection
	// OwnerID restricts results to one owner when non-nil.
	OwnerID *uuid.UUID
}

// Normalize fills defaults for zero values and rejects out-of-range input.
// Limits above MaxLimit are clamped. Pages whose offset would overflow int
// are rejected, so Offset never wraps.
func (c *ListCriteria) Normalize() error {
	switch {
	case c.Page == 0:
		c.Page = DefaultPage
	case c.Page < 0:
		return ErrInvalidPage
	}

	switch {
	case c.Limit == 0:
		c.Limit = DefaultLimit
	case c.Limit < 0:
		return ErrInvalidLimit
	case c.Limit > MaxLimit:
		c.Limit = MaxLimit
	}

	if c.Page > math.MaxInt/c.Limit {
		return ErrInvalidPage
	}

	if c.SortField == "" {
		c.SortField = SortByCreatedAt
	}
	if !c.SortField.IsValid() {
		return ErrInvalidSortField
	}

	if c.SortDirection == "" {
		c.SortDirection = SortDesc
	}
	if !c.SortDirection.IsValid() {
		return ErrInvalidSortDirection
	}

	return nil
}

// Offset returns the number of records to skip.
func (c ListCriteria) Offset() int {
	return (c.Page - 1) * c.Limit
}
