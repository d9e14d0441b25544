package model

import (
	"io"
	"path"
	"strings"
)

// AssetKind identifies which slot of a video an asset fills.
type AssetKind string

const (
	AssetKindVideo     AssetKind = "video"
	AssetKindThumbnail AssetKind = "thumbnail"
)

func (k AssetKind) String() string {
	return string(k)
}

// Asset is a binary payload that has not been uploaded yet.
type Asset struct {
	Kind        AssetKind
	FileName    string
	ContentType string
	// Size is -1 when unknown.
	Size int64
	Body io.Reader
}

// IsPresent reports whether the asset carries a payload.
func (a *Asset) IsPresent() bool {
	return a != nil && a.Body != nil
}

// BaseName returns a cleaned file name safe for use in an object key.
func (a *Asset) BaseName() string {
	name := path.Base(strings.ReplaceAll(a.FileName, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return string(a.Kind)
	}
	return name
}
