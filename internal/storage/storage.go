// Package storage is the object-storage collaborator boundary. The badge
// core only deals in URLs and keys; bucket layout, resizing, and presigning
// belong to whatever implements ObjectStore.
package storage

import (
	"context"
	"strings"
)

// UploadRefScheme prefixes references to not-yet-committed temporary uploads.
const UploadRefScheme = "upload://"

// ObjectStore stores opaque assets. MoveFromTemp is the commit point for a
// temporary upload: after it returns, the asset must outlive the temp-expiry
// window under the permanent key.
type ObjectStore interface {
	// SaveTemp stores content in the temporary area and returns its asset ID.
	SaveTemp(ctx context.Context, content []byte, mimeType string) (string, error)
	// MoveFromTemp moves a temporary asset to the permanent key and returns
	// the permanent URL. The temporary object is deleted.
	MoveFromTemp(ctx context.Context, tempAssetID, permanentKey string) (string, error)
	// UploadContent stores content directly under the permanent key and
	// returns its URL.
	UploadContent(ctx context.Context, key string, content []byte, mimeType string) (string, error)
	// DeleteTemp removes a temporary asset. Missing assets are not an error.
	DeleteTemp(ctx context.Context, tempAssetID string) error
}

// IsUploadRef reports whether value references a temporary upload.
func IsUploadRef(value string) bool {
	return strings.HasPrefix(value, UploadRefScheme)
}

// ParseUploadRef extracts the temp asset ID from an upload:// reference.
func ParseUploadRef(value string) (string, bool) {
	if !IsUploadRef(value) {
		return "", false
	}
	id := strings.TrimPrefix(value, UploadRefScheme)
	if id == "" {
		return "", false
	}
	return id, true
}

// UploadRef builds an upload:// reference for a temp asset ID.
func UploadRef(assetID string) string {
	return UploadRefScheme + assetID
}
