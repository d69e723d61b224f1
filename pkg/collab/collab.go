// Package collab defines the contracts this subsystem needs from the folder
// and image domains: folder visibility for a user and image metadata lookup.
package collab

import (
	"context"

	"github.com/google/uuid"
)

// FolderRef identifies a folder together with the user whose index holds its
// vectors. For shared folders OwnerId is the sharing user, not the caller.
type FolderRef struct {
	FolderId uuid.UUID
	OwnerId  uuid.UUID
}

// FolderAccessProvider answers authorization questions about folders.
type FolderAccessProvider interface {
	// AccessibleFolders lists every folder the user may search, owned and
	// shared alike.
	AccessibleFolders(ctx context.Context, userId uuid.UUID) ([]FolderRef, error)

	// CheckAccess resolves a single folder for the user. A nil ref with a nil
	// error means access is denied.
	CheckAccess(ctx context.Context, userId uuid.UUID, folderId uuid.UUID) (*FolderRef, error)
}

// ImageMetadataProvider resolves stored images for result enrichment.
type ImageMetadataProvider interface {
	// ResolveImagePath returns the storage path for an image id. The boolean
	// is false when the image no longer exists.
	ResolveImagePath(ctx context.Context, imageId uuid.UUID) (string, bool, error)
}
