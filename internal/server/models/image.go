package models

import "time"

// Image is the metadata record of an uploaded image. The binary content
// lives in object storage under StorageKey; FileURL is the public URL
// derived from that key and stable for the asset's lifetime.
//
// A record may exist without its object only transiently during create or
// delete. The reverse (object without record) is an orphan, cleaned up by
// the storage sweeper.
type Image struct {
	// ID is generated on creation and immutable.
	ID string
	// UserID is the owning account, immutable.
	UserID string
	// Title is the user-chosen display title, non-empty.
	Title string

	// StorageKey is derived from owner, upload time and original filename,
	// and never changes once set.
	StorageKey string
	// FileURL is the public URL derived from StorageKey.
	FileURL string

	FileSize  int64
	FileType  string
	CreatedAt time.Time
}
