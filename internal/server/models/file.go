package models

import "time"

// StoredFile describes one uploaded document as returned to the client.
// Path is the unique object key inside Bucket; SignedURL grants temporary
// read access and expires after the configured TTL.
type StoredFile struct {
	Bucket    string `json:"bucket"`
	Path      string `json:"path"`
	Filename  string `json:"filename"`
	SignedURL string `json:"signedUrl"`
}

// FileEntry is one element of a listing: the object name relative to the
// owner prefix, the full key, and a fresh signed URL.
type FileEntry struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	SignedURL string `json:"signedUrl"`
}

// FileRecord is the upload-registry row that ties an object to its owner.
type FileRecord struct {
	ID        int64     `json:"-"`
	OwnerID   string    `json:"-"`
	Bucket    string    `json:"bucket"`
	Path      string    `json:"path"`
	Filename  string    `json:"name"`
	CreatedAt time.Time `json:"uploadedAt"`
}
