// Package storage is a filesystem abstraction with two drivers:
//
//   - "local" — local filesystem (default)
//   - "s3"    — S3-compatible object storage (AWS S3, MinIO, R2)
//
// Product and category images live on documents as base64 data URIs; the
// raw uploads are additionally archived here so they can later be served
// from a CDN without re-ingesting.
//
//	storage.Connect()
//	storage.Put("products/abc.jpg", data, "image/jpeg")
//	url := storage.URL("products/abc.jpg")
package storage

// Disk is the filesystem driver interface.
type Disk interface {
	// Put writes content to path, creating parent directories as needed.
	Put(path string, content []byte, contentType string) error

	// Get returns the full content of the file at path.
	Get(path string) ([]byte, error)

	// Exists reports whether a file exists at path.
	Exists(path string) bool

	// Delete removes the file at path. Deleting a missing file is not an
	// error.
	Delete(path string) error

	// URL returns the public URL for path.
	URL(path string) string
}
