// Package storage uploads attachments to named blob store areas and hands
// back stable public URLs. Names embed the actor id and a high-resolution
// timestamp, so they are never reused and uploads never overwrite.
package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Bucket identifies a storage area.
type Bucket string

const (
	BucketRequestAttachments Bucket = "request-attachments"
	BucketRequestResponses   Bucket = "request-responses"
	BucketAvatars            Bucket = "avatars"
)

// Store uploads a named object and returns its public URL.
type Store interface {
	Upload(ctx context.Context, bucket Bucket, name string, contentType string, data []byte) (string, error)
}

// allowedExtensions is the attachment allow-list. Anything else is rejected
// before any upload or record write.
var allowedExtensions = map[string]struct{}{
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"gif":  {},
	"xls":  {},
	"xlsx": {},
}

// Extension returns the lowercase extension of filename without the dot.
func Extension(filename string) string {
	ext := strings.TrimPrefix(filepath.Ext(filename), ".")
	return strings.ToLower(ext)
}

// AllowedExtension reports whether the file extension is on the allow-list.
func AllowedExtension(filename string) bool {
	_, ok := allowedExtensions[Extension(filename)]
	return ok
}

// ObjectName builds a collision-resistant object name for an upload:
// [prefix_]<actorID>_<unix-nanos>.<ext>.
func ObjectName(prefix, actorID, filename string) string {
	name := fmt.Sprintf("%s_%d.%s", actorID, time.Now().UnixNano(), Extension(filename))
	if prefix != "" {
		name = prefix + "_" + name
	}
	return name
}
