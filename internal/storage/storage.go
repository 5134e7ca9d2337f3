package storage

import (
	"context"
	"io"
)

// Uploader stores an object and returns its publicly reachable URL.
type Uploader interface {
	Upload(ctx context.Context, objectName string, contentType string, r io.Reader) (url string, err error)
}
