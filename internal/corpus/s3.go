package corpus

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// ObjectStore defines the object storage operations the S3 source depends on
type ObjectStore interface {
	ListObjects(ctx context.Context, prefix string) ([]string, error)
	GetObject(ctx context.Context, key string) ([]byte, error)
}

// S3Source reads course documents from an object storage prefix.
type S3Source struct {
	store  ObjectStore
	prefix string
}

func NewS3Source(store ObjectStore, prefix string) *S3Source {
	return &S3Source{store: store, prefix: prefix}
}

// List returns document keys under the prefix in lexical order.
func (s *S3Source) List(ctx context.Context) ([]string, error) {
	keys, err := s.store.ListObjects(ctx, s.prefix)
	if err != nil {
		return nil, err
	}

	docs := make([]string, 0, len(keys))
	for _, key := range keys {
		if isDocument(key) {
			docs = append(docs, key)
		}
	}

	sort.Strings(docs)
	return docs, nil
}

// Read downloads one document.
func (s *S3Source) Read(ctx context.Context, key string) ([]byte, error) {
	return s.store.GetObject(ctx, key)
}

// ParseS3Location splits an "s3://bucket/prefix" location into its bucket
// and key prefix.
func ParseS3Location(location string) (bucket, prefix string, err error) {
	rest, ok := strings.CutPrefix(location, "s3://")
	if !ok {
		return "", "", fmt.Errorf("not an s3 location: %q", location)
	}
	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("s3 location %q has no bucket", location)
	}
	return bucket, prefix, nil
}

// IsS3Location reports whether a corpus location names an S3 prefix rather
// than a local directory.
func IsS3Location(location string) bool {
	return strings.HasPrefix(location, "s3://")
}
