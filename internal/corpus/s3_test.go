package corpus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjectStore struct {
	objects map[string][]byte
	err     error
}

func (f *fakeObjectStore) ListObjects(ctx context.Context, prefix string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	var keys []string
	for k := range f.objects {
		keys = append(keys, k)
	}
	return keys, nil
}

func (f *fakeObjectStore) GetObject(ctx context.Context, key string) ([]byte, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return data, nil
}

func TestS3Source_List(t *testing.T) {
	store := &fakeObjectStore{objects: map[string][]byte{
		"courses/b.txt":     []byte("b"),
		"courses/a.md":      []byte("a"),
		"courses/image.png": []byte("png"),
	}}

	source := NewS3Source(store, "courses/")
	keys, err := source.List(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"courses/a.md", "courses/b.txt"}, keys)
}

func TestS3Source_Read(t *testing.T) {
	store := &fakeObjectStore{objects: map[string][]byte{
		"courses/a.txt": []byte("Course Title: A"),
	}}

	source := NewS3Source(store, "courses/")

	raw, err := source.Read(context.Background(), "courses/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "Course Title: A", string(raw))

	_, err = source.Read(context.Background(), "courses/missing.txt")
	assert.Error(t, err)
}

func TestS3Source_ListFailure(t *testing.T) {
	source := NewS3Source(&fakeObjectStore{err: errors.New("unreachable")}, "courses/")

	_, err := source.List(context.Background())

	assert.Error(t, err)
}
