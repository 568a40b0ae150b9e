package corpus

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirSource_List(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b_course.txt"), []byte("b"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a_course.md"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.json"), []byte("{}"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "c_course.pdf"), []byte("pdf"), 0o644))

	source := NewDirSource(dir)
	paths, err := source.List(context.Background())
	require.NoError(t, err)

	require.Len(t, paths, 3)
	// Lexical order, unsupported extensions filtered out.
	assert.Equal(t, filepath.Join(dir, "a_course.md"), paths[0])
	assert.Equal(t, filepath.Join(dir, "b_course.txt"), paths[1])
	assert.Equal(t, filepath.Join(dir, "nested", "c_course.pdf"), paths[2])
}

func TestDirSource_List_MissingDirectory(t *testing.T) {
	source := NewDirSource("/does/not/exist")

	paths, err := source.List(context.Background())

	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestDirSource_Read(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "course.txt")
	require.NoError(t, os.WriteFile(path, []byte("Course Title: T"), 0o644))

	source := NewDirSource(dir)
	raw, err := source.Read(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, "Course Title: T", string(raw))
}

func TestParseS3Location(t *testing.T) {
	tests := []struct {
		location string
		bucket   string
		prefix   string
		wantErr  bool
	}{
		{location: "s3://corpus/courses", bucket: "corpus", prefix: "courses"},
		{location: "s3://corpus", bucket: "corpus", prefix: ""},
		{location: "s3://corpus/a/b/c", bucket: "corpus", prefix: "a/b/c"},
		{location: "/local/dir", wantErr: true},
		{location: "s3://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			bucket, prefix, err := ParseS3Location(tt.location)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.bucket, bucket)
			assert.Equal(t, tt.prefix, prefix)
		})
	}
}

func TestIsS3Location(t *testing.T) {
	assert.True(t, IsS3Location("s3://bucket/prefix"))
	assert.False(t, IsS3Location("./docs"))
}
