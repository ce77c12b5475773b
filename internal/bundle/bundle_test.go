package bundle

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsAppImage(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"Krita.AppImage", true},
		{"/home/user/appimages/Krita.AppImage", true},
		{"archive.tar.AppImage", true},
		{".hidden.AppImage", true},
		{"Krita.appimage", false}, // case-sensitive
		{"Krita.APPIMAGE", false},
		{"Krita.AppImage.bak", false},
		{"README.md", false},
		{".AppImage", false}, // empty application name
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsAppImage(tt.path))
		})
	}
}

func TestFromPath(t *testing.T) {
	b := FromPath("/home/user/appimages/Krita 5.2.AppImage")
	assert.Equal(t, "/home/user/appimages/Krita 5.2.AppImage", b.Path)
	assert.Equal(t, "Krita 5.2", b.Name)
}

func TestList(t *testing.T) {
	// Given: a watch directory with a mix of entries
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "GIMP.AppImage"), []byte("x"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Krita.AppImage"), []byte("x"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lower.appimage"), []byte("x"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Fake.AppImage"), 0o755))

	// When: listing the directory
	bundles, err := List(dir)

	// Then: only real bundle files appear, sorted by name
	require.NoError(t, err)
	require.Len(t, bundles, 2)
	assert.Equal(t, "GIMP", bundles[0].Name)
	assert.Equal(t, filepath.Join(dir, "GIMP.AppImage"), bundles[0].Path)
	assert.Equal(t, "Krita", bundles[1].Name)
}

func TestList_SkipsNestedDirectories(t *testing.T) {
	// Given: bundles inside a subdirectory
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "Deep.AppImage"), []byte("x"), 0o755))

	// When: listing the top directory
	bundles, err := List(dir)

	// Then: the scan is flat
	require.NoError(t, err)
	assert.Empty(t, bundles)
}

func TestList_MissingDirectory(t *testing.T) {
	_, err := List(filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read watch directory")
}

func TestList_EmptyDirectory(t *testing.T) {
	bundles, err := List(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, bundles)
}
