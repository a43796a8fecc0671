package filestorage

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFileStorage_SaveOpenDelete(t *testing.T) {
	storage, err := NewLocalFileStorage(t.TempDir())
	require.NoError(t, err)

	path, err := storage.Save(strings.NewReader("<html></html>"), "coming-home.html", "previews/coming_home")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, "previews/coming_home/"))
	assert.True(t, strings.HasSuffix(path, ".html"))

	rc, err := storage.Open(PublicPrefix + path)
	require.NoError(t, err)
	content, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "<html></html>", string(content))

	require.NoError(t, storage.Delete(path))
	require.NoError(t, storage.Delete(path), "повторное удаление не должно падать")

	_, err = storage.Open(path)
	assert.Error(t, err)
}

func TestLocalFileStorage_RejectsTraversal(t *testing.T) {
	storage, err := NewLocalFileStorage(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, storage.Delete("../../etc/passwd"))
	_, err = storage.Open("../secret.txt")
	assert.Error(t, err)
}
