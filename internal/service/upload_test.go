package service

import (
	"bytes"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("photo", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["photo"][0]
}

func TestUploadService_UploadPhoto(t *testing.T) {
	svc, err := NewUploadService(t.TempDir(), 16)
	require.NoError(t, err)

	url, err := svc.UploadPhoto(fileHeader(t, "me.PNG", []byte("png-bytes")))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	stored, err := os.ReadFile(filepath.Join(svc.Dir(), filepath.Base(url)))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(stored))

	require.NoError(t, svc.DeleteFile(url))
	_, err = os.Stat(filepath.Join(svc.Dir(), filepath.Base(url)))
	assert.True(t, os.IsNotExist(err))
}

func TestUploadService_Rejects(t *testing.T) {
	svc, err := NewUploadService(t.TempDir(), 4)
	require.NoError(t, err)

	_, err = svc.UploadPhoto(fileHeader(t, "notes.txt", []byte("hi")))
	assert.True(t, IsCode(err, ErrValidation))

	_, err = svc.UploadPhoto(fileHeader(t, "big.jpg", []byte("too large")))
	assert.True(t, IsCode(err, ErrValidation))
}
