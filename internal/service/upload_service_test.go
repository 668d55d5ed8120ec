package service

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphichelper/internal/storage"
)

var pngBytes = append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, bytes.Repeat([]byte{0x00}, 16)...)

type capturingStore struct {
	key         string
	contentType string
	data        []byte
	putErr      error
}

func (c *capturingStore) PutOriginal(_ context.Context, key string, r io.Reader, _ int64, contentType string) error {
	if c.putErr != nil {
		return c.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	c.key = key
	c.contentType = contentType
	c.data = data
	return nil
}

func multipartFile(t *testing.T, filename, contentType string, data []byte) (multipart.File, *multipart.FileHeader) {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := make(map[string][]string)
	header["Content-Disposition"] = []string{`form-data; name="file"; filename="` + filename + `"`}
	if contentType != "" {
		header["Content-Type"] = []string{contentType}
	}
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	file, fileHeader, err := req.FormFile("file")
	require.NoError(t, err)
	return file, fileHeader
}

func TestStoreAcceptsPNG(t *testing.T) {
	temp, err := storage.NewTempStore(t.TempDir())
	require.NoError(t, err)
	objects := &capturingStore{}
	svc := NewUploadService(temp, objects, zerolog.Nop())

	file, header := multipartFile(t, "a.png", "image/png", pngBytes)
	defer file.Close()

	stored, err := svc.Store(context.Background(), file, header)
	require.NoError(t, err)

	assert.Equal(t, "image/png", stored.ContentType)
	assert.Equal(t, int64(len(pngBytes)), stored.SizeBytes)
	assert.NotEqual(t, "a.png", stored.ObjectKey, "object key must not be the client filename")
	assert.Equal(t, stored.ObjectKey, objects.key)
	assert.Equal(t, pngBytes, objects.data)
}

func TestStoreRejectsUnsupportedFormat(t *testing.T) {
	temp, err := storage.NewTempStore(t.TempDir())
	require.NoError(t, err)
	svc := NewUploadService(temp, &capturingStore{}, zerolog.Nop())

	file, header := multipartFile(t, "a.gif", "image/gif", []byte("GIF89a lots of gif data here"))
	defer file.Close()

	_, err = svc.Store(context.Background(), file, header)
	assert.ErrorIs(t, err, ErrUpload)
}

func TestStoreRejectsContentTypeMismatch(t *testing.T) {
	temp, err := storage.NewTempStore(t.TempDir())
	require.NoError(t, err)
	svc := NewUploadService(temp, &capturingStore{}, zerolog.Nop())

	// png bytes declared as jpeg
	file, header := multipartFile(t, "a.jpg", "image/jpeg", pngBytes)
	defer file.Close()

	_, err = svc.Store(context.Background(), file, header)
	assert.ErrorIs(t, err, ErrUpload)
}
