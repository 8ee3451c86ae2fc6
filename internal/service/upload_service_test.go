package service

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"dreambees-be/internal/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n0000")

type fakeStorage struct {
	saved       []byte
	contentType string
	err         error
}

func (s *fakeStorage) Save(ctx context.Context, fileName, contentType string, data []byte) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.saved, s.contentType = data, contentType
	return "https://cdn/" + fileName, nil
}

func fileHeader(t *testing.T, name, contentType string, data []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="image"; filename="`+name+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))
	return req.MultipartForm.File["image"][0]
}

func TestUploadService(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	t.Run("missing file", func(t *testing.T) {
		svc := NewUploadService(&fakeStorage{}, env.metrics, env.logger)
		_, err := svc.UploadImage(ctx, nil)
		appErr := apperror.From(err)
		require.NotNil(t, appErr)
		assert.Equal(t, http.StatusBadRequest, appErr.StatusCode)
		assert.Equal(t, "No image file provided", appErr.Message)
	})

	t.Run("non image", func(t *testing.T) {
		svc := NewUploadService(&fakeStorage{}, env.metrics, env.logger)
		_, err := svc.UploadImage(ctx, fileHeader(t, "notes.txt", "text/plain", []byte("hello")))
		assert.Equal(t, "Only image files are allowed", apperror.From(err).Message)
	})

	t.Run("sniffs generic content type", func(t *testing.T) {
		store := &fakeStorage{}
		svc := NewUploadService(store, env.metrics, env.logger)
		res, err := svc.UploadImage(ctx, fileHeader(t, "cat.png", "application/octet-stream", pngHeader))
		require.NoError(t, err)
		assert.Equal(t, "https://cdn/cat.png", res.ImageUrl)
		assert.Equal(t, "image/png", store.contentType)
	})

	t.Run("stores image", func(t *testing.T) {
		store := &fakeStorage{}
		svc := NewUploadService(store, env.metrics, env.logger)
		res, err := svc.UploadImage(ctx, fileHeader(t, "cat.jpg", "image/jpeg", []byte("jpeg-bytes")))
		require.NoError(t, err)
		assert.Equal(t, "https://cdn/cat.jpg", res.ImageUrl)
		assert.Equal(t, "jpeg-bytes", string(store.saved))
	})

	t.Run("storage failure is a generic 500", func(t *testing.T) {
		svc := NewUploadService(&fakeStorage{err: errors.New("bucket gone")}, env.metrics, env.logger)
		_, err := svc.UploadImage(ctx, fileHeader(t, "cat.jpg", "image/jpeg", []byte("jpeg-bytes")))
		appErr := apperror.From(err)
		require.NotNil(t, appErr)
		assert.Equal(t, http.StatusInternalServerError, appErr.StatusCode)
		assert.Equal(t, "Failed to upload image", appErr.Message)
	})
}
