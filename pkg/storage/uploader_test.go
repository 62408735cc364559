package storage

import (
	"bytes"
	"context"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wovenhouse/shopmedia/pkg/errors"
	"github.com/wovenhouse/shopmedia/pkg/shopify"
)

type receivedUpload struct {
	hits          int
	method        string
	contentType   string
	contentLength int64
	bodyLength    int
	fieldOrder    []string
	fields        map[string]string
	fileName      string
	fileContent   []byte
}

// newStagedStub records everything about the POST it receives and answers
// with a fixed status. Parsing happens against a buffered copy so the raw
// body length can be compared with the declared Content-Length.
func newStagedStub(t *testing.T, status int, body string) (*httptest.Server, *receivedUpload) {
	t.Helper()

	rec := &receivedUpload{fields: map[string]string{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.hits++
		rec.method = r.Method
		rec.contentType = r.Header.Get("Content-Type")
		rec.contentLength = r.ContentLength

		raw, err := io.ReadAll(r.Body)
		if err == nil {
			rec.bodyLength = len(raw)
			if _, params, err := mime.ParseMediaType(rec.contentType); err == nil {
				mr := multipart.NewReader(bytes.NewReader(raw), params["boundary"])
				for {
					part, err := mr.NextPart()
					if err != nil {
						break
					}
					name := part.FormName()
					rec.fieldOrder = append(rec.fieldOrder, name)
					content, _ := io.ReadAll(part)
					if part.FileName() != "" {
						rec.fileName = part.FileName()
						rec.fileContent = content
					} else {
						rec.fields[name] = string(content)
					}
				}
			}
		}

		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	return srv, rec
}

func writeTestFile(t *testing.T, name string, content []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0644))
	return path
}

func TestUploader_Success(t *testing.T) {
	srv, rec := newStagedStub(t, http.StatusCreated, "")

	content := []byte("fake image content for upload")
	path := writeTestFile(t, "blue-shirt.jpg", content)

	target := &shopify.StagedTarget{
		URL:         srv.URL,
		ResourceURL: "https://cdn.example.com/tmp/blue-shirt.jpg",
		Parameters: []shopify.StagedParameter{
			{Name: "key", Value: "tmp/blue-shirt.jpg"},
			{Name: "policy", Value: "c2lnbmVk"},
			{Name: "signature", Value: "deadbeef"},
		},
	}

	resourceURL, err := NewUploader(http.StatusCreated).Upload(context.Background(), target, path)
	require.NoError(t, err)

	// The resource URL comes from the staged target, never from the reply.
	assert.Equal(t, target.ResourceURL, resourceURL)
	assert.Equal(t, 1, rec.hits)
	assert.Equal(t, http.MethodPost, rec.method)
	assert.Contains(t, rec.contentType, "multipart/form-data")

	// Signed parameters first, in the order handed out, then the file.
	assert.Equal(t, []string{"key", "policy", "signature", "file"}, rec.fieldOrder)
	assert.Equal(t, "tmp/blue-shirt.jpg", rec.fields["key"])
	assert.Equal(t, "c2lnbmVk", rec.fields["policy"])
	assert.Equal(t, "deadbeef", rec.fields["signature"])
	assert.Equal(t, "blue-shirt.jpg", rec.fileName)
	assert.Equal(t, content, rec.fileContent)

	// Content-Length is declared explicitly and matches the encoded body.
	assert.Equal(t, int64(rec.bodyLength), rec.contentLength)
}

func TestUploader_NoParameters(t *testing.T) {
	srv, rec := newStagedStub(t, http.StatusCreated, "")

	path := writeTestFile(t, "red-mug.png", []byte("png-ish"))
	target := &shopify.StagedTarget{
		URL:         srv.URL,
		ResourceURL: "https://cdn.example.com/tmp/red-mug.png",
	}

	_, err := NewUploader(http.StatusCreated).Upload(context.Background(), target, path)
	require.NoError(t, err)

	assert.Equal(t, []string{"file"}, rec.fieldOrder)
}

func TestUploader_Rejected(t *testing.T) {
	srv, rec := newStagedStub(t, http.StatusForbidden, "Access Denied")

	path := writeTestFile(t, "blue-shirt.jpg", []byte("content"))
	target := &shopify.StagedTarget{URL: srv.URL, ResourceURL: "https://cdn.example.com/x"}

	_, err := NewUploader(http.StatusCreated).Upload(context.Background(), target, path)
	require.Error(t, err)

	assert.ErrorIs(t, err, errors.ErrUploadFailed)

	var uploadErr *UploadError
	require.ErrorAs(t, err, &uploadErr)
	assert.Equal(t, http.StatusForbidden, uploadErr.StatusCode)
	assert.Contains(t, uploadErr.Body, "Access Denied")

	// One attempt only.
	assert.Equal(t, 1, rec.hits)
}

func TestUploader_TransportError(t *testing.T) {
	// A server closed before the call leaves a refused port behind.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	path := writeTestFile(t, "blue-shirt.jpg", []byte("content"))
	target := &shopify.StagedTarget{URL: srv.URL, ResourceURL: "https://cdn.example.com/x"}

	_, err := NewUploader(http.StatusCreated).Upload(context.Background(), target, path)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUploadFailed)
}

func TestUploader_ConfigurableSuccessStatus(t *testing.T) {
	srv, _ := newStagedStub(t, http.StatusNoContent, "")

	path := writeTestFile(t, "blue-shirt.jpg", []byte("content"))
	target := &shopify.StagedTarget{URL: srv.URL, ResourceURL: "https://cdn.example.com/x"}

	// An endpoint answering 204 is a failure for an uploader expecting 201
	// and a success for one configured to expect 204.
	_, err := NewUploader(http.StatusCreated).Upload(context.Background(), target, path)
	assert.ErrorIs(t, err, errors.ErrUploadFailed)

	_, err = NewUploader(http.StatusNoContent).Upload(context.Background(), target, path)
	assert.NoError(t, err)
}

func TestUploader_MissingFile(t *testing.T) {
	srv, rec := newStagedStub(t, http.StatusCreated, "")

	target := &shopify.StagedTarget{URL: srv.URL, ResourceURL: "https://cdn.example.com/x"}

	_, err := NewUploader(http.StatusCreated).Upload(context.Background(), target, filepath.Join(t.TempDir(), "gone.jpg"))
	require.Error(t, err)
	assert.Equal(t, 0, rec.hits, "no request should be made when the file cannot be opened")
}

func TestNewUploader_DefaultStatus(t *testing.T) {
	assert.Equal(t, DefaultSuccessStatus, NewUploader(0).successStatus)
	assert.Equal(t, http.StatusNoContent, NewUploader(http.StatusNoContent).successStatus)
}
