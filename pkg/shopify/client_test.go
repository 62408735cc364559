package shopify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wovenhouse/shopmedia/pkg/errors"
)

type capturedRequest struct {
	method  string
	headers http.Header
	body    map[string]any
}

func (c *capturedRequest) variables() map[string]any {
	vars, _ := c.body["variables"].(map[string]any)
	return vars
}

// newClientAndServer spins up a stub admin endpoint that records the last
// request and answers with a fixed reply.
func newClientAndServer(t *testing.T, status int, reply string) (*Client, *capturedRequest) {
	t.Helper()

	captured := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.method = r.Method
		captured.headers = r.Header.Clone()

		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &captured.body))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)

	return NewWithEndpoint(srv.URL, "shpat_testtoken"), captured
}

func TestNew_BuildsVersionedEndpoint(t *testing.T) {
	c := New("demo-store.myshopify.com", "2024-07", "tok")
	assert.Equal(t, "https://demo-store.myshopify.com/admin/api/2024-07/graphql.json", c.endpoint)
}

func TestClient_SendsAuthAndContentType(t *testing.T) {
	client, captured := newClientAndServer(t, http.StatusOK,
		`{"data":{"products":{"edges":[{"node":{"id":"gid://shopify/Product/1","title":"Blue Shirt"}}]}}}`)

	_, err := client.ResolveProductByHandle(context.Background(), "blue-shirt")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, captured.method)
	assert.Equal(t, "shpat_testtoken", captured.headers.Get("X-Shopify-Access-Token"))
	assert.Equal(t, "application/json", captured.headers.Get("Content-Type"))
}

func TestClient_TransportError(t *testing.T) {
	// A server closed before the call leaves a refused port behind.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewWithEndpoint(srv.URL, "shpat_testtoken")

	_, err := client.ResolveProductByHandle(context.Background(), "blue-shirt")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrRemoteQuery)
}

func TestResolveProductByHandle_Success(t *testing.T) {
	client, captured := newClientAndServer(t, http.StatusOK,
		`{"data":{"products":{"edges":[{"node":{"id":"gid://shopify/Product/42","title":"Blue Shirt"}}]}}}`)

	id, err := client.ResolveProductByHandle(context.Background(), "blue-shirt")
	require.NoError(t, err)
	assert.Equal(t, "gid://shopify/Product/42", id)

	// The lookup is a handle-scoped search.
	assert.Equal(t, "handle:blue-shirt", captured.variables()["query"])
}

func TestResolveProductByHandle_NotFound(t *testing.T) {
	client, _ := newClientAndServer(t, http.StatusOK,
		`{"data":{"products":{"edges":[]}}}`)

	_, err := client.ResolveProductByHandle(context.Background(), "missing-product")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrProductNotFound)
	assert.Contains(t, err.Error(), "missing-product")
}

func TestResolveProductByHandle_GraphQLErrors(t *testing.T) {
	client, _ := newClientAndServer(t, http.StatusOK,
		`{"errors":[{"message":"Throttled"}]}`)

	_, err := client.ResolveProductByHandle(context.Background(), "blue-shirt")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrRemoteQuery)
	assert.Contains(t, err.Error(), "Throttled")
}

func TestResolveProductByHandle_HTTPError(t *testing.T) {
	client, _ := newClientAndServer(t, http.StatusInternalServerError, `upstream exploded`)

	_, err := client.ResolveProductByHandle(context.Background(), "blue-shirt")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrRemoteQuery)
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "upstream exploded")
}

func TestResolveProductByHandle_MalformedReply(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"null data", `{"data":null}`},
		{"not json", `<html>service unavailable</html>`},
		{"missing product id", `{"data":{"products":{"edges":[{"node":{"id":"","title":"x"}}]}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newClientAndServer(t, http.StatusOK, tt.reply)

			_, err := client.ResolveProductByHandle(context.Background(), "blue-shirt")
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrMalformedReply)
		})
	}
}

func TestCreateStagedUpload_Success(t *testing.T) {
	client, captured := newClientAndServer(t, http.StatusOK,
		`{"data":{"stagedUploadsCreate":{"stagedTargets":[{"url":"https://storage.example.com/bucket","resourceUrl":"https://cdn.example.com/tmp/blue-shirt.jpg","parameters":[{"name":"key","value":"tmp/blue-shirt.jpg"},{"name":"policy","value":"c2lnbmVk"},{"name":"signature","value":"deadbeef"}]}],"userErrors":[]}}}`)

	target, err := client.CreateStagedUpload(context.Background(), "blue-shirt.jpg", "image/jpeg", 2048)
	require.NoError(t, err)

	assert.Equal(t, "https://storage.example.com/bucket", target.URL)
	assert.Equal(t, "https://cdn.example.com/tmp/blue-shirt.jpg", target.ResourceURL)
	require.Len(t, target.Parameters, 3)
	assert.Equal(t, StagedParameter{Name: "key", Value: "tmp/blue-shirt.jpg"}, target.Parameters[0])
	assert.Equal(t, StagedParameter{Name: "policy", Value: "c2lnbmVk"}, target.Parameters[1])
	assert.Equal(t, StagedParameter{Name: "signature", Value: "deadbeef"}, target.Parameters[2])

	input, ok := captured.variables()["input"].([]any)
	require.True(t, ok)
	require.Len(t, input, 1)

	fields := input[0].(map[string]any)
	assert.Equal(t, "blue-shirt.jpg", fields["filename"])
	assert.Equal(t, "image/jpeg", fields["mimeType"])
	assert.Equal(t, "IMAGE", fields["resource"])
	assert.Equal(t, "POST", fields["httpMethod"])
	// The admin API wants the size as a decimal string, not a number.
	assert.Equal(t, "2048", fields["fileSize"])
}

func TestCreateStagedUpload_UserError(t *testing.T) {
	client, _ := newClientAndServer(t, http.StatusOK,
		`{"data":{"stagedUploadsCreate":{"stagedTargets":[],"userErrors":[{"field":["input","fileSize"],"message":"File size is too large"}]}}}`)

	_, err := client.CreateStagedUpload(context.Background(), "huge.jpg", "image/jpeg", 1<<40)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUploadTargetRejected)
	assert.Contains(t, err.Error(), "File size is too large")
}

func TestCreateStagedUpload_NoTargets(t *testing.T) {
	client, _ := newClientAndServer(t, http.StatusOK,
		`{"data":{"stagedUploadsCreate":{"stagedTargets":[],"userErrors":[]}}}`)

	_, err := client.CreateStagedUpload(context.Background(), "blue-shirt.jpg", "image/jpeg", 2048)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrMalformedReply)
}

func TestAttachProductMedia_Success(t *testing.T) {
	client, captured := newClientAndServer(t, http.StatusOK,
		`{"data":{"productCreateMedia":{"media":[{"id":"gid://shopify/MediaImage/7","alt":"blue-shirt","mediaContentType":"IMAGE","status":"UPLOADED"}],"mediaUserErrors":[]}}}`)

	record, err := client.AttachProductMedia(context.Background(),
		"gid://shopify/Product/42", "https://cdn.example.com/tmp/blue-shirt.jpg", "blue-shirt")
	require.NoError(t, err)

	assert.Equal(t, "gid://shopify/MediaImage/7", record.ID)
	assert.Equal(t, "UPLOADED", record.Status)
	assert.Equal(t, "IMAGE", record.ContentType)

	assert.Equal(t, "gid://shopify/Product/42", captured.variables()["productId"])

	media, ok := captured.variables()["media"].([]any)
	require.True(t, ok)
	require.Len(t, media, 1)

	fields := media[0].(map[string]any)
	assert.Equal(t, "https://cdn.example.com/tmp/blue-shirt.jpg", fields["originalSource"])
	assert.Equal(t, "blue-shirt", fields["alt"])
	assert.Equal(t, "IMAGE", fields["mediaContentType"])
}

func TestAttachProductMedia_UserError(t *testing.T) {
	client, _ := newClientAndServer(t, http.StatusOK,
		`{"data":{"productCreateMedia":{"media":[],"mediaUserErrors":[{"field":["media","originalSource"],"message":"Media could not be processed"}]}}}`)

	_, err := client.AttachProductMedia(context.Background(),
		"gid://shopify/Product/42", "https://cdn.example.com/tmp/blue-shirt.jpg", "blue-shirt")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrMediaRejected)
	assert.Contains(t, err.Error(), "Media could not be processed")
}

func TestAttachProductMedia_EmptyMedia(t *testing.T) {
	client, _ := newClientAndServer(t, http.StatusOK,
		`{"data":{"productCreateMedia":{"media":[],"mediaUserErrors":[]}}}`)

	_, err := client.AttachProductMedia(context.Background(),
		"gid://shopify/Product/42", "https://cdn.example.com/tmp/blue-shirt.jpg", "blue-shirt")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrMalformedReply)
}
