// Package shopify implements the Admin GraphQL operations the pipeline
// consumes: product lookup by handle, staged upload negotiation, and media
// creation. Responses are decoded into explicit typed structures; a reply
// missing required fields is a distinct failure from a transport error.
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/wovenhouse/shopmedia/pkg/errors"
)

const (
	accessTokenHeader = "X-Shopify-Access-Token"
	jsonContentType   = "application/json"
)

// Client issues GraphQL operations against one store's Admin API. The
// pipeline drives it strictly sequentially; it holds no per-call state.
type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

// New builds a client for the store's versioned GraphQL endpoint.
func New(storeDomain, apiVersion, token string) *Client {
	endpoint := fmt.Sprintf("https://%s/admin/api/%s/graphql.json", storeDomain, apiVersion)
	return NewWithEndpoint(endpoint, token)
}

// NewWithEndpoint builds a client against an explicit endpoint URL.
// Used by tests and by stores fronted by a proxy.
func NewWithEndpoint(endpoint, token string) *Client {
	return &Client{
		endpoint:   endpoint,
		token:      token,
		httpClient: &http.Client{},
	}
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type graphqlEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors"`
}

// query posts one GraphQL operation and decodes its data payload into out.
func (c *Client) query(ctx context.Context, op, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return errors.Wrap(err, "marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", jsonContentType)
	req.Header.Set(accessTokenHeader, c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("admin_request_failed", "op", op, "error", err)
		return fmt.Errorf("%w: %v", errors.ErrRemoteQuery, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Error("admin_reply_read_failed", "op", op, "error", err)
		return fmt.Errorf("%w: read reply: %v", errors.ErrRemoteQuery, err)
	}

	if resp.StatusCode != http.StatusOK {
		slog.Error("admin_request_rejected", "op", op, "status", resp.StatusCode, "body", string(respBody))
		return fmt.Errorf("%w: HTTP %d: %s", errors.ErrRemoteQuery, resp.StatusCode, string(respBody))
	}

	var envelope graphqlEnvelope
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		slog.Error("admin_reply_decode_failed", "op", op, "error", err)
		return fmt.Errorf("%w: %v", errors.ErrMalformedReply, err)
	}
	if len(envelope.Errors) > 0 {
		slog.Error("admin_query_errors", "op", op, "message", envelope.Errors[0].Message)
		return fmt.Errorf("%w: %s", errors.ErrRemoteQuery, envelope.Errors[0].Message)
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return fmt.Errorf("%w: no data for %s", errors.ErrMalformedReply, op)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("%w: decode %s data: %v", errors.ErrMalformedReply, op, err)
	}

	return nil
}
