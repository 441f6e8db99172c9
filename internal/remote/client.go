package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"klaso-client/internal/config"
	"klaso-client/internal/logger"
	"klaso-client/internal/model"
	"klaso-client/pkg/errors"

	"github.com/rs/zerolog"
)

// CredentialSource supplies the bearer credential attached to requests and is
// told when the backend rejects it.
type CredentialSource interface {
	Credential() string
	Invalidate()
}

// Client talks to the backend REST API and unwraps its {status, message, data} envelope.
// It never retries; a failed call is reported once to the caller.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    CredentialSource
	log        zerolog.Logger
}

func NewClient(cfg *config.Config, session CredentialSource) *Client {
	return NewClientWithHTTP(cfg.Backend.BaseURL, &http.Client{Timeout: cfg.Backend.Timeout}, session)
}

func NewClientWithHTTP(baseURL string, httpClient *http.Client, session CredentialSource) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		session:    session,
		log:        logger.For("remote"),
	}
}

type credentialMode int

const (
	fromSession credentialMode = iota
	explicit
	anonymous
)

type call struct {
	method     string
	path       string
	body       interface{}
	out        interface{}
	mode       credentialMode
	credential string
}

// Do performs an authenticated call with the session credential, if any.
// out may be nil when the response data is not needed.
func (c *Client) Do(ctx context.Context, method, path string, body, out interface{}) error {
	return c.do(ctx, call{method: method, path: path, body: body, out: out})
}

func (c *Client) do(ctx context.Context, cl call) error {
	op := cl.method + " " + cl.path

	var reqBody io.Reader
	if cl.body != nil {
		jsonData, err := json.Marshal(cl.body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	var token string
	switch cl.mode {
	case fromSession:
		if c.session != nil {
			token = c.session.Credential()
		}
	case explicit:
		token = cl.credential
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.log.Debug().Str("op", op).Msg("Calling backend")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.NewRemoteError(op, 0, "", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.NewRemoteError(op, resp.StatusCode, "failed to read response", err)
	}

	if resp.StatusCode == http.StatusUnauthorized && cl.mode == fromSession && token != "" {
		c.session.Invalidate()
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.NewRemoteError(op, resp.StatusCode, messageOf(data), nil)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		if cl.out == nil {
			return nil
		}
		return errors.NewRemoteError(op, resp.StatusCode, "", errors.ErrEmptyData)
	}

	var envelope model.Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return errors.NewRemoteError(op, resp.StatusCode, "", fmt.Errorf("%w: %v", errors.ErrMalformedEnvelope, err))
	}

	if envelope.Status != 0 && (envelope.Status < 200 || envelope.Status >= 300) {
		return errors.NewRemoteError(op, envelope.Status, envelope.Message, nil)
	}

	if cl.out == nil {
		return nil
	}

	if isEmpty(envelope.Data) {
		return errors.NewRemoteError(op, resp.StatusCode, envelope.Message, errors.ErrEmptyData)
	}

	if err := json.Unmarshal(envelope.Data, cl.out); err != nil {
		return errors.NewRemoteError(op, resp.StatusCode, "", fmt.Errorf("%w: %v", errors.ErrMalformedEnvelope, err))
	}

	return nil
}

func isEmpty(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// messageOf extracts the envelope message of an error response when there is one.
func messageOf(data []byte) string {
	var envelope model.Envelope
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Message != "" {
		return envelope.Message
	}
	body := string(bytes.TrimSpace(data))
	if len(body) > 200 {
		body = body[:200]
	}
	return body
}
